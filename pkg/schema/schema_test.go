package schema

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadValidManifests ensures valid YAML files parse without errors.
func TestLoadValidManifests(t *testing.T) {
	files, err := filepath.Glob("../../testdata/valid/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files, "no valid test fixtures found")

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			m, err := LoadFile(f)
			require.NoError(t, err)
			assert.Equal(t, APIVersion, m.APIVersion)
			assert.NotEmpty(t, m.Binding.Name)
		})
	}
}

// TestLoadRejectsUnknownFields verifies that strict mode rejects unknown YAML keys.
func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := LoadFile("../../testdata/invalid/unknown-fields.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sharepoint", "error should name the field")
}

func TestLoadParsesProperties(t *testing.T) {
	m, err := Load(strings.NewReader(`
apiVersion: adbind/v1
binding:
  name: example.com
  properties:
    mobile: true
    groups: [admins, staff]
    passinterval: 30
`))
	require.NoError(t, err)

	p := m.Binding.Properties
	assert.Equal(t, true, p["mobile"])
	assert.Equal(t, []any{"admins", "staff"}, p["groups"])
	assert.Equal(t, 30, p["passinterval"])
	assert.Equal(t, EnsurePresent, m.Binding.EnsureOrDefault())
}

func TestGenerateJSONSchema(t *testing.T) {
	data, err := GenerateJSONSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc), "schema is not valid JSON")

	s := string(data)
	for _, want := range []string{`"adbind/v1"`, `"restrictddns"`, `"packetencrypt"`, `"Allowed admin groups"`} {
		assert.Contains(t, s, want)
	}
	assert.NotContains(t, s, `"fqdn"`, "fqdn must not be a configurable property")
}
