package replay

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarioParsing verifies valid scenario files load correctly.
func TestScenarioParsing(t *testing.T) {
	data := []byte(`
commands:
  - argv: ["dsconfigad", "-show", "-xml"]
    stdout: ""
  - argv: ["dsconfigad", "-leave"]
    exit_code: 0
`)
	s, err := ParseScenario(data)
	require.NoError(t, err)
	assert.Len(t, s.Commands, 2)
}

// TestScenarioParsingEmpty verifies empty scenario is rejected.
func TestScenarioParsingEmpty(t *testing.T) {
	_, err := ParseScenario([]byte(`{}`))
	assert.Error(t, err, "expected error for empty scenario")
	_, err = ParseScenario([]byte("commands:\n  - stdout: x\n"))
	assert.Error(t, err, "expected error for entry without argv")
}

// TestScenarioParsingInvalidYAML verifies invalid YAML is rejected.
func TestScenarioParsingInvalidYAML(t *testing.T) {
	_, err := ParseScenario([]byte(`{{{invalid`))
	assert.Error(t, err)
}

func TestLoadScenarioStdoutFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "show.plist"), []byte("<plist/>"), 0644))
	yml := "commands:\n  - argv: [dsconfigad, -show, -xml]\n    stdout_file: show.plist\n"
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "<plist/>", s.Commands[0].Stdout)
}

func TestLoadScenarioMissingStdoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	yml := "commands:\n  - argv: [dsconfigad, -show, -xml]\n    stdout_file: nope.plist\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	_, err := LoadScenario(path)
	assert.Error(t, err, "expected error for missing stdout_file")
}

// TestReplayExecutorConsumesInOrder verifies repeated commands return their
// responses in scenario order.
func TestReplayExecutorConsumesInOrder(t *testing.T) {
	s := &Scenario{
		Commands: []ScenarioCommand{
			{Argv: []string{"dsconfigad", "-show", "-xml"}, Stdout: "first"},
			{Argv: []string{"dsconfigad", "-show", "-xml"}, Stdout: "second"},
		},
	}
	exec := NewReplayExecutor(s)
	ctx := context.Background()

	for _, want := range []string{"first", "second"} {
		result, err := exec.Execute(ctx, "/usr/sbin/dsconfigad", []string{"-show", "-xml"}, nil)
		require.NoError(t, err)
		assert.Equal(t, want, string(result.Stdout))
	}

	_, err := exec.Execute(ctx, "dsconfigad", []string{"-show", "-xml"}, nil)
	assert.Error(t, err, "expected error once scenario entries are exhausted")
}

func TestReplayExecutorNoMatch(t *testing.T) {
	s := &Scenario{Commands: []ScenarioCommand{{Argv: []string{"dsconfigad", "-leave"}, ExitCode: 1}}}
	exec := NewReplayExecutor(s)

	_, err := exec.Execute(context.Background(), "dsconfigad", []string{"-remove"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no matching scenario entry")
	assert.Len(t, exec.Unused(), 1)

	res, err := exec.Execute(context.Background(), "dsconfigad", []string{"-leave"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.Empty(t, exec.Unused())
}

// TestReplayExecutorMaskedSecret verifies a masked recorded value matches
// whatever secret is passed at replay time.
func TestReplayExecutorMaskedSecret(t *testing.T) {
	s, err := ParseScenario([]byte(`
commands:
  - argv: [dsconfigad, -remove, -username, admin, -password, "********"]
`))
	require.NoError(t, err)

	r := NewReplayExecutor(s)
	res, err := r.Execute(context.Background(), "dsconfigad", []string{"-remove", "-username", "admin", "-password", "hunter2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)

	_, err = r.Execute(context.Background(), "dsconfigad", []string{"-remove", "-username", "root", "-password", "x"}, nil)
	assert.Error(t, err, "unmasked tokens must still match exactly")
}

// TestReplayExecutorRedact verifies entries recorded under redaction rules
// match the live args, and raw entries still match.
func TestReplayExecutorRedact(t *testing.T) {
	s := &Scenario{Commands: []ScenarioCommand{
		{Argv: []string{"dsconfigad", "-remove", "-username", "<user>", "-password", "********"}},
		{Argv: []string{"dsconfigad", "-leave"}},
	}}
	r := NewReplayExecutor(s)
	r.Redact = func(args []string) []string {
		out := make([]string, len(args))
		for i, a := range args {
			out[i] = strings.ReplaceAll(a, "svc-binder", "<user>")
		}
		return out
	}

	_, err := r.Execute(context.Background(), "dsconfigad", []string{"-remove", "-username", "svc-binder", "-password", "pw"}, nil)
	require.NoError(t, err, "expected redacted match")
	_, err = r.Execute(context.Background(), "dsconfigad", []string{"-leave"}, nil)
	require.NoError(t, err, "expected raw match")

	_, err = NewReplayExecutor(s).Execute(context.Background(), "dsconfigad", []string{"-remove", "-username", "svc-binder", "-password", "pw"}, nil)
	assert.Error(t, err, "without Redact the live username must not match")
}
