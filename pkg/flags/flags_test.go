package flags

import (
	"testing"

	"github.com/ormasoftchile/adbind/pkg/property"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(t *testing.T, key property.Key) property.Descriptor {
	t.Helper()
	d, err := property.Lookup(key)
	require.NoError(t, err)
	return d
}

func TestBuildGroupsList(t *testing.T) {
	f := Build(lookup(t, property.Groups), property.List("admins", "staff"), true)
	assert.Equal(t, []string{"-groups", "admins,staff"}, f.Args())
	assert.Equal(t, `-groups "admins,staff"`, f.String())
	assert.Equal(t, property.Groups, f.Key())
}

func TestBuildGroupsEmptyNegates(t *testing.T) {
	f := Build(lookup(t, property.Groups), property.List(), true)
	assert.Equal(t, KindNegation, f.Kind)
	assert.Equal(t, []string{"-nogroups"}, f.Args())
	assert.Equal(t, "-nogroups", f.String())
}

func TestBuildEmptyWithoutNegation(t *testing.T) {
	f := Build(lookup(t, property.Shell), property.Scalar(""), false)
	assert.Equal(t, []string{"-shell", ""}, f.Args())
}

func TestBuildIrregularFlag(t *testing.T) {
	f := Build(lookup(t, property.RestrictDDNS), property.List("en0", "en1"), false)
	assert.Equal(t, []string{"-restrictDDNS", "en0,en1"}, f.Args())
}

func TestBuildToggle(t *testing.T) {
	f := Build(lookup(t, property.Mobile), property.Bool(true), false)
	assert.Equal(t, `-mobile "enable"`, f.String())
}

// Embedded quotes and spaces stay inside one token and are never re-split.
func TestBuildKeepsValueAsOneToken(t *testing.T) {
	f := Build(lookup(t, property.Groups), property.List(`EXAMPLE\Domain Admins`, `"ops"`), true)
	args := f.Args()
	require.Len(t, args, 2)
	assert.Equal(t, `EXAMPLE\Domain Admins,"ops"`, args[1])
}

func TestBuilderOrdersByTable(t *testing.T) {
	var b Builder
	require.NoError(t, b.Set(property.Groups, property.List("admins")))
	require.NoError(t, b.Set(property.Mobile, property.Bool(true)))
	require.NoError(t, b.Set(property.Preferred, property.Scalar("")))
	require.NoError(t, b.Set(property.Protocol, property.Scalar("smb")))

	assert.Equal(t, []string{
		"-mobile", "enable",
		"-protocol", "smb",
		"-nopreferred",
		"-groups", "admins",
	}, Args(b.Fragments()))
	assert.Equal(t, `-mobile "enable" -protocol "smb" -nopreferred -groups "admins"`, Render(b.Fragments()))
}

func TestBuilderReplacesSameKey(t *testing.T) {
	var b Builder
	require.NoError(t, b.Set(property.Shell, property.Scalar("/bin/bash")))
	require.NoError(t, b.Set(property.Shell, property.Scalar("/bin/zsh")))
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, []string{"-shell", "/bin/zsh"}, Args(b.Fragments()))

	b.Reset()
	assert.Zero(t, b.Len())
}

func TestBuilderUnknownKey(t *testing.T) {
	var b Builder
	err := b.Set("sharepoint", property.Bool(true))
	assert.ErrorIs(t, err, property.ErrUnknownProperty)
	assert.Zero(t, b.Len())
}

func TestOperandAndSwitch(t *testing.T) {
	frags := []Fragment{Operand("add", "example.com"), Value("computer", "WS01"), Switch("force")}
	assert.Equal(t, `-add example.com -computer "WS01" -force`, Render(frags))
	assert.Equal(t, []string{"-add", "example.com", "-computer", "WS01", "-force"}, Args(frags))
}
