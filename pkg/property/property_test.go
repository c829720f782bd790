package property

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelTable(t *testing.T) {
	want := map[string]Key{
		"Active Directory Domain":        FQDN,
		"Computer Account":               Computer,
		"Create mobile account at login": Mobile,
		"Require confirmation":           MobileConfirm,
		"Force home to startup disk":     LocalHome,
		"Use Windows UNC path for home":  UseUNCPath,
		"Network protocol":               Protocol,
		"Shell":                          Shell,
		"UID Mapping":                    UID,
		"User GID Mapping":               GID,
		"Group GID Mapping":              GGID,
		"Generate Kerberos authority":    Authority,
		"Preferred Domain controller":    Preferred,
		"Allowed admin groups":           Groups,
		"Authentication from any domain": AllDomains,
		"Packet signing":                 PacketSign,
		"Packet encryption":              PacketEncrypt,
		"Namespace mode":                 Namespace,
		"Password change interval":       PassInterval,
		"Restrict Dynamic DNS updates":   RestrictDDNS,
	}
	require.Len(t, All(), len(want))

	for label, key := range want {
		got, err := FromLabel(label)
		require.NoError(t, err, label)
		assert.Equal(t, key, got)
		assert.Equal(t, label, ToLabel(key))
	}
}

func TestRoundTrip(t *testing.T) {
	for _, d := range All() {
		key, err := FromLabel(ToLabel(d.Key))
		require.NoError(t, err)
		assert.Equal(t, d.Key, key)

		label := ToLabel(d.Key)
		back, err := FromLabel(label)
		require.NoError(t, err)
		assert.Equal(t, label, ToLabel(back))
	}
}

func TestFromLabelUnknown(t *testing.T) {
	_, err := FromLabel("Shared Folder")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownProperty))

	var upe *UnknownPropertyError
	require.ErrorAs(t, err, &upe)
	assert.Equal(t, "Shared Folder", upe.Name)

	assert.Empty(t, ToLabel("sharepoint"))
	_, err = Lookup("sharepoint")
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func TestIrregularFlagSpelling(t *testing.T) {
	d, err := Lookup(RestrictDDNS)
	require.NoError(t, err)
	assert.Equal(t, "restrictDDNS", d.Flag)
	assert.Equal(t, KindList, d.Kind)
	assert.False(t, d.NoFlag)
}

func TestNoFlagProperties(t *testing.T) {
	var noflag []Key
	for _, d := range All() {
		if d.NoFlag {
			noflag = append(noflag, d.Key)
		}
	}
	assert.ElementsMatch(t, []Key{UID, GID, GGID, Preferred, Groups}, noflag)
}

func TestToggleRoundTrip(t *testing.T) {
	assert.Equal(t, true, DecodeToggle(EncodeToggle(true)))
	assert.Equal(t, false, DecodeToggle(EncodeToggle(false)))
	assert.Equal(t, "smb", DecodeToggle("smb"))
	assert.Equal(t, "/bin/bash", DecodeToggle("/bin/bash"))
}

func TestFromNative(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Value
		ok   bool
	}{
		{"true", true, Scalar("enable"), true},
		{"false", false, Scalar("disable"), true},
		{"string", "smb", Scalar("smb"), true},
		{"uint", uint64(14), Scalar("14"), true},
		{"array", []any{"a", "b"}, List("a", "b"), true},
		{"nil", nil, Value{}, false},
		{"dict", map[string]any{"x": 1}, Value{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromNative(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %v", got)
				assert.Equal(t, tt.want.IsList(), got.IsList())
			}
		})
	}
}

func TestParse(t *testing.T) {
	mobile, _ := Lookup(Mobile)
	v, err := Parse(mobile, true)
	require.NoError(t, err)
	assert.Equal(t, "enable", v.String())

	v, err = Parse(mobile, "disable")
	require.NoError(t, err)
	assert.Equal(t, "disable", v.String())

	_, err = Parse(mobile, "sometimes")
	assert.Error(t, err)

	groups, _ := Lookup(Groups)
	v, err = Parse(groups, []any{"admins", "staff"})
	require.NoError(t, err)
	assert.Equal(t, "admins,staff", v.String())

	v, err = Parse(groups, nil)
	require.NoError(t, err)
	assert.True(t, v.IsEmpty())
	assert.True(t, v.IsList())

	_, err = Parse(groups, []any{"admins", 3})
	assert.Error(t, err)

	protocol, _ := Lookup(Protocol)
	_, err = Parse(protocol, "nfs")
	assert.Error(t, err)

	interval, _ := Lookup(PassInterval)
	v, err = Parse(interval, 14)
	require.NoError(t, err)
	assert.Equal(t, "14", v.String())
	_, err = Parse(interval, "fortnight")
	assert.Error(t, err)
}

func TestValueEqual(t *testing.T) {
	assert.True(t, List("a").Equal(Scalar("a")))
	assert.False(t, List("a", "b").Equal(List("b", "a")))
	assert.True(t, List().Equal(Scalar("")))
	assert.Equal(t, true, Bool(true).Native())
	assert.Equal(t, []string{"x"}, List("x").Native())
}

func TestValueJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Value{"groups": List("a", "b"), "shell": Scalar("/bin/zsh"), "none": List()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"groups":["a","b"],"shell":"/bin/zsh","none":[]}`, string(data))
}

func TestValueJSONRoundTrip(t *testing.T) {
	var got map[string]Value
	require.NoError(t, json.Unmarshal([]byte(`{"groups":["a","b"],"shell":"/bin/zsh","interval":14}`), &got))
	assert.Equal(t, []string{"a", "b"}, got["groups"].Items())
	assert.True(t, got["groups"].IsList())
	assert.Equal(t, "/bin/zsh", got["shell"].String())
	assert.Equal(t, "14", got["interval"].String())

	var bad Value
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &bad))
}
