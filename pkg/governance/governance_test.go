package governance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormasoftchile/adbind/pkg/schema"
)

// TestAllowlistAcceptsAllowedTool verifies allowed tools pass.
func TestAllowlistAcceptsAllowedTool(t *testing.T) {
	g := &GovernanceEngine{AllowedTools: []string{"/usr/sbin/dsconfigad"}}
	assert.NoError(t, g.CheckCommand("/usr/sbin/dsconfigad"))
}

// TestAllowlistRejectsUnlistedTool verifies non-allowed tools are blocked.
func TestAllowlistRejectsUnlistedTool(t *testing.T) {
	g := &GovernanceEngine{AllowedTools: []string{"/usr/sbin/dsconfigad"}}
	assert.Error(t, g.CheckCommand("/tmp/dsconfigad"))
}

// TestDenyWins verifies deny takes precedence over allow.
func TestDenyWins(t *testing.T) {
	g := NewGovernanceEngine(&schema.GovernancePolicy{
		AllowedTools: []string{"/usr/sbin/dsconfigad"},
		DeniedTools:  []string{"/usr/sbin/dsconfigad"},
	})
	assert.ErrorContains(t, g.CheckCommand("/usr/sbin/dsconfigad"), "denied")
}

// TestNoGovernanceAllowsAll verifies that a nil policy permits everything.
func TestNoGovernanceAllowsAll(t *testing.T) {
	assert.NoError(t, NewGovernanceEngine(nil).CheckCommand("anything"))
}

func TestRedactArgs(t *testing.T) {
	args := []string{"-remove", "-username", "admin", "-password", "secret", "-force"}
	got := RedactArgs(args)
	assert.Equal(t, []string{"-remove", "-username", "admin", "-password", Mask, "-force"}, got)
	assert.Equal(t, "secret", args[4], "RedactArgs must not modify its input")
}

func TestRedactArgsTrailingFlag(t *testing.T) {
	assert.Equal(t, []string{"-password"}, RedactArgs([]string{"-password"}))
}

func TestRedactorRules(t *testing.T) {
	r, err := NewRedactor([]schema.RedactionRule{{Pattern: `admin\w*`, Replace: "<user>"}})
	require.NoError(t, err)
	assert.Equal(t, "-username <user> -password "+Mask, r.Args([]string{"-username", "administrator", "-password", "pw"}))
}

func TestRedactorInvalidRule(t *testing.T) {
	_, err := NewRedactor([]schema.RedactionRule{{Pattern: "("}})
	assert.Error(t, err)
}

func TestNilRedactor(t *testing.T) {
	var r *Redactor
	assert.Equal(t, "-password "+Mask, r.Args([]string{"-password", "pw"}))
	assert.Equal(t, "plain", r.Text("plain"))
}

// TestRedactorArgv verifies rules apply per argument and the input is left
// untouched.
func TestRedactorArgv(t *testing.T) {
	r, err := NewRedactor([]schema.RedactionRule{{Pattern: "svc-binder", Replace: "<user>"}})
	require.NoError(t, err)

	args := []string{"-remove", "-username", "svc-binder", "-password", "pw"}
	assert.Equal(t, []string{"-remove", "-username", "<user>", "-password", Mask}, r.Argv(args))
	assert.Equal(t, "svc-binder", args[2], "caller's args must not be modified")

	var nilRedactor *Redactor
	assert.Equal(t, []string{"-remove", "-username", "svc-binder", "-password", Mask}, nilRedactor.Argv(args))
}
