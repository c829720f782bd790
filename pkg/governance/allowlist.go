// Package governance implements the tool allowlist and secret redaction
// applied to every dsconfigad invocation.
package governance

import (
	"fmt"
	"slices"

	"github.com/ormasoftchile/adbind/pkg/schema"
)

// GovernanceEngine evaluates the manifest's governance policy before any
// invocation.
type GovernanceEngine struct {
	AllowedTools []string
	DeniedTools  []string
}

// NewGovernanceEngine creates a GovernanceEngine from a GovernancePolicy.
// If policy is nil, returns a permissive engine.
func NewGovernanceEngine(policy *schema.GovernancePolicy) *GovernanceEngine {
	if policy == nil {
		return &GovernanceEngine{}
	}
	return &GovernanceEngine{
		AllowedTools: policy.AllowedTools,
		DeniedTools:  policy.DeniedTools,
	}
}

// CheckCommand validates the tool path against the allowlist/denylist.
// Deny takes precedence over allow.
func (g *GovernanceEngine) CheckCommand(command string) error {
	if slices.Contains(g.DeniedTools, command) {
		return fmt.Errorf("tool %q is denied by governance policy", command)
	}
	if len(g.AllowedTools) > 0 && !slices.Contains(g.AllowedTools, command) {
		return fmt.Errorf("tool %q is not in the governance allowlist", command)
	}
	return nil
}
