package reconcile

import (
	"fmt"
	"maps"
	"os"
	"runtime"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ormasoftchile/adbind/pkg/property"
	"github.com/ormasoftchile/adbind/pkg/state"
)

// HostFacts returns the host-level facts available to guard expressions.
func HostFacts() map[string]any {
	hostname, _ := os.Hostname()
	return map[string]any{
		"os":       runtime.GOOS,
		"hostname": hostname,
	}
}

// GuardEnv builds the expression environment for a binding guard. Every
// property key is defined, nil when the snapshot does not report it, so a
// guard compiles the same way whether or not the host is bound.
func GuardEnv(snap *state.Snapshot, host map[string]any) map[string]any {
	env := make(map[string]any, len(host)+len(property.All())+3)
	for _, d := range property.All() {
		env[string(d.Key)] = nil
	}
	maps.Copy(env, snap.Facts())
	maps.Copy(env, host)
	return env
}

// EvalGuard evaluates a `when` expression. An empty expression is true.
func EvalGuard(when string, env map[string]any) (bool, error) {
	when = strings.TrimSpace(when)
	if when == "" {
		return true, nil
	}
	program, err := expr.Compile(when, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("compile condition %q: %w", when, err)
	}
	output, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("eval condition %q: %w", when, err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q did not return bool (got %T: %v)", when, output, output)
	}
	return result, nil
}
