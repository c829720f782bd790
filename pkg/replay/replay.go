package replay

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ormasoftchile/adbind/pkg/governance"
	"github.com/ormasoftchile/adbind/pkg/providers"
)

// ReplayExecutor implements CommandExecutor by matching commands against
// pre-recorded scenario entries. Fail-closed: returns an error if no match.
type ReplayExecutor struct {
	scenario *Scenario
	used     []bool // track which commands have been used
	// Redact, when set, gives incoming args a second chance to match in
	// redacted form, so scenarios recorded under the same rules replay.
	Redact func([]string) []string
}

// NewReplayExecutor creates a ReplayExecutor from a loaded scenario.
func NewReplayExecutor(s *Scenario) *ReplayExecutor {
	return &ReplayExecutor{
		scenario: s,
		used:     make([]bool, len(s.Commands)),
	}
}

// Execute matches the command+args against the first unused scenario entry
// with the same argv and returns its pre-recorded response. The command is
// also matched by base name, so scenarios may say "dsconfigad" for
// "/usr/sbin/dsconfigad".
func (r *ReplayExecutor) Execute(ctx context.Context, command string, args []string, env []string) (*providers.CommandResult, error) {
	actual := args
	if r.Redact != nil {
		actual = r.Redact(args)
	}
	for i, sc := range r.scenario.Commands {
		if r.used[i] {
			continue
		}
		if commandMatch(command, sc.Argv[0]) && (argsMatch(args, sc.Argv[1:]) || argsMatch(actual, sc.Argv[1:])) {
			r.used[i] = true
			return &providers.CommandResult{
				Stdout:   []byte(sc.Stdout),
				Stderr:   []byte(sc.Stderr),
				ExitCode: sc.ExitCode,
			}, nil
		}
	}

	fullArgv := append([]string{command}, governance.RedactArgs(actual)...)
	return nil, fmt.Errorf("replay: no matching scenario entry for command: %s", strings.Join(fullArgv, " "))
}

// Unused returns the argv of every scenario entry not yet consumed.
func (r *ReplayExecutor) Unused() [][]string {
	var out [][]string
	for i, sc := range r.scenario.Commands {
		if !r.used[i] {
			out = append(out, sc.Argv)
		}
	}
	return out
}

// argsMatch compares argv token by token. A recorded governance.Mask
// matches any value, so scenarios captured with secrets masked still replay.
func argsMatch(actual, expected []string) bool {
	return slices.EqualFunc(actual, expected, func(a, e string) bool {
		return a == e || e == governance.Mask
	})
}

func commandMatch(actual, expected string) bool {
	return actual == expected || filepath.Base(actual) == expected
}
