// Package recorder captures live dsconfigad invocations as a replay
// scenario, so a real run can be replayed offline later.
package recorder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/adbind/pkg/governance"
	"github.com/ormasoftchile/adbind/pkg/providers"
	"github.com/ormasoftchile/adbind/pkg/replay"
)

// Recorder wraps a CommandExecutor and captures every call in order.
type Recorder struct {
	inner    providers.CommandExecutor
	Commands []replay.ScenarioCommand
	secrets  []string // values to mask in captured output
	// Redactor applies the manifest's rules to captured argv and output.
	Redactor *governance.Redactor
}

// New creates a recording wrapper around an existing executor.
func New(inner providers.CommandExecutor) *Recorder {
	return &Recorder{inner: inner}
}

// SetSecrets configures literal values masked in captured stdout and stderr.
func (r *Recorder) SetSecrets(values ...string) {
	for _, v := range values {
		if v != "" {
			r.secrets = append(r.secrets, v)
		}
	}
}

// Execute delegates to the inner executor and records the response. Calls
// that could not start are not recorded.
func (r *Recorder) Execute(ctx context.Context, command string, args []string, env []string) (*providers.CommandResult, error) {
	result, err := r.inner.Execute(ctx, command, args, env)
	if err != nil {
		return nil, err
	}

	argv := append([]string{filepath.Base(command)}, r.Redactor.Argv(args)...)
	r.Commands = append(r.Commands, replay.ScenarioCommand{
		Argv:     argv,
		Stdout:   r.redact(string(result.Stdout)),
		Stderr:   r.redact(string(result.Stderr)),
		ExitCode: result.ExitCode,
	})
	return result, nil
}

// Scenario returns the captured calls as a replay scenario.
func (r *Recorder) Scenario() *replay.Scenario {
	return &replay.Scenario{Commands: r.Commands}
}

// WriteFile saves the captured scenario as YAML.
func (r *Recorder) WriteFile(path string) error {
	if len(r.Commands) == 0 {
		return fmt.Errorf("nothing recorded")
	}
	data, err := yaml.Marshal(r.Scenario())
	if err != nil {
		return fmt.Errorf("marshal scenario: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (r *Recorder) redact(s string) string {
	for _, v := range r.secrets {
		s = strings.ReplaceAll(s, v, governance.Mask)
	}
	return r.Redactor.Text(s)
}
