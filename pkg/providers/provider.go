// Package providers defines the CommandExecutor interface used to run the
// directory-services tool, and its real and dry-run implementations.
package providers

import (
	"context"
	"time"
)

// CommandResult holds the output of a single command execution.
type CommandResult struct {
	Stdout   []byte        `json:"stdout"`
	Stderr   []byte        `json:"stderr"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
}

// CommandExecutor abstracts real vs replay command execution.
// Implementations: RealExecutor, DryRunExecutor, replay.ReplayExecutor.
//
// A non-zero exit is reported through CommandResult.ExitCode, not as an
// error; err is reserved for commands that could not be run at all.
type CommandExecutor interface {
	Execute(ctx context.Context, command string, args []string, env []string) (*CommandResult, error)
}
