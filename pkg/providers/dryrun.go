package providers

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
)

// DryRunExecutor passes read-only invocations through to Next and reports
// every other command instead of running it.
type DryRunExecutor struct {
	Next CommandExecutor
	Out  io.Writer
	// ReadOnly lists argument tokens that mark a query, e.g. "-show".
	ReadOnly []string
	// Redact renders argv for display; nil prints it as is.
	Redact func(args []string) string
}

func (d *DryRunExecutor) Execute(ctx context.Context, command string, args []string, env []string) (*CommandResult, error) {
	for _, a := range args {
		if slices.Contains(d.ReadOnly, a) {
			return d.Next.Execute(ctx, command, args, env)
		}
	}
	line := strings.Join(args, " ")
	if d.Redact != nil {
		line = d.Redact(args)
	}
	if d.Out != nil {
		fmt.Fprintf(d.Out, "  [dry-run] would execute: %s %s\n", command, line)
	}
	return &CommandResult{}, nil
}
