// Package dsconfigad invokes the macOS Active Directory plugin
// configuration tool through a providers.CommandExecutor.
package dsconfigad

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ormasoftchile/adbind/pkg/governance"
	"github.com/ormasoftchile/adbind/pkg/providers"
)

// DefaultPath is where macOS ships the tool.
const DefaultPath = "/usr/sbin/dsconfigad"

// QueryArgs selects structured (plist) query output.
var QueryArgs = []string{"-show", "-xml"}

// ErrToolFailure is matched by every *ToolError.
var ErrToolFailure = errors.New("dsconfigad failed")

// ToolError reports an invocation that exited non-zero or could not be
// started. Args are already redacted.
type ToolError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	cmd := strings.Join(e.Args, " ")
	if e.Err != nil {
		return fmt.Sprintf("dsconfigad %s: %v", cmd, e.Err)
	}
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(e.Stdout)
	}
	return fmt.Sprintf("dsconfigad %s: exit status %d: %s", cmd, e.ExitCode, msg)
}

func (e *ToolError) Unwrap() error { return e.Err }

func (e *ToolError) Is(target error) bool { return target == ErrToolFailure }

// Invocation describes one completed call, reported to Client.Observe.
type Invocation struct {
	Args     []string // redacted
	ExitCode int
	Duration time.Duration
	Err      error
}

// Client runs dsconfigad. It holds no state between calls.
type Client struct {
	Path     string
	Executor providers.CommandExecutor
	// Observe, when set, is called after every invocation attempt.
	Observe func(Invocation)
	// Redactor masks Invocation and ToolError contents. Secret flag
	// values are masked even when it is nil.
	Redactor *governance.Redactor
}

// New returns a Client for the tool at path using exec.
func New(path string, exec providers.CommandExecutor) *Client {
	if path == "" {
		path = DefaultPath
	}
	return &Client{Path: path, Executor: exec}
}

// Query runs the tool in structured query mode and returns its stdout.
func (c *Client) Query(ctx context.Context) ([]byte, error) {
	res, err := c.run(ctx, QueryArgs)
	if err != nil {
		return nil, err
	}
	return res.Stdout, nil
}

// Run executes a mutating invocation. Failures are returned as *ToolError
// and never retried.
func (c *Client) Run(ctx context.Context, args []string) error {
	_, err := c.run(ctx, args)
	return err
}

func (c *Client) run(ctx context.Context, args []string) (*providers.CommandResult, error) {
	start := time.Now()
	res, err := c.Executor.Execute(ctx, c.Path, args, nil)

	inv := Invocation{Args: c.Redactor.Argv(args), Duration: time.Since(start)}
	var toolErr *ToolError
	switch {
	case err != nil:
		if providers.IsExecNotFound(err) {
			err = fmt.Errorf("%s not found: %w", c.Path, err)
		}
		toolErr = &ToolError{Args: inv.Args, ExitCode: -1, Err: err}
	case res.ExitCode != 0:
		toolErr = &ToolError{
			Args:     inv.Args,
			ExitCode: res.ExitCode,
			Stdout:   c.Redactor.Text(string(res.Stdout)),
			Stderr:   c.Redactor.Text(string(res.Stderr)),
		}
	}
	if res != nil {
		inv.ExitCode = res.ExitCode
		if res.Duration > 0 {
			inv.Duration = res.Duration
		}
	}
	if toolErr != nil {
		inv.Err = toolErr
	}
	if c.Observe != nil {
		c.Observe(inv)
	}
	if toolErr != nil {
		return nil, toolErr
	}
	return res, nil
}
