package providers

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealExecutorEcho(t *testing.T) {
	r := &RealExecutor{}
	result, err := r.Execute(context.Background(), "echo", []string{"hello"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", strings.TrimSpace(string(result.Stdout)))
	assert.Equal(t, 0, result.ExitCode)
}

// Values containing spaces and quotes must reach the process as one token.
func TestRealExecutorArgsAreSingleTokens(t *testing.T) {
	r := &RealExecutor{}
	result, err := r.Execute(context.Background(), "printf", []string{"%s|", `EXAMPLE\Domain Admins,"staff"`}, nil)
	require.NoError(t, err)
	assert.Equal(t, `EXAMPLE\Domain Admins,"staff"|`, string(result.Stdout))
}

func TestRealExecutorNonZeroExit(t *testing.T) {
	r := &RealExecutor{}
	result, err := r.Execute(context.Background(), "sh", []string{"-c", "echo boom >&2; exit 3"}, nil)
	require.NoError(t, err, "non-zero exit should not be an error")
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "boom", strings.TrimSpace(string(result.Stderr)))
}

func TestRealExecutorMissingBinary(t *testing.T) {
	r := &RealExecutor{}
	_, err := r.Execute(context.Background(), "/nonexistent/dsconfigad", nil, nil)
	require.Error(t, err)
	assert.True(t, IsExecNotFound(err) || strings.Contains(err.Error(), "no such file"), "unexpected error: %v", err)
}

func TestIsExecNotFound(t *testing.T) {
	assert.True(t, IsExecNotFound(exec.ErrNotFound))
	assert.True(t, IsExecNotFound(&exec.Error{Name: "bogus", Err: exec.ErrNotFound}))
}

type countingExecutor struct{ calls int }

func (c *countingExecutor) Execute(ctx context.Context, command string, args []string, env []string) (*CommandResult, error) {
	c.calls++
	return &CommandResult{Stdout: []byte("ok")}, nil
}

func TestDryRunPassesQueriesThrough(t *testing.T) {
	next := &countingExecutor{}
	var out bytes.Buffer
	d := &DryRunExecutor{Next: next, Out: &out, ReadOnly: []string{"-show"}}

	res, err := d.Execute(context.Background(), "dsconfigad", []string{"-show", "-xml"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(res.Stdout))
	assert.Equal(t, 1, next.calls)

	_, err = d.Execute(context.Background(), "dsconfigad", []string{"-leave"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls, "mutating call reached the executor")
	assert.Contains(t, out.String(), "would execute: dsconfigad -leave")
}
