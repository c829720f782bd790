package trace

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormasoftchile/adbind/pkg/dsconfigad"
	"github.com/ormasoftchile/adbind/pkg/governance"
	"github.com/ormasoftchile/adbind/pkg/providers"
	"github.com/ormasoftchile/adbind/pkg/reconcile"
	"github.com/ormasoftchile/adbind/pkg/schema"
)

type stubExecutor struct {
	exitCode int
}

func (s *stubExecutor) Execute(ctx context.Context, command string, args []string, env []string) (*providers.CommandResult, error) {
	return &providers.CommandResult{ExitCode: s.exitCode, Stderr: []byte("Invalid credentials")}, nil
}

// TestWriteAndRead verifies invocation and pass events round-trip through
// the JSONL file with the run ID stamped on each.
func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	w, err := NewWriter(path, "run-1")
	require.NoError(t, err)

	w.Observe(dsconfigad.Invocation{Args: []string{"-show", "-xml"}, Duration: 12 * time.Millisecond})
	require.NoError(t, w.WriteReport(&reconcile.Report{RunID: "run-1", Pass: 1, Action: reconcile.ActionNone}))
	require.NoError(t, w.Close())
	require.NoError(t, w.Err)

	events, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, TypeInvocation, events[0].Type)
	assert.EqualValues(t, 12, events[0].Invocation.DurationMs)
	assert.Equal(t, TypePass, events[1].Type)
	assert.Equal(t, 1, events[1].Report.Pass)
	for _, ev := range events {
		assert.Equal(t, "run-1", ev.RunID)
	}
}

// TestObserveClientFailure verifies the client hook records redacted args
// and the failure of a mutating call.
func TestObserveClientFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	w, err := NewWriter(path, "run-2")
	require.NoError(t, err)

	c := dsconfigad.New("dsconfigad", &stubExecutor{exitCode: 1})
	c.Observe = w.Observe
	runErr := c.Run(context.Background(), []string{"-remove", "-username", "admin", "-password", "secret"})
	require.ErrorIs(t, runErr, dsconfigad.ErrToolFailure)
	w.Close()

	events, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, events, 1)

	inv := events[0].Invocation
	assert.Equal(t, 1, inv.ExitCode)
	assert.NotContains(t, strings.Join(inv.Args, " "), "secret", "password leaked into trace")
	assert.Contains(t, inv.Error, "Invalid credentials")
}

// TestObserveAppliesRedactionRules verifies manifest rules set on the
// client reach the trace.
func TestObserveAppliesRedactionRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	w, err := NewWriter(path, "run-4")
	require.NoError(t, err)

	redactor, err := governance.NewRedactor([]schema.RedactionRule{{Pattern: "svc-binder", Replace: "<user>"}})
	require.NoError(t, err)
	c := dsconfigad.New("dsconfigad", &stubExecutor{})
	c.Redactor = redactor
	c.Observe = w.Observe
	require.NoError(t, c.Run(context.Background(), []string{"-remove", "-username", "svc-binder", "-password", "secret"}))
	w.Close()

	events, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, []string{"-remove", "-username", "<user>", "-password", governance.Mask}, events[0].Invocation.Args)
}

// TestReadFileRejectsGarbage verifies malformed lines are reported with
// their line number.
func TestReadFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	w, err := NewWriter(path, "run-3")
	require.NoError(t, err)
	w.file.WriteString("not json\n")
	w.Close()

	_, err = ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}
