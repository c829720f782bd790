// Package reconcile converges a host's Active Directory binding onto a
// declared desired state.
//
// A pass reads a fresh snapshot, evaluates the binding guard, diffs, and
// issues at most one mutating dsconfigad invocation through a Provider.
// Binding and configuring therefore take two passes; Converge repeats
// passes until nothing is left to do.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ormasoftchile/adbind/pkg/governance"
	"github.com/ormasoftchile/adbind/pkg/state"
)

// DefaultMaxPasses bounds Converge: bind, configure, verify.
const DefaultMaxPasses = 3

// ErrNotConverged is returned by Converge when passes run out while
// changes are still pending.
var ErrNotConverged = errors.New("binding did not converge")

// Report describes one reconciliation pass.
type Report struct {
	RunID    string        `json:"runId"`
	Pass     int           `json:"pass"`
	Plan     *Plan         `json:"plan"`
	Action   Action        `json:"action"` // what was invoked; none when nothing ran
	Command  string        `json:"command,omitempty"`
	Before   state.View    `json:"before"`
	After    *state.View   `json:"after,omitempty"`
	Duration time.Duration `json:"durationNs"`
	Error    string        `json:"error,omitempty"`
}

// Reconciler runs passes against one host.
type Reconciler struct {
	Tool     Runner
	Reader   SnapshotReader
	Logger   *slog.Logger
	Redactor *governance.Redactor
	// Host facts merged into the guard environment; see HostFacts.
	Host  map[string]any
	RunID string
}

// New returns a Reconciler with a fresh run ID.
func New(tool Runner, reader SnapshotReader) *Reconciler {
	return &Reconciler{
		Tool:   tool,
		Reader: reader,
		Host:   HostFacts(),
		RunID:  uuid.NewString(),
	}
}

// Plan reads the current snapshot and computes what a pass would do,
// without issuing any mutating call.
func (r *Reconciler) Plan(ctx context.Context, d *Desired) (*Plan, *state.Snapshot, error) {
	snap, err := r.Reader.Read(ctx)
	if err != nil {
		return nil, nil, err
	}
	plan, err := r.plan(snap, d)
	if err != nil {
		return nil, snap, err
	}
	return plan, snap, nil
}

func (r *Reconciler) plan(snap *state.Snapshot, d *Desired) (*Plan, error) {
	ok, err := EvalGuard(d.When, GuardEnv(snap, r.Host))
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Plan{Action: ActionSkip, Reason: "condition " + d.When + " is false"}, nil
	}
	return Diff(snap, d), nil
}

// Apply runs a single pass. The returned report is never nil when the
// snapshot could be read, including when the invocation failed.
func (r *Reconciler) Apply(ctx context.Context, d *Desired) (*Report, error) {
	return r.pass(ctx, d, 1)
}

func (r *Reconciler) pass(ctx context.Context, d *Desired, n int) (*Report, error) {
	start := time.Now()
	plan, snap, err := r.Plan(ctx, d)
	if snap == nil {
		return nil, err
	}
	rep := &Report{RunID: r.RunID, Pass: n, Plan: plan, Action: ActionNone, Before: snap.View()}
	finish := func(err error) (*Report, error) {
		rep.Duration = time.Since(start)
		if err != nil {
			rep.Error = err.Error()
		}
		return rep, err
	}
	if err != nil {
		return finish(err)
	}

	log := r.logger().With("run", r.RunID, "pass", n)
	log.Debug("planned", "action", plan.Action, "changes", len(plan.Changes))

	if cmd, err := Command(plan, d); err == nil && cmd != "" {
		rep.Command = r.Redactor.Text(cmd)
	}

	p := NewProvider(r.Tool, r.Reader, d, snap)
	p.Logger = log
	p.Redactor = r.Redactor

	switch plan.Action {
	case ActionNone, ActionSkip:
		return finish(nil)
	case ActionConflict:
		return finish(fmt.Errorf("%w: %s", ErrDomainConflict, plan.Reason))
	case ActionBind:
		p.Create()
	case ActionUnbind:
		p.Destroy()
	case ActionConfigure:
		for _, c := range plan.Changes {
			if err := p.Set(c.Key, c.Desired); err != nil {
				return finish(err)
			}
		}
	}

	rep.Action, err = p.Flush(ctx)
	after := p.Current().View()
	rep.After = &after
	return finish(err)
}

// Converge runs passes until a pass has nothing to do, an error occurs or
// maxPasses is reached. Reports for every pass are returned.
func (r *Reconciler) Converge(ctx context.Context, d *Desired, maxPasses int) ([]*Report, error) {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	var reports []*Report
	for n := 1; n <= maxPasses; n++ {
		rep, err := r.pass(ctx, d, n)
		if rep != nil {
			reports = append(reports, rep)
		}
		if err != nil {
			return reports, err
		}
		if rep.Action == ActionNone {
			return reports, nil
		}
	}
	return reports, fmt.Errorf("%w after %d passes", ErrNotConverged, maxPasses)
}

func (r *Reconciler) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.DiscardHandler)
}
