package reconcile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ormasoftchile/adbind/pkg/flags"
	"github.com/ormasoftchile/adbind/pkg/governance"
	"github.com/ormasoftchile/adbind/pkg/property"
	"github.com/ormasoftchile/adbind/pkg/state"
)

// Runner issues one mutating dsconfigad invocation. *dsconfigad.Client
// implements it.
type Runner interface {
	Run(ctx context.Context, args []string) error
}

// SnapshotReader reads the current binding. *state.Reader implements it.
type SnapshotReader interface {
	Read(ctx context.Context) (*state.Snapshot, error)
}

type intent int

const (
	intentNone intent = iota
	intentPresent
	intentAbsent
)

// Provider is the per-pass binding state machine. Create, Destroy and Set
// only record intent; Flush performs at most one invocation and then
// replaces the known snapshot with a fresh read. A Provider is not safe
// for concurrent use.
type Provider struct {
	Tool     Runner
	Reader   SnapshotReader
	Desired  *Desired
	Logger   *slog.Logger
	Redactor *governance.Redactor

	current *state.Snapshot
	intent  intent
	pending flags.Builder
}

// NewProvider returns a Provider starting from the snapshot current.
func NewProvider(tool Runner, reader SnapshotReader, desired *Desired, current *state.Snapshot) *Provider {
	if current == nil {
		current = state.Empty()
	}
	return &Provider{Tool: tool, Reader: reader, Desired: desired, current: current}
}

// Current returns the last known snapshot.
func (p *Provider) Current() *state.Snapshot { return p.current }

// Exists reports whether the last known snapshot is bound.
func (p *Provider) Exists() bool { return p.current.IsBound() }

// Create records the intent to bind. Against a bound host Flush
// configures instead.
func (p *Provider) Create() { p.intent = intentPresent }

// Destroy records the intent to unbind.
func (p *Provider) Destroy() { p.intent = intentAbsent }

// Set records a property change for the next configuration invocation.
func (p *Provider) Set(key property.Key, v property.Value) error {
	d, err := property.Lookup(key)
	if err != nil {
		return err
	}
	if !d.Configurable {
		return errors.New(string(key) + " cannot be changed without rebinding")
	}
	p.pending.Add(d, v)
	return nil
}

// Flush turns the recorded intent into at most one invocation and returns
// the action taken. Required parameters are checked before anything runs;
// a missing one yields ActionNone.
// After an invocation, successful or not, the snapshot is re-read. Pending
// intent is cleared in every case.
func (p *Provider) Flush(ctx context.Context) (Action, error) {
	defer p.reset()

	var (
		action Action
		frags  []flags.Fragment
		err    error
	)
	switch {
	case p.intent == intentAbsent:
		if !p.Exists() {
			return ActionNone, nil
		}
		action = ActionUnbind
		frags, err = UnbindFragments(p.Desired)
	case p.intent == intentPresent && !p.Exists():
		action = ActionBind
		frags, err = BindFragments(p.Desired)
	default:
		action = ActionConfigure
		frags = p.pending.Fragments()
		if len(frags) == 0 && p.intent == intentPresent {
			frags = ConfigureFragments(p.Desired)
		}
		if len(frags) == 0 {
			return ActionNone, nil
		}
	}
	if err != nil {
		return ActionNone, err
	}

	p.notice(action, frags)
	runErr := p.Tool.Run(ctx, flags.Args(frags))

	snap, readErr := p.Reader.Read(ctx)
	if readErr == nil {
		p.current = snap
	}
	return action, errors.Join(runErr, readErr)
}

func (p *Provider) notice(action Action, frags []flags.Fragment) {
	log := p.logger()
	cmd := p.Redactor.Text(Preview(frags))
	switch action {
	case ActionBind:
		log.Info("binding to domain", "domain", p.Desired.Name, "args", cmd)
	case ActionUnbind:
		log.Info("unbinding from domain", "domain", p.current.Name, "args", cmd)
	default:
		log.Info("configuring plugin", "domain", p.current.Name, "args", cmd)
	}
}

func (p *Provider) reset() {
	p.intent = intentNone
	p.pending.Reset()
}

func (p *Provider) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// BindFragments builds the bind invocation:
// -add <name> -computer <c> -username <u> -password <p> [-ou <ou>] [-force].
func BindFragments(d *Desired) ([]flags.Fragment, error) {
	required := []struct{ field, value string }{
		{"name", d.Name},
		{"computer", d.Computer},
		{"username", d.Username},
		{"password", d.Password},
	}
	for _, r := range required {
		if isUnset(r.value) {
			return nil, &MissingParameterError{Field: r.field}
		}
	}

	frags := []flags.Fragment{
		flags.Operand("add", d.Name),
		flags.Value("computer", d.Computer),
		flags.Value("username", d.Username),
		flags.Value("password", d.Password),
	}
	if !isUnset(d.OU) {
		frags = append(frags, flags.Value("ou", d.OU))
	}
	if d.Force {
		frags = append(frags, flags.Switch("force"))
	}
	return frags, nil
}

// UnbindFragments builds the unbind invocation: -leave when Leave is set,
// otherwise -remove -username <u> -password <p> [-force].
func UnbindFragments(d *Desired) ([]flags.Fragment, error) {
	if d.Leave {
		return []flags.Fragment{flags.Switch("leave")}, nil
	}
	if isUnset(d.Username) {
		return nil, &MissingParameterError{Field: "username"}
	}
	if isUnset(d.Password) {
		return nil, &MissingParameterError{Field: "password"}
	}
	frags := []flags.Fragment{
		flags.Switch("remove"),
		flags.Value("username", d.Username),
		flags.Value("password", d.Password),
	}
	if d.Force {
		frags = append(frags, flags.Switch("force"))
	}
	return frags, nil
}

// ConfigureFragments builds configuration flags for every declared
// property, in table order.
func ConfigureFragments(d *Desired) []flags.Fragment {
	var b flags.Builder
	for key, v := range d.Properties {
		if desc, err := property.Lookup(key); err == nil && desc.Configurable {
			b.Add(desc, v)
		}
	}
	return b.Fragments()
}

// Preview renders frags for display with secret values masked.
func Preview(frags []flags.Fragment) string {
	masked := make([]flags.Fragment, len(frags))
	for i, f := range frags {
		if governance.IsSecretFlag(f.Flag) {
			f.Value = governance.Mask
		}
		masked[i] = f
	}
	return flags.Render(masked)
}

// Command renders the invocation a pass would issue for plan, with secrets
// masked. It is empty for plans that issue nothing.
func Command(plan *Plan, d *Desired) (string, error) {
	var (
		frags []flags.Fragment
		err   error
	)
	switch plan.Action {
	case ActionBind:
		frags, err = BindFragments(d)
	case ActionUnbind:
		frags, err = UnbindFragments(d)
	case ActionConfigure:
		var b flags.Builder
		for _, c := range plan.Changes {
			if err := b.Set(c.Key, c.Desired); err != nil {
				return "", err
			}
		}
		frags = b.Fragments()
	default:
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return Preview(frags), nil
}
