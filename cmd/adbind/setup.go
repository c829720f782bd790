package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ormasoftchile/adbind/pkg/dsconfigad"
	"github.com/ormasoftchile/adbind/pkg/governance"
	"github.com/ormasoftchile/adbind/pkg/providers"
	"github.com/ormasoftchile/adbind/pkg/replay"
	"github.com/ormasoftchile/adbind/pkg/schema"
	"github.com/ormasoftchile/adbind/pkg/state"
)

// Execution modes accepted by apply.
const (
	modeReal   = "real"
	modeDryRun = "dry-run"
	modeReplay = "replay"
)

func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q: use text or json", format)
}

// session is the wiring shared by status, plan and apply.
type session struct {
	client   *dsconfigad.Client
	reader   *state.Reader
	redactor *governance.Redactor
	replay   *replay.ReplayExecutor
}

// newSession builds the executor chain for mode. Replay answers from
// scenarioPath; dry-run lets queries through and prints everything else.
func newSession(mode, scenarioPath string, policy *schema.GovernancePolicy, out io.Writer) (*session, error) {
	if err := governance.NewGovernanceEngine(policy).CheckCommand(toolPath); err != nil {
		return nil, err
	}
	var rules []schema.RedactionRule
	if policy != nil {
		rules = policy.Redact
	}
	redactor, err := governance.NewRedactor(rules)
	if err != nil {
		return nil, fmt.Errorf("compile redaction rules: %w", err)
	}

	s := &session{redactor: redactor}
	var exec providers.CommandExecutor = &providers.RealExecutor{}
	if scenarioPath != "" {
		sc, err := replay.LoadScenario(scenarioPath)
		if err != nil {
			return nil, err
		}
		s.replay = replay.NewReplayExecutor(sc)
		s.replay.Redact = redactor.Argv
		exec = s.replay
	}

	switch mode {
	case modeReal:
		if s.replay != nil {
			return nil, fmt.Errorf("--scenario requires --mode replay")
		}
	case modeReplay:
		if s.replay == nil {
			return nil, fmt.Errorf("--scenario is required for replay mode")
		}
	case modeDryRun:
		exec = &providers.DryRunExecutor{
			Next:     exec,
			Out:      out,
			ReadOnly: []string{dsconfigad.QueryArgs[0]},
			Redact:   redactor.Args,
		}
	default:
		return nil, fmt.Errorf("unknown mode: %q", mode)
	}

	s.client = dsconfigad.New(toolPath, exec)
	s.client.Redactor = redactor
	s.reader = state.NewReader(s.client)
	s.reader.Logger = logger
	return s, nil
}

// readOnlyMode is the mode for commands that never mutate: replay when a
// scenario is given, real otherwise.
func readOnlyMode() string {
	if scenario != "" {
		return modeReplay
	}
	return modeReal
}
