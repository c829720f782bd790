package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/adbind/pkg/ecosystem/recorder"
	"github.com/ormasoftchile/adbind/pkg/reconcile"
	"github.com/ormasoftchile/adbind/pkg/trace"
)

// --- plan ---

var planJSON bool

var planCmd = &cobra.Command{
	Use:   "plan [manifest.yaml]",
	Short: "Show what apply would change, without changing anything",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(args[0])
	if err != nil {
		return err
	}
	d, err := reconcile.FromManifest(&m.Binding, os.Getenv)
	if err != nil {
		return err
	}
	s, err := newSession(readOnlyMode(), scenario, m.Governance, os.Stdout)
	if err != nil {
		return err
	}

	r := reconcile.New(nil, s.reader)
	r.Logger = logger
	plan, snap, err := r.Plan(context.Background(), d)
	if err != nil {
		return err
	}
	command, cmdErr := reconcile.Command(plan, d)
	command = s.redactor.Text(command)

	if planJSON {
		out := map[string]any{"plan": plan, "current": snap.View()}
		if command != "" {
			out["command"] = command
		}
		if cmdErr != nil {
			out["error"] = cmdErr.Error()
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		fmt.Println(renderPresence(snap.View()))
		fmt.Print(renderPlan(plan, command))
	}
	if cmdErr != nil {
		return cmdErr
	}
	if plan.Action == reconcile.ActionConflict {
		return fmt.Errorf("%w: %s", reconcile.ErrDomainConflict, plan.Reason)
	}
	return nil
}

// --- apply ---

var (
	applyMode      string
	applyTrace     string
	applyMaxPasses int
	applyJSON      bool
	applyRecord    string
)

var applyCmd = &cobra.Command{
	Use:   "apply [manifest.yaml]",
	Short: "Reconcile the host's AD binding with a manifest",
	Args:  cobra.ExactArgs(1),
	RunE:  runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return apply(ctx, args[0], os.Stdout)
}

func apply(ctx context.Context, path string, out io.Writer) error {
	m, err := loadManifest(path)
	if err != nil {
		return err
	}
	d, err := reconcile.FromManifest(&m.Binding, os.Getenv)
	if err != nil {
		return err
	}

	mode := applyMode
	if scenario != "" && mode == modeReal {
		mode = modeReplay
	}
	if mode == modeReal {
		if err := requireRoot(); err != nil {
			return err
		}
	}
	s, err := newSession(mode, scenario, m.Governance, out)
	if err != nil {
		return err
	}

	var rec *recorder.Recorder
	if applyRecord != "" {
		rec = recorder.New(s.client.Executor)
		rec.SetSecrets(d.Password)
		rec.Redactor = s.redactor
		s.client.Executor = rec
	}

	r := reconcile.New(s.client, s.reader)
	r.Logger = logger
	r.Redactor = s.redactor

	var tw *trace.Writer
	if applyTrace != "" {
		tw, err = trace.NewWriter(applyTrace, r.RunID)
		if err != nil {
			return err
		}
		defer tw.Close()
		s.client.Observe = tw.Observe
	}

	if !applyJSON {
		fmt.Fprintf(out, "Run ID: %s\n", r.RunID)
		fmt.Fprintf(out, "Mode: %s\n", mode)
	}

	// A dry run never changes the host, so further passes would repeat
	// the first one.
	passes := applyMaxPasses
	if mode == modeDryRun {
		passes = 1
	}
	reports, runErr := r.Converge(ctx, d, passes)
	if mode == modeDryRun && errors.Is(runErr, reconcile.ErrNotConverged) {
		runErr = nil
	}

	for _, rep := range reports {
		if tw != nil {
			if err := tw.WriteReport(rep); err != nil {
				logger.Warn("trace write failed", "error", err)
			}
		}
		if !applyJSON {
			fmt.Fprint(out, renderReport(rep))
		}
	}
	if tw != nil && tw.Err != nil {
		logger.Warn("trace write failed", "error", tw.Err)
	}

	if applyJSON {
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	} else if runErr == nil {
		fmt.Fprintf(out, "  %s\n", okStyle.Render(glyphOK+" "+summary(reports, mode)))
	}

	// Failed runs are recorded too; they make the most useful scenarios.
	if rec != nil {
		if err := rec.WriteFile(applyRecord); err != nil {
			logger.Warn("record scenario failed", "error", err)
		} else if !applyJSON {
			fmt.Fprintf(out, "  Scenario: %s\n", applyRecord)
		}
	}

	if s.replay != nil {
		if unused := s.replay.Unused(); len(unused) > 0 {
			logger.Warn("replay scenario entries not consumed", "count", len(unused))
		}
	}
	return runErr
}

func summary(reports []*reconcile.Report, mode string) string {
	changed := 0
	for _, rep := range reports {
		if rep.Action != reconcile.ActionNone {
			changed++
		}
	}
	switch {
	case mode == modeDryRun:
		return "dry run complete"
	case changed == 0:
		return "already in desired state"
	case changed == 1:
		return "converged after 1 change"
	}
	return fmt.Sprintf("converged after %d changes", changed)
}

func init() {
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Output as JSON")

	applyCmd.Flags().StringVar(&applyMode, "mode", modeReal, "Execution mode: real, dry-run, or replay")
	applyCmd.Flags().StringVar(&applyTrace, "trace", "", "Append a JSONL trace of invocations and passes to this file")
	applyCmd.Flags().IntVar(&applyMaxPasses, "max-passes", reconcile.DefaultMaxPasses, "Maximum reconciliation passes")
	applyCmd.Flags().BoolVar(&applyJSON, "json", false, "Output pass reports as JSON")
	applyCmd.Flags().StringVar(&applyRecord, "record", "", "Save every dsconfigad call as a replay scenario to this file")
}
