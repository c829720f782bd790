// Package trace records dsconfigad invocations and reconciliation passes
// as JSONL events.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ormasoftchile/adbind/pkg/dsconfigad"
	"github.com/ormasoftchile/adbind/pkg/reconcile"
)

// Event types.
const (
	TypeInvocation = "invocation"
	TypePass       = "pass"
)

// Event is one line of a trace file.
type Event struct {
	Type       string            `json:"type"`
	Timestamp  time.Time         `json:"timestamp"`
	RunID      string            `json:"run_id"`
	Invocation *Invocation       `json:"invocation,omitempty"`
	Report     *reconcile.Report `json:"report,omitempty"`
}

// Invocation is the traced form of a dsconfigad call. Args are redacted.
type Invocation struct {
	Args       []string `json:"args"`
	ExitCode   int      `json:"exit_code"`
	DurationMs int64    `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
}

// Writer appends events to a JSONL trace file.
type Writer struct {
	file   *os.File
	writer *bufio.Writer
	enc    *json.Encoder
	runID  string

	// Err holds the first write error seen by Observe, which cannot
	// return one.
	Err error
}

// NewWriter opens path for appending. Every event is stamped with runID.
func NewWriter(path, runID string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	w := bufio.NewWriter(f)
	return &Writer{
		file:   f,
		writer: w,
		enc:    json.NewEncoder(w),
		runID:  runID,
	}, nil
}

// Observe records a completed invocation. It matches dsconfigad.Client.Observe.
func (tw *Writer) Observe(inv dsconfigad.Invocation) {
	rec := &Invocation{
		Args:       inv.Args,
		ExitCode:   inv.ExitCode,
		DurationMs: inv.Duration.Milliseconds(),
	}
	if inv.Err != nil {
		rec.Error = inv.Err.Error()
	}
	err := tw.write(Event{Type: TypeInvocation, Invocation: rec})
	if err != nil && tw.Err == nil {
		tw.Err = err
	}
}

// WriteReport records the outcome of one pass.
func (tw *Writer) WriteReport(rep *reconcile.Report) error {
	return tw.write(Event{Type: TypePass, Report: rep})
}

func (tw *Writer) write(ev Event) error {
	ev.Timestamp = time.Now()
	ev.RunID = tw.runID
	if err := tw.enc.Encode(ev); err != nil {
		return fmt.Errorf("encode trace event: %w", err)
	}
	// Flush and sync at event boundaries
	if err := tw.writer.Flush(); err != nil {
		return fmt.Errorf("flush trace: %w", err)
	}
	if err := tw.file.Sync(); err != nil {
		return fmt.Errorf("sync trace: %w", err)
	}
	return nil
}

// Close flushes and closes the trace file.
func (tw *Writer) Close() error {
	if err := tw.writer.Flush(); err != nil {
		return err
	}
	return tw.file.Close()
}

// ReadFile parses a trace file written by Writer.
func ReadFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	defer f.Close()

	var events []Event
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			return nil, fmt.Errorf("trace line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	return events, sc.Err()
}
