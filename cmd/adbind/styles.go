package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/adbind/pkg/property"
	"github.com/ormasoftchile/adbind/pkg/reconcile"
	"github.com/ormasoftchile/adbind/pkg/state"
)

// Status glyphs convey meaning without relying on color alone.
const (
	glyphBound    = "●"
	glyphNotBound = "○"
	glyphChange   = "→"
	glyphOK       = "✓"
	glyphFail     = "✗"
)

var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	boundStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	notBoundStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	labelStyle    = lipgloss.NewStyle().Foreground(colorDim)
	changeStyle   = lipgloss.NewStyle().Foreground(colorYellow)
	failStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	okStyle       = lipgloss.NewStyle().Foreground(colorGreen)
)

// padRight pads s to width display columns.
func padRight(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func renderPresence(view state.View) string {
	if view.Presence == state.Bound {
		return boundStyle.Render(glyphBound + " bound to " + view.Name)
	}
	return notBoundStyle.Render(glyphNotBound + " not bound")
}

// renderStatus lists the snapshot's properties in table order, labelled
// the way dsconfigad labels them.
func renderStatus(snap *state.Snapshot) string {
	var b strings.Builder
	b.WriteString(renderPresence(snap.View()) + "\n")

	keys := snap.Keys()
	width := 0
	for _, k := range keys {
		if w := runewidth.StringWidth(property.ToLabel(k)); w > width {
			width = w
		}
	}
	for _, k := range keys {
		v, _ := snap.Get(k)
		fmt.Fprintf(&b, "  %s  %s\n", labelStyle.Render(padRight(property.ToLabel(k), width)), displayValue(v))
	}
	return b.String()
}

func displayValue(v property.Value) string {
	if v.IsEmpty() {
		return labelStyle.Render("(none)")
	}
	return v.String()
}

// renderPlan shows the action and each property change.
func renderPlan(plan *reconcile.Plan, command string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  [plan] %s\n", headerStyle.Render(string(plan.Action)))
	if plan.Reason != "" {
		fmt.Fprintf(&b, "         %s\n", plan.Reason)
	}
	width := 0
	for _, c := range plan.Changes {
		if w := runewidth.StringWidth(string(c.Key)); w > width {
			width = w
		}
	}
	for _, c := range plan.Changes {
		fmt.Fprintf(&b, "         %s  %s %s %s\n",
			padRight(string(c.Key), width),
			displayValue(c.Current),
			changeStyle.Render(glyphChange),
			displayValue(c.Desired))
	}
	if command != "" {
		fmt.Fprintf(&b, "  [cmd]  dsconfigad %s\n", command)
	}
	return b.String()
}

func renderReport(rep *reconcile.Report) string {
	var b strings.Builder
	planned := "error"
	if rep.Plan != nil {
		planned = string(rep.Plan.Action)
	}
	fmt.Fprintf(&b, "  [pass %d] %s", rep.Pass, planned)
	if rep.Command != "" && rep.Action != reconcile.ActionNone {
		fmt.Fprintf(&b, ": dsconfigad %s", rep.Command)
	}
	b.WriteString("\n")
	switch {
	case rep.Error != "":
		fmt.Fprintf(&b, "           %s\n", failStyle.Render(glyphFail+" "+rep.Error))
	case rep.After != nil:
		fmt.Fprintf(&b, "           %s\n", renderPresence(*rep.After))
	}
	return b.String()
}
