// Package report renders the final StackReport for the operator. It is
// pure summarization: no Docker queries, no state changes, no failure
// modes of its own beyond a write error on the output stream.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/shinji-kodama/stackup/internal/model"
)

// Render writes the report to w in human-readable form: a header line,
// one status line per service in startup order, warnings, and the elapsed
// time. pterm handles styling; the strings themselves stay greppable.
func Render(w io.Writer, r *model.StackReport) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Stack %q: %s", r.Project, phaseLabel(r.Phase))
	if r.Ticks > 0 {
		fmt.Fprintf(&b, " after %d poll(s)", r.Ticks)
	}
	if r.Elapsed > 0 {
		fmt.Fprintf(&b, " in %s", r.Elapsed.Round(100*time.Millisecond))
	}
	b.WriteString("\n\n")

	rows := pterm.TableData{{"SERVICE", "STATE", "CONTAINER"}}
	for _, s := range r.Services {
		rows = append(rows, []string{s.Name, stateLabel(s), s.ContainerName})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		return fmt.Errorf("failed to render service table: %w", err)
	}
	b.WriteString(table)
	b.WriteString("\n")

	for _, warning := range r.Warnings {
		b.WriteString(pterm.Warning.Sprintln(warning))
	}

	_, err = io.WriteString(w, b.String())
	return err
}

// RenderJSON writes the report as indented JSON for machine consumers.
func RenderJSON(w io.Writer, r *model.StackReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// phaseLabel maps the probe phase to the report's header wording.
func phaseLabel(p model.ProbePhase) string {
	switch p {
	case model.PhaseReady:
		return "ready"
	case model.PhaseTimedOut:
		return "readiness timed out"
	default:
		return "waiting"
	}
}

// stateLabel maps a service observation to its display label. "Up" is the
// success wording; everything else names the problem.
func stateLabel(s model.ServiceStatus) string {
	if s.Up() {
		return "Up"
	}
	switch s.State {
	case model.StateRunning:
		// Running but failing (or still starting) its healthcheck.
		return "Up (" + s.Health + ")"
	case model.StateStarting:
		return "Starting"
	case model.StateExited:
		return "Exited"
	default:
		return "Missing"
	}
}
