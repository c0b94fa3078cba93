// Package cli — status.go implements the "stackup status" command: a
// read-only snapshot of the stack's per-service state, without converging
// or probing.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/stackup/internal/docker"
	"github.com/shinji-kodama/stackup/internal/model"
	"github.com/shinji-kodama/stackup/internal/report"
)

// NewStatusCommand creates the "status" cobra command.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current state of the stack's services",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}
}

// runStatus queries the Docker API for the stack's containers and prints
// the per-service report. No probing: the phase is "ready" when
// everything is up right now, "waiting" otherwise.
func runStatus(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}

	services, err := docker.SnapshotServices(ctx, cli, cfg.ProjectName, cfg.Services())
	if err != nil {
		return err
	}

	rep := &model.StackReport{
		Project:  cfg.ProjectName,
		Phase:    model.PhaseWaiting,
		Services: services,
	}
	if rep.AllUp() {
		rep.Phase = model.PhaseReady
	}

	printReport(rep)
	return nil
}

// printReport writes a report to stdout in the format selected by the
// --json flag. Render errors are surfaced on stderr but do not change
// the exit code — the pipeline already succeeded or failed on its own.
func printReport(r *model.StackReport) {
	var err error
	if IsJSONOutput() {
		err = report.RenderJSON(os.Stdout, r)
	} else {
		err = report.Render(os.Stdout, r)
	}
	if err != nil {
		VerboseLog("failed to print report: %v", err)
	}
}
