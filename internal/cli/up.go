// Package cli — up.go implements the "stackup up" command.
//
// up is the primary operation: the full preflight → install → converge →
// probe → smoke → report pipeline, executed once, left to right, with no
// feedback loops.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/stackup/internal/compose"
	"github.com/shinji-kodama/stackup/internal/config"
	"github.com/shinji-kodama/stackup/internal/docker"
	"github.com/shinji-kodama/stackup/internal/installer"
	"github.com/shinji-kodama/stackup/internal/model"
	"github.com/shinji-kodama/stackup/internal/preflight"
	"github.com/shinji-kodama/stackup/internal/probe"
	"github.com/shinji-kodama/stackup/internal/smoke"
)

// NewUpCommand creates the "up" cobra command.
func NewUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Provision the stack and wait for readiness",
		Long: `Provision the full three-tier stack on this host.

The command runs the complete pipeline:
  1. Verify the host OS is a supported target
  2. Install the Docker Engine and Compose plugin if absent
  3. Validate the compose descriptor
  4. Converge the stack (docker compose up -d --build)
  5. Poll every service for readiness until the deadline
  6. Run best-effort smoke checks and print the summary`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd.Context())
		},
	}
}

// runUp is the orchestration function for the up command. Every stage is
// fail-fast; the only non-fatal findings are the smoke-check warnings.
func runUp(ctx context.Context) error {
	started := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Stage 1: host check. This must reject before any mutating step.
	checker := preflight.NewChecker()
	host, err := checker.CheckHost()
	if err != nil {
		return err
	}
	VerboseLog("Host: %s", host)

	// Stage 2: descriptor check. The converge must never be attempted
	// without a valid descriptor, and finding out before a potential
	// multi-minute install saves the operator a round trip.
	descriptor, err := compose.LoadDescriptor(cfg.DescriptorPath)
	if err != nil {
		return err
	}
	if err := descriptor.Validate(cfg.Services()); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid compose descriptor %q", cfg.DescriptorPath), err)
	}
	VerboseLog("Descriptor %q declares all required services", cfg.DescriptorPath)

	// Stage 3: ensure the container runtime. Root is demanded only when
	// an install is actually required.
	verify := func(ctx context.Context) error {
		if err := checker.CheckDocker(ctx, cfg.MinDockerVersion); err != nil {
			return err
		}
		return checker.CheckCompose(ctx)
	}

	if !checker.DockerSatisfied(ctx, cfg.MinDockerVersion) {
		if err := preflight.RequireRoot(); err != nil {
			return err
		}

		spinner := startSpinner("Installing Docker Engine...")
		inst := installer.New(installer.NewAptManager(), verify)
		installed, err := inst.EnsureDocker(ctx)
		if err != nil {
			stopSpinnerFail(spinner, "Docker install failed")
			return err
		}
		if installed {
			stopSpinnerOK(spinner, "Docker Engine installed")
		}
	} else {
		VerboseLog("Docker requirement already satisfied, skipping install")
	}

	// Stage 4: restore tree ownership before the converge so a sudo run
	// does not leave the operator's project root-owned.
	projectDir, descriptorFile := splitDescriptorPath(cfg.DescriptorPath)
	if err := compose.RestoreOwnership(projectDir); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to restore project ownership", err)
	}

	// Stage 5: converge.
	spinner := startSpinner(fmt.Sprintf("Converging stack %q...", cfg.ProjectName))
	if err := compose.Up(ctx, projectDir, cfg.ProjectName, descriptorFile); err != nil {
		stopSpinnerFail(spinner, "Converge failed")
		return err
	}
	stopSpinnerOK(spinner, "Converge complete")

	// Stage 6: readiness probing through the Docker API.
	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}

	source := probe.SourceFunc(func(ctx context.Context) ([]model.ServiceStatus, error) {
		return docker.SnapshotServices(ctx, cli, cfg.ProjectName, cfg.Services())
	})
	prober := probe.New(source, cfg.PollInterval, cfg.PollCeiling)
	prober.OnTick(func(tick, maxTicks int, services []model.ServiceStatus) {
		VerboseLog("Poll %d/%d: %s", tick, maxTicks, summarize(services))
	})

	waitSpinner := startSpinner("Waiting for services...")
	result, err := prober.Wait(ctx)
	if err != nil {
		stopSpinnerFail(waitSpinner, "Readiness polling aborted")
		return model.WrapCLIError(model.ExitGeneralError, "readiness polling failed", err)
	}

	rep := &model.StackReport{
		Project:  cfg.ProjectName,
		Phase:    result.Phase,
		Services: result.Services,
		Ticks:    result.Ticks,
		Elapsed:  time.Since(started),
	}

	if result.Phase == model.PhaseTimedOut {
		stopSpinnerFail(waitSpinner, "Readiness deadline expired")
		// Print the per-service breakdown before failing so the operator
		// sees which tier never came up.
		printReport(rep)
		return model.NewCLIError(model.ExitReadinessTimeout,
			fmt.Sprintf("stack did not become ready within %s", cfg.PollCeiling))
	}
	stopSpinnerOK(waitSpinner, "All services up")

	// Stage 7: best-effort smoke checks. Failures are warnings only.
	rep.Warnings = runSmokeChecks(ctx, cfg, cli, result.Services)
	rep.Elapsed = time.Since(started)

	// Stage 8: report.
	printReport(rep)
	return nil
}

// runSmokeChecks performs the frontend HTTP check and the database log
// check, returning warnings for whatever failed. Nothing here is fatal.
func runSmokeChecks(ctx context.Context, cfg config.Config, cli *docker.Client, services []model.ServiceStatus) []string {
	var warnings []string

	sc := smoke.NewChecker(cfg.SmokeTimeout)
	if err := sc.CheckFrontend(ctx, cfg.FrontendPort); err != nil {
		warnings = append(warnings, err.Error())
	}

	dbContainer := ""
	for _, s := range services {
		if s.Name == cfg.DatabaseService {
			dbContainer = s.ContainerID
		}
	}
	scan := func(ctx context.Context, containerID, needle string) (bool, error) {
		return docker.ScanLogs(ctx, cli, containerID, needle)
	}
	if err := smoke.CheckDatabaseLog(ctx, scan, dbContainer, cfg.DatabaseReadyLine); err != nil {
		warnings = append(warnings, err.Error())
	}

	return warnings
}

// splitDescriptorPath resolves the descriptor into the directory Compose
// runs in and the file name passed to -f. Compose resolves relative paths
// in the YAML against its working directory, so the directory must be
// where the descriptor lives.
func splitDescriptorPath(path string) (dir, file string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		// Fall back to the working directory; compose will surface the
		// real problem with its own error message.
		wd, _ := os.Getwd()
		return wd, path
	}
	return filepath.Dir(abs), filepath.Base(abs)
}

// summarize renders a one-line state summary for verbose poll output.
func summarize(services []model.ServiceStatus) string {
	out := ""
	for i, s := range services {
		if i > 0 {
			out += ", "
		}
		out += s.Name + "=" + s.State.String()
		if s.Health != "" {
			out += "(" + s.Health + ")"
		}
	}
	return out
}

// startSpinner starts a pterm spinner unless JSON output is requested, in
// which case stdout must stay machine-parseable and the spinner is nil.
func startSpinner(text string) *pterm.SpinnerPrinter {
	if jsonOutput {
		return nil
	}
	s, _ := pterm.DefaultSpinner.Start(text)
	return s
}

func stopSpinnerOK(s *pterm.SpinnerPrinter, text string) {
	if s != nil {
		s.Success(text)
	}
}

func stopSpinnerFail(s *pterm.SpinnerPrinter, text string) {
	if s != nil {
		s.Fail(text)
	}
}
