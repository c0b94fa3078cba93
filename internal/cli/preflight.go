// Package cli — preflight.go implements the "stackup preflight" command:
// the read-only host checks on their own, so an operator can verify a
// machine before letting up mutate it.
package cli

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/stackup/internal/compose"
	"github.com/shinji-kodama/stackup/internal/preflight"
)

// NewPreflightCommand creates the "preflight" cobra command.
func NewPreflightCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check the host without changing anything",
		Long: `Run the read-only environment checks: host OS identity, Docker Engine
presence and version, Compose plugin availability, and compose descriptor
validity. Nothing on the host is modified.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreflight(cmd.Context())
		},
	}
}

// runPreflight executes each check in pipeline order and stops at the
// first failure, mirroring exactly what up would reject.
func runPreflight(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	checker := preflight.NewChecker()

	host, err := checker.CheckHost()
	if err != nil {
		return err
	}
	checkPassed("Host OS supported: %s", host)

	if err := checker.CheckDocker(ctx, cfg.MinDockerVersion); err != nil {
		return err
	}
	checkPassed("Docker Engine present at version >= %s", cfg.MinDockerVersion)

	if err := checker.CheckCompose(ctx); err != nil {
		return err
	}
	checkPassed("Compose plugin available")

	descriptor, err := compose.LoadDescriptor(cfg.DescriptorPath)
	if err != nil {
		return err
	}
	if err := descriptor.Validate(cfg.Services()); err != nil {
		return err
	}
	checkPassed("Descriptor %q valid", cfg.DescriptorPath)

	return nil
}

// checkPassed prints one passed check, staying quiet in JSON mode where
// stdout belongs to structured output only.
func checkPassed(format string, args ...interface{}) {
	if !IsJSONOutput() {
		pterm.Success.Printfln(format, args...)
	}
}
