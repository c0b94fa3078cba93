// Package cli — down.go implements the "stackup down" command: teardown
// of the converged stack.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/stackup/internal/compose"
)

// downFlags holds the flag values for the down command.
type downFlags struct {
	volumes bool // --volumes: also remove named and anonymous volumes
}

// NewDownCommand creates the "down" cobra command.
func NewDownCommand() *cobra.Command {
	flags := &downFlags{}

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Tear the stack down",
		Long: `Stop and remove the stack's containers and networks.

With --volumes, named and anonymous volumes are removed as well — a full
reset that discards the database's data.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDown(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.volumes, "volumes", false, "Also remove volumes (discards database data)")

	return cmd
}

// runDown validates the descriptor exists and hands teardown to Compose.
func runDown(ctx context.Context, flags *downFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The descriptor must exist: compose down needs it to know what to
	// remove, and a typoed path should say MissingDescriptor, not
	// whatever compose prints.
	if _, err := compose.LoadDescriptor(cfg.DescriptorPath); err != nil {
		return err
	}

	dir, file := splitDescriptorPath(cfg.DescriptorPath)
	VerboseLog("Tearing down project %q (volumes=%v)", cfg.ProjectName, flags.volumes)
	return compose.Down(ctx, dir, cfg.ProjectName, file, flags.volumes)
}
