// Package cli implements the cobra-based CLI commands for stackup.
//
// Each subcommand (up, preflight, status, down) is defined in its own
// file within this package. This file defines the root command that
// serves as the parent for all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/stackup/internal/config"
	"github.com/shinji-kodama/stackup/internal/model"
)

// Global flag variables bound to cobra persistent flags on the root
// command, which makes them available to every subcommand.
var (
	// jsonOutput switches command output to structured JSON for machine
	// consumption. Errors also switch format.
	jsonOutput bool

	// verbose enables step-by-step progress output on stderr.
	verbose bool

	// configPath is the optional --config override for the stackup.jsonc
	// location.
	configPath string
)

// Version, Commit, and Date are injected from the main package, which
// receives them from ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates and configures the root cobra command. The root
// itself performs no action — functionality lives in the subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stackup",
		Short: "Provision a local three-tier web application stack",
		Long: `stackup provisions a three-tier web application (frontend, backend,
database) on a local Ubuntu/Debian host. It verifies the host, installs
the Docker Engine if absent, converges the compose descriptor, polls
every service for readiness, and reports the result.`,

		// We format errors ourselves (text or JSON based on --json), so
		// cobra's automatic usage/error printing is silenced.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to stackup.jsonc (default: ./stackup.jsonc if present)")

	rootCmd.AddCommand(NewUpCommand())
	rootCmd.AddCommand(NewPreflightCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewDownCommand())

	return rootCmd
}

// Execute runs the root command and translates errors into OS exit codes.
// CLIError values carry their own exit code; anything else exits 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error in the appropriate format (JSON or text)
// based on the --json flag. Errors always go to stderr; stdout is
// reserved for successful command output.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}

// loadConfig builds the run configuration from the --config flag (or the
// default probe) for a subcommand.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	VerboseLog("Configuration: project=%s descriptor=%s interval=%s ceiling=%s",
		cfg.ProjectName, cfg.DescriptorPath, cfg.PollInterval, cfg.PollCeiling)
	return cfg, nil
}
