// Package model defines the domain types and value objects for the
// stackup CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (ServiceStatus, StackReport, etc.) are transient
// representations reconstructed from Docker API queries at runtime —
// stackup owns no persistent state of its own; the container runtime is
// the only durable store.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
