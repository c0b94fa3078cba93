// Package model defines the domain types for the stackup CLI.
//
// All entities in this package represent the state of one provisioning run:
// per-service observations, the aggregate probe phase, and the final report
// handed to the reporter. These types are reconstructed from Docker API
// queries at runtime; stackup keeps no state file on disk.
package model

import (
	"fmt"
	"strings"
	"time"
)

// ServiceState represents the observed state of a single stack service.
// It is derived from the Docker container state of the container that
// Compose created for the service.
type ServiceState string

const (
	// StateRunning indicates the service's container is running.
	StateRunning ServiceState = "running"

	// StateStarting indicates the container exists but has not reached
	// the running state yet ("created" or "restarting" in Docker terms).
	StateStarting ServiceState = "starting"

	// StateExited indicates the container exists but its main process
	// has stopped. For a freshly converged stack this usually means the
	// service crashed on startup.
	StateExited ServiceState = "exited"

	// StateMissing indicates no container exists for the service at all.
	// This happens before the first converge or when the converge failed
	// partway through creating the topology.
	StateMissing ServiceState = "missing"
)

// String returns the string representation of ServiceState.
// This satisfies fmt.Stringer for CLI output and logging.
func (s ServiceState) String() string {
	return string(s)
}

// IsValid checks whether the ServiceState value is one of the
// predefined valid states.
func (s ServiceState) IsValid() bool {
	switch s {
	case StateRunning, StateStarting, StateExited, StateMissing:
		return true
	default:
		return false
	}
}

// ParseServiceState converts a string to a ServiceState.
// Returns an error if the string does not match any valid state.
func ParseServiceState(s string) (ServiceState, error) {
	state := ServiceState(strings.ToLower(s))
	if !state.IsValid() {
		return "", fmt.Errorf("invalid service state: %q (valid: running, starting, exited, missing)", s)
	}
	return state, nil
}

// ProbePhase represents the lifecycle state of the readiness prober.
// The state transitions are strictly:
//
//	Waiting → Ready
//	Waiting → TimedOut
//
// There is no path back to Waiting — the prober is a single bounded pass.
type ProbePhase string

const (
	// PhaseWaiting indicates the prober has not yet observed all services up.
	PhaseWaiting ProbePhase = "waiting"

	// PhaseReady indicates every configured service was observed running
	// (and healthy, where a healthcheck is declared) on some tick.
	PhaseReady ProbePhase = "ready"

	// PhaseTimedOut indicates the deadline expired before all services
	// came up. The per-service snapshot from the final tick is preserved
	// so the operator can see which tier lagged.
	PhaseTimedOut ProbePhase = "timed-out"
)

// String returns the string representation of ProbePhase.
func (p ProbePhase) String() string {
	return string(p)
}

// IsValid checks whether the ProbePhase value is one of the
// predefined valid phases.
func (p ProbePhase) IsValid() bool {
	switch p {
	case PhaseWaiting, PhaseReady, PhaseTimedOut:
		return true
	default:
		return false
	}
}

// ServiceStatus holds one observation of a single stack service.
// It pairs the configured service name with the Docker container
// (if any) that Compose created for it.
type ServiceStatus struct {
	// Name is the Compose service name (e.g., "database").
	Name string `json:"name"`

	// State is the observed service state.
	State ServiceState `json:"state"`

	// ContainerID is the Docker container identifier, if a container exists.
	ContainerID string `json:"containerId,omitempty"`

	// ContainerName is the human-readable container name, if a container exists.
	ContainerName string `json:"containerName,omitempty"`

	// Health is the healthcheck verdict when the service declares one:
	// "healthy", "unhealthy", or "starting". Empty when no healthcheck
	// is configured.
	Health string `json:"health,omitempty"`
}

// Up reports whether the service counts as up for readiness purposes.
// A service is up when its container is running and, if it declares a
// healthcheck, that healthcheck has passed. A healthcheck still in the
// "starting" grace period does not count as up — reporting it as up
// would reproduce the weak aggregate check this tool exists to replace.
func (s ServiceStatus) Up() bool {
	if s.State != StateRunning {
		return false
	}
	return s.Health == "" || s.Health == "healthy"
}

// StackReport is the final summary of one provisioning run, consumed by
// the reporter. It is a pure value: building it has no side effects and
// printing it performs no further queries.
type StackReport struct {
	// Project is the Compose project name the stack was converged under.
	Project string `json:"project"`

	// Phase is the terminal probe phase (ready or timed-out), or waiting
	// when the report was produced by the status command without probing.
	Phase ProbePhase `json:"phase"`

	// Services holds the last observed status of every configured service,
	// in declared startup order.
	Services []ServiceStatus `json:"services"`

	// Ticks is the number of poll iterations the prober performed.
	// Zero when no probing took place.
	Ticks int `json:"ticks,omitempty"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed,omitempty"`

	// Warnings collects non-fatal findings from the best-effort smoke
	// checks. Warnings never change the exit code.
	Warnings []string `json:"warnings,omitempty"`
}

// AllUp reports whether every service in the report is up.
func (r *StackReport) AllUp() bool {
	if len(r.Services) == 0 {
		return false
	}
	for _, s := range r.Services {
		if !s.Up() {
			return false
		}
	}
	return true
}

// ExitCode defines the CLI exit codes. Each fatal error class has its own
// code so scripts and CI systems can distinguish a host problem from a
// descriptor problem from a readiness timeout.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitUnsupportedEnvironment indicates the host OS is not a supported
	// target. No mutating step runs after this check fails.
	ExitUnsupportedEnvironment ExitCode = 2

	// ExitInstallationFailed indicates the container runtime install
	// sequence ran but post-install verification still failed.
	ExitInstallationFailed ExitCode = 3

	// ExitMissingDescriptor indicates the compose descriptor file was
	// not found at the configured path.
	ExitMissingDescriptor ExitCode = 4

	// ExitVersionTooLow indicates a required binary is present but older
	// than the configured minimum version.
	ExitVersionTooLow ExitCode = 5

	// ExitReadinessTimeout indicates the readiness deadline expired
	// before every service came up.
	ExitReadinessTimeout ExitCode = 6

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
