package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestServiceState_String verifies that ServiceState values produce
// the expected string representations for CLI output and JSON serialization.
func TestServiceState_String(t *testing.T) {
	tests := []struct {
		state    ServiceState
		expected string
	}{
		{StateRunning, "running"},
		{StateStarting, "starting"},
		{StateExited, "exited"},
		{StateMissing, "missing"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}

// TestServiceState_IsValid checks that only defined state values pass validation.
func TestServiceState_IsValid(t *testing.T) {
	assert.True(t, StateRunning.IsValid())
	assert.True(t, StateStarting.IsValid())
	assert.True(t, StateExited.IsValid())
	assert.True(t, StateMissing.IsValid())
	assert.False(t, ServiceState("paused").IsValid())
	assert.False(t, ServiceState("").IsValid())
}

// TestParseServiceState verifies string-to-state conversion,
// including case normalization and error cases.
func TestParseServiceState(t *testing.T) {
	tests := []struct {
		input    string
		expected ServiceState
		hasError bool
	}{
		{"running", StateRunning, false},
		{"exited", StateExited, false},
		{"Running", StateRunning, false}, // case insensitive
		{"MISSING", StateMissing, false}, // case insensitive
		{"dead", "", true},               // unknown value
		{"", "", true},                   // empty string
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseServiceState(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

// TestProbePhase_IsValid checks the three prober phases and rejects
// anything outside the Waiting → {Ready, TimedOut} machine.
func TestProbePhase_IsValid(t *testing.T) {
	assert.True(t, PhaseWaiting.IsValid())
	assert.True(t, PhaseReady.IsValid())
	assert.True(t, PhaseTimedOut.IsValid())
	assert.False(t, ProbePhase("done").IsValid())
}

// TestServiceStatus_Up verifies the per-service readiness predicate:
// running without a healthcheck is up, running with a passed healthcheck
// is up, everything else is not.
func TestServiceStatus_Up(t *testing.T) {
	tests := []struct {
		name   string
		status ServiceStatus
		up     bool
	}{
		{"running no healthcheck", ServiceStatus{Name: "frontend", State: StateRunning}, true},
		{"running healthy", ServiceStatus{Name: "database", State: StateRunning, Health: "healthy"}, true},
		{"running health starting", ServiceStatus{Name: "database", State: StateRunning, Health: "starting"}, false},
		{"running unhealthy", ServiceStatus{Name: "backend", State: StateRunning, Health: "unhealthy"}, false},
		{"exited", ServiceStatus{Name: "backend", State: StateExited}, false},
		{"missing", ServiceStatus{Name: "frontend", State: StateMissing}, false},
		{"starting", ServiceStatus{Name: "backend", State: StateStarting}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.up, tt.status.Up())
		})
	}
}

// TestStackReport_AllUp verifies the aggregate readiness predicate used by
// the prober. An empty service list is never "all up" — that would let a
// misparsed descriptor report success for a stack with zero services.
func TestStackReport_AllUp(t *testing.T) {
	allRunning := &StackReport{
		Project: "appstack",
		Services: []ServiceStatus{
			{Name: "database", State: StateRunning, Health: "healthy"},
			{Name: "backend", State: StateRunning},
			{Name: "frontend", State: StateRunning},
		},
	}
	assert.True(t, allRunning.AllUp())

	oneDown := &StackReport{
		Project: "appstack",
		Services: []ServiceStatus{
			{Name: "database", State: StateRunning},
			{Name: "backend", State: StateExited},
			{Name: "frontend", State: StateRunning},
		},
	}
	assert.False(t, oneDown.AllUp(), "a single exited service must fail the aggregate")

	empty := &StackReport{Project: "appstack"}
	assert.False(t, empty.AllUp(), "no services observed is not success")
}

// TestCLIError_ErrorFormatting verifies the error message format with and
// without an underlying error.
func TestCLIError_ErrorFormatting(t *testing.T) {
	plain := NewCLIError(ExitMissingDescriptor, "descriptor not found")
	assert.Equal(t, "descriptor not found", plain.Error())

	underlying := errors.New("stat docker-compose.yml: no such file or directory")
	wrapped := WrapCLIError(ExitMissingDescriptor, "descriptor not found", underlying)
	assert.Contains(t, wrapped.Error(), "descriptor not found")
	assert.Contains(t, wrapped.Error(), "no such file")
}

// TestCLIError_Unwrap verifies that errors.Is can see through a CLIError
// to the underlying cause.
func TestCLIError_Unwrap(t *testing.T) {
	cause := errors.New("daemon unreachable")
	wrapped := WrapCLIError(ExitDockerNotRunning, "Docker daemon is not responding", cause)

	assert.True(t, errors.Is(wrapped, cause))

	var cliErr *CLIError
	require.True(t, errors.As(wrapped, &cliErr))
	assert.Equal(t, ExitDockerNotRunning, cliErr.Code)
}

// TestExitCodes_AreDistinct guards against two error classes accidentally
// sharing an exit code, which would break scripted consumers.
func TestExitCodes_AreDistinct(t *testing.T) {
	codes := []ExitCode{
		ExitSuccess,
		ExitGeneralError,
		ExitUnsupportedEnvironment,
		ExitInstallationFailed,
		ExitMissingDescriptor,
		ExitVersionTooLow,
		ExitReadinessTimeout,
		ExitDockerNotRunning,
	}

	seen := make(map[ExitCode]bool)
	for _, c := range codes {
		assert.False(t, seen[c], "duplicate exit code %d", c)
		seen[c] = true
	}
}

// TestStackReport_ElapsedIsDuration checks that the report carries a real
// duration rather than a formatted string — the reporter owns formatting.
func TestStackReport_ElapsedIsDuration(t *testing.T) {
	r := StackReport{Elapsed: 42 * time.Second}
	assert.Equal(t, 42*time.Second, r.Elapsed)
}
