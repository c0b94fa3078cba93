package docker

import (
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/stretchr/testify/assert"

	"github.com/shinji-kodama/stackup/internal/model"
)

// TestStateFromDocker verifies the mapping from Docker container states
// to the service state enum.
func TestStateFromDocker(t *testing.T) {
	tests := []struct {
		docker   string
		expected model.ServiceState
	}{
		{"running", model.StateRunning},
		{"created", model.StateStarting},
		{"restarting", model.StateStarting},
		{"exited", model.StateExited},
		{"dead", model.StateExited},
		{"paused", model.StateExited},
	}

	for _, tt := range tests {
		t.Run(tt.docker, func(t *testing.T) {
			assert.Equal(t, tt.expected, stateFromDocker(tt.docker))
		})
	}
}

// TestHealthFromStatus verifies healthcheck verdict extraction from the
// status column, including containers with no healthcheck at all.
func TestHealthFromStatus(t *testing.T) {
	tests := []struct {
		status   string
		expected string
	}{
		{"Up 12 seconds (healthy)", "healthy"},
		{"Up 2 minutes (unhealthy)", "unhealthy"},
		{"Up 3 seconds (health: starting)", "starting"},
		{"Up 5 seconds", ""},
		{"Exited (1) 10 seconds ago", ""},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.expected, healthFromStatus(tt.status))
		})
	}
}

// TestStatusFromContainer verifies the full mapping from a Docker listing
// entry to a ServiceStatus, including the leading-slash name artifact.
func TestStatusFromContainer(t *testing.T) {
	c := types.Container{
		ID:     "abc123def456",
		Names:  []string{"/appstack-database-1"},
		State:  "running",
		Status: "Up 30 seconds (healthy)",
		Labels: map[string]string{
			composeProjectLabel: "appstack",
			composeServiceLabel: "database",
		},
	}

	status := statusFromContainer("database", c)

	assert.Equal(t, "database", status.Name)
	assert.Equal(t, model.StateRunning, status.State)
	assert.Equal(t, "abc123def456", status.ContainerID)
	assert.Equal(t, "appstack-database-1", status.ContainerName, "leading slash is stripped")
	assert.Equal(t, "healthy", status.Health)
	assert.True(t, status.Up())
}

// TestStatusFromContainer_NoNames verifies a container with an empty name
// list does not panic and yields an empty container name.
func TestStatusFromContainer_NoNames(t *testing.T) {
	status := statusFromContainer("backend", types.Container{ID: "x", State: "exited"})

	assert.Equal(t, "", status.ContainerName)
	assert.Equal(t, model.StateExited, status.State)
	assert.False(t, status.Up())
}
