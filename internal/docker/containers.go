// containers.go maps Docker's view of the stack — containers labeled with
// the Compose project — onto per-service status observations for the
// readiness prober and the status command.
package docker

import (
	"context"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/shinji-kodama/stackup/internal/model"
)

// Compose stamps these labels on every container it creates. They are the
// only linkage between the descriptor's service names and the containers
// the daemon reports.
const (
	composeProjectLabel = "com.docker.compose.project"
	composeServiceLabel = "com.docker.compose.service"
)

// SnapshotServices returns one ServiceStatus per configured service, in
// the given order. Services without a container report StateMissing, so a
// converge that failed partway through is visible per tier instead of
// collapsing into an aggregate guess.
//
// Listing uses a server-side label filter on the Compose project and
// includes stopped containers — an exited backend is an observation, not
// an absence.
func SnapshotServices(ctx context.Context, cli *Client, project string, services []string) ([]model.ServiceStatus, error) {
	filterArgs := filters.NewArgs(
		filters.Arg("label", composeProjectLabel+"="+project),
	)

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(model.ExitDockerNotRunning,
			"failed to list stack containers", err)
	}

	// Index observed containers by their Compose service name.
	byService := make(map[string]types.Container, len(containers))
	for _, c := range containers {
		if name := c.Labels[composeServiceLabel]; name != "" {
			byService[name] = c
		}
	}

	statuses := make([]model.ServiceStatus, 0, len(services))
	for _, svc := range services {
		c, ok := byService[svc]
		if !ok {
			statuses = append(statuses, model.ServiceStatus{
				Name:  svc,
				State: model.StateMissing,
			})
			continue
		}
		statuses = append(statuses, statusFromContainer(svc, c))
	}
	return statuses, nil
}

// statusFromContainer converts one Docker container listing entry into a
// ServiceStatus. Pure mapping, no side effects.
func statusFromContainer(service string, c types.Container) model.ServiceStatus {
	// The API returns names with a leading "/" artifact.
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return model.ServiceStatus{
		Name:          service,
		State:         stateFromDocker(c.State),
		ContainerID:   c.ID,
		ContainerName: name,
		Health:        healthFromStatus(c.Status),
	}
}

// stateFromDocker maps Docker's container state string onto the service
// state enum. Docker's states are richer than the prober needs; anything
// that is neither running nor on its way up counts as exited.
func stateFromDocker(state string) model.ServiceState {
	switch state {
	case "running":
		return model.StateRunning
	case "created", "restarting":
		return model.StateStarting
	default:
		return model.StateExited
	}
}

// healthFromStatus extracts the healthcheck verdict from the human-readable
// status column, which is where the list API surfaces it:
//
//	"Up 12 seconds (healthy)"
//	"Up 3 seconds (health: starting)"
//
// Returns "" when the container declares no healthcheck.
func healthFromStatus(status string) string {
	switch {
	case strings.Contains(status, "(healthy)"):
		return "healthy"
	case strings.Contains(status, "(unhealthy)"):
		return "unhealthy"
	case strings.Contains(status, "(health: starting)"):
		return "starting"
	default:
		return ""
	}
}
