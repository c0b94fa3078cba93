package docker

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/docker/docker/client"

	"github.com/shinji-kodama/stackup/internal/model"
)

// defaultPingTimeout bounds the daemon liveness probe. Five seconds is
// generous even for a daemon that was just installed and started.
const defaultPingTimeout = 5 * time.Second

// socketPaths are the Unix socket locations probed when DOCKER_HOST is
// unset, most-preferred first. Rootless Docker puts its socket under the
// user runtime dir.
var socketPaths = []string{
	"/var/run/docker.sock",
	os.Getenv("XDG_RUNTIME_DIR") + "/docker.sock",
}

// Client wraps the Docker SDK client. Wrapping rather than embedding keeps
// the exposed surface to what the pipeline actually uses.
type Client struct {
	inner *client.Client
}

// NewClient creates a Docker client. A set DOCKER_HOST is respected
// unconditionally; otherwise the known Unix socket paths are probed and
// the first existing one wins.
func NewClient() (*Client, error) {
	host := os.Getenv("DOCKER_HOST")
	if host == "" {
		detected, err := detectSocket()
		if err != nil {
			return nil, model.WrapCLIError(model.ExitDockerNotRunning,
				"Docker socket not found", err)
		}
		host = detected
	}

	// API version negotiation keeps the client compatible with whatever
	// daemon version the installer just put on the host.
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitDockerNotRunning,
			fmt.Sprintf("failed to create Docker client for host %q", host), err)
	}
	return &Client{inner: c}, nil
}

// detectSocket returns the Docker host URI for the first socket path that
// exists. Existence does not prove the daemon is listening — Ping does
// that — but it is a cheap first filter.
func detectSocket() (string, error) {
	for _, path := range socketPaths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("no Docker socket at any of %v — is the daemon running?", socketPaths)
}

// Ping verifies the daemon is reachable and responsive within
// defaultPingTimeout.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapCLIError(model.ExitDockerNotRunning,
			"Docker daemon is not responding — is the docker service running?", err)
	}
	return nil
}

// Close releases the client's resources. Safe to call multiple times.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}

// Inner exposes the underlying SDK client for operations not wrapped here.
func (c *Client) Inner() *client.Client {
	return c.inner
}
