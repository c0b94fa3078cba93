// Package smoke runs the best-effort post-readiness checks: an HTTP
// request against the frontend and a scan of the database container's
// logs for its ready line.
//
// Nothing in this package is fatal. A failed check produces a warning
// string for the report; the exit code is decided entirely by the
// pipeline stages before it. This asymmetry is deliberate — the stack is
// already verified up per service, and these checks only add confidence.
package smoke

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Checker runs the smoke checks with a bounded per-request timeout.
type Checker struct {
	client *http.Client
}

// NewChecker creates a Checker whose HTTP requests are bounded by timeout.
// The transport keeps the connection pool tiny; this client makes one or
// two requests and exits.
func NewChecker(timeout time.Duration) *Checker {
	return &Checker{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        2,
				MaxIdleConnsPerHost: 1,
				IdleConnTimeout:     10 * time.Second,
			},
		},
	}
}

// CheckFrontend issues a GET against the frontend's published port and
// accepts any non-server-error response. A redirect or a 404 from a
// just-booted app still proves the listener is alive, which is all a
// smoke check claims.
func (c *Checker) CheckFrontend(ctx context.Context, port int) error {
	url := fmt.Sprintf("http://localhost:%d/", port)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build smoke request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("frontend smoke check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("frontend smoke check got status %d from %s", resp.StatusCode, url)
	}
	return nil
}

// LogScanner reports whether a container's recent logs contain a
// substring. The Docker layer provides the real implementation.
type LogScanner func(ctx context.Context, containerID, needle string) (bool, error)

// CheckDatabaseLog scans the database container's logs for the configured
// ready line.
func CheckDatabaseLog(ctx context.Context, scan LogScanner, containerID, readyLine string) error {
	if containerID == "" {
		return fmt.Errorf("database container not found for log check")
	}

	found, err := scan(ctx, containerID, readyLine)
	if err != nil {
		return fmt.Errorf("database log check failed: %w", err)
	}
	if !found {
		return fmt.Errorf("database logs do not contain %q yet", readyLine)
	}
	return nil
}
