package docker

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
)

// logTailLines bounds how much history the log scan reads. The database
// ready line appears within the first screenful of startup output, so a
// bounded tail keeps the scan cheap even against a chatty container.
const logTailLines = "400"

// ScanLogs reports whether the container's recent log output contains the
// given substring. Docker multiplexes stdout and stderr into one stream
// with a framing header; stdcopy demultiplexes it before matching.
func ScanLogs(ctx context.Context, cli *Client, containerID, needle string) (bool, error) {
	reader, err := cli.Inner().ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       logTailLines,
	})
	if err != nil {
		return false, fmt.Errorf("failed to read logs for container %s: %w", containerID, err)
	}
	defer func() { _ = reader.Close() }()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, reader); err != nil {
		return false, fmt.Errorf("failed to demultiplex logs for container %s: %w", containerID, err)
	}

	return strings.Contains(stdout.String(), needle) ||
		strings.Contains(stderr.String(), needle), nil
}
