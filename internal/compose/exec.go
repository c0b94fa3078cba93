package compose

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/shinji-kodama/stackup/internal/model"
)

// Up converges the stack: "docker compose -p <project> -f <descriptor>
// up -d --build" in the given directory.
//
// The --build flag forces an image rebuild on every converge, matching
// the original provisioning behavior where a stale image must never mask
// a source change. The -d flag detaches so the readiness prober, not
// Compose, decides when the stack counts as up.
func Up(ctx context.Context, dir, project, descriptor string) error {
	args := buildComposeArgs(project, descriptor)
	args = append(args, "up", "-d", "--build")
	return runCompose(ctx, dir, args)
}

// Stop stops the stack's containers without removing them:
// "docker compose -p <project> -f <descriptor> stop".
func Stop(ctx context.Context, dir, project, descriptor string) error {
	args := buildComposeArgs(project, descriptor)
	args = append(args, "stop")
	return runCompose(ctx, dir, args)
}

// Down tears the stack down, removing containers and networks. When
// removeVolumes is set, named and anonymous volumes go too — a full
// reset including database data.
func Down(ctx context.Context, dir, project, descriptor string, removeVolumes bool) error {
	args := buildComposeArgs(project, descriptor)
	args = append(args, "down")
	if removeVolumes {
		args = append(args, "-v")
	}
	return runCompose(ctx, dir, args)
}

// buildComposeArgs constructs the common prefix for docker compose
// invocations: the compose subcommand, the explicit project name, and
// the descriptor file.
//
// The -p flag pins the project name rather than letting Compose derive
// one from the directory name; the prober relies on the resulting
// com.docker.compose.project label to find the stack's containers.
func buildComposeArgs(project, descriptor string) []string {
	return []string{"compose", "-p", project, "-f", descriptor}
}

// runCompose executes a docker compose command as a child process in the
// given working directory. Compose resolves relative paths in the YAML
// against this directory, so it must be where the descriptor lives.
//
// CombinedOutput captures both streams for the error message; on failure
// the trimmed output is folded into a CLIError with ExitDockerNotRunning,
// since compose failures most commonly stem from daemon problems.
func runCompose(ctx context.Context, dir string, args []string) error {
	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()

	output, err := cmd.CombinedOutput()
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("docker compose failed: %s", strings.TrimSpace(string(output))),
			err,
		)
	}
	return nil
}
