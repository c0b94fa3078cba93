package installer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes a command and returns its combined output. It is a
// function type so tests can record invocations without spawning
// processes.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// defaultRunner executes commands for real, with the apt frontend forced
// into non-interactive mode so a dpkg prompt can never hang the pipeline.
func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), "DEBIAN_FRONTEND=noninteractive")
	return cmd.CombinedOutput()
}

// AptManager drives apt-get for the Ubuntu/Debian package family.
type AptManager struct {
	binary      string
	updateOpts  []string
	installOpts []string
	run         Runner
}

// NewAptManager creates an AptManager that shells out to apt-get with
// quiet, assume-yes options.
func NewAptManager() *AptManager {
	return &AptManager{
		binary:      "apt-get",
		updateOpts:  []string{"update", "-q"},
		installOpts: []string{"install", "-y", "-q"},
		run:         defaultRunner,
	}
}

// Name identifies the package manager for log output.
func (m *AptManager) Name() string {
	return m.binary
}

// Update refreshes the apt package index.
func (m *AptManager) Update(ctx context.Context) error {
	out, err := m.run(ctx, m.binary, m.updateOpts...)
	if err != nil {
		return fmt.Errorf("apt-get update failed: %s: %w", lastLine(out), err)
	}
	return nil
}

// Install installs the named packages with apt-get install -y -q.
func (m *AptManager) Install(ctx context.Context, packages []string) error {
	if len(packages) == 0 {
		return nil
	}
	args := append(append([]string{}, m.installOpts...), packages...)
	out, err := m.run(ctx, m.binary, args...)
	if err != nil {
		return fmt.Errorf("apt-get install %s failed: %s: %w",
			strings.Join(packages, " "), lastLine(out), err)
	}
	return nil
}

// lastLine returns the final non-empty line of command output, which for
// apt is where the actual error lives; the full transcript would bloat
// the error message.
func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
