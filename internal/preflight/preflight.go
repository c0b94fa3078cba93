package preflight

import (
	"context"
	"fmt"
	"os/exec"
	"os/user"
	"strings"

	"github.com/zcalusic/sysinfo"

	"github.com/shinji-kodama/stackup/internal/model"
)

// supportedVendors lists the OS vendor identifiers (as reported by the
// os-release data sysinfo reads) this tool provisions. Both drive the same
// apt-based installer, so they share one code path.
var supportedVendors = map[string]bool{
	"ubuntu": true,
	"debian": true,
}

// HostInfo is the subset of host identity the checks care about.
type HostInfo struct {
	// Vendor is the OS distribution identifier, e.g. "ubuntu".
	Vendor string

	// Version is the distribution release, e.g. "24.04".
	Version string

	// Arch is the machine architecture, e.g. "amd64".
	Arch string
}

// String returns a human-readable host identity for diagnostics.
func (h HostInfo) String() string {
	return fmt.Sprintf("%s %s (%s)", h.Vendor, h.Version, h.Arch)
}

// Checker performs the read-only host environment checks. The probing
// functions are fields so tests can substitute fakes; NewChecker wires
// the real implementations.
type Checker struct {
	// hostInfo reads the host OS identity.
	hostInfo func() HostInfo

	// lookPath resolves a binary on the search path.
	lookPath func(name string) (string, error)

	// runOutput executes a command and returns its combined output.
	runOutput func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewChecker creates a Checker backed by sysinfo, exec.LookPath, and
// os/exec command execution.
func NewChecker() *Checker {
	return &Checker{
		hostInfo: readHostInfo,
		lookPath: exec.LookPath,
		runOutput: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}
}

// readHostInfo queries the host identity via the sysinfo library, which
// reads /etc/os-release and kernel data. Requires Linux; on anything else
// the vendor comes back empty and the host check rejects it.
func readHostInfo() HostInfo {
	var si sysinfo.SysInfo
	si.GetSysInfo()
	return HostInfo{
		Vendor:  si.OS.Vendor,
		Version: si.OS.Version,
		Arch:    si.OS.Architecture,
	}
}

// CheckHost verifies the host OS is a supported target. This is the first
// check in the pipeline and must pass before any mutating step runs.
//
// Returns the host identity on success, or a CLIError with
// ExitUnsupportedEnvironment naming what was found and what is supported.
func (c *Checker) CheckHost() (HostInfo, error) {
	info := c.hostInfo()
	if !supportedVendors[strings.ToLower(info.Vendor)] {
		return info, model.NewCLIError(
			model.ExitUnsupportedEnvironment,
			fmt.Sprintf("unsupported host OS %q — this tool supports Ubuntu and Debian", info.String()),
		)
	}
	return info, nil
}

// CheckDocker verifies the Docker Engine binary is resolvable on the search
// path and reports a version of at least minVersion.
//
// Two distinct failures map to two distinct exit codes: a missing binary is
// ExitInstallationFailed territory (the installer can fix it), while a
// present-but-old binary is ExitVersionTooLow.
func (c *Checker) CheckDocker(ctx context.Context, minVersion string) error {
	if _, err := c.lookPath("docker"); err != nil {
		return model.WrapCLIError(model.ExitInstallationFailed,
			"docker binary not found on PATH", err)
	}

	out, err := c.runOutput(ctx, "docker", "--version")
	if err != nil {
		return model.WrapCLIError(model.ExitInstallationFailed,
			"docker binary is present but not executable", err)
	}

	// Typical output: "Docker version 27.3.1, build ce12230".
	found := extractVersion(string(out))
	if found == "" {
		return model.NewCLIError(model.ExitInstallationFailed,
			fmt.Sprintf("could not parse docker version from %q", strings.TrimSpace(string(out))))
	}

	older, err := versionLess(found, minVersion)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			"failed to compare docker versions", err)
	}
	if older {
		return model.NewCLIError(model.ExitVersionTooLow,
			fmt.Sprintf("docker version %s is below the required minimum %s", found, minVersion))
	}
	return nil
}

// CheckCompose verifies the Compose plugin responds to "docker compose
// version". Compose ships as a Docker CLI plugin, so a successful docker
// check does not imply compose is installed.
func (c *Checker) CheckCompose(ctx context.Context) error {
	out, err := c.runOutput(ctx, "docker", "compose", "version")
	if err != nil {
		return model.WrapCLIError(model.ExitInstallationFailed,
			fmt.Sprintf("docker compose plugin not available: %s", strings.TrimSpace(string(out))),
			err)
	}
	return nil
}

// DockerSatisfied reports whether the Docker requirement (binary present,
// version at minimum, compose plugin available) already holds. The
// installer uses this for its idempotence check.
func (c *Checker) DockerSatisfied(ctx context.Context, minVersion string) bool {
	if err := c.CheckDocker(ctx, minVersion); err != nil {
		return false
	}
	return c.CheckCompose(ctx) == nil
}

// currentUser is a seam for tests; user.Current touches the real process
// identity.
var currentUser = user.Current

// RequireRoot fails when the process is not running as root. Installing
// system packages needs root; the check runs only when an install is
// actually required, so a host with Docker already present never demands
// sudo.
func RequireRoot() error {
	u, err := currentUser()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to determine current user", err)
	}
	if u.Uid != "0" {
		return model.NewCLIError(model.ExitInstallationFailed,
			"installing the container runtime requires root — re-run with sudo")
	}
	return nil
}
