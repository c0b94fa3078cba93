// Package installer idempotently ensures the container runtime is present
// on the host at the required minimum version.
//
// The install path shells out to the system package manager. Only the
// apt family is implemented because preflight restricts the host to
// Ubuntu/Debian; the PackageManager interface keeps the door open for
// other families without touching the installer logic.
//
// The install is inherently non-transactional: a failure partway through
// leaves whatever apt managed to do in place. There is no rollback — the
// re-verification step decides success or failure.
package installer

import (
	"context"
	"fmt"

	"github.com/shinji-kodama/stackup/internal/model"
)

// dockerPackages is the fixed set of distribution packages that provide
// the Docker Engine and the Compose v2 plugin on Ubuntu/Debian.
var dockerPackages = []string{"docker.io", "docker-compose-v2"}

// PackageManager abstracts the system package manager operations the
// installer needs. Implementations shell out to the real tool.
type PackageManager interface {
	// Name identifies the package manager for log output (e.g. "apt-get").
	Name() string

	// Update refreshes the package index.
	Update(ctx context.Context) error

	// Install installs the named packages non-interactively.
	Install(ctx context.Context, packages []string) error
}

// Verifier re-checks the Docker requirement. It returns nil when the
// requirement holds. The preflight checker's CheckDocker/CheckCompose
// combination satisfies this.
type Verifier func(ctx context.Context) error

// Installer ensures the Docker requirement holds, installing through the
// package manager only when verification fails.
type Installer struct {
	pm     PackageManager
	verify Verifier
}

// New creates an Installer that installs via pm and decides idempotence
// and success with verify.
func New(pm PackageManager, verify Verifier) *Installer {
	return &Installer{pm: pm, verify: verify}
}

// EnsureDocker makes the Docker requirement hold. The boolean result
// reports whether an install actually ran:
//
//   - requirement already satisfied → (false, nil), no mutating action
//   - install ran and re-verification passed → (true, nil)
//   - install ran and re-verification still fails → (true, error)
//
// A verification failure after a completed install is reported as
// InstallationFailed unless the verifier classified it more precisely
// (e.g. VersionTooLow when the distribution ships an older engine than
// the configured minimum).
func (i *Installer) EnsureDocker(ctx context.Context) (bool, error) {
	// Idempotence check first: if the binary already satisfies the
	// requirement, perform no mutating action at all.
	if err := i.verify(ctx); err == nil {
		return false, nil
	}

	if err := i.pm.Update(ctx); err != nil {
		return true, model.WrapCLIError(model.ExitInstallationFailed,
			fmt.Sprintf("%s index update failed", i.pm.Name()), err)
	}

	if err := i.pm.Install(ctx, dockerPackages); err != nil {
		return true, model.WrapCLIError(model.ExitInstallationFailed,
			fmt.Sprintf("%s install of %v failed", i.pm.Name(), dockerPackages), err)
	}

	// Post-install re-verification decides success. Keep the verifier's
	// own CLIError when it produced one so a too-old distro package
	// surfaces as VersionTooLow rather than a generic install failure.
	if err := i.verify(ctx); err != nil {
		if _, ok := err.(*model.CLIError); ok {
			return true, err
		}
		return true, model.WrapCLIError(model.ExitInstallationFailed,
			"docker still not usable after install", err)
	}
	return true, nil
}
