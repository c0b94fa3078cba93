package installer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/stackup/internal/model"
)

// recordingPM records package manager invocations instead of shelling out.
type recordingPM struct {
	calls      []string
	updateErr  error
	installErr error
}

func (r *recordingPM) Name() string { return "apt-get" }

func (r *recordingPM) Update(_ context.Context) error {
	r.calls = append(r.calls, "update")
	return r.updateErr
}

func (r *recordingPM) Install(_ context.Context, packages []string) error {
	r.calls = append(r.calls, "install")
	return r.installErr
}

// scriptedVerifier returns its queued results in order, repeating the last
// one once the script is exhausted.
func scriptedVerifier(results ...error) Verifier {
	i := 0
	return func(_ context.Context) error {
		if i >= len(results) {
			return results[len(results)-1]
		}
		r := results[i]
		i++
		return r
	}
}

// TestEnsureDocker_AlreadySatisfied verifies the idempotence property:
// when verification already passes, no package manager call runs at all.
func TestEnsureDocker_AlreadySatisfied(t *testing.T) {
	pm := &recordingPM{}
	inst := New(pm, scriptedVerifier(nil))

	installed, err := inst.EnsureDocker(context.Background())
	require.NoError(t, err)

	assert.False(t, installed)
	assert.Empty(t, pm.calls, "a satisfied requirement must trigger no mutating action")
}

// TestEnsureDocker_InstallSequence verifies the happy install path:
// failed verification, update then install, then passing re-verification.
func TestEnsureDocker_InstallSequence(t *testing.T) {
	pm := &recordingPM{}
	inst := New(pm, scriptedVerifier(errors.New("docker binary not found"), nil))

	installed, err := inst.EnsureDocker(context.Background())
	require.NoError(t, err)

	assert.True(t, installed)
	assert.Equal(t, []string{"update", "install"}, pm.calls)
}

// TestEnsureDocker_ReverifyFails verifies that a completed install whose
// re-verification still fails is InstallationFailed.
func TestEnsureDocker_ReverifyFails(t *testing.T) {
	pm := &recordingPM{}
	missing := errors.New("docker binary not found")
	inst := New(pm, scriptedVerifier(missing, missing))

	installed, err := inst.EnsureDocker(context.Background())
	require.Error(t, err)
	assert.True(t, installed)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitInstallationFailed, cliErr.Code)
}

// TestEnsureDocker_ReverifyKeepsClassifiedError verifies that when the
// verifier classifies the post-install failure (e.g. the distro package is
// older than the configured minimum), that classification survives instead
// of being flattened into InstallationFailed.
func TestEnsureDocker_ReverifyKeepsClassifiedError(t *testing.T) {
	pm := &recordingPM{}
	tooLow := model.NewCLIError(model.ExitVersionTooLow, "docker version 23.0.6 is below the required minimum 24.0")
	inst := New(pm, scriptedVerifier(errors.New("docker binary not found"), tooLow))

	_, err := inst.EnsureDocker(context.Background())
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitVersionTooLow, cliErr.Code)
}

// TestEnsureDocker_UpdateFailure verifies an index update failure aborts
// before any install attempt.
func TestEnsureDocker_UpdateFailure(t *testing.T) {
	pm := &recordingPM{updateErr: errors.New("could not resolve archive.ubuntu.com")}
	inst := New(pm, scriptedVerifier(errors.New("docker binary not found")))

	_, err := inst.EnsureDocker(context.Background())
	require.Error(t, err)

	assert.Equal(t, []string{"update"}, pm.calls, "install must not run after a failed update")

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitInstallationFailed, cliErr.Code)
}

// TestAptManager_Commands verifies the exact apt-get invocations through a
// recording runner.
func TestAptManager_Commands(t *testing.T) {
	var got [][]string
	m := NewAptManager()
	m.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		got = append(got, append([]string{name}, args...))
		return nil, nil
	}

	require.NoError(t, m.Update(context.Background()))
	require.NoError(t, m.Install(context.Background(), []string{"docker.io", "docker-compose-v2"}))

	require.Len(t, got, 2)
	assert.Equal(t, []string{"apt-get", "update", "-q"}, got[0])
	assert.Equal(t, []string{"apt-get", "install", "-y", "-q", "docker.io", "docker-compose-v2"}, got[1])
}

// TestAptManager_InstallNothing verifies an empty package list is a no-op.
func TestAptManager_InstallNothing(t *testing.T) {
	m := NewAptManager()
	m.run = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		t.Fatal("runner must not be invoked for an empty package list")
		return nil, nil
	}
	assert.NoError(t, m.Install(context.Background(), nil))
}

// TestAptManager_ErrorIncludesLastLine verifies apt failures surface the
// final output line, which is where apt reports its actual error.
func TestAptManager_ErrorIncludesLastLine(t *testing.T) {
	m := NewAptManager()
	m.run = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return []byte("Reading package lists...\nE: Unable to locate package docker.io\n"), errors.New("exit status 100")
	}

	err := m.Install(context.Background(), []string{"docker.io"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unable to locate package")
}
