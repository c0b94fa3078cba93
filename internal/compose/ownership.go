package compose

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// RestoreOwnership re-chowns the project directory tree to the user who
// invoked sudo. A root-driven converge can leave root-owned build
// artifacts inside the project tree; this hands them back.
//
// Outside a sudo session (SUDO_UID/SUDO_GID unset or unparseable) the
// function is a no-op, so the step is safe to run unconditionally.
func RestoreOwnership(dir string) error {
	uid, uidOK := sudoID("SUDO_UID")
	gid, gidOK := sudoID("SUDO_GID")
	if !uidOK || !gidOK {
		return nil
	}

	return filepath.WalkDir(dir, func(path string, _ fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := os.Chown(path, uid, gid); err != nil {
			return fmt.Errorf("failed to restore ownership of %q: %w", path, err)
		}
		return nil
	})
}

// sudoID reads a numeric id from a sudo environment variable.
func sudoID(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return id, true
}
