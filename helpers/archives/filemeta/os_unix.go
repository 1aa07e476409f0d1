//go:build unix

package filemeta

import (
	"os"

	"golang.org/x/sys/unix"
)

// Extracted members are always regular files, never symlinks, so the path
// is followed.
func setMode(name string, mode os.FileMode) error {
	err := unix.Fchmodat(unix.AT_FDCWD, name, uint32(mode.Perm()), 0)
	if err != nil {
		return &os.PathError{Op: "chmod", Path: name, Err: err}
	}
	return nil
}
