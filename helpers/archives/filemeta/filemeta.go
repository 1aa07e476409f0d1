// Package filemeta restores the permissions and modification time an
// archive recorded for an extracted file.
package filemeta

import (
	"os"
	"time"
)

// Restore applies mode and modified to the file at path. A zero mode or a
// zero time leaves that attribute untouched. The owner write bit is always
// kept so a later run can overwrite the file.
func Restore(path string, mode os.FileMode, modified time.Time) error {
	if mode != 0 {
		if err := setMode(path, mode|0o200); err != nil {
			return err
		}
	}

	if !modified.IsZero() {
		if err := os.Chtimes(path, modified, modified); err != nil {
			return err
		}
	}

	return nil
}
