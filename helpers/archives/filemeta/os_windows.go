//go:build windows

package filemeta

import (
	"os"
)

// setMode only honours the owner write bit, which maps to the read-only
// attribute.
func setMode(name string, mode os.FileMode) error {
	return os.Chmod(name, mode.Perm())
}
