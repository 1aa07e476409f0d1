package archives

import (
	"fmt"
	"path/filepath"
	"strings"
)

// isDirName reports whether a member name denotes a directory. Some
// writers use backslash separators.
func isDirName(name string) bool {
	return strings.HasSuffix(name, "/") || strings.HasSuffix(name, "\\")
}

// memberPath joins dir and a member name, refusing names that would land
// outside of dir.
func memberPath(dir string, name string) (string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", &RecordError{Record: "output file", Name: name, Err: ioFailure(err)}
	}

	clean := filepath.FromSlash(strings.ReplaceAll(name, "\\", "/"))
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", &RecordError{Record: "output file", Name: name, Err: ErrInsecurePath}
	}

	path := filepath.Join(root, clean)
	if path == root || !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", &RecordError{
			Record: "output file",
			Name:   name,
			Err:    fmt.Errorf("%w: %s is outside of %s", ErrInsecurePath, path, root),
		}
	}

	return path, nil
}
