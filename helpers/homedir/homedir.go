package homedir

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
)

var (
	ErrHomedirVariableNotSet = fmt.Errorf("homedir variable is not set")
	ErrDataDirNotFound       = fmt.Errorf("user data directory could not be determined")
)

type HomeDir struct {
	os          string
	currentUser func() (*user.User, error)
	userHomeDir func() (string, error)
	getEnv      func(string) string
}

func New() HomeDir {
	return HomeDir{
		os:          runtime.GOOS,
		currentUser: user.Current,
		userHomeDir: os.UserHomeDir,
		getEnv:      os.Getenv,
	}
}

// Env returns the name of environment variable storing the current user's
// home directory path. Depending on the current platform.
func (hd HomeDir) Env() string {
	switch hd.os {
	case "windows":
		return "USERPROFILE"
	case "plan9":
		return "home"
	default:
		return "HOME"
	}
}

// Get returns the path to the current user's home directory
// given its best effort to detect that.
func (hd HomeDir) Get() string {
	home, _ := hd.userHomeDir()
	if home == "" && hd.os != "windows" {
		if u, err := hd.currentUser(); err == nil {
			return u.HomeDir
		}
	}
	return home
}

// DataLocalDir returns the directory applications store per-user,
// machine-local data in:
//
//   - Linux and BSD: $XDG_DATA_HOME or ~/.local/share
//   - macOS: ~/Library/Application Support
//   - Windows: %LOCALAPPDATA%
func (hd HomeDir) DataLocalDir() (string, error) {
	switch hd.os {
	case "windows":
		if dir := hd.getEnv("LOCALAPPDATA"); dir != "" {
			return dir, nil
		}
		return "", fmt.Errorf("%w: %q is not set", ErrDataDirNotFound, "LOCALAPPDATA")

	case "darwin", "ios":
		return hd.underHome("Library", "Application Support")

	default:
		if dir := hd.getEnv("XDG_DATA_HOME"); filepath.IsAbs(dir) {
			return dir, nil
		}
		return hd.underHome(".local", "share")
	}
}

func (hd HomeDir) underHome(elem ...string) (string, error) {
	home := hd.Get()
	if home == "" {
		return "", fmt.Errorf("%w: %w: %q", ErrDataDirNotFound, ErrHomedirVariableNotSet, hd.Env())
	}

	return filepath.Join(append([]string{home}, elem...)...), nil
}
