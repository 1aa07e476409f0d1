//go:build !integration

package homedir

import (
	"errors"
	"os/user"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHomeDir(goos string, home string, env map[string]string) HomeDir {
	return HomeDir{
		os: goos,
		currentUser: func() (*user.User, error) {
			return nil, errors.New("no current user")
		},
		userHomeDir: func() (string, error) {
			return home, nil
		},
		getEnv: func(key string) string {
			return env[key]
		},
	}
}

func TestDataLocalDir(t *testing.T) {
	home := filepath.Join(string(filepath.Separator), "home", "peppy")

	tests := map[string]struct {
		os            string
		home          string
		env           map[string]string
		expected      string
		expectedError error
	}{
		"linux default": {
			os:       "linux",
			home:     home,
			expected: filepath.Join(home, ".local", "share"),
		},
		"linux XDG_DATA_HOME": {
			os:       "linux",
			home:     home,
			env:      map[string]string{"XDG_DATA_HOME": filepath.Join(home, "data")},
			expected: filepath.Join(home, "data"),
		},
		"linux relative XDG_DATA_HOME is ignored": {
			os:       "linux",
			home:     home,
			env:      map[string]string{"XDG_DATA_HOME": "data"},
			expected: filepath.Join(home, ".local", "share"),
		},
		"darwin": {
			os:       "darwin",
			home:     home,
			expected: filepath.Join(home, "Library", "Application Support"),
		},
		"windows": {
			os:       "windows",
			env:      map[string]string{"LOCALAPPDATA": `C:\Users\peppy\AppData\Local`},
			expected: `C:\Users\peppy\AppData\Local`,
		},
		"windows without LOCALAPPDATA": {
			os:            "windows",
			expectedError: ErrDataDirNotFound,
		},
		"linux without home": {
			os:            "linux",
			expectedError: ErrHomedirVariableNotSet,
		},
	}

	for tn, tc := range tests {
		t.Run(tn, func(t *testing.T) {
			dir, err := testHomeDir(tc.os, tc.home, tc.env).DataLocalDir()
			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, dir)
		})
	}
}

func TestGet(t *testing.T) {
	hd := testHomeDir("linux", "", nil)
	hd.currentUser = func() (*user.User, error) {
		return &user.User{HomeDir: "/home/fallback"}, nil
	}

	assert.Equal(t, "/home/fallback", hd.Get())
	assert.Equal(t, "HOME", hd.Env())
	assert.Equal(t, "USERPROFILE", testHomeDir("windows", "", nil).Env())
}
