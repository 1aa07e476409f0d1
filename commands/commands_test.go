//go:build !integration

package commands

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testFile struct {
	name   string
	data   string
	stored bool
}

func writeTestOsz(t *testing.T, dir, fileName string, files ...testFile) string {
	path := filepath.Join(dir, fileName)

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for _, file := range files {
		header := &zip.FileHeader{Name: file.name, Method: zip.Deflate}
		if file.stored {
			header.Method = zip.Store
		}

		fw, err := w.CreateHeader(header)
		require.NoError(t, err)
		_, err = fw.Write([]byte(file.data))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return path
}

func testConfigOptions(t *testing.T, songsDir string) configOptions {
	return configOptions{
		ConfigFile: filepath.Join(t.TempDir(), "config.toml"),
		SongsDir:   songsDir,
	}
}
