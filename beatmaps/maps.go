package beatmaps

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const mapPattern = "**/*" + MapExtension

// Maps walks the library and returns file name to path for every .osu
// file. When two difficulties share a file name the lexically last path
// wins.
func (l *Library) Maps() (map[string]string, error) {
	info, err := os.Stat(l.SongsDir)
	if err != nil {
		return nil, fmt.Errorf("reading songs library: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("reading songs library %s: %w", l.SongsDir, fs.ErrInvalid)
	}

	matches, err := doublestar.Glob(os.DirFS(l.SongsDir), mapPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("reading songs library: %w", err)
	}
	sort.Strings(matches)

	maps := lo.SliceToMap(matches, func(match string) (string, string) {
		return filepath.Base(match), filepath.Join(l.SongsDir, filepath.FromSlash(match))
	})

	logrus.WithFields(logrus.Fields{
		"dir":  l.SongsDir,
		"maps": len(maps),
	}).Debugln("Listed beatmaps")

	return maps, nil
}
