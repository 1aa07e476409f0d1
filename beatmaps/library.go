// Package beatmaps manages a local osu! songs library: unpacking .osz
// beatmap archives into it and listing the .osu difficulty files it holds.
package beatmaps

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/osz-unpacker/common"
	"gitlab.com/gitlab-org/osz-unpacker/helpers/archives"
	"gitlab.com/gitlab-org/osz-unpacker/helpers/homedir"
)

const (
	ArchiveExtension = ".osz"
	MapExtension     = ".osu"

	GameDirName  = "osu!"
	SongsDirName = "Songs"
)

var ErrNotBeatmapArchive = errors.New("not a beatmap archive")

// DefaultSongsDir returns <user data dir>/osu!/Songs.
func DefaultSongsDir() (string, error) {
	dir, err := homedir.New().DataLocalDir()
	if err != nil {
		return "", err
	}

	return SongsDirUnder(dir), nil
}

func SongsDirUnder(dataDir string) string {
	return filepath.Join(dataDir, GameDirName, SongsDirName)
}

type Library struct {
	SongsDir string
	Options  []archives.Option
}

// NewLibrary resolves the songs library location from config. songs_dir
// wins over data_dir, which wins over the per-user data directory.
func NewLibrary(config *common.Config, opts ...archives.Option) (*Library, error) {
	songsDir := config.SongsDir
	if songsDir == "" {
		dataDir, err := config.GetDataDir()
		if err != nil {
			return nil, err
		}
		songsDir = SongsDirUnder(dataDir)
	}

	if config.FailFast {
		opts = append([]archives.Option{archives.WithFailFast()}, opts...)
	}
	if n := config.GetConcurrency(); n > 1 {
		opts = append([]archives.Option{archives.WithConcurrency(n)}, opts...)
	}

	return &Library{SongsDir: songsDir, Options: opts}, nil
}

// ArchiveDir is the directory an archive is unpacked into: the archive's
// base name with the extension removed, inside the songs library.
func (l *Library) ArchiveDir(archivePath string) (string, error) {
	base := filepath.Base(archivePath)
	if filepath.Ext(base) != ArchiveExtension {
		return "", fmt.Errorf("%s: %w", archivePath, ErrNotBeatmapArchive)
	}

	stem := strings.TrimSuffix(base, ArchiveExtension)
	if stem == "" {
		return "", fmt.Errorf("%s: %w", archivePath, ErrNotBeatmapArchive)
	}

	return filepath.Join(l.SongsDir, stem), nil
}

// Unpack extracts every member of the .osz archive at archivePath into the
// library and returns member name to written path. Members that failed are
// missing from the map and reported in the returned error.
func (l *Library) Unpack(ctx context.Context, archivePath string, opts ...archives.Option) (map[string]string, error) {
	dir, err := l.ArchiveDir(archivePath)
	if err != nil {
		return nil, err
	}

	logger := logrus.WithFields(logrus.Fields{
		"archive": archivePath,
		"dir":     dir,
	})
	logger.Debugln("Unpacking beatmap archive")

	results, err := archives.ExtractZipFile(ctx, archivePath, dir, append(l.Options, opts...)...)
	if results == nil {
		return nil, err
	}

	paths := results.Paths()
	logger.WithFields(logrus.Fields{
		"extracted": len(paths),
		"failed":    len(results.Failed()),
	}).Infoln("Unpacked beatmap archive")

	return paths, err
}
