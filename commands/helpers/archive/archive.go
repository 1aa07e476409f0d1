package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"gitlab.com/gitlab-org/osz-unpacker/helpers/archives"
)

var (
	// ErrUnsupportedArchiveFormat is returned if an extractor format
	// requested has not been registered.
	ErrUnsupportedArchiveFormat = errors.New("unsupported archive format")
)

// Format type for specifying format.
type Format string

// Formats the unpacker understands. Both are the same container, Osz only
// differs by the extension osu! gives beatmap archives.
const (
	Zip Format = "zip"
	Osz Format = "osz"
)

var extractors = make(map[Format]NewExtractorFunc)

// Extractor is an interface for the Extract method.
type Extractor interface {
	Extract(ctx context.Context) (archives.Results, error)
}

// NewExtractorFunc is a function that can be registered (with Register()) and
// used to instantiate a new extractor (with NewExtractor()).
type NewExtractorFunc func(r io.ReaderAt, size int64, dir string, opts ...archives.Option) (Extractor, error)

// Register registers a new extractor, returning the one it replaced.
func Register(format Format, extractor NewExtractorFunc) (prevExtractor NewExtractorFunc) {
	prevExtractor = extractors[format]
	extractors[format] = extractor
	return
}

// NewExtractor returns a new Extractor of the specified format.
//
// The extractor will extract files to the directory provided.
func NewExtractor(format Format, r io.ReaderAt, size int64, dir string, opts ...archives.Option) (Extractor, error) {
	fn := extractors[format]
	if fn == nil {
		return nil, fmt.Errorf("%q format: %w", format, ErrUnsupportedArchiveFormat)
	}

	return fn(r, size, dir, opts...)
}

// Formats returns the registered formats in name order.
func Formats() []Format {
	formats := make([]Format, 0, len(extractors))
	for format := range extractors {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })

	return formats
}

// FormatFromPath derives the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	format := Format(ext)
	if _, ok := extractors[format]; !ok || ext == "" {
		return "", fmt.Errorf("%s: %w", path, ErrUnsupportedArchiveFormat)
	}

	return format, nil
}
