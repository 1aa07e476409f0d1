package zipdeflate

import (
	"context"
	"io"

	"gitlab.com/gitlab-org/osz-unpacker/commands/helpers/archive"
	"gitlab.com/gitlab-org/osz-unpacker/helpers/archives"
)

func init() {
	archive.Register(archive.Zip, NewExtractor)
	archive.Register(archive.Osz, NewExtractor)
}

// extractor is a single-volume deflate zip extractor.
type extractor struct {
	r    io.ReaderAt
	size int64
	dir  string
	opts []archives.Option
}

// NewExtractor returns a new Zip Extractor. The archive is only read when
// Extract is called.
func NewExtractor(r io.ReaderAt, size int64, dir string, opts ...archives.Option) (archive.Extractor, error) {
	return &extractor{r: r, size: size, dir: dir, opts: opts}, nil
}

// Extract extracts files from the reader to the directory passed to
// NewExtractor.
func (e *extractor) Extract(ctx context.Context) (archives.Results, error) {
	a, err := archives.NewArchive(e.r, e.size)
	if err != nil {
		return nil, err
	}

	return a.ExtractTo(ctx, e.dir, e.opts...)
}
