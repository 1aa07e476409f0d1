package archives

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/flate"

	"gitlab.com/gitlab-org/osz-unpacker/helpers/archives/filemeta"
)

// LocalHeader is the part of a local file header needed to find the
// member payload.
type LocalHeader struct {
	Offset         int64
	Flags          uint16
	Method         uint16
	CompressedSize uint32
	NameLength     uint16
	ExtraLength    uint16
	// DataOffset is the absolute position of the compressed payload.
	DataOffset int64
}

// ExtractedMember holds the decompressed content of one member.
type ExtractedMember struct {
	Name string
	Data []byte

	// Mode is zero unless the archive recorded unix permissions.
	Mode     os.FileMode
	Modified time.Time
}

func readLocalHeader(c *cursor) (*LocalHeader, error) {
	rec, err := c.readRecord(localFileHeaderLayout)
	if err != nil {
		return nil, err
	}

	return &LocalHeader{
		Offset:         rec.offset,
		Flags:          rec.uint16(2),
		Method:         rec.uint16(4),
		CompressedSize: rec.uint32(14),
		NameLength:     rec.uint16(22),
		ExtraLength:    rec.uint16(24),
		DataOffset:     c.pos,
	}, nil
}

// hasDataDescriptor reports whether the sizes were written after the
// payload instead of into the header.
func (h *LocalHeader) hasDataDescriptor() bool {
	return h.Flags&dataDescriptorFlag != 0
}

// ExtractMember reads the local file header the entry points to and
// inflates the payload that follows it. The name stored in the local
// header is skipped, the directory entry name is authoritative.
func ExtractMember(r io.ReaderAt, size int64, entry *DirectoryEntry) (*ExtractedMember, error) {
	c := newCursor(r, size, entry.LocalHeaderOffset)

	header, err := readLocalHeader(c)
	if err != nil {
		return nil, withName(err, entry.Name)
	}

	wrap := func(err error) error {
		return &RecordError{Record: "member data", Offset: header.DataOffset, Name: entry.Name, Err: err}
	}

	member := &ExtractedMember{Name: entry.Name, Modified: entry.Modified}
	if mode, ok := entry.Mode(); ok {
		member.Mode = mode
	}
	if entry.IsDir() {
		return member, nil
	}

	compressedSize := header.CompressedSize
	if compressedSize == 0 && header.hasDataDescriptor() {
		compressedSize = entry.CompressedSize
	}

	payload, err := c.next(int64(compressedSize))
	if err != nil {
		return nil, wrap(err)
	}

	member.Data, err = inflate(payload, entry.UncompressedSize)
	if err != nil {
		return nil, wrap(err)
	}

	// zero means the writer did not record a checksum
	if entry.CRC32 != 0 {
		if got := crc32.ChecksumIEEE(member.Data); got != entry.CRC32 {
			return nil, wrap(fmt.Errorf("%w: got %08x, want %08x", ErrChecksum, got, entry.CRC32))
		}
	}

	return member, nil
}

// inflate decompresses payload. A non-zero size is the expected length of
// the output and bounds how much is inflated.
func inflate(payload []byte, size uint32) ([]byte, error) {
	// an empty member carries no deflate stream at all
	if len(payload) == 0 {
		return []byte{}, nil
	}

	fr := flate.NewReader(bytes.NewReader(payload))
	defer func() { _ = fr.Close() }()

	var src io.Reader = fr
	if size > 0 {
		src = io.LimitReader(fr, int64(size)+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompressionFailed, err)
	}

	switch {
	case size == 0:
	case len(data) > int(size):
		return nil, fmt.Errorf("%w: output exceeds declared size of %d bytes", ErrSizeMismatch, size)
	case len(data) < int(size):
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, len(data), size)
	}

	return data, nil
}

// WriteMember stores the member below dir and returns the written path.
// dir is created when missing; an existing file is overwritten.
func WriteMember(dir string, member *ExtractedMember) (string, error) {
	path, err := memberPath(dir, member.Name)
	if err != nil {
		return "", err
	}

	wrap := func(err error) error {
		return &RecordError{Record: "output file", Name: member.Name, Err: ioFailure(err)}
	}

	if isDirName(member.Name) {
		if err := os.MkdirAll(path, 0o777); err != nil {
			return "", wrap(err)
		}
		return path, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		return "", wrap(err)
	}

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return "", wrap(err)
	}

	if _, err := out.Write(member.Data); err != nil {
		_ = out.Close()
		return "", wrap(err)
	}
	if err := out.Close(); err != nil {
		return "", wrap(err)
	}

	return path, wrapIfErr(wrap, filemeta.Restore(path, member.Mode, member.Modified))
}

func wrapIfErr(wrap func(error) error, err error) error {
	if err == nil {
		return nil
	}
	return wrap(err)
}

func withName(err error, name string) error {
	if recordErr, ok := err.(*RecordError); ok && recordErr.Name == "" {
		recordErr.Name = name
	}
	return err
}
