package archives

import (
	"errors"
	"fmt"
)

var (
	// ErrTooSmall is returned when the source cannot hold an end of central
	// directory record.
	ErrTooSmall = errors.New("archive too small to contain end of central directory")

	// ErrTrailerNotFound is returned when no end of central directory
	// signature exists within the last 22+65535 bytes.
	ErrTrailerNotFound = errors.New("end of central directory not found")

	// ErrBadSignature is returned when a record does not start with the
	// expected magic value.
	ErrBadSignature = errors.New("bad record signature")

	// ErrTruncated is returned when a declared length runs past the end of
	// the source.
	ErrTruncated = errors.New("record truncated")

	// ErrDecompressionFailed is returned when a member payload is not a valid
	// deflate stream.
	ErrDecompressionFailed = errors.New("decompression failed")

	// ErrChecksum is returned when decompressed data does not match the CRC-32
	// stored in the central directory.
	ErrChecksum = errors.New("checksum mismatch")

	// ErrSizeMismatch is returned when a valid deflate stream does not inflate
	// to the uncompressed size stored in the central directory.
	ErrSizeMismatch = errors.New("uncompressed size mismatch")

	// ErrIO is returned when the underlying source or destination fails.
	ErrIO = errors.New("i/o failure")

	// ErrInsecurePath is returned when a member name would be written outside
	// of the output directory.
	ErrInsecurePath = errors.New("member path escapes output directory")

	// ErrMemberNotFound is returned when a name is not part of the catalog.
	ErrMemberNotFound = errors.New("member not found")
)

// RecordError records a failure together with the archive record and
// position it happened at.
type RecordError struct {
	Record string
	Offset int64
	Name   string
	Err    error
}

func (e *RecordError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %q at offset %d: %v", e.Record, e.Name, e.Offset, e.Err)
	}

	return fmt.Sprintf("%s at offset %d: %v", e.Record, e.Offset, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

func ioFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrIO, err)
}
