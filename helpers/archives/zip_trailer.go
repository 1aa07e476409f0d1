package archives

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/sirupsen/logrus"
)

const (
	trailerLen       = signatureLen + 18
	maxTrailerSearch = trailerLen + math.MaxUint16
)

// Trailer is the end of central directory record.
type Trailer struct {
	// Offset is the absolute position of the record signature.
	Offset int64

	DiskNumber      uint16
	DirectoryDisk   uint16
	EntriesOnDisk   uint16
	TotalEntries    uint16
	DirectorySize   uint32
	DirectoryOffset uint32
	Comment         []byte
}

func (t *Trailer) end() int64 {
	return t.Offset + trailerLen + int64(len(t.Comment))
}

// LocateTrailer finds the end of central directory record of the archive
// held by r.
//
// The record is searched backwards, starting at the last position it could
// begin at and stopping after the largest possible comment. The rightmost
// signature whose comment ends exactly at the end of the source wins; a
// signature found inside a comment does not. When no candidate is exact the
// rightmost one is used.
func LocateTrailer(r io.ReaderAt, size int64) (*Trailer, error) {
	if size < trailerLen {
		return nil, ErrTooSmall
	}

	low := max(size-maxTrailerSearch, 0)
	window := make([]byte, size-low)

	n, err := r.ReadAt(window, low)
	if n < len(window) {
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, &RecordError{Record: endOfCentralDirLayout.name, Offset: low, Err: ioFailure(err)}
	}

	var (
		fallback    *Trailer
		fallbackErr error
		candidates  int
	)

	for pos := size - trailerLen; pos >= low; pos-- {
		i := pos - low
		if binary.LittleEndian.Uint32(window[i:i+signatureLen]) != endOfCentralDirSignature {
			continue
		}
		candidates++

		trailer, err := readTrailer(r, size, pos)
		if err == nil && trailer.end() == size {
			return trailer, nil
		}

		if candidates == 1 {
			fallback, fallbackErr = trailer, err
		}
	}

	if candidates == 0 {
		return nil, ErrTrailerNotFound
	}

	if fallbackErr == nil {
		logrus.WithFields(logrus.Fields{
			"offset":   fallback.Offset,
			"trailing": size - fallback.end(),
		}).Debugln("End of central directory is followed by extra data")
	}

	return fallback, fallbackErr
}

func readTrailer(r io.ReaderAt, size int64, pos int64) (*Trailer, error) {
	rec, err := newCursor(r, size, pos).readRecord(endOfCentralDirLayout)
	if err != nil {
		return nil, err
	}

	return &Trailer{
		Offset:          rec.offset,
		DiskNumber:      rec.uint16(0),
		DirectoryDisk:   rec.uint16(2),
		EntriesOnDisk:   rec.uint16(4),
		TotalEntries:    rec.uint16(6),
		DirectorySize:   rec.uint32(8),
		DirectoryOffset: rec.uint32(12),
		Comment:         rec.fields[0],
	}, nil
}
