package archives

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Record signatures, little-endian "PK" followed by the record type.
const (
	localFileHeaderSignature  uint32 = 0x04034b50
	centralDirectorySignature uint32 = 0x02014b50
	endOfCentralDirSignature  uint32 = 0x06054b50

	signatureLen = 4

	// general purpose flag bit 3
	dataDescriptorFlag uint16 = 0x8
)

// recordLayout describes a record made of a signature, a block of fixed
// width fields and a list of variable length fields whose uint16 lengths
// are stored inside the fixed block.
type recordLayout struct {
	name      string
	signature uint32
	fixedLen  int
	// lengths holds the positions (relative to the end of the signature) of
	// the variable length fields, in the order the fields follow the fixed
	// block.
	lengths []int
}

var (
	endOfCentralDirLayout = recordLayout{
		name:      "end of central directory",
		signature: endOfCentralDirSignature,
		fixedLen:  18,
		lengths:   []int{16},
	}

	centralDirectoryLayout = recordLayout{
		name:      "central directory entry",
		signature: centralDirectorySignature,
		fixedLen:  42,
		lengths:   []int{24, 26, 28},
	}

	localFileHeaderLayout = recordLayout{
		name:      "local file header",
		signature: localFileHeaderSignature,
		fixedLen:  26,
		lengths:   []int{22, 24},
	}
)

type record struct {
	offset int64
	fixed  []byte
	fields [][]byte
}

func (r record) uint16(at int) uint16 {
	return binary.LittleEndian.Uint16(r.fixed[at : at+2])
}

func (r record) uint32(at int) uint32 {
	return binary.LittleEndian.Uint32(r.fixed[at : at+4])
}

// cursor is an absolute read position over a random access source. Every
// reader of the source owns its own cursor.
type cursor struct {
	r    io.ReaderAt
	size int64
	pos  int64
}

func newCursor(r io.ReaderAt, size int64, pos int64) *cursor {
	return &cursor{r: r, size: size, pos: pos}
}

func (c *cursor) remaining() int64 {
	if c.pos >= c.size {
		return 0
	}
	return c.size - c.pos
}

func (c *cursor) next(n int64) ([]byte, error) {
	if n < 0 || n > c.remaining() {
		return nil, fmt.Errorf("%w: need %d bytes, %d left", ErrTruncated, n, c.remaining())
	}

	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}

	read, err := c.r.ReadAt(buf, c.pos)
	if read < len(buf) {
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, ioFailure(err)
	}

	c.pos += n
	return buf, nil
}

func (c *cursor) peekUint32() (uint32, error) {
	pos := c.pos
	buf, err := c.next(signatureLen)
	c.pos = pos
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(buf), nil
}

// readRecord parses one record described by l starting at the cursor and
// leaves the cursor right after its last variable length field.
func (c *cursor) readRecord(l recordLayout) (record, error) {
	rec := record{offset: c.pos}

	wrap := func(err error) error {
		return &RecordError{Record: l.name, Offset: rec.offset, Err: err}
	}

	sig, err := c.next(signatureLen)
	if err != nil {
		return rec, wrap(err)
	}
	if got := binary.LittleEndian.Uint32(sig); got != l.signature {
		return rec, wrap(fmt.Errorf("%w: got 0x%08x, want 0x%08x", ErrBadSignature, got, l.signature))
	}

	rec.fixed, err = c.next(int64(l.fixedLen))
	if err != nil {
		return rec, wrap(err)
	}

	rec.fields = make([][]byte, 0, len(l.lengths))
	for _, at := range l.lengths {
		field, err := c.next(int64(rec.uint16(at)))
		if err != nil {
			return rec, wrap(err)
		}
		rec.fields = append(rec.fields, field)
	}

	return rec, nil
}
