package archives

import (
	"os"
	"time"
)

// creator host system, high byte of "version made by"
const creatorUnix = 3

const (
	unixTypeMask    = 0o170000
	unixTypeRegular = 0o100000
	unixTypeDir     = 0o040000
)

// DirectoryEntry is one central directory record.
type DirectoryEntry struct {
	// Offset is the absolute position of the entry inside the central
	// directory.
	Offset int64
	// LocalHeaderOffset is the absolute position of the member's local file
	// header.
	LocalHeaderOffset int64

	Name    string
	Extra   []byte
	Comment string

	Method           uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32

	Creator            uint8
	ExternalAttributes uint32

	// Modified is the MS-DOS timestamp read as UTC. It is zero when the
	// archive does not carry a date.
	Modified time.Time
}

// IsDir reports whether the entry names a directory rather than a file.
func (e *DirectoryEntry) IsDir() bool {
	return isDirName(e.Name)
}

// Mode returns the permission bits recorded by a unix creator. Other
// creators and special file types report false.
func (e *DirectoryEntry) Mode() (os.FileMode, bool) {
	if e.Creator != creatorUnix {
		return 0, false
	}

	unixMode := e.ExternalAttributes >> 16
	switch unixMode & unixTypeMask {
	case 0, unixTypeRegular, unixTypeDir:
	default:
		return 0, false
	}

	perm := os.FileMode(unixMode).Perm()
	return perm, perm != 0
}

func dosTime(dosDate, dosTime uint16) time.Time {
	if dosDate == 0 {
		return time.Time{}
	}

	return time.Date(
		int(dosDate>>9)+1980,
		time.Month(dosDate>>5&0xf),
		int(dosDate&0x1f),
		int(dosTime>>11),
		int(dosTime>>5&0x3f),
		int(dosTime&0x1f)*2,
		0,
		time.UTC,
	)
}

// readDirectoryEntry parses the central directory entry at the cursor and
// advances the cursor past its name, extra and comment fields.
func readDirectoryEntry(c *cursor) (*DirectoryEntry, error) {
	rec, err := c.readRecord(centralDirectoryLayout)
	if err != nil {
		return nil, err
	}

	return &DirectoryEntry{
		Offset:             rec.offset,
		LocalHeaderOffset:  int64(rec.uint32(38)),
		Name:               decodeName(rec.fields[0]),
		Extra:              rec.fields[1],
		Comment:            decodeName(rec.fields[2]),
		Method:             rec.uint16(6),
		CRC32:              rec.uint32(12),
		CompressedSize:     rec.uint32(16),
		UncompressedSize:   rec.uint32(20),
		Creator:            uint8(rec.uint16(0) >> 8),
		ExternalAttributes: rec.uint32(34),
		Modified:           dosTime(rec.uint16(10), rec.uint16(8)),
	}, nil
}
