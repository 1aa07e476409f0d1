//go:build !integration

package archives

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// testMember describes one member of a hand built archive.
type testMember struct {
	name    string
	rawName []byte
	comment string
	extra   []byte
	data    []byte

	// payload replaces the deflated data when set.
	payload []byte
	// crc replaces the computed checksum when set.
	crc *uint32
	// streamed leaves the local header sizes zero and writes a data
	// descriptor after the payload.
	streamed bool
	// unixMode is stored in the external attributes with a unix creator.
	unixMode uint32
	dosTime  uint16
	dosDate  uint16
}

func (m testMember) nameBytes(t *testing.T) []byte {
	if m.rawName != nil {
		return m.rawName
	}

	name, ok := encodeName(m.name)
	require.True(t, ok, "name %q is not representable in code page 437", m.name)
	return name
}

type testArchive struct {
	data []byte
	// localOffsets holds the local header offset of every member, in the
	// order the members were given.
	localOffsets []int64
	// directoryOffsets holds the offset of every central directory entry.
	directoryOffsets []int64
	trailerOffset    int64
}

type recordWriter struct {
	bytes.Buffer
}

func (w *recordWriter) u16(v uint16) {
	_ = binary.Write(&w.Buffer, binary.LittleEndian, v)
}

func (w *recordWriter) u32(v uint32) {
	_ = binary.Write(&w.Buffer, binary.LittleEndian, v)
}

func deflate(t *testing.T, data []byte) []byte {
	var buf bytes.Buffer

	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, fw.Close())

	return buf.Bytes()
}

// buildArchive lays out local headers, the central directory and the end
// of central directory record the same way common zip writers do.
func buildArchive(t *testing.T, members []testMember, comment []byte) testArchive {
	var (
		w       recordWriter
		archive testArchive
	)

	type writtenMember struct {
		name    []byte
		payload []byte
		crc     uint32
	}
	records := make([]writtenMember, len(members))

	for i, m := range members {
		payload := m.payload
		if payload == nil && len(m.data) > 0 {
			payload = deflate(t, m.data)
		}

		crc := crc32.ChecksumIEEE(m.data)
		if m.crc != nil {
			crc = *m.crc
		}

		name := m.nameBytes(t)
		records[i] = writtenMember{name: name, payload: payload, crc: crc}
		archive.localOffsets = append(archive.localOffsets, int64(w.Len()))

		flags, localCRC := uint16(0), crc
		localCompressed, localUncompressed := uint32(len(payload)), uint32(len(m.data))
		if m.streamed {
			flags = dataDescriptorFlag
			localCRC, localCompressed, localUncompressed = 0, 0, 0
		}

		w.u32(localFileHeaderSignature)
		w.u16(20) // version needed
		w.u16(flags)
		w.u16(8) // deflate
		w.u16(0) // time
		w.u16(0) // date
		w.u32(localCRC)
		w.u32(localCompressed)
		w.u32(localUncompressed)
		w.u16(uint16(len(name)))
		w.u16(0) // extra length
		w.Write(name)
		w.Write(payload)

		if m.streamed {
			w.u32(0x08074b50)
			w.u32(crc)
			w.u32(uint32(len(payload)))
			w.u32(uint32(len(m.data)))
		}
	}

	directoryStart := w.Len()
	for i, m := range members {
		archive.directoryOffsets = append(archive.directoryOffsets, int64(w.Len()))

		mc, ok := encodeName(m.comment)
		require.True(t, ok)

		madeBy := uint16(20)
		if m.unixMode != 0 {
			madeBy |= creatorUnix << 8
		}

		w.u32(centralDirectorySignature)
		w.u16(madeBy)
		w.u16(20) // version needed
		w.u16(0)  // flags
		w.u16(8)  // deflate
		w.u16(m.dosTime)
		w.u16(m.dosDate)
		w.u32(records[i].crc)
		w.u32(uint32(len(records[i].payload)))
		w.u32(uint32(len(m.data)))
		w.u16(uint16(len(records[i].name)))
		w.u16(uint16(len(m.extra)))
		w.u16(uint16(len(mc)))
		w.u16(0) // disk number start
		w.u16(0) // internal attributes
		w.u32(m.unixMode << 16)
		w.u32(uint32(archive.localOffsets[i]))
		w.Write(records[i].name)
		w.Write(m.extra)
		w.Write(mc)
	}
	directoryEnd := w.Len()

	archive.trailerOffset = int64(w.Len())
	w.u32(endOfCentralDirSignature)
	w.u16(0)
	w.u16(0)
	w.u16(uint16(len(members)))
	w.u16(uint16(len(members)))
	w.u32(uint32(directoryEnd - directoryStart))
	w.u32(uint32(directoryStart))
	w.u16(uint16(len(comment)))
	w.Write(comment)

	archive.data = w.Bytes()
	return archive
}

func (a testArchive) reader() *bytes.Reader {
	return bytes.NewReader(a.data)
}

func (a testArchive) size() int64 {
	return int64(len(a.data))
}

func (a testArchive) putUint16(at int64, v uint16) {
	binary.LittleEndian.PutUint16(a.data[at:], v)
}

func (a testArchive) putUint32(at int64, v uint32) {
	binary.LittleEndian.PutUint32(a.data[at:], v)
}

// encodeName is the inverse of decodeName. It reports false when s holds a
// rune with no code page 437 representation.
func encodeName(s string) ([]byte, bool) {
	out := make([]byte, 0, len(s))

	for _, r := range s {
		c, ok := charmap.CodePage437.EncodeRune(r)
		if !ok {
			return nil, false
		}
		out = append(out, c)
	}

	return out, true
}
