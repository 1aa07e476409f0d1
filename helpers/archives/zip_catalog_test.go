//go:build !integration

package archives

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCatalog(t *testing.T) {
	for _, n := range []int{0, 1, 5, 40} {
		t.Run(fmt.Sprintf("%d members", n), func(t *testing.T) {
			members := make([]testMember, n)
			for i := range members {
				members[i] = testMember{
					name: fmt.Sprintf("member-%02d.osu", i),
					data: []byte(fmt.Sprintf("content of member %d", i)),
				}
			}
			archive := buildArchive(t, members, nil)

			catalog, err := ReadCatalog(archive.reader(), archive.size())
			require.NoError(t, err)
			require.Equal(t, n, catalog.Len())

			offsets := catalog.Offsets()
			require.Len(t, offsets, n)

			for i, m := range members {
				offset, ok := offsets[m.name]
				require.True(t, ok, "missing %q", m.name)
				assert.Equal(t, archive.localOffsets[i], offset)

				sig := binary.LittleEndian.Uint32(archive.data[offset:])
				assert.Equal(t, localFileHeaderSignature, sig)
			}
		})
	}
}

func TestReadCatalogEntryFields(t *testing.T) {
	archive := buildArchive(t, []testMember{
		{name: "song.mp3", data: []byte("audio"), extra: []byte{0xca, 0xfe, 0x00, 0x00}, comment: "a comment"},
	}, nil)

	catalog, err := ReadCatalog(archive.reader(), archive.size())
	require.NoError(t, err)

	entry, ok := catalog.Entry("song.mp3")
	require.True(t, ok)

	assert.Equal(t, archive.directoryOffsets[0], entry.Offset)
	assert.Equal(t, archive.localOffsets[0], entry.LocalHeaderOffset)
	assert.Equal(t, []byte{0xca, 0xfe, 0x00, 0x00}, entry.Extra)
	assert.Equal(t, "a comment", entry.Comment)
	assert.Equal(t, uint16(8), entry.Method)
	assert.Equal(t, uint32(5), entry.UncompressedSize)
	assert.False(t, entry.IsDir())
}

func TestReadCatalogEntriesOrder(t *testing.T) {
	archive := buildArchive(t, []testMember{
		{name: "z.txt", data: []byte("z")},
		{name: "a.txt", data: []byte("a")},
		{name: "m.txt", data: []byte("m")},
	}, nil)

	catalog, err := ReadCatalog(archive.reader(), archive.size())
	require.NoError(t, err)

	var names []string
	for _, entry := range catalog.Entries() {
		names = append(names, entry.Name)
	}
	assert.Equal(t, []string{"z.txt", "a.txt", "m.txt"}, names)
}

func TestReadCatalogLegacyNames(t *testing.T) {
	archive := buildArchive(t, []testMember{
		{rawName: []byte{0x80, 0x01, 0xe1, 0x1f, 'a', 0xfe}, data: []byte("x")},
	}, nil)

	catalog, err := ReadCatalog(archive.reader(), archive.size())
	require.NoError(t, err)

	_, ok := catalog.Entry("Ç\x01ß\x1fa■")
	assert.True(t, ok, "got %v", catalog.Offsets())
}

func TestReadCatalogDuplicateNames(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	archive := buildArchive(t, []testMember{
		{name: "a.txt", data: []byte("first")},
		{name: "a.txt", data: []byte("second")},
	}, nil)

	catalog, err := ReadCatalog(archive.reader(), archive.size())
	require.NoError(t, err)

	assert.Equal(t, 1, catalog.Len())
	assert.Equal(t, archive.localOffsets[1], catalog.Offsets()["a.txt"])

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, "Duplicate member name")
}

func TestReadCatalogEntryCountMismatch(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	archive := buildArchive(t, []testMember{
		{name: "a.txt", data: []byte("a")},
		{name: "b.txt", data: []byte("b")},
	}, nil)
	archive.putUint16(archive.trailerOffset+10, 7)

	catalog, err := ReadCatalog(archive.reader(), archive.size())
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Len())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, 7, int(entry.Data["declared"].(uint16)))
	assert.Equal(t, 2, entry.Data["parsed"])
}

func TestReadCatalogStructuralErrors(t *testing.T) {
	members := []testMember{
		{name: "a.txt", data: []byte("a")},
		{name: "b.txt", data: []byte("b")},
	}

	tests := map[string]struct {
		corrupt  func(a testArchive)
		expected error
	}{
		"unexpected signature inside the directory": {
			corrupt: func(a testArchive) {
				a.putUint32(a.directoryOffsets[1], localFileHeaderSignature)
			},
			expected: ErrBadSignature,
		},
		"directory offset points at member data": {
			corrupt: func(a testArchive) {
				a.putUint32(a.trailerOffset+16, 0)
			},
			expected: ErrBadSignature,
		},
		"name length runs past the source": {
			corrupt: func(a testArchive) {
				a.putUint16(a.directoryOffsets[1]+signatureLen+24, 0xffff)
			},
			expected: ErrTruncated,
		},
		"comment length runs past the source": {
			corrupt: func(a testArchive) {
				a.putUint16(a.directoryOffsets[1]+signatureLen+28, 0xffff)
			},
			expected: ErrTruncated,
		},
		"directory offset past the end of the source": {
			corrupt: func(a testArchive) {
				a.putUint32(a.trailerOffset+16, uint32(len(a.data)+10))
			},
			expected: ErrTruncated,
		},
	}

	for tn, tc := range tests {
		t.Run(tn, func(t *testing.T) {
			archive := buildArchive(t, members, nil)
			tc.corrupt(archive)

			_, err := ReadCatalog(archive.reader(), archive.size())
			assert.ErrorIs(t, err, tc.expected)

			var recordErr *RecordError
			assert.ErrorAs(t, err, &recordErr)
		})
	}
}
