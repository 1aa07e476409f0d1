package archives

import (
	"fmt"
	"io"
	"sort"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Catalog maps member names to their central directory entries. A name
// that appears twice in the directory resolves to the later entry.
type Catalog struct {
	Trailer *Trailer

	entries map[string]*DirectoryEntry
}

// ReadCatalog locates the end of central directory record and walks the
// directory it points to.
func ReadCatalog(r io.ReaderAt, size int64) (*Catalog, error) {
	trailer, err := LocateTrailer(r, size)
	if err != nil {
		return nil, err
	}

	return readCatalog(r, size, trailer)
}

// readCatalog parses directory entries until the end of central directory
// signature shows up where the next entry was expected.
func readCatalog(r io.ReaderAt, size int64, trailer *Trailer) (*Catalog, error) {
	catalog := &Catalog{
		Trailer: trailer,
		entries: make(map[string]*DirectoryEntry, trailer.TotalEntries),
	}

	c := newCursor(r, size, int64(trailer.DirectoryOffset))

	parsed := 0
	for {
		sig, err := c.peekUint32()
		if err != nil {
			return nil, &RecordError{Record: centralDirectoryLayout.name, Offset: c.pos, Err: err}
		}
		if sig == endOfCentralDirSignature {
			break
		}

		entry, err := readDirectoryEntry(c)
		if err != nil {
			return nil, fmt.Errorf("reading entry %d: %w", parsed, err)
		}
		parsed++

		if prev, ok := catalog.entries[entry.Name]; ok {
			logrus.WithFields(logrus.Fields{
				"name":     entry.Name,
				"previous": prev.LocalHeaderOffset,
				"offset":   entry.LocalHeaderOffset,
			}).Warningln("Duplicate member name in central directory, using the later entry")
		}
		catalog.entries[entry.Name] = entry
	}

	if parsed != int(trailer.TotalEntries) {
		logrus.WithFields(logrus.Fields{
			"declared": trailer.TotalEntries,
			"parsed":   parsed,
		}).Warningln("Central directory entry count does not match end of central directory record")
	}

	return catalog, nil
}

// Len returns the number of distinct member names.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entry returns the entry stored under name.
func (c *Catalog) Entry(name string) (*DirectoryEntry, bool) {
	entry, ok := c.entries[name]
	return entry, ok
}

// Offsets returns the local header offset of every member, keyed by name.
func (c *Catalog) Offsets() map[string]int64 {
	return lo.MapValues(c.entries, func(entry *DirectoryEntry, _ string) int64 {
		return entry.LocalHeaderOffset
	})
}

// Entries returns all entries ordered by local header offset.
func (c *Catalog) Entries() []*DirectoryEntry {
	entries := lo.Values(c.entries)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].LocalHeaderOffset == entries[j].LocalHeaderOffset {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].LocalHeaderOffset < entries[j].LocalHeaderOffset
	})

	return entries
}
