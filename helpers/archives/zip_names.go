package archives

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// decodeName converts legacy code page 437 bytes to text. The code page is
// a full 256 entry table: bytes 0x00-0x1F and 0x7F map to the matching
// control code points, nothing is dropped.
func decodeName(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))

	for _, c := range raw {
		b.WriteRune(charmap.CodePage437.DecodeByte(c))
	}

	return b.String()
}
