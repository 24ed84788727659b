// Package otf parses the TrueType/OpenType font container and the glyf and
// CFF/CFF2 outline formats it carries, without copying or allocating on the
// query path, and without trusting the input buffer.
package otf

// Tag is a four-byte big-endian table or feature identifier, such as
// 'cmap' or 'wght'.
type Tag uint32

// MakeTag builds a Tag from four ASCII bytes.
func MakeTag(a, b, c, d byte) Tag {
	return Tag(uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d))
}

// String returns the tag as its four-character representation.
func (t Tag) String() string {
	return string([]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)})
}

// Table tags consumed by the core.
var (
	TagCmap = MakeTag('c', 'm', 'a', 'p')
	TagHead = MakeTag('h', 'e', 'a', 'd')
	TagHhea = MakeTag('h', 'h', 'e', 'a')
	TagVhea = MakeTag('v', 'h', 'e', 'a')
	TagHmtx = MakeTag('h', 'm', 't', 'x')
	TagVmtx = MakeTag('v', 'm', 't', 'x')
	TagMaxp = MakeTag('m', 'a', 'x', 'p')
	TagName = MakeTag('n', 'a', 'm', 'e')
	TagOS2  = MakeTag('O', 'S', '/', '2')
	TagPost = MakeTag('p', 'o', 's', 't')
	TagKern = MakeTag('k', 'e', 'r', 'n')
	TagGlyf = MakeTag('g', 'l', 'y', 'f')
	TagLoca = MakeTag('l', 'o', 'c', 'a')
	TagCFF  = MakeTag('C', 'F', 'F', ' ')
	TagCFF2 = MakeTag('C', 'F', 'F', '2')
	TagGDEF = MakeTag('G', 'D', 'E', 'F')
	TagFvar = MakeTag('f', 'v', 'a', 'r')
	TagAvar = MakeTag('a', 'v', 'a', 'r')
	TagMVAR = MakeTag('M', 'V', 'A', 'R')
	TagHVAR = MakeTag('H', 'V', 'A', 'R')
	TagVVAR = MakeTag('V', 'V', 'A', 'R')
	TagCOLR = MakeTag('C', 'O', 'L', 'R')
	TagCPAL = MakeTag('C', 'P', 'A', 'L')
	TagSbix = MakeTag('s', 'b', 'i', 'x')
	TagCBLC = MakeTag('C', 'B', 'L', 'C')
	TagCBDT = MakeTag('C', 'B', 'D', 'T')
	TagSVG  = MakeTag('S', 'V', 'G', ' ')
)

// GlyphID identifies one glyph. 0 is .notdef and is always valid.
type GlyphID uint16

// Codepoint is a Unicode scalar value used as a cmap lookup key.
type Codepoint = uint32
