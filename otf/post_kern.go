package otf

// Post exposes the post table's italic angle/underline metrics and, for
// versions 1.0/2.0, glyph name recovery (§5's supplemented features).
// Version 3.0 carries no glyph names; this package reports that as "no
// names available" rather than an error, matching the format's own intent.
type Post struct {
	Version          Fixed
	ItalicAngle      Fixed
	UnderlinePosition, UnderlineThickness int16
	IsFixedPitch     uint32
	names            []string // version 2 only: resolved per-glyph names
}

var macGlyphNames = [...]string{
	".notdef", ".null", "nonmarkingreturn", "space", "exclam", "quotedbl",
	"numbersign", "dollar", "percent", "ampersand", "quotesingle",
	"parenleft", "parenright", "asterisk", "plus", "comma", "hyphen",
	"period", "slash", "zero", "one", "two", "three", "four", "five",
	"six", "seven", "eight", "nine", "colon", "semicolon", "less",
	"equal", "greater", "question", "at", "A", "B", "C", "D", "E", "F",
	"G", "H", "I", "J", "K", "L", "M", "N", "O", "P", "Q", "R", "S", "T",
	"U", "V", "W", "X", "Y", "Z",
}

func ParsePost(data []byte) (*Post, error) {
	r := NewReader(data)
	version, ok := r.Fixed()
	if !ok {
		return nil, ErrInvalidTable
	}
	italicAngle, ok := r.Fixed()
	if !ok {
		return nil, ErrReadOutOfBounds
	}
	underlinePosition, ok1 := r.I16()
	underlineThickness, ok2 := r.I16()
	isFixedPitch, ok3 := r.U32()
	if !ok1 || !ok2 || !ok3 {
		return nil, ErrReadOutOfBounds
	}

	p := &Post{
		Version: version, ItalicAngle: italicAngle,
		UnderlinePosition: underlinePosition, UnderlineThickness: underlineThickness,
		IsFixedPitch: isFixedPitch,
	}

	if version.Float32() != 2.0 {
		return p, nil
	}

	if !r.SetPos(32) {
		return p, nil // malformed v2 extension: names simply unavailable
	}
	numGlyphs, ok := r.U16()
	if !ok {
		return p, nil
	}
	indexes := make([]uint16, numGlyphs)
	for i := range indexes {
		v, ok := r.U16()
		if !ok {
			return p, nil
		}
		indexes[i] = v
	}

	var pascalStrings []string
	for !r.AtEnd() {
		length, ok := r.U8()
		if !ok {
			break
		}
		b, ok := r.Bytes(int(length))
		if !ok {
			break
		}
		pascalStrings = append(pascalStrings, string(b))
	}

	names := make([]string, numGlyphs)
	for i, idx := range indexes {
		if idx < 258 {
			if int(idx) < len(macGlyphNames) {
				names[i] = macGlyphNames[idx]
			}
		} else {
			j := int(idx) - 258
			if j < len(pascalStrings) {
				names[i] = pascalStrings[j]
			}
		}
	}
	p.names = names
	return p, nil
}

// GlyphName returns gid's PostScript glyph name, if this post table
// carries names (version 2.0).
func (p *Post) GlyphName(gid GlyphID) (string, bool) {
	if p == nil || int(gid) >= len(p.names) {
		return "", false
	}
	n := p.names[gid]
	return n, n != ""
}

// Kern exposes format-0 kerning pairs, the only subtable format this
// package supports (§5's supplemented features scope kern to the classic
// ordered-pair format, matching the teacher's own breadth).
type Kern struct {
	pairs []kernPair
}

type kernPair struct {
	left, right GlyphID
	value       int16
}

func ParseKern(data []byte) (*Kern, error) {
	r := NewReader(data)
	if _, ok := r.U16(); !ok { // version
		return nil, ErrInvalidTable
	}
	numTables, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}

	k := &Kern{}
	for t := 0; t < int(numTables); t++ {
		if _, ok := r.U16(); !ok { // subtable version
			return k, nil
		}
		length, ok := r.U16()
		if !ok {
			return k, nil
		}
		coverage, ok := r.U16()
		if !ok {
			return k, nil
		}
		format := coverage >> 8
		subtableEnd := r.Pos() + int(length) - 6
		if format == 0 {
			nPairs, ok := r.U16()
			if !ok {
				return k, nil
			}
			r.Advance(6) // searchRange, entrySelector, rangeShift
			for i := 0; i < int(nPairs); i++ {
				left, ok1 := r.GlyphID()
				right, ok2 := r.GlyphID()
				value, ok3 := r.I16()
				if !ok1 || !ok2 || !ok3 {
					return k, nil
				}
				k.pairs = append(k.pairs, kernPair{left, right, value})
			}
		}
		if subtableEnd > r.Pos() {
			r.Advance(subtableEnd - r.Pos())
		} else {
			r.SetPos(subtableEnd)
		}
	}
	return k, nil
}

// Lookup finds the kerning adjustment for an ordered glyph pair via
// binary search (format-0 pairs are sorted by (left, right)).
func (k *Kern) Lookup(left, right GlyphID) (int16, bool) {
	if k == nil {
		return 0, false
	}
	lo, hi := 0, len(k.pairs)
	for lo < hi {
		mid := (lo + hi) / 2
		p := k.pairs[mid]
		switch {
		case left < p.left || (left == p.left && right < p.right):
			hi = mid
		case left > p.left || (left == p.left && right > p.right):
			lo = mid + 1
		default:
			return p.value, true
		}
	}
	return 0, false
}
