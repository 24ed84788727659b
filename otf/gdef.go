package otf

// GDEF exposes glyph class definitions and mark glyph sets without
// driving a GSUB/GPOS shaping pipeline (§5's supplemented features
// explicitly stop at classification data, not shaping).
type GDEF struct {
	glyphClassDef ClassDef
	markAttachClassDef ClassDef
	markGlyphSets []Coverage
}

// GlyphClass mirrors GDEF's fixed four-class enumeration.
type GlyphClass uint16

const (
	GlyphClassNone GlyphClass = iota
	GlyphClassBase
	GlyphClassLigature
	GlyphClassMark
	GlyphClassComponent
)

func ParseGDEF(data []byte) (*GDEF, error) {
	r := NewReader(data)
	if _, ok := r.U16(); !ok { // majorVersion
		return nil, ErrInvalidTable
	}
	minorVersion, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	glyphClassDefOffset, ok1 := r.U16()
	_, ok2 := r.U16() // attachListOffset: unused without a shaping driver
	_, ok3 := r.U16() // ligCaretListOffset: unused without a shaping driver
	markAttachClassDefOffset, ok4 := r.U16()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, ErrReadOutOfBounds
	}

	var markGlyphSetsDefOffset uint32
	if minorVersion >= 2 {
		v, ok := r.U16()
		if !ok {
			return nil, ErrReadOutOfBounds
		}
		markGlyphSetsDefOffset = uint32(v)
	}

	g := &GDEF{}
	if glyphClassDefOffset != 0 {
		cd, err := ParseClassDef(data, int(glyphClassDefOffset))
		if err != nil {
			return nil, err
		}
		g.glyphClassDef = cd
	}
	if markAttachClassDefOffset != 0 {
		cd, err := ParseClassDef(data, int(markAttachClassDefOffset))
		if err != nil {
			return nil, err
		}
		g.markAttachClassDef = cd
	}
	if markGlyphSetsDefOffset != 0 {
		sets, err := parseMarkGlyphSetsDef(data, int(markGlyphSetsDefOffset))
		if err != nil {
			return nil, err
		}
		g.markGlyphSets = sets
	}
	return g, nil
}

// GlyphClass reports gid's GDEF glyph class, or GlyphClassNone if
// unclassified (including when GDEF has no glyph class definition).
func (g *GDEF) GlyphClass(gid GlyphID) GlyphClass {
	if g == nil {
		return GlyphClassNone
	}
	c, ok := g.glyphClassDef.ClassOf(gid)
	if !ok {
		return GlyphClassNone
	}
	return GlyphClass(c)
}

// MarkAttachClass reports gid's mark-attachment class (0 if none set).
func (g *GDEF) MarkAttachClass(gid GlyphID) uint16 {
	if g == nil {
		return 0
	}
	c, _ := g.markAttachClassDef.ClassOf(gid)
	return c
}

// InMarkGlyphSet reports whether gid belongs to the setIndex'th mark
// glyph set.
func (g *GDEF) InMarkGlyphSet(setIndex int, gid GlyphID) bool {
	if g == nil || setIndex < 0 || setIndex >= len(g.markGlyphSets) {
		return false
	}
	_, ok := g.markGlyphSets[setIndex].Index(gid)
	return ok
}

func parseMarkGlyphSetsDef(data []byte, offset int) ([]Coverage, error) {
	r := NewReader(data)
	if !r.SetPos(offset) {
		return nil, ErrInvalidOffset
	}
	if _, ok := r.U16(); !ok { // format
		return nil, ErrInvalidTable
	}
	count, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	sets := make([]Coverage, count)
	for i := range sets {
		off, ok := r.U32()
		if !ok {
			return nil, ErrReadOutOfBounds
		}
		cov, err := ParseCoverage(data, offset+int(off))
		if err != nil {
			return nil, err
		}
		sets[i] = cov
	}
	return sets, nil
}

// ClassDef implements OpenType ClassDef formats 1 and 2: glyph ->
// small-integer class lookup, used throughout GDEF/GSUB/GPOS.
type ClassDef struct {
	format1Start      GlyphID
	format1Classes    []uint16
	format2Ranges     []classRangeRecord
}

type classRangeRecord struct {
	start, end GlyphID
	class      uint16
}

func ParseClassDef(data []byte, offset int) (ClassDef, error) {
	r := NewReader(data)
	if !r.SetPos(offset) {
		return ClassDef{}, ErrInvalidOffset
	}
	format, ok := r.U16()
	if !ok {
		return ClassDef{}, ErrReadOutOfBounds
	}
	switch format {
	case 1:
		startGlyph, ok := r.GlyphID()
		if !ok {
			return ClassDef{}, ErrReadOutOfBounds
		}
		count, ok := r.U16()
		if !ok {
			return ClassDef{}, ErrReadOutOfBounds
		}
		classes := make([]uint16, count)
		for i := range classes {
			v, ok := r.U16()
			if !ok {
				return ClassDef{}, ErrReadOutOfBounds
			}
			classes[i] = v
		}
		return ClassDef{format1Start: startGlyph, format1Classes: classes}, nil
	case 2:
		count, ok := r.U16()
		if !ok {
			return ClassDef{}, ErrReadOutOfBounds
		}
		ranges := make([]classRangeRecord, count)
		for i := range ranges {
			start, ok1 := r.GlyphID()
			end, ok2 := r.GlyphID()
			class, ok3 := r.U16()
			if !ok1 || !ok2 || !ok3 {
				return ClassDef{}, ErrReadOutOfBounds
			}
			ranges[i] = classRangeRecord{start, end, class}
		}
		return ClassDef{format2Ranges: ranges}, nil
	default:
		return ClassDef{}, ErrInvalidFormat
	}
}

// ClassOf returns gid's class. ok is false when the format is format-1 and
// gid falls outside the declared contiguous array (implicit class 0) or
// format-2 and no range covers gid (also implicit class 0) — callers that
// want the implicit default should treat a false ok as class 0.
func (c ClassDef) ClassOf(gid GlyphID) (uint16, bool) {
	if c.format1Classes != nil {
		if gid < c.format1Start {
			return 0, false
		}
		idx := int(gid - c.format1Start)
		if idx >= len(c.format1Classes) {
			return 0, false
		}
		return c.format1Classes[idx], true
	}
	lo, hi := 0, len(c.format2Ranges)
	for lo < hi {
		mid := (lo + hi) / 2
		rg := c.format2Ranges[mid]
		switch {
		case gid < rg.start:
			hi = mid
		case gid > rg.end:
			lo = mid + 1
		default:
			return rg.class, true
		}
	}
	return 0, false
}

// Coverage implements OpenType Coverage formats 1 and 2: a sorted glyph
// set supporting membership test and glyph->coverage-index lookup.
type Coverage struct {
	format1Glyphs []GlyphID
	format2Ranges []coverageRangeRecord
}

type coverageRangeRecord struct {
	start, end      GlyphID
	startCoverageIndex uint16
}

func ParseCoverage(data []byte, offset int) (Coverage, error) {
	r := NewReader(data)
	if !r.SetPos(offset) {
		return Coverage{}, ErrInvalidOffset
	}
	format, ok := r.U16()
	if !ok {
		return Coverage{}, ErrReadOutOfBounds
	}
	switch format {
	case 1:
		count, ok := r.U16()
		if !ok {
			return Coverage{}, ErrReadOutOfBounds
		}
		glyphs := make([]GlyphID, count)
		for i := range glyphs {
			g, ok := r.GlyphID()
			if !ok {
				return Coverage{}, ErrReadOutOfBounds
			}
			glyphs[i] = g
		}
		return Coverage{format1Glyphs: glyphs}, nil
	case 2:
		count, ok := r.U16()
		if !ok {
			return Coverage{}, ErrReadOutOfBounds
		}
		ranges := make([]coverageRangeRecord, count)
		for i := range ranges {
			start, ok1 := r.GlyphID()
			end, ok2 := r.GlyphID()
			idx, ok3 := r.U16()
			if !ok1 || !ok2 || !ok3 {
				return Coverage{}, ErrReadOutOfBounds
			}
			ranges[i] = coverageRangeRecord{start, end, idx}
		}
		return Coverage{format2Ranges: ranges}, nil
	default:
		return Coverage{}, ErrInvalidFormat
	}
}

// Index returns gid's coverage index (its position within the covered
// glyph set), or false if gid is not covered.
func (c Coverage) Index(gid GlyphID) (int, bool) {
	if c.format1Glyphs != nil {
		lo, hi := 0, len(c.format1Glyphs)
		for lo < hi {
			mid := (lo + hi) / 2
			switch {
			case gid < c.format1Glyphs[mid]:
				hi = mid
			case gid > c.format1Glyphs[mid]:
				lo = mid + 1
			default:
				return mid, true
			}
		}
		return 0, false
	}
	lo, hi := 0, len(c.format2Ranges)
	for lo < hi {
		mid := (lo + hi) / 2
		rg := c.format2Ranges[mid]
		switch {
		case gid < rg.start:
			hi = mid
		case gid > rg.end:
			lo = mid + 1
		default:
			return int(rg.startCoverageIndex) + int(gid-rg.start), true
		}
	}
	return 0, false
}
