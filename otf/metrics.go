package otf

// Head holds the font-wide header fields this package consults (§4.2's
// mandatory-table set).
type Head struct {
	UnitsPerEm        uint16
	IndexToLocFormat  int16
	XMin, YMin, XMax, YMax int16
	MacStyle          uint16
}

func ParseHead(data []byte) (*Head, error) {
	r := NewReader(data)
	if !r.SetPos(18) {
		return nil, ErrInvalidTable
	}
	unitsPerEm, ok := r.U16()
	if !ok {
		return nil, ErrReadOutOfBounds
	}
	if !r.SetPos(36) {
		return nil, ErrInvalidTable
	}
	xMin, ok1 := r.I16()
	yMin, ok2 := r.I16()
	xMax, ok3 := r.I16()
	yMax, ok4 := r.I16()
	macStyle, ok5 := r.U16()
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return nil, ErrReadOutOfBounds
	}
	if !r.SetPos(46) {
		return nil, ErrInvalidTable
	}
	r.Advance(2) // lowestRecPPEM
	r.Advance(2) // fontDirectionHint
	indexToLocFormat, ok := r.I16()
	if !ok {
		return nil, ErrReadOutOfBounds
	}
	return &Head{
		UnitsPerEm: unitsPerEm, IndexToLocFormat: indexToLocFormat,
		XMin: xMin, YMin: yMin, XMax: xMax, YMax: yMax, MacStyle: macStyle,
	}, nil
}

// Maxp holds maxp's glyph count and, for CFF-flavored fonts, the v0.5
// variant that stops right after numGlyphs.
type Maxp struct {
	NumGlyphs        uint16
	MaxCompositeDepth uint16 // 0 if the font is a v0.5 (CFF) maxp
}

func ParseMaxp(data []byte) (*Maxp, error) {
	r := NewReader(data)
	version, ok := r.U32()
	if !ok {
		return nil, ErrInvalidTable
	}
	numGlyphs, ok := r.U16()
	if !ok {
		return nil, ErrReadOutOfBounds
	}
	m := &Maxp{NumGlyphs: numGlyphs}
	if version >= 0x00010000 {
		if !r.Advance(26) {
			return nil, ErrReadOutOfBounds
		}
		depth, ok := r.U16At(r.Pos() - 2)
		if ok {
			m.MaxCompositeDepth = depth
		}
	}
	return m, nil
}

// Hhea/Vhea hold the horizontal/vertical header fields hmtx/vmtx depend on.
type Hhea struct {
	Ascender, Descender, LineGap int16
	AdvanceWidthMax              uint16
	NumberOfHMetrics             uint16
}

func ParseHhea(data []byte) (*Hhea, error) {
	r := NewReader(data)
	if !r.SetPos(4) {
		return nil, ErrInvalidTable
	}
	ascender, ok1 := r.I16()
	descender, ok2 := r.I16()
	lineGap, ok3 := r.I16()
	advanceWidthMax, ok4 := r.U16()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, ErrReadOutOfBounds
	}
	if !r.SetPos(34) {
		return nil, ErrInvalidTable
	}
	numberOfHMetrics, ok := r.U16()
	if !ok {
		return nil, ErrReadOutOfBounds
	}
	return &Hhea{
		Ascender: ascender, Descender: descender, LineGap: lineGap,
		AdvanceWidthMax: advanceWidthMax, NumberOfHMetrics: numberOfHMetrics,
	}, nil
}

type Vhea struct {
	Ascender, Descender, LineGap int16
	NumOfLongVerMetrics          uint16
}

func ParseVhea(data []byte) (*Vhea, error) {
	r := NewReader(data)
	if !r.SetPos(4) {
		return nil, ErrInvalidTable
	}
	ascender, ok1 := r.I16()
	descender, ok2 := r.I16()
	lineGap, ok3 := r.I16()
	if !ok1 || !ok2 || !ok3 {
		return nil, ErrReadOutOfBounds
	}
	if !r.SetPos(36) {
		return nil, ErrInvalidTable
	}
	numOfLongVerMetrics, ok := r.U16()
	if !ok {
		return nil, ErrReadOutOfBounds
	}
	return &Vhea{Ascender: ascender, Descender: descender, LineGap: lineGap, NumOfLongVerMetrics: numOfLongVerMetrics}, nil
}

// Hmtx/Vmtx expose per-glyph advance + side bearing. Entries beyond the
// last explicit longMetric repeat its advance with a trailing-array side
// bearing, per the standard hmtx/vmtx compaction convention.
type Hmtx struct {
	data             []byte
	numberOfHMetrics int
	numGlyphs        int
}

func ParseHmtx(data []byte, numberOfHMetrics, numGlyphs int) (*Hmtx, error) {
	minLen := numberOfHMetrics*4 + maxInt(0, numGlyphs-numberOfHMetrics)*2
	if len(data) < minLen {
		return nil, ErrInvalidTable
	}
	return &Hmtx{data: data, numberOfHMetrics: numberOfHMetrics, numGlyphs: numGlyphs}, nil
}

func (h *Hmtx) Advance(gid GlyphID) (uint16, bool) {
	i := int(gid)
	if i >= h.numGlyphs {
		return 0, false
	}
	if i < h.numberOfHMetrics {
		return u16At(h.data, i*4)
	}
	return u16At(h.data, (h.numberOfHMetrics-1)*4)
}

func (h *Hmtx) SideBearing(gid GlyphID) (int16, bool) {
	i := int(gid)
	if i >= h.numGlyphs {
		return 0, false
	}
	if i < h.numberOfHMetrics {
		v, ok := i16At(h.data, i*4+2)
		return v, ok
	}
	off := h.numberOfHMetrics*4 + (i-h.numberOfHMetrics)*2
	v, ok := i16At(h.data, off)
	return v, ok
}

// Vmtx mirrors Hmtx for vertical metrics.
type Vmtx = Hmtx

func ParseVmtx(data []byte, numOfLongVerMetrics, numGlyphs int) (*Vmtx, error) {
	return ParseHmtx(data, numOfLongVerMetrics, numGlyphs)
}

func u16At(data []byte, off int) (uint16, bool) {
	if off < 0 || off+2 > len(data) {
		return 0, false
	}
	return uint16(data[off])<<8 | uint16(data[off+1]), true
}

func i16At(data []byte, off int) (int16, bool) {
	v, ok := u16At(data, off)
	return int16(v), ok
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// OS2 exposes the handful of OS/2 fields most callers need (weight/width
// class, typo metrics, win ascent/descent, x-height/cap-height), per §5's
// supplemented-features.
type OS2 struct {
	WeightClass, WidthClass   uint16
	TypoAscender, TypoDescender, TypoLineGap int16
	WinAscent, WinDescent     uint16
	XHeight, CapHeight        int16 // version >= 2 only
	HasXHeight, HasCapHeight  bool
}

func ParseOS2(data []byte) (*OS2, error) {
	r := NewReader(data)
	version, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	r.Advance(2) // xAvgCharWidth
	weightClass, ok1 := r.U16()
	widthClass, ok2 := r.U16()
	if !ok1 || !ok2 {
		return nil, ErrReadOutOfBounds
	}
	if !r.SetPos(68) {
		return nil, ErrInvalidTable
	}
	typoAscender, ok3 := r.I16()
	typoDescender, ok4 := r.I16()
	typoLineGap, ok5 := r.I16()
	winAscent, ok6 := r.U16()
	winDescent, ok7 := r.U16()
	if !ok3 || !ok4 || !ok5 || !ok6 || !ok7 {
		return nil, ErrReadOutOfBounds
	}

	o := &OS2{
		WeightClass: weightClass, WidthClass: widthClass,
		TypoAscender: typoAscender, TypoDescender: typoDescender, TypoLineGap: typoLineGap,
		WinAscent: winAscent, WinDescent: winDescent,
	}
	if version >= 2 {
		if r.SetPos(86) {
			if xh, ok := r.I16(); ok {
				o.XHeight, o.HasXHeight = xh, true
			}
			if ch, ok := r.I16(); ok {
				o.CapHeight, o.HasCapHeight = ch, true
			}
		}
	}
	return o, nil
}
