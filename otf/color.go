package otf

// CPAL holds one or more color palettes of BGRA entries (§5's
// supplemented features).
type CPAL struct {
	numPaletteEntries int
	colorRecords      []byte // paletteCount * numPaletteEntries * 4 bytes, BGRA
	paletteCount      int
}

// Color is an RGBA color in the order callers typically want to consume
// (CPAL stores BGRA on disk; this is the converted form).
type Color struct {
	R, G, B, A uint8
}

func ParseCPAL(data []byte) (*CPAL, error) {
	r := NewReader(data)
	version, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	numPaletteEntries, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	numPalettes, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	numColorRecords, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	colorRecordsArrayOffset, ok := r.U32()
	if !ok {
		return nil, ErrInvalidTable
	}
	_ = version // v1's palette-type/label tables are not consulted here

	records, ok := Sub(data, int(colorRecordsArrayOffset), int(numColorRecords)*4)
	if !ok {
		return nil, ErrInvalidOffset
	}
	return &CPAL{numPaletteEntries: int(numPaletteEntries), colorRecords: records, paletteCount: int(numPalettes)}, nil
}

// Palette returns the paletteIndex'th palette's colors, or false if the
// index is out of range.
func (c *CPAL) Palette(paletteIndex int) ([]Color, bool) {
	if c == nil || paletteIndex < 0 || paletteIndex >= c.paletteCount {
		return nil, false
	}
	out := make([]Color, c.numPaletteEntries)
	base := paletteIndex * c.numPaletteEntries * 4
	for i := range out {
		off := base + i*4
		if off+4 > len(c.colorRecords) {
			return nil, false
		}
		b, g, rr, a := c.colorRecords[off], c.colorRecords[off+1], c.colorRecords[off+2], c.colorRecords[off+3]
		out[i] = Color{R: rr, G: g, B: b, A: a}
	}
	return out, true
}

// COLR exposes the base-glyph-to-layer mapping for v0. For v1 it only
// reports, through HasV1Paint, whether a base glyph has a paint record;
// the v1 paint graph itself (gradients, transforms, clips, composites) is
// not read or walked.
type COLR struct {
	version        uint16
	baseGlyphs     []colrBaseGlyphRecord // v0
	layers         []colrLayerRecord     // v0
	data           []byte                // whole table, for v1 paint reads
	baseGlyphV1Off int
}

type colrBaseGlyphRecord struct {
	gid              GlyphID
	firstLayerIndex  uint16
	numLayers        uint16
}

type colrLayerRecord struct {
	gid          GlyphID
	paletteIndex uint16
}

func ParseCOLR(data []byte) (*COLR, error) {
	r := NewReader(data)
	version, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	numBaseGlyphRecords, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	baseGlyphRecordsOffset, ok := r.U32()
	if !ok {
		return nil, ErrInvalidTable
	}
	layerRecordsOffset, ok := r.U32()
	if !ok {
		return nil, ErrInvalidTable
	}
	numLayerRecords, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}

	c := &COLR{version: version, data: data}

	baseData, ok := Sub(data, int(baseGlyphRecordsOffset), int(numBaseGlyphRecords)*6)
	if !ok {
		return nil, ErrInvalidOffset
	}
	br := NewReader(baseData)
	c.baseGlyphs = make([]colrBaseGlyphRecord, numBaseGlyphRecords)
	for i := range c.baseGlyphs {
		gid, ok1 := br.GlyphID()
		first, ok2 := br.U16()
		n, ok3 := br.U16()
		if !ok1 || !ok2 || !ok3 {
			return nil, ErrReadOutOfBounds
		}
		c.baseGlyphs[i] = colrBaseGlyphRecord{gid, first, n}
	}

	layerData, ok := Sub(data, int(layerRecordsOffset), int(numLayerRecords)*4)
	if !ok {
		return nil, ErrInvalidOffset
	}
	lr := NewReader(layerData)
	c.layers = make([]colrLayerRecord, numLayerRecords)
	for i := range c.layers {
		gid, ok1 := lr.GlyphID()
		pal, ok2 := lr.U16()
		if !ok1 || !ok2 {
			return nil, ErrReadOutOfBounds
		}
		c.layers[i] = colrLayerRecord{gid, pal}
	}

	if version >= 1 {
		baseGlyphListOffset, ok := r.U32()
		if ok && baseGlyphListOffset != 0 {
			c.baseGlyphV1Off = int(baseGlyphListOffset)
		}
	}

	return c, nil
}

// Layer is one v0 COLR layer: a glyph to paint plus a CPAL palette index
// (0xFFFF means "use the text foreground color", per the format).
type Layer struct {
	Glyph        GlyphID
	PaletteIndex uint16
}

// Layers returns the v0 layer stack for baseGID, bottom-to-top, or false
// if baseGID has no COLR entry.
func (c *COLR) Layers(baseGID GlyphID) ([]Layer, bool) {
	if c == nil {
		return nil, false
	}
	for _, bg := range c.baseGlyphs {
		if bg.gid != baseGID {
			continue
		}
		end := int(bg.firstLayerIndex) + int(bg.numLayers)
		if end > len(c.layers) {
			return nil, false
		}
		out := make([]Layer, bg.numLayers)
		for i := range out {
			l := c.layers[int(bg.firstLayerIndex)+i]
			out[i] = Layer{Glyph: l.gid, PaletteIndex: l.paletteIndex}
		}
		return out, true
	}
	return nil, false
}

// HasV1Paint reports whether baseGID has a v1 paint graph entry. Walking
// that graph's paint formats is out of this package's bounded scope; this
// accessor only confirms presence, matching §5's "v1 support bounded to
// bounded paint-graph depth" characterization of what a read-only
// container layer — as opposed to a renderer — should expose.
func (c *COLR) HasV1Paint(baseGID GlyphID) bool {
	if c == nil || c.version < 1 || c.baseGlyphV1Off == 0 {
		return false
	}
	r := NewReader(c.data)
	if !r.SetPos(c.baseGlyphV1Off) {
		return false
	}
	count, ok := r.U16()
	if !ok {
		return false
	}
	for i := 0; i < int(count); i++ {
		off := c.baseGlyphV1Off + 2 + i*6
		gid, ok := r.U16At(off)
		if !ok {
			return false
		}
		if GlyphID(gid) == baseGID {
			return true
		}
	}
	return false
}
