package otf

// BitmapGlyph is a raw, undecoded bitmap strike image: this package hands
// back the PNG (or, for CBDT format 17/18/19, PNG-in-a-small-header) byte
// range exactly as stored, per §5 — no image decoding happens here.
type BitmapGlyph struct {
	Data          []byte
	X, Y          int16 // bearings, where the format provides them
	PixelsPerEm   uint16
}

// Sbix exposes the sbix table's per-strike, per-glyph bitmap images.
type Sbix struct {
	data     []byte
	strikes  []sbixStrike
}

type sbixStrike struct {
	ppem, ppi uint16
	glyphDataOffsets []uint32 // numGlyphs+1 entries
}

func ParseSbix(data []byte, numGlyphs int) (*Sbix, error) {
	r := NewReader(data)
	if _, ok := r.U16(); !ok { // version
		return nil, ErrInvalidTable
	}
	if _, ok := r.U16(); !ok { // flags
		return nil, ErrInvalidTable
	}
	numStrikes, ok := r.U32()
	if !ok {
		return nil, ErrInvalidTable
	}
	strikeOffsets := make([]uint32, numStrikes)
	for i := range strikeOffsets {
		v, ok := r.U32()
		if !ok {
			return nil, ErrReadOutOfBounds
		}
		strikeOffsets[i] = v
	}

	s := &Sbix{data: data}
	for _, off := range strikeOffsets {
		sr := NewReader(data)
		if !sr.SetPos(int(off)) {
			return nil, ErrInvalidOffset
		}
		ppem, ok1 := sr.U16()
		ppi, ok2 := sr.U16()
		if !ok1 || !ok2 {
			return nil, ErrReadOutOfBounds
		}
		offsets := make([]uint32, numGlyphs+1)
		for i := range offsets {
			v, ok := sr.U32()
			if !ok {
				return nil, ErrReadOutOfBounds
			}
			offsets[i] = v
		}
		s.strikes = append(s.strikes, sbixStrike{ppem: ppem, ppi: ppi, glyphDataOffsets: offsets})
	}
	return s, nil
}

// Glyph returns gid's bitmap from the strike nearest ppem (picking the
// largest strike no greater than ppem, or the smallest strike if all
// exceed it), matching the common "pick best available size" convention.
func (s *Sbix) Glyph(gid GlyphID, ppem uint16) (BitmapGlyph, bool) {
	if s == nil || len(s.strikes) == 0 {
		return BitmapGlyph{}, false
	}
	best := s.strikes[0]
	for _, st := range s.strikes {
		if st.ppem <= ppem && st.ppem > best.ppem {
			best = st
		}
		if best.ppem > ppem && st.ppem < best.ppem {
			best = st
		}
	}

	i := int(gid)
	if i+1 >= len(best.glyphDataOffsets) {
		return BitmapGlyph{}, false
	}
	start, end := best.glyphDataOffsets[i], best.glyphDataOffsets[i+1]
	if end <= start {
		return BitmapGlyph{}, false
	}

	// Each glyph data record is: originOffsetX(i16), originOffsetY(i16),
	// graphicType(Tag), data[...].
	recOff := int(start)
	originX, ok1 := i16At(s.data, recOff)
	originY, ok2 := i16At(s.data, recOff+2)
	if !ok1 || !ok2 {
		return BitmapGlyph{}, false
	}
	imgData, ok := Sub(s.data, recOff+8, int(end-start)-8)
	if !ok {
		return BitmapGlyph{}, false
	}
	return BitmapGlyph{Data: imgData, X: originX, Y: originY, PixelsPerEm: best.ppem}, true
}

// CBLC/CBDT: bitmap location + data tables (§5). This package resolves a
// glyph's raw image bytes through CBLC's bitmapSize -> indexSubTable
// chain but does not decode the PNG/packed-pixel payload itself.
type CBLC struct {
	data   []byte
	sizes  []cblcBitmapSize
}

type cblcBitmapSize struct {
	indexSubTableArrayOffset, indexTablesSize uint32
	numberOfIndexSubTables                    uint32
	ppemX, ppemY                              uint8
	startGlyphIndex, endGlyphIndex             GlyphID
}

func ParseCBLC(data []byte) (*CBLC, error) {
	r := NewReader(data)
	if _, ok := r.U16(); !ok { // majorVersion
		return nil, ErrInvalidTable
	}
	if _, ok := r.U16(); !ok { // minorVersion
		return nil, ErrInvalidTable
	}
	numSizes, ok := r.U32()
	if !ok {
		return nil, ErrInvalidTable
	}

	c := &CBLC{data: data}
	for i := uint32(0); i < numSizes; i++ {
		off := 8 + i*48
		sr := NewReader(data)
		if !sr.SetPos(int(off)) {
			return nil, ErrInvalidOffset
		}
		indexSubTableArrayOffset, ok1 := sr.U32()
		indexTablesSize, ok2 := sr.U32()
		numberOfIndexSubTables, ok3 := sr.U32()
		if !ok1 || !ok2 || !ok3 {
			return nil, ErrReadOutOfBounds
		}
		if !sr.SetPos(int(off) + 40) {
			return nil, ErrInvalidOffset
		}
		startGlyph, ok4 := sr.GlyphID()
		endGlyph, ok5 := sr.GlyphID()
		ppemX, ok6 := sr.U8()
		ppemY, ok7 := sr.U8()
		if !ok4 || !ok5 || !ok6 || !ok7 {
			return nil, ErrReadOutOfBounds
		}
		c.sizes = append(c.sizes, cblcBitmapSize{
			indexSubTableArrayOffset: indexSubTableArrayOffset,
			indexTablesSize:          indexTablesSize,
			numberOfIndexSubTables:   numberOfIndexSubTables,
			ppemX: ppemX, ppemY: ppemY,
			startGlyphIndex: startGlyph, endGlyphIndex: endGlyph,
		})
	}
	return c, nil
}

// glyphOffsetLength resolves gid's (offset, length) within CBDT via the
// matching bitmapSize's index subtables. Only index subtable formats 1
// and 2 (the common fixed/variable-metrics cases) are implemented.
func (c *CBLC) glyphOffsetLength(gid GlyphID) (offset, length int, ok bool) {
	for _, sz := range c.sizes {
		if gid < sz.startGlyphIndex || gid > sz.endGlyphIndex {
			continue
		}
		for i := uint32(0); i < sz.numberOfIndexSubTables; i++ {
			recOff := int(sz.indexSubTableArrayOffset) + int(i)*8
			firstGID, ok1 := GlyphIDAt(c.data, recOff)
			lastGID, ok2 := GlyphIDAt(c.data, recOff+2)
			subOff, ok3 := u32At(c.data, recOff+4)
			if !ok1 || !ok2 || !ok3 || gid < firstGID || gid > lastGID {
				continue
			}
			subTableOff := int(sz.indexSubTableArrayOffset) + int(subOff)
			format, ok1 := u16At(c.data, subTableOff)
			imageFormat, ok2 := u16At(c.data, subTableOff+2)
			imageDataOffset, ok3 := u32At(c.data, subTableOff+4)
			if !ok1 || !ok2 || !ok3 {
				return 0, 0, false
			}
			_ = imageFormat
			switch format {
			case 1:
				idx := int(gid - firstGID)
				o1, ok1 := u32At(c.data, subTableOff+8+idx*4)
				o2, ok2 := u32At(c.data, subTableOff+8+(idx+1)*4)
				if !ok1 || !ok2 {
					return 0, 0, false
				}
				return int(imageDataOffset + o1), int(o2 - o1), true
			case 2:
				imageSize, ok := u32At(c.data, subTableOff+8)
				if !ok {
					return 0, 0, false
				}
				idx := int(gid - firstGID)
				return int(imageDataOffset) + idx*int(imageSize), int(imageSize), true
			default:
				return 0, 0, false
			}
		}
	}
	return 0, 0, false
}

func u32At(data []byte, off int) (uint32, bool) {
	if off < 0 || off+4 > len(data) {
		return 0, false
	}
	return uint32(data[off])<<24 | uint32(data[off+1])<<16 | uint32(data[off+2])<<8 | uint32(data[off+3]), true
}

// GlyphIDAt reads a big-endian glyph ID at an absolute offset into data.
func GlyphIDAt(data []byte, off int) (GlyphID, bool) {
	v, ok := u16At(data, off)
	return GlyphID(v), ok
}

// CBDT pairs with a CBLC to resolve raw bitmap bytes.
type CBDT struct {
	data []byte
	cblc *CBLC
}

func ParseCBDT(data []byte, cblc *CBLC) *CBDT {
	return &CBDT{data: data, cblc: cblc}
}

// Glyph returns gid's raw bitmap record bytes (small metrics header +
// image data, exactly as stored), undecoded.
func (b *CBDT) Glyph(gid GlyphID) (BitmapGlyph, bool) {
	if b == nil || b.cblc == nil {
		return BitmapGlyph{}, false
	}
	off, length, ok := b.cblc.glyphOffsetLength(gid)
	if !ok {
		return BitmapGlyph{}, false
	}
	data, ok := Sub(b.data, off, length)
	if !ok {
		return BitmapGlyph{}, false
	}
	return BitmapGlyph{Data: data}, true
}

// SVG exposes per-glyph SVG document byte ranges without parsing SVG
// (§5). Multiple consecutive glyph IDs may share one document.
type SVG struct {
	data    []byte
	docs    []svgDocRecord
}

type svgDocRecord struct {
	startGID, endGID GlyphID
	offset, length   uint32
}

func ParseSVG(data []byte) (*SVG, error) {
	r := NewReader(data)
	if _, ok := r.U16(); !ok { // version
		return nil, ErrInvalidTable
	}
	svgDocumentListOffset, ok := r.U32()
	if !ok {
		return nil, ErrInvalidTable
	}

	lr := NewReader(data)
	if !lr.SetPos(int(svgDocumentListOffset)) {
		return nil, ErrInvalidOffset
	}
	numEntries, ok := lr.U16()
	if !ok {
		return nil, ErrReadOutOfBounds
	}
	s := &SVG{data: data}
	for i := 0; i < int(numEntries); i++ {
		startGID, ok1 := lr.GlyphID()
		endGID, ok2 := lr.GlyphID()
		offset, ok3 := lr.U32()
		length, ok4 := lr.U32()
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil, ErrReadOutOfBounds
		}
		s.docs = append(s.docs, svgDocRecord{
			startGID: startGID, endGID: endGID,
			offset: uint32(svgDocumentListOffset) + offset, length: length,
		})
	}
	return s, nil
}

// Document returns the raw (possibly gzip-compressed, per the SVG table
// spec) SVG bytes covering gid.
func (s *SVG) Document(gid GlyphID) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	for _, d := range s.docs {
		if gid >= d.startGID && gid <= d.endGID {
			return Sub(s.data, int(d.offset), int(d.length))
		}
	}
	return nil, false
}
