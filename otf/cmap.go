package otf

import "encoding/binary"

// Cmap dispatches character-to-glyph lookups across the cmap table's
// encoding subtables, per §4.3. Construction picks the best Unicode-class
// subtable; glyph_index walks only that subtable. A parallel format-14
// subtable, if present, supplies variation-selector fallback.
type Cmap struct {
	data     []byte
	best     cmapSubtable
	format14 *cmapFormat14
}

// cmapSubtable is the per-format lookup strategy.
type cmapSubtable interface {
	lookup(cp Codepoint) (GlyphID, bool)
}

// isUnicodeEncoding reports whether (platformID, encodingID) is one of the
// predicates §4.3 names as Unicode-class: Unicode platform (any encoding),
// Windows+Symbol/BMP (encoding 0 or 1, any format), or Windows+UCS-4
// (encoding 10, format 12 only — checked by the caller once the format is
// known).
func isUnicodeEncoding(platformID, encodingID uint16) bool {
	switch platformID {
	case 0: // Unicode
		return true
	case 3: // Windows
		return encodingID == 0 || encodingID == 1 || encodingID == 10
	}
	return false
}

// ParseCmap parses the cmap table directory and selects the best subtable.
func ParseCmap(data []byte) (*Cmap, error) {
	r := NewReader(data)
	if _, ok := r.U16(); !ok { // version
		return nil, ErrInvalidTable
	}
	numTables, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}

	c := &Cmap{data: data}
	var bestRank = -1

	for i := 0; i < int(numTables); i++ {
		platformID, ok1 := r.U16()
		encodingID, ok2 := r.U16()
		offset, ok3 := r.U32()
		if !ok1 || !ok2 || !ok3 {
			return nil, ErrInvalidTable
		}

		if platformID == 0 && encodingID == 5 {
			if f14, err := parseCmapFormat14(data, int(offset)); err == nil {
				c.format14 = f14
			}
			continue
		}

		format, ok := peekFormat(data, int(offset))
		if !ok {
			continue
		}
		if !isUnicodeEncoding(platformID, encodingID) {
			continue
		}
		if platformID == 3 && encodingID == 10 && format != 12 {
			continue
		}

		rank := cmapRank(platformID, encodingID, format)
		if rank <= bestRank {
			continue
		}
		st, err := parseCmapSubtable(data, int(offset), format)
		if err != nil {
			continue
		}
		c.best = st
		bestRank = rank
	}

	if c.best == nil {
		return nil, ErrInvalidTable
	}
	return c, nil
}

func peekFormat(data []byte, offset int) (uint16, bool) {
	if offset < 0 || offset+2 > len(data) {
		return 0, false
	}
	return binary.BigEndian.Uint16(data[offset:]), true
}

// cmapRank orders subtables so a full-Unicode, higher-resolution encoding
// wins over a narrower one when more than one is present.
func cmapRank(platformID, encodingID, format uint16) int {
	switch {
	case platformID == 3 && encodingID == 10 && format == 12:
		return 100
	case platformID == 0 && (encodingID == 4 || encodingID == 6):
		return 90
	case platformID == 3 && encodingID == 1:
		return 80
	case platformID == 0:
		return 70
	case platformID == 3 && encodingID == 0:
		return 10
	default:
		return 0
	}
}

func parseCmapSubtable(data []byte, offset int, format uint16) (cmapSubtable, error) {
	switch format {
	case 0:
		return parseCmapFormat0(data, offset)
	case 2:
		return parseCmapFormat2(data, offset)
	case 4:
		return parseCmapFormat4(data, offset)
	case 6:
		return parseCmapFormat6(data, offset)
	case 10:
		return parseCmapFormat10(data, offset)
	case 12:
		return parseCmapFormat12or13(data, offset, false)
	case 13:
		return parseCmapFormat12or13(data, offset, true)
	default:
		// Format 8 is deliberately unsupported (§4.3); anything else unknown.
		return nil, ErrInvalidFormat
	}
}

// GlyphIndex looks up the glyph for a codepoint using the selected subtable.
func (c *Cmap) GlyphIndex(cp Codepoint) (GlyphID, bool) {
	if c == nil || c.best == nil {
		return 0, false
	}
	return c.best.lookup(cp)
}

// uvsResult distinguishes "look the base codepoint up in the default cmap"
// from "this exact glyph was requested", matching the Open Question in §9.
type uvsResult int

const (
	uvsNotFound uvsResult = iota
	uvsUseDefault
	uvsExplicit
)

// GlyphVariationIndex resolves (codepoint, variation selector) through the
// format-14 subtable. A non-default UVS mapping returns its explicit glyph;
// in every other case (default-UVS entry, or selector or codepoint not
// listed) it returns the default cmap lookup of cp. It does not report
// which of these cases applied.
func (c *Cmap) GlyphVariationIndex(cp, vs Codepoint) (gid GlyphID, found bool) {
	if c == nil {
		return 0, false
	}
	if c.format14 != nil {
		if g, res := c.format14.lookup(cp, vs); res == uvsExplicit {
			return g, true
		} else if res == uvsUseDefault {
			return c.GlyphIndex(cp)
		}
	}
	return c.GlyphIndex(cp)
}

// --- Format 0: byte encoding table ---

type cmapFormat0 struct {
	glyphIDs [256]byte
}

func parseCmapFormat0(data []byte, offset int) (*cmapFormat0, error) {
	b, ok := Sub(data, offset+6, 256)
	if !ok {
		return nil, ErrInvalidOffset
	}
	f := &cmapFormat0{}
	copy(f.glyphIDs[:], b)
	return f, nil
}

func (f *cmapFormat0) lookup(cp Codepoint) (GlyphID, bool) {
	if cp >= 256 {
		return 0, false
	}
	g := f.glyphIDs[cp]
	if g == 0 {
		return 0, false
	}
	return GlyphID(g), true
}

// --- Format 2: high-byte mapping through table (CJK) ---

type cmapFormat2 struct {
	data           []byte // whole subtable
	subHeaderKeys  [256]uint16
	subHeaderStart int
	glyphArrStart  int
}

func parseCmapFormat2(data []byte, offset int) (*cmapFormat2, error) {
	r := NewReader(data)
	if !r.SetPos(offset) {
		return nil, ErrInvalidOffset
	}
	if _, ok := r.U16(); !ok { // format
		return nil, ErrInvalidTable
	}
	length, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	if offset+int(length) > len(data) {
		return nil, ErrInvalidOffset
	}
	sub, ok := Sub(data, offset, int(length))
	if !ok {
		return nil, ErrInvalidOffset
	}

	f := &cmapFormat2{data: sub, subHeaderStart: 6, glyphArrStart: 0}
	if len(sub) < 6+512 {
		return nil, ErrInvalidTable
	}
	for i := 0; i < 256; i++ {
		f.subHeaderKeys[i] = binary.BigEndian.Uint16(sub[6+i*2:])
	}
	f.glyphArrStart = 6 + 512
	return f, nil
}

type format2SubHeader struct {
	firstCode     uint16
	entryCount    uint16
	idDelta       int16
	idRangeOffset uint16
	selfOffset    int // byte offset of idRangeOffset field within subtable
}

func (f *cmapFormat2) subHeader(index int) (format2SubHeader, bool) {
	off := f.glyphArrStart + index*8 // subHeaders array immediately follows the 512-byte key array
	if off < 0 || off+8 > len(f.data) {
		return format2SubHeader{}, false
	}
	return format2SubHeader{
		firstCode:     binary.BigEndian.Uint16(f.data[off:]),
		entryCount:    binary.BigEndian.Uint16(f.data[off+2:]),
		idDelta:       int16(binary.BigEndian.Uint16(f.data[off+4:])),
		idRangeOffset: binary.BigEndian.Uint16(f.data[off+6:]),
		selfOffset:    off + 6,
	}, true
}

func (f *cmapFormat2) lookup(cp Codepoint) (GlyphID, bool) {
	if cp > 0xFFFF {
		return 0, false
	}
	var high, low byte
	var hiByteValid bool
	if cp > 0xFF {
		if cp>>8 > 0xFF {
			return 0, false
		}
		high = byte(cp >> 8)
		low = byte(cp)
		hiByteValid = true
	} else {
		low = byte(cp)
	}

	var subIdx int
	if hiByteValid {
		subIdx = int(f.subHeaderKeys[high]) / 8
		if subIdx == 0 {
			// High byte maps to single-byte sub-header 0: only valid for
			// codes < 256 with no high byte, so this combination misses.
			return 0, false
		}
	} else {
		subIdx = int(f.subHeaderKeys[low]) / 8
		if subIdx != 0 {
			// This single byte is actually a lead byte of a 2-byte code;
			// it has no direct single-byte mapping.
			return 0, false
		}
	}

	sh, ok := f.subHeader(subIdx)
	if !ok {
		return 0, false
	}
	code := uint16(low)
	if code < sh.firstCode || uint32(code) >= uint32(sh.firstCode)+uint32(sh.entryCount) {
		return 0, false
	}

	// glyphArray[idRangeOffset bytes past the idRangeOffset field, plus
	// (code - firstCode) entries].
	entryOff := sh.selfOffset + int(sh.idRangeOffset) + int(code-sh.firstCode)*2
	if entryOff < 0 || entryOff+2 > len(f.data) {
		return 0, false
	}
	raw := binary.BigEndian.Uint16(f.data[entryOff:])
	if raw == 0 {
		return 0, false
	}
	gid := uint16(int32(raw) + int32(sh.idDelta))
	if gid == 0 {
		return 0, false
	}
	return GlyphID(gid), true
}

// --- Format 4: segment mapping to delta values (BMP) ---

type cmapFormat4 struct {
	segCount                                                  int
	endCode, startCode, idDelta, idRangeOffset, glyphIDArray []byte
}

func parseCmapFormat4(data []byte, offset int) (*cmapFormat4, error) {
	r := NewReader(data)
	if !r.SetPos(offset) {
		return nil, ErrInvalidOffset
	}
	r.Advance(2) // format
	length, ok := r.U16()
	if !ok || offset+int(length) > len(data) {
		return nil, ErrInvalidTable
	}
	r.Advance(2) // language
	segCountX2, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	segCount := int(segCountX2) / 2
	r.Advance(6) // searchRange, entrySelector, rangeShift

	endCode, ok := r.Bytes(int(segCountX2))
	if !ok {
		return nil, ErrInvalidTable
	}
	r.Advance(2) // reservedPad
	startCode, ok := r.Bytes(int(segCountX2))
	if !ok {
		return nil, ErrInvalidTable
	}
	idDelta, ok := r.Bytes(int(segCountX2))
	if !ok {
		return nil, ErrInvalidTable
	}
	idRangeOffset, ok := r.Bytes(int(segCountX2))
	if !ok {
		return nil, ErrInvalidTable
	}
	end := offset + int(length)
	if r.Pos() > end {
		return nil, ErrInvalidTable
	}
	rest := data[r.Pos():end]

	return &cmapFormat4{
		segCount:      segCount,
		endCode:       endCode,
		startCode:     startCode,
		idDelta:       idDelta,
		idRangeOffset: idRangeOffset,
		glyphIDArray:  rest,
	}, nil
}

func (f *cmapFormat4) lookup(cp Codepoint) (GlyphID, bool) {
	if cp > 0xFFFF {
		return 0, false
	}
	code := uint16(cp)

	// Binary search for the first segment whose endCode >= code.
	lo, hi := 0, f.segCount
	for lo < hi {
		mid := (lo + hi) / 2
		end := binary.BigEndian.Uint16(f.endCode[mid*2:])
		if end < code {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= f.segCount {
		return 0, false
	}
	seg := lo

	start := binary.BigEndian.Uint16(f.startCode[seg*2:])
	if code < start {
		return 0, false
	}
	idDelta := int16(binary.BigEndian.Uint16(f.idDelta[seg*2:]))
	idRangeOffset := binary.BigEndian.Uint16(f.idRangeOffset[seg*2:])

	if idRangeOffset == 0 {
		gid := uint16(int32(code) + int32(idDelta))
		if gid == 0 {
			return 0, false
		}
		return GlyphID(gid), true
	}

	// glyphId = *(idRangeOffset[seg]/2 + (code - startCode[seg]) +
	//            &idRangeOffset[seg])
	glyphArrayIndex := int(idRangeOffset)/2 + int(code-start) - (f.segCount - seg)
	if glyphArrayIndex < 0 || (glyphArrayIndex+1)*2 > len(f.glyphIDArray) {
		return 0, false
	}
	raw := binary.BigEndian.Uint16(f.glyphIDArray[glyphArrayIndex*2:])
	if raw == 0 {
		return 0, false
	}
	gid := uint16(int32(raw) + int32(idDelta))
	if gid == 0 {
		return 0, false
	}
	return GlyphID(gid), true
}

// --- Format 6: trimmed table mapping ---

type cmapFormat6 struct {
	firstCode uint16
	glyphIDs  []byte
}

func parseCmapFormat6(data []byte, offset int) (*cmapFormat6, error) {
	r := NewReader(data)
	if !r.SetPos(offset + 6) {
		return nil, ErrInvalidOffset
	}
	firstCode, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	entryCount, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	b, ok := r.Bytes(int(entryCount) * 2)
	if !ok {
		return nil, ErrInvalidTable
	}
	return &cmapFormat6{firstCode: firstCode, glyphIDs: b}, nil
}

func (f *cmapFormat6) lookup(cp Codepoint) (GlyphID, bool) {
	if cp < uint32(f.firstCode) {
		return 0, false
	}
	idx := int(cp - uint32(f.firstCode))
	if idx*2+2 > len(f.glyphIDs) {
		return 0, false
	}
	gid := binary.BigEndian.Uint16(f.glyphIDs[idx*2:])
	if gid == 0 {
		return 0, false
	}
	return GlyphID(gid), true
}

// --- Format 10: trimmed array (u32 start) ---

type cmapFormat10 struct {
	startCharCode uint32
	glyphIDs      []byte
}

func parseCmapFormat10(data []byte, offset int) (*cmapFormat10, error) {
	r := NewReader(data)
	if !r.SetPos(offset + 12) {
		return nil, ErrInvalidOffset
	}
	startCharCode, ok := r.U32()
	if !ok {
		return nil, ErrInvalidTable
	}
	numChars, ok := r.U32()
	if !ok {
		return nil, ErrInvalidTable
	}
	b, ok := r.Bytes(int(numChars) * 2)
	if !ok {
		return nil, ErrInvalidTable
	}
	return &cmapFormat10{startCharCode: startCharCode, glyphIDs: b}, nil
}

func (f *cmapFormat10) lookup(cp Codepoint) (GlyphID, bool) {
	if cp < f.startCharCode {
		return 0, false
	}
	idx := int(cp - f.startCharCode)
	if idx*2+2 > len(f.glyphIDs) {
		return 0, false
	}
	gid := binary.BigEndian.Uint16(f.glyphIDs[idx*2:])
	return GlyphID(gid), true
}

// --- Formats 12/13: segmented coverage ---

type cmapGroup struct {
	startCharCode, endCharCode, startGlyphID uint32
}

type cmapFormat12or13 struct {
	groups   []cmapGroup
	isConst  bool // format 13: whole range maps to startGlyphID
}

func parseCmapFormat12or13(data []byte, offset int, isConst bool) (*cmapFormat12or13, error) {
	r := NewReader(data)
	if !r.SetPos(offset + 12) {
		return nil, ErrInvalidOffset
	}
	numGroups, ok := r.U32()
	if !ok {
		return nil, ErrInvalidTable
	}
	groups := make([]cmapGroup, 0, numGroups)
	for i := uint32(0); i < numGroups; i++ {
		start, ok1 := r.U32()
		end, ok2 := r.U32()
		gid, ok3 := r.U32()
		if !ok1 || !ok2 || !ok3 {
			return nil, ErrInvalidTable
		}
		groups = append(groups, cmapGroup{start, end, gid})
	}
	return &cmapFormat12or13{groups: groups, isConst: isConst}, nil
}

func (f *cmapFormat12or13) lookup(cp Codepoint) (GlyphID, bool) {
	lo, hi := 0, len(f.groups)
	for lo < hi {
		mid := (lo + hi) / 2
		g := f.groups[mid]
		switch {
		case cp < g.startCharCode:
			hi = mid
		case cp > g.endCharCode:
			lo = mid + 1
		default:
			if f.isConst {
				return GlyphID(g.startGlyphID), true
			}
			return GlyphID(g.startGlyphID + (cp - g.startCharCode)), true
		}
	}
	return 0, false
}

// --- Format 14: Unicode variation sequences ---

type cmapFormat14 struct {
	data       []byte
	varSelRecs []varSelectorRecord
}

type varSelectorRecord struct {
	varSelector                       uint32 // 24-bit
	defaultUVSOffset, nonDefaultUVSOffset uint32
}

func parseCmapFormat14(data []byte, offset int) (*cmapFormat14, error) {
	r := NewReader(data)
	if !r.SetPos(offset + 2) {
		return nil, ErrInvalidOffset
	}
	if _, ok := r.U32(); !ok { // length
		return nil, ErrInvalidTable
	}
	numVarSelectors, ok := r.U32()
	if !ok {
		return nil, ErrInvalidTable
	}
	f := &cmapFormat14{data: data}
	for i := uint32(0); i < numVarSelectors; i++ {
		vs, ok1 := r.U24()
		def, ok2 := r.U32()
		nondef, ok3 := r.U32()
		if !ok1 || !ok2 || !ok3 {
			return nil, ErrInvalidTable
		}
		f.varSelRecs = append(f.varSelRecs, varSelectorRecord{vs, def, nondef})
	}
	return f, nil
}

func (f *cmapFormat14) findSelector(vs Codepoint) (varSelectorRecord, bool) {
	lo, hi := 0, len(f.varSelRecs)
	for lo < hi {
		mid := (lo + hi) / 2
		v := f.varSelRecs[mid].varSelector
		switch {
		case vs < v:
			hi = mid
		case vs > v:
			lo = mid + 1
		default:
			return f.varSelRecs[mid], true
		}
	}
	return varSelectorRecord{}, false
}

func (f *cmapFormat14) lookup(cp, vs Codepoint) (GlyphID, uvsResult) {
	rec, ok := f.findSelector(vs)
	if !ok {
		return 0, uvsNotFound
	}

	if rec.nonDefaultUVSOffset != 0 {
		if gid, ok := f.lookupNonDefault(int(rec.nonDefaultUVSOffset), cp); ok {
			return gid, uvsExplicit
		}
	}
	if rec.defaultUVSOffset != 0 {
		if f.inDefaultUVS(int(rec.defaultUVSOffset), cp) {
			return 0, uvsUseDefault
		}
	}
	return 0, uvsNotFound
}

func (f *cmapFormat14) inDefaultUVS(offset int, cp Codepoint) bool {
	r := NewReader(f.data)
	if !r.SetPos(offset) {
		return false
	}
	numRanges, ok := r.U32()
	if !ok {
		return false
	}
	lo, hi := 0, int(numRanges)
	rangesStart := offset + 4
	for lo < hi {
		mid := (lo + hi) / 2
		recOff := rangesStart + mid*4
		start, ok := r.U24At(recOff) // helper defined below
		if !ok {
			return false
		}
		addlCount, ok := r.U8At(recOff + 3)
		if !ok {
			return false
		}
		end := start + uint32(addlCount)
		switch {
		case cp < start:
			hi = mid
		case cp > end:
			lo = mid + 1
		default:
			return true
		}
	}
	return false
}

func (f *cmapFormat14) lookupNonDefault(offset int, cp Codepoint) (GlyphID, bool) {
	r := NewReader(f.data)
	if !r.SetPos(offset) {
		return 0, false
	}
	numMappings, ok := r.U32()
	if !ok {
		return 0, false
	}
	lo, hi := 0, int(numMappings)
	mapStart := offset + 4
	for lo < hi {
		mid := (lo + hi) / 2
		recOff := mapStart + mid*5
		uv, ok := r.U24At(recOff)
		if !ok {
			return 0, false
		}
		switch {
		case cp < uv:
			hi = mid
		case cp > uv:
			lo = mid + 1
		default:
			gid, ok := r.U16At(recOff + 3)
			if !ok {
				return 0, false
			}
			return GlyphID(gid), true
		}
	}
	return 0, false
}

// U24At reads a big-endian 24-bit value at an absolute offset.
func (r *Reader) U24At(off int) (uint32, bool) {
	if off < 0 || off+3 > len(r.data) {
		return 0, false
	}
	return uint32(r.data[off])<<16 | uint32(r.data[off+1])<<8 | uint32(r.data[off+2]), true
}
