package otf

// sfntVersionTrueType and friends are the four magic values a table
// directory's sfntVersion field may carry (§4.2).
const (
	sfntVersionTrueType1 = 0x00010000
	sfntVersionTrueType2 = Tag(0x74727565) // 'true'
	sfntVersionOpenType  = Tag(0x4F54544F) // 'OTTO'
	ttcTag               = Tag(0x74746366) // 'ttcf'
)

type tableRecord struct {
	offset, length int
}

// Face is a parsed, read-only view over one subfont's tables. It holds no
// mutable state except the variation coordinates set by SetVariation;
// every query method is safe to call concurrently with other queries, but
// concurrent SetVariation calls need external synchronization, the same
// as any other shared mutable Go value (§5/§6).
type Face struct {
	data      []byte
	tables    map[Tag]tableRecord
	numGlyphs int

	head *Head
	maxp *Maxp
	hhea *Hhea
	vhea *Vhea
	hmtx *Hmtx
	vmtx *Vmtx
	os2  *OS2
	name *NameTable
	post *Post
	kern *Kern

	cmap *Cmap
	glyf *Glyf
	cff1 *CFF1
	cff2 *CFF2

	fvar *Fvar
	avar *Avar
	hvar *MetricVariations
	vvar *MetricVariations
	mvar *MVAR

	gdef *GDEF
	colr *COLR
	cpal *CPAL
	sbix *Sbix
	cblc *CBLC
	cbdt *CBDT
	svg  *SVG

	coords []NormalizedCoordinate
}

// ParseFace parses a single subfont from an SFNT/OpenType/TrueType
// Collection buffer. collectionIndex is ignored for non-TTC data.
func ParseFace(data []byte, collectionIndex int) (*Face, error) {
	r := NewReader(data)
	tag, ok := r.Tag()
	if !ok {
		return nil, ErrInvalidFont
	}

	tableDirOffset := 0
	if tag == ttcTag {
		if _, ok := r.U32(); !ok { // ttcVersion
			return nil, ErrInvalidFont
		}
		numFonts, ok := r.U32()
		if !ok || collectionIndex < 0 || uint32(collectionIndex) >= numFonts {
			return nil, ErrSubfontIndex
		}
		if !r.Advance(collectionIndex * 4) {
			return nil, ErrSubfontIndex
		}
		off, ok := r.U32()
		if !ok {
			return nil, ErrInvalidFont
		}
		tableDirOffset = int(off)
		if !r.SetPos(tableDirOffset) {
			return nil, ErrInvalidFont
		}
		tag, ok = r.Tag()
		if !ok {
			return nil, ErrInvalidFont
		}
	}

	switch Tag(tag) {
	case Tag(sfntVersionTrueType1), sfntVersionTrueType2, sfntVersionOpenType:
	default:
		return nil, ErrInvalidFont
	}

	numTables, ok := r.U16()
	if !ok {
		return nil, ErrInvalidFont
	}
	r.Advance(6) // searchRange, entrySelector, rangeShift

	tables := make(map[Tag]tableRecord, numTables)
	for i := 0; i < int(numTables); i++ {
		recTag, ok1 := r.Tag()
		_, ok2 := r.U32() // checksum: not verified (read-only consumer, §4.2)
		offset, ok3 := r.U32()
		length, ok4 := r.U32()
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil, ErrInvalidTable
		}
		if _, exists := tables[recTag]; exists {
			continue // first occurrence wins on a duplicate tag
		}
		tables[recTag] = tableRecord{offset: int(offset), length: int(length)}
	}

	f := &Face{data: data, tables: tables}

	headData, ok := f.table(TagHead)
	if !ok {
		return nil, ErrMissingMandatory
	}
	head, err := ParseHead(headData)
	if err != nil {
		return nil, err
	}
	if head.UnitsPerEm < 16 || head.UnitsPerEm > 16384 {
		return nil, ErrUnitsPerEmRange
	}
	f.head = head

	maxpData, ok := f.table(TagMaxp)
	if !ok {
		return nil, ErrMissingMandatory
	}
	maxp, err := ParseMaxp(maxpData)
	if err != nil {
		return nil, err
	}
	if maxp.NumGlyphs == 0 {
		return nil, ErrInvalidTable
	}
	f.maxp = maxp
	f.numGlyphs = int(maxp.NumGlyphs)

	hheaData, ok := f.table(TagHhea)
	if !ok {
		return nil, ErrMissingMandatory
	}
	hhea, err := ParseHhea(hheaData)
	if err != nil {
		return nil, err
	}
	f.hhea = hhea

	if hmtxData, ok := f.table(TagHmtx); ok {
		if hmtx, err := ParseHmtx(hmtxData, int(hhea.NumberOfHMetrics), f.numGlyphs); err == nil {
			f.hmtx = hmtx
		}
	}

	if vheaData, ok := f.table(TagVhea); ok {
		if vhea, err := ParseVhea(vheaData); err == nil {
			f.vhea = vhea
			if vmtxData, ok := f.table(TagVmtx); ok {
				if vmtx, err := ParseVmtx(vmtxData, int(vhea.NumOfLongVerMetrics), f.numGlyphs); err == nil {
					f.vmtx = vmtx
				}
			}
		}
	}

	if cmapData, ok := f.table(TagCmap); ok {
		if cmap, err := ParseCmap(cmapData); err == nil {
			f.cmap = cmap
		}
	}

	if os2Data, ok := f.table(TagOS2); ok {
		if os2, err := ParseOS2(os2Data); err == nil {
			f.os2 = os2
		}
	}
	if nameData, ok := f.table(TagName); ok {
		if name, err := ParseName(nameData); err == nil {
			f.name = name
		}
	}
	if postData, ok := f.table(TagPost); ok {
		if post, err := ParsePost(postData); err == nil {
			f.post = post
		}
	}
	if kernData, ok := f.table(TagKern); ok {
		if kern, err := ParseKern(kernData); err == nil {
			f.kern = kern
		}
	}
	if gdefData, ok := f.table(TagGDEF); ok {
		if gdef, err := ParseGDEF(gdefData); err == nil {
			f.gdef = gdef
		}
	}

	glyfData, hasGlyf := f.table(TagGlyf)
	locaData, hasLoca := f.table(TagLoca)
	if hasGlyf && hasLoca {
		loca, err := ParseLoca(locaData, f.numGlyphs, head.IndexToLocFormat)
		if err == nil {
			f.glyf = ParseGlyf(glyfData, loca)
		}
	}

	if cffData, ok := f.table(TagCFF); ok {
		if cff1, err := ParseCFF1(cffData); err == nil {
			f.cff1 = cff1
		}
	}
	if cff2Data, ok := f.table(TagCFF2); ok {
		if cff2, err := ParseCFF2(cff2Data); err == nil {
			f.cff2 = cff2
		}
	}

	if f.glyf == nil && f.cff1 == nil && f.cff2 == nil {
		return nil, ErrMissingMandatory
	}

	if fvarData, ok := f.table(TagFvar); ok {
		if fvar, err := ParseFvar(fvarData); err == nil {
			f.fvar = fvar
			f.coords = make([]NormalizedCoordinate, len(fvar.Axes()))
		}
	}
	if avarData, ok := f.table(TagAvar); ok {
		if avar, err := ParseAvar(avarData); err == nil {
			f.avar = avar
		}
	}
	if hvarData, ok := f.table(TagHVAR); ok {
		if hvar, err := ParseHVAR(hvarData); err == nil {
			f.hvar = hvar
		}
	}
	if vvarData, ok := f.table(TagVVAR); ok {
		if vvar, err := ParseVVAR(vvarData); err == nil {
			f.vvar = vvar
		}
	}
	if mvarData, ok := f.table(TagMVAR); ok {
		if mvar, err := ParseMVAR(mvarData); err == nil {
			f.mvar = mvar
		}
	}

	if colrData, ok := f.table(TagCOLR); ok {
		if colr, err := ParseCOLR(colrData); err == nil {
			f.colr = colr
		}
	}
	if cpalData, ok := f.table(TagCPAL); ok {
		if cpal, err := ParseCPAL(cpalData); err == nil {
			f.cpal = cpal
		}
	}
	if sbixData, ok := f.table(TagSbix); ok {
		if sbix, err := ParseSbix(sbixData, f.numGlyphs); err == nil {
			f.sbix = sbix
		}
	}
	if cblcData, ok := f.table(TagCBLC); ok {
		if cblc, err := ParseCBLC(cblcData); err == nil {
			f.cblc = cblc
			if cbdtData, ok := f.table(TagCBDT); ok {
				f.cbdt = ParseCBDT(cbdtData, cblc)
			}
		}
	}
	if svgData, ok := f.table(TagSVG); ok {
		if svg, err := ParseSVG(svgData); err == nil {
			f.svg = svg
		}
	}

	return f, nil
}

func (f *Face) table(tag Tag) ([]byte, bool) {
	rec, ok := f.tables[tag]
	if !ok {
		return nil, false
	}
	return Sub(f.data, rec.offset, rec.length)
}

// NumGlyphs returns the font's glyph count (from maxp).
func (f *Face) NumGlyphs() int { return f.numGlyphs }

// UnitsPerEm returns the font's design grid resolution.
func (f *Face) UnitsPerEm() uint16 { return f.head.UnitsPerEm }

// IsVariable reports whether the font carries an fvar table.
func (f *Face) IsVariable() bool { return f.fvar != nil }

// VariationAxes returns the font's design axes, or nil if not variable.
func (f *Face) VariationAxes() []VariationAxis {
	if f.fvar == nil {
		return nil
	}
	return f.fvar.Axes()
}

// SetVariation sets one axis's current value, in user-space units,
// normalizing through fvar and (if present) avar. It reports false if the
// font is not variable or the tag names no axis; the font's prior
// variation state is left unchanged in that case.
func (f *Face) SetVariation(tag Tag, value float32) bool {
	if f.fvar == nil {
		return false
	}
	idx, ok := f.fvar.AxisIndex(tag)
	if !ok {
		return false
	}
	norm := f.fvar.Normalize(idx, value)
	if f.avar != nil {
		norm = f.avar.Remap(idx, norm)
	}
	f.coords[idx] = norm
	return true
}

// VariationCoords returns the font's current normalized variation
// coordinates (one per axis, default all-zero).
func (f *Face) VariationCoords() []NormalizedCoordinate { return f.coords }

// GlyphIndex resolves a codepoint through the selected cmap subtable.
func (f *Face) GlyphIndex(cp Codepoint) (GlyphID, bool) { return f.cmap.GlyphIndex(cp) }

// GlyphVariationIndex resolves a (codepoint, variation selector) pair
// through cmap's format-14 subtable, falling back to the default cmap.
func (f *Face) GlyphVariationIndex(cp, vs Codepoint) (GlyphID, bool) {
	return f.cmap.GlyphVariationIndex(cp, vs)
}

// OutlineGlyph decodes gid's outline into sink, dispatching to glyf,
// CFF1, or CFF2 depending on which the font carries. CFF2 outlines apply
// the font's current variation coordinates.
func (f *Face) OutlineGlyph(gid GlyphID, sink OutlineBuilder) (Rect, error) {
	if int(gid) >= f.numGlyphs {
		return Rect{}, glyphErr("outline_glyph", ErrInvalidOffset)
	}
	switch {
	case f.glyf != nil:
		return f.glyf.OutlineGlyph(gid, sink)
	case f.cff2 != nil:
		return f.cff2.OutlineGlyph(gid, f.coords, sink)
	case f.cff1 != nil:
		return f.cff1.OutlineGlyph(gid, sink)
	default:
		return Rect{}, glyphErr("outline_glyph", ErrMissingMandatory)
	}
}

// GlyphHorAdvance returns gid's horizontal advance width, including any
// HVAR variation delta at the font's current variation coordinates.
func (f *Face) GlyphHorAdvance(gid GlyphID) (uint16, bool) {
	if f.hmtx == nil {
		return 0, false
	}
	adv, ok := f.hmtx.Advance(gid)
	if !ok {
		return 0, false
	}
	if f.hvar != nil {
		if d, ok := f.hvar.AdvanceDelta(gid, f.coords); ok {
			adv = uint16(clampI(int(float32(adv)+d), 0, 0xFFFF))
		}
	}
	return adv, true
}

// GlyphHorSideBearing returns gid's left side bearing, including any
// HVAR variation delta.
func (f *Face) GlyphHorSideBearing(gid GlyphID) (int16, bool) {
	if f.hmtx == nil {
		return 0, false
	}
	lsb, ok := f.hmtx.SideBearing(gid)
	if !ok {
		return 0, false
	}
	if f.hvar != nil {
		if d, ok := f.hvar.SideBearingDelta(gid, f.coords); ok {
			lsb = int16(clampI(int(float32(lsb)+d), -32768, 32767))
		}
	}
	return lsb, true
}

// GlyphVerAdvance returns gid's vertical advance, including any VVAR
// variation delta.
func (f *Face) GlyphVerAdvance(gid GlyphID) (uint16, bool) {
	if f.vmtx == nil {
		return 0, false
	}
	adv, ok := f.vmtx.Advance(gid)
	if !ok {
		return 0, false
	}
	if f.vvar != nil {
		if d, ok := f.vvar.AdvanceDelta(gid, f.coords); ok {
			adv = uint16(clampI(int(float32(adv)+d), 0, 0xFFFF))
		}
	}
	return adv, true
}

// HorAdvanceVariation returns the raw HVAR delta for gid at explicit
// coords, independent of the font's currently committed variation state
// (§6's lower-level probe, distinct from GlyphHorAdvance).
func (f *Face) HorAdvanceVariation(gid GlyphID, coords []NormalizedCoordinate) (float32, bool) {
	if f.hvar == nil {
		return 0, false
	}
	return f.hvar.AdvanceDelta(gid, coords)
}

// MetricsVariation returns the raw MVAR delta for a value tag at explicit
// coords.
func (f *Face) MetricsVariation(tag Tag, coords []NormalizedCoordinate) (float32, bool) {
	if f.mvar == nil {
		return 0, false
	}
	return f.mvar.Delta(tag, coords)
}

// GlyphName returns gid's PostScript name, if post v2 carries one.
func (f *Face) GlyphName(gid GlyphID) (string, bool) { return f.post.GlyphName(gid) }

// Kerning returns the format-0 kerning adjustment for an ordered glyph pair.
func (f *Face) Kerning(left, right GlyphID) (int16, bool) { return f.kern.Lookup(left, right) }

// Name returns the decoded string for a name table record ID.
func (f *Face) Name(nameID uint16) (string, bool) {
	if f.name == nil {
		return "", false
	}
	return f.name.Get(nameID)
}

// GlyphClass returns gid's GDEF glyph class.
func (f *Face) GlyphClass(gid GlyphID) GlyphClass { return f.gdef.GlyphClass(gid) }

// ColorGlyphLayers returns the COLR v0 layer stack for baseGID.
func (f *Face) ColorGlyphLayers(baseGID GlyphID) ([]Layer, bool) { return f.colr.Layers(baseGID) }

// Palette returns a CPAL palette by index.
func (f *Face) Palette(index int) ([]Color, bool) { return f.cpal.Palette(index) }

// GlyphRasterImage returns gid's best-fit bitmap at ppem, preferring
// sbix, then CBLC/CBDT.
func (f *Face) GlyphRasterImage(gid GlyphID, ppem uint16) (BitmapGlyph, bool) {
	if f.sbix != nil {
		if g, ok := f.sbix.Glyph(gid, ppem); ok {
			return g, true
		}
	}
	if f.cbdt != nil {
		return f.cbdt.Glyph(gid)
	}
	return BitmapGlyph{}, false
}

// GlyphSVGDocument returns gid's raw SVG document bytes, if any.
func (f *Face) GlyphSVGDocument(gid GlyphID) ([]byte, bool) {
	if f.svg == nil {
		return nil, false
	}
	return f.svg.Document(gid)
}
