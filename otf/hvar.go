package otf

// MetricVariations wraps the common HVAR/VVAR layout: an Item Variation
// Store plus two optional DeltaSetIndexMaps (advances and side bearings),
// per §4.8.
type MetricVariations struct {
	store                          *ItemVariationStore
	advanceMap, sideBearingMap     *DeltaSetIndexMap
}

// ParseHVAR and ParseVVAR share this layout exactly; both tables use the
// same parser.
func ParseHVAR(data []byte) (*MetricVariations, error) { return parseMetricVariations(data) }
func ParseVVAR(data []byte) (*MetricVariations, error) { return parseMetricVariations(data) }

func parseMetricVariations(data []byte) (*MetricVariations, error) {
	r := NewReader(data)
	if _, ok := r.U16(); !ok { // majorVersion
		return nil, ErrInvalidTable
	}
	if _, ok := r.U16(); !ok { // minorVersion
		return nil, ErrInvalidTable
	}
	itemVariationStoreOffset, ok := r.U32()
	if !ok {
		return nil, ErrInvalidTable
	}
	advanceWidthMappingOffset, ok := r.U32()
	if !ok {
		return nil, ErrInvalidTable
	}
	lsbMappingOffset, ok := r.U32()
	if !ok {
		return nil, ErrInvalidTable
	}
	if _, ok := r.U32(); !ok { // rsbMappingOffset: unused by this package
		return nil, ErrInvalidTable
	}

	storeData, ok := Sub(data, int(itemVariationStoreOffset), len(data)-int(itemVariationStoreOffset))
	if !ok {
		return nil, ErrInvalidOffset
	}
	store, err := ParseItemVariationStore(storeData)
	if err != nil {
		return nil, err
	}

	mv := &MetricVariations{store: store}
	if advanceWidthMappingOffset != 0 {
		m, err := ParseDeltaSetIndexMap(data, int(advanceWidthMappingOffset))
		if err != nil {
			return nil, err
		}
		mv.advanceMap = m
	}
	if lsbMappingOffset != 0 {
		m, err := ParseDeltaSetIndexMap(data, int(lsbMappingOffset))
		if err != nil {
			return nil, err
		}
		mv.sideBearingMap = m
	}
	return mv, nil
}

// AdvanceDelta returns the variation delta for gid's advance width/height.
// Without an explicit advance mapping, the glyph ID itself addresses the
// store's single implicit outer region (outer=0, inner=gid), per §4.8.
func (mv *MetricVariations) AdvanceDelta(gid GlyphID, coords []NormalizedCoordinate) (float32, bool) {
	if mv == nil {
		return 0, false
	}
	outer, inner := 0, int(gid)
	if mv.advanceMap != nil {
		o, i, ok := mv.advanceMap.Map(int(gid))
		if !ok {
			return 0, false
		}
		outer, inner = o, i
	}
	return mv.store.DeltaAt(outer, inner, coords)
}

// SideBearingDelta returns the variation delta for gid's side bearing.
func (mv *MetricVariations) SideBearingDelta(gid GlyphID, coords []NormalizedCoordinate) (float32, bool) {
	if mv == nil || mv.sideBearingMap == nil {
		return 0, false
	}
	outer, inner, ok := mv.sideBearingMap.Map(int(gid))
	if !ok {
		return 0, false
	}
	return mv.store.DeltaAt(outer, inner, coords)
}

// MVAR applies font-wide metric variations (e.g. underlinePosition) keyed
// by a four-char value tag, per §4.8.
type MVAR struct {
	store        *ItemVariationStore
	valueRecords []mvarValueRecord
}

type mvarValueRecord struct {
	valueTag          Tag
	outerIndex, innerIndex uint16
}

func ParseMVAR(data []byte) (*MVAR, error) {
	r := NewReader(data)
	if _, ok := r.U16(); !ok { // majorVersion
		return nil, ErrInvalidTable
	}
	if _, ok := r.U16(); !ok { // minorVersion
		return nil, ErrInvalidTable
	}
	r.Advance(2) // reserved
	valueRecordSize, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	valueRecordCount, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	itemVariationStoreOffset, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}

	records := make([]mvarValueRecord, valueRecordCount)
	for i := range records {
		tag, ok1 := r.Tag()
		outer, ok2 := r.U16()
		inner, ok3 := r.U16()
		if !ok1 || !ok2 || !ok3 {
			return nil, ErrReadOutOfBounds
		}
		records[i] = mvarValueRecord{valueTag: tag, outerIndex: outer, innerIndex: inner}
		if valueRecordSize > 8 {
			r.Advance(int(valueRecordSize) - 8)
		}
	}

	if itemVariationStoreOffset == 0 {
		return &MVAR{valueRecords: records}, nil
	}
	storeData, ok := Sub(data, int(itemVariationStoreOffset), len(data)-int(itemVariationStoreOffset))
	if !ok {
		return nil, ErrInvalidOffset
	}
	store, err := ParseItemVariationStore(storeData)
	if err != nil {
		return nil, err
	}
	return &MVAR{store: store, valueRecords: records}, nil
}

// Delta returns the variation delta for a given MVAR value tag (e.g.
// MakeTag('u','n','d','o')), or false if this font does not vary it.
func (m *MVAR) Delta(tag Tag, coords []NormalizedCoordinate) (float32, bool) {
	if m == nil {
		return 0, false
	}
	for _, rec := range m.valueRecords {
		if rec.valueTag == tag {
			return m.store.DeltaAt(int(rec.outerIndex), int(rec.innerIndex), coords)
		}
	}
	return 0, false
}
