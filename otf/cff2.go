package otf

// CFF2 parses a CFF2 table and interprets its Type-2 charstrings, which
// differ from CFF1's in several ways (§4.7): a 513-entry argument stack,
// no width byte, no endchar/SEAC, and two variation-aware operators
// (vsindex, blend) that read deltas from an embedded Item Variation
// Store.
type CFF2 struct {
	charStrings cffIndex
	globalSubrs cffIndex
	topPrivate  cff2Private
	fdSelect    cffFDSelect
	fdPrivates  []cff2Private
	isCID       bool
	varStore    *ItemVariationStore
}

type cff2Private struct {
	localSubrs cffIndex
}

// ParseCFF2 parses the header, Top DICT, Global Subr INDEX, CharStrings,
// FDArray/FDSelect, and the embedded Variation Store (if present).
func ParseCFF2(data []byte) (*CFF2, error) {
	r := NewReader(data)
	if _, ok := r.U8(); !ok { // major
		return nil, ErrInvalidTable
	}
	if _, ok := r.U8(); !ok { // minor
		return nil, ErrInvalidTable
	}
	hdrSize, ok := r.U8()
	if !ok {
		return nil, ErrInvalidTable
	}
	topDictLen, ok := r.U16() // topDictLength
	if !ok {
		return nil, ErrInvalidTable
	}
	if !r.SetPos(int(hdrSize)) {
		return nil, ErrInvalidTable
	}

	// CFF2's Top DICT is a bare DICT (no surrounding INDEX): its length
	// was read from the header above, so parse a DICT from the
	// known-length span immediately following the header.
	topDictData, ok := Sub(data, int(hdrSize), int(topDictLen))
	if !ok {
		return nil, ErrInvalidOffset
	}
	topDict, err := parseCFFDict(topDictData)
	if err != nil {
		return nil, err
	}
	if !r.SetPos(int(hdrSize) + int(topDictLen)) {
		return nil, ErrInvalidTable
	}

	globalSubrs, err := parseCFF2Index(r)
	if err != nil {
		return nil, err
	}

	csOffsets, ok := topDict.getInts(dictOpCharstrings)
	if !ok || len(csOffsets) != 1 {
		return nil, ErrMissingMandatory
	}
	csr := NewReader(data)
	if !csr.SetPos(csOffsets[0]) {
		return nil, ErrInvalidOffset
	}
	charStrings, err := parseCFF2Index(csr)
	if err != nil {
		return nil, err
	}

	c := &CFF2{charStrings: charStrings, globalSubrs: globalSubrs}

	if fdaOff, ok := topDict.getInts(dictOpFDArray); ok && len(fdaOff) == 1 {
		far := NewReader(data)
		if !far.SetPos(fdaOff[0]) {
			return nil, ErrInvalidOffset
		}
		fdArrayIndex, err := parseCFF2Index(far)
		if err != nil {
			return nil, err
		}
		c.isCID = fdArrayIndex.Len() > 1
		c.fdPrivates = make([]cff2Private, fdArrayIndex.Len())
		for i := 0; i < fdArrayIndex.Len(); i++ {
			fdDictData, ok := fdArrayIndex.Get(i)
			if !ok {
				return nil, ErrInvalidTable
			}
			fdDict, err := parseCFFDict(fdDictData)
			if err != nil {
				return nil, err
			}
			priv, err := parseCFF2PrivateDict(data, fdDict)
			if err != nil {
				return nil, err
			}
			c.fdPrivates[i] = priv
		}

		if fdsOff, ok := topDict.getInts(dictOpFDSelect); ok && len(fdsOff) == 1 {
			fdSelect, err := parseCFFFDSelect(data, fdsOff[0], charStrings.Len())
			if err != nil {
				return nil, err
			}
			c.fdSelect = fdSelect
		}
	}

	if vsOff, ok := topDict.getInts(dictOpVstore); ok && len(vsOff) == 1 {
		// VariationStore data begins with a u16 length prefix (per the
		// Vstore offset's own wrapping structure) before the IVS itself.
		vr := NewReader(data)
		if !vr.SetPos(vsOff[0]) {
			return nil, ErrInvalidOffset
		}
		if _, ok := vr.U16(); !ok { // length
			return nil, ErrInvalidTable
		}
		storeData, ok := Sub(data, vr.Pos(), len(data)-vr.Pos())
		if !ok {
			return nil, ErrInvalidOffset
		}
		store, err := ParseItemVariationStore(storeData)
		if err != nil {
			return nil, err
		}
		c.varStore = store
	}

	return c, nil
}

func parseCFF2PrivateDict(data []byte, dict cffDict) (cff2Private, error) {
	privInfo, ok := dict.getInts(dictOpPrivate)
	if !ok || len(privInfo) != 2 {
		return cff2Private{}, nil
	}
	size, offset := privInfo[0], privInfo[1]
	privData, ok := Sub(data, offset, size)
	if !ok {
		return cff2Private{}, ErrInvalidOffset
	}
	privDict, err := parseCFFDict(privData)
	if err != nil {
		return cff2Private{}, err
	}
	priv := cff2Private{}
	if subrsOff, ok := privDict[dictOpSubrs]; ok && len(subrsOff) == 1 {
		sr := NewReader(data)
		if !sr.SetPos(offset + int(subrsOff[0])) {
			return cff2Private{}, ErrInvalidOffset
		}
		localSubrs, err := parseCFF2Index(sr)
		if err != nil {
			return cff2Private{}, err
		}
		priv.localSubrs = localSubrs
	}
	return priv, nil
}

func (c *CFF2) privateFor(gid GlyphID) cff2Private {
	if len(c.fdPrivates) == 0 {
		return c.topPrivate
	}
	fd, ok := c.fdSelect.fdForGID(gid)
	if !ok || int(fd) >= len(c.fdPrivates) {
		return cff2Private{}
	}
	return c.fdPrivates[fd]
}

// OutlineGlyph decodes gid's CFF2 Type-2 charstring into sink at the
// given normalized variation coordinates (an empty slice means "default
// instance", matching every region scalar evaluating to a pass-through).
func (c *CFF2) OutlineGlyph(gid GlyphID, coords []NormalizedCoordinate, sink OutlineBuilder) (Rect, error) {
	cs, ok := c.charStrings.Get(int(gid))
	if !ok {
		return Rect{}, glyphErr("outline_glyph", ErrInvalidOffset)
	}
	priv := c.privateFor(gid)
	bb := newBoundsBuilder(sink)

	interp := &cff2Interp{
		sink: bb, cff: c, priv: priv, coords: coords,
		globalBias: subrBias(c.globalSubrs.Len()),
		localBias:  subrBias(priv.localSubrs.Len()),
		vsIndex:    0,
	}
	if err := interp.run(cs, 0); err != nil {
		return Rect{}, err
	}
	if interp.open {
		interp.sink.Close()
	}
	rect, ok := bb.bounds.toRect()
	if !ok {
		return Rect{}, ErrZeroBBox
	}
	return rect, nil
}

const cff2MaxArgsStack = 513
const cff2MaxDepth = 10
const cff2MaxBlendRegions = 64

type cff2Interp struct {
	stack      [cff2MaxArgsStack]float64
	sp         int
	x, y       float32
	nStems     int
	open       bool
	sink       *boundsBuilder
	cff        *CFF2
	priv       cff2Private
	coords     []NormalizedCoordinate
	globalBias int
	localBias  int
	vsIndex    int
	regionScalars []float32 // cached per vsIndex, recomputed on vsindex change
	vsIndexSet    bool
}

func (ip *cff2Interp) push(v float64) error {
	if ip.sp >= cff2MaxArgsStack {
		return ErrArgumentsStackLimitReached
	}
	ip.stack[ip.sp] = v
	ip.sp++
	return nil
}

func (ip *cff2Interp) clear() { ip.sp = 0 }

func (ip *cff2Interp) moveTo(x, y float32) {
	if ip.open {
		ip.sink.Close()
	}
	ip.sink.MoveTo(x, y)
	ip.open = true
	ip.x, ip.y = x, y
}

func (ip *cff2Interp) lineTo(x, y float32) {
	ip.sink.LineTo(x, y)
	ip.x, ip.y = x, y
}

func (ip *cff2Interp) curveTo(x1, y1, x2, y2, x, y float32) {
	ip.sink.CurveTo(x1, y1, x2, y2, x, y)
	ip.x, ip.y = x, y
}

func (ip *cff2Interp) run(charstring []byte, depth int) error {
	if depth > cff2MaxDepth {
		return glyphErr("outline_glyph", ErrNestingLimitReached)
	}
	r := NewReader(charstring)
	for !r.AtEnd() {
		b0, ok := r.U8()
		if !ok {
			return glyphErr("outline_glyph", ErrReadOutOfBounds)
		}

		if b0 >= 32 || b0 == 28 {
			v, err := readCFF1Number(r, b0)
			if err != nil {
				return glyphErr("outline_glyph", err)
			}
			if err := ip.push(v); err != nil {
				return glyphErr("outline_glyph", err)
			}
			continue
		}

		switch b0 {
		case 1, 3, 18, 23: // hstem, vstem, hstemhm, vstemhm
			ip.nStems += ip.sp / 2
			ip.clear()

		case 19, 20: // hintmask, cntrmask
			ip.nStems += ip.sp / 2
			ip.clear()
			nBytes := (ip.nStems + 7) / 8
			if !r.Advance(nBytes) {
				return glyphErr("outline_glyph", ErrReadOutOfBounds)
			}

		case 21: // rmoveto
			if ip.sp < 2 {
				return glyphErr("outline_glyph", ErrInvalidArgumentsStackLength)
			}
			ip.moveTo(ip.x+float32(ip.stack[0]), ip.y+float32(ip.stack[1]))
			ip.clear()

		case 22: // hmoveto
			if ip.sp < 1 {
				return glyphErr("outline_glyph", ErrInvalidArgumentsStackLength)
			}
			ip.moveTo(ip.x+float32(ip.stack[0]), ip.y)
			ip.clear()

		case 4: // vmoveto
			if ip.sp < 1 {
				return glyphErr("outline_glyph", ErrInvalidArgumentsStackLength)
			}
			ip.moveTo(ip.x, ip.y+float32(ip.stack[0]))
			ip.clear()

		case 5: // rlineto
			args := ip.stack[:ip.sp]
			for i := 0; i+1 < len(args); i += 2 {
				ip.lineTo(ip.x+float32(args[i]), ip.y+float32(args[i+1]))
			}
			ip.clear()

		case 6: // hlineto
			ip.altLineTo(true)
			ip.clear()

		case 7: // vlineto
			ip.altLineTo(false)
			ip.clear()

		case 8: // rrcurveto
			ip.rrcurveto(ip.stack[:ip.sp])
			ip.clear()

		case 24: // rcurveline
			args := ip.stack[:ip.sp]
			n := (len(args) - 2) / 6 * 6
			if n < 0 {
				n = 0
			}
			ip.rrcurveto(args[:n])
			if len(args)-n >= 2 {
				rest := args[n:]
				ip.lineTo(ip.x+float32(rest[0]), ip.y+float32(rest[1]))
			}
			ip.clear()

		case 25: // rlinecurve
			args := ip.stack[:ip.sp]
			n := (len(args) - 6) / 2 * 2
			if n < 0 {
				n = 0
			}
			for i := 0; i+1 < n; i += 2 {
				ip.lineTo(ip.x+float32(args[i]), ip.y+float32(args[i+1]))
			}
			if len(args)-n >= 6 {
				ip.rrcurveto(args[n:])
			}
			ip.clear()

		case 26: // vvcurveto
			ip.vvcurveto(ip.stack[:ip.sp])
			ip.clear()

		case 27: // hhcurveto
			ip.hhcurveto(ip.stack[:ip.sp])
			ip.clear()

		case 30: // vhcurveto
			ip.vhOrHvCurveto(ip.stack[:ip.sp], false)
			ip.clear()

		case 31: // hvcurveto
			ip.vhOrHvCurveto(ip.stack[:ip.sp], true)
			ip.clear()

		case 10: // callsubr
			if ip.sp == 0 {
				return glyphErr("outline_glyph", ErrInvalidArgumentsStackLength)
			}
			ip.sp--
			idx := int(ip.stack[ip.sp]) + ip.localBias
			sub, ok := ip.priv.localSubrs.Get(idx)
			if !ok {
				return glyphErr("outline_glyph", ErrInvalidSubroutineIndex)
			}
			if err := ip.run(sub, depth+1); err != nil {
				return err
			}

		case 29: // callgsubr
			if ip.sp == 0 {
				return glyphErr("outline_glyph", ErrInvalidArgumentsStackLength)
			}
			ip.sp--
			idx := int(ip.stack[ip.sp]) + ip.globalBias
			sub, ok := ip.cff.globalSubrs.Get(idx)
			if !ok {
				return glyphErr("outline_glyph", ErrInvalidSubroutineIndex)
			}
			if err := ip.run(sub, depth+1); err != nil {
				return err
			}

		case 11: // return
			return nil

		case 12: // escape
			b1, ok := r.U8()
			if !ok {
				return glyphErr("outline_glyph", ErrReadOutOfBounds)
			}
			if err := ip.runEscape(b1); err != nil {
				return glyphErr("outline_glyph", err)
			}

		default:
			return glyphErr("outline_glyph", ErrInvalidOperator)
		}
	}
	return nil
}

func (ip *cff2Interp) altLineTo(startHorizontal bool) {
	args := ip.stack[:ip.sp]
	horiz := startHorizontal
	for _, v := range args {
		if horiz {
			ip.lineTo(ip.x+float32(v), ip.y)
		} else {
			ip.lineTo(ip.x, ip.y+float32(v))
		}
		horiz = !horiz
	}
}

func (ip *cff2Interp) rrcurveto(args []float64) {
	for i := 0; i+5 < len(args); i += 6 {
		x1 := ip.x + float32(args[i])
		y1 := ip.y + float32(args[i+1])
		x2 := x1 + float32(args[i+2])
		y2 := y1 + float32(args[i+3])
		x := x2 + float32(args[i+4])
		y := y2 + float32(args[i+5])
		ip.curveTo(x1, y1, x2, y2, x, y)
	}
}

func (ip *cff2Interp) vvcurveto(args []float64) {
	i := 0
	var dx1 float32
	if len(args)%4 == 1 {
		dx1 = float32(args[0])
		i = 1
	}
	for ; i+3 < len(args); i += 4 {
		x1 := ip.x + dx1
		y1 := ip.y + float32(args[i])
		x2 := x1 + float32(args[i+1])
		y2 := y1 + float32(args[i+2])
		x := x2
		y := y2 + float32(args[i+3])
		ip.curveTo(x1, y1, x2, y2, x, y)
		dx1 = 0
	}
}

func (ip *cff2Interp) hhcurveto(args []float64) {
	i := 0
	var dy1 float32
	if len(args)%4 == 1 {
		dy1 = float32(args[0])
		i = 1
	}
	for ; i+3 < len(args); i += 4 {
		x1 := ip.x + float32(args[i])
		y1 := ip.y + dy1
		x2 := x1 + float32(args[i+1])
		y2 := y1 + float32(args[i+2])
		x := x2 + float32(args[i+3])
		y := y2
		ip.curveTo(x1, y1, x2, y2, x, y)
		dy1 = 0
	}
}

func (ip *cff2Interp) vhOrHvCurveto(args []float64, startHoriz bool) {
	n := len(args)
	numGroups := n / 4
	hasExtra := n%4 == 1
	horiz := startHoriz
	for g := 0; g < numGroups; g++ {
		i := g * 4
		isLastGroup := g == numGroups-1
		var x1, y1, x2, y2, x, y float32
		if horiz {
			x1 = ip.x + float32(args[i])
			y1 = ip.y
			x2 = x1 + float32(args[i+1])
			y2 = y1 + float32(args[i+2])
			y = y2 + float32(args[i+3])
			x = x2
			if isLastGroup && hasExtra {
				x = x2 + float32(args[i+4])
			}
		} else {
			x1 = ip.x
			y1 = ip.y + float32(args[i])
			x2 = x1 + float32(args[i+1])
			y2 = y1 + float32(args[i+2])
			x = x2 + float32(args[i+3])
			y = y2
			if isLastGroup && hasExtra {
				y = y2 + float32(args[i+4])
			}
		}
		ip.curveTo(x1, y1, x2, y2, x, y)
		horiz = !horiz
	}
}

func (ip *cff2Interp) runEscape(op uint8) error {
	switch op {
	case 34, 35, 36, 37: // hflex, flex, hflex1, flex1: identical geometry to CFF1
		return ip.runFlex(op)
	case 15: // vsindex (CFF2 repurposes this escape slot; CFF1's "eq" has no CFF2 equivalent)
		return ip.setVsIndex()
	case 16: // blend
		return ip.runBlend()
	case 3, 4, 5, 9, 10, 11, 12, 14, 18, 22, 23, 24, 26, 27, 28, 29, 30:
		return ip.runArith(op)
	default:
		return ErrUnsupportedOperator
	}
}

func (ip *cff2Interp) runFlex(op uint8) error {
	a := ip.stack[:ip.sp]
	switch op {
	case 34: // hflex
		if len(a) < 7 {
			return ErrInvalidArgumentsStackLength
		}
		y0 := ip.y
		x1 := ip.x + float32(a[0])
		y1 := ip.y
		x2 := x1 + float32(a[1])
		y2 := y1 + float32(a[2])
		x3 := x2 + float32(a[3])
		y3 := y2
		ip.curveTo(x1, y1, x2, y2, x3, y3)
		x4 := x3 + float32(a[4])
		y4 := y3
		x5 := x4 + float32(a[5])
		y5 := y0
		x6 := x5 + float32(a[6])
		y6 := y0
		ip.curveTo(x4, y4, x5, y5, x6, y6)
	case 35: // flex
		if len(a) < 13 {
			return ErrInvalidArgumentsStackLength
		}
		x1 := ip.x + float32(a[0])
		y1 := ip.y + float32(a[1])
		x2 := x1 + float32(a[2])
		y2 := y1 + float32(a[3])
		x3 := x2 + float32(a[4])
		y3 := y2 + float32(a[5])
		ip.curveTo(x1, y1, x2, y2, x3, y3)
		x4 := x3 + float32(a[6])
		y4 := y3 + float32(a[7])
		x5 := x4 + float32(a[8])
		y5 := y4 + float32(a[9])
		x6 := x5 + float32(a[10])
		y6 := y5 + float32(a[11])
		ip.curveTo(x4, y4, x5, y5, x6, y6)
	case 36: // hflex1
		if len(a) < 9 {
			return ErrInvalidArgumentsStackLength
		}
		y0 := ip.y
		x1 := ip.x + float32(a[0])
		y1 := ip.y + float32(a[1])
		x2 := x1 + float32(a[2])
		y2 := y1 + float32(a[3])
		x3 := x2 + float32(a[4])
		y3 := y2
		ip.curveTo(x1, y1, x2, y2, x3, y3)
		x4 := x3 + float32(a[5])
		y4 := y3
		x5 := x4 + float32(a[6])
		y5 := y4 + float32(a[7])
		x6 := x5 + float32(a[8])
		y6 := y0
		ip.curveTo(x4, y4, x5, y5, x6, y6)
	case 37: // flex1
		if len(a) < 11 {
			return ErrInvalidArgumentsStackLength
		}
		startX, startY := ip.x, ip.y
		x1 := ip.x + float32(a[0])
		y1 := ip.y + float32(a[1])
		x2 := x1 + float32(a[2])
		y2 := y1 + float32(a[3])
		x3 := x2 + float32(a[4])
		y3 := y2 + float32(a[5])
		ip.curveTo(x1, y1, x2, y2, x3, y3)
		x4 := x3 + float32(a[6])
		y4 := y3 + float32(a[7])
		x5 := x4 + float32(a[8])
		y5 := y4 + float32(a[9])
		dx := x5 - startX
		dy := y5 - startY
		var x6, y6 float32
		if absF32(dx) > absF32(dy) {
			x6 = x5 + float32(a[10])
			y6 = startY
		} else {
			x6 = startX
			y6 = y5 + float32(a[10])
		}
		ip.curveTo(x4, y4, x5, y5, x6, y6)
	}
	ip.clear()
	return nil
}

func (ip *cff2Interp) runArith(op uint8) error {
	pop := func() float64 {
		if ip.sp <= 0 {
			return 0
		}
		ip.sp--
		return ip.stack[ip.sp]
	}
	switch op {
	case 3:
		b, a := pop(), pop()
		ip.push(boolToF(a != 0 && b != 0))
	case 4:
		b, a := pop(), pop()
		ip.push(boolToF(a != 0 || b != 0))
	case 5:
		a := pop()
		ip.push(boolToF(a == 0))
	case 9:
		a := pop()
		if a < 0 {
			a = -a
		}
		ip.push(a)
	case 10:
		b, a := pop(), pop()
		ip.push(a + b)
	case 11:
		b, a := pop(), pop()
		ip.push(a - b)
	case 12:
		b, a := pop(), pop()
		if b == 0 {
			ip.push(0)
		} else {
			ip.push(a / b)
		}
	case 14:
		a := pop()
		ip.push(-a)
	case 15:
		b, a := pop(), pop()
		ip.push(boolToF(a == b))
	case 18:
		pop()
	case 22:
		v2, v1 := pop(), pop()
		s2, s1 := pop(), pop()
		if v1 <= v2 {
			ip.push(s1)
		} else {
			ip.push(s2)
		}
	case 23:
		ip.push(0.5)
	case 24:
		b, a := pop(), pop()
		ip.push(a * b)
	case 26:
		a := pop()
		ip.push(sqrtF64(a))
	case 27:
		a := pop()
		ip.push(a)
		ip.push(a)
	case 28:
		b, a := pop(), pop()
		ip.push(b)
		ip.push(a)
	case 29:
		i := int(pop())
		if ip.sp <= 0 {
			ip.push(0)
			return nil
		}
		if i < 0 {
			i = 0
		}
		if i >= ip.sp {
			i = ip.sp - 1
		}
		ip.push(ip.stack[ip.sp-1-i])
	case 30:
		j := int(pop())
		n := int(pop())
		if n > 0 && n <= ip.sp {
			rollTop(ip.stack[ip.sp-n:ip.sp], j)
		}
	}
	return nil
}

// ensureRegionScalars recomputes the cached per-region scalar vector for
// the current vsIndex, bounded to cff2MaxBlendRegions regions (§4.8).
func (ip *cff2Interp) ensureRegionScalars() error {
	if ip.regionScalars != nil && ip.vsIndexSet {
		return nil
	}
	if ip.cff.varStore == nil || ip.vsIndex >= len(ip.cff.varStore.dataSubtables) {
		return ErrInvalidItemVariationDataIndex
	}
	vd := ip.cff.varStore.dataSubtables[ip.vsIndex]
	if len(vd.regionIndexes) > cff2MaxBlendRegions {
		return ErrBlendRegionsLimitReached
	}
	scalars := make([]float32, len(vd.regionIndexes))
	for i, regionIdx := range vd.regionIndexes {
		if int(regionIdx) >= len(ip.cff.varStore.regions) {
			continue
		}
		scalars[i] = ip.cff.varStore.regions[regionIdx].scalarAt(ip.coords)
	}
	ip.regionScalars = scalars
	ip.vsIndexSet = true
	return nil
}

// runBlend implements the blend operator: pops n default values plus n*k
// per-region deltas (k = regions bound to the current vsindex), applies
// the cached region scalars, and pushes the n blended results back.
func (ip *cff2Interp) runBlend() error {
	if ip.sp < 1 {
		return ErrInvalidArgumentsStackLength
	}
	if err := ip.ensureRegionScalars(); err != nil {
		return err
	}
	k := len(ip.regionScalars)
	n := int(ip.stack[ip.sp-1])
	ip.sp--
	if n < 0 || ip.sp < n*(k+1) {
		return ErrInvalidNumberOfBlendOperands
	}

	deltasStart := ip.sp - n*k
	defaultsStart := deltasStart - n
	for i := 0; i < n; i++ {
		sum := ip.stack[defaultsStart+i]
		for j := 0; j < k; j++ {
			sum += ip.stack[deltasStart+i*k+j] * float64(ip.regionScalars[j])
		}
		ip.stack[defaultsStart+i] = sum
	}
	ip.sp = defaultsStart + n
	return nil
}

// setVsIndex implements the vsindex operator (escape 15): it selects
// which variation-data subtable subsequent blend operators read deltas
// and region scalars from.
func (ip *cff2Interp) setVsIndex() error {
	if ip.sp < 1 {
		return ErrInvalidArgumentsStackLength
	}
	ip.sp--
	idx := int(ip.stack[ip.sp])
	if idx < 0 {
		return ErrDuplicateVsindex
	}
	if idx != ip.vsIndex {
		ip.vsIndex = idx
		ip.regionScalars = nil
		ip.vsIndexSet = false
	}
	ip.clear()
	return nil
}
