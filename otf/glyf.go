package otf

// Glyf decodes quadratic TrueType outlines from the glyf/loca pair, per §4.4.
// Composite glyphs recurse through component subglyphs up to a bounded depth.
type Glyf struct {
	glyfData []byte
	loca     locaTable
}

type locaTable struct {
	offsets []byte // raw u16 or u32 entries, numGlyphs+1 of them
	long    bool
}

// ParseLoca builds the loca offset table. indexToLocFormat is head's field:
// 0 means u16 entries stored as (offset/2), 1 means u32 entries verbatim.
func ParseLoca(data []byte, numGlyphs int, indexToLocFormat int16) (locaTable, error) {
	n := numGlyphs + 1
	if indexToLocFormat == 0 {
		b, ok := Sub(data, 0, n*2)
		if !ok {
			return locaTable{}, ErrInvalidTable
		}
		return locaTable{offsets: b, long: false}, nil
	}
	b, ok := Sub(data, 0, n*4)
	if !ok {
		return locaTable{}, ErrInvalidTable
	}
	return locaTable{offsets: b, long: true}, nil
}

func (l locaTable) glyphRange(gid GlyphID) (start, end int, ok bool) {
	i := int(gid)
	if l.long {
		if (i+1)*4+4 > len(l.offsets) {
			return 0, 0, false
		}
		r := NewReader(l.offsets)
		s, ok1 := r.U32At(i * 4)
		e, ok2 := r.U32At((i + 1) * 4)
		if !ok1 || !ok2 {
			return 0, 0, false
		}
		return int(s), int(e), true
	}
	if (i+1)*2+2 > len(l.offsets) {
		return 0, 0, false
	}
	r := NewReader(l.offsets)
	s, ok1 := r.U16At(i * 2)
	e, ok2 := r.U16At((i + 1) * 2)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	return int(s) * 2, int(e) * 2, true
}

// ParseGlyf pairs glyf table data with an already-parsed loca table.
func ParseGlyf(glyfData []byte, loca locaTable) *Glyf {
	return &Glyf{glyfData: glyfData, loca: loca}
}

// maxCompositeDepth bounds composite-glyph recursion (§4.4 edge cases).
const maxCompositeDepth = 32

// OutlineGlyph decodes gid's outline into sink, returning the tight bbox
// over every emitted point. A glyph with an empty (zero-length) loca range
// is a valid space glyph: it emits nothing, and OutlineGlyph returns a zero
// Rect with ErrZeroBBox (not wrapped in a GlyphError).
func (g *Glyf) OutlineGlyph(gid GlyphID, sink OutlineBuilder) (Rect, error) {
	bb := newBoundsBuilder(sink)
	if err := g.outlineGlyph(gid, bb, 0, 0, 1, 0, 0, 1, 0); err != nil {
		return Rect{}, err
	}
	rect, ok := bb.bounds.toRect()
	if !ok {
		return Rect{}, ErrZeroBBox
	}
	return rect, nil
}

// outlineGlyph emits gid's outline transformed by the given 2x3 affine
// (dx, dy, a, b, c, d applied as x' = a*x + c*y + dx, y' = b*x + d*y + dy).
func (g *Glyf) outlineGlyph(gid GlyphID, sink *boundsBuilder, dx, dy, a, b, c, d float32, depth int) error {
	if depth > maxCompositeDepth {
		return glyphErr("outline_glyph", ErrNestingLimitReached)
	}

	start, end, ok := g.loca.glyphRange(gid)
	if !ok {
		return glyphErr("outline_glyph", ErrInvalidOffset)
	}
	if end < start {
		// A decreasing loca pair never denotes a valid empty glyph; treat
		// it as malformed rather than silently emitting "no contours".
		return glyphErr("outline_glyph", ErrInvalidOffset)
	}
	if end == start {
		return nil // empty glyph: valid, no contours
	}
	data, ok := Sub(g.glyfData, start, end-start)
	if !ok {
		return glyphErr("outline_glyph", ErrReadOutOfBounds)
	}

	r := NewReader(data)
	numberOfContours, ok := r.I16()
	if !ok {
		return glyphErr("outline_glyph", ErrReadOutOfBounds)
	}
	r.Advance(8) // xMin, yMin, xMax, yMax (header bbox: ignored, §4.4)

	if numberOfContours >= 0 {
		return g.outlineSimpleGlyph(r, int(numberOfContours), sink, dx, dy, a, b, c, d)
	}
	return g.outlineCompositeGlyph(r, sink, dx, dy, a, b, c, d, depth)
}

func transformPoint(x, y, dx, dy, a, b, c, d float32) (float32, float32) {
	return a*x + c*y + dx, b*x + d*y + dy
}

const (
	flagOnCurve      = 1 << 0
	flagXShort       = 1 << 1
	flagYShort       = 1 << 2
	flagRepeat       = 1 << 3
	flagXSameOrPos   = 1 << 4
	flagYSameOrPos   = 1 << 5
)

func (g *Glyf) outlineSimpleGlyph(r *Reader, numContours int, sink *boundsBuilder, dx, dy, a, b, c, d float32) error {
	endPts := make([]uint16, numContours)
	for i := range endPts {
		v, ok := r.U16()
		if !ok {
			return glyphErr("outline_glyph", ErrReadOutOfBounds)
		}
		endPts[i] = v
	}
	if numContours == 0 {
		return nil
	}
	numPoints := int(endPts[numContours-1]) + 1

	insLen, ok := r.U16()
	if !ok {
		return glyphErr("outline_glyph", ErrReadOutOfBounds)
	}
	if !r.Advance(int(insLen)) {
		return glyphErr("outline_glyph", ErrReadOutOfBounds)
	}

	flags := make([]byte, 0, numPoints)
	for len(flags) < numPoints {
		f, ok := r.U8()
		if !ok {
			return glyphErr("outline_glyph", ErrReadOutOfBounds)
		}
		flags = append(flags, f)
		if f&flagRepeat != 0 {
			rep, ok := r.U8()
			if !ok {
				return glyphErr("outline_glyph", ErrReadOutOfBounds)
			}
			for i := byte(0); i < rep && len(flags) < numPoints; i++ {
				flags = append(flags, f)
			}
		}
	}
	if len(flags) != numPoints {
		return glyphErr("outline_glyph", ErrInvalidTable)
	}

	xs := make([]float32, numPoints)
	var x int32
	for i, f := range flags {
		if f&flagXShort != 0 {
			v, ok := r.U8()
			if !ok {
				return glyphErr("outline_glyph", ErrReadOutOfBounds)
			}
			if f&flagXSameOrPos != 0 {
				x += int32(v)
			} else {
				x -= int32(v)
			}
		} else if f&flagXSameOrPos == 0 {
			v, ok := r.I16()
			if !ok {
				return glyphErr("outline_glyph", ErrReadOutOfBounds)
			}
			x += int32(v)
		}
		xs[i] = float32(x)
	}

	ys := make([]float32, numPoints)
	var y int32
	for i, f := range flags {
		if f&flagYShort != 0 {
			v, ok := r.U8()
			if !ok {
				return glyphErr("outline_glyph", ErrReadOutOfBounds)
			}
			if f&flagYSameOrPos != 0 {
				y += int32(v)
			} else {
				y -= int32(v)
			}
		} else if f&flagYSameOrPos == 0 {
			v, ok := r.I16()
			if !ok {
				return glyphErr("outline_glyph", ErrReadOutOfBounds)
			}
			y += int32(v)
		}
		ys[i] = float32(y)
	}

	start := 0
	for _, endIdx := range endPts {
		end := int(endIdx)
		if end < start || end >= numPoints {
			return glyphErr("outline_glyph", ErrInvalidTable)
		}
		if err := emitContour(flags[start:end+1], xs[start:end+1], ys[start:end+1], sink, dx, dy, a, b, c, d); err != nil {
			return err
		}
		start = end + 1
	}
	return nil
}

// emitContour walks one contour's on/off-curve points, synthesizing the
// implicit on-curve midpoint between two consecutive off-curve points
// (§4.4's TrueType contour convention).
func emitContour(flags []byte, xs, ys []float32, sink *boundsBuilder, dx, dy, a, b, c, d float32) error {
	n := len(flags)
	if n == 0 {
		return nil
	}

	onCurve := func(i int) bool { return flags[i]&flagOnCurve != 0 }
	point := func(i int) (float32, float32) { return transformPoint(xs[i], ys[i], dx, dy, a, b, c, d) }
	mid := func(i, j int) (float32, float32) {
		xi, yi := point(i)
		xj, yj := point(j)
		return (xi + xj) / 2, (yi + yj) / 2
	}

	var startX, startY float32
	var i, count int
	switch {
	case onCurve(0):
		startX, startY = point(0)
		i, count = 1, n-1
	case onCurve(n - 1):
		startX, startY = point(n - 1)
		i, count = 0, n-1
	default:
		startX, startY = mid(0, n-1)
		i, count = 0, n
	}
	sink.MoveTo(startX, startY)

	var pendingOffX, pendingOffY float32
	havePending := false

	emitOn := func(x, y float32) {
		if havePending {
			sink.QuadTo(pendingOffX, pendingOffY, x, y)
			havePending = false
		} else {
			sink.LineTo(x, y)
		}
	}
	emitOff := func(x, y float32) {
		if havePending {
			mx, my := (pendingOffX+x)/2, (pendingOffY+y)/2
			sink.QuadTo(pendingOffX, pendingOffY, mx, my)
		}
		pendingOffX, pendingOffY = x, y
		havePending = true
	}

	idx := i
	for k := 0; k < count; k++ {
		j := idx % n
		x, y := point(j)
		if onCurve(j) {
			emitOn(x, y)
		} else {
			emitOff(x, y)
		}
		idx++
	}

	if havePending {
		sink.QuadTo(pendingOffX, pendingOffY, startX, startY)
	}
	sink.Close()
	return nil
}

const (
	compArgsAreWords    = 1 << 0
	compArgsAreXYValues = 1 << 1
	compRoundXYToGrid   = 1 << 2
	compWeHaveScale     = 1 << 3
	compMoreComponents  = 1 << 5
	compWeHaveXYScale   = 1 << 6
	compWeHave2x2       = 1 << 7
)

func (g *Glyf) outlineCompositeGlyph(r *Reader, sink *boundsBuilder, pdx, pdy, pa, pb, pc, pd float32, depth int) error {
	for {
		flags, ok := r.U16()
		if !ok {
			return glyphErr("outline_glyph", ErrReadOutOfBounds)
		}
		glyphIndex, ok := r.U16()
		if !ok {
			return glyphErr("outline_glyph", ErrReadOutOfBounds)
		}

		var dx, dy float32
		if flags&compArgsAreWords != 0 {
			a1, ok1 := r.I16()
			a2, ok2 := r.I16()
			if !ok1 || !ok2 {
				return glyphErr("outline_glyph", ErrReadOutOfBounds)
			}
			if flags&compArgsAreXYValues != 0 {
				dx, dy = float32(a1), float32(a2)
			}
		} else {
			a1, ok1 := r.I8()
			a2, ok2 := r.I8()
			if !ok1 || !ok2 {
				return glyphErr("outline_glyph", ErrReadOutOfBounds)
			}
			if flags&compArgsAreXYValues != 0 {
				dx, dy = float32(a1), float32(a2)
			}
		}

		a, b, c, d := float32(1), float32(0), float32(0), float32(1)
		switch {
		case flags&compWeHave2x2 != 0:
			va, ok1 := r.F2Dot14()
			vb, ok2 := r.F2Dot14()
			vc, ok3 := r.F2Dot14()
			vd, ok4 := r.F2Dot14()
			if !ok1 || !ok2 || !ok3 || !ok4 {
				return glyphErr("outline_glyph", ErrReadOutOfBounds)
			}
			a, b, c, d = va.Float32(), vb.Float32(), vc.Float32(), vd.Float32()
		case flags&compWeHaveXYScale != 0:
			va, ok1 := r.F2Dot14()
			vd, ok2 := r.F2Dot14()
			if !ok1 || !ok2 {
				return glyphErr("outline_glyph", ErrReadOutOfBounds)
			}
			a, d = va.Float32(), vd.Float32()
		case flags&compWeHaveScale != 0:
			va, ok := r.F2Dot14()
			if !ok {
				return glyphErr("outline_glyph", ErrReadOutOfBounds)
			}
			a, d = va.Float32(), va.Float32()
		}

		// Compose child transform with the parent: combined = child ∘ parent.
		ndx, ndy := transformPoint(dx, dy, pdx, pdy, pa, pb, pc, pd)
		na := a*pa + b*pc
		nb := a*pb + b*pd
		nc := c*pa + d*pc
		nd := c*pb + d*pd

		if err := g.outlineGlyph(GlyphID(glyphIndex), sink, ndx, ndy, na, nb, nc, nd, depth+1); err != nil {
			return err
		}

		if flags&compMoreComponents == 0 {
			break
		}
	}
	return nil
}
