package otf

import "math"

// OutlineBuilder is the capability an outline query draws into. Emissions
// happen in program order: first contour first, points in path order.
// A query that fails partway through leaves the sink in whatever state it
// reached — callers must consult the returned status before trusting a
// prefix of calls.
type OutlineBuilder interface {
	MoveTo(x, y float32)
	LineTo(x, y float32)
	QuadTo(x1, y1, x, y float32)
	CurveTo(x1, y1, x2, y2, x, y float32)
	Close()
}

// Rect is an inclusive i16 bounding box in font units.
type Rect struct {
	XMin, YMin, XMax, YMax int16
}

// boundsTracker accumulates a tight bounding box over every emitted point
// and control point, in floating point, independent of any stale header
// bbox. A default (never-extended) tracker must be rejected at finalization.
type boundsTracker struct {
	xMin, yMin, xMax, yMax float32
	touched                bool
}

func newBoundsTracker() boundsTracker {
	return boundsTracker{
		xMin: float32(math.Inf(1)), yMin: float32(math.Inf(1)),
		xMax: float32(math.Inf(-1)), yMax: float32(math.Inf(-1)),
	}
}

func (b *boundsTracker) extend(x, y float32) {
	b.touched = true
	if x < b.xMin {
		b.xMin = x
	}
	if x > b.xMax {
		b.xMax = x
	}
	if y < b.yMin {
		b.yMin = y
	}
	if y > b.yMax {
		b.yMax = y
	}
}

// toRect finalizes the tracker into an i16 Rect. ok is false if the
// tracker was never extended (ErrZeroBBox case) or a coordinate overflows
// the i16 range (ErrBboxOverflow case).
func (b *boundsTracker) toRect() (Rect, bool) {
	if !b.touched {
		return Rect{}, false
	}
	if !fitsI16(b.xMin) || !fitsI16(b.yMin) || !fitsI16(b.xMax) || !fitsI16(b.yMax) {
		return Rect{}, false
	}
	return Rect{
		XMin: int16(b.xMin), YMin: int16(b.yMin),
		XMax: int16(b.xMax), YMax: int16(b.yMax),
	}, true
}

func fitsI16(v float32) bool { return v >= -32768 && v <= 32767 }

// boundsBuilder wraps a caller-supplied OutlineBuilder and additionally
// tracks the tight bounding box of everything emitted, per §4.4's "the
// returned Rect is the tight bbox derived from the emissions, not the
// header bbox".
type boundsBuilder struct {
	sink   OutlineBuilder
	bounds boundsTracker
}

func newBoundsBuilder(sink OutlineBuilder) *boundsBuilder {
	return &boundsBuilder{sink: sink, bounds: newBoundsTracker()}
}

func (b *boundsBuilder) MoveTo(x, y float32) {
	b.bounds.extend(x, y)
	b.sink.MoveTo(x, y)
}

func (b *boundsBuilder) LineTo(x, y float32) {
	b.bounds.extend(x, y)
	b.sink.LineTo(x, y)
}

func (b *boundsBuilder) QuadTo(x1, y1, x, y float32) {
	b.bounds.extend(x1, y1)
	b.bounds.extend(x, y)
	b.sink.QuadTo(x1, y1, x, y)
}

func (b *boundsBuilder) CurveTo(x1, y1, x2, y2, x, y float32) {
	b.bounds.extend(x1, y1)
	b.bounds.extend(x2, y2)
	b.bounds.extend(x, y)
	b.sink.CurveTo(x1, y1, x2, y2, x, y)
}

func (b *boundsBuilder) Close() { b.sink.Close() }
