package otf

import "math"

// Fixed is a 16.16 signed fixed-point number, the wire format of font
// revisions and fvar axis bounds.
type Fixed int32

// Float32 converts Fixed to a float32 with exact 16.16 semantics.
func (f Fixed) Float32() float32 { return float32(f) / 65536 }

// FixedFromFloat32 rounds v into a 16.16 fixed-point value.
func FixedFromFloat32(v float32) Fixed {
	return Fixed(int32(math.Round(float64(v) * 65536)))
}

// F2Dot14 is a 2.14 signed fixed-point number (denominator 2^14), the wire
// format of NormalizedCoordinate and avar/variation-region axis values.
type F2Dot14 int16

// Float32 converts F2Dot14 to a float32 with exact 2.14 semantics.
func (f F2Dot14) Float32() float32 { return float32(f) / 16384 }

// F2Dot14FromFloat32 rounds v (expected in [-2, 2)) into a 2.14 value.
func F2Dot14FromFloat32(v float32) F2Dot14 {
	return F2Dot14(int16(math.Round(float64(v) * 16384)))
}

// NormalizedCoordinate is an axis value rescaled to [-1, +1], stored as
// F2Dot14. One per variation axis, ordered to match fvar.
type NormalizedCoordinate = F2Dot14

// clampF32 clamps v to [lo, hi].
func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampI clamps v to [lo, hi].
func clampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
