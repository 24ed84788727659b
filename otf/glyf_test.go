package otf

import (
	"encoding/binary"
	"testing"
)

type recordingSink struct {
	ops []string
}

func (s *recordingSink) MoveTo(x, y float32) {
	s.ops = append(s.ops, sprintfOp("M", x, y))
}
func (s *recordingSink) LineTo(x, y float32) {
	s.ops = append(s.ops, sprintfOp("L", x, y))
}
func (s *recordingSink) QuadTo(x1, y1, x, y float32) {
	s.ops = append(s.ops, sprintfOp("Q", x1, y1, x, y))
}
func (s *recordingSink) CurveTo(x1, y1, x2, y2, x, y float32) {
	s.ops = append(s.ops, sprintfOp("C", x1, y1, x2, y2, x, y))
}
func (s *recordingSink) Close() { s.ops = append(s.ops, "Z") }

func sprintfOp(tag string, vals ...float32) string {
	out := tag
	for _, v := range vals {
		out += " " + itoaF(v)
	}
	return out
}

func itoaF(v float32) string {
	i := int(v)
	if float32(i) == v {
		return itoa(i)
	}
	return "x"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var b []byte
	for i > 0 {
		b = append([]byte{byte('0' + i%10)}, b...)
		i /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

// buildSimpleTriangle builds a one-contour, three-point, all-on-curve
// simple glyph: a triangle at (0,0)-(100,0)-(50,100).
func buildSimpleTriangle() []byte {
	data := make([]byte, 10)
	binary.BigEndian.PutUint16(data[0:], 1) // numberOfContours
	// xMin,yMin,xMax,yMax header bbox: ignored by the parser, left zero
	data = append(data, 0, 2) // endPtsOfContours[0] = 2 (3 pts)
	data = append(data, 0, 0) // instructionLength = 0
	onCurve := byte(flagOnCurve)
	data = append(data, onCurve, onCurve, onCurve) // flags, all on-curve, no repeat
	// x deltas: 0, +100, -50 (short form would need flags; use i16 form by
	// leaving xShort/xSame bits clear, so each point reads a signed i16)
	data = append(data, 0, 0) // x0 = 0
	data = append(data, 0, 100)
	data = append(data, 255, 206) // -50 as int16 = -50 -> 0xFFCE
	// y deltas: 0, 0, +100
	data = append(data, 0, 0)
	data = append(data, 0, 0)
	data = append(data, 0, 100)
	// Pad to an even length: short loca stores offsets divided by 2.
	data = append(data, 0)
	return data
}

func buildLoca(glyphLens []int, long bool) (locaData []byte) {
	offsets := make([]uint32, len(glyphLens)+1)
	for i, l := range glyphLens {
		offsets[i+1] = offsets[i] + uint32(l)
	}
	if long {
		out := make([]byte, len(offsets)*4)
		for i, o := range offsets {
			binary.BigEndian.PutUint32(out[i*4:], o)
		}
		return out
	}
	out := make([]byte, len(offsets)*2)
	for i, o := range offsets {
		binary.BigEndian.PutUint16(out[i*2:], uint16(o/2))
	}
	return out
}

func TestGlyfSimpleTriangle(t *testing.T) {
	glyph := buildSimpleTriangle()
	locaData := buildLoca([]int{len(glyph)}, false)
	loca, err := ParseLoca(locaData, 1, 0)
	if err != nil {
		t.Fatalf("ParseLoca: %v", err)
	}
	g := ParseGlyf(glyph, loca)

	sink := &recordingSink{}
	rect, err := g.OutlineGlyph(0, sink)
	if err != nil {
		t.Fatalf("OutlineGlyph: %v", err)
	}
	if rect.XMin != 0 || rect.YMin != 0 || rect.XMax != 100 || rect.YMax != 100 {
		t.Errorf("bbox = %+v, want (0,0,100,100)", rect)
	}
	if len(sink.ops) == 0 || sink.ops[0] != "M 0 0" {
		t.Errorf("first op = %v, want MoveTo(0,0): ops=%v", sink.ops, sink.ops)
	}
	if sink.ops[len(sink.ops)-1] != "Z" {
		t.Errorf("last op = %q, want Z", sink.ops[len(sink.ops)-1])
	}
}

func TestGlyfEmptyGlyphIsValidSpace(t *testing.T) {
	locaData := buildLoca([]int{0, 0}, false)
	loca, err := ParseLoca(locaData, 2, 0)
	if err != nil {
		t.Fatalf("ParseLoca: %v", err)
	}
	g := ParseGlyf(nil, loca)

	sink := &recordingSink{}
	_, err = g.OutlineGlyph(0, sink)
	if err != ErrZeroBBox {
		t.Errorf("OutlineGlyph on empty glyph = %v, want ErrZeroBBox", err)
	}
	if len(sink.ops) != 0 {
		t.Errorf("empty glyph emitted ops: %v", sink.ops)
	}
}

func TestGlyfDecreasingLocaPairIsMalformed(t *testing.T) {
	// A short-format loca table whose offsets decrease for glyph 0
	// (entry[0]=4 words, entry[1]=1 word) never denotes a valid glyph.
	locaData := make([]byte, 4)
	binary.BigEndian.PutUint16(locaData[0:], 4)
	binary.BigEndian.PutUint16(locaData[2:], 1)
	loca, err := ParseLoca(locaData, 1, 0)
	if err != nil {
		t.Fatalf("ParseLoca: %v", err)
	}
	g := ParseGlyf(make([]byte, 16), loca)

	sink := &recordingSink{}
	if _, err := g.OutlineGlyph(0, sink); err == nil {
		t.Errorf("OutlineGlyph with a decreasing loca pair succeeded, want an error")
	}
}

func TestGlyfCompositeRecursionLimit(t *testing.T) {
	// A component that references itself: depth must be bounded rather
	// than looping forever or stack-overflowing.
	comp := make([]byte, 0, 12)
	comp = append(comp, 0x00, 0x00) // flags: no MORE_COMPONENTS, byte args, not XY
	comp = append(comp, 0x00, 0x00) // glyphIndex 0 (self-reference)
	comp = append(comp, 0x00, 0x00) // arg1
	comp = append(comp, 0x00, 0x00) // arg2
	header := make([]byte, 10)
	binary.BigEndian.PutUint16(header[0:], 0xFFFF) // numberOfContours = -1 (composite)
	glyphData := append(header, comp...)

	locaData := buildLoca([]int{len(glyphData)}, false)
	loca, err := ParseLoca(locaData, 1, 0)
	if err != nil {
		t.Fatalf("ParseLoca: %v", err)
	}
	// The component is outlined before MORE_COMPONENTS is consulted, so the
	// self-reference recurses either way; the flag is set here as well.
	binary.BigEndian.PutUint16(glyphData[10:], compMoreComponents)
	g := ParseGlyf(glyphData, loca)

	sink := &recordingSink{}
	_, err = g.OutlineGlyph(0, sink)
	gErr, ok := err.(*GlyphError)
	if !ok || gErr.Err != ErrNestingLimitReached {
		t.Fatalf("OutlineGlyph on self-referencing composite = %v, want ErrNestingLimitReached", err)
	}
}

func TestLocaGlyphRangeOutOfBounds(t *testing.T) {
	locaData := buildLoca([]int{10}, false)
	loca, err := ParseLoca(locaData, 1, 0)
	if err != nil {
		t.Fatalf("ParseLoca: %v", err)
	}
	if _, _, ok := loca.glyphRange(5); ok {
		t.Errorf("glyphRange(5) on a 1-glyph table should fail")
	}
}
