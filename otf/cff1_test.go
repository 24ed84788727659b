package otf

import (
	"encoding/binary"
	"testing"
)

// buildEmptyCFFIndex encodes a count=0 INDEX (no offset table, no data).
func buildEmptyCFFIndex() []byte {
	return []byte{0, 0}
}

// buildCFFIndex1 encodes a CFF1-style INDEX (16-bit count, 1-byte offsets)
// holding the given objects in order.
func buildCFFIndex1(objects ...[]byte) []byte {
	count := len(objects)
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out[0:], uint16(count))
	if count == 0 {
		return out
	}
	out = append(out, 1) // offSize = 1
	off := 1
	for i := 0; i <= count; i++ {
		out = append(out, byte(off))
		if i < count {
			off += len(objects[i])
		}
	}
	for _, o := range objects {
		out = append(out, o...)
	}
	return out
}

func TestCFF1SquareOutline(t *testing.T) {
	// A single charstring tracing a 10,10 -> 90,10 -> 90,90 -> 10,90 square
	// using rmoveto + alternating hlineto/vlineto, closed by endchar.
	charstring := []byte{
		149, 149, 21, // rmoveto 10 10
		219, 6, // hlineto 80
		219, 7, // vlineto 80
		59, 6, // hlineto -80
		14, // endchar
	}
	csIndex := buildCFFIndex1([]byte{14}, charstring) // glyph 0: .notdef (bare endchar), glyph 1: square

	data := buildMinimalCFF1(csIndex)

	cff, err := ParseCFF1(data)
	if err != nil {
		t.Fatalf("ParseCFF1: %v", err)
	}

	sink := &recordingSink{}
	rect, err := cff.OutlineGlyph(1, sink)
	if err != nil {
		t.Fatalf("OutlineGlyph(1): %v", err)
	}
	if rect.XMin != 10 || rect.YMin != 10 || rect.XMax != 90 || rect.YMax != 90 {
		t.Errorf("bbox = %+v, want (10,10,90,90)", rect)
	}
	if len(sink.ops) == 0 || sink.ops[0] != "M 10 10" {
		t.Errorf("first op = %v, want MoveTo(10,10)", sink.ops)
	}
}

func encodeI32(v int) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(int32(v)))
	return b
}

// buildMinimalCFF1 wraps a pre-built CharStrings INDEX in the surrounding
// header/Name/TopDict/String/GlobalSubr structure every CFF1 table needs,
// patching the Top DICT's charstrings-offset operand (17) to point past
// them. The Top DICT uses a fixed-width 5-byte (29-prefixed) integer
// encoding so a first layout pass can size everything before the real
// offset value is known.
func buildMinimalCFF1(csIndex []byte) []byte {
	header := []byte{1, 0, 4, 1}
	nameIdx := buildEmptyCFFIndex()
	stringIdx := buildEmptyCFFIndex()
	globalSubrIdx := buildEmptyCFFIndex()

	build := func(charstringsOffset int) []byte {
		topDict := append([]byte{29}, encodeI32(charstringsOffset)...)
		topDict = append(topDict, 17)
		topDictIdx := buildCFFIndex1(topDict)
		out := append([]byte{}, header...)
		out = append(out, nameIdx...)
		out = append(out, topDictIdx...)
		out = append(out, stringIdx...)
		out = append(out, globalSubrIdx...)
		return out
	}

	charStringsOffset := len(build(0))
	prefix := build(charStringsOffset)
	return append(prefix, csIndex...)
}

func TestCFF1NotdefIsEmpty(t *testing.T) {
	charstring := []byte{14} // bare endchar: a valid, contourless .notdef
	csIndex := buildCFFIndex1(charstring)
	data := buildMinimalCFF1(csIndex)

	cff, err := ParseCFF1(data)
	if err != nil {
		t.Fatalf("ParseCFF1: %v", err)
	}
	sink := &recordingSink{}
	_, err = cff.OutlineGlyph(0, sink)
	if err != ErrZeroBBox {
		t.Errorf("OutlineGlyph(.notdef) = %v, want ErrZeroBBox", err)
	}
}

// cffNum encodes a single CFF1 charstring integer operand in the -107..107
// range, which every value this file needs fits in.
func cffNum(v int) byte { return byte(v + 139) }

// buildSquareCS builds a minimal rmoveto+hlineto+vlineto+hlineto+endchar
// charstring tracing a side-by-side square starting at (dx,dy).
func buildSquareCS(dx, dy, side int) []byte {
	return []byte{
		cffNum(dx), cffNum(dy), 21, // rmoveto
		cffNum(side), 6, // hlineto
		cffNum(side), 7, // vlineto
		cffNum(-side), 6, // hlineto
		14, // endchar
	}
}

// buildCFF1WithCharset mirrors buildMinimalCFF1 but also wires a Charset
// offset (DICT op 15) ahead of the CharStrings offset (op 17), both as
// fixed 5-byte 29-prefixed integers, so the charset data can sit between
// the Top DICT and the CharStrings INDEX.
func buildCFF1WithCharset(csIndex, charsetData []byte) []byte {
	header := []byte{1, 0, 4, 1}
	nameIdx := buildEmptyCFFIndex()
	stringIdx := buildEmptyCFFIndex()
	globalSubrIdx := buildEmptyCFFIndex()

	build := func(charsetOffset, charStringsOffset int) []byte {
		topDict := append([]byte{29}, encodeI32(charsetOffset)...)
		topDict = append(topDict, 15)
		topDict = append(topDict, 29)
		topDict = append(topDict, encodeI32(charStringsOffset)...)
		topDict = append(topDict, 17)
		topDictIdx := buildCFFIndex1(topDict)
		out := append([]byte{}, header...)
		out = append(out, nameIdx...)
		out = append(out, topDictIdx...)
		out = append(out, stringIdx...)
		out = append(out, globalSubrIdx...)
		return out
	}

	charsetOffset := len(build(0, 0))
	charStringsOffset := charsetOffset + len(charsetData)
	prefix := build(charsetOffset, charStringsOffset)
	out := append(prefix, charsetData...)
	return append(out, csIndex...)
}

// TestCFF1SeacS4Composite pins scenario S4: an endchar charstring carrying
// exactly 4 operands (adx, ady, bchar, achar) with no preceding width,
// stem, or moveto, so SEAC must be detected on the raw stack length rather
// than after a width is speculatively stripped from it.
func TestCFF1SeacS4Composite(t *testing.T) {
	notdefCS := []byte{14}
	baseCS := buildSquareCS(10, 10, 40)  // base 'A': (10,10)-(50,50)
	accentCS := buildSquareCS(5, 5, 20)  // accent: (5,5)-(25,25) from its own origin
	s4CS := []byte{
		cffNum(0), cffNum(0), cffNum(65), cffNum(97), // adx=0 ady=0 bchar=65 achar=97
		14, // endchar, 4 operands, no width claimed yet
	}
	csIndex := buildCFFIndex1(notdefCS, baseCS, accentCS, s4CS)

	// charset: gid1 (base) -> SID 34 (code 65 - 31), gid2 (accent) -> SID 66
	// (code 97 - 31), gid3 (the S4 glyph itself) -> an arbitrary SID.
	charsetData := make([]byte, 1+3*2)
	charsetData[0] = 0 // format 0
	binary.BigEndian.PutUint16(charsetData[1:], 34)
	binary.BigEndian.PutUint16(charsetData[3:], 66)
	binary.BigEndian.PutUint16(charsetData[5:], 1)

	data := buildCFF1WithCharset(csIndex, charsetData)
	cff, err := ParseCFF1(data)
	if err != nil {
		t.Fatalf("ParseCFF1: %v", err)
	}

	sink := &recordingSink{}
	rect, err := cff.OutlineGlyph(3, sink)
	if err != nil {
		t.Fatalf("OutlineGlyph(3) (SEAC): %v", err)
	}
	if rect.XMin != 5 || rect.YMin != 5 || rect.XMax != 50 || rect.YMax != 50 {
		t.Errorf("bbox = %+v, want (5,5,50,50) (union of base and accent)", rect)
	}
	// Both the base square and the accent square must have been drawn:
	// two separate move-to origins, not a single untouched/empty glyph.
	moveTos := 0
	for _, op := range sink.ops {
		if len(op) > 0 && op[0] == 'M' {
			moveTos++
		}
	}
	if moveTos != 2 {
		t.Errorf("sink saw %d MoveTo ops, want 2 (base + accent)", moveTos)
	}
}
