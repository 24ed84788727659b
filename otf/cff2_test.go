package otf

import (
	"encoding/binary"
	"testing"
)

// buildCFF2Index32 encodes a CFF2-style INDEX (32-bit count, 1-byte offsets).
func buildCFF2Index32(objects ...[]byte) []byte {
	count := len(objects)
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out[0:], uint32(count))
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

// buildMinimalCFF2 assembles a no-FDArray, no-VariationStore CFF2 table
// around a pre-built CharStrings INDEX.
func buildMinimalCFF2(csIndex []byte) []byte {
	const hdrSize = 5
	// Top DICT: charstrings offset (17), fixed-width 5-byte (29-prefixed)
	// integer so a first pass can size the layout before patching the value.
	build := func(charstringsOffset int) (header, topDict, globalSubrIdx []byte) {
		topDict = append([]byte{29}, encodeI32(charstringsOffset)...)
		topDict = append(topDict, 17)
		header = make([]byte, hdrSize)
		header[0], header[1], header[2] = 2, 0, hdrSize
		binary.BigEndian.PutUint16(header[3:], uint16(len(topDict)))
		globalSubrIdx = buildCFF2Index32()
		return
	}

	header, topDict, globalSubrIdx := build(0)
	prefixLen := len(header) + len(topDict) + len(globalSubrIdx)
	header, topDict, globalSubrIdx = build(prefixLen)

	data := append([]byte{}, header...)
	data = append(data, topDict...)
	data = append(data, globalSubrIdx...)
	data = append(data, csIndex...)
	return data
}

func TestCFF2SquareOutlineNoVariation(t *testing.T) {
	// CFF2 charstrings carry no width byte and no endchar: the path is
	// just closed by whatever comes after the last moveto.
	charstring := []byte{
		149, 149, 21, // rmoveto 10 10
		219, 6, // hlineto 80
		219, 7, // vlineto 80
		59, 6, // hlineto -80
	}
	csIndex := buildCFF2Index32(charstring)
	data := buildMinimalCFF2(csIndex)

	cff, err := ParseCFF2(data)
	if err != nil {
		t.Fatalf("ParseCFF2: %v", err)
	}

	sink := &recordingSink{}
	rect, err := cff.OutlineGlyph(0, nil, sink)
	if err != nil {
		t.Fatalf("OutlineGlyph: %v", err)
	}
	if rect.XMin != 10 || rect.YMin != 10 || rect.XMax != 90 || rect.YMax != 90 {
		t.Errorf("bbox = %+v, want (10,10,90,90)", rect)
	}
}

func TestCFF2EndcharIsRejected(t *testing.T) {
	// CFF2 charstrings never carry an endchar operator; encountering one
	// must be a hard error, not silently accepted like CFF1.
	charstring := []byte{14}
	csIndex := buildCFF2Index32(charstring)
	data := buildMinimalCFF2(csIndex)

	cff, err := ParseCFF2(data)
	if err != nil {
		t.Fatalf("ParseCFF2: %v", err)
	}
	sink := &recordingSink{}
	if _, err := cff.OutlineGlyph(0, nil, sink); err == nil {
		t.Errorf("OutlineGlyph with endchar byte in a CFF2 charstring should fail")
	}
}
