package otf

import (
	"encoding/binary"
	"testing"
)

func buildClassDefFormat1(startGlyph GlyphID, classes []uint16) []byte {
	data := make([]byte, 6+len(classes)*2)
	binary.BigEndian.PutUint16(data[0:], 1)
	binary.BigEndian.PutUint16(data[2:], uint16(startGlyph))
	binary.BigEndian.PutUint16(data[4:], uint16(len(classes)))
	for i, c := range classes {
		binary.BigEndian.PutUint16(data[6+i*2:], c)
	}
	return data
}

func buildClassDefFormat2(ranges []classRangeRecord) []byte {
	data := make([]byte, 4+len(ranges)*6)
	binary.BigEndian.PutUint16(data[0:], 2)
	binary.BigEndian.PutUint16(data[2:], uint16(len(ranges)))
	for i, rg := range ranges {
		off := 4 + i*6
		binary.BigEndian.PutUint16(data[off:], uint16(rg.start))
		binary.BigEndian.PutUint16(data[off+2:], uint16(rg.end))
		binary.BigEndian.PutUint16(data[off+4:], rg.class)
	}
	return data
}

func TestClassDefFormat1(t *testing.T) {
	data := buildClassDefFormat1(10, []uint16{1, 2, 3})
	cd, err := ParseClassDef(data, 0)
	if err != nil {
		t.Fatalf("ParseClassDef: %v", err)
	}
	if c, ok := cd.ClassOf(11); !ok || c != 2 {
		t.Errorf("ClassOf(11) = (%d,%v), want (2,true)", c, ok)
	}
	if _, ok := cd.ClassOf(9); ok {
		t.Errorf("ClassOf(9) below range should be not-found")
	}
	if _, ok := cd.ClassOf(13); ok {
		t.Errorf("ClassOf(13) past range should be not-found")
	}
}

func TestClassDefFormat2(t *testing.T) {
	data := buildClassDefFormat2([]classRangeRecord{
		{start: 5, end: 10, class: 1},
		{start: 20, end: 25, class: 2},
	})
	cd, err := ParseClassDef(data, 0)
	if err != nil {
		t.Fatalf("ParseClassDef: %v", err)
	}
	if c, ok := cd.ClassOf(7); !ok || c != 1 {
		t.Errorf("ClassOf(7) = (%d,%v), want (1,true)", c, ok)
	}
	if c, ok := cd.ClassOf(22); !ok || c != 2 {
		t.Errorf("ClassOf(22) = (%d,%v), want (2,true)", c, ok)
	}
	if _, ok := cd.ClassOf(15); ok {
		t.Errorf("ClassOf(15) in the gap between ranges should be not-found")
	}
}

func buildCoverageFormat1(glyphs []GlyphID) []byte {
	data := make([]byte, 4+len(glyphs)*2)
	binary.BigEndian.PutUint16(data[0:], 1)
	binary.BigEndian.PutUint16(data[2:], uint16(len(glyphs)))
	for i, g := range glyphs {
		binary.BigEndian.PutUint16(data[4+i*2:], uint16(g))
	}
	return data
}

func TestCoverageFormat1Index(t *testing.T) {
	data := buildCoverageFormat1([]GlyphID{3, 7, 9})
	cov, err := ParseCoverage(data, 0)
	if err != nil {
		t.Fatalf("ParseCoverage: %v", err)
	}
	if idx, ok := cov.Index(7); !ok || idx != 1 {
		t.Errorf("Index(7) = (%d,%v), want (1,true)", idx, ok)
	}
	if _, ok := cov.Index(8); ok {
		t.Errorf("Index(8) uncovered glyph should be not-found")
	}
}

func TestGDEFGlyphClassAndMarkGlyphSets(t *testing.T) {
	glyphClassData := buildClassDefFormat1(0, []uint16{uint16(GlyphClassBase), uint16(GlyphClassMark)})
	coverageData := buildCoverageFormat1([]GlyphID{1})

	const headerLen = 14 // major+minor+glyphClassDef+attachList+ligCaretList+markAttachClassDef+markGlyphSetsDef
	glyphClassOff := headerLen
	markGlyphSetsOff := glyphClassOff + len(glyphClassData)
	coverageOff := markGlyphSetsOff + 8 // format(2) + count(2) + one u32 offset

	header := make([]byte, headerLen)
	binary.BigEndian.PutUint16(header[0:], 1) // majorVersion
	binary.BigEndian.PutUint16(header[2:], 2) // minorVersion: has markGlyphSetsDef
	binary.BigEndian.PutUint16(header[4:], uint16(glyphClassOff))
	binary.BigEndian.PutUint16(header[12:], uint16(markGlyphSetsOff))

	markGlyphSetsHeader := make([]byte, 8)
	binary.BigEndian.PutUint16(markGlyphSetsHeader[0:], 1) // format
	binary.BigEndian.PutUint16(markGlyphSetsHeader[2:], 1) // count
	binary.BigEndian.PutUint32(markGlyphSetsHeader[4:], uint32(coverageOff-markGlyphSetsOff))

	data := append([]byte{}, header...)
	data = append(data, glyphClassData...)
	data = append(data, markGlyphSetsHeader...)
	data = append(data, coverageData...)

	gdef, err := ParseGDEF(data)
	if err != nil {
		t.Fatalf("ParseGDEF: %v", err)
	}
	if c := gdef.GlyphClass(0); c != GlyphClassBase {
		t.Errorf("GlyphClass(0) = %v, want GlyphClassBase", c)
	}
	if c := gdef.GlyphClass(1); c != GlyphClassMark {
		t.Errorf("GlyphClass(1) = %v, want GlyphClassMark", c)
	}
	if c := gdef.GlyphClass(5); c != GlyphClassNone {
		t.Errorf("GlyphClass(unclassified) = %v, want GlyphClassNone", c)
	}
	if !gdef.InMarkGlyphSet(0, 1) {
		t.Errorf("InMarkGlyphSet(0, gid 1) = false, want true")
	}
	if gdef.InMarkGlyphSet(0, 2) {
		t.Errorf("InMarkGlyphSet(0, gid 2) = true, want false")
	}
}

func TestGDEFNilReceiverIsSafe(t *testing.T) {
	var gdef *GDEF
	if c := gdef.GlyphClass(0); c != GlyphClassNone {
		t.Errorf("nil GDEF GlyphClass = %v, want GlyphClassNone", c)
	}
	if gdef.InMarkGlyphSet(0, 0) {
		t.Errorf("nil GDEF InMarkGlyphSet should be false")
	}
}
