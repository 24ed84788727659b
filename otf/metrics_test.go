package otf

import (
	"encoding/binary"
	"testing"
)

func buildHeadTable(unitsPerEm uint16, indexToLocFormat int16) []byte {
	data := make([]byte, 54)
	binary.BigEndian.PutUint16(data[18:], unitsPerEm)
	binary.BigEndian.PutUint16(data[36:], 10)  // xMin
	binary.BigEndian.PutUint16(data[38:], 20)  // yMin
	binary.BigEndian.PutUint16(data[40:], 300) // xMax
	binary.BigEndian.PutUint16(data[42:], 400) // yMax
	binary.BigEndian.PutUint16(data[44:], 0x01) // macStyle
	binary.BigEndian.PutUint16(data[50:], uint16(indexToLocFormat))
	return data
}

func TestParseHead(t *testing.T) {
	data := buildHeadTable(2048, 1)
	head, err := ParseHead(data)
	if err != nil {
		t.Fatalf("ParseHead: %v", err)
	}
	if head.UnitsPerEm != 2048 {
		t.Errorf("UnitsPerEm = %d, want 2048", head.UnitsPerEm)
	}
	if head.IndexToLocFormat != 1 {
		t.Errorf("IndexToLocFormat = %d, want 1", head.IndexToLocFormat)
	}
	if head.XMin != 10 || head.YMin != 20 || head.XMax != 300 || head.YMax != 400 {
		t.Errorf("bbox = (%d,%d,%d,%d), want (10,20,300,400)", head.XMin, head.YMin, head.XMax, head.YMax)
	}
	if head.MacStyle != 1 {
		t.Errorf("MacStyle = %d, want 1", head.MacStyle)
	}
}

func TestParseHeadTruncatedFails(t *testing.T) {
	if _, err := ParseHead(make([]byte, 10)); err == nil {
		t.Errorf("ParseHead on truncated data should fail")
	}
}

func buildMaxpV1(numGlyphs, maxCompositeDepth uint16) []byte {
	data := make([]byte, 32)
	binary.BigEndian.PutUint32(data[0:], 0x00010000)
	binary.BigEndian.PutUint16(data[4:], numGlyphs)
	binary.BigEndian.PutUint16(data[30:], maxCompositeDepth)
	return data
}

func TestParseMaxpVersion1(t *testing.T) {
	data := buildMaxpV1(500, 8)
	maxp, err := ParseMaxp(data)
	if err != nil {
		t.Fatalf("ParseMaxp: %v", err)
	}
	if maxp.NumGlyphs != 500 {
		t.Errorf("NumGlyphs = %d, want 500", maxp.NumGlyphs)
	}
	if maxp.MaxCompositeDepth != 8 {
		t.Errorf("MaxCompositeDepth = %d, want 8", maxp.MaxCompositeDepth)
	}
}

func TestParseMaxpVersionHalf(t *testing.T) {
	data := make([]byte, 6)
	binary.BigEndian.PutUint32(data[0:], 0x00005000)
	binary.BigEndian.PutUint16(data[4:], 120)
	maxp, err := ParseMaxp(data)
	if err != nil {
		t.Fatalf("ParseMaxp: %v", err)
	}
	if maxp.NumGlyphs != 120 {
		t.Errorf("NumGlyphs = %d, want 120", maxp.NumGlyphs)
	}
	if maxp.MaxCompositeDepth != 0 {
		t.Errorf("MaxCompositeDepth = %d, want 0 for a v0.5 (CFF) maxp", maxp.MaxCompositeDepth)
	}
}

func buildHheaTable(ascender, descender, lineGap int16, advanceWidthMax, numberOfHMetrics uint16) []byte {
	data := make([]byte, 36)
	binary.BigEndian.PutUint16(data[4:], uint16(ascender))
	binary.BigEndian.PutUint16(data[6:], uint16(descender))
	binary.BigEndian.PutUint16(data[8:], uint16(lineGap))
	binary.BigEndian.PutUint16(data[10:], advanceWidthMax)
	binary.BigEndian.PutUint16(data[34:], numberOfHMetrics)
	return data
}

func TestParseHhea(t *testing.T) {
	data := buildHheaTable(1900, -500, 0, 1000, 3)
	hhea, err := ParseHhea(data)
	if err != nil {
		t.Fatalf("ParseHhea: %v", err)
	}
	if hhea.Ascender != 1900 || hhea.Descender != -500 {
		t.Errorf("Ascender/Descender = %d/%d, want 1900/-500", hhea.Ascender, hhea.Descender)
	}
	if hhea.NumberOfHMetrics != 3 {
		t.Errorf("NumberOfHMetrics = %d, want 3", hhea.NumberOfHMetrics)
	}
}

func TestHmtxAdvanceAndSideBearingWithCompaction(t *testing.T) {
	// 2 explicit longHorMetric entries, then 2 more glyphs sharing the
	// last advance width with their own trailing side bearings.
	data := make([]byte, 2*4+2*2)
	binary.BigEndian.PutUint16(data[0:], 500) // glyph 0 advance
	binary.BigEndian.PutUint16(data[2:], 10)  // glyph 0 lsb
	binary.BigEndian.PutUint16(data[4:], 600) // glyph 1 advance
	binary.BigEndian.PutUint16(data[6:], 20)  // glyph 1 lsb
	binary.BigEndian.PutUint16(data[8:], 30)  // glyph 2 lsb (advance repeats glyph 1's 600)
	binary.BigEndian.PutUint16(data[10:], 40) // glyph 3 lsb

	hmtx, err := ParseHmtx(data, 2, 4)
	if err != nil {
		t.Fatalf("ParseHmtx: %v", err)
	}
	for gid, wantAdv := range map[GlyphID]uint16{0: 500, 1: 600, 2: 600, 3: 600} {
		if adv, ok := hmtx.Advance(gid); !ok || adv != wantAdv {
			t.Errorf("Advance(%d) = (%d,%v), want (%d,true)", gid, adv, ok, wantAdv)
		}
	}
	for gid, wantLSB := range map[GlyphID]int16{0: 10, 1: 20, 2: 30, 3: 40} {
		if lsb, ok := hmtx.SideBearing(gid); !ok || lsb != wantLSB {
			t.Errorf("SideBearing(%d) = (%d,%v), want (%d,true)", gid, lsb, ok, wantLSB)
		}
	}
	if _, ok := hmtx.Advance(4); ok {
		t.Errorf("Advance(out of range gid) found, want not found")
	}
}

func TestParseOS2Version2Fields(t *testing.T) {
	data := make([]byte, 96)
	binary.BigEndian.PutUint16(data[0:], 2) // version
	binary.BigEndian.PutUint16(data[4:], 400)
	binary.BigEndian.PutUint16(data[6:], 5)
	binary.BigEndian.PutUint16(data[68:], uint16(int16(1800)))
	binary.BigEndian.PutUint16(data[70:], 0xFE70) // -400 as int16
	binary.BigEndian.PutUint16(data[72:], 0)
	binary.BigEndian.PutUint16(data[74:], 1900)
	binary.BigEndian.PutUint16(data[76:], 500)
	binary.BigEndian.PutUint16(data[86:], uint16(int16(520)))  // xHeight
	binary.BigEndian.PutUint16(data[88:], uint16(int16(700)))  // capHeight

	os2, err := ParseOS2(data)
	if err != nil {
		t.Fatalf("ParseOS2: %v", err)
	}
	if os2.WeightClass != 400 || os2.WidthClass != 5 {
		t.Errorf("WeightClass/WidthClass = %d/%d, want 400/5", os2.WeightClass, os2.WidthClass)
	}
	if !os2.HasXHeight || os2.XHeight != 520 {
		t.Errorf("XHeight = (%d,%v), want (520,true)", os2.XHeight, os2.HasXHeight)
	}
	if !os2.HasCapHeight || os2.CapHeight != 700 {
		t.Errorf("CapHeight = (%d,%v), want (700,true)", os2.CapHeight, os2.HasCapHeight)
	}
}

func TestParseOS2Version0HasNoCapHeight(t *testing.T) {
	data := make([]byte, 78)
	binary.BigEndian.PutUint16(data[0:], 0)
	os2, err := ParseOS2(data)
	if err != nil {
		t.Fatalf("ParseOS2: %v", err)
	}
	if os2.HasCapHeight || os2.HasXHeight {
		t.Errorf("version-0 OS/2 should not report CapHeight/XHeight")
	}
}
