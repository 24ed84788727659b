package otf

import (
	"encoding/binary"
	"testing"
)

// buildSingleRegionStore builds a minimal Item Variation Store with one
// axis, one region (0 -> 1.0 -> 1.0), and a caller-supplied set of
// short-delta rows (one per glyph, in glyph order) in a single subtable.
func buildSingleRegionStore(deltas []int16) []byte {
	regionList := make([]byte, 4+6)
	binary.BigEndian.PutUint16(regionList[0:], 1)
	binary.BigEndian.PutUint16(regionList[2:], 1)
	binary.BigEndian.PutUint16(regionList[4:], 0)
	binary.BigEndian.PutUint16(regionList[6:], 1<<14)
	binary.BigEndian.PutUint16(regionList[8:], 1<<14)

	varData := make([]byte, 8+len(deltas)*2)
	binary.BigEndian.PutUint16(varData[0:], uint16(len(deltas))) // itemCount
	binary.BigEndian.PutUint16(varData[2:], 1)                   // shortDeltaCount
	binary.BigEndian.PutUint16(varData[4:], 1)                   // regionIndexCount
	binary.BigEndian.PutUint16(varData[6:], 0)                   // regionIndexes[0]
	for i, d := range deltas {
		binary.BigEndian.PutUint16(varData[8+i*2:], uint16(d))
	}
	return buildIVSWithOffsets(regionList, [][]byte{varData})
}

// buildIntermediateRegionStore is like buildSingleRegionStore but its one
// region straddles zero (start=-1, peak=0.5, end=1) rather than running
// 0->1->1, so it can only pass through scalarAt's dedicated intermediate-
// region guard rather than the ordinary tent-formula branches.
func buildIntermediateRegionStore(deltas []int16) []byte {
	regionList := make([]byte, 4+6)
	binary.BigEndian.PutUint16(regionList[0:], 1)
	binary.BigEndian.PutUint16(regionList[2:], 1)
	binary.BigEndian.PutUint16(regionList[4:], 0xC000) // start = -1.0
	binary.BigEndian.PutUint16(regionList[6:], 1<<13) // peak = 0.5
	binary.BigEndian.PutUint16(regionList[8:], 1<<14)

	varData := make([]byte, 8+len(deltas)*2)
	binary.BigEndian.PutUint16(varData[0:], uint16(len(deltas)))
	binary.BigEndian.PutUint16(varData[2:], 1)
	binary.BigEndian.PutUint16(varData[4:], 1)
	binary.BigEndian.PutUint16(varData[6:], 0)
	for i, d := range deltas {
		binary.BigEndian.PutUint16(varData[8+i*2:], uint16(d))
	}
	return buildIVSWithOffsets(regionList, [][]byte{varData})
}

func buildHVARTable(storeData []byte) []byte {
	header := make([]byte, 20)
	binary.BigEndian.PutUint16(header[0:], 1)
	binary.BigEndian.PutUint32(header[4:], 20)
	// no advance/lsb/rsb mapping offsets: implicit glyph-ID addressing.
	return append(header, storeData...)
}

func TestHVARImplicitGlyphIDAddressing(t *testing.T) {
	store := buildSingleRegionStore([]int16{0, 50, -25})
	data := buildHVARTable(store)

	hvar, err := ParseHVAR(data)
	if err != nil {
		t.Fatalf("ParseHVAR: %v", err)
	}
	atPeak := []NormalizedCoordinate{F2Dot14FromFloat32(1.0)}
	if v, ok := hvar.AdvanceDelta(1, atPeak); !ok || v != 50 {
		t.Errorf("AdvanceDelta(gid 1) = (%v,%v), want (50,true)", v, ok)
	}
	if v, ok := hvar.AdvanceDelta(2, atPeak); !ok || v != -25 {
		t.Errorf("AdvanceDelta(gid 2) = (%v,%v), want (-25,true)", v, ok)
	}
	atDefault := []NormalizedCoordinate{0}
	if v, ok := hvar.AdvanceDelta(1, atDefault); !ok || v != 0 {
		t.Errorf("AdvanceDelta(default coords) = (%v,%v), want (0,true)", v, ok)
	}
	// No sideBearingMap configured: SideBearingDelta always reports absent.
	if _, ok := hvar.SideBearingDelta(1, atPeak); ok {
		t.Errorf("SideBearingDelta without an lsb map should report not-found")
	}
}

// TestHVARIntermediateRegionIsZeroAtDefaultCoordinate pins testable
// property §8.10: every variation delta must be zero at the default
// (all-zero) normalized coordinate, including for a region that straddles
// zero (start<0, end>0, peak!=0), where the plain tent formula would
// otherwise yield a nonzero scalar.
func TestHVARIntermediateRegionIsZeroAtDefaultCoordinate(t *testing.T) {
	store := buildIntermediateRegionStore([]int16{100})
	data := buildHVARTable(store)

	hvar, err := ParseHVAR(data)
	if err != nil {
		t.Fatalf("ParseHVAR: %v", err)
	}
	atDefault := []NormalizedCoordinate{0}
	if v, ok := hvar.AdvanceDelta(0, atDefault); !ok || v != 0 {
		t.Errorf("AdvanceDelta(default coords, intermediate region) = (%v,%v), want (0,true)", v, ok)
	}
}

func TestMVARValueTagLookup(t *testing.T) {
	store := buildSingleRegionStore([]int16{10})
	header := make([]byte, 12)
	binary.BigEndian.PutUint16(header[0:], 1)
	binary.BigEndian.PutUint16(header[6:], 8)  // valueRecordSize
	binary.BigEndian.PutUint16(header[8:], 1)  // valueRecordCount
	binary.BigEndian.PutUint16(header[10:], 12+8)

	undoTag := MakeTag('u', 'n', 'd', 'o')
	record := make([]byte, 8)
	binary.BigEndian.PutUint32(record[0:], uint32(undoTag))
	binary.BigEndian.PutUint16(record[4:], 0) // outerIndex
	binary.BigEndian.PutUint16(record[6:], 0) // innerIndex

	data := append(header, record...)
	data = append(data, store...)

	mvar, err := ParseMVAR(data)
	if err != nil {
		t.Fatalf("ParseMVAR: %v", err)
	}
	atPeak := []NormalizedCoordinate{F2Dot14FromFloat32(1.0)}
	if v, ok := mvar.Delta(undoTag, atPeak); !ok || v != 10 {
		t.Errorf("Delta(undo) = (%v,%v), want (10,true)", v, ok)
	}
	if _, ok := mvar.Delta(MakeTag('x', 'x', 'x', 'x'), atPeak); ok {
		t.Errorf("Delta(unknown tag) found, want not found")
	}
}
