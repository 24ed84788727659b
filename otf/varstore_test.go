package otf

import (
	"encoding/binary"
	"testing"
)

func buildIVSWithOffsets(regionList []byte, subtables [][]byte) []byte {
	headerSize := 8 + len(subtables)*4
	regionListOff := headerSize
	header := make([]byte, headerSize)
	binary.BigEndian.PutUint16(header[0:], 1)
	binary.BigEndian.PutUint32(header[2:], uint32(regionListOff))
	binary.BigEndian.PutUint16(header[6:], uint16(len(subtables)))

	data := append([]byte{}, header...)
	data = append(data, regionList...)
	offsets := make([]uint32, len(subtables))
	cursor := len(data)
	for i, st := range subtables {
		offsets[i] = uint32(cursor)
		data = append(data, st...)
		cursor += len(st)
	}
	for i, off := range offsets {
		binary.BigEndian.PutUint32(data[8+i*4:], off)
	}
	return data
}

func TestItemVariationStoreDeltaAt(t *testing.T) {
	regionList := make([]byte, 4+6)
	binary.BigEndian.PutUint16(regionList[0:], 1)
	binary.BigEndian.PutUint16(regionList[2:], 1)
	binary.BigEndian.PutUint16(regionList[4:], 0)
	binary.BigEndian.PutUint16(regionList[6:], 1<<14)
	binary.BigEndian.PutUint16(regionList[8:], 1<<14)

	varData := make([]byte, 6+2+2)
	binary.BigEndian.PutUint16(varData[0:], 1)
	binary.BigEndian.PutUint16(varData[2:], 1)
	binary.BigEndian.PutUint16(varData[4:], 1)
	binary.BigEndian.PutUint16(varData[6:], 0)
	binary.BigEndian.PutUint16(varData[8:], uint16(int16(100)))

	data := buildIVSWithOffsets(regionList, [][]byte{varData})
	store, err := ParseItemVariationStore(data)
	if err != nil {
		t.Fatalf("ParseItemVariationStore: %v", err)
	}

	atDefault := []NormalizedCoordinate{0}
	if v, ok := store.DeltaAt(0, 0, atDefault); !ok || v != 0 {
		t.Errorf("DeltaAt(default) = (%v, %v), want (0, true)", v, ok)
	}

	atPeak := []NormalizedCoordinate{F2Dot14FromFloat32(1.0)}
	if v, ok := store.DeltaAt(0, 0, atPeak); !ok || v != 100 {
		t.Errorf("DeltaAt(peak) = (%v, %v), want (100, true)", v, ok)
	}

	atHalf := []NormalizedCoordinate{F2Dot14FromFloat32(0.5)}
	if v, ok := store.DeltaAt(0, 0, atHalf); !ok || v < 40 || v > 60 {
		t.Errorf("DeltaAt(half) = (%v, %v), want ~50", v, ok)
	}

	if _, ok := store.DeltaAt(5, 0, atPeak); ok {
		t.Errorf("DeltaAt with out-of-range outer index should fail")
	}
}

func TestVarRegionScalarAtIntermediateRegion(t *testing.T) {
	// start=-1, peak=0.5, end=1: straddles zero with a nonzero peak. At the
	// default coordinate (0) this must contribute 1.0, not the tent-formula
	// value (0-(-1))/(0.5-(-1)) = 0.667 a naive implementation would yield.
	reg := varRegion{axes: []regionAxis{{
		startCoord: F2Dot14FromFloat32(-1),
		peakCoord:  F2Dot14FromFloat32(0.5),
		endCoord:   F2Dot14FromFloat32(1),
	}}}
	coords := []NormalizedCoordinate{F2Dot14FromFloat32(0)}
	if s := reg.scalarAt(coords); s != 1 {
		t.Errorf("scalarAt(0) on an intermediate region = %v, want 1.0", s)
	}
}

func TestVarRegionScalarAtMalformedRegion(t *testing.T) {
	// peak < start is not a valid tent; it must contribute 1.0 rather than
	// feed a negative or inverted ratio into the tent formula.
	reg := varRegion{axes: []regionAxis{{
		startCoord: F2Dot14FromFloat32(0.5),
		peakCoord:  F2Dot14FromFloat32(0.2),
		endCoord:   F2Dot14FromFloat32(1),
	}}}
	coords := []NormalizedCoordinate{F2Dot14FromFloat32(0.3)}
	if s := reg.scalarAt(coords); s != 1 {
		t.Errorf("scalarAt on a malformed region (peak < start) = %v, want 1.0", s)
	}
}

func TestDeltaSetIndexMapFormat0(t *testing.T) {
	// entryFormat: entrySize=2 bytes (bits 4-5 = 1), innerBits=12 (bits 0-3=11),
	// leaving the top 4 bits of the 16-bit raw value for the outer index.
	data := make([]byte, 4+4*2)
	data[0] = 0 // format 0
	data[1] = byte(1<<4 | 11)
	binary.BigEndian.PutUint16(data[2:], 4) // mapCount
	binary.BigEndian.PutUint16(data[4:], 0x0003)  // outer=0, inner=3
	binary.BigEndian.PutUint16(data[6:], 0x1005)  // outer=1, inner=5
	binary.BigEndian.PutUint16(data[8:], 0x0001)  // outer=0, inner=1
	binary.BigEndian.PutUint16(data[10:], 0x0002) // outer=0, inner=2

	m, err := ParseDeltaSetIndexMap(data, 0)
	if err != nil {
		t.Fatalf("ParseDeltaSetIndexMap: %v", err)
	}
	outer, inner, ok := m.Map(1)
	if !ok || outer != 1 || inner != 5 {
		t.Errorf("Map(1) = (%d,%d,%v), want (1,5,true)", outer, inner, ok)
	}
	// Index past mapCount clamps to the last entry.
	outer, inner, ok = m.Map(100)
	if !ok || outer != 0 || inner != 2 {
		t.Errorf("Map(100) (out of range) = (%d,%d,%v), want clamp to last entry (0,2,true)", outer, inner, ok)
	}
}
