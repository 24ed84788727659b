package otf

import (
	"encoding/binary"
	"testing"
)

func buildFvarTable(axes []VariationAxis) []byte {
	const axisSize = 20
	header := make([]byte, 16)
	binary.BigEndian.PutUint16(header[0:], 1)             // majorVersion
	binary.BigEndian.PutUint16(header[2:], 0)              // minorVersion
	binary.BigEndian.PutUint16(header[4:], 16)              // axesArrayOffset
	binary.BigEndian.PutUint16(header[8:], uint16(len(axes)))
	binary.BigEndian.PutUint16(header[10:], axisSize)
	binary.BigEndian.PutUint16(header[12:], 0) // instanceCount
	binary.BigEndian.PutUint16(header[14:], 0) // instanceSize

	data := header
	for _, a := range axes {
		rec := make([]byte, axisSize)
		binary.BigEndian.PutUint32(rec[0:], uint32(a.Tag))
		binary.BigEndian.PutUint32(rec[4:], uint32(FixedFromFloat32(a.MinValue)))
		binary.BigEndian.PutUint32(rec[8:], uint32(FixedFromFloat32(a.Default)))
		binary.BigEndian.PutUint32(rec[12:], uint32(FixedFromFloat32(a.MaxValue)))
		binary.BigEndian.PutUint16(rec[16:], a.Flags)
		binary.BigEndian.PutUint16(rec[18:], a.AxisNameID)
		data = append(data, rec...)
	}
	return data
}

func TestFvarAxesAndNormalize(t *testing.T) {
	wght := MakeTag('w', 'g', 'h', 't')
	data := buildFvarTable([]VariationAxis{
		{Tag: wght, MinValue: 100, Default: 400, MaxValue: 900, AxisNameID: 256},
	})

	fvar, err := ParseFvar(data)
	if err != nil {
		t.Fatalf("ParseFvar: %v", err)
	}
	axes := fvar.Axes()
	if len(axes) != 1 || axes[0].Tag != wght {
		t.Fatalf("Axes() = %+v, want one wght axis", axes)
	}

	idx, ok := fvar.AxisIndex(wght)
	if !ok || idx != 0 {
		t.Fatalf("AxisIndex(wght) = (%d, %v), want (0, true)", idx, ok)
	}

	if n := fvar.Normalize(idx, 400); n.Float32() != 0 {
		t.Errorf("Normalize(default) = %v, want 0", n.Float32())
	}
	if n := fvar.Normalize(idx, 900); n.Float32() != 1 {
		t.Errorf("Normalize(max) = %v, want 1", n.Float32())
	}
	if n := fvar.Normalize(idx, 100); n.Float32() != -1 {
		t.Errorf("Normalize(min) = %v, want -1", n.Float32())
	}
	// Out-of-range values clamp to the axis's declared bounds.
	if n := fvar.Normalize(idx, 2000); n.Float32() != 1 {
		t.Errorf("Normalize(over-max) = %v, want clamped to 1", n.Float32())
	}
	if n := fvar.Normalize(idx, 650); n.Float32() <= 0 || n.Float32() >= 1 {
		t.Errorf("Normalize(650) = %v, want strictly between 0 and 1", n.Float32())
	}
}

func TestFvarAxisIndexMissing(t *testing.T) {
	data := buildFvarTable([]VariationAxis{{Tag: MakeTag('w', 'g', 'h', 't'), MinValue: 0, Default: 0, MaxValue: 1}})
	fvar, err := ParseFvar(data)
	if err != nil {
		t.Fatalf("ParseFvar: %v", err)
	}
	if _, ok := fvar.AxisIndex(MakeTag('i', 't', 'a', 'l')); ok {
		t.Errorf("AxisIndex(ital) found on a wght-only font, want not found")
	}
}
