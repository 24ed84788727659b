package otf

// Fvar describes a variable font's design axes and named instances (§4.8).
type Fvar struct {
	axes      []VariationAxis
	instances []variationInstance
}

// VariationAxis is one fvar axis record in user-space units.
type VariationAxis struct {
	Tag                      Tag
	MinValue, Default, MaxValue float32
	Flags                    uint16
	AxisNameID               uint16
}

type variationInstance struct {
	subfamilyNameID uint16
	coords          []float32 // user-space, one per axis
	postScriptNameID uint16
}

// ParseFvar parses the fvar table.
func ParseFvar(data []byte) (*Fvar, error) {
	r := NewReader(data)
	if _, ok := r.U16(); !ok { // majorVersion
		return nil, ErrInvalidTable
	}
	if _, ok := r.U16(); !ok { // minorVersion
		return nil, ErrInvalidTable
	}
	axesArrayOffset, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	r.Advance(2) // reserved
	axisCount, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	axisSize, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	instanceCount, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	instanceSize, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}

	ar, ok := r.SubReaderFrom(int(axesArrayOffset))
	if !ok {
		return nil, ErrInvalidOffset
	}
	axes := make([]VariationAxis, axisCount)
	for i := range axes {
		start := i * int(axisSize)
		if !ar.SetPos(start) {
			return nil, ErrReadOutOfBounds
		}
		tag, ok1 := ar.Tag()
		minV, ok2 := ar.Fixed()
		defV, ok3 := ar.Fixed()
		maxV, ok4 := ar.Fixed()
		flags, ok5 := ar.U16()
		nameID, ok6 := ar.U16()
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
			return nil, ErrReadOutOfBounds
		}
		axes[i] = VariationAxis{
			Tag: tag, MinValue: minV.Float32(), Default: defV.Float32(),
			MaxValue: maxV.Float32(), Flags: flags, AxisNameID: nameID,
		}
	}

	instancesStart := int(axesArrayOffset) + int(axisCount)*int(axisSize)
	ir, ok := r.SubReaderFrom(instancesStart)
	if !ok {
		return nil, ErrInvalidOffset
	}
	instances := make([]variationInstance, instanceCount)
	for i := range instances {
		start := i * int(instanceSize)
		if !ir.SetPos(start) {
			return nil, ErrReadOutOfBounds
		}
		subfamilyNameID, ok1 := ir.U16()
		ir.Advance(2) // flags, reserved
		coords := make([]float32, axisCount)
		for j := range coords {
			f, ok := ir.Fixed()
			if !ok {
				return nil, ErrReadOutOfBounds
			}
			coords[j] = f.Float32()
		}
		var psNameID uint16
		if int(instanceSize) >= 4+int(axisCount)*4+2 {
			if v, ok := ir.U16(); ok {
				psNameID = v
			}
		}
		if !ok1 {
			return nil, ErrReadOutOfBounds
		}
		instances[i] = variationInstance{subfamilyNameID: subfamilyNameID, coords: coords, postScriptNameID: psNameID}
	}

	return &Fvar{axes: axes, instances: instances}, nil
}

// Axes returns the font's design axes in declaration order.
func (f *Fvar) Axes() []VariationAxis { return f.axes }

// AxisIndex finds an axis by tag.
func (f *Fvar) AxisIndex(tag Tag) (int, bool) {
	for i, a := range f.axes {
		if a.Tag == tag {
			return i, true
		}
	}
	return 0, false
}

// Normalize converts one axis's user-space value into a normalized -1..1
// F2Dot14 coordinate, per the standard (value - default) / (max|min -
// default) piecewise scaling, clamped to the axis's declared range.
func (f *Fvar) Normalize(axisIndex int, userValue float32) F2Dot14 {
	a := f.axes[axisIndex]
	v := clampF32(userValue, a.MinValue, a.MaxValue)
	var n float32
	switch {
	case v < a.Default:
		if a.Default == a.MinValue {
			n = 0
		} else {
			n = (v - a.Default) / (a.Default - a.MinValue)
		}
	case v > a.Default:
		if a.MaxValue == a.Default {
			n = 0
		} else {
			n = (v - a.Default) / (a.MaxValue - a.Default)
		}
	default:
		n = 0
	}
	return F2Dot14FromFloat32(n)
}
