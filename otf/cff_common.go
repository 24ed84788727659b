package otf

// cffIndex is a CFF INDEX structure: a packed array of variable-length
// byte strings addressed by a table of offsets, per the CFF1/CFF2 common
// substrate described in §4.6.
type cffIndex struct {
	data       []byte // the offsets-and-data region, for offset indexing
	offSize    int
	offsets    []byte // count+1 raw offsets, offSize bytes each
	dataStart  int    // byte position (within data) where object data begins
	count      int
}

func (idx cffIndex) Len() int { return idx.count }

func (idx cffIndex) offsetAt(i int) (int, bool) {
	if i < 0 || i > idx.count {
		return 0, false
	}
	off := i * idx.offSize
	if off+idx.offSize > len(idx.offsets) {
		return 0, false
	}
	var v int
	for k := 0; k < idx.offSize; k++ {
		v = v<<8 | int(idx.offsets[off+k])
	}
	return v, true
}

// Get returns the i'th object's bytes (0-based).
func (idx cffIndex) Get(i int) ([]byte, bool) {
	start, ok1 := idx.offsetAt(i)
	end, ok2 := idx.offsetAt(i + 1)
	if !ok1 || !ok2 || end < start {
		return nil, false
	}
	// CFF offsets are 1-based relative to the byte preceding object data.
	return Sub(idx.data, idx.dataStart+start-1, end-start)
}

// parseCFFIndex reads a CFF1-style INDEX (16-bit count) starting at r's
// current position, leaving the cursor just past the INDEX.
func parseCFFIndex(r *Reader) (cffIndex, error) {
	count, ok := r.U16()
	if !ok {
		return cffIndex{}, ErrReadOutOfBounds
	}
	if count == 0 {
		return cffIndex{count: 0}, nil
	}
	offSize, ok := r.U8()
	if !ok || offSize < 1 || offSize > 4 {
		return cffIndex{}, ErrInvalidTable
	}
	offBytes, ok := r.Bytes((int(count) + 1) * int(offSize))
	if !ok {
		return cffIndex{}, ErrReadOutOfBounds
	}
	idx := cffIndex{offSize: int(offSize), offsets: offBytes, count: int(count), data: r.Data()}
	dataStart := r.Pos()
	idx.dataStart = dataStart

	lastOff, ok := idx.offsetAt(int(count))
	if !ok {
		return cffIndex{}, ErrInvalidTable
	}
	if !r.Advance(lastOff - 1) {
		return cffIndex{}, ErrReadOutOfBounds
	}
	return idx, nil
}

// parseCFF2Index reads a CFF2-style INDEX (32-bit count), otherwise
// identical to CFF1's.
func parseCFF2Index(r *Reader) (cffIndex, error) {
	count, ok := r.U32()
	if !ok {
		return cffIndex{}, ErrReadOutOfBounds
	}
	if count == 0 {
		return cffIndex{count: 0}, nil
	}
	offSize, ok := r.U8()
	if !ok || offSize < 1 || offSize > 4 {
		return cffIndex{}, ErrInvalidTable
	}
	offBytes, ok := r.Bytes((int(count) + 1) * int(offSize))
	if !ok {
		return cffIndex{}, ErrReadOutOfBounds
	}
	idx := cffIndex{offSize: int(offSize), offsets: offBytes, count: int(count), data: r.Data()}
	idx.dataStart = r.Pos()

	lastOff, ok := idx.offsetAt(int(count))
	if !ok {
		return cffIndex{}, ErrInvalidTable
	}
	if !r.Advance(lastOff - 1) {
		return cffIndex{}, ErrReadOutOfBounds
	}
	return idx, nil
}

// cffDict is a parsed CFF DICT: operator -> operand list. Real-valued
// operands (type 30) are not used by anything this package reads and are
// skipped rather than decoded.
type cffDict map[uint16][]float64

// parseCFFDict decodes a DICT's byte region into operator->operands pairs.
// Two-byte operators are encoded as 1200+opcode to keep the key space flat.
func parseCFFDict(data []byte) (cffDict, error) {
	d := make(cffDict)
	var operands []float64
	r := NewReader(data)
	for !r.AtEnd() {
		b0, ok := r.U8()
		if !ok {
			return nil, ErrReadOutOfBounds
		}
		switch {
		case b0 <= 21 || b0 == 24 || b0 == 25 || b0 == 26 || b0 == 27:
			// 0-21 are CFF1's one-byte operators; CFF2 additionally assigns
			// 24 (vstore) in the otherwise-reserved 22-27 range, which the
			// DICT encoding still reserves for operators, never numbers.
			op := uint16(b0)
			if b0 == 12 {
				b1, ok := r.U8()
				if !ok {
					return nil, ErrReadOutOfBounds
				}
				op = 1200 + uint16(b1)
			}
			d[op] = operands
			operands = nil
		case b0 == 28:
			v, ok := r.I16()
			if !ok {
				return nil, ErrReadOutOfBounds
			}
			operands = append(operands, float64(v))
		case b0 == 29:
			v, ok := r.I32()
			if !ok {
				return nil, ErrReadOutOfBounds
			}
			operands = append(operands, float64(v))
		case b0 == 30:
			// Real number: nibble-encoded, variable length. Skip it.
			if _, err := skipCFFReal(r); err != nil {
				return nil, err
			}
			operands = append(operands, 0)
		case b0 >= 32 && b0 <= 246:
			operands = append(operands, float64(int(b0)-139))
		case b0 >= 247 && b0 <= 250:
			b1, ok := r.U8()
			if !ok {
				return nil, ErrReadOutOfBounds
			}
			operands = append(operands, float64((int(b0)-247)*256+int(b1)+108))
		case b0 >= 251 && b0 <= 254:
			b1, ok := r.U8()
			if !ok {
				return nil, ErrReadOutOfBounds
			}
			operands = append(operands, float64(-(int(b0)-251)*256-int(b1)-108))
		default:
			return nil, ErrInvalidTable
		}
	}
	return d, nil
}

func skipCFFReal(r *Reader) (struct{}, error) {
	for {
		b, ok := r.U8()
		if !ok {
			return struct{}{}, ErrReadOutOfBounds
		}
		lo, hi := b&0x0F, b>>4
		if lo == 0xF || hi == 0xF {
			return struct{}{}, nil
		}
	}
}

func (d cffDict) getInts(op uint16) ([]int, bool) {
	v, ok := d[op]
	if !ok {
		return nil, false
	}
	out := make([]int, len(v))
	for i, f := range v {
		out[i] = int(f)
	}
	return out, true
}

func (d cffDict) getInt(op uint16, def int) int {
	v, ok := d[op]
	if !ok || len(v) == 0 {
		return def
	}
	return int(v[0])
}

// subrBias implements the Type-2 charstring subroutine index bias: the
// caller's operand is shifted by 107 for fewer than 1240 subrs, 1131 for
// fewer than 33900, and 32768 otherwise (§4.6).
func subrBias(n int) int {
	switch {
	case n < 1240:
		return 107
	case n < 33900:
		return 1131
	default:
		return 32768
	}
}

// standardStrings holds the start of the CFF standard string table, SIDs
// 0-95 (".notdef" through "asciitilde"). The remaining standard SIDs are
// not present; sidToString returns "" for them.
var standardStrings = [...]string{
	".notdef", "space", "exclam", "quotedbl", "numbersign", "dollar",
	"percent", "ampersand", "quoteright", "parenleft", "parenright",
	"asterisk", "plus", "comma", "hyphen", "period", "slash", "zero",
	"one", "two", "three", "four", "five", "six", "seven", "eight",
	"nine", "colon", "semicolon", "less", "equal", "greater", "question",
	"at", "A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L",
	"M", "N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
	"bracketleft", "backslash", "bracketright", "asciicircum",
	"underscore", "quoteleft", "a", "b", "c", "d", "e", "f", "g", "h",
	"i", "j", "k", "l", "m", "n", "o", "p", "q", "r", "s", "t", "u", "v",
	"w", "x", "y", "z", "braceleft", "bar", "braceright", "asciitilde",
}

func sidToString(sid int) string {
	if sid >= 0 && sid < len(standardStrings) {
		return standardStrings[sid]
	}
	return ""
}

// cffCharset maps glyph ID -> SID (or CID, for CIDFonts), per §4.6.
type cffCharset struct {
	gidToSID []uint16 // index 0 is always .notdef (SID 0)
}

func (c cffCharset) sidForGID(gid GlyphID) (uint16, bool) {
	if int(gid) >= len(c.gidToSID) {
		return 0, false
	}
	return c.gidToSID[gid], true
}

// parseCFFCharset decodes charset formats 0, 1, 2. Offsets 0/1/2 mean the
// predefined ISOAdobe/Expert/ExpertSubset charsets, which we approximate
// as identity (SID == GID) since none of this package's supplemented
// features depend on exact predefined-charset name recovery.
func parseCFFCharset(data []byte, offset int, numGlyphs int) (cffCharset, error) {
	gidToSID := make([]uint16, numGlyphs)
	if offset == 0 || offset == 1 || offset == 2 {
		for i := range gidToSID {
			gidToSID[i] = uint16(i)
		}
		return cffCharset{gidToSID: gidToSID}, nil
	}

	r := NewReader(data)
	if !r.SetPos(offset) {
		return cffCharset{}, ErrInvalidOffset
	}
	format, ok := r.U8()
	if !ok {
		return cffCharset{}, ErrReadOutOfBounds
	}

	gidToSID[0] = 0 // .notdef
	gid := 1
	switch format {
	case 0:
		for gid < numGlyphs {
			sid, ok := r.U16()
			if !ok {
				return cffCharset{}, ErrReadOutOfBounds
			}
			gidToSID[gid] = sid
			gid++
		}
	case 1:
		for gid < numGlyphs {
			first, ok1 := r.U16()
			left, ok2 := r.U8()
			if !ok1 || !ok2 {
				return cffCharset{}, ErrReadOutOfBounds
			}
			for i := 0; i <= int(left) && gid < numGlyphs; i++ {
				gidToSID[gid] = first + uint16(i)
				gid++
			}
		}
	case 2:
		for gid < numGlyphs {
			first, ok1 := r.U16()
			left, ok2 := r.U16()
			if !ok1 || !ok2 {
				return cffCharset{}, ErrReadOutOfBounds
			}
			for i := 0; i <= int(left) && gid < numGlyphs; i++ {
				gidToSID[gid] = first + uint16(i)
				gid++
			}
		}
	default:
		return cffCharset{}, ErrInvalidFormat
	}
	return cffCharset{gidToSID: gidToSID}, nil
}

// cffFDSelect maps glyph ID -> Font DICT index, for CIDFonts (§4.6's CID
// local-subroutine resolution).
type cffFDSelect struct {
	format3Ranges []fdRange // sorted by first
	format0      []byte     // one fd index per glyph
	numGlyphs    int
}

type fdRange struct {
	first int
	fd    byte
}

func parseCFFFDSelect(data []byte, offset, numGlyphs int) (cffFDSelect, error) {
	r := NewReader(data)
	if !r.SetPos(offset) {
		return cffFDSelect{}, ErrInvalidOffset
	}
	format, ok := r.U8()
	if !ok {
		return cffFDSelect{}, ErrReadOutOfBounds
	}
	switch format {
	case 0:
		b, ok := r.Bytes(numGlyphs)
		if !ok {
			return cffFDSelect{}, ErrReadOutOfBounds
		}
		return cffFDSelect{format0: b, numGlyphs: numGlyphs}, nil
	case 3:
		nRanges, ok := r.U16()
		if !ok {
			return cffFDSelect{}, ErrReadOutOfBounds
		}
		ranges := make([]fdRange, 0, nRanges)
		for i := 0; i < int(nRanges); i++ {
			first, ok1 := r.U16()
			fd, ok2 := r.U8()
			if !ok1 || !ok2 {
				return cffFDSelect{}, ErrReadOutOfBounds
			}
			ranges = append(ranges, fdRange{first: int(first), fd: fd})
		}
		if _, ok := r.U16(); !ok { // sentinel
			return cffFDSelect{}, ErrReadOutOfBounds
		}
		return cffFDSelect{format3Ranges: ranges, numGlyphs: numGlyphs}, nil
	default:
		return cffFDSelect{}, ErrInvalidFormat
	}
}

func (s cffFDSelect) fdForGID(gid GlyphID) (byte, bool) {
	if int(gid) >= s.numGlyphs {
		return 0, false
	}
	if s.format0 != nil {
		return s.format0[gid], true
	}
	ranges := s.format3Ranges
	lo, hi := 0, len(ranges)
	for lo < hi {
		mid := (lo + hi) / 2
		if ranges[mid].first <= int(gid) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return 0, false
	}
	return ranges[lo-1].fd, true
}

// Standard CFF1 top/private DICT operators this package consults.
const (
	dictOpCharstrings   = 17
	dictOpCharset       = 15
	dictOpPrivate       = 18
	dictOpFDArray       = 1236
	dictOpFDSelect      = 1237
	dictOpROS           = 1230
	dictOpSubrs         = 19
	dictOpDefaultWidthX = 20
	dictOpNominalWidthX = 21
	dictOpVstore        = 24 // CFF2 only: Variation Store offset
	dictOpFontMatrix    = 1207
)
