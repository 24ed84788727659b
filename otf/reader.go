package otf

import "encoding/binary"

// Reader is a bounds-checked, big-endian cursor over a borrowed byte slice.
// It is the only place bounds logic lives: every typed read validates its
// span against the underlying slice before touching it, and no partial
// read ever advances the cursor. A Reader never allocates.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for sequential reading starting at offset 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Data returns the full underlying slice (not just the unread remainder).
func (r *Reader) Data() []byte { return r.data }

// Pos returns the current cursor offset.
func (r *Reader) Pos() int { return r.pos }

// Len returns the total length of the underlying slice.
func (r *Reader) Len() int { return len(r.data) }

// AtEnd reports whether the cursor has consumed the whole slice.
func (r *Reader) AtEnd() bool { return r.pos >= len(r.data) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

// SetPos seeks to an absolute offset. Returns false (no-op) if out of range.
func (r *Reader) SetPos(pos int) bool {
	if pos < 0 || pos > len(r.data) {
		return false
	}
	r.pos = pos
	return true
}

// Advance skips n bytes. Returns false (no-op) if it would run past the end.
func (r *Reader) Advance(n int) bool {
	if n < 0 || r.pos+n > len(r.data) {
		return false
	}
	r.pos += n
	return true
}

// Bytes reads n raw bytes and advances. ok is false (no partial read
// committed) if the span does not fit.
func (r *Reader) Bytes(n int) (b []byte, ok bool) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, false
	}
	b = r.data[r.pos : r.pos+n]
	r.pos += n
	return b, true
}

// U8 reads an unsigned byte.
func (r *Reader) U8() (uint8, bool) {
	if r.pos+1 > len(r.data) {
		return 0, false
	}
	v := r.data[r.pos]
	r.pos++
	return v, true
}

// I8 reads a signed byte.
func (r *Reader) I8() (int8, bool) {
	v, ok := r.U8()
	return int8(v), ok
}

// U16 reads a big-endian uint16.
func (r *Reader) U16() (uint16, bool) {
	if r.pos+2 > len(r.data) {
		return 0, false
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, true
}

// I16 reads a big-endian int16.
func (r *Reader) I16() (int16, bool) {
	v, ok := r.U16()
	return int16(v), ok
}

// U24 reads a big-endian 24-bit unsigned integer.
func (r *Reader) U24() (uint32, bool) {
	if r.pos+3 > len(r.data) {
		return 0, false
	}
	v := uint32(r.data[r.pos])<<16 | uint32(r.data[r.pos+1])<<8 | uint32(r.data[r.pos+2])
	r.pos += 3
	return v, true
}

// U32 reads a big-endian uint32.
func (r *Reader) U32() (uint32, bool) {
	if r.pos+4 > len(r.data) {
		return 0, false
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, true
}

// I32 reads a big-endian int32.
func (r *Reader) I32() (int32, bool) {
	v, ok := r.U32()
	return int32(v), ok
}

// Offset32 reads a big-endian uint32 used as a table-relative offset.
func (r *Reader) Offset32() (uint32, bool) { return r.U32() }

// Tag reads a four-byte tag.
func (r *Reader) Tag() (Tag, bool) {
	v, ok := r.U32()
	return Tag(v), ok
}

// GlyphID reads a big-endian glyph identifier.
func (r *Reader) GlyphID() (GlyphID, bool) {
	v, ok := r.U16()
	return GlyphID(v), ok
}

// Fixed reads a 16.16 fixed-point number.
func (r *Reader) Fixed() (Fixed, bool) {
	v, ok := r.I32()
	return Fixed(v), ok
}

// F2Dot14 reads a 2.14 fixed-point number.
func (r *Reader) F2Dot14() (F2Dot14, bool) {
	v, ok := r.I16()
	return F2Dot14(v), ok
}

// SkipU16 advances past n uint16 fields.
func (r *Reader) SkipU16(n int) bool { return r.Advance(n * 2) }

// U16At reads a big-endian uint16 at an absolute offset without moving
// the cursor.
func (r *Reader) U16At(off int) (uint16, bool) {
	if off < 0 || off+2 > len(r.data) {
		return 0, false
	}
	return binary.BigEndian.Uint16(r.data[off:]), true
}

// I16At reads a big-endian int16 at an absolute offset without moving
// the cursor.
func (r *Reader) I16At(off int) (int16, bool) {
	v, ok := r.U16At(off)
	return int16(v), ok
}

// U32At reads a big-endian uint32 at an absolute offset without moving
// the cursor.
func (r *Reader) U32At(off int) (uint32, bool) {
	if off < 0 || off+4 > len(r.data) {
		return 0, false
	}
	return binary.BigEndian.Uint32(r.data[off:]), true
}

// U8At reads a byte at an absolute offset without moving the cursor.
func (r *Reader) U8At(off int) (uint8, bool) {
	if off < 0 || off >= len(r.data) {
		return 0, false
	}
	return r.data[off], true
}

// Sub returns a bounded sub-slice [off, off+length) of the root buffer,
// independent of the cursor. The returned slice shares storage and must
// never outlive the root buffer, matching the rest of the package.
func Sub(data []byte, off, length int) ([]byte, bool) {
	if off < 0 || length < 0 || off > len(data) || length > len(data)-off {
		return nil, false
	}
	return data[off : off+length], true
}

// SubReader returns a Reader over a bounded sub-range of the data.
func (r *Reader) SubReader(off, length int) (*Reader, bool) {
	b, ok := Sub(r.data, off, length)
	if !ok {
		return nil, false
	}
	return NewReader(b), true
}

// SubReaderFrom returns a Reader over data[off:].
func (r *Reader) SubReaderFrom(off int) (*Reader, bool) {
	if off < 0 || off > len(r.data) {
		return nil, false
	}
	return NewReader(r.data[off:]), true
}
