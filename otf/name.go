package otf

import (
	"golang.org/x/text/encoding/unicode"
)

// NameTable exposes the name table's (platform, encoding, language, name
// ID) -> string records (§5's supplemented features). Records are decoded
// lazily: Platforms 0 and 3 (Unicode/Windows) are UTF-16BE and decoded via
// golang.org/x/text; Macintosh (platform 1) records are decoded as Latin-1
// since that covers the common western Mac Roman subset without pulling
// in a dedicated Mac Roman codec.
type NameTable struct {
	data    []byte
	records []nameRecord
}

type nameRecord struct {
	platformID, encodingID, languageID, nameID uint16
	offset, length                             uint16
}

func ParseName(data []byte) (*NameTable, error) {
	r := NewReader(data)
	if _, ok := r.U16(); !ok { // format
		return nil, ErrInvalidTable
	}
	count, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}
	stringOffset, ok := r.U16()
	if !ok {
		return nil, ErrInvalidTable
	}

	recs := make([]nameRecord, count)
	for i := range recs {
		platformID, ok1 := r.U16()
		encodingID, ok2 := r.U16()
		languageID, ok3 := r.U16()
		nameID, ok4 := r.U16()
		length, ok5 := r.U16()
		offset, ok6 := r.U16()
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
			return nil, ErrReadOutOfBounds
		}
		recs[i] = nameRecord{
			platformID: platformID, encodingID: encodingID, languageID: languageID,
			nameID: nameID, offset: offset, length: length,
		}
	}

	strData, ok := Sub(data, int(stringOffset), len(data)-int(stringOffset))
	if !ok {
		return nil, ErrInvalidOffset
	}
	return &NameTable{data: strData, records: recs}, nil
}

// Get decodes the first record matching nameID, on any platform, that
// decodes successfully, returning ("", false) if there is none. Records of
// platform 0 and platform 3 (Windows) decode as UTF-16BE; all other
// platforms, including 1 (Macintosh), decode as single-byte.
func (n *NameTable) Get(nameID uint16) (string, bool) {
	for _, rec := range n.records {
		if rec.nameID != nameID {
			continue
		}
		raw, ok := Sub(n.data, int(rec.offset), int(rec.length))
		if !ok {
			continue
		}
		s, ok := decodeNameRecord(rec.platformID, raw)
		if ok {
			return s, true
		}
	}
	return "", false
}

func decodeNameRecord(platformID uint16, raw []byte) (string, bool) {
	if platformID == 0 || platformID == 3 {
		dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		out, err := dec.Bytes(raw)
		if err != nil {
			return "", false
		}
		return string(out), true
	}
	// Macintosh / other: treat as Latin-1, which round-trips byte-for-byte
	// for the ASCII-range subfamily/full names the supplemented name
	// accessor is expected to serve.
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes), true
}
