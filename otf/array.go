package otf

import "encoding/binary"

// LazyArrayU16 is a random-access, forward-iterable view over a packed
// big-endian array of uint16, without copying or decoding eagerly.
type LazyArrayU16 struct {
	data []byte
}

// NewLazyArrayU16 builds a LazyArrayU16 of length n starting at data[0:n*2].
// ok is false if data is too short.
func NewLazyArrayU16(data []byte, n int) (LazyArrayU16, bool) {
	if n < 0 || n*2 > len(data) {
		return LazyArrayU16{}, false
	}
	return LazyArrayU16{data: data[:n*2]}, true
}

// Len returns the number of records.
func (a LazyArrayU16) Len() int { return len(a.data) / 2 }

// Get returns the i-th uint16, or (0, false) if i is out of range.
func (a LazyArrayU16) Get(i int) (uint16, bool) {
	if i < 0 || i >= a.Len() {
		return 0, false
	}
	return binary.BigEndian.Uint16(a.data[i*2:]), true
}

// BinarySearch returns the index of the first record equal to key under
// ascending order, or (0, false) if none matches.
func (a LazyArrayU16) BinarySearch(key uint16) (int, bool) {
	lo, hi := 0, a.Len()
	for lo < hi {
		mid := (lo + hi) / 2
		v, _ := a.Get(mid)
		if v < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < a.Len() {
		if v, _ := a.Get(lo); v == key {
			return lo, true
		}
	}
	return 0, false
}

// LazyArrayU32 is the uint32 counterpart of LazyArrayU16.
type LazyArrayU32 struct {
	data []byte
}

// NewLazyArrayU32 builds a LazyArrayU32 of length n starting at data[0:n*4].
func NewLazyArrayU32(data []byte, n int) (LazyArrayU32, bool) {
	if n < 0 || n*4 > len(data) {
		return LazyArrayU32{}, false
	}
	return LazyArrayU32{data: data[:n*4]}, true
}

// Len returns the number of records.
func (a LazyArrayU32) Len() int { return len(a.data) / 4 }

// Get returns the i-th uint32, or (0, false) if i is out of range.
func (a LazyArrayU32) Get(i int) (uint32, bool) {
	if i < 0 || i >= a.Len() {
		return 0, false
	}
	return binary.BigEndian.Uint32(a.data[i*4:]), true
}

// RecordArray is a random-access view over a packed array of fixed-size
// records whose contents are opaque to the array itself; callers decode
// each record slice with their own accessor. get is O(1); BinarySearchBy
// runs a standard binary search driven by a caller-supplied comparator so
// any record layout can expose a sorted-key lookup without the array
// needing to know the key's type or offset.
type RecordArray struct {
	data       []byte
	recordSize int
}

// NewRecordArray builds a RecordArray of n records of recordSize bytes each.
func NewRecordArray(data []byte, n, recordSize int) (RecordArray, bool) {
	if n < 0 || recordSize <= 0 || n*recordSize > len(data) {
		return RecordArray{}, false
	}
	return RecordArray{data: data[:n*recordSize], recordSize: recordSize}, true
}

// Len returns the number of records.
func (a RecordArray) Len() int {
	if a.recordSize == 0 {
		return 0
	}
	return len(a.data) / a.recordSize
}

// Get returns the byte slice of the i-th record, or (nil, false) if out
// of range.
func (a RecordArray) Get(i int) ([]byte, bool) {
	if i < 0 || i >= a.Len() {
		return nil, false
	}
	off := i * a.recordSize
	return a.data[off : off+a.recordSize], true
}

// BinarySearchBy returns the index of the record for which cmp reports 0,
// assuming records are ordered so cmp returns <0, 0, >0 as the record
// compares less than, equal to, or greater than the target.
func (a RecordArray) BinarySearchBy(cmp func(record []byte) int) (int, []byte, bool) {
	lo, hi := 0, a.Len()
	for lo < hi {
		mid := (lo + hi) / 2
		rec, _ := a.Get(mid)
		c := cmp(rec)
		switch {
		case c < 0:
			lo = mid + 1
		case c > 0:
			hi = mid
		default:
			return mid, rec, true
		}
	}
	return 0, nil, false
}
