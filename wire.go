// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package linearbuffers implements the wire format, encoder runtime and
// decoder runtime of spec.md §4.C/§4.D/§4.E: a little-endian, offset-based
// table encoding in which every field is reachable by constant-cost
// pointer arithmetic into a contiguous buffer, with no alignment padding
// beyond what each item's own layout implies.
package linearbuffers

import "encoding/binary"

// VectorKind distinguishes the three vector wire shapes of spec.md §4.C:
// a scalar vector (raw elements inline), a string vector (offsets to
// strings) and a table vector (offsets to tables).
type VectorKind int

const (
	// ScalarVector holds raw little-endian elements of a fixed width.
	ScalarVector VectorKind = iota
	// StringVector holds 8-byte offsets, each pointing to a String.
	StringVector
	// TableVector holds 8-byte offsets, each pointing to a Table.
	TableVector
)

// OffsetWidth is the size in bytes of every offset, count and length field
// in the wire format: string/table/vector slots, vector headers and
// string-length prefixes are all u64.
const OffsetWidth = 8

// BitmapSize returns ceil(fieldCount/8), the size in bytes of a table's
// presence bitmap.
func BitmapSize(fieldCount int) int {
	return (fieldCount + 7) / 8
}

// bitSet reports whether bit i (0-indexed, LSB-first within each byte per
// spec.md §9) is set in bitmap.
func bitSet(bitmap []byte, i int) bool {
	byteIdx := i / 8
	if byteIdx >= len(bitmap) {
		return false
	}
	return bitmap[byteIdx]&(1<<uint(i%8)) != 0
}

// setBit sets bit i (LSB-first) in bitmap.
func setBit(bitmap []byte, i int) {
	bitmap[i/8] |= 1 << uint(i%8)
}

// putScalar writes the low `width` bytes of v, little-endian, into dst.
// width must be one of 1, 2, 4, 8.
func putScalar(dst []byte, width int, v uint64) {
	switch width {
	case 1:
		dst[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(dst, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(dst, v)
	}
}

// getScalar is putScalar's inverse: it reads width little-endian bytes
// from src and zero-extends them into a uint64. Reading with memcpy-style
// byte-by-byte assembly when useMemcpy is true avoids a direct unaligned
// encoding/binary call; Go's runtime already permits unaligned loads on
// every architecture this module targets (amd64, arm64), so useMemcpy only
// changes which loop runs, never memory safety — kept because spec.md §4.E
// and §6 require the flag to exist and be observable in the decoder.
func getScalar(src []byte, width int, useMemcpy bool) uint64 {
	if !useMemcpy {
		switch width {
		case 1:
			return uint64(src[0])
		case 2:
			return uint64(binary.LittleEndian.Uint16(src))
		case 4:
			return uint64(binary.LittleEndian.Uint32(src))
		case 8:
			return binary.LittleEndian.Uint64(src)
		}
		return 0
	}
	var v uint64
	for i := 0; i < width; i++ {
		v |= uint64(src[i]) << uint(8*i)
	}
	return v
}

// putOffset writes an absolute 8-byte little-endian offset.
func putOffset(dst []byte, v uint64) {
	binary.LittleEndian.PutUint64(dst, v)
}

// getOffset reads an absolute 8-byte little-endian offset.
func getOffset(src []byte) uint64 {
	return binary.LittleEndian.Uint64(src)
}
