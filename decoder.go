// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package linearbuffers

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// UseMemcpy selects which of the two equivalent scalar-read code paths a
// View uses: the direct encoding/binary call, or a byte-by-byte assembly
// loop. spec.md §6 models this as a safety knob (--decoder-use-memcpy);
// in Go neither path does an unsafe unaligned pointer cast, so the flag
// changes performance characteristics only, never memory safety. It is
// process-wide, mirroring the original's compile-time choice.
var UseMemcpy = false

// View is a zero-copy, read-only window into one table inside an
// externally-owned buffer (spec.md §4.E). Decoding never allocates or
// copies; every accessor does a bounds-checked read directly against the
// backing slice.
type View struct {
	buf []byte
	off uint64
}

// Decode validates that length is within buf's bounds and returns a View
// of the root table at offset 0. It performs no further structural
// validation: a View's accessors are individually bounds-checked, so a
// corrupt buffer fails at the point of the bad read rather than up
// front.
func Decode(buf []byte, length uint64) (*View, bool) {
	if length > uint64(len(buf)) {
		return nil, false
	}
	return &View{buf: buf[:length], off: 0}, true
}

func (v *View) boundsOK(pos, n uint64) bool {
	return pos+n >= pos && pos+n <= uint64(len(v.buf))
}

// Present reports whether field's presence bit is set in this table's
// bitmap. bitmapSize is the table's schema.Table.BitmapSize().
func (v *View) Present(bitmapSize, field int) bool {
	byteIdx := field / 8
	if byteIdx >= bitmapSize || !v.boundsOK(v.off, uint64(byteIdx+1)) {
		return false
	}
	return v.buf[v.off+uint64(byteIdx)]&(1<<uint(field%8)) != 0
}

// Scalar reads a width-byte little-endian value from slotOffset
// (schema.Table.SlotOffset) and reports whether the read stayed in
// bounds.
func (v *View) Scalar(slotOffset, width int) (uint64, bool) {
	pos := v.off + uint64(slotOffset)
	if !v.boundsOK(pos, uint64(width)) {
		return 0, false
	}
	return getScalar(v.buf[pos:pos+uint64(width)], width, UseMemcpy), true
}

// ChildOffset reads the 8-byte absolute offset stored at slotOffset: the
// location of a string, table, or vector this field points to.
func (v *View) ChildOffset(slotOffset int) (uint64, bool) {
	pos := v.off + uint64(slotOffset)
	if !v.boundsOK(pos, OffsetWidth) {
		return 0, false
	}
	return getOffset(v.buf[pos : pos+OffsetWidth]), true
}

// Child returns a View of the table at the given absolute offset, backed
// by the same underlying buffer.
func (v *View) Child(offset uint64) *View {
	return &View{buf: v.buf, off: offset}
}

// String reads the length-prefixed string at the given absolute offset.
func (v *View) String(offset uint64) ([]byte, bool) {
	if !v.boundsOK(offset, OffsetWidth) {
		return nil, false
	}
	length := getOffset(v.buf[offset : offset+OffsetWidth])
	start := offset + OffsetWidth
	if !v.boundsOK(start, length) {
		return nil, false
	}
	return v.buf[start : start+length], true
}

// VectorCount reads a vector's element count from its header at the
// given absolute offset. Valid for all three vector kinds: the count is
// always the header's first 8 bytes.
func (v *View) VectorCount(offset uint64) (uint64, bool) {
	if !v.boundsOK(offset, OffsetWidth) {
		return 0, false
	}
	return getOffset(v.buf[offset : offset+OffsetWidth]), true
}

// VectorLength reads a vector's byte length: the stored length field for
// ScalarVector/StringVector (count*elemWidth), or the computed
// count*OffsetWidth for TableVector, which has no stored length field on
// the wire (spec.md §4.C).
func (v *View) VectorLength(kind VectorKind, offset uint64) (uint64, bool) {
	if kind == TableVector {
		count, ok := v.VectorCount(offset)
		if !ok {
			return 0, false
		}
		return count * OffsetWidth, true
	}
	if !v.boundsOK(offset+OffsetWidth, OffsetWidth) {
		return 0, false
	}
	return getOffset(v.buf[offset+OffsetWidth : offset+2*OffsetWidth]), true
}

// vectorDataStart returns the absolute offset of a vector's first
// element, accounting for the header width of kind (16 bytes for
// ScalarVector/StringVector's count+length, 8 bytes for TableVector's
// count-only header).
func vectorDataStart(kind VectorKind, offset uint64) uint64 {
	if kind == TableVector {
		return offset + OffsetWidth
	}
	return offset + 2*OffsetWidth
}

// VectorValues returns the raw backing bytes of a ScalarVector's
// elements (count*elemWidth bytes, starting right after the count+length
// header), still owned by the decoded buffer.
func (v *View) VectorValues(offset uint64, elemWidth int) ([]byte, bool) {
	count, ok := v.VectorCount(offset)
	if !ok {
		return nil, false
	}
	start := vectorDataStart(ScalarVector, offset)
	length := count * uint64(elemWidth)
	if !v.boundsOK(start, length) {
		return nil, false
	}
	return v.buf[start : start+length], true
}

// VectorElemOffset reads the i'th absolute offset out of a StringVector
// or TableVector at the given header offset.
func (v *View) VectorElemOffset(kind VectorKind, offset uint64, i int) (uint64, bool) {
	count, ok := v.VectorCount(offset)
	if !ok || i < 0 || uint64(i) >= count {
		return 0, false
	}
	pos := vectorDataStart(kind, offset) + uint64(i)*OffsetWidth
	if !v.boundsOK(pos, OffsetWidth) {
		return 0, false
	}
	return getOffset(v.buf[pos : pos+OffsetWidth]), true
}

// DecodeFile memory-maps path read-only and returns a View of its root
// table plus the mapping, which the caller must Close once done reading
// (grounded on the teacher's file.go New/Close pair, which maps a whole
// PE image with edsrzf/mmap-go rather than copying it into the heap
// before parsing).
func DecodeFile(path string) (*View, *MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	view, ok := Decode(data, uint64(len(data)))
	if !ok {
		data.Unmap()
		f.Close()
		return nil, nil, ErrDecodeCorrupt
	}
	return view, &MappedFile{data: data, f: f}, nil
}

// MappedFile owns the memory mapping backing a View returned by
// DecodeFile.
type MappedFile struct {
	data mmap.MMap
	f    *os.File
}

// Close unmaps the file and closes its descriptor. Any View still
// referencing this mapping becomes invalid.
func (m *MappedFile) Close() error {
	if err := m.data.Unmap(); err != nil {
		m.f.Close()
		return err
	}
	return m.f.Close()
}
