// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package linearbuffers

import (
	"math"

	"github.com/alperakcan/linearbuffers/logx"
)

// scopeKind distinguishes the two shapes of an open builder scope.
type scopeKind uint8

const (
	scopeTable scopeKind = iota
	scopeVector
)

// scope is one entry of the encoder's scope stack (spec.md §4.D "State").
// Table scopes reserve and write their header in place as soon as they
// open; vector scopes accumulate their payload locally and are only
// appended to the output region, as one contiguous header+data block, when
// they close — this is what keeps every forward reference an already-
// resolved absolute offset, with no patch-up pass at Finish.
type scope struct {
	kind scopeKind

	// table scope (headerPos also records where a vector scope opened)
	headerPos   int
	bitmapSize  int
	payloadSize int

	// vector scope
	vecKind   VectorKind
	elemWidth int
	count     uint64
	data      []byte
}

// maxReasonableLength bounds the output region so OffsetOverflow is a
// reachable check rather than dead code; the wire
// format's real ceiling is uint64, far beyond what any process can
// allocate, so this is the practical stand-in spec.md §4.D calls for.
const maxReasonableLength = math.MaxInt32

// Encoder is the streaming builder of spec.md §4.D: a single growable
// output region plus a stack of open table/vector scopes. It is not safe
// for concurrent use (spec.md §5) and latches its first error, per
// spec.md §7: once Err() is non-nil every further call is a no-op that
// returns that same error, so callers can write straight-line code and
// check once at Finish.
type Encoder struct {
	buf   []byte
	stack []scope
	err   error
	log   *logx.Logger
}

// NewEncoder creates an empty encoder. log may be nil (silent).
func NewEncoder(log *logx.Logger) *Encoder {
	return &Encoder{log: log}
}

// Err returns the first error recorded by this encoder, or nil.
func (e *Encoder) Err() error {
	return e.err
}

// Reset discards all state, letting the Encoder be reused for a new
// session (spec.md §4.D "Encoder state is constructed per encoding
// session and destroyed after linearization" — Reset is the in-process
// equivalent of destroy-then-create, avoiding a fresh allocation).
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
	e.stack = e.stack[:0]
	e.err = nil
}

func (e *Encoder) fail(err error) error {
	if e.err == nil {
		e.err = err
		if e.log != nil {
			e.log.Errorf("encoder: %v", err)
		}
	}
	return e.err
}

func (e *Encoder) top() *scope {
	if len(e.stack) == 0 {
		return nil
	}
	return &e.stack[len(e.stack)-1]
}

// reserve appends n zero bytes to buf and returns the offset they start
// at, failing with ErrOffsetOverflow if that would exceed
// maxReasonableLength.
func (e *Encoder) reserve(n int) (int, error) {
	if n < 0 {
		// A schema-derived size (BitmapSize+PayloadSize, or a vector's
		// count*width) wrapped around int before reaching here.
		return 0, e.fail(ErrOutOfMemory)
	}
	if len(e.buf)+n > maxReasonableLength {
		return 0, e.fail(ErrOffsetOverflow)
	}
	pos := len(e.buf)
	e.buf = append(e.buf, make([]byte, n)...)
	return pos, nil
}

// StartTable pushes an open table scope, reserving and zero-filling its
// presence bitmap and fixed payload region in place. fieldCount and
// payloadSize are computed by generated code from the schema
// (schema.Table.FieldCount / PayloadSize).
func (e *Encoder) StartTable(fieldCount, payloadSize int) error {
	if e.err != nil {
		return e.err
	}
	bitmapSize := BitmapSize(fieldCount)
	pos, err := e.reserve(bitmapSize + payloadSize)
	if err != nil {
		return err
	}
	e.stack = append(e.stack, scope{
		kind:        scopeTable,
		headerPos:   pos,
		bitmapSize:  bitmapSize,
		payloadSize: payloadSize,
	})
	return nil
}

func (e *Encoder) currentTable() (*scope, error) {
	s := e.top()
	if s == nil || s.kind != scopeTable {
		return nil, e.fail(ErrEncoderMisuse)
	}
	return s, nil
}

// SetScalar writes bits (the low width bytes, little-endian) into the
// currently open table's slot at slotOffset (as returned by
// schema.Table.SlotOffset: relative to the table's own start, bitmap
// included) and sets presence bit field. Last write wins: calling
// SetScalar again for the same field simply overwrites the slot and
// re-sets the (already-set) bit, per spec.md §4.D/§9.
func (e *Encoder) SetScalar(field, slotOffset, width int, bits uint64) error {
	if e.err != nil {
		return e.err
	}
	s, err := e.currentTable()
	if err != nil {
		return err
	}
	base := s.headerPos
	putScalar(e.buf[base+slotOffset:base+slotOffset+width], width, bits)
	setBit(e.buf[s.headerPos:s.headerPos+s.bitmapSize], field)
	return nil
}

// SetOffset writes an absolute offset into the currently open table's
// slot at slotOffset (schema.Table.SlotOffset) and sets presence bit
// field. Used for string, table and vector-valued fields once the
// referent has closed and returned its offset.
func (e *Encoder) SetOffset(field, slotOffset int, offset uint64) error {
	if e.err != nil {
		return e.err
	}
	s, err := e.currentTable()
	if err != nil {
		return err
	}
	base := s.headerPos
	putOffset(e.buf[base+slotOffset:base+slotOffset+OffsetWidth], offset)
	setBit(e.buf[s.headerPos:s.headerPos+s.bitmapSize], field)
	return nil
}

// EndTable pops the open table scope and returns its header offset. The
// table's bytes are already in place; EndTable appends nothing, matching
// spec.md §4.D ("Succeeds even if no fields were set").
func (e *Encoder) EndTable() (uint64, error) {
	if e.err != nil {
		return 0, e.err
	}
	s, err := e.currentTable()
	if err != nil {
		return 0, err
	}
	offset := uint64(s.headerPos)
	e.stack = e.stack[:len(e.stack)-1]
	return offset, nil
}

// CancelTable pops the open table scope and rolls the output region back
// to the position recorded at StartTable, discarding that table and
// anything appended after it (spec.md §8 property 5, "cancel is
// erasing").
func (e *Encoder) CancelTable() error {
	if e.err != nil {
		return e.err
	}
	s, err := e.currentTable()
	if err != nil {
		return err
	}
	e.buf = e.buf[:s.headerPos]
	e.stack = e.stack[:len(e.stack)-1]
	return nil
}

// StartVector pushes an open vector scope of the given kind. elemWidth is
// the per-element byte width for a ScalarVector (1, 2, 4 or 8); it is
// ignored (offsets are always 8 bytes) for StringVector and TableVector.
func (e *Encoder) StartVector(kind VectorKind, elemWidth int) error {
	if e.err != nil {
		return e.err
	}
	if kind != ScalarVector {
		elemWidth = OffsetWidth
	}
	e.stack = append(e.stack, scope{
		kind:      scopeVector,
		headerPos: len(e.buf),
		vecKind:   kind,
		elemWidth: elemWidth,
	})
	return nil
}

func (e *Encoder) currentVector() (*scope, error) {
	s := e.top()
	if s == nil || s.kind != scopeVector {
		return nil, e.fail(ErrEncoderMisuse)
	}
	return s, nil
}

// PushScalar appends one element (the low elemWidth bytes of bits) to the
// currently open ScalarVector scope.
func (e *Encoder) PushScalar(bits uint64) error {
	if e.err != nil {
		return e.err
	}
	s, err := e.currentVector()
	if err != nil {
		return err
	}
	if s.vecKind != ScalarVector {
		return e.fail(ErrEncoderMisuse)
	}
	if err := e.checkVectorGrowth(s, 1); err != nil {
		return err
	}
	elem := make([]byte, s.elemWidth)
	putScalar(elem, s.elemWidth, bits)
	s.data = append(s.data, elem...)
	s.count++
	return nil
}

// PushOffset appends one absolute offset to the currently open
// StringVector or TableVector scope.
func (e *Encoder) PushOffset(offset uint64) error {
	if e.err != nil {
		return e.err
	}
	s, err := e.currentVector()
	if err != nil {
		return err
	}
	if s.vecKind == ScalarVector {
		return e.fail(ErrEncoderMisuse)
	}
	if err := e.checkVectorGrowth(s, 1); err != nil {
		return err
	}
	elem := make([]byte, OffsetWidth)
	putOffset(elem, offset)
	s.data = append(s.data, elem...)
	s.count++
	return nil
}

func (e *Encoder) checkVectorGrowth(s *scope, n uint64) error {
	newCount := s.count + n
	if newCount < s.count {
		return e.fail(ErrVectorOverflow)
	}
	width := uint64(s.elemWidth)
	length := newCount * width
	if width != 0 && length/width != newCount {
		return e.fail(ErrVectorOverflow)
	}
	return nil
}

// EndVector writes the vector's header (and, for ScalarVector and
// StringVector, its length field) followed by its accumulated data as one
// contiguous block at the current end of the output region, pops the
// scope, and returns the block's start offset.
func (e *Encoder) EndVector() (uint64, error) {
	if e.err != nil {
		return 0, e.err
	}
	s, err := e.currentVector()
	if err != nil {
		return 0, err
	}

	var header []byte
	switch s.vecKind {
	case TableVector:
		header = make([]byte, OffsetWidth)
		putOffset(header, s.count)
	default: // ScalarVector, StringVector
		header = make([]byte, 2*OffsetWidth)
		putOffset(header[:OffsetWidth], s.count)
		putOffset(header[OffsetWidth:], uint64(len(s.data)))
	}

	pos, err := e.reserve(len(header) + len(s.data))
	if err != nil {
		return 0, err
	}
	copy(e.buf[pos:], header)
	copy(e.buf[pos+len(header):], s.data)

	e.stack = e.stack[:len(e.stack)-1]
	return uint64(pos), nil
}

// CancelVector pops the open vector scope, discards its accumulated data
// and rolls the output region back to where it stood at StartVector, so
// anything appended while the vector was open (such as child tables or
// strings built for its elements) is discarded as well (spec.md §8
// property 5, "cancel is erasing").
func (e *Encoder) CancelVector() error {
	if e.err != nil {
		return e.err
	}
	s, err := e.currentVector()
	if err != nil {
		return err
	}
	e.buf = e.buf[:s.headerPos]
	e.stack = e.stack[:len(e.stack)-1]
	return nil
}

// CreateScalarVector is the bulk form of spec.md §4.D: it writes a whole
// scalar vector in one call and returns its offset. For any given
// (elemWidth, raw) it produces bytes identical to
// StartVector+PushScalar×n+EndVector (spec.md §8 property 7), since both
// paths assemble the same count/length header followed by the same raw
// bytes.
func (e *Encoder) CreateScalarVector(elemWidth int, raw []byte) (uint64, error) {
	if e.err != nil {
		return 0, e.err
	}
	if elemWidth <= 0 || len(raw)%elemWidth != 0 {
		return 0, e.fail(ErrEncoderMisuse)
	}
	count := uint64(len(raw) / elemWidth)
	header := make([]byte, 2*OffsetWidth)
	putOffset(header[:OffsetWidth], count)
	putOffset(header[OffsetWidth:], uint64(len(raw)))

	pos, err := e.reserve(len(header) + len(raw))
	if err != nil {
		return 0, err
	}
	copy(e.buf[pos:], header)
	copy(e.buf[pos+len(header):], raw)
	return uint64(pos), nil
}

// CreateString writes a length-prefixed string at the current end of the
// output region and returns its offset.
func (e *Encoder) CreateString(b []byte) (uint64, error) {
	if e.err != nil {
		return 0, e.err
	}
	header := make([]byte, OffsetWidth)
	putOffset(header, uint64(len(b)))

	pos, err := e.reserve(len(header) + len(b))
	if err != nil {
		return 0, err
	}
	copy(e.buf[pos:], header)
	copy(e.buf[pos+len(header):], b)
	return uint64(pos), nil
}

// Finish checks that every opened scope has closed (the encoder has
// returned to Idle) and that rootOffset — the offset EndTable returned
// for the root table — is 0, per spec.md §4.C ("root table always at
// offset 0"), then returns the finished buffer and its length. No
// patch-up pass over forward references is needed: because scopes append
// in close order and every reference is an already-resolved absolute
// offset, the output region is linear the moment the stack empties
// (spec.md §4.D "Linearization").
func (e *Encoder) Finish(rootOffset uint64) ([]byte, uint64, error) {
	if e.err != nil {
		return nil, 0, e.err
	}
	if len(e.stack) != 0 {
		return nil, 0, e.fail(ErrEncoderMisuse)
	}
	if rootOffset != 0 {
		return nil, 0, e.fail(ErrEncoderMisuse)
	}
	return e.buf, uint64(len(e.buf)), nil
}
