// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package linearbuffers

import (
	"bytes"
	"testing"
)

// A two-field table: field 0 is a u32 scalar at slot offset 1 (after a
// 1-byte bitmap), field 1 is an 8-byte offset slot at offset 5.
const (
	testBitmapSize  = 1
	testPayloadSize = 4 + 8
	testFieldScalar = 0
	testSlotScalar  = 1
	testFieldOffset = 1
	testSlotOffset  = 5
)

func TestEncoderBasicTableRoundTrip(t *testing.T) {
	e := NewEncoder(nil)
	if err := e.StartTable(2, testPayloadSize); err != nil {
		t.Fatalf("StartTable() = %v", err)
	}
	if err := e.SetScalar(testFieldScalar, testSlotScalar, 4, 0xAABBCCDD); err != nil {
		t.Fatalf("SetScalar() = %v", err)
	}
	strOff, err := e.CreateString([]byte("hi"))
	if err != nil {
		t.Fatalf("CreateString() = %v", err)
	}
	if err := e.SetOffset(testFieldOffset, testSlotOffset, strOff); err != nil {
		t.Fatalf("SetOffset() = %v", err)
	}
	rootOff, err := e.EndTable()
	if err != nil {
		t.Fatalf("EndTable() = %v", err)
	}
	if rootOff != 0 {
		t.Fatalf("root offset = %d, want 0 (first table in a fresh encoder)", rootOff)
	}

	buf, length, err := e.Finish(rootOff)
	if err != nil {
		t.Fatalf("Finish() = %v", err)
	}
	if length != uint64(len(buf)) {
		t.Fatalf("length = %d, want %d", length, len(buf))
	}

	v, ok := Decode(buf, length)
	if !ok {
		t.Fatalf("Decode() failed")
	}
	if !v.Present(testBitmapSize, testFieldScalar) {
		t.Fatalf("scalar field not present")
	}
	got, ok := v.Scalar(testSlotScalar, 4)
	if !ok || got != 0xAABBCCDD {
		t.Fatalf("Scalar() = %#x, %v, want 0xAABBCCDD, true", got, ok)
	}
	off, ok := v.ChildOffset(testSlotOffset)
	if !ok {
		t.Fatalf("ChildOffset() failed")
	}
	s, ok := v.String(off)
	if !ok || string(s) != "hi" {
		t.Fatalf("String() = %q, %v, want hi, true", s, ok)
	}
}

func TestEncoderLastWriteWins(t *testing.T) {
	e := NewEncoder(nil)
	e.StartTable(2, testPayloadSize)
	e.SetScalar(testFieldScalar, testSlotScalar, 4, 1)
	e.SetScalar(testFieldScalar, testSlotScalar, 4, 2)
	off, _ := e.EndTable()
	buf, length, err := e.Finish(off)
	if err != nil {
		t.Fatalf("Finish() = %v", err)
	}
	v, _ := Decode(buf, length)
	v.off = off
	got, ok := v.Scalar(testSlotScalar, 4)
	if !ok || got != 2 {
		t.Fatalf("Scalar() = %d, %v, want 2, true", got, ok)
	}
}

func TestEncoderCancelTableErases(t *testing.T) {
	e := NewEncoder(nil)
	e.StartTable(2, testPayloadSize)
	e.SetScalar(testFieldScalar, testSlotScalar, 4, 1)

	e.StartTable(2, testPayloadSize)
	e.SetScalar(testFieldScalar, testSlotScalar, 4, 99)
	lenAfterOuterWrite := len(e.buf)

	if err := e.CancelTable(); err != nil {
		t.Fatalf("CancelTable() = %v", err)
	}
	if len(e.buf) >= lenAfterOuterWrite {
		t.Fatalf("CancelTable() did not roll back: len = %d, want < %d", len(e.buf), lenAfterOuterWrite)
	}
}

func TestEncoderScalarVectorPushMatchesBulkCreate(t *testing.T) {
	e1 := NewEncoder(nil)
	e1.StartVector(ScalarVector, 4)
	e1.PushScalar(10)
	e1.PushScalar(20)
	e1.PushScalar(30)
	off1, err := e1.EndVector()
	if err != nil {
		t.Fatalf("EndVector() = %v", err)
	}
	buf1, _, _ := e1.Finish(off1)

	e2 := NewEncoder(nil)
	raw := make([]byte, 12)
	putScalar(raw[0:4], 4, 10)
	putScalar(raw[4:8], 4, 20)
	putScalar(raw[8:12], 4, 30)
	off2, err := e2.CreateScalarVector(4, raw)
	if err != nil {
		t.Fatalf("CreateScalarVector() = %v", err)
	}
	buf2 := e2.buf

	if !bytes.Equal(buf1[off1:], buf2[off2:]) {
		t.Fatalf("push-built and bulk-built vectors differ:\n%x\n%x", buf1[off1:], buf2[off2:])
	}
}

func TestEncoderTableVectorOfOffsets(t *testing.T) {
	e := NewEncoder(nil)
	e.StartVector(TableVector, 0)

	e.StartTable(1, 8)
	e.SetScalar(0, testBitmapSize, 8, 111)
	child1, _ := e.EndTable()
	e.PushOffset(child1)

	e.StartTable(1, 8)
	e.SetScalar(0, testBitmapSize, 8, 222)
	child2, _ := e.EndTable()
	e.PushOffset(child2)

	vecOff, err := e.EndVector()
	if err != nil {
		t.Fatalf("EndVector() = %v", err)
	}
	// The vector here isn't a schema root table, so it doesn't sit at
	// offset 0 (the two child tables precede it) and Finish's root-at-0
	// check doesn't apply; decode straight from the encoder's buffer.
	buf, length := e.buf, uint64(len(e.buf))

	v, _ := Decode(buf, length)
	count, ok := v.VectorCount(vecOff)
	if !ok || count != 2 {
		t.Fatalf("VectorCount() = %d, %v, want 2, true", count, ok)
	}
	o0, ok := v.VectorElemOffset(TableVector, vecOff, 0)
	if !ok || o0 != child1 {
		t.Fatalf("VectorElemOffset(0) = %d, %v, want %d, true", o0, ok, child1)
	}
	child := v.Child(o0)
	got, ok := child.Scalar(testBitmapSize, 8)
	if !ok || got != 111 {
		t.Fatalf("child.Scalar() = %d, %v, want 111, true", got, ok)
	}
}

func TestEncoderLatchesFirstError(t *testing.T) {
	e := NewEncoder(nil)
	if _, err := e.EndTable(); err == nil {
		t.Fatalf("EndTable() on empty stack succeeded, want error")
	}
	first := e.Err()
	if first == nil {
		t.Fatalf("Err() = nil after illegal call")
	}
	if err := e.StartTable(1, 1); err != first {
		t.Fatalf("StartTable() after error = %v, want latched %v", err, first)
	}
	if _, err := e.Finish(0); err != first {
		t.Fatalf("Finish() after error = %v, want latched %v", err, first)
	}
}
