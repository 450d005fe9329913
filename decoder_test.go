// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package linearbuffers

import (
	"testing"

	"github.com/alperakcan/linearbuffers/schema"
)

func TestDecodeRejectsLengthPastBuffer(t *testing.T) {
	if _, ok := Decode([]byte{1, 2, 3}, 10); ok {
		t.Fatalf("Decode() succeeded with length past buffer end")
	}
}

func TestViewScalarOutOfBoundsIsAbsent(t *testing.T) {
	v, ok := Decode([]byte{0x00}, 1)
	if !ok {
		t.Fatalf("Decode() failed")
	}
	if _, ok := v.Scalar(5, 4); ok {
		t.Fatalf("Scalar() succeeded reading past the buffer")
	}
}

func TestViewPresentUnsetFieldReadsAbsent(t *testing.T) {
	buf := []byte{0x00, 0, 0, 0, 0}
	v, _ := Decode(buf, uint64(len(buf)))
	if v.Present(1, 0) {
		t.Fatalf("Present(0) = true on an all-zero bitmap")
	}
}

func TestViewScalarVectorValues(t *testing.T) {
	e := NewEncoder(nil)
	e.StartVector(ScalarVector, 2)
	e.PushScalar(1)
	e.PushScalar(2)
	e.PushScalar(3)
	off, err := e.EndVector()
	if err != nil {
		t.Fatalf("EndVector() = %v", err)
	}
	buf, length, _ := e.Finish(off)

	v, _ := Decode(buf, length)
	count, ok := v.VectorCount(off)
	if !ok || count != 3 {
		t.Fatalf("VectorCount() = %d, %v, want 3, true", count, ok)
	}
	values, ok := v.VectorValues(off, 2)
	if !ok || len(values) != 6 {
		t.Fatalf("VectorValues() = %v, %v, want 6 bytes", values, ok)
	}
	if getScalar(values[2:4], 2, false) != 2 {
		t.Fatalf("VectorValues()[1] = %d, want 2", getScalar(values[2:4], 2, false))
	}
}

func TestViewStringRoundTrip(t *testing.T) {
	e := NewEncoder(nil)
	off, err := e.CreateString([]byte("hello"))
	if err != nil {
		t.Fatalf("CreateString() = %v", err)
	}
	buf := e.buf

	v, ok := Decode(buf, uint64(len(buf)))
	if !ok {
		t.Fatalf("Decode() failed")
	}
	s, ok := v.String(off)
	if !ok || string(s) != "hello" {
		t.Fatalf("String() = %q, %v, want hello, true", s, ok)
	}
}

func TestViewStringTruncatedBufferIsAbsent(t *testing.T) {
	e := NewEncoder(nil)
	off, _ := e.CreateString([]byte("hello"))
	buf := e.buf[:off+OffsetWidth+2] // length prefix says 5 bytes, only 2 remain

	v, _ := Decode(buf, uint64(len(buf)))
	if _, ok := v.String(off); ok {
		t.Fatalf("String() succeeded reading past a truncated buffer")
	}
}

// TestDecodeFullSchemaRootRoundTrip builds one instance of testdata/sample.lb's
// Root table by hand, exercising every vector kind (scalar, string, enum,
// table) plus a nested single-table field in one buffer, then decodes it
// back field by field (spec.md §8's scenario-6 promise: no single unit test
// elsewhere in this package combines all four vector kinds with a nested
// table in one round trip).
func TestDecodeFullSchemaRootRoundTrip(t *testing.T) {
	s, err := schema.ParseFile("testdata/sample.lb")
	if err != nil {
		t.Fatalf("ParseFile() = %v", err)
	}
	root := s.RootTable()
	point, _ := s.Table("Point")
	item, _ := s.Table("Item")
	color, _ := s.Enum("Color")

	slotOf := func(tbl *schema.Table, name string) (int, int) {
		idx := tbl.FieldIndex(name)
		return idx, tbl.SlotOffset(s, idx)
	}
	rawScalars := func(width int, vals ...uint64) []byte {
		raw := make([]byte, len(vals)*width)
		for i, val := range vals {
			putScalar(raw[i*width:(i+1)*width], width, val)
		}
		return raw
	}

	e := NewEncoder(nil)
	if err := e.StartTable(root.FieldCount(), root.PayloadSize(s)); err != nil {
		t.Fatalf("StartTable(Root) = %v", err)
	}

	scalarFields := []struct {
		name  string
		width int
		vals  []uint64
	}{
		{"int8s", 1, []uint64{1, 2, 3}},
		{"int16s", 2, []uint64{1000, 2000}},
		{"int32s", 4, []uint64{100000, 200000}},
		{"int64s", 8, []uint64{1 << 40, 1 << 41}},
		{"uint8s", 1, []uint64{0xaa, 0xbb}},
		{"uint16s", 2, []uint64{0xaaaa, 0xbbbb}},
		{"uint32s", 4, []uint64{0xaabbccdd}},
		{"uint64s", 8, []uint64{0x1122334455667788}},
	}
	scalarOffsets := make(map[string]uint64, len(scalarFields))
	for _, f := range scalarFields {
		off, err := e.CreateScalarVector(f.width, rawScalars(f.width, f.vals...))
		if err != nil {
			t.Fatalf("CreateScalarVector(%s) = %v", f.name, err)
		}
		scalarOffsets[f.name] = off
	}

	h1, _ := e.CreateString([]byte("alpha"))
	h2, _ := e.CreateString([]byte("beta"))
	if err := e.StartVector(StringVector, 0); err != nil {
		t.Fatalf("StartVector(names) = %v", err)
	}
	e.PushOffset(h1)
	e.PushOffset(h2)
	namesOff, err := e.EndVector()
	if err != nil {
		t.Fatalf("EndVector(names) = %v", err)
	}

	red, _ := color.Member("red")
	blue, _ := color.Member("blue")
	if err := e.StartVector(ScalarVector, color.Base.Width()); err != nil {
		t.Fatalf("StartVector(colors) = %v", err)
	}
	e.PushScalar(uint64(red.Value))
	e.PushScalar(uint64(blue.Value))
	colorsOff, err := e.EndVector()
	if err != nil {
		t.Fatalf("EndVector(colors) = %v", err)
	}

	buildPoint := func(x, y int32) uint64 {
		e.StartTable(point.FieldCount(), point.PayloadSize(s))
		xIdx, xSlot := slotOf(point, "x")
		yIdx, ySlot := slotOf(point, "y")
		e.SetScalar(xIdx, xSlot, 4, uint64(uint32(x)))
		e.SetScalar(yIdx, ySlot, 4, uint64(uint32(y)))
		off, _ := e.EndTable()
		return off
	}
	p1 := buildPoint(1, 2)
	p2 := buildPoint(3, 4)
	if err := e.StartVector(TableVector, 0); err != nil {
		t.Fatalf("StartVector(points) = %v", err)
	}
	e.PushOffset(p1)
	e.PushOffset(p2)
	pointsOff, err := e.EndVector()
	if err != nil {
		t.Fatalf("EndVector(points) = %v", err)
	}

	green, _ := color.Member("green")
	nameIdx, nameSlot := slotOf(item, "name")
	colorIdx, colorSlot := slotOf(item, "color")
	valueIdx, valueSlot := slotOf(item, "value")
	_ = valueSlot
	if err := e.StartTable(item.FieldCount(), item.PayloadSize(s)); err != nil {
		t.Fatalf("StartTable(Item) = %v", err)
	}
	itemNameOff, _ := e.CreateString([]byte("widget"))
	e.SetOffset(nameIdx, nameSlot, itemNameOff)
	e.SetScalar(colorIdx, colorSlot, color.Base.Width(), uint64(green.Value))
	itemOff, err := e.EndTable()
	if err != nil {
		t.Fatalf("EndTable(Item) = %v", err)
	}

	for _, f := range scalarFields {
		idx, slot := slotOf(root, f.name)
		if err := e.SetOffset(idx, slot, scalarOffsets[f.name]); err != nil {
			t.Fatalf("SetOffset(%s) = %v", f.name, err)
		}
	}
	namesIdx, namesSlot := slotOf(root, "names")
	e.SetOffset(namesIdx, namesSlot, namesOff)
	colorsIdx, colorsSlot := slotOf(root, "colors")
	e.SetOffset(colorsIdx, colorsSlot, colorsOff)
	pointsIdx, pointsSlot := slotOf(root, "points")
	e.SetOffset(pointsIdx, pointsSlot, pointsOff)
	rootItemIdx, rootItemSlot := slotOf(root, "item")
	e.SetOffset(rootItemIdx, rootItemSlot, itemOff)

	rootOff, err := e.EndTable()
	if err != nil {
		t.Fatalf("EndTable(Root) = %v", err)
	}
	buf, length, err := e.Finish(rootOff)
	if err != nil {
		t.Fatalf("Finish() = %v", err)
	}

	v, ok := Decode(buf, length)
	if !ok {
		t.Fatalf("Decode() failed")
	}

	for _, f := range scalarFields {
		idx, slot := slotOf(root, f.name)
		if !v.Present(root.BitmapSize(), idx) {
			t.Fatalf("%s: field not present", f.name)
		}
		off, ok := v.ChildOffset(slot)
		if !ok {
			t.Fatalf("%s: ChildOffset() failed", f.name)
		}
		got, ok := v.VectorValues(off, f.width)
		if !ok || len(got) != len(f.vals)*f.width {
			t.Fatalf("%s: VectorValues() = %v, %v", f.name, got, ok)
		}
		vlen, ok := v.VectorLength(ScalarVector, off)
		if !ok || vlen != uint64(len(f.vals)*f.width) {
			t.Fatalf("%s: VectorLength() = %d, %v, want %d, true", f.name, vlen, ok, len(f.vals)*f.width)
		}
		for i, want := range f.vals {
			if got := getScalar(got[i*f.width:(i+1)*f.width], f.width, false); got != want {
				t.Fatalf("%s[%d] = %#x, want %#x", f.name, i, got, want)
			}
		}
	}

	namesOffGot, _ := v.ChildOffset(namesSlot)
	if count, ok := v.VectorCount(namesOffGot); !ok || count != 2 {
		t.Fatalf("names: VectorCount() = %d, %v, want 2, true", count, ok)
	}
	o0, _ := v.VectorElemOffset(StringVector, namesOffGot, 0)
	if got, ok := v.String(o0); !ok || string(got) != "alpha" {
		t.Fatalf("names[0] = %q, %v, want alpha, true", got, ok)
	}
	o1, _ := v.VectorElemOffset(StringVector, namesOffGot, 1)
	if got, ok := v.String(o1); !ok || string(got) != "beta" {
		t.Fatalf("names[1] = %q, %v, want beta, true", got, ok)
	}

	colorsOffGot, _ := v.ChildOffset(colorsSlot)
	cvals, ok := v.VectorValues(colorsOffGot, color.Base.Width())
	if !ok || len(cvals) != 2 {
		t.Fatalf("colors: VectorValues() = %v, %v", cvals, ok)
	}
	if got := getScalar(cvals[0:1], 1, false); got != uint64(red.Value) {
		t.Fatalf("colors[0] = %d, want %d (red)", got, red.Value)
	}
	if got := getScalar(cvals[1:2], 1, false); got != uint64(blue.Value) {
		t.Fatalf("colors[1] = %d, want %d (blue)", got, blue.Value)
	}

	pointsOffGot, _ := v.ChildOffset(pointsSlot)
	if count, ok := v.VectorCount(pointsOffGot); !ok || count != 2 {
		t.Fatalf("points: VectorCount() = %d, %v, want 2, true", count, ok)
	}
	po0, _ := v.VectorElemOffset(TableVector, pointsOffGot, 0)
	pv0 := v.Child(po0)
	xIdx, xSlot := slotOf(point, "x")
	yIdx, ySlot := slotOf(point, "y")
	_ = xIdx
	_ = yIdx
	if got, ok := pv0.Scalar(xSlot, 4); !ok || int32(got) != 1 {
		t.Fatalf("points[0].x = %d, %v, want 1, true", int32(got), ok)
	}
	if got, ok := pv0.Scalar(ySlot, 4); !ok || int32(got) != 2 {
		t.Fatalf("points[0].y = %d, %v, want 2, true", int32(got), ok)
	}

	itemOffGot, _ := v.ChildOffset(rootItemSlot)
	iv := v.Child(itemOffGot)
	nameOff, ok := iv.ChildOffset(nameSlot)
	if !ok {
		t.Fatalf("item.name: ChildOffset() failed")
	}
	if got, ok := iv.String(nameOff); !ok || string(got) != "widget" {
		t.Fatalf("item.name = %q, %v, want widget, true", got, ok)
	}
	if got, ok := iv.Scalar(colorSlot, color.Base.Width()); !ok || got != uint64(green.Value) {
		t.Fatalf("item.color = %d, %v, want %d, true", got, ok, green.Value)
	}
	if iv.Present(item.BitmapSize(), valueIdx) {
		t.Fatalf("item.value reported present though never set (defaults are a generated-code concern, not View's)")
	}
}
