// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package linearbuffers

import "testing"

func TestBitmapSize(t *testing.T) {
	tests := []struct {
		fieldCount int
		want       int
	}{
		{0, 0},
		{1, 1},
		{8, 1},
		{9, 2},
		{16, 2},
		{17, 3},
	}
	for _, tt := range tests {
		if got := BitmapSize(tt.fieldCount); got != tt.want {
			t.Errorf("BitmapSize(%d) = %d, want %d", tt.fieldCount, got, tt.want)
		}
	}
}

func TestBitSetRoundTrip(t *testing.T) {
	bitmap := make([]byte, 2)
	setBit(bitmap, 0)
	setBit(bitmap, 9)
	for i := 0; i < 16; i++ {
		want := i == 0 || i == 9
		if got := bitSet(bitmap, i); got != want {
			t.Errorf("bitSet(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestScalarRoundTrip(t *testing.T) {
	widths := []int{1, 2, 4, 8}
	values := []uint64{0xAB, 0xABCD, 0xABCDEF01, 0x0102030405060708}
	for i, width := range widths {
		buf := make([]byte, width)
		putScalar(buf, width, values[i])
		for _, useMemcpy := range []bool{false, true} {
			got := getScalar(buf, width, useMemcpy)
			mask := uint64(1)<<(uint(width)*8) - 1
			if width == 8 {
				mask = ^uint64(0)
			}
			if got != values[i]&mask {
				t.Errorf("getScalar(width=%d, memcpy=%v) = %#x, want %#x", width, useMemcpy, got, values[i]&mask)
			}
		}
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	buf := make([]byte, OffsetWidth)
	putOffset(buf, 0x0102030405060708)
	if got := getOffset(buf); got != 0x0102030405060708 {
		t.Errorf("getOffset() = %#x, want %#x", got, 0x0102030405060708)
	}
}
