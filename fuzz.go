// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package linearbuffers

// Fuzz is a go-fuzz entrypoint: it decodes data as a root table and walks
// its presence bitmap, exercising every bounds check Decode/Present/
// Scalar/ChildOffset can take without any schema-specific knowledge of
// field types. Grounded on the teacher's fuzz.go, generalized from a
// single fixed PE parse to a decode-then-probe loop since a schema-less
// buffer has no fixed field count to walk otherwise.
func Fuzz(data []byte) int {
	v, ok := Decode(data, uint64(len(data)))
	if !ok {
		return 0
	}
	for bitmapSize := 0; bitmapSize <= 8; bitmapSize++ {
		for field := 0; field < bitmapSize*8; field++ {
			if !v.Present(bitmapSize, field) {
				continue
			}
			if _, ok := v.Scalar(bitmapSize+field, 8); !ok {
				continue
			}
			if off, ok := v.ChildOffset(bitmapSize + field); ok {
				v.Child(off)
			}
		}
	}
	return 1
}
