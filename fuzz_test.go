// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package linearbuffers

import "testing"

// FuzzDecodeRoot exercises Decode/Present/Scalar/ChildOffset against
// arbitrary bytes; none of them should ever panic, regardless of how
// malformed the input is.
func FuzzDecodeRoot(f *testing.F) {
	e := NewEncoder(nil)
	e.StartTable(2, testPayloadSize)
	e.SetScalar(testFieldScalar, testSlotScalar, 4, 0x11223344)
	rootOff, _ := e.EndTable()
	seed, _, _ := e.Finish(rootOff)
	f.Add(seed)
	f.Add([]byte{})
	f.Add([]byte{0xff})

	f.Fuzz(func(t *testing.T, data []byte) {
		Fuzz(data)
	})
}
