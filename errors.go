// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package linearbuffers

import "errors"

// Errors returned by the encoder and decoder runtimes (spec.md §7).
var (
	// ErrEncoderMisuse is returned when a call does not match the state
	// machine's legal transitions (e.g. pushing a vector element while a
	// table scope is open, or ending a scope that is not on top of the
	// stack).
	ErrEncoderMisuse = errors.New("encoder: illegal call for current state")

	// ErrOutOfMemory is returned when growing the output region would
	// overflow an int-sized length.
	ErrOutOfMemory = errors.New("encoder: out of memory")

	// ErrVectorOverflow is returned when a scalar vector's byte length
	// (count * element width) would overflow a uint64.
	ErrVectorOverflow = errors.New("encoder: vector length overflow")

	// ErrOffsetOverflow is returned when the output region would grow
	// past the representable absolute-offset range.
	ErrOffsetOverflow = errors.New("encoder: offset overflow")

	// ErrOutsideBoundary names the decoder's out-of-bounds-read error kind
	// (spec.md §7). View's own accessors report this condition as a bool
	// rather than this error (spec.md §4.E's API is Decode/Scalar/String/…
	// returning (value, bool)); ErrOutsideBoundary exists as the error-typed
	// equivalent for callers that need an error, e.g. a future io.Reader-
	// shaped decoder wrapper. Named to match the teacher's own helper.go
	// sentinel for the same situation.
	ErrOutsideBoundary = errors.New("decoder: reading data outside boundary")

	// ErrDecodeCorrupt is returned by DecodeFile when Decode rejects the
	// mapped bytes. View's accessors do not return it; they report a
	// failed read as false.
	ErrDecodeCorrupt = errors.New("decoder: buffer is not a valid linearbuffers encoding")
)
