// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package codec is a type-directed serializer framework: a family of
// Codec[T] values, one per static shape, each knowing how to describe,
// write, and read values of that shape — including a resumable read mode
// that makes partial progress on a non-blocking descriptor and can be
// driven one tick at a time by an external event loop.
//
// Go has no template specialization, so dispatch by shape is explicit
// construction (Prim[T](), Pair(...), Slice(...), ...) rather than
// implicit lookup, but the shapes and their resumable state machines are
// ported directly from the host language's compile-time-dispatched
// equivalent: every composite Reader nests its children's Reader values
// exactly the way that source's recursive reader-state templates do.
package codec

import (
	"github.com/typedrpc/typedrpc/desc"
)

// Codec associates a static shape T with its wire descriptor, its
// blocking read/write routines, and its resumable reader.
type Codec[T any] interface {
	// Type returns the wire type descriptor for T.
	Type() desc.Desc
	// CanMemcpy reports whether T's in-memory layout equals its wire
	// layout, enabling a single bulk transfer instead of element-wise
	// encoding for containers of T.
	CanMemcpy() bool
	// Write encodes *v to fd, blocking until the write completes.
	Write(fd int, v *T) error
	// Read decodes *v from fd, blocking until the value is complete.
	Read(fd int, v *T) error
	// NewReader returns a fresh resumable reader for this shape. Callers
	// that reuse a reader across many values (the async RPC path) call
	// Prepare between uses instead of allocating a new one.
	NewReader() Reader[T]
}

// Reader drives partial progress on a non-blocking descriptor. Accum
// consumes whatever bytes are currently available and reports whether v
// is now fully materialized; the caller must park and retry later
// otherwise. Prepare resets the reader to begin decoding a new value.
type Reader[T any] interface {
	Prepare()
	Accum(fd int, v *T) (bool, error)
}
