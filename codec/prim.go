// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"unsafe"

	"github.com/typedrpc/typedrpc/desc"
	"github.com/typedrpc/typedrpc/netio"
)

// Scalar is the set of Go types whose in-memory layout is a fixed-width
// run of bytes that can be transferred by raw memory copy, matching the
// host's native representation. This is the "can_memcpy" primitive tier.
type Scalar interface {
	~bool | ~int8 | ~uint8 | ~int16 | ~uint16 |
		~int32 | ~uint32 | ~int64 | ~uint64 |
		~float32 | ~float64
}

// primCodec is a Codec for a fixed-width scalar, transferred by a raw
// memcpy of sizeof(T) bytes in host order. Both peers must share byte
// order and primitive width — a protocol-level constraint, not something
// this codec can check.
type primCodec[T Scalar] struct {
	name string
}

// Prim constructs the primitive codec for T, identified on the wire by
// descriptor name (one of "bool", "byte", "char", "short", "int",
// "long", "float", "double").
func Prim[T Scalar](name string) Codec[T] {
	return primCodec[T]{name: name}
}

func (c primCodec[T]) Type() desc.Desc { return desc.Prim(c.name) }
func (c primCodec[T]) CanMemcpy() bool { return true }

func primBytes[T Scalar](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

func (c primCodec[T]) Write(fd int, v *T) error {
	return netio.SendAll(fd, primBytes(v))
}

func (c primCodec[T]) Read(fd int, v *T) error {
	return netio.RecvAll(fd, primBytes(v))
}

func (c primCodec[T]) NewReader() Reader[T] { return &primReader[T]{} }

// primReader's state is a single byte counter, advanced by RecvSome
// until it reaches sizeof(T).
type primReader[T Scalar] struct {
	n int
}

func (r *primReader[T]) Prepare() { r.n = 0 }

func (r *primReader[T]) Accum(fd int, v *T) (bool, error) {
	b := primBytes(v)
	k, err := netio.RecvSome(fd, b[r.n:])
	if err != nil {
		return false, err
	}
	r.n += k
	return r.n == len(b), nil
}

// Unit is the codec for the zero-byte unit shape: no bytes are ever
// transferred, and a resumable read of it always completes on the first
// tick.
type unitCodec struct{}

// Unit returns the Codec for the unit shape (Go's struct{}).
func Unit() Codec[struct{}] { return unitCodec{} }

func (unitCodec) Type() desc.Desc                 { return desc.Prim("unit") }
func (unitCodec) CanMemcpy() bool                 { return false }
func (unitCodec) Write(fd int, v *struct{}) error { return nil }
func (unitCodec) Read(fd int, v *struct{}) error  { return nil }
func (unitCodec) NewReader() Reader[struct{}]     { return unitReader{} }

type unitReader struct{}

func (unitReader) Prepare() {}
func (unitReader) Accum(fd int, v *struct{}) (bool, error) { return true, nil }
