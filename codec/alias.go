// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "github.com/typedrpc/typedrpc/desc"

// Alias builds a pass-through codec for an opaque named wrapper around
// an existing shape: CanMemcpy, Write, Read, and the reader are all
// delegated verbatim to inner. Only the descriptor differs, carrying the
// alias name alongside the underlying shape.
func Alias[T any](name string, inner Codec[T]) Codec[T] {
	return aliasCodec[T]{name: name, inner: inner}
}

type aliasCodec[T any] struct {
	name  string
	inner Codec[T]
}

func (c aliasCodec[T]) Type() desc.Desc          { return desc.Alias(c.name, c.inner.Type()) }
func (c aliasCodec[T]) CanMemcpy() bool          { return c.inner.CanMemcpy() }
func (c aliasCodec[T]) Write(fd int, v *T) error { return c.inner.Write(fd, v) }
func (c aliasCodec[T]) Read(fd int, v *T) error  { return c.inner.Read(fd, v) }
func (c aliasCodec[T]) NewReader() Reader[T]     { return c.inner.NewReader() }

// Enum builds the codec for an enumeration whose wire representation is
// repName's primitive shape (e.g. "int"). Unlike Alias, Enum carries
// declared-tag metadata in its descriptor for schema negotiation/
// debugging; that metadata plays no role in the wire bytes, which are
// exactly the representation type's bytes.
func Enum[T Scalar](repName string, meta []desc.EnumTag) Codec[T] {
	return enumCodec[T]{name: repName, meta: meta}
}

type enumCodec[T Scalar] struct {
	name string
	meta []desc.EnumTag
}

func (c enumCodec[T]) Type() desc.Desc { return desc.Enum(desc.Prim(c.name), c.meta) }
func (c enumCodec[T]) CanMemcpy() bool { return true }

func (c enumCodec[T]) Write(fd int, v *T) error { return Prim[T](c.name).Write(fd, v) }
func (c enumCodec[T]) Read(fd int, v *T) error  { return Prim[T](c.name).Read(fd, v) }
func (c enumCodec[T]) NewReader() Reader[T]     { return &primReader[T]{} }
