// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "github.com/typedrpc/typedrpc/desc"

// RecordField binds one named, ordered member of a record or tuple value
// of type R to its own Codec via a pair of accessor closures. Tuples and
// reflective records share this exact representation: a tuple's fields
// are just RecordFields named ".f0", ".f1", ... with Ordinal -1.
type RecordField[R any] struct {
	Name    string
	Ordinal int
	fc      fieldCodec[R]
}

// fieldCodec type-erases a field's element type T so a slice of
// RecordField[R] can hold members of differing shapes.
type fieldCodec[R any] interface {
	typ() desc.Desc
	canMemcpy() bool
	write(fd int, r *R) error
	read(fd int, r *R) error
	newReader() fieldReader[R]
}

type fieldReader[R any] interface {
	prepare()
	accum(fd int, r *R) (bool, error)
}

// Field declares a record field of type T within a container of type R,
// given its Codec and a pointer-projection accessor into R.
func Field[R, T any](name string, ordinal int, c Codec[T], get func(*R) *T) RecordField[R] {
	return RecordField[R]{Name: name, Ordinal: ordinal, fc: &boundField[R, T]{c: c, get: get}}
}

type boundField[R, T any] struct {
	c   Codec[T]
	get func(*R) *T
}

func (b *boundField[R, T]) typ() desc.Desc    { return b.c.Type() }
func (b *boundField[R, T]) canMemcpy() bool   { return b.c.CanMemcpy() }
func (b *boundField[R, T]) write(fd int, r *R) error {
	return b.c.Write(fd, b.get(r))
}
func (b *boundField[R, T]) read(fd int, r *R) error {
	return b.c.Read(fd, b.get(r))
}
func (b *boundField[R, T]) newReader() fieldReader[R] {
	return &boundFieldReader[R, T]{get: b.get, r: b.c.NewReader()}
}

type boundFieldReader[R, T any] struct {
	get func(*R) *T
	r   Reader[T]
}

func (f *boundFieldReader[R, T]) prepare() { f.r.Prepare() }
func (f *boundFieldReader[R, T]) accum(fd int, r *R) (bool, error) {
	return f.r.Accum(fd, f.get(r))
}
