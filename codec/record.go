// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"

	"github.com/typedrpc/typedrpc/desc"
)

// Record builds the codec for a reflective record or an N-field tuple:
// serialization is the serialization of the positional sequence of field
// values, in declared order. Resumable read state is a discriminated
// union over per-field states, carrying the active field index as the
// tag — Accum drives the current field's reader and, on completion,
// advances to the next field (re-preparing its reader) until the last
// field completes.
func Record[R any](fields ...RecordField[R]) Codec[R] {
	return recordCodec[R]{fields: fields}
}

// TupleField declares the i'th positional field of a tuple value of type
// R, named ".fi" with ordinal -1 per the tuple/anonymous-sum convention.
func TupleField[R, T any](i int, c Codec[T], get func(*R) *T) RecordField[R] {
	return Field[R, T](fmt.Sprintf(".f%d", i), -1, c, get)
}

type recordCodec[R any] struct {
	fields []RecordField[R]
}

func (c recordCodec[R]) Type() desc.Desc {
	fs := make([]desc.Field, len(c.fields))
	for i, f := range c.fields {
		fs[i] = desc.Field{Name: f.Name, Ordinal: f.Ordinal, Type: f.fc.typ()}
	}
	return desc.Record(fs)
}

func (c recordCodec[R]) CanMemcpy() bool { return false }

func (c recordCodec[R]) Write(fd int, v *R) error {
	for _, f := range c.fields {
		if err := f.fc.write(fd, v); err != nil {
			return err
		}
	}
	return nil
}

func (c recordCodec[R]) Read(fd int, v *R) error {
	for _, f := range c.fields {
		if err := f.fc.read(fd, v); err != nil {
			return err
		}
	}
	return nil
}

func (c recordCodec[R]) NewReader() Reader[R] {
	return &recordReader[R]{fields: c.fields}
}

type recordReader[R any] struct {
	fields []RecordField[R]
	idx    int
	cur    fieldReader[R]
}

func (r *recordReader[R]) Prepare() {
	r.idx = 0
	if len(r.fields) == 0 {
		r.cur = nil
		return
	}
	r.cur = r.fields[0].fc.newReader()
	r.cur.prepare()
}

func (r *recordReader[R]) Accum(fd int, v *R) (bool, error) {
	if len(r.fields) == 0 {
		return true, nil
	}
	done, err := r.cur.accum(fd, v)
	if err != nil {
		return false, err
	}
	if !done {
		return false, nil
	}
	r.idx++
	if r.idx == len(r.fields) {
		return true, nil
	}
	r.cur = r.fields[r.idx].fc.newReader()
	r.cur.prepare()
	return false, nil
}

// Tuple0 is the zero-field tuple, wire-identical to Unit.
type Tuple0 = struct{}

// Tuple1 is a 1-field tuple value.
type Tuple1[A any] struct{ F0 A }

// Tuple2 is a 2-field tuple value.
type Tuple2[A, B any] struct {
	F0 A
	F1 B
}

// Tuple3 is a 3-field tuple value.
type Tuple3[A, B, C any] struct {
	F0 A
	F1 B
	F2 C
}

// Tuple7 is a 7-field tuple value, exercised directly by the codec's
// round-trip property tests (spec requires coverage at N ∈ {1,2,7}).
type Tuple7[A, B, C, D, E, F, G any] struct {
	F0 A
	F1 B
	F2 C
	F3 D
	F4 E
	F5 F
	F6 G
}

// TupleCodec1 builds the codec for Tuple1[A].
func TupleCodec1[A any](ca Codec[A]) Codec[Tuple1[A]] {
	return Record(
		TupleField(0, ca, func(t *Tuple1[A]) *A { return &t.F0 }),
	)
}

// TupleCodec2 builds the codec for Tuple2[A,B].
func TupleCodec2[A, B any](ca Codec[A], cb Codec[B]) Codec[Tuple2[A, B]] {
	return Record(
		TupleField(0, ca, func(t *Tuple2[A, B]) *A { return &t.F0 }),
		TupleField(1, cb, func(t *Tuple2[A, B]) *B { return &t.F1 }),
	)
}

// TupleCodec3 builds the codec for Tuple3[A,B,C].
func TupleCodec3[A, B, C any](ca Codec[A], cb Codec[B], cc Codec[C]) Codec[Tuple3[A, B, C]] {
	return Record(
		TupleField(0, ca, func(t *Tuple3[A, B, C]) *A { return &t.F0 }),
		TupleField(1, cb, func(t *Tuple3[A, B, C]) *B { return &t.F1 }),
		TupleField(2, cc, func(t *Tuple3[A, B, C]) *C { return &t.F2 }),
	)
}

// TupleCodec7 builds the codec for Tuple7[A,...,G].
func TupleCodec7[A, B, C, D, E, F, G any](
	ca Codec[A], cb Codec[B], cc Codec[C], cd Codec[D], ce Codec[E], cf Codec[F], cg Codec[G],
) Codec[Tuple7[A, B, C, D, E, F, G]] {
	type T = Tuple7[A, B, C, D, E, F, G]
	return Record(
		TupleField(0, ca, func(t *T) *A { return &t.F0 }),
		TupleField(1, cb, func(t *T) *B { return &t.F1 }),
		TupleField(2, cc, func(t *T) *C { return &t.F2 }),
		TupleField(3, cd, func(t *T) *D { return &t.F3 }),
		TupleField(4, ce, func(t *T) *E { return &t.F4 }),
		TupleField(5, cf, func(t *T) *F { return &t.F5 }),
		TupleField(6, cg, func(t *T) *G { return &t.F6 }),
	)
}
