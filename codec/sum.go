// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"

	"github.com/typedrpc/typedrpc/desc"
)

// SumValue is the concrete Go shape for the Sum codec: a wire-level
// discriminated union. Tag selects which constructor's payload is
// active; exactly one of the variant's typed payloads is meaningful at a
// time, modeled here as an untyped slot that each variant's Codec knows
// how to project via Get/Set closures supplied at construction.
type SumValue[R any] struct {
	Tag     int
	Payload R
}

// Variant declares one named, tagged constructor of a sum type whose
// combined payload shape is R. Get/Set give the variant's own element
// type T access to the shared payload slot R — typically R is an
// interface or an any-boxed union and T is a concrete case, or R and T
// coincide for a single-payload-type sum.
type Variant[R, T any] struct {
	Name string
	Tag  int
	c    Codec[T]
	get  func(*R) *T
	set  func(*R, T)
}

// NewVariant builds a Variant binding constructor name/tag to element
// codec c, with get projecting the active payload out of the shared slot
// for writing and set installing a freshly decoded payload back into it.
func NewVariant[R, T any](name string, tag int, c Codec[T], get func(*R) *T, set func(*R, T)) Variant[R, T] {
	return Variant[R, T]{Name: name, Tag: tag, c: c, get: get, set: set}
}

// VariantCodec type-erases a variant's element type T so Sum can accept
// a slice of heterogeneous variants for the same shared payload R.
type VariantCodec[R any] interface {
	name() string
	tag() int
	typ() desc.Desc
	write(fd int, r *R) error
	read(fd int, tag int, r *R) error
	newReader() variantReader[R]
}

// Ctor erases v's element type, producing the VariantCodec Sum expects.
func Ctor[R, T any](v Variant[R, T]) VariantCodec[R] {
	return &boundVariant[R, T]{v: v}
}

type variantReader[R any] interface {
	prepare()
	accum(fd int, r *R) (bool, error)
}

type boundVariant[R, T any] struct{ v Variant[R, T] }

func (b *boundVariant[R, T]) name() string   { return b.v.Name }
func (b *boundVariant[R, T]) tag() int       { return b.v.Tag }
func (b *boundVariant[R, T]) typ() desc.Desc { return b.v.c.Type() }

func (b *boundVariant[R, T]) write(fd int, r *R) error {
	return b.v.c.Write(fd, b.v.get(r))
}

func (b *boundVariant[R, T]) read(fd int, tag int, r *R) error {
	var t T
	if err := b.v.c.Read(fd, &t); err != nil {
		return err
	}
	b.v.set(r, t)
	return nil
}

func (b *boundVariant[R, T]) newReader() variantReader[R] {
	return &boundVariantReader[R, T]{v: b.v, r: b.v.c.NewReader()}
}

type boundVariantReader[R, T any] struct {
	v Variant[R, T]
	r Reader[T]
}

func (vr *boundVariantReader[R, T]) prepare() { vr.r.Prepare() }

func (vr *boundVariantReader[R, T]) accum(fd int, r *R) (bool, error) {
	var t T
	done, err := vr.r.Accum(fd, &t)
	if err != nil {
		return false, err
	}
	if !done {
		return false, nil
	}
	vr.v.set(r, t)
	return true, nil
}

// Sum builds the codec for a tagged union over R: a uint32 tag followed
// by the bytes of the tagged variant's payload. SumValue.Tag selects the
// active variant for both write and read.
func Sum[R any](variants ...VariantCodec[R]) Codec[SumValue[R]] {
	return sumCodec[R]{variants: variants}
}

type sumCodec[R any] struct {
	variants []VariantCodec[R]
}

var tagCodec = Prim[uint32]("int")

func (c sumCodec[R]) Type() desc.Desc {
	ctors := make([]desc.Ctor, len(c.variants))
	for i, v := range c.variants {
		ctors[i] = desc.Ctor{Name: v.name(), Tag: v.tag(), Type: v.typ()}
	}
	return desc.Sum(ctors)
}

func (c sumCodec[R]) CanMemcpy() bool { return false }

func (c sumCodec[R]) byTag(tag int) (VariantCodec[R], error) {
	for _, v := range c.variants {
		if v.tag() == tag {
			return v, nil
		}
	}
	return nil, fmt.Errorf("codec: sum: unknown tag %d", tag)
}

func (c sumCodec[R]) Write(fd int, v *SumValue[R]) error {
	tag := uint32(v.Tag)
	if err := tagCodec.Write(fd, &tag); err != nil {
		return err
	}
	variant, err := c.byTag(v.Tag)
	if err != nil {
		return err
	}
	return variant.write(fd, &v.Payload)
}

func (c sumCodec[R]) Read(fd int, v *SumValue[R]) error {
	var tag uint32
	if err := tagCodec.Read(fd, &tag); err != nil {
		return err
	}
	variant, err := c.byTag(int(tag))
	if err != nil {
		return err
	}
	v.Tag = int(tag)
	return variant.read(fd, int(tag), &v.Payload)
}

func (c sumCodec[R]) NewReader() Reader[SumValue[R]] {
	return &sumReader[R]{c: c, tagR: tagCodec.NewReader()}
}

// sumReader's phase machine is {Tag, Payload}; once the tag is known the
// corresponding variant's own resumable reader is constructed and driven
// to completion.
type sumReader[R any] struct {
	c          sumCodec[R]
	readingTag bool
	tagR       Reader[uint32]
	tag        uint32
	cur        variantReader[R]
}

func (r *sumReader[R]) Prepare() {
	r.readingTag = true
	r.tagR.Prepare()
}

func (r *sumReader[R]) Accum(fd int, v *SumValue[R]) (bool, error) {
	if r.readingTag {
		done, err := r.tagR.Accum(fd, &r.tag)
		if err != nil {
			return false, err
		}
		if !done {
			return false, nil
		}
		variant, err := r.c.byTag(int(r.tag))
		if err != nil {
			return false, err
		}
		v.Tag = int(r.tag)
		r.readingTag = false
		r.cur = variant.newReader()
		r.cur.prepare()
		return false, nil
	}
	return r.cur.accum(fd, &v.Payload)
}
