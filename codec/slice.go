// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"github.com/typedrpc/typedrpc/desc"
	"github.com/typedrpc/typedrpc/netio"
)

// Slice builds the codec for a dynamic sequence: a uint64 length prefix
// followed by that many elements. If elem.CanMemcpy(), the body is
// transferred as a single blit after the target is resized; otherwise
// elements are read/written one at a time with elem's own codec.
func Slice[T any](elem Codec[T]) Codec[[]T] {
	return sliceCodec[T]{elem: elem}
}

type sliceCodec[T any] struct {
	elem Codec[T]
}

func (c sliceCodec[T]) Type() desc.Desc { return desc.Array(c.elem.Type()) }
func (c sliceCodec[T]) CanMemcpy() bool { return false }

var lenCodec = Prim[uint64]("long")

func (c sliceCodec[T]) Write(fd int, v *[]T) error {
	n := uint64(len(*v))
	if err := lenCodec.Write(fd, &n); err != nil {
		return err
	}
	if c.elem.CanMemcpy() {
		return netio.SendAll(fd, sliceBytes(*v))
	}
	for i := range *v {
		if err := c.elem.Write(fd, &(*v)[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c sliceCodec[T]) Read(fd int, v *[]T) error {
	var n uint64
	if err := lenCodec.Read(fd, &n); err != nil {
		return err
	}
	*v = make([]T, n)
	if c.elem.CanMemcpy() {
		return netio.RecvAll(fd, sliceBytes(*v))
	}
	for i := range *v {
		if err := c.elem.Read(fd, &(*v)[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c sliceCodec[T]) NewReader() Reader[[]T] {
	if c.elem.CanMemcpy() {
		return &sliceMemcpyReader[T]{lenR: lenCodec.NewReader()}
	}
	return &sliceIterReader[T]{elem: c.elem, lenR: lenCodec.NewReader()}
}

// sliceMemcpyReader's phase machine is {Len, Body}; Body is a byte
// counter once the target has been resized.
type sliceMemcpyReader[T any] struct {
	readingLen bool
	lenR       Reader[uint64]
	length     uint64
	read       int
}

func (r *sliceMemcpyReader[T]) Prepare() {
	r.readingLen = true
	r.lenR.Prepare()
}

func (r *sliceMemcpyReader[T]) Accum(fd int, v *[]T) (bool, error) {
	if r.readingLen {
		done, err := r.lenR.Accum(fd, &r.length)
		if err != nil {
			return false, err
		}
		if !done {
			return false, nil
		}
		*v = make([]T, r.length)
		r.read = 0
		r.readingLen = false
		if len(sliceBytes(*v)) == 0 {
			return true, nil
		}
		return false, nil
	}
	b := sliceBytes(*v)
	k, err := netio.RecvSome(fd, b[r.read:])
	if err != nil {
		return false, err
	}
	r.read += k
	return r.read == len(b), nil
}

// sliceIterReader's phase machine is {Len, Body}; Body tracks {idx,
// elemState} exactly like the fixed-array iterator, but the target
// length is only known once Len completes.
type sliceIterReader[T any] struct {
	elem       Codec[T]
	readingLen bool
	lenR       Reader[uint64]
	length     uint64
	idx        uint64
	cur        Reader[T]
}

func (r *sliceIterReader[T]) Prepare() {
	r.readingLen = true
	r.lenR.Prepare()
}

func (r *sliceIterReader[T]) Accum(fd int, v *[]T) (bool, error) {
	if r.readingLen {
		done, err := r.lenR.Accum(fd, &r.length)
		if err != nil {
			return false, err
		}
		if !done {
			return false, nil
		}
		*v = make([]T, r.length)
		r.idx = 0
		r.readingLen = false
		if r.length == 0 {
			return true, nil
		}
		r.cur = r.elem.NewReader()
		r.cur.Prepare()
		return false, nil
	}
	done, err := r.cur.Accum(fd, &(*v)[r.idx])
	if err != nil {
		return false, err
	}
	if !done {
		return false, nil
	}
	r.idx++
	if r.idx == r.length {
		return true, nil
	}
	r.cur = r.elem.NewReader()
	r.cur.Prepare()
	return false, nil
}
