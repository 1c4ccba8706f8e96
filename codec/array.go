// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"
	"unsafe"

	"github.com/typedrpc/typedrpc/desc"
	"github.com/typedrpc/typedrpc/netio"
)

// sliceBytes reinterprets a slice's backing storage as a raw byte view,
// used for the memcpy fast path of fixed arrays and dynamic sequences of
// a memcopyable element type. Safe only when T itself is a fixed-width
// scalar layout, which is exactly when the caller's element Codec
// reports CanMemcpy() == true.
func sliceBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	sz := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), sz*uintptr(len(s)))
}

// FixedArray builds the codec for a fixed-length array of N elements of
// shape T. If elem.CanMemcpy(), Write/Read perform a single blit of
// N*sizeof(T) bytes; otherwise they iterate element-wise.
func FixedArray[T any](elem Codec[T], n int) Codec[[]T] {
	return fixedArrayCodec[T]{elem: elem, n: n}
}

type fixedArrayCodec[T any] struct {
	elem Codec[T]
	n    int
}

func (c fixedArrayCodec[T]) Type() desc.Desc { return desc.FixedArray(c.elem.Type(), c.n) }
func (c fixedArrayCodec[T]) CanMemcpy() bool { return c.elem.CanMemcpy() }

func (c fixedArrayCodec[T]) Write(fd int, v *[]T) error {
	if len(*v) != c.n {
		return fmt.Errorf("codec: fixed array length mismatch: got %d, want %d", len(*v), c.n)
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

func (c fixedArrayCodec[T]) Read(fd int, v *[]T) error {
	if *v == nil || len(*v) != c.n {
		*v = make([]T, c.n)
	}
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

func (c fixedArrayCodec[T]) NewReader() Reader[[]T] {
	if c.elem.CanMemcpy() {
		return &fixedArrayMemcpyReader[T]{n: c.n}
	}
	return &fixedArrayIterReader[T]{elem: c.elem, n: c.n}
}

// fixedArrayMemcpyReader's state is a single byte counter, matching the
// memcopyable-element fast path.
type fixedArrayMemcpyReader[T any] struct {
	n    int
	read int
}

func (r *fixedArrayMemcpyReader[T]) Prepare() { r.read = 0 }

func (r *fixedArrayMemcpyReader[T]) Accum(fd int, v *[]T) (bool, error) {
	if *v == nil || len(*v) != r.n {
		*v = make([]T, r.n)
	}
	b := sliceBytes(*v)
	if len(b) == 0 {
		return true, nil
	}
	k, err := netio.RecvSome(fd, b[r.read:])
	if err != nil {
		return false, err
	}
	r.read += k
	return r.read == len(b), nil
}

// fixedArrayIterReader's state is {idx, elemState}: advance idx and
// re-prepare elemState whenever the current element completes.
type fixedArrayIterReader[T any] struct {
	elem Codec[T]
	n    int
	idx  int
	cur  Reader[T]
}

func (r *fixedArrayIterReader[T]) Prepare() {
	r.idx = 0
	if r.n == 0 {
		r.cur = nil
		return
	}
	r.cur = r.elem.NewReader()
	r.cur.Prepare()
}

func (r *fixedArrayIterReader[T]) Accum(fd int, v *[]T) (bool, error) {
	if *v == nil || len(*v) != r.n {
		*v = make([]T, r.n)
	}
	if r.n == 0 {
		return true, nil
	}
	done, err := r.cur.Accum(fd, &(*v)[r.idx])
	if err != nil {
		return false, err
	}
	if !done {
		return false, nil
	}
	r.idx++
	if r.idx == r.n {
		return true, nil
	}
	r.cur = r.elem.NewReader()
	r.cur.Prepare()
	return false, nil
}
