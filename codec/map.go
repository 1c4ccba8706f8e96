// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"github.com/typedrpc/typedrpc/desc"
)

// Map builds the codec for an associative container: wire-identical to a
// dynamic sequence of (key, value) pairs. Write order is Go's
// (unspecified) map iteration order; a peer reading the value back does
// not depend on any particular order.
func Map[K comparable, V any](ck Codec[K], cv Codec[V]) Codec[map[K]V] {
	return mapCodec[K, V]{ck: ck, cv: cv}
}

type mapCodec[K comparable, V any] struct {
	ck Codec[K]
	cv Codec[V]
}

func (c mapCodec[K, V]) Type() desc.Desc {
	return desc.Array(desc.Record(desc.TupleFields([]desc.Desc{c.ck.Type(), c.cv.Type()})))
}

func (c mapCodec[K, V]) CanMemcpy() bool { return false }

func (c mapCodec[K, V]) Write(fd int, v *map[K]V) error {
	n := uint64(len(*v))
	if err := lenCodec.Write(fd, &n); err != nil {
		return err
	}
	for k, val := range *v {
		kk, vv := k, val
		if err := c.ck.Write(fd, &kk); err != nil {
			return err
		}
		if err := c.cv.Write(fd, &vv); err != nil {
			return err
		}
	}
	return nil
}

func (c mapCodec[K, V]) Read(fd int, v *map[K]V) error {
	var n uint64
	if err := lenCodec.Read(fd, &n); err != nil {
		return err
	}
	m := make(map[K]V, n)
	for i := uint64(0); i < n; i++ {
		var k K
		var val V
		if err := c.ck.Read(fd, &k); err != nil {
			return err
		}
		if err := c.cv.Read(fd, &val); err != nil {
			return err
		}
		m[k] = val
	}
	*v = m
	return nil
}

func (c mapCodec[K, V]) NewReader() Reader[map[K]V] {
	return &mapReader[K, V]{ck: c.ck, cv: c.cv, lenR: lenCodec.NewReader()}
}

// mapReader's phase machine is {Len, Key, Value}; on Value's completion
// the pending entry is inserted into the result map and the machine
// loops back to Key unless the declared entry count has been reached.
type mapReader[K comparable, V any] struct {
	ck Codec[K]
	cv Codec[V]

	readingLen bool
	lenR       Reader[uint64]
	length     uint64
	done       uint64

	readingKey bool
	kR         Reader[K]
	vR         Reader[V]
	k          K
	val        V
}

func (r *mapReader[K, V]) Prepare() {
	r.readingLen = true
	r.lenR.Prepare()
}

func (r *mapReader[K, V]) Accum(fd int, v *map[K]V) (bool, error) {
	if r.readingLen {
		ok, err := r.lenR.Accum(fd, &r.length)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		*v = make(map[K]V, r.length)
		r.readingLen = false
		r.done = 0
		if r.length == 0 {
			return true, nil
		}
		r.startEntry()
		return false, nil
	}
	if r.readingKey {
		ok, err := r.kR.Accum(fd, &r.k)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		r.readingKey = false
		r.vR = r.cv.NewReader()
		r.vR.Prepare()
		return false, nil
	}
	ok, err := r.vR.Accum(fd, &r.val)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	(*v)[r.k] = r.val
	r.done++
	if r.done == r.length {
		return true, nil
	}
	r.startEntry()
	return false, nil
}

func (r *mapReader[K, V]) startEntry() {
	r.readingKey = true
	r.kR = r.ck.NewReader()
	r.kR.Prepare()
	var zero K
	r.k = zero
}
