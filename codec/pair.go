// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "github.com/typedrpc/typedrpc/desc"

// PairValue is the concrete Go shape for the Pair codec.
type PairValue[A, B any] struct {
	First  A
	Second B
}

// Pair builds a codec that writes, then reads, its first component
// before its second. Resumable read state tracks which half is active.
func Pair[A, B any](ca Codec[A], cb Codec[B]) Codec[PairValue[A, B]] {
	return pairCodec[A, B]{ca: ca, cb: cb}
}

type pairCodec[A, B any] struct {
	ca Codec[A]
	cb Codec[B]
}

func (c pairCodec[A, B]) Type() desc.Desc {
	return desc.Record(desc.TupleFields([]desc.Desc{c.ca.Type(), c.cb.Type()}))
}

func (c pairCodec[A, B]) CanMemcpy() bool { return false }

func (c pairCodec[A, B]) Write(fd int, v *PairValue[A, B]) error {
	if err := c.ca.Write(fd, &v.First); err != nil {
		return err
	}
	return c.cb.Write(fd, &v.Second)
}

func (c pairCodec[A, B]) Read(fd int, v *PairValue[A, B]) error {
	if err := c.ca.Read(fd, &v.First); err != nil {
		return err
	}
	return c.cb.Read(fd, &v.Second)
}

func (c pairCodec[A, B]) NewReader() Reader[PairValue[A, B]] {
	return &pairReader[A, B]{rA: c.ca.NewReader(), rB: c.cb.NewReader()}
}

type pairReader[A, B any] struct {
	readFirst bool
	rA        Reader[A]
	rB        Reader[B]
}

func (r *pairReader[A, B]) Prepare() {
	r.readFirst = true
	r.rA.Prepare()
	r.rB.Prepare()
}

func (r *pairReader[A, B]) Accum(fd int, v *PairValue[A, B]) (bool, error) {
	if r.readFirst {
		done, err := r.rA.Accum(fd, &v.First)
		if err != nil {
			return false, err
		}
		if done {
			r.readFirst = false
		}
		return false, nil
	}
	return r.rB.Accum(fd, &v.Second)
}
