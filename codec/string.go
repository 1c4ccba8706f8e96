// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"github.com/typedrpc/typedrpc/desc"
	"github.com/typedrpc/typedrpc/netio"
)

// String builds the codec for a character sequence: the same framing as
// a length-prefixed memcopyable vector of 8-bit units, but read back as
// a Go string rather than a byte slice. Embedded NUL bytes are ordinary
// payload bytes, not terminators.
func String() Codec[string] {
	return stringCodec{}
}

type stringCodec struct{}

func (stringCodec) Type() desc.Desc { return desc.Array(desc.Prim("char")) }
func (stringCodec) CanMemcpy() bool { return false }

func (stringCodec) Write(fd int, v *string) error {
	n := uint64(len(*v))
	if err := lenCodec.Write(fd, &n); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return netio.SendAll(fd, []byte(*v))
}

func (stringCodec) Read(fd int, v *string) error {
	var n uint64
	if err := lenCodec.Read(fd, &n); err != nil {
		return err
	}
	if n == 0 {
		*v = ""
		return nil
	}
	b := make([]byte, n)
	if err := netio.RecvAll(fd, b); err != nil {
		return err
	}
	*v = string(b)
	return nil
}

func (stringCodec) NewReader() Reader[string] {
	return &stringReader{lenR: lenCodec.NewReader()}
}

// stringReader's phase machine is {Len, Body}, identical in shape to
// sliceMemcpyReader but accumulating into a byte buffer that is
// converted to a string only once fully read.
type stringReader struct {
	readingLen bool
	lenR       Reader[uint64]
	length     uint64
	buf        []byte
	read       int
}

func (r *stringReader) Prepare() {
	r.readingLen = true
	r.lenR.Prepare()
}

func (r *stringReader) Accum(fd int, v *string) (bool, error) {
	if r.readingLen {
		done, err := r.lenR.Accum(fd, &r.length)
		if err != nil {
			return false, err
		}
		if !done {
			return false, nil
		}
		r.readingLen = false
		r.buf = make([]byte, r.length)
		r.read = 0
		if r.length == 0 {
			*v = ""
			return true, nil
		}
		return false, nil
	}
	k, err := netio.RecvSome(fd, r.buf[r.read:])
	if err != nil {
		return false, err
	}
	r.read += k
	if r.read != len(r.buf) {
		return false, nil
	}
	*v = string(r.buf)
	return true, nil
}
