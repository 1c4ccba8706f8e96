// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package session

import (
	"encoding/binary"

	"github.com/typedrpc/typedrpc/netio"
)

// Handshake framing uses fixed-width scalars and length-prefixed byte
// strings, independent of the codec package's Codec[T] family: the
// handshake runs before any RPC declaration exists to build one from.
// Lengths are uint64 regardless of host GOARCH, matching the rest of the
// wire protocol's choice to decouple framing width from host size_t.

func writeU8(fd int, v uint8) error {
	return netio.SendAll(fd, []byte{v})
}

func readU8(fd int) (uint8, error) {
	var b [1]byte
	if err := netio.RecvAll(fd, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func writeU32(fd int, v uint32) error {
	var b [4]byte
	binary.NativeEndian.PutUint32(b[:], v)
	return netio.SendAll(fd, b[:])
}

func readU32(fd int) (uint32, error) {
	var b [4]byte
	if err := netio.RecvAll(fd, b[:]); err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint32(b[:]), nil
}

func writeBytes(fd int, v []byte) error {
	var lb [8]byte
	binary.NativeEndian.PutUint64(lb[:], uint64(len(v)))
	if err := netio.SendAll(fd, lb[:]); err != nil {
		return err
	}
	if len(v) == 0 {
		return nil
	}
	return netio.SendAll(fd, v)
}

func readBytes(fd int) ([]byte, error) {
	var lb [8]byte
	if err := netio.RecvAll(fd, lb[:]); err != nil {
		return nil, err
	}
	n := binary.NativeEndian.Uint64(lb[:])
	if n == 0 {
		return nil, nil
	}
	b := make([]byte, n)
	if err := netio.RecvAll(fd, b); err != nil {
		return nil, err
	}
	return b, nil
}

func writeString(fd int, s string) error { return writeBytes(fd, []byte(s)) }

func readString(fd int) (string, error) {
	b, err := readBytes(fd)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
