// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package netio provides the two I/O modes the codec framework is built
// on: blocking all-or-nothing transfers and partial non-blocking reads.
// Both operate on a raw file descriptor rather than net.Conn, because the
// resumable read path needs to flip O_NONBLOCK on the descriptor directly
// and observe EAGAIN/EWOULDBLOCK itself instead of going through the Go
// runtime's integrated poller.
package netio

import (
	"errors"

	"golang.org/x/sys/unix"
)

// ErrPeerClosed indicates the peer performed an orderly shutdown in the
// middle of a message. It is distinct from a hard I/O error: the
// connection simply ended before the expected number of bytes arrived.
var ErrPeerClosed = errors.New("netio: peer closed connection")

// SendAll writes every byte in b to fd, looping over short writes. It
// fails with the underlying error on any hard write failure.
func SendAll(fd int, b []byte) error {
	for len(b) > 0 {
		n, err := unix.Write(fd, b)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		b = b[n:]
	}
	return nil
}

// RecvAll blocks until buf is completely filled, retrying interrupted
// syscalls. It returns ErrPeerClosed if the peer half-closes mid-read.
func RecvAll(fd int, buf []byte) error {
	for len(buf) > 0 {
		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		if n == 0 {
			return ErrPeerClosed
		}
		buf = buf[n:]
	}
	return nil
}

// RecvSome performs a single non-blocking read into buf and reports how
// many bytes, if any, were immediately available. It returns (0, nil) on
// EAGAIN/EWOULDBLOCK/EINTR (no data yet, not an error), (0, ErrPeerClosed)
// on an orderly close, and (0, err) on a hard I/O failure.
func RecvSome(fd int, buf []byte) (int, error) {
	n, err := unix.Read(fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	if n == 0 {
		return 0, ErrPeerClosed
	}
	return n, nil
}

// SetBlocking toggles O_NONBLOCK on fd. Sending always uses blocking
// mode; receiving uses partial (non-blocking) mode except when draining
// a reply for a synchronous call.
func SetBlocking(fd int, block bool) error {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return err
	}
	if block {
		flags &^= unix.O_NONBLOCK
	} else {
		flags |= unix.O_NONBLOCK
	}
	_, err = unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags)
	return err
}
