// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package session

import (
	"github.com/typedrpc/typedrpc/codec"
	"github.com/typedrpc/typedrpc/netio"
)

// Stub is a synchronous RPC route bound to one declared id: Call writes
// the INVOKE frame and its argument tuple, then blocks for the result.
// A[T] is the caller's fixed-arity argument tuple type (Tuple0-Tuple3,
// Tuple7, or any Codec-backed shape); for a unit-shaped result, resultCodec is
// codec.Unit() wrapped in whatever R the caller uses, and the read it
// performs is a genuine no-op rather than a special case.
type Stub[A, R any] struct {
	s           *Session
	id          uint32
	argsCodec   codec.Codec[A]
	resultCodec codec.Codec[R]
}

// NewStub binds a sync RPC route declared as id on s.
func NewStub[A, R any](s *Session, id uint32, argsCodec codec.Codec[A], resultCodec codec.Codec[R]) *Stub[A, R] {
	return &Stub[A, R]{s: s, id: id, argsCodec: argsCodec, resultCodec: resultCodec}
}

// Call invokes the route, blocking until the full result has been read.
func (st *Stub[A, R]) Call(args A) (R, error) {
	var zero R
	s := st.s

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.broken {
		return zero, ErrSessionBroken
	}
	if err := netio.SetBlocking(s.fd, true); err != nil {
		return zero, s.fail(err)
	}
	if err := writeU8(s.fd, cmdInvoke); err != nil {
		return zero, s.fail(err)
	}
	if err := writeU32(s.fd, st.id); err != nil {
		return zero, s.fail(err)
	}
	if err := st.argsCodec.Write(s.fd, &args); err != nil {
		return zero, s.fail(err)
	}

	var result R
	if err := st.resultCodec.Read(s.fd, &result); err != nil {
		return zero, s.fail(err)
	}
	s.mets.IncCalls(st.id)
	return result, nil
}
