// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package session

import (
	"github.com/typedrpc/typedrpc/codec"
	"github.com/typedrpc/typedrpc/netio"
)

// asyncReader is the type-erased interface the Scheduler drives: each
// AsyncStub is its own reader, decoding whichever result is currently
// at the front of its own continuation queue.
type asyncReader interface {
	readAndFinish(fd int) (bool, error)
}

// AsyncStub is an asynchronous RPC route bound to one declared id:
// Invoke blocks only long enough to write the request, then returns
// immediately, queuing k to run once the result has been decoded on a
// later Scheduler.Step call. Multiple Invoke calls may be outstanding
// on the same stub at once; continuations run in the order they were
// issued.
//
// When R is the unit shape (struct{}), the route is fire-and-forget:
// the peer never sends a reply, so Invoke never queues a continuation
// or registers with the Scheduler, matching net.H's
// AsyncRPCFunc<void(Args...)> specialization, which has no
// continuation parameter and no scheduler reference at all.
type AsyncStub[A, R any] struct {
	s           *Session
	id          uint32
	argsCodec   codec.Codec[A]
	resultCodec codec.Codec[R]
	voidResult  bool

	ks     []func(R)
	reader codec.Reader[R]
	target R
}

// isUnitResult reports whether R is the unit shape, the Go-generics
// stand-in for net.H's void specialization.
func isUnitResult[R any]() bool {
	var zero R
	_, ok := any(zero).(struct{})
	return ok
}

// NewAsyncStub binds an async RPC route declared as id on s. The stub
// is placed on s's Scheduler by each Invoke that expects a reply, not
// here.
func NewAsyncStub[A, R any](s *Session, id uint32, argsCodec codec.Codec[A], resultCodec codec.Codec[R]) *AsyncStub[A, R] {
	a := &AsyncStub[A, R]{
		s:           s,
		id:          id,
		argsCodec:   argsCodec,
		resultCodec: resultCodec,
		voidResult:  isUnitResult[R](),
		reader:      resultCodec.NewReader(),
	}
	a.reader.Prepare()
	return a
}

// Invoke writes the request and, unless the route's result is the unit
// shape, arranges for k to run with the result once it has fully
// arrived, via the session's Scheduler. A unit-result route is
// fire-and-forget: Invoke returns as soon as the request has been
// written, and k is never called.
func (a *AsyncStub[A, R]) Invoke(args A, k func(R)) error {
	s := a.s

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.broken {
		return ErrSessionBroken
	}
	if err := netio.SetBlocking(s.fd, true); err != nil {
		return s.fail(err)
	}
	if err := writeU8(s.fd, cmdInvoke); err != nil {
		return s.fail(err)
	}
	if err := writeU32(s.fd, a.id); err != nil {
		return s.fail(err)
	}
	if err := a.argsCodec.Write(s.fd, &args); err != nil {
		return s.fail(err)
	}
	if err := netio.SetBlocking(s.fd, false); err != nil {
		return s.fail(err)
	}
	s.mets.IncCalls(a.id)

	if a.voidResult {
		return nil
	}

	a.ks = append(a.ks, k)
	s.sched.enqueue(a)
	s.mets.AdjustPipelineDepth(1)
	return nil
}

// readAndFinish drives the active decode one tick; on completion it
// pops the front continuation, runs it, and resets the reader for the
// next queued call.
func (a *AsyncStub[A, R]) readAndFinish(fd int) (bool, error) {
	done, err := a.reader.Accum(fd, &a.target)
	if err != nil {
		return false, err
	}
	if !done {
		return false, nil
	}

	k := a.ks[0]
	a.ks = a.ks[1:]
	result := a.target

	var zero R
	a.target = zero
	a.reader.Prepare()

	k(result)
	return true, nil
}
