// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bind is a runtime stub builder: a declarative Manifest lists
// the RPC routes a session should establish, and Build performs the
// handshake and constructs one typed Stub or AsyncStub per entry. This
// plays the role the original implementation's DEFINE_NET_CLIENT macro
// played at compile time — generating a typed member per declared
// route — without needing Go code generation to do it.
package bind

import (
	"fmt"

	"github.com/typedrpc/typedrpc/codec"
	"github.com/typedrpc/typedrpc/desc"
	"github.com/typedrpc/typedrpc/session"
)

// Entry declares one RPC route: its session-local name, wire id, the
// remote expression it names, and a factory that, given a handshaken
// Session, returns the concrete *session.Stub[A, R] or
// *session.AsyncStub[A, R] for it. New returns its result as `any`
// because a Manifest holds entries of differing A/R per route; callers
// recover the concrete type with a single type assertion against
// Bound.Stub.
type Entry struct {
	Name    string
	ID      uint32
	Expr    string
	InType  []byte
	OutType []byte
	Async   bool

	New func(s *session.Session, id uint32) any
}

// Sync declares a synchronous RPC route.
func Sync[A, R any](name string, id uint32, expr string, argsCodec codec.Codec[A], resultCodec codec.Codec[R]) Entry {
	return Entry{
		Name:    name,
		ID:      id,
		Expr:    expr,
		InType:  desc.Encode(argsCodec.Type()),
		OutType: desc.Encode(resultCodec.Type()),
		New: func(s *session.Session, id uint32) any {
			return session.NewStub(s, id, argsCodec, resultCodec)
		},
	}
}

// Async declares an asynchronous RPC route. If resultCodec describes
// the unit shape, the constructed *session.AsyncStub is
// fire-and-forget: see session.AsyncStub.Invoke.
func Async[A, R any](name string, id uint32, expr string, argsCodec codec.Codec[A], resultCodec codec.Codec[R]) Entry {
	return Entry{
		Name:    name,
		ID:      id,
		Expr:    expr,
		InType:  desc.Encode(argsCodec.Type()),
		OutType: desc.Encode(resultCodec.Type()),
		Async:   true,
		New: func(s *session.Session, id uint32) any {
			return session.NewAsyncStub(s, id, argsCodec, resultCodec)
		},
	}
}

// AsyncNotify declares a fire-and-forget asynchronous RPC route: the
// peer never sends a reply, so no result codec is needed. It is
// shorthand for Async with a unit result, the Go-generics counterpart
// of net.H's AsyncRPCFunc<void(Args...)> specialization, which has no
// result type at all.
func AsyncNotify[A any](name string, id uint32, expr string, argsCodec codec.Codec[A]) Entry {
	return Async(name, id, expr, argsCodec, codec.Unit())
}

// Manifest is an ordered list of RPC route declarations. Order
// determines handshake order, which the peer may depend on for
// diagnostics but not for correctness.
type Manifest struct {
	Entries []Entry
}

func (m Manifest) decls() []session.Decl {
	ds := make([]session.Decl, len(m.Entries))
	for i, e := range m.Entries {
		ds[i] = session.Decl{ID: e.ID, Expr: e.Expr, InType: e.InType, OutType: e.OutType}
	}
	return ds
}

// Bound is a handshaken Session together with the stubs Build
// constructed from a Manifest.
type Bound struct {
	Session *session.Session
	stubs   map[string]any
}

// Stub returns the stub registered under name, or nil if no entry used
// that name. Callers type-assert the result to the concrete
// *session.Stub[A, R] or *session.AsyncStub[A, R] they declared.
func (b *Bound) Stub(name string) any {
	return b.stubs[name]
}

// Build performs the handshake on fd by declaring every entry of m, in
// order, then constructs and returns the bound stub set.
func Build(fd int, m Manifest, opts ...session.Option) (*Bound, error) {
	if len(m.Entries) == 0 {
		return nil, fmt.Errorf("bind: manifest has no entries")
	}
	seen := make(map[string]struct{}, len(m.Entries))
	for _, e := range m.Entries {
		if _, dup := seen[e.Name]; dup {
			return nil, fmt.Errorf("bind: duplicate route name %q", e.Name)
		}
		seen[e.Name] = struct{}{}
	}

	s, err := session.New(fd, m.decls(), opts...)
	if err != nil {
		return nil, err
	}

	stubs := make(map[string]any, len(m.Entries))
	for _, e := range m.Entries {
		stubs[e.Name] = e.New(s, e.ID)
	}
	return &Bound{Session: s, stubs: stubs}, nil
}
