// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transport is an optional, protocol-agnostic RPC surface that
// sits alongside the session package rather than inside it. session
// speaks the fixed-framing, descriptor-typed wire protocol directly on
// a raw descriptor; transport exists for callers who want a
// method-dispatch RPC client/server instead, for interop or tooling
// where the peer does not implement that wire protocol.
//
// The default transport ("frame") is a small length-prefixed binary
// protocol implemented entirely on the standard library. Alternate
// transports are compiled in with build tags:
//
//	go build              # frame transport only (default)
//	go build -tags grpc   # also registers a gRPC transport
//	go build -tags json   # also registers a JSON-RPC/HTTP transport
//
// Application code should depend on Client/Server, not on a specific
// transport's concrete types, so that transport selection stays a
// deployment decision.
package transport

import (
	"context"
	"io"
	"sync"
)

// Client is the protocol-agnostic RPC client interface.
type Client interface {
	// Call makes a synchronous RPC call.
	Call(ctx context.Context, method string, args, reply any) error

	// CallRaw makes a call with pre-encoded bytes, bypassing Codec.
	CallRaw(ctx context.Context, method string, payload []byte) ([]byte, error)

	// Notify sends a one-way message; no response is read.
	Notify(ctx context.Context, method string, args any) error

	Close() error
}

// Server is the protocol-agnostic RPC server interface.
type Server interface {
	// RegisterRaw registers a handler for method.
	RegisterRaw(method string, handler RawHandler) error

	// Serve starts serving requests and passes ctx to the handlers. The
	// frame server's Serve blocks until Close is called; it does not
	// return when ctx is cancelled.
	Serve(ctx context.Context) error

	Close() error

	Addr() string
}

// RawHandler handles one RPC method's pre-encoded payload.
type RawHandler func(ctx context.Context, payload []byte) ([]byte, error)

// Codec encodes and decodes RPC call arguments and results.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// Transport is the underlying byte-stream abstraction a Client or
// Server is built on.
type Transport interface {
	io.Closer
	Send(ctx context.Context, data []byte) error
	Recv(ctx context.Context) ([]byte, error)
}

// DialOption configures Dial.
type DialOption func(*dialOptions)

type dialOptions struct {
	codec     Codec
	transport string
}

// WithCodec overrides the Codec used for Call/Notify's structured path.
func WithCodec(c Codec) DialOption {
	return func(o *dialOptions) { o.codec = c }
}

// WithTransport selects a registered transport by name.
func WithTransport(name string) DialOption {
	return func(o *dialOptions) { o.transport = name }
}

// ServerOption configures Listen.
type ServerOption func(*serverOptions)

type serverOptions struct {
	codec     Codec
	transport string
}

// WithServerCodec records a Codec in the server options. RegisterRaw
// handlers always receive raw payloads; the frame server does not read
// this Codec.
func WithServerCodec(c Codec) ServerOption {
	return func(o *serverOptions) { o.codec = c }
}

// WithServerTransport selects a registered transport by name.
func WithServerTransport(name string) ServerOption {
	return func(o *serverOptions) { o.transport = name }
}

// Transport names.
const (
	TransportFrame = "frame" // length-prefixed binary, default
	TransportGRPC  = "grpc"  // requires -tags grpc
	TransportJSON  = "json"  // requires -tags json
)

// DefaultTransport is used when no WithTransport/WithServerTransport
// option is given.
const DefaultTransport = TransportFrame

type dialFunc func(ctx context.Context, addr string, o *dialOptions) (Client, error)
type listenFunc func(addr string, o *serverOptions) (Server, error)

var (
	transportsMu sync.RWMutex
	transports   = map[string]struct {
		dial   dialFunc
		listen listenFunc
	}{
		TransportFrame: {dialFrame, listenFrame},
	}
)

// registerTransport is called from build-tag-gated files' init functions.
func registerTransport(name string, dial dialFunc, listen listenFunc) {
	transportsMu.Lock()
	defer transportsMu.Unlock()
	transports[name] = struct {
		dial   dialFunc
		listen listenFunc
	}{dial, listen}
}

// AvailableTransports lists the transport names compiled into this
// binary.
func AvailableTransports() []string {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	names := make([]string, 0, len(transports))
	for name := range transports {
		names = append(names, name)
	}
	return names
}

// HasTransport reports whether name is compiled in.
func HasTransport(name string) bool {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	_, ok := transports[name]
	return ok
}

// Dial connects to addr using the requested (or default) transport.
func Dial(ctx context.Context, addr string, opts ...DialOption) (Client, error) {
	o := &dialOptions{transport: DefaultTransport}
	for _, opt := range opts {
		opt(o)
	}
	transportsMu.RLock()
	t, ok := transports[o.transport]
	transportsMu.RUnlock()
	if !ok {
		return nil, unknownTransportError(o.transport)
	}
	return t.dial(ctx, addr, o)
}

// Listen starts a server on addr using the requested (or default)
// transport.
func Listen(addr string, opts ...ServerOption) (Server, error) {
	o := &serverOptions{transport: DefaultTransport}
	for _, opt := range opts {
		opt(o)
	}
	transportsMu.RLock()
	t, ok := transports[o.transport]
	transportsMu.RUnlock()
	if !ok {
		return nil, unknownTransportError(o.transport)
	}
	return t.listen(addr, o)
}
