// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dial establishes the raw, connected descriptor a Session
// performs its handshake on. It mirrors the constructor overload set
// DEFINE_NET_CLIENT generated in the original implementation — numeric
// port, service name, "host:port", a pre-connected net.Conn, or a
// pre-connected fd — but leaves address-candidate iteration to the
// standard library's Dialer instead of hand-rolling getaddrinfo.
package dial

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// ResolveError reports that an address needed to establish a connection
// could not be resolved: either the caller's local bind address or the
// remote host:port pair. Host and Port name whichever address failed
// to resolve, and Err unwraps to the underlying net package error.
type ResolveError struct {
	Host string
	Port string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("dial: resolving %s:%s: %v", e.Host, e.Port, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// ConnectError reports that a resolved address was reachable for
// resolution but the TCP connection to it failed.
type ConnectError struct {
	Host string
	Port string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("dial: connecting to %s:%s: %v", e.Host, e.Port, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Option configures how a connection is established.
type Option func(*options)

type options struct {
	localAddr string
	ctx       context.Context
}

// WithLocalAddr binds the outgoing connection to a local address before
// connecting, mirroring the original's localAddr-overload constructors.
func WithLocalAddr(addr string) Option {
	return func(o *options) { o.localAddr = addr }
}

// WithContext threads a context through the dial for cancellation and
// deadlines.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// Host connects to host:port, port given numerically.
func Host(host string, port int, opts ...Option) (int, error) {
	return dial(host, strconv.Itoa(port), opts...)
}

// HostService connects to host, resolving service against /etc/services
// the way the original's string-port constructors did.
func HostService(host, service string, opts ...Option) (int, error) {
	return dial(host, service, opts...)
}

// Address connects to a "host:port" string.
func Address(hostport string, opts ...Option) (int, error) {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return 0, fmt.Errorf("dial: %w", err)
	}
	return dial(host, port, opts...)
}

// Conn adopts an already-connected net.Conn, duplicating its underlying
// descriptor so the caller's Conn and the returned fd can be closed
// independently.
func Conn(conn net.Conn) (int, error) {
	return rawFD(conn)
}

// FD adopts an already-connected descriptor as-is.
func FD(fd int) int { return fd }

func dial(host, port string, opts ...Option) (int, error) {
	o := options{ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}

	d := &net.Dialer{}
	if o.localAddr != "" {
		local, err := net.ResolveTCPAddr("tcp", net.JoinHostPort(o.localAddr, "0"))
		if err != nil {
			return 0, &ResolveError{Host: o.localAddr, Port: "0", Err: err}
		}
		d.LocalAddr = local
	}

	conn, err := d.DialContext(o.ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return 0, &ResolveError{Host: host, Port: port, Err: err}
		}
		return 0, &ConnectError{Host: host, Port: port, Err: err}
	}
	defer conn.Close()

	return rawFD(conn)
}

// rawFD duplicates conn's underlying descriptor, leaving conn's own
// lifecycle independent of the duplicate.
func rawFD(conn net.Conn) (int, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return 0, fmt.Errorf("dial: %T does not expose a raw descriptor", conn)
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return 0, fmt.Errorf("dial: %w", err)
	}

	var fd int
	var dupErr error
	if err := rc.Control(func(ufd uintptr) {
		fd, dupErr = unix.Dup(int(ufd))
	}); err != nil {
		return 0, fmt.Errorf("dial: %w", err)
	}
	if dupErr != nil {
		return 0, fmt.Errorf("dial: dup: %w", dupErr)
	}
	return fd, nil
}
