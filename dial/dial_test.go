// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dial

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func listener(t *testing.T) net.Listener {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func acceptOne(t *testing.T, l net.Listener) {
	t.Helper()
	go func() {
		conn, err := l.Accept()
		if err == nil {
			conn.Close()
		}
	}()
}

func TestHostConnects(t *testing.T) {
	l := listener(t)
	acceptOne(t, l)

	host, portStr, err := net.SplitHostPort(l.Addr().String())
	if err != nil {
		t.Fatalf("SplitHostPort: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("Atoi: %v", err)
	}

	fd, err := Host(host, port)
	if err != nil {
		t.Fatalf("Host: %v", err)
	}
	defer unix.Close(fd)
}

func TestAddressConnects(t *testing.T) {
	l := listener(t)
	acceptOne(t, l)

	fd, err := Address(l.Addr().String())
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	defer unix.Close(fd)
}

func TestConnAdoptsExistingConnection(t *testing.T) {
	l := listener(t)
	acceptOne(t, l)

	c, err := net.Dial("tcp", l.Addr().String())
	if err != nil {
		t.Fatalf("net.Dial: %v", err)
	}
	defer c.Close()

	fd, err := Conn(c)
	if err != nil {
		t.Fatalf("Conn: %v", err)
	}
	defer unix.Close(fd)

	if _, err := unix.Write(fd, []byte("x")); err != nil {
		t.Errorf("Write on duplicated fd: %v", err)
	}
}

func TestFDIsIdentity(t *testing.T) {
	if FD(7) != 7 {
		t.Error("FD should return its argument unchanged")
	}
}

func TestHostReportsConnectError(t *testing.T) {
	// Nothing listens on 127.0.0.1:1; the kernel refuses the connection
	// immediately rather than timing out.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := Host("127.0.0.1", 1, WithContext(ctx))
	if err == nil {
		t.Fatal("expected a connection error")
	}
	var connErr *ConnectError
	if !errors.As(err, &connErr) {
		t.Fatalf("got %v (%T), want *ConnectError", err, err)
	}
	if connErr.Host != "127.0.0.1" || connErr.Port != "1" {
		t.Errorf("got Host=%q Port=%q, want 127.0.0.1/1", connErr.Host, connErr.Port)
	}
	if connErr.Unwrap() == nil {
		t.Error("ConnectError should unwrap to the underlying net error")
	}
}

func TestAddressReportsResolveError(t *testing.T) {
	// A ']' outside brackets makes the joined local address unparsable,
	// which net.ResolveTCPAddr rejects without performing a DNS lookup.
	_, err := Address("host:80", WithLocalAddr("bad]addr"))
	if err == nil {
		t.Fatal("expected a resolve error")
	}
	var resolveErr *ResolveError
	if !errors.As(err, &resolveErr) {
		t.Fatalf("got %v (%T), want *ResolveError", err, err)
	}
	if resolveErr.Unwrap() == nil {
		t.Error("ResolveError should unwrap to the underlying net error")
	}
}
