// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package session

import (
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/typedrpc/typedrpc/codec"
)

func socketpair(t *testing.T) (a, b *os.File) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	return os.NewFile(uintptr(fds[0]), "a"), os.NewFile(uintptr(fds[1]), "b")
}

// acceptDecls plays the remote side of the handshake: reads the version
// word, then for each expected declaration reads and accepts it.
func acceptDecls(t *testing.T, fd int, n int) {
	t.Helper()
	if _, err := readU32(fd); err != nil {
		t.Fatalf("server: read version: %v", err)
	}
	for i := 0; i < n; i++ {
		if _, err := readU8(fd); err != nil { // cmd
			t.Fatalf("server: read cmd: %v", err)
		}
		if _, err := readU32(fd); err != nil { // id
			t.Fatalf("server: read id: %v", err)
		}
		if _, err := readString(fd); err != nil { // expr
			t.Fatalf("server: read expr: %v", err)
		}
		if _, err := readBytes(fd); err != nil { // in type
			t.Fatalf("server: read in type: %v", err)
		}
		if _, err := readBytes(fd); err != nil { // out type
			t.Fatalf("server: read out type: %v", err)
		}
		if err := writeU8(fd, resultAccept); err != nil {
			t.Fatalf("server: write accept: %v", err)
		}
	}
}

func TestHandshakeAccepts(t *testing.T) {
	a, b := socketpair(t)
	defer a.Close()
	defer b.Close()

	decls := []Decl{
		{ID: 1, Expr: "double", InType: []byte{1}, OutType: []byte{2}},
		{ID: 2, Expr: "triple", InType: []byte{3}, OutType: []byte{4}},
	}

	done := make(chan struct{})
	go func() {
		acceptDecls(t, int(b.Fd()), len(decls))
		close(done)
	}()

	s, err := New(int(a.Fd()), decls)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	<-done
	if s.Broken() {
		t.Error("session should not be broken after a clean handshake")
	}
}

func TestHandshakeRejects(t *testing.T) {
	a, b := socketpair(t)
	defer a.Close()
	defer b.Close()

	decls := []Decl{{ID: 1, Expr: "bogus", InType: nil, OutType: nil}}

	go func() {
		_, _ = readU32(int(b.Fd()))
		_, _ = readU8(int(b.Fd()))
		_, _ = readU32(int(b.Fd()))
		_, _ = readString(int(b.Fd()))
		_, _ = readBytes(int(b.Fd()))
		_, _ = readBytes(int(b.Fd()))
		_ = writeU8(int(b.Fd()), resultFail)
		_ = writeString(int(b.Fd()), "no such expression")
	}()

	_, err := New(int(a.Fd()), decls)
	if err == nil {
		t.Fatal("expected handshake rejection error")
	}
	var rejected *HandshakeRejectedError
	if !as(err, &rejected) {
		t.Fatalf("got %v, want *HandshakeRejectedError", err)
	}
	if rejected.Message != "no such expression" {
		t.Errorf("got message %q", rejected.Message)
	}
}

// as is a tiny local errors.As to avoid importing errors just for this.
func as(err error, target **HandshakeRejectedError) bool {
	if e, ok := err.(*HandshakeRejectedError); ok {
		*target = e
		return true
	}
	return false
}

func TestSyncStubRoundTrip(t *testing.T) {
	a, b := socketpair(t)
	defer a.Close()
	defer b.Close()

	decls := []Decl{{ID: 1, Expr: "addOne", InType: nil, OutType: nil}}
	done := make(chan struct{})
	go func() {
		defer close(done)
		fd := int(b.Fd())
		acceptDecls(t, fd, len(decls))

		if _, err := readU8(fd); err != nil { // cmdInvoke
			t.Errorf("server: read cmd: %v", err)
			return
		}
		if _, err := readU32(fd); err != nil { // id
			t.Errorf("server: read id: %v", err)
			return
		}
		var arg int32
		if err := codec.Prim[int32]("int").Read(fd, &arg); err != nil {
			t.Errorf("server: read arg: %v", err)
			return
		}
		result := arg + 1
		if err := codec.Prim[int32]("int").Write(fd, &result); err != nil {
			t.Errorf("server: write result: %v", err)
			return
		}
	}()

	s, err := New(int(a.Fd()), decls)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stub := NewStub(s, 1, codec.Prim[int32]("int"), codec.Prim[int32]("int"))

	got, err := stub.Call(41)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
	<-done
}

func TestAsyncStubRoundTrip(t *testing.T) {
	a, b := socketpair(t)
	defer a.Close()
	defer b.Close()

	decls := []Decl{{ID: 1, Expr: "addOne", InType: nil, OutType: nil}}
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		fd := int(b.Fd())
		acceptDecls(t, fd, len(decls))

		for i := 0; i < 3; i++ {
			if _, err := readU8(fd); err != nil {
				t.Errorf("server: read cmd: %v", err)
				return
			}
			if _, err := readU32(fd); err != nil {
				t.Errorf("server: read id: %v", err)
				return
			}
			var arg int32
			if err := codec.Prim[int32]("int").Read(fd, &arg); err != nil {
				t.Errorf("server: read arg: %v", err)
				return
			}
			result := arg + 1
			if err := codec.Prim[int32]("int").Write(fd, &result); err != nil {
				t.Errorf("server: write result: %v", err)
				return
			}
		}
	}()

	s, err := New(int(a.Fd()), decls)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stub := NewAsyncStub(s, 1, codec.Prim[int32]("int"), codec.Prim[int32]("int"))

	var results []int32
	for i := int32(1); i <= 3; i++ {
		arg := i
		if err := stub.Invoke(arg, func(r int32) { results = append(results, r) }); err != nil {
			t.Fatalf("Invoke: %v", err)
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for len(results) < 3 {
		if err := s.Scheduler().Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if time.Now().After(deadline) {
			t.Fatal("async replies never completed")
		}
		time.Sleep(time.Millisecond)
	}
	<-serverDone

	want := []int32{2, 3, 4}
	for i, w := range want {
		if results[i] != w {
			t.Errorf("results[%d] = %d, want %d", i, results[i], w)
		}
	}
}

func TestAsyncStubFireAndForget(t *testing.T) {
	a, b := socketpair(t)
	defer a.Close()
	defer b.Close()

	decls := []Decl{{ID: 1, Expr: "log", InType: nil, OutType: nil}}
	serverDone := make(chan struct{})
	received := make(chan int32, 3)
	go func() {
		defer close(serverDone)
		fd := int(b.Fd())
		acceptDecls(t, fd, len(decls))

		for i := 0; i < 3; i++ {
			if _, err := readU8(fd); err != nil {
				t.Errorf("server: read cmd: %v", err)
				return
			}
			if _, err := readU32(fd); err != nil {
				t.Errorf("server: read id: %v", err)
				return
			}
			var arg int32
			if err := codec.Prim[int32]("int").Read(fd, &arg); err != nil {
				t.Errorf("server: read arg: %v", err)
				return
			}
			received <- arg
		}
	}()

	s, err := New(int(a.Fd()), decls)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stub := NewAsyncStub(s, 1, codec.Prim[int32]("int"), codec.Unit())

	for i := int32(1); i <= 3; i++ {
		if err := stub.Invoke(i, nil); err != nil {
			t.Fatalf("Invoke: %v", err)
		}
	}

	if got := s.Scheduler().PendingRequests(); got != 0 {
		t.Errorf("PendingRequests() = %d, want 0 for a fire-and-forget stub", got)
	}

	deadline := time.After(5 * time.Second)
	for i := 0; i < 3; i++ {
		select {
		case arg := <-received:
			if arg != int32(i+1) {
				t.Errorf("received arg %d, want %d", arg, i+1)
			}
		case <-deadline:
			t.Fatal("server never received all fire-and-forget requests")
		}
	}
	<-serverDone
}
