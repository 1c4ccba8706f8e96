// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package netio

import (
	"errors"
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func socketpair(t *testing.T) (a, b *os.File) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	return os.NewFile(uintptr(fds[0]), "a"), os.NewFile(uintptr(fds[1]), "b")
}

func TestSendAllRecvAll(t *testing.T) {
	a, b := socketpair(t)
	defer a.Close()
	defer b.Close()

	want := []byte("hello, typed session wire")
	go func() {
		if err := SendAll(int(a.Fd()), want); err != nil {
			t.Errorf("SendAll: %v", err)
		}
	}()

	got := make([]byte, len(want))
	if err := RecvAll(int(b.Fd()), got); err != nil {
		t.Fatalf("RecvAll: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRecvAllPeerClosed(t *testing.T) {
	a, b := socketpair(t)
	defer b.Close()

	a.Close()

	buf := make([]byte, 4)
	err := RecvAll(int(b.Fd()), buf)
	if !errors.Is(err, ErrPeerClosed) {
		t.Fatalf("got %v, want ErrPeerClosed", err)
	}
}

func TestRecvSomeWouldBlock(t *testing.T) {
	a, b := socketpair(t)
	defer a.Close()
	defer b.Close()

	if err := SetBlocking(int(b.Fd()), false); err != nil {
		t.Fatalf("SetBlocking: %v", err)
	}

	buf := make([]byte, 16)
	n, err := RecvSome(int(b.Fd()), buf)
	if err != nil {
		t.Fatalf("RecvSome: %v", err)
	}
	if n != 0 {
		t.Fatalf("got n=%d, want 0 (would-block)", n)
	}
}

func TestRecvSomePartialThenClose(t *testing.T) {
	a, b := socketpair(t)
	defer b.Close()

	if err := SetBlocking(int(b.Fd()), false); err != nil {
		t.Fatalf("SetBlocking: %v", err)
	}

	if err := SendAll(int(a.Fd()), []byte{1, 2, 3}); err != nil {
		t.Fatalf("SendAll: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	buf := make([]byte, 3)
	n, err := RecvSome(int(b.Fd()), buf)
	if err != nil {
		t.Fatalf("RecvSome: %v", err)
	}
	if n != 3 {
		t.Fatalf("got n=%d, want 3", n)
	}

	a.Close()
	time.Sleep(5 * time.Millisecond)

	n, err = RecvSome(int(b.Fd()), buf)
	if n != 0 || !errors.Is(err, ErrPeerClosed) {
		t.Fatalf("got (%d, %v), want (0, ErrPeerClosed)", n, err)
	}
}
