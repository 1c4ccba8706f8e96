// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bind

import (
	"encoding/binary"
	"os"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/typedrpc/typedrpc/codec"
	"github.com/typedrpc/typedrpc/session"
)

// readFramed drains one length-prefixed field (8-byte native-endian
// length, then that many bytes), mirroring the handshake wire format.
func readFramed(fd int) ([]byte, error) {
	lb := make([]byte, 8)
	if err := readFull(fd, lb); err != nil {
		return nil, err
	}
	n := binary.NativeEndian.Uint64(lb)
	if n == 0 {
		return nil, nil
	}
	b := make([]byte, n)
	if err := readFull(fd, b); err != nil {
		return nil, err
	}
	return b, nil
}

func readFull(fd int, buf []byte) error {
	for read := 0; read < len(buf); {
		n, err := unix.Read(fd, buf[read:])
		if err != nil {
			return err
		}
		read += n
	}
	return nil
}

func socketpair(t *testing.T) (a, b *os.File) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	return os.NewFile(uintptr(fds[0]), "a"), os.NewFile(uintptr(fds[1]), "b")
}

func TestBuildConstructsTypedStubs(t *testing.T) {
	a, b := socketpair(t)
	defer a.Close()
	defer b.Close()

	m := Manifest{Entries: []Entry{
		Sync("AddOne", 1, "addOne", codec.Prim[int32]("int"), codec.Prim[int32]("int")),
		Async("Double", 2, "double", codec.Prim[int32]("int"), codec.Prim[int32]("int")),
	}}

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		fd := int(b.Fd())

		var version [4]byte
		if err := readFull(fd, version[:]); err != nil {
			t.Errorf("server: read version: %v", err)
			return
		}
		for i := 0; i < len(m.Entries); i++ {
			hdr := make([]byte, 1+4)
			if err := readFull(fd, hdr); err != nil {
				t.Errorf("server: read header: %v", err)
				return
			}
			for _, field := range []string{"expr", "intype", "outtype"} {
				if _, err := readFramed(fd); err != nil {
					t.Errorf("server: read %s: %v", field, err)
					return
				}
			}
			if _, err := unix.Write(fd, []byte{1}); err != nil { // accept
				t.Errorf("server: write accept: %v", err)
				return
			}
		}
	}()

	bound, err := Build(int(a.Fd()), m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	<-serverDone

	if _, ok := bound.Stub("AddOne").(*session.Stub[int32, int32]); !ok {
		t.Error("AddOne should be a *session.Stub[int32, int32]")
	}
	if _, ok := bound.Stub("Double").(*session.AsyncStub[int32, int32]); !ok {
		t.Error("Double should be a *session.AsyncStub[int32, int32]")
	}
	if bound.Stub("NoSuchRoute") != nil {
		t.Error("unknown route name should return nil")
	}
}

func TestBuildRejectsDuplicateNames(t *testing.T) {
	a, b := socketpair(t)
	defer a.Close()
	defer b.Close()

	m := Manifest{Entries: []Entry{
		Sync("Same", 1, "a", codec.Prim[int32]("int"), codec.Prim[int32]("int")),
		Sync("Same", 2, "b", codec.Prim[int32]("int"), codec.Prim[int32]("int")),
	}}

	if _, err := Build(int(a.Fd()), m); err == nil {
		t.Fatal("expected an error for duplicate route names")
	}
}

func TestBuildRejectsEmptyManifest(t *testing.T) {
	a, b := socketpair(t)
	defer a.Close()
	defer b.Close()

	if _, err := Build(int(a.Fd()), Manifest{}); err == nil {
		t.Fatal("expected an error for an empty manifest")
	}
}
