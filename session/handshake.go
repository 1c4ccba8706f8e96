// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package session

import "fmt"

const (
	wireVersion  uint32 = 0x00010000
	cmdDefExpr   uint8  = 0x00
	cmdInvoke    uint8  = 0x02
	resultFail   uint8  = 0x00
	resultAccept uint8  = 0x01
)

// Decl declares one RPC route to establish during handshake: a stable id
// the rest of the session uses to address it, the remote expression it
// names, and the canonical encodings of the argument-tuple and result
// descriptors the peer is expected to validate against.
type Decl struct {
	ID      uint32
	Expr    string
	InType  []byte
	OutType []byte
}

// HandshakeRejectedError reports that the peer refused one of the
// declared RPC routes, short-circuiting the rest of the declaration
// sequence.
type HandshakeRejectedError struct {
	ID      uint32
	Expr    string
	Message string
}

func (e *HandshakeRejectedError) Error() string {
	return fmt.Sprintf("session: peer rejected %q (id=%d): %s", e.Expr, e.ID, e.Message)
}

// doHandshake sends the version word followed by one DEFEXPR declaration
// per decl, in order, and stops at the first rejection.
func doHandshake(fd int, decls []Decl) error {
	if err := writeU32(fd, wireVersion); err != nil {
		return err
	}
	for _, d := range decls {
		if err := writeU8(fd, cmdDefExpr); err != nil {
			return err
		}
		if err := writeU32(fd, d.ID); err != nil {
			return err
		}
		if err := writeString(fd, d.Expr); err != nil {
			return err
		}
		if err := writeBytes(fd, d.InType); err != nil {
			return err
		}
		if err := writeBytes(fd, d.OutType); err != nil {
			return err
		}

		result, err := readU8(fd)
		if err != nil {
			return err
		}
		if result == resultFail {
			msg, err := readString(fd)
			if err != nil {
				return err
			}
			return &HandshakeRejectedError{ID: d.ID, Expr: d.Expr, Message: msg}
		}
	}
	return nil
}
