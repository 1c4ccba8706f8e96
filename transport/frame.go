// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrClosed      = errors.New("transport: connection closed")
	ErrInvalidResp = errors.New("transport: invalid response")
)

// messageType identifies a frame's payload kind.
type messageType uint8

const (
	msgRequest  messageType = 0x01
	msgResponse messageType = 0x02
	msgError    messageType = 0x03
	msgNotify   messageType = 0x04
)

const maxFrameLen = 64 * 1024 * 1024

// frameConn is a Client built on the length-prefixed binary protocol:
// each frame is [4 len][1 type][payload], requests carry a 4-byte id
// and a 2-byte method-name length ahead of their payload so responses
// can be correlated out of order.
type frameConn struct {
	conn     net.Conn
	codec    Codec
	writeMu  sync.Mutex
	pending  sync.Map // uint32 requestID -> chan pendingResult
	nextID   atomic.Uint32
	closed   atomic.Bool
	readDone chan struct{}
}

type pendingResult struct {
	data []byte
	err  error
}

func dialFrame(ctx context.Context, addr string, o *dialOptions) (Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: frame dial: %w", err)
	}
	c := &frameConn{conn: conn, codec: o.codec, readDone: make(chan struct{})}
	go c.readLoop()
	return c, nil
}

func (c *frameConn) Call(ctx context.Context, method string, args, reply any) error {
	var payload []byte
	var err error
	if args != nil {
		payload, err = c.codecOrDefault().Encode(args)
		if err != nil {
			return fmt.Errorf("transport: encode args: %w", err)
		}
	}

	resp, err := c.CallRaw(ctx, method, payload)
	if err != nil {
		return err
	}
	if reply != nil && len(resp) > 0 {
		if err := c.codecOrDefault().Decode(resp, reply); err != nil {
			return fmt.Errorf("transport: decode reply: %w", err)
		}
	}
	return nil
}

func (c *frameConn) CallRaw(ctx context.Context, method string, payload []byte) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	id := c.nextID.Add(1)
	ch := make(chan pendingResult, 1)
	c.pending.Store(id, ch)
	defer c.pending.Delete(id)

	if err := c.writeRequest(id, method, payload); err != nil {
		return nil, fmt.Errorf("transport: write: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.data, r.err
	case <-c.readDone:
		return nil, ErrClosed
	}
}

func (c *frameConn) Notify(ctx context.Context, method string, args any) error {
	var payload []byte
	var err error
	if args != nil {
		payload, err = c.codecOrDefault().Encode(args)
		if err != nil {
			return fmt.Errorf("transport: encode args: %w", err)
		}
	}

	methodBytes := []byte(method)
	msgLen := 1 + 2 + len(methodBytes) + len(payload)
	buf := make([]byte, 4+msgLen)
	binary.BigEndian.PutUint32(buf[0:4], uint32(msgLen))
	buf[4] = byte(msgNotify)
	binary.BigEndian.PutUint16(buf[5:7], uint16(len(methodBytes)))
	copy(buf[7:], methodBytes)
	copy(buf[7+len(methodBytes):], payload)

	c.writeMu.Lock()
	_, err = c.conn.Write(buf)
	c.writeMu.Unlock()
	return err
}

func (c *frameConn) writeRequest(id uint32, method string, payload []byte) error {
	methodBytes := []byte(method)
	msgLen := 1 + 4 + 2 + len(methodBytes) + len(payload)
	buf := make([]byte, 4+msgLen)
	binary.BigEndian.PutUint32(buf[0:4], uint32(msgLen))
	buf[4] = byte(msgRequest)
	binary.BigEndian.PutUint32(buf[5:9], id)
	binary.BigEndian.PutUint16(buf[9:11], uint16(len(methodBytes)))
	copy(buf[11:], methodBytes)
	copy(buf[11+len(methodBytes):], payload)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.conn.Write(buf)
	return err
}

func (c *frameConn) codecOrDefault() Codec {
	if c.codec != nil {
		return c.codec
	}
	return defaultCodec
}

func (c *frameConn) readLoop() {
	defer close(c.readDone)

	header := make([]byte, 4)
	for {
		if _, err := io.ReadFull(c.conn, header); err != nil {
			return
		}
		msgLen := binary.BigEndian.Uint32(header)
		if msgLen == 0 || msgLen > maxFrameLen {
			return
		}
		msg := make([]byte, msgLen)
		if _, err := io.ReadFull(c.conn, msg); err != nil {
			return
		}
		if len(msg) < 5 {
			continue
		}

		typ := messageType(msg[0])
		id := binary.BigEndian.Uint32(msg[1:5])
		payload := msg[5:]

		ch, ok := c.pending.Load(id)
		if !ok {
			continue
		}
		switch typ {
		case msgResponse:
			ch.(chan pendingResult) <- pendingResult{data: payload}
		case msgError:
			ch.(chan pendingResult) <- pendingResult{err: errors.New(string(payload))}
		}
	}
}

func (c *frameConn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}

// frameServer dispatches incoming frame requests to registered
// RawHandlers.
type frameServer struct {
	listener net.Listener
	handlers map[string]RawHandler
	conns    sync.Map
	closed   atomic.Bool
}

func listenFrame(addr string, o *serverOptions) (Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: frame listen: %w", err)
	}
	return &frameServer{listener: l, handlers: make(map[string]RawHandler)}, nil
}

func (s *frameServer) RegisterRaw(method string, handler RawHandler) error {
	s.handlers[method] = handler
	return nil
}

func (s *frameServer) Serve(ctx context.Context) error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *frameServer) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	s.conns.Store(conn, struct{}{})
	defer s.conns.Delete(conn)

	header := make([]byte, 4)
	for {
		if _, err := io.ReadFull(conn, header); err != nil {
			return
		}
		msgLen := binary.BigEndian.Uint32(header)
		if msgLen == 0 || msgLen > maxFrameLen {
			return
		}
		msg := make([]byte, msgLen)
		if _, err := io.ReadFull(conn, msg); err != nil {
			return
		}
		if len(msg) < 1 {
			continue
		}

		switch messageType(msg[0]) {
		case msgRequest:
			if len(msg) < 7 {
				continue
			}
			id := binary.BigEndian.Uint32(msg[1:5])
			methodLen := binary.BigEndian.Uint16(msg[5:7])
			if len(msg) < 7+int(methodLen) {
				continue
			}
			method := string(msg[7 : 7+methodLen])
			payload := msg[7+methodLen:]
			go func() {
				resp, err := s.dispatch(ctx, method, payload)
				s.sendResponse(conn, id, resp, err)
			}()

		case msgNotify:
			if len(msg) < 3 {
				continue
			}
			methodLen := binary.BigEndian.Uint16(msg[1:3])
			if len(msg) < 3+int(methodLen) {
				continue
			}
			method := string(msg[3 : 3+methodLen])
			payload := msg[3+methodLen:]
			go s.dispatch(ctx, method, payload)
		}
	}
}

func (s *frameServer) dispatch(ctx context.Context, method string, payload []byte) ([]byte, error) {
	handler, ok := s.handlers[method]
	if !ok {
		return nil, fmt.Errorf("transport: unknown method %q", method)
	}
	return handler(ctx, payload)
}

func (s *frameServer) sendResponse(conn net.Conn, id uint32, data []byte, err error) {
	typ := msgResponse
	payload := data
	if err != nil {
		typ = msgError
		payload = []byte(err.Error())
	}

	msgLen := 1 + 4 + len(payload)
	buf := make([]byte, 4+msgLen)
	binary.BigEndian.PutUint32(buf[0:4], uint32(msgLen))
	buf[4] = byte(typ)
	binary.BigEndian.PutUint32(buf[5:9], id)
	copy(buf[9:], payload)

	conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
	conn.Write(buf)
}

func (s *frameServer) Close() error {
	s.closed.Store(true)
	s.conns.Range(func(key, _ any) bool {
		key.(net.Conn).Close()
		return true
	})
	return s.listener.Close()
}

func (s *frameServer) Addr() string {
	return s.listener.Addr().String()
}
