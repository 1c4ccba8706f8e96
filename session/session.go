// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package session implements the handshake, synchronous RPC, and
// asynchronous RPC state machines that run on top of a single connected
// descriptor: one DEFEXPR declaration round-trip per configured route at
// setup, followed by INVOKE-framed calls for the session's lifetime.
//
// A Session tracks exactly one shared failure: any I/O error on its
// descriptor latches it broken, and every subsequent call — sync or
// async — fails fast with ErrSessionBroken instead of touching the fd
// again.
package session

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/typedrpc/typedrpc/internal/logx"
	"github.com/typedrpc/typedrpc/internal/metrics"
)

// ErrSessionBroken is returned by any call attempted after a prior I/O
// failure has latched the session.
var ErrSessionBroken = errors.New("session: broken by a prior I/O failure")

// Option configures a Session at construction.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// WithLogger attaches a structured logger to the session.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics attaches an instrument set built from an OpenTelemetry
// meter provider.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Session owns one connected, handshaken descriptor and the shared
// broken-or-not state every Stub and AsyncStub on it defers to.
type Session struct {
	mu     sync.Mutex
	fd     int
	broken bool
	err    error

	decls []Decl

	log  *zap.Logger
	mets *metrics.Metrics

	sched *Scheduler
}

// New performs the handshake on fd by declaring decls in order, and
// returns a Session ready for Stub/AsyncStub construction. On any
// failure fd is left exactly as the failing I/O call left it; the
// caller owns closing it.
func New(fd int, decls []Decl, opts ...Option) (*Session, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	if err := doHandshake(fd, decls); err != nil {
		return nil, err
	}
	o.metrics.RecordHandshake(time.Since(start))

	s := &Session{
		fd:    fd,
		decls: decls,
		log:   logx.Fallback(o.logger),
		mets:  o.metrics,
	}
	s.sched = newScheduler(s)
	return s, nil
}

// FD returns the session's underlying descriptor.
func (s *Session) FD() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fd
}

// Broken reports whether a prior I/O failure latched the session.
func (s *Session) Broken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broken
}

// Err returns the error that latched the session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// fail latches the session broken and returns err, called with mu held
// by every write/read path that touches the fd.
func (s *Session) fail(err error) error {
	if !s.broken {
		s.broken = true
		s.err = err
		s.log.Warn("session broken", zap.Error(err))
	}
	return err
}

// Close closes the underlying descriptor. The session is unusable
// afterward regardless of whether Close itself errors.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken = true
	if s.err == nil {
		s.err = ErrSessionBroken
	}
	return unix.Close(s.fd)
}

// Reconnect closes the current descriptor (ignoring its close error)
// and re-runs the handshake on fd with the same declarations, clearing
// the broken latch on success.
func (s *Session) Reconnect(fd int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = unix.Close(s.fd)
	if err := doHandshake(fd, s.decls); err != nil {
		s.fd = fd
		return s.fail(err)
	}
	s.fd = fd
	s.broken = false
	s.err = nil
	return nil
}

// Scheduler returns the session-wide FIFO driving this session's async
// RPC replies.
func (s *Session) Scheduler() *Scheduler { return s.sched }
