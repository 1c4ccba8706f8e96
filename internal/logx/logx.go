// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package logx is the session layer's injection point for structured
// logging: every package that logs on a per-call path takes a
// *zap.Logger rather than calling the global logger, and defaults to a
// no-op logger when none is supplied.
package logx

import "go.uber.org/zap"

// Nop returns the shared no-op logger used when a caller does not
// configure one explicitly.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// Fallback returns l if non-nil, otherwise the no-op logger.
func Fallback(l *zap.Logger) *zap.Logger {
	if l == nil {
		return Nop()
	}
	return l
}
