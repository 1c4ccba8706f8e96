// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logx

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFallbackUsesGivenLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core)

	got := Fallback(l)
	got.Info("hello")

	if logs.Len() != 1 {
		t.Fatalf("got %d log entries, want 1", logs.Len())
	}
	if logs.All()[0].Message != "hello" {
		t.Errorf("got message %q", logs.All()[0].Message)
	}
}

func TestFallbackDefaultsToNop(t *testing.T) {
	l := Fallback(nil)
	if l == nil {
		t.Fatal("Fallback(nil) returned a nil logger")
	}
	// Nop must not panic on use; there is no observable effect to assert.
	l.Info("discarded")
}

func TestNop(t *testing.T) {
	if Nop() == nil {
		t.Fatal("Nop returned nil")
	}
}
