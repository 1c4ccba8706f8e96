// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics wires the session layer's handshake latency, async
// pipeline depth, and call counters into OpenTelemetry. A Metrics value
// with a nil meter degrades every recording call to a no-op, so callers
// never need to guard on whether metrics were configured.
package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the instruments the session package records against.
type Metrics struct {
	handshakeLatency metric.Float64Histogram
	pipelineDepth    metric.Int64UpDownCounter
	calls            metric.Int64Counter
}

// New builds the instrument set from mp. A nil provider yields a
// Metrics whose recording methods are all no-ops.
func New(mp metric.MeterProvider) *Metrics {
	if mp == nil {
		return &Metrics{}
	}
	meter := mp.Meter("github.com/typedrpc/typedrpc/session")

	handshakeLatency, _ := meter.Float64Histogram(
		"typedrpc.session.handshake.duration",
		metric.WithDescription("time spent negotiating RPC declarations during session setup"),
		metric.WithUnit("ms"),
	)
	pipelineDepth, _ := meter.Int64UpDownCounter(
		"typedrpc.session.async.pipeline_depth",
		metric.WithDescription("number of async RPC replies currently in flight on a session"),
	)
	calls, _ := meter.Int64Counter(
		"typedrpc.session.rpc.calls",
		metric.WithDescription("number of RPC invocations issued, by route id"),
	)
	return &Metrics{handshakeLatency: handshakeLatency, pipelineDepth: pipelineDepth, calls: calls}
}

// RecordHandshake records how long session setup took.
func (m *Metrics) RecordHandshake(d time.Duration) {
	if m == nil || m.handshakeLatency == nil {
		return
	}
	m.handshakeLatency.Record(context.Background(), float64(d.Milliseconds()))
}

// AdjustPipelineDepth updates the count of in-flight async replies by delta.
func (m *Metrics) AdjustPipelineDepth(delta int64) {
	if m == nil || m.pipelineDepth == nil {
		return
	}
	m.pipelineDepth.Add(context.Background(), delta)
}

// IncCalls records one invocation of the RPC route identified by id.
func (m *Metrics) IncCalls(id uint32) {
	if m == nil || m.calls == nil {
		return
	}
	m.calls.Add(context.Background(), 1, metric.WithAttributes(attribute.Int("route_id", int(id))))
}
