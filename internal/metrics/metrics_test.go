// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	m.RecordHandshake(time.Millisecond)
	m.AdjustPipelineDepth(1)
	m.IncCalls(7)

	m = New(nil)
	m.RecordHandshake(time.Millisecond)
	m.AdjustPipelineDepth(1)
	m.IncCalls(7)
}

func TestMetricsRecordsInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m := New(mp)
	m.RecordHandshake(5 * time.Millisecond)
	m.AdjustPipelineDepth(1)
	m.AdjustPipelineDepth(1)
	m.AdjustPipelineDepth(-1)
	m.IncCalls(3)
	m.IncCalls(3)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	names := make(map[string]bool)
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			names[met.Name] = true
		}
	}

	for _, want := range []string{
		"typedrpc.session.handshake.duration",
		"typedrpc.session.async.pipeline_depth",
		"typedrpc.session.rpc.calls",
	} {
		if !names[want] {
			t.Errorf("missing instrument %q in collected metrics", want)
		}
	}
}
