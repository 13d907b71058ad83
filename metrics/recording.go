// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"context"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"rivaas.dev/endpoint/pipeline"
)

// CallMetrics tracks one endpoint call between [Recorder.Start] and
// [Recorder.Finish].
type CallMetrics struct {
	StartTime  time.Time
	Attributes []attribute.KeyValue
}

// AddAttributes adds attributes recorded when the call finishes.
func (m *CallMetrics) AddAttributes(attrs ...attribute.KeyValue) {
	m.Attributes = append(m.Attributes, attrs...)
}

// Start begins tracking a call of the endpoint described by info.
//
// Example:
//
//	m := recorder.Start(ctx, info)
//	defer recorder.Finish(ctx, m, metrics.OutcomeCompleted)
func (r *Recorder) Start(ctx context.Context, info pipeline.Info) *CallMetrics {
	m := &CallMetrics{
		StartTime:  time.Now(),
		Attributes: r.endpointAttrs(info),
	}
	r.activeCalls.Add(ctx, 1, metric.WithAttributes(m.Attributes...))
	return m
}

// Finish records the duration and outcome of a call started with [Recorder.Start].
func (r *Recorder) Finish(ctx context.Context, m *CallMetrics, outcome Outcome) {
	if m == nil {
		return
	}
	elapsed := time.Since(m.StartTime).Seconds()

	r.activeCalls.Add(ctx, -1, metric.WithAttributes(m.Attributes...))

	attrs := append(slices.Clip(m.Attributes), AttrOutcome.String(string(outcome)))
	r.callDuration.Record(ctx, elapsed, metric.WithAttributes(attrs...))
	r.callCount.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordStage records the time spent in a stage, including everything the
// stage wrapped, and counts the fault when err is not nil.
func (r *Recorder) RecordStage(ctx context.Context, info pipeline.Info, stage string, d time.Duration, err error) {
	attrs := append(r.endpointAttrs(info), AttrStage.String(stage))
	r.stageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
	if err != nil {
		r.stageFaults.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// Observe implements [pipeline.Observer], counting call state transitions.
// The endpoint is read from the call context.
func (r *Recorder) Observe(ctx context.Context, e pipeline.Event) {
	info, _ := pipeline.InfoFrom(ctx)
	attrs := append(r.endpointAttrs(info), AttrState.String(e.State.String()))
	r.transitions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (r *Recorder) endpointAttrs(info pipeline.Info) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 5)
	attrs = append(attrs, r.serviceAttr, AttrEndpoint.String(info.Name))
	if info.Group != "" {
		attrs = append(attrs, AttrGroup.String(info.Group))
	}
	return attrs
}
