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

//go:build !integration

package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"rivaas.dev/endpoint/pipeline"
)

func newManual(t *testing.T) (*Recorder, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	return MustNew(WithMeterProvider(mp), WithServiceName("orders")), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(t.Context(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics, match attribute.KeyValue) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(match.Key); ok && v == match.Value {
			total += dp.Value
		}
	}
	return total
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{name: "default prometheus", opts: nil},
		{name: "stdout", opts: []Option{WithStdout(), WithExportInterval(time.Minute)}},
		{name: "nil custom provider", opts: []Option{WithMeterProvider(nil)}, wantErr: true},
		{name: "bad interval", opts: []Option{WithExportInterval(0)}, wantErr: true},
		{name: "unsorted buckets", opts: []Option{WithDurationBuckets(1, 0.5)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := New(tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NoError(t, r.Shutdown(context.Background()))
		})
	}
}

func TestRecorder_Calls(t *testing.T) {
	t.Parallel()

	r, reader := newManual(t)
	info := pipeline.Info{Name: "UpdateProduct", Group: "products"}

	m := r.Start(t.Context(), info)
	r.Finish(t.Context(), m, OutcomeCompleted)

	m = r.Start(t.Context(), info)
	r.Finish(t.Context(), m, OutcomeFaulted)

	r.Finish(t.Context(), nil, OutcomeFaulted)

	got := collect(t, reader)

	calls := got["endpoint.calls"]
	assert.Equal(t, int64(1), sumOf(t, calls, AttrOutcome.String("completed")))
	assert.Equal(t, int64(1), sumOf(t, calls, AttrOutcome.String("faulted")))
	assert.Equal(t, int64(2), sumOf(t, calls, AttrGroup.String("products")))

	active := got["endpoint.calls.active"]
	assert.Equal(t, int64(0), sumOf(t, active, AttrEndpoint.String("UpdateProduct")))

	hist, ok := got["endpoint.call.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestRecorder_Stages(t *testing.T) {
	t.Parallel()

	r, reader := newManual(t)
	info := pipeline.Info{Name: "GetProduct"}

	r.RecordStage(t.Context(), info, "logging", time.Millisecond, nil)
	r.RecordStage(t.Context(), info, "logging", time.Millisecond, errors.New("boom"))

	got := collect(t, reader)
	assert.Equal(t, int64(1), sumOf(t, got["endpoint.stage.faults"], AttrStage.String("logging")))

	hist, ok := got["endpoint.stage.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
}

func TestRecorder_ObserveChain(t *testing.T) {
	t.Parallel()

	r, reader := newManual(t)

	chain := pipeline.Compose(nil, func(context.Context, string) (string, error) {
		return "ok", nil
	}, pipeline.WithObserver(r))

	ctx := pipeline.WithInfo(t.Context(), pipeline.Info{Name: "Echo"})
	_, err := chain.Execute(ctx, "in")
	require.NoError(t, err)

	transitions := collect(t, reader)["endpoint.call.transitions"]
	assert.Equal(t, int64(1), sumOf(t, transitions, AttrState.String("executing")))
	assert.Equal(t, int64(1), sumOf(t, transitions, AttrState.String("completed")))
	assert.Equal(t, int64(2), sumOf(t, transitions, AttrEndpoint.String("Echo")))
}

func TestRecorder_PrometheusHandler(t *testing.T) {
	t.Parallel()

	r := MustNew(WithServiceName("orders"))
	t.Cleanup(func() { _ = r.Shutdown(context.Background()) })
	require.NotNil(t, r.Handler())

	m := r.Start(t.Context(), pipeline.Info{Name: "ListOrders"})
	r.Finish(t.Context(), m, OutcomeInvalid)

	srv := httptest.NewServer(r.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "endpoint_calls")
	assert.Contains(t, string(body), `endpoint_outcome="invalid"`)
}

func TestRecorder_HandlerNilForCustomProvider(t *testing.T) {
	t.Parallel()

	r, _ := newManual(t)
	assert.Nil(t, r.Handler())
}
