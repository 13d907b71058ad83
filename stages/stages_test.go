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

package stages

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"rivaas.dev/endpoint/binding"
	"rivaas.dev/endpoint/logging"
	"rivaas.dev/endpoint/metrics"
	"rivaas.dev/endpoint/middleware/requestid"
	"rivaas.dev/endpoint/pipeline"
	"rivaas.dev/endpoint/telemetry/semconv"
	"rivaas.dev/endpoint/tracing"
	"rivaas.dev/endpoint/validation"
)

type createItem struct {
	Name string `json:"name" validate:"required"`
}

type item struct {
	ID   int
	Name string
}

// result is an interface response type able to carry a problem.
type result interface{ isResult() }

type created struct{ ID int }

func (created) isResult() {}

type problem struct{ err *validation.Error }

func (problem) isResult()       {}
func (p problem) Error() string { return p.err.Error() }

var infoCtx = pipeline.Info{Name: "CreateItem", Verb: http.MethodPost, Pattern: "/items"}

func run[Req, Resp any](t *testing.T, ctx context.Context, req Req, h pipeline.Handler[Req, Resp], stages ...*Stage) (Resp, error) {
	t.Helper()

	entries := make([]pipeline.Entry[Req, Resp], 0, len(stages))
	for _, s := range stages {
		entries = append(entries, Entry[Req, Resp](s))
	}
	return pipeline.Compose(entries, h).Execute(pipeline.WithInfo(ctx, infoCtx), req)
}

func okHandler(_ context.Context, req createItem) (item, error) {
	return item{ID: 1, Name: req.Name}, nil
}

func TestStage_Options(t *testing.T) {
	t.Parallel()

	s := New("audit", 50, func(ctx context.Context, _ any, next pipeline.Next[any]) (any, error) {
		return next(ctx)
	})
	assert.Equal(t, pipeline.Descriptor{Name: "audit", Order: 50}, s.Descriptor())
	assert.True(t, s.Accepts(reflect.TypeFor[item]()))

	moved := s.With(WithOrder(-5), WithName("audit2"), WithAccepts(ResponseCarries[problem]()))
	assert.Equal(t, pipeline.Descriptor{Name: "audit2", Order: -5}, moved.Descriptor())
	assert.Equal(t, 50, s.Descriptor().Order, "With copies")
	assert.True(t, moved.Accepts(reflect.TypeFor[result]()))
	assert.False(t, moved.Accepts(reflect.TypeFor[item]()))
}

func TestBuiltinOrders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stage *Stage
		name  string
		order int
	}{
		{Recovery(nil), "recovery", OrderRecovery},
		{Tracing(nil), "tracing", OrderTracing},
		{Metrics(nil), "metrics", OrderMetrics},
		{Logging(nil), "logging", OrderLogging},
		{Timeout(time.Second), "timeout", OrderTimeout},
		{Validate(nil), "validate", OrderValidate},
	}

	for _, tt := range tests {
		assert.Equal(t, pipeline.Descriptor{Name: tt.name, Order: tt.order}, tt.stage.Descriptor())
	}
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	th := logging.NewTestHelper(t)

	_, err := run(t, t.Context(), createItem{Name: "a"}, func(context.Context, createItem) (item, error) {
		panic("boom")
	}, Recovery(th.Logger))

	var perr *PanicError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "boom", perr.Value)
	assert.NotEmpty(t, perr.Stack)
	assert.Equal(t, http.StatusInternalServerError, perr.HTTPStatus())

	entries := th.Find("panic recovered")
	require.Len(t, entries, 1)
	assert.Equal(t, "CreateItem", entries[0].Attrs[semconv.EndpointName])
}

func TestRecovery_ErrorValueAndNoStack(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	_, err := run(t, t.Context(), createItem{}, func(context.Context, createItem) (item, error) {
		panic(sentinel)
	}, Recovery(nil, WithStackSize(0)))

	require.ErrorIs(t, err, sentinel)
	var perr *PanicError
	require.ErrorAs(t, err, &perr)
	assert.Empty(t, perr.Stack)
}

func TestLogging(t *testing.T) {
	t.Parallel()

	th := logging.NewTestHelper(t)
	ctx := requestid.WithID(t.Context(), "req-1")

	_, err := run(t, ctx, createItem{Name: "a"}, okHandler, Logging(th.Logger))
	require.NoError(t, err)

	_, err = run(t, ctx, createItem{}, func(context.Context, createItem) (item, error) {
		return item{}, errors.New("db down")
	}, Logging(th.Logger))
	require.Error(t, err)

	assert.True(t, th.ContainsLog("endpoint call started"))

	completed := th.Find("endpoint call completed")
	require.Len(t, completed, 1)
	assert.Equal(t, "CreateItem", completed[0].Attrs[semconv.EndpointName])
	assert.Equal(t, "POST", completed[0].Attrs[semconv.HTTPMethod])
	assert.Equal(t, "/items", completed[0].Attrs[semconv.HTTPRoute])
	assert.Equal(t, "req-1", completed[0].Attrs[semconv.RequestID])
	assert.Contains(t, completed[0].Attrs, semconv.DurationMS)

	faulted := th.Find("endpoint call faulted")
	require.Len(t, faulted, 1)
	assert.Equal(t, "WARN", faulted[0].Level)
	assert.Equal(t, "db down", faulted[0].Attrs["error"])
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler pipeline.Handler[createItem, item]
		after   time.Duration
		wantErr bool
	}{
		{
			name:    "fast call",
			handler: okHandler,
			after:   time.Second,
		},
		{
			name: "call observes deadline",
			handler: func(ctx context.Context, _ createItem) (item, error) {
				<-ctx.Done()
				return item{}, ctx.Err()
			},
			after:   10 * time.Millisecond,
			wantErr: true,
		},
		{
			name: "disabled",
			handler: func(ctx context.Context, _ createItem) (item, error) {
				_, ok := ctx.Deadline()
				if ok {
					return item{}, errors.New("unexpected deadline")
				}
				return item{ID: 2}, nil
			},
			after: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := run(t, t.Context(), createItem{Name: "a"}, tt.handler, Timeout(tt.after))
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrTimeout)
			require.ErrorIs(t, err, context.DeadlineExceeded)

			var terr *TimeoutError
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, http.StatusGatewayTimeout, terr.HTTPStatus())
		})
	}
}

func TestBounded(t *testing.T) {
	t.Parallel()

	audit := New("audit", 10, func(ctx context.Context, _ any, next pipeline.Next[any]) (any, error) {
		return next(ctx)
	})
	slow := func(ctx context.Context, _ createItem) (item, error) {
		<-ctx.Done()
		return item{}, ctx.Err()
	}

	t.Run("zero keeps the entry", func(t *testing.T) {
		t.Parallel()
		e := Entry[createItem, item](audit)
		b := Bounded(0, e)
		assert.Equal(t, e.Descriptor, b.Descriptor)
	})

	t.Run("deadline covers the rest of the call", func(t *testing.T) {
		t.Parallel()
		e := Bounded(10*time.Millisecond, Entry[createItem, item](audit))
		assert.Equal(t, pipeline.Descriptor{Name: "audit", Order: 10}, e.Descriptor)

		chain := pipeline.Compose([]pipeline.Entry[createItem, item]{e}, slow)
		_, err := chain.Execute(t.Context(), createItem{Name: "a"})
		require.ErrorIs(t, err, ErrTimeout)

		var terr *TimeoutError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, 10*time.Millisecond, terr.After)
	})
}

func TestTracing(t *testing.T) {
	t.Parallel()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	tracer := tracing.MustNew(t.Context(), tracing.WithTracerProvider(tp))

	var traceID string
	handler := func(ctx context.Context, req createItem) (item, error) {
		traceID = tracing.TraceID(ctx)
		return okHandler(ctx, req)
	}

	logStage := Traced(tracer, Entry[createItem, item](Logging(nil)))
	chain := pipeline.Compose([]pipeline.Entry[createItem, item]{
		Entry[createItem, item](Tracing(tracer)),
		logStage,
	}, handler)

	_, err := chain.Execute(pipeline.WithInfo(t.Context(), infoCtx), createItem{Name: "a"})
	require.NoError(t, err)
	assert.NotEmpty(t, traceID)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "stage logging", spans[0].Name())
	assert.Equal(t, "POST /items", spans[1].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	rec := metrics.MustNew(metrics.WithMeterProvider(mp))

	timed := Timed(rec, Entry[createItem, item](Validate(nil)))
	chain := pipeline.Compose([]pipeline.Entry[createItem, item]{
		Entry[createItem, item](Metrics(rec)),
		timed,
	}, okHandler)

	ctx := pipeline.WithInfo(t.Context(), infoCtx)
	_, err := chain.Execute(ctx, createItem{Name: "a"})
	require.NoError(t, err)
	_, err = chain.Execute(ctx, createItem{})
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(t.Context(), &rm))

	outcomes := map[string]int64{}
	stageFaults := int64(0)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				switch m.Name {
				case "endpoint.calls":
					v, _ := dp.Attributes.Value(metrics.AttrOutcome)
					outcomes[v.AsString()] += dp.Value
				case "endpoint.stage.faults":
					stageFaults += dp.Value
				}
			}
		}
	}
	assert.Equal(t, map[string]int64{"completed": 1, "invalid": 1}, outcomes)
	assert.Equal(t, int64(1), stageFaults)
}

func TestOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want metrics.Outcome
	}{
		{nil, metrics.OutcomeCompleted},
		{&validation.Error{}, metrics.OutcomeInvalid},
		{fmt.Errorf("wrapped: %w", &binding.BindError{Field: "id"}), metrics.OutcomeInvalid},
		{&binding.MultiError{}, metrics.OutcomeInvalid},
		{errors.New("boom"), metrics.OutcomeFaulted},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err))
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	toProblem := WithProblem(func(e *validation.Error) any { return problem{err: e} })

	t.Run("valid request reaches handler", func(t *testing.T) {
		t.Parallel()

		resp, err := run(t, t.Context(), createItem{Name: "a"}, okHandler, Validate(nil))
		require.NoError(t, err)
		assert.Equal(t, "a", resp.Name)
	})

	t.Run("fault without problem", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := run(t, t.Context(), createItem{}, func(ctx context.Context, req createItem) (item, error) {
			calls++
			return okHandler(ctx, req)
		}, Validate(nil))

		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		assert.NotEmpty(t, verr.Fields)
		assert.Zero(t, calls)
	})

	t.Run("problem result when response carries it", func(t *testing.T) {
		t.Parallel()

		resp, err := run(t, t.Context(), createItem{}, func(context.Context, createItem) (result, error) {
			return created{ID: 1}, nil
		}, Validate(nil, toProblem))
		require.NoError(t, err)

		p, ok := resp.(problem)
		require.True(t, ok)
		assert.NotEmpty(t, p.err.Fields)
	})

	t.Run("problem raised when response cannot carry it", func(t *testing.T) {
		t.Parallel()

		_, err := run(t, t.Context(), createItem{}, okHandler, Validate(nil, toProblem))
		var p problem
		require.ErrorAs(t, err, &p)
	})

	t.Run("non-error problem of the wrong type", func(t *testing.T) {
		t.Parallel()

		_, err := run(t, t.Context(), createItem{}, okHandler,
			Validate(nil, WithProblem(func(*validation.Error) any { return "invalid" })))
		require.ErrorIs(t, err, pipeline.ErrResponseType)
	})
}
