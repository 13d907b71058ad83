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

package tracing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	rivsemconv "rivaas.dev/endpoint/telemetry/semconv"
)

const instrumentationName = "rivaas.dev/endpoint"

// Attribute keys recorded on endpoint spans.
const (
	AttrEndpoint = attribute.Key(rivsemconv.EndpointName)
	AttrGroup    = attribute.Key(rivsemconv.EndpointGroup)
	AttrStage    = attribute.Key(rivsemconv.EndpointStage)
	AttrOrder    = attribute.Key(rivsemconv.EndpointOrder)
)

// Provider represents the available tracing providers.
type Provider string

const (
	// NoopProvider records spans without exporting them (default).
	NoopProvider Provider = "noop"
	// StdoutProvider pretty-prints spans to standard output.
	StdoutProvider Provider = "stdout"
	// OTLPProvider exports spans over OTLP gRPC.
	OTLPProvider Provider = "otlp"
	// OTLPHTTPProvider exports spans over OTLP HTTP.
	OTLPHTTPProvider Provider = "otlp-http"
)

// ErrNilTracerProvider is returned when a custom tracer provider is nil.
var ErrNilTracerProvider = errors.New("tracing: custom tracer provider is nil")

// Tracer starts the spans of endpoint calls and their stages.
// All methods are safe for concurrent use.
//
// By default the global OpenTelemetry tracer provider is left untouched;
// use [WithGlobalTracerProvider] to register it.
type Tracer struct {
	tracer         trace.Tracer
	tracerProvider trace.TracerProvider
	sdkProvider    *sdktrace.TracerProvider // owned provider, shut down by Shutdown
	propagator     propagation.TextMapPropagator
	logger         *slog.Logger

	provider       Provider
	serviceName    string
	serviceVersion string
	otlpEndpoint   string
	otlpInsecure   bool
	sampleRate     float64

	customTracerProvider bool
	registerGlobal       bool
}

// New creates a [Tracer]. The context is used by the OTLP providers to
// establish their exporter connection.
func New(ctx context.Context, opts ...Option) (*Tracer, error) {
	t := &Tracer{
		provider:    NoopProvider,
		serviceName: "rivaas-endpoint",
		sampleRate:  1.0,
		propagator:  propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	if err := t.initializeProvider(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// MustNew is like [New] but panics on error.
func MustNew(ctx context.Context, opts ...Option) *Tracer {
	t, err := New(ctx, opts...)
	if err != nil {
		panic(fmt.Sprintf("tracing.MustNew: %v", err))
	}
	return t
}

// Noop returns a tracer whose spans are never recorded.
func Noop() *Tracer {
	tp := noop.NewTracerProvider()
	return &Tracer{
		tracer:         tp.Tracer(instrumentationName),
		tracerProvider: tp,
		provider:       NoopProvider,
		propagator:     propagation.TraceContext{},
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (t *Tracer) validate() error {
	if t.customTracerProvider && t.tracerProvider == nil {
		return ErrNilTracerProvider
	}
	if t.sampleRate < 0 || t.sampleRate > 1 {
		return fmt.Errorf("tracing: sample rate must be between 0 and 1, got %v", t.sampleRate)
	}
	switch t.provider {
	case NoopProvider, StdoutProvider, OTLPProvider, OTLPHTTPProvider:
		return nil
	default:
		return fmt.Errorf("tracing: unsupported provider %q", t.provider)
	}
}

// ServiceName returns the service name recorded on the resource.
func (t *Tracer) ServiceName() string {
	return t.serviceName
}

// Provider returns the configured provider.
func (t *Tracer) Provider() Provider {
	return t.provider
}

// TracerProvider returns the underlying provider.
func (t *Tracer) TracerProvider() trace.TracerProvider {
	return t.tracerProvider
}

// StartCall starts the server span of one endpoint call. The remote parent,
// when the headers carry one, is extracted first.
//
// Example:
//
//	ctx, span := tracer.StartCall(r.Context(), r.Header, "UpdateProduct", "POST", "/products/{id}")
//	defer tracer.Finish(span, err)
func (t *Tracer) StartCall(ctx context.Context, headers http.Header, name, verb, pattern string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if headers != nil {
		ctx = t.Extract(ctx, headers)
	}
	attrs = append(attrs,
		AttrEndpoint.String(name),
		semconv.HTTPMethodKey.String(verb),
		semconv.HTTPRouteKey.String(pattern),
	)
	return t.tracer.Start(ctx, verb+" "+pattern,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
}

// StartStage starts an internal span around one pipeline stage.
func (t *Tracer) StartStage(ctx context.Context, stage string, order int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "stage "+stage,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(AttrStage.String(stage), AttrOrder.Int(order)),
	)
}

// Finish ends span, recording err when it is not nil.
// It is safe to call with a span that is not recording.
func (t *Tracer) Finish(span trace.Span, err error) {
	if span == nil {
		return
	}
	if span.IsRecording() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
	span.End()
}

// Extract reads the trace context from HTTP headers.
func (t *Tracer) Extract(ctx context.Context, headers http.Header) context.Context {
	return t.propagator.Extract(ctx, propagation.HeaderCarrier(headers))
}

// Inject writes the trace context of ctx into HTTP headers.
func (t *Tracer) Inject(ctx context.Context, headers http.Header) {
	t.propagator.Inject(ctx, propagation.HeaderCarrier(headers))
}

// Shutdown flushes and stops a provider created by the tracer.
// Custom providers are left to their owner.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.sdkProvider == nil {
		return nil
	}
	if err := t.sdkProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("tracing: shutdown: %w", err)
	}
	return nil
}

func (t *Tracer) register(tp trace.TracerProvider) {
	t.tracerProvider = tp
	t.tracer = tp.Tracer(instrumentationName)
	if t.registerGlobal {
		t.logger.Debug("Setting global OpenTelemetry tracer provider", "provider", t.provider)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(t.propagator)
	}
}

// TraceID returns the trace ID of the active span in ctx, or "".
func TraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// SpanID returns the span ID of the active span in ctx, or "".
func SpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}

// AddEvent adds an event to the active span in ctx, if it is recording.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}
