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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	promclient "github.com/prometheus/client_golang/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"rivaas.dev/endpoint/telemetry/semconv"
)

const instrumentationName = "rivaas.dev/endpoint"

// DefaultDurationBuckets are histogram boundaries for call and stage
// durations in seconds.
var DefaultDurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Provider represents the available metrics providers.
type Provider string

const (
	// PrometheusProvider exposes metrics through [Recorder.Handler] (default).
	PrometheusProvider Provider = "prometheus"
	// OTLPProvider pushes metrics over OTLP HTTP.
	OTLPProvider Provider = "otlp"
	// StdoutProvider prints metrics periodically (development).
	StdoutProvider Provider = "stdout"
)

// Outcome classifies how a call ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed" // A result was produced
	OutcomeInvalid   Outcome = "invalid"   // Binding or validation rejected the request
	OutcomeFaulted   Outcome = "faulted"   // A stage or the handler failed
)

// ErrNilMeterProvider is returned when a custom meter provider is nil.
var ErrNilMeterProvider = errors.New("metrics: custom meter provider is nil")

// Attribute keys recorded on endpoint metrics.
const (
	AttrEndpoint = attribute.Key(semconv.EndpointName)
	AttrGroup    = attribute.Key(semconv.EndpointGroup)
	AttrStage    = attribute.Key(semconv.EndpointStage)
	AttrOutcome  = attribute.Key(semconv.EndpointOutcome)
	AttrState    = attribute.Key(semconv.EndpointState)
	AttrService  = attribute.Key(semconv.ServiceName)
)

// Recorder records endpoint call metrics through OpenTelemetry.
// All methods are safe for concurrent use.
//
// By default the global meter provider is left untouched; use
// [WithGlobalMeterProvider] to register it.
type Recorder struct {
	meter              metric.Meter
	meterProvider      metric.MeterProvider
	sdkProvider        *sdkmetric.MeterProvider // owned provider, shut down by Shutdown
	prometheusHandler  http.Handler
	prometheusRegistry *promclient.Registry
	logger             *slog.Logger

	callDuration  metric.Float64Histogram
	callCount     metric.Int64Counter
	activeCalls   metric.Int64UpDownCounter
	stageDuration metric.Float64Histogram
	stageFaults   metric.Int64Counter
	transitions   metric.Int64Counter

	durationBuckets []float64
	exportInterval  time.Duration

	serviceName    string
	serviceVersion string
	otlpEndpoint   string
	serviceAttr    attribute.KeyValue

	provider            Provider
	customMeterProvider bool
	registerGlobal      bool
}

// New creates a [Recorder] with the given options.
func New(opts ...Option) (*Recorder, error) {
	r := &Recorder{
		provider:        PrometheusProvider,
		serviceName:     "rivaas-endpoint",
		durationBuckets: DefaultDurationBuckets,
		exportInterval:  30 * time.Second,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	r.serviceAttr = AttrService.String(r.serviceName)

	if err := r.initializeProvider(); err != nil {
		return nil, err
	}
	return r, nil
}

// MustNew is like [New] but panics on error.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("metrics.MustNew: %v", err))
	}
	return r
}

func (r *Recorder) validate() error {
	if r.customMeterProvider && r.meterProvider == nil {
		return ErrNilMeterProvider
	}
	if r.exportInterval <= 0 {
		return fmt.Errorf("metrics: export interval must be positive, got %s", r.exportInterval)
	}
	for i := 1; i < len(r.durationBuckets); i++ {
		if r.durationBuckets[i] <= r.durationBuckets[i-1] {
			return errors.New("metrics: duration buckets must be strictly increasing")
		}
	}
	switch r.provider {
	case PrometheusProvider, OTLPProvider, StdoutProvider:
		return nil
	default:
		return fmt.Errorf("metrics: unsupported provider %q", r.provider)
	}
}

// Provider returns the configured provider.
func (r *Recorder) Provider() Provider {
	return r.provider
}

// Handler serves the Prometheus exposition format. It returns nil unless
// the Prometheus provider is in use.
func (r *Recorder) Handler() http.Handler {
	return r.prometheusHandler
}

// Shutdown flushes and stops a provider created by the recorder.
// Custom providers are left to their owner.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if r.sdkProvider == nil {
		return nil
	}
	if err := r.sdkProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics: shutdown: %w", err)
	}
	return nil
}

// initializeMetrics creates the built-in instruments.
func (r *Recorder) initializeMetrics() error {
	var err error

	if r.callDuration, err = r.meter.Float64Histogram(
		"endpoint.call.duration",
		metric.WithDescription("Duration of endpoint calls in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(r.durationBuckets...),
	); err != nil {
		return fmt.Errorf("failed to create call duration histogram: %w", err)
	}

	if r.callCount, err = r.meter.Int64Counter(
		"endpoint.calls",
		metric.WithDescription("Total number of endpoint calls by outcome"),
	); err != nil {
		return fmt.Errorf("failed to create call counter: %w", err)
	}

	if r.activeCalls, err = r.meter.Int64UpDownCounter(
		"endpoint.calls.active",
		metric.WithDescription("Number of endpoint calls in progress"),
	); err != nil {
		return fmt.Errorf("failed to create active calls counter: %w", err)
	}

	if r.stageDuration, err = r.meter.Float64Histogram(
		"endpoint.stage.duration",
		metric.WithDescription("Time spent in a pipeline stage and everything after it, in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(r.durationBuckets...),
	); err != nil {
		return fmt.Errorf("failed to create stage duration histogram: %w", err)
	}

	if r.stageFaults, err = r.meter.Int64Counter(
		"endpoint.stage.faults",
		metric.WithDescription("Total number of faults observed by a pipeline stage"),
	); err != nil {
		return fmt.Errorf("failed to create stage fault counter: %w", err)
	}

	if r.transitions, err = r.meter.Int64Counter(
		"endpoint.call.transitions",
		metric.WithDescription("Total number of call state transitions by state"),
	); err != nil {
		return fmt.Errorf("failed to create transition counter: %w", err)
	}

	return nil
}
