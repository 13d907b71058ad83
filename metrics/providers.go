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
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"

	promclient "github.com/prometheus/client_golang/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"rivaas.dev/endpoint/telemetry/semconv"
)

// initializeProvider builds the meter provider for the configured provider.
func (r *Recorder) initializeProvider() error {
	if r.customMeterProvider {
		r.logger.Debug("Using custom user-provided meter provider")
		return r.register(r.meterProvider)
	}

	var reader sdkmetric.Reader
	switch r.provider {
	case PrometheusProvider:
		// A private registry keeps several recorders from colliding.
		r.prometheusRegistry = promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(r.prometheusRegistry))
		if err != nil {
			return fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		r.prometheusHandler = promhttp.HandlerFor(r.prometheusRegistry, promhttp.HandlerOpts{})
		reader = exporter

	case OTLPProvider:
		exporter, err := otlpmetrichttp.New(context.Background(), r.otlpOptions()...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(r.exportInterval))

	case StdoutProvider:
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(r.exportInterval))
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	r.sdkProvider = mp
	if err := r.register(mp); err != nil {
		return err
	}

	r.logger.Info("Metrics initialized", "provider", r.provider, semconv.ServiceName, r.serviceName)
	return nil
}

func (r *Recorder) register(mp metric.MeterProvider) error {
	r.meterProvider = mp
	if r.registerGlobal {
		r.logger.Debug("Setting global OpenTelemetry meter provider", "provider", r.provider)
		otel.SetMeterProvider(mp)
	}
	r.meter = mp.Meter(instrumentationName)
	return r.initializeMetrics()
}

// otlpOptions splits an endpoint URL into the host and the insecure flag
// expected by the OTLP HTTP exporter.
func (r *Recorder) otlpOptions() []otlpmetrichttp.Option {
	opts := []otlpmetrichttp.Option{}
	if r.otlpEndpoint == "" {
		return opts
	}

	endpoint := r.otlpEndpoint
	insecure := false
	if trimmed, ok := strings.CutPrefix(endpoint, "http://"); ok {
		endpoint = trimmed
		insecure = true
	} else if trimmed, ok := strings.CutPrefix(endpoint, "https://"); ok {
		endpoint = trimmed
	}
	if idx := strings.Index(endpoint, "/"); idx != -1 {
		endpoint = endpoint[:idx]
	}

	opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
	if insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	return opts
}
