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

package endpoint

import (
	"rivaas.dev/endpoint/binding"
	"rivaas.dev/endpoint/config"
	riverrors "rivaas.dev/endpoint/errors"
	"rivaas.dev/endpoint/logging"
	"rivaas.dev/endpoint/metrics"
	"rivaas.dev/endpoint/middleware/requestid"
	"rivaas.dev/endpoint/plan"
	"rivaas.dev/endpoint/tracing"
	"rivaas.dev/endpoint/validation"
)

// Option configures an [App].
type Option func(*settings)

type settings struct {
	cfg            *config.Config
	logger         *logging.Logger
	formatter      riverrors.Formatter
	plannerOpts    []plan.Option
	validator      *validation.Validator
	skipValidation bool
	codecs         *binding.Registry
	bindOpts       []binding.Option
	services       *Services
	tracer         *tracing.Tracer
	metrics        *metrics.Recorder
	metricsPath    string
	prefix         string
	groups         map[string]string
	requestID      []requestid.Option
}

// WithConfig applies file or environment configuration loaded with
// [config.Load]. Explicit options take precedence over it.
//
// Example:
//
//	cfg := config.MustLoad(config.WithFile("endpoints.yaml"), config.WithEnv(config.DefaultEnvPrefix))
//	app := endpoint.MustNew(endpoint.WithConfig(cfg))
func WithConfig(cfg *config.Config) Option {
	return func(s *settings) {
		s.cfg = cfg
	}
}

// WithLogger sets the logger for build diagnostics, mounts and faults.
func WithLogger(logger *logging.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithErrorFormatter sets the formatter rendering faults and problems.
// Default: RFC 9457 problem details.
func WithErrorFormatter(f riverrors.Formatter) Option {
	return func(s *settings) {
		s.formatter = f
	}
}

// WithPlannerOptions configures request planning.
func WithPlannerOptions(opts ...plan.Option) Option {
	return func(s *settings) {
		s.plannerOpts = append(s.plannerOpts, opts...)
	}
}

// WithValidator sets the validator run on every request before the pipeline.
func WithValidator(v *validation.Validator) Option {
	return func(s *settings) {
		s.validator = v
	}
}

// WithoutValidation disables request validation before the pipeline.
// Endpoint Validate methods still run.
func WithoutValidation() Option {
	return func(s *settings) {
		s.skipValidation = true
	}
}

// WithCodecs sets the codecs for request bodies and responses.
func WithCodecs(r *binding.Registry) Option {
	return func(s *settings) {
		s.codecs = r
	}
}

// WithBindingOptions configures value conversion and body limits.
func WithBindingOptions(opts ...binding.Option) Option {
	return func(s *settings) {
		s.bindOpts = append(s.bindOpts, opts...)
	}
}

// WithServices sets the provider for service-tagged request fields.
func WithServices(svc *Services) Option {
	return func(s *settings) {
		s.services = svc
	}
}

// WithTracing gives every stage its own span and extracts remote parents
// from request headers. Add [stages.Tracing] for the call span.
func WithTracing(t *tracing.Tracer) Option {
	return func(s *settings) {
		s.tracer = t
	}
}

// WithMetrics records stage durations and call state transitions.
// Add [stages.Metrics] for call outcomes.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *settings) {
		s.metrics = r
	}
}

// WithMetricsEndpoint serves the Prometheus scrape handler at path when the
// recorder uses the Prometheus provider.
func WithMetricsEndpoint(path string) Option {
	return func(s *settings) {
		s.metricsPath = path
	}
}

// WithPrefix mounts every ungrouped endpoint under prefix.
func WithPrefix(prefix string) Option {
	return func(s *settings) {
		s.prefix = prefix
	}
}

// WithGroupPrefix mounts the endpoints of group under prefix.
func WithGroupPrefix(group, prefix string) Option {
	return func(s *settings) {
		if s.groups == nil {
			s.groups = make(map[string]string)
		}
		s.groups[group] = prefix
	}
}

// WithRequestID configures the request ID middleware installed by Mount.
func WithRequestID(opts ...requestid.Option) Option {
	return func(s *settings) {
		s.requestID = append(s.requestID, opts...)
	}
}
