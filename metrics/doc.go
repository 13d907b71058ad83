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

// Package metrics records endpoint call metrics through OpenTelemetry.
//
// Instruments:
//
//	endpoint.call.duration     histogram, seconds, by endpoint and outcome
//	endpoint.calls             counter, by endpoint and outcome
//	endpoint.calls.active      up-down counter, by endpoint
//	endpoint.stage.duration    histogram, seconds, by endpoint and stage
//	endpoint.stage.faults      counter, by endpoint and stage
//	endpoint.call.transitions  counter, by endpoint and call state
//
// The default provider exports to a private Prometheus registry served by
// [Recorder.Handler]; OTLP over HTTP and stdout are also available, and
// [WithMeterProvider] accepts a provider managed by the caller.
//
//	recorder := metrics.MustNew(metrics.WithServiceName("orders"))
//	mux.Handle("/metrics", recorder.Handler())
//
// A Recorder is a [pipeline.Observer]; attach it to a chain to count state
// transitions.
package metrics
