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

// Package tracing starts OpenTelemetry spans for endpoint calls.
//
// A call gets a server span named after its verb and route pattern, with
// the remote parent extracted from the W3C trace context headers. The
// tracing stage adds one internal span per pipeline stage below it.
//
//	tracer := tracing.MustNew(ctx,
//	    tracing.WithOTLP("collector:4317", true),
//	    tracing.WithServiceName("orders"),
//	)
//	defer tracer.Shutdown(context.Background())
//
// Providers: noop (the default, spans are sampled but not exported),
// stdout, OTLP over gRPC and OTLP over HTTP. A provider managed by the
// caller is passed with [WithTracerProvider].
package tracing
