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

package semconv

// Service identity.
const (
	ServiceName       = "service.name"
	ServiceVersion    = "service.version"
	DeploymentEnviron = "deployment.environment"
)

// HTTP request fields.
const (
	HTTPMethod     = "http.method"
	HTTPRoute      = "http.route"
	HTTPTarget     = "http.target"
	HTTPStatusCode = "http.status_code"
)

// Correlation fields.
const (
	TraceID   = "trace_id"
	SpanID    = "span_id"
	RequestID = "req.id"
)

// Endpoint fields.
const (
	EndpointName    = "endpoint.name"
	EndpointGroup   = "endpoint.group"
	EndpointStage   = "endpoint.stage"
	EndpointOrder   = "endpoint.stage.order"
	EndpointOutcome = "endpoint.outcome"
	EndpointState   = "endpoint.state"
)

// Timing and failure fields.
const (
	DurationMS = "duration_ms"
	Error      = "error"
)
