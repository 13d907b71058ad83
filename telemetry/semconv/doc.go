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

// Package semconv holds the attribute and log field names shared by the
// logging, stages, metrics and tracing packages.
//
// Keys follow OpenTelemetry semantic conventions where one exists. Endpoint
// specific keys live under the "endpoint." namespace.
//
//	logger.Info("endpoint completed",
//	    semconv.EndpointName, info.Name,
//	    semconv.HTTPRoute, info.Pattern,
//	)
package semconv
