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

// Package logging provides structured logging on log/slog.
//
// A [Logger] is configured with functional options:
//
//	logger := logging.MustNew(
//	    logging.WithJSONHandler(),
//	    logging.WithServiceName("orders"),
//	    logging.WithLevel(logging.LevelDebug),
//	)
//	logger.Info("endpoint mounted", "method", "GET", "pattern", "/orders/{id}")
//
// Values of sensitive keys (password, token, secret, api_key,
// authorization) are masked; [WithRedactKeys] adds more.
//
// [ContextLogger] adds the trace_id and span_id fields of the active
// OpenTelemetry span:
//
//	logging.NewContextLogger(ctx, logger).Info("stage entered")
//
// [NewTestHelper] captures output for assertions in tests.
package logging
