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

package logging

import (
	"net/http"
	"time"

	"rivaas.dev/endpoint/telemetry/semconv"
)

// LogRequest logs an HTTP request with its method, target and remote
// address, plus the query string when present.
//
// Example:
//
//	logger.LogRequest(r, "status", 200, "duration_ms", 45)
func (l *Logger) LogRequest(r *http.Request, extra ...any) {
	attrs := make([]any, 0, 8+len(extra))
	attrs = append(attrs,
		semconv.HTTPMethod, r.Method,
		semconv.HTTPTarget, r.URL.Path,
		"remote", r.RemoteAddr,
	)
	if r.URL.RawQuery != "" {
		attrs = append(attrs, "query", r.URL.RawQuery)
	}
	attrs = append(attrs, extra...)
	l.Info("http request", attrs...)
}

// LogError logs err under the "error" key.
//
// Example:
//
//	logger.LogError(err, "handler error", "method", r.Method, "status", 500)
func (l *Logger) LogError(err error, msg string, extra ...any) {
	attrs := make([]any, 0, 2+len(extra))
	attrs = append(attrs, semconv.Error, err.Error())
	attrs = append(attrs, extra...)
	l.Error(msg, attrs...)
}

// LogDuration logs the time elapsed since start as duration_ms and duration.
func (l *Logger) LogDuration(msg string, start time.Time, extra ...any) {
	d := time.Since(start)
	attrs := make([]any, 0, 4+len(extra))
	attrs = append(attrs, semconv.DurationMS, d.Milliseconds(), "duration", d.String())
	attrs = append(attrs, extra...)
	l.Info(msg, attrs...)
}
