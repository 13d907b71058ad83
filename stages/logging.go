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

package stages

import (
	"context"
	"time"

	"rivaas.dev/endpoint/logging"
	"rivaas.dev/endpoint/middleware/requestid"
	"rivaas.dev/endpoint/pipeline"
	"rivaas.dev/endpoint/telemetry/semconv"
)

// Logging logs every call that reaches it: a debug entry on the way in and
// an info entry (a warning on fault) with the duration on the way out.
// Entries carry the endpoint, the route, the request ID and the active
// trace and span IDs.
func Logging(logger *logging.Logger, opts ...Option) *Stage {
	if logger == nil {
		logger = logging.Noop()
	}

	s := &Stage{desc: pipeline.Descriptor{Name: "logging", Order: OrderLogging}}
	s.handle = func(ctx context.Context, _ any, next pipeline.Next[any]) (any, error) {
		start := time.Now()
		info, _ := pipeline.InfoFrom(ctx)

		cl := logging.NewContextLogger(ctx, logger).With(
			semconv.EndpointName, info.Name,
			semconv.HTTPMethod, info.Verb,
			semconv.HTTPRoute, info.Pattern,
		)
		if id := requestid.Get(ctx); id != "" {
			cl = cl.With(semconv.RequestID, id)
		}
		cl.Debug("endpoint call started")

		resp, err := next(ctx)

		d := time.Since(start)
		if err != nil {
			cl.Warn("endpoint call faulted", semconv.Error, err.Error(), semconv.DurationMS, d.Milliseconds(), "duration", d.String())
			return resp, err
		}
		cl.Info("endpoint call completed", semconv.DurationMS, d.Milliseconds(), "duration", d.String())
		return resp, nil
	}
	applyOptions(opts).apply(s)
	return s
}
