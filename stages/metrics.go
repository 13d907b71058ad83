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
	"errors"
	"time"

	"rivaas.dev/endpoint/binding"
	"rivaas.dev/endpoint/metrics"
	"rivaas.dev/endpoint/pipeline"
	"rivaas.dev/endpoint/validation"
)

// Metrics records the duration and outcome of every call that reaches it.
func Metrics(rec *metrics.Recorder, opts ...Option) *Stage {
	s := &Stage{desc: pipeline.Descriptor{Name: "metrics", Order: OrderMetrics}}
	s.handle = func(ctx context.Context, _ any, next pipeline.Next[any]) (any, error) {
		if rec == nil {
			return next(ctx)
		}
		info, _ := pipeline.InfoFrom(ctx)
		m := rec.Start(ctx, info)

		resp, err := next(ctx)
		rec.Finish(ctx, m, Outcome(err))
		return resp, err
	}
	applyOptions(opts).apply(s)
	return s
}

// Timed wraps an entry so that rec records its duration and faults.
func Timed[Req, Resp any](rec *metrics.Recorder, e pipeline.Entry[Req, Resp]) pipeline.Entry[Req, Resp] {
	inner := e.Stage
	e.Stage = pipeline.StageFunc[Req, Resp](func(ctx context.Context, req Req, next pipeline.Next[Resp]) (Resp, error) {
		start := time.Now()
		resp, err := inner.Handle(ctx, req, next)
		info, _ := pipeline.InfoFrom(ctx)
		rec.RecordStage(ctx, info, e.Name, time.Since(start), err)
		return resp, err
	})
	return e
}

// Outcome classifies a call result for metrics.
func Outcome(err error) metrics.Outcome {
	if err == nil {
		return metrics.OutcomeCompleted
	}
	var (
		verr  *validation.Error
		berr  *binding.BindError
		multi *binding.MultiError
	)
	if errors.As(err, &verr) || errors.As(err, &berr) || errors.As(err, &multi) {
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeFaulted
}
