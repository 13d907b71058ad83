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

	"rivaas.dev/endpoint/pipeline"
	"rivaas.dev/endpoint/tracing"
)

// Tracing wraps the rest of the call in a server span named after the
// route. A remote parent already extracted into the context is honored.
func Tracing(tracer *tracing.Tracer, opts ...Option) *Stage {
	if tracer == nil {
		tracer = tracing.Noop()
	}

	s := &Stage{desc: pipeline.Descriptor{Name: "tracing", Order: OrderTracing}}
	s.handle = func(ctx context.Context, _ any, next pipeline.Next[any]) (any, error) {
		info, _ := pipeline.InfoFrom(ctx)
		ctx, span := tracer.StartCall(ctx, nil, info.Name, info.Verb, info.Pattern,
			tracing.AttrGroup.String(info.Group))

		resp, err := next(ctx)
		tracer.Finish(span, err)
		return resp, err
	}
	applyOptions(opts).apply(s)
	return s
}

// Traced wraps an entry in its own internal span.
func Traced[Req, Resp any](tracer *tracing.Tracer, e pipeline.Entry[Req, Resp]) pipeline.Entry[Req, Resp] {
	inner := e.Stage
	e.Stage = pipeline.StageFunc[Req, Resp](func(ctx context.Context, req Req, next pipeline.Next[Resp]) (Resp, error) {
		ctx, span := tracer.StartStage(ctx, e.Name, e.Order)
		resp, err := inner.Handle(ctx, req, next)
		tracer.Finish(span, err)
		return resp, err
	})
	return e
}
