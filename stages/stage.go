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
	"reflect"

	"rivaas.dev/endpoint/pipeline"
)

// Default orders of the built-in stages. Lower orders run first and wrap
// everything after them.
const (
	OrderRecovery = -1000
	OrderTracing  = -900
	OrderMetrics  = -800
	OrderLogging  = -700
	OrderTimeout  = -600
	OrderValidate = -100
)

// Stage is a pipeline stage applied across endpoints. It serves any
// request type and declares which response types it accepts.
type Stage struct {
	desc    pipeline.Descriptor
	handle  pipeline.UntypedFunc
	accepts func(resp reflect.Type) bool
}

// Option configures a [Stage].
type Option func(*settings)

type settings struct {
	name      string
	order     *int
	accepts   func(resp reflect.Type) bool
	problem   ProblemFunc
	stackSize int
}

func applyOptions(opts []Option) *settings {
	s := &settings{stackSize: defaultStackSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (st *settings) apply(s *Stage) {
	if st.name != "" {
		s.desc.Name = st.name
	}
	if st.order != nil {
		s.desc.Order = *st.order
	}
	if st.accepts != nil {
		s.accepts = st.accepts
	}
}

// WithOrder overrides the stage's default order.
func WithOrder(order int) Option {
	return func(s *settings) {
		s.order = &order
	}
}

// WithName overrides the stage's name.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// WithAccepts restricts the stage to endpoints whose response type
// satisfies fn.
func WithAccepts(fn func(resp reflect.Type) bool) Option {
	return func(s *settings) {
		s.accepts = fn
	}
}

// ResponseCarries accepts response types that can hold a value of type T,
// for example an interface response type implemented by a problem value.
//
//	stages.Validate(v, stages.WithAccepts(stages.ResponseCarries[endpoint.Problem]()))
func ResponseCarries[T any]() func(resp reflect.Type) bool {
	t := reflect.TypeFor[T]()
	return func(resp reflect.Type) bool {
		return t.AssignableTo(resp)
	}
}

// New creates a stage from a function.
//
// Example:
//
//	audit := stages.New("audit", 50, func(ctx context.Context, req any, next pipeline.Next[any]) (any, error) {
//	    resp, err := next(ctx)
//	    auditLog.Record(ctx, req, err)
//	    return resp, err
//	})
func New(name string, order int, fn pipeline.UntypedFunc, opts ...Option) *Stage {
	s := &Stage{
		desc:   pipeline.Descriptor{Name: name, Order: order},
		handle: fn,
	}
	applyOptions(opts).apply(s)
	return s
}

// Handle implements [pipeline.Untyped].
func (s *Stage) Handle(ctx context.Context, req any, next pipeline.Next[any]) (any, error) {
	return s.handle(ctx, req, next)
}

// Descriptor returns the stage's name and order.
func (s *Stage) Descriptor() pipeline.Descriptor {
	return s.desc
}

// Name returns the stage's name.
func (s *Stage) Name() string {
	return s.desc.Name
}

// Accepts reports whether the stage applies to endpoints with response type resp.
func (s *Stage) Accepts(resp reflect.Type) bool {
	if s.accepts == nil {
		return true
	}
	return s.accepts(resp)
}

// With returns a copy of the stage with opts applied.
func (s *Stage) With(opts ...Option) *Stage {
	c := *s
	applyOptions(opts).apply(&c)
	return &c
}

// Entry adapts the stage to one endpoint's types.
func Entry[Req, Resp any](s *Stage) pipeline.Entry[Req, Resp] {
	return pipeline.Entry[Req, Resp]{Descriptor: s.desc, Stage: pipeline.Typed[Req, Resp](s)}
}
