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

package pipeline

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
)

// ErrResponseType is returned when an untyped stage produces a value the
// endpoint's response type cannot hold.
var ErrResponseType = errors.New("stage returned a value of the wrong response type")

// Next continues the chain: the next stage, or the handler after the last one.
type Next[Resp any] func(ctx context.Context) (Resp, error)

// Handler is the terminal call of a chain.
type Handler[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Stage is one middleware unit. A stage proceeds by calling next exactly
// once; returning without calling next short-circuits the chain. The value
// returned by next may be transformed before it is returned.
type Stage[Req, Resp any] interface {
	Handle(ctx context.Context, req Req, next Next[Resp]) (Resp, error)
}

// StageFunc adapts a function to [Stage].
type StageFunc[Req, Resp any] func(ctx context.Context, req Req, next Next[Resp]) (Resp, error)

// Handle implements [Stage].
func (f StageFunc[Req, Resp]) Handle(ctx context.Context, req Req, next Next[Resp]) (Resp, error) {
	return f(ctx, req, next)
}

// Descriptor identifies a stage and its position. Lower orders run first
// and wrap everything after them.
type Descriptor struct {
	Name  string
	Order int
}

// Entry pairs a stage with its descriptor.
type Entry[Req, Resp any] struct {
	Descriptor
	Stage Stage[Req, Resp]
}

// Untyped is a stage that serves endpoints of any request and response type.
type Untyped interface {
	Handle(ctx context.Context, req any, next Next[any]) (any, error)
}

// UntypedFunc adapts a function to [Untyped].
type UntypedFunc func(ctx context.Context, req any, next Next[any]) (any, error)

// Handle implements [Untyped].
func (f UntypedFunc) Handle(ctx context.Context, req any, next Next[any]) (any, error) {
	return f(ctx, req, next)
}

// Typed adapts an untyped stage to one endpoint's types. A nil result
// becomes the zero response; a result of another type is returned as the
// fault when it is an error, otherwise [ErrResponseType] is returned.
func Typed[Req, Resp any](s Untyped) Stage[Req, Resp] {
	return StageFunc[Req, Resp](func(ctx context.Context, req Req, next Next[Resp]) (Resp, error) {
		out, err := s.Handle(ctx, req, func(ctx context.Context) (any, error) {
			return next(ctx)
		})

		var zero Resp
		if out == nil {
			return zero, err
		}
		if resp, ok := out.(Resp); ok {
			return resp, err
		}
		if err == nil {
			if fault, ok := out.(error); ok {
				return zero, fault
			}
			err = fmt.Errorf("%w: %T is not %v", ErrResponseType, out, reflect.TypeFor[Resp]())
		}
		return zero, err
	})
}

// Chain is a composed, immutable pipeline around a handler.
// It is safe for concurrent use; every execution gets its own [Call].
type Chain[Req, Resp any] struct {
	entries  []Entry[Req, Resp]
	handler  Handler[Req, Resp]
	observer Observer
}

// ChainOption configures a [Chain].
type ChainOption func(*chainConfig)

type chainConfig struct {
	observer Observer
}

// WithObserver reports the state transitions of every call.
func WithObserver(o Observer) ChainOption {
	return func(c *chainConfig) {
		c.observer = o
	}
}

// Compose orders entries by ascending Order, keeping declaration order on
// ties, and wraps them around handler: the first entry runs first and
// returns last.
//
// Example:
//
//	chain := pipeline.Compose([]pipeline.Entry[Req, Resp]{
//	    {Descriptor: pipeline.Descriptor{Name: "validate", Order: 2}, Stage: validate},
//	    {Descriptor: pipeline.Descriptor{Name: "log", Order: 1}, Stage: logStage},
//	}, handler)
//	// log -> validate -> handler -> validate -> log
func Compose[Req, Resp any](entries []Entry[Req, Resp], handler Handler[Req, Resp], opts ...ChainOption) *Chain[Req, Resp] {
	cfg := chainConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry[Req, Resp]) int {
		return cmp.Compare(a.Order, b.Order)
	})

	return &Chain[Req, Resp]{entries: sorted, handler: handler, observer: cfg.observer}
}

// Stages returns the descriptors in execution order.
func (c *Chain[Req, Resp]) Stages() []Descriptor {
	out := make([]Descriptor, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Descriptor
	}
	return out
}

// Len returns the number of stages.
func (c *Chain[Req, Resp]) Len() int {
	return len(c.entries)
}

// NewCall starts the state machine of one inbound call in [StateReceived].
func (c *Chain[Req, Resp]) NewCall() *Call[Req, Resp] {
	return &Call[Req, Resp]{chain: c, state: StateReceived, stage: -1}
}

// Execute runs an already parsed and validated request through the chain.
// The caller's context is passed unchanged to every stage and the handler;
// the chain never cancels on its own.
func (c *Chain[Req, Resp]) Execute(ctx context.Context, req Req) (Resp, error) {
	call := c.NewCall()
	call.state = StateValidated
	return call.Run(ctx, req)
}
