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
	"fmt"
	"net/http"
	"time"

	"rivaas.dev/endpoint/pipeline"
)

// ErrTimeout is matched by every [*TimeoutError].
var ErrTimeout = errors.New("endpoint call timed out")

// TimeoutError is the fault of a call whose deadline passed.
type TimeoutError struct {
	After time.Duration
	Err   error
}

// Error implements error.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("endpoint call timed out after %s", e.After)
}

// Is matches [ErrTimeout].
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Unwrap returns the error reported by the call.
func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// HTTPStatus implements the status interface of the errors package.
func (e *TimeoutError) HTTPStatus() int {
	return http.StatusGatewayTimeout
}

// Code returns the machine-readable error code.
func (e *TimeoutError) Code() string {
	return "timeout"
}

// Timeout gives later stages and the handler a context that expires after
// d. Cancellation is cooperative: the call runs until it observes the
// context. A failure after the deadline becomes a [*TimeoutError]; a result
// produced after the deadline is still returned.
func Timeout(d time.Duration, opts ...Option) *Stage {
	s := &Stage{desc: pipeline.Descriptor{Name: "timeout", Order: OrderTimeout}}
	s.handle = func(ctx context.Context, _ any, next pipeline.Next[any]) (any, error) {
		return withDeadline[any](ctx, d, next)
	}
	applyOptions(opts).apply(s)
	return s
}

// Bounded runs an entry, and everything after it, under a deadline of d.
// It is how a per-stage timeout from configuration is applied.
func Bounded[Req, Resp any](d time.Duration, e pipeline.Entry[Req, Resp]) pipeline.Entry[Req, Resp] {
	if d <= 0 {
		return e
	}
	inner := e.Stage
	e.Stage = pipeline.StageFunc[Req, Resp](func(ctx context.Context, req Req, next pipeline.Next[Resp]) (Resp, error) {
		return withDeadline(ctx, d, func(ctx context.Context) (Resp, error) {
			return inner.Handle(ctx, req, next)
		})
	})
	return e
}

func withDeadline[T any](ctx context.Context, d time.Duration, run func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return run(ctx)
	}

	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	resp, err := run(tctx)
	if err != nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		var zero T
		return zero, &TimeoutError{After: d, Err: err}
	}
	return resp, err
}
