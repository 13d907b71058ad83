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
	"fmt"
	"net/http"
	"runtime/debug"

	"rivaas.dev/endpoint/logging"
	"rivaas.dev/endpoint/pipeline"
	"rivaas.dev/endpoint/telemetry/semconv"
)

const defaultStackSize = 4 << 10

// PanicError is the fault produced when a stage or handler panics.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements error.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// HTTPStatus implements the status interface of the errors package.
func (e *PanicError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// Code returns the machine-readable error code.
func (e *PanicError) Code() string {
	return "panic"
}

// WithStackSize limits the stack captured by [Recovery], in bytes.
// Zero disables stack capture.
func WithStackSize(size int) Option {
	return func(s *settings) {
		s.stackSize = size
	}
}

// Recovery turns a panic in any later stage or the handler into a
// [*PanicError] fault and logs it with the stack.
//
//	app.Use(stages.Recovery(logger))
func Recovery(logger *logging.Logger, opts ...Option) *Stage {
	if logger == nil {
		logger = logging.Noop()
	}
	st := applyOptions(opts)

	s := &Stage{desc: pipeline.Descriptor{Name: "recovery", Order: OrderRecovery}}
	s.handle = func(ctx context.Context, _ any, next pipeline.Next[any]) (resp any, err error) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}

			perr := &PanicError{Value: v}
			if st.stackSize > 0 {
				stack := debug.Stack()
				if len(stack) > st.stackSize {
					stack = stack[:st.stackSize]
				}
				perr.Stack = stack
			}

			info, _ := pipeline.InfoFrom(ctx)
			logging.NewContextLogger(ctx, logger).Error("panic recovered",
				semconv.EndpointName, info.Name,
				"panic", fmt.Sprint(v),
				"stack", string(perr.Stack),
			)
			resp, err = nil, perr
		}()
		return next(ctx)
	}
	st.apply(s)
	return s
}
