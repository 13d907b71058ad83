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
	"rivaas.dev/endpoint/validation"
)

// ProblemFunc converts a validation failure into the value the validation
// stage returns in place of calling the rest of the chain.
type ProblemFunc func(*validation.Error) any

// WithProblem makes [Validate] return problem(err) as a result. The value
// becomes the endpoint's response when the response type can hold it;
// otherwise it must be an error and becomes the call's fault.
func WithProblem(problem ProblemFunc) Option {
	return func(s *settings) {
		s.problem = problem
	}
}

// Validate validates the request with v before the rest of the chain runs.
// A failure short-circuits the chain: without [WithProblem] the
// [*validation.Error] is the fault.
//
//	app.Use(stages.Validate(validation.MustNew(), stages.WithOrder(5)))
func Validate(v *validation.Validator, opts ...Option) *Stage {
	if v == nil {
		v = validation.MustNew()
	}
	st := applyOptions(opts)

	s := &Stage{desc: pipeline.Descriptor{Name: "validate", Order: OrderValidate}}
	s.handle = func(ctx context.Context, req any, next pipeline.Next[any]) (any, error) {
		err := v.Validate(ctx, req)
		if err == nil {
			return next(ctx)
		}

		verr := validation.Coerce(err)
		if st.problem == nil {
			return nil, verr
		}
		return st.problem(verr), nil
	}
	st.apply(s)
	return s
}
