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

package endpoint

import (
	"errors"
	"net/http"

	"rivaas.dev/endpoint/stages"
	"rivaas.dev/endpoint/validation"
)

// Result is a response that controls its status and headers. Endpoints
// declaring Result as their response type can also return a [*Problem],
// which lets the validation stage answer with a problem instead of a fault.
type Result interface {
	Status() int
	Header() http.Header
	Value() any // Encoded with the negotiated codec; nil writes no body
}

type result struct {
	status int
	header http.Header
	value  any
}

func (r *result) Status() int         { return r.status }
func (r *result) Header() http.Header { return r.header }
func (r *result) Value() any          { return r.value }

// OK returns a 200 result carrying v.
func OK(v any) Result {
	return &result{status: http.StatusOK, value: v}
}

// Created returns a 201 result with a Location header.
func Created(location string, v any) Result {
	h := http.Header{}
	if location != "" {
		h.Set("Location", location)
	}
	return &result{status: http.StatusCreated, header: h, value: v}
}

// NoContent returns a 204 result.
func NoContent() Result {
	return &result{status: http.StatusNoContent}
}

// StatusResult returns a result with an explicit status.
func StatusResult(status int, v any) Result {
	return &result{status: status, value: v}
}

// Problem is an error carried as a result. It is rendered by the
// application's error formatter.
type Problem struct {
	Err        error
	StatusCode int // Zero uses the status declared by Err, else 500
}

// NewProblem wraps err as a problem result with the given status.
func NewProblem(status int, err error) *Problem {
	return &Problem{Err: err, StatusCode: status}
}

// ValidationProblem turns a validation failure into a 422 problem.
// It matches [stages.ProblemFunc].
func ValidationProblem(verr *validation.Error) any {
	return &Problem{Err: verr, StatusCode: http.StatusUnprocessableEntity}
}

// Status implements [Result].
func (p *Problem) Status() int {
	if p.StatusCode != 0 {
		return p.StatusCode
	}
	var typed interface{ HTTPStatus() int }
	if errors.As(p.Err, &typed) {
		return typed.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Header implements [Result].
func (p *Problem) Header() http.Header { return nil }

// Value implements [Result].
func (p *Problem) Value() any { return p.Err }

// HTTPStatus reports the problem status to error formatters.
func (p *Problem) HTTPStatus() int { return p.Status() }

func (p *Problem) Error() string {
	if p.Err == nil {
		return http.StatusText(p.Status())
	}
	return p.Err.Error()
}

func (p *Problem) Unwrap() error { return p.Err }

// ValidationStage returns a validation stage at order that answers
// endpoints returning [Result] with a validation [*Problem] and faults the
// call of every other endpoint with the same problem, which still unwraps
// to the [*validation.Error].
//
// Example:
//
//	app.Use(endpoint.ValidationStage(5, nil))
func ValidationStage(order int, v *validation.Validator) *stages.Stage {
	return stages.Validate(v, stages.WithOrder(order), stages.WithProblem(ValidationProblem))
}
