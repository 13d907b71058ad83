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

package errors

import (
	"net/http"
)

// Formatter renders an error as an HTTP response.
//
// Example:
//
//	resp := formatter.Format(req, err)
//	w.Header().Set("Content-Type", resp.ContentType)
//	w.WriteHeader(resp.Status)
//	json.NewEncoder(w).Encode(resp.Body)
type Formatter interface {
	Format(req *http.Request, err error) Response
}

// FormatterFunc adapts a function to [Formatter].
type FormatterFunc func(req *http.Request, err error) Response

// Format implements [Formatter].
func (f FormatterFunc) Format(req *http.Request, err error) Response {
	return f(req, err)
}

// Response is a formatted error response.
type Response struct {
	Status      int
	ContentType string
	Body        any         // Encoded as JSON
	Headers     http.Header // Optional extra headers
}

// ErrorType is implemented by errors that declare their HTTP status.
type ErrorType interface {
	error
	HTTPStatus() int
}

// ErrorDetails is implemented by errors that carry structured details.
type ErrorDetails interface {
	error
	Details() any
}

// ErrorCode is implemented by errors that carry a machine-readable code.
type ErrorCode interface {
	error
	Code() string
}

// FieldProblems is implemented by validation errors. Formatters render
// them as validation problems listing the messages of each field.
type FieldProblems interface {
	error
	ByField() map[string][]string
}

// NewRFC9457 creates an RFC 9457 formatter. baseURL prefixes problem type slugs.
func NewRFC9457(baseURL string) *RFC9457 {
	return &RFC9457{BaseURL: baseURL}
}

// NewSimple creates a [Simple] formatter.
func NewSimple() *Simple {
	return &Simple{}
}

// New returns the formatter registered under name: "rfc9457" (the
// default for an empty name) or "simple".
func New(name, baseURL string) (Formatter, error) {
	switch name {
	case "", "rfc9457", "problem":
		return NewRFC9457(baseURL), nil
	case "simple":
		return NewSimple(), nil
	default:
		return nil, &unknownFormatError{name: name}
	}
}

type unknownFormatError struct {
	name string
}

func (e *unknownFormatError) Error() string {
	return "unknown error format " + e.name
}

// WithStatus wraps err with an explicit HTTP status code.
// A nil err uses the status text as its message.
//
// Example:
//
//	return Order{}, errors.WithStatus(ErrOrderNotFound, http.StatusNotFound)
func WithStatus(err error, status int) error {
	return &statusError{err: err, status: status}
}

type statusError struct {
	err    error
	status int
}

func (e *statusError) Error() string {
	if e.err == nil {
		return http.StatusText(e.status)
	}
	return e.err.Error()
}

func (e *statusError) Unwrap() error {
	return e.err
}

func (e *statusError) HTTPStatus() int {
	return e.status
}

// statusOf returns the declared status of err, or 500.
func statusOf(err error, resolver func(error) int) int {
	if resolver != nil {
		return resolver(err)
	}
	if typed, ok := asType[ErrorType](err); ok {
		return typed.HTTPStatus()
	}
	return http.StatusInternalServerError
}
