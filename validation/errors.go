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

package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrValidation is a sentinel error for validation failures.
// Use errors.Is(err, ErrValidation) to check if an error is a validation error.
var ErrValidation = errors.New("validation")

// Predefined validation errors.
var (
	// ErrCannotValidateNilValue is returned when attempting to validate a nil value.
	ErrCannotValidateNilValue = errors.New("cannot validate nil value")

	// ErrUnknownStrategy is returned when an unknown validation strategy is specified.
	ErrUnknownStrategy = errors.New("unknown validation strategy")
)

// FieldError is a single validation failure for one field.
type FieldError struct {
	Path    string         `json:"path"`           // Field path using request keys (e.g., "items.2.price")
	Code    string         `json:"code"`           // Stable code (e.g., "tag.required", "schema.minLength")
	Message string         `json:"message"`        // Human-readable message
	Meta    map[string]any `json:"meta,omitempty"` // Tag, param and value when known
}

// Error returns "path: message", or the message alone for object-level failures.
func (e FieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Unwrap returns [ErrValidation].
func (e FieldError) Unwrap() error {
	return ErrValidation
}

// HTTPStatus returns 422 Unprocessable Entity.
func (e FieldError) HTTPStatus() int {
	return 422
}

// Error collects the field errors of one validation run.
//
// Example:
//
//	var verr *validation.Error
//	if errors.As(err, &verr) {
//	    for _, f := range verr.Fields {
//	        fmt.Printf("%s: %s\n", f.Path, f.Message)
//	    }
//	}
//
//nolint:recvcheck // value receivers for the error interface, pointer receivers for mutation
type Error struct {
	Fields    []FieldError `json:"errors"`
	Truncated bool         `json:"truncated,omitempty"` // More errors existed than WithMaxErrors allowed
}

// Error returns a formatted error message.
func (v Error) Error() string {
	switch len(v.Fields) {
	case 0:
		return ""
	case 1:
		return v.Fields[0].Error()
	}

	msgs := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		msgs = append(msgs, f.Error())
	}

	suffix := ""
	if v.Truncated {
		suffix = " (truncated)"
	}
	return fmt.Sprintf("validation failed: %s%s", strings.Join(msgs, "; "), suffix)
}

// Unwrap returns [ErrValidation].
func (v Error) Unwrap() error {
	return ErrValidation
}

// HTTPStatus returns 422 Unprocessable Entity.
func (v Error) HTTPStatus() int {
	return 422
}

// Details returns the field errors.
func (v Error) Details() any {
	return v.Fields
}

// Code returns "validation_error".
func (v Error) Code() string {
	return "validation_error"
}

// Add appends a field error.
func (v *Error) Add(path, code, message string, meta map[string]any) {
	v.Fields = append(v.Fields, FieldError{Path: path, Code: code, Message: message, Meta: meta})
}

// AddError appends err, flattening [FieldError] and [Error] values.
// Any other error becomes an object-level field error.
func (v *Error) AddError(err error) {
	if err == nil {
		return
	}

	var fe FieldError
	if errors.As(err, &fe) {
		v.Fields = append(v.Fields, fe)
		return
	}

	var ve *Error
	if errors.As(err, &ve) {
		v.Fields = append(v.Fields, ve.Fields...)
		v.Truncated = v.Truncated || ve.Truncated
		return
	}

	var vv Error
	if errors.As(err, &vv) {
		v.Fields = append(v.Fields, vv.Fields...)
		v.Truncated = v.Truncated || vv.Truncated
		return
	}

	v.Fields = append(v.Fields, FieldError{Code: "validation_error", Message: err.Error()})
}

// HasErrors reports whether any field error was collected.
func (v Error) HasErrors() bool {
	return len(v.Fields) > 0
}

// Has reports whether path has an error.
func (v Error) Has(path string) bool {
	for _, f := range v.Fields {
		if f.Path == path {
			return true
		}
	}
	return false
}

// HasCode reports whether any error has the given code.
func (v Error) HasCode(code string) bool {
	for _, f := range v.Fields {
		if f.Code == code {
			return true
		}
	}
	return false
}

// ByField groups messages by path, the (field, messages) form of a
// validation problem body. Object-level errors use the empty path.
func (v Error) ByField() map[string][]string {
	out := make(map[string][]string, len(v.Fields))
	for _, f := range v.Fields {
		out[f.Path] = append(out[f.Path], f.Message)
	}
	return out
}

// Sort orders errors by path, then code.
func (v *Error) Sort() {
	sort.SliceStable(v.Fields, func(i, j int) bool {
		if v.Fields[i].Path != v.Fields[j].Path {
			return v.Fields[i].Path < v.Fields[j].Path
		}
		return v.Fields[i].Code < v.Fields[j].Code
	})
}

// Coerce converts any validation result to *Error. It returns nil for a
// nil error; an error that is not already a validation error becomes a
// single object-level field error.
func Coerce(err error) *Error {
	if err == nil {
		return nil
	}
	var ve *Error
	if errors.As(err, &ve) {
		return ve
	}
	out := &Error{}
	out.AddError(err)
	return out
}
