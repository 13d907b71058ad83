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

package binding

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
)

// Static errors for binding operations.
var (
	ErrNotStruct              = errors.New("request type must be a struct or pointer to struct")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrRequestBodyNil         = errors.New("request body is nil")
	ErrBodyTooLarge           = errors.New("request body too large")
	ErrMissingValue           = errors.New("required value missing")
	ErrServiceNotFound        = errors.New("service not registered")
	ErrInvalidIPAddress       = errors.New("invalid IP address")
	ErrUnsupportedType        = errors.New("unsupported type")
	ErrInvalidBooleanValue    = errors.New("invalid boolean value")
	ErrEmptyTimeValue         = errors.New("empty time value")
	ErrUnableToParseTime      = errors.New("unable to parse time")
	ErrSliceExceedsMaxLength  = errors.New("slice exceeds max length")
)

// BindError represents a binding error with field-level context.
// It provides detailed information about which field failed, what value was
// provided, and what type was expected.
//
// Use [errors.As] to check for BindError:
//
//	var bindErr *BindError
//	if errors.As(err, &bindErr) {
//	    fmt.Printf("Field: %s, Source: %s\n", bindErr.Field, bindErr.Source)
//	}
type BindError struct {
	Field  string       // Lookup key of the property that failed binding
	Source Source       // Binding source
	Value  string       // The value that failed conversion
	Type   reflect.Type // Expected Go type
	Reason string       // Human-readable reason for failure
	Err    error        // Underlying error
}

// Error returns a formatted error message with contextual hints.
func (e *BindError) Error() string {
	var base string
	if e.Reason != "" {
		base = fmt.Sprintf("binding field %q (%s): %s", e.Field, e.Source, e.Reason)
	} else {
		typeName := "unknown"
		if e.Type != nil {
			typeName = e.Type.String()
		}
		base = fmt.Sprintf("binding field %q (%s): failed to convert %q to %s: %v",
			e.Field, e.Source, e.Value, typeName, e.Err)
	}

	if hint := e.hint(); hint != "" {
		base += " (hint: " + hint + ")"
	}

	return base
}

// hint returns a contextual hint for common binding mistakes.
func (e *BindError) hint() string {
	if e.Type == nil || e.Value == "" {
		return ""
	}

	t := unwrapNullable(e.Type)
	switch {
	case isIntType(t) && strings.Contains(e.Value, "."):
		return "use float type for decimal values"
	case t == timeType:
		return "use RFC3339 format (2006-01-02T15:04:05Z07:00)"
	case t == durationType:
		return "use Go duration format (e.g., '1h30m', '500ms')"
	case t == uuidType:
		return "use the canonical 8-4-4-4-12 hexadecimal form"
	case t == ulidType:
		return "use the 26-character Crockford base32 form"
	case t.Kind() == reflect.Bool:
		return "accepted values: true/false, yes/no, 1/0, on/off"
	case t.Kind() == reflect.Slice && strings.Contains(e.Value, ","):
		return "send repeated parameters (ids=1&ids=2) or enable comma-separated slices"
	}

	return ""
}

// isIntType returns true if the type is any integer type.
func isIntType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

// Unwrap returns the underlying error for errors.Is/As compatibility.
func (e *BindError) Unwrap() error {
	return e.Err
}

// HTTPStatus implements rivaas.dev/endpoint/errors.ErrorType.
func (e *BindError) HTTPStatus() int {
	if errors.Is(e.Err, ErrBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(e.Err, ErrUnsupportedContentType) {
		return http.StatusUnsupportedMediaType
	}
	return http.StatusBadRequest
}

// Code implements rivaas.dev/endpoint/errors.ErrorCode.
func (e *BindError) Code() string {
	return "binding_error"
}

// MultiError aggregates multiple binding errors.
// It is returned when several properties of one request fail binding.
//
// Use [errors.As] to check for MultiError:
//
//	var multi *MultiError
//	if errors.As(err, &multi) {
//	    for _, e := range multi.Errors {
//	        // Handle each error
//	    }
//	}
type MultiError struct {
	Errors []*BindError
}

// Error returns a formatted error message.
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	return fmt.Sprintf("%d binding errors occurred", len(m.Errors))
}

// Unwrap returns all errors for errors.Is/As compatibility.
func (m *MultiError) Unwrap() []error {
	errs := make([]error, 0, len(m.Errors))
	for _, e := range m.Errors {
		errs = append(errs, e)
	}

	return errs
}

// HTTPStatus implements rivaas.dev/endpoint/errors.ErrorType.
func (m *MultiError) HTTPStatus() int {
	return http.StatusBadRequest
}

// Details implements rivaas.dev/endpoint/errors.ErrorDetails.
func (m *MultiError) Details() any {
	details := make([]map[string]string, 0, len(m.Errors))
	for _, e := range m.Errors {
		details = append(details, map[string]string{
			"field":   e.Field,
			"source":  e.Source.String(),
			"message": e.Error(),
		})
	}
	return details
}

// Code implements rivaas.dev/endpoint/errors.ErrorCode.
func (m *MultiError) Code() string {
	return "multiple_binding_errors"
}

// Add appends an error to the MultiError.
// Errors that are not *BindError are wrapped into one without a field.
func (m *MultiError) Add(err error) {
	if err == nil {
		return
	}
	var multi *MultiError
	if errors.As(err, &multi) {
		m.Errors = append(m.Errors, multi.Errors...)
		return
	}
	var be *BindError
	if errors.As(err, &be) {
		m.Errors = append(m.Errors, be)
		return
	}
	m.Errors = append(m.Errors, &BindError{Reason: err.Error(), Err: err})
}

// HasErrors returns true if there are any errors.
func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

// ErrorOrNil returns nil if there are no errors, the single error when there
// is exactly one, otherwise the MultiError.
func (m *MultiError) ErrorOrNil() error {
	switch len(m.Errors) {
	case 0:
		return nil
	case 1:
		return m.Errors[0]
	default:
		return m
	}
}
