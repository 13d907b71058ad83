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

// Package diag describes build-time diagnostics reported while classifying
// and planning endpoint request types.
//
// A diagnostic is tied to the offending request type and, when applicable,
// to one of its properties. Diagnostics with [SeverityError] exclude the
// request type from the successfully planned set; warnings never do.
package diag

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Severity classifies a diagnostic.
type Severity int

const (
	// SeverityWarning reports a suspicious declaration that does not block planning.
	SeverityWarning Severity = iota

	// SeverityError reports a configuration error; the request type is skipped.
	SeverityError
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Code is a stable diagnostic identifier.
type Code string

// Diagnostic codes.
const (
	// RequestTypeIsPrimitive: the request type is not a struct.
	RequestTypeIsPrimitive Code = "SEI001"

	// CustomParseWithSourceTag: a property whose type binds itself also carries a source tag.
	CustomParseWithSourceTag Code = "SEI002"

	// BodyIsPrimitive: a body-bound leaf has a primitive value type.
	BodyIsPrimitive Code = "SEI003"

	// ConflictingSourceTags: a property carries more than one source tag.
	ConflictingSourceTags Code = "SEI004"

	// UnresolvablePropertyType: a property type cannot be produced from request inputs.
	UnresolvablePropertyType Code = "SEI005"

	// RecordWithSourceTags: a record-kind request carries body tags that shape selection ignores.
	RecordWithSourceTags Code = "SEI006"
)

// Diagnostic is a single build-time finding.
type Diagnostic struct {
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	Type     string   `json:"type"`
	Property string   `json:"property,omitempty"`
	Message  string   `json:"message"`
}

// Error implements error.
func (d Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(string(d.Code))
	b.WriteString(" ")
	b.WriteString(d.Severity.String())
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// IsError reports whether the diagnostic blocks planning.
func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// New builds a diagnostic with a formatted message.
func New(code Code, severity Severity, typeName, property, format string, args ...any) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: severity,
		Type:     typeName,
		Property: property,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Report is an ordered collection of diagnostics.
type Report []Diagnostic

// Add appends diagnostics to the report.
func (r *Report) Add(d ...Diagnostic) {
	*r = append(*r, d...)
}

// HasErrors reports whether any diagnostic has [SeverityError].
func (r Report) HasErrors() bool {
	for _, d := range r {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Errors returns the error diagnostics.
func (r Report) Errors() Report {
	return r.filter(SeverityError)
}

// Warnings returns the warning diagnostics.
func (r Report) Warnings() Report {
	return r.filter(SeverityWarning)
}

// ForType returns the diagnostics reported against typeName.
func (r Report) ForType(typeName string) Report {
	var out Report
	for _, d := range r {
		if d.Type == typeName {
			out = append(out, d)
		}
	}
	return out
}

// WithCode returns the diagnostics carrying code.
func (r Report) WithCode(code Code) Report {
	var out Report
	for _, d := range r {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// Sort orders the report by type, property and code so that parallel
// planning produces a reproducible report.
func (r Report) Sort() {
	sort.SliceStable(r, func(i, j int) bool {
		if r[i].Type != r[j].Type {
			return r[i].Type < r[j].Type
		}
		if r[i].Property != r[j].Property {
			return r[i].Property < r[j].Property
		}
		return r[i].Code < r[j].Code
	})
}

// Err returns nil when the report has no errors, otherwise an [*Error]
// holding the error diagnostics.
func (r Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	return &Error{Diagnostics: errs}
}

func (r Report) filter(s Severity) Report {
	var out Report
	for _, d := range r {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

// ErrConfiguration is matched by every [*Error] with errors.Is.
var ErrConfiguration = errors.New("endpoint configuration error")

// Error aggregates configuration error diagnostics for one or more request types.
type Error struct {
	Diagnostics Report
}

// Error implements error.
func (e *Error) Error() string {
	if len(e.Diagnostics) == 1 {
		return e.Diagnostics[0].Error()
	}
	msgs := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		msgs = append(msgs, d.Error())
	}
	return fmt.Sprintf("%d configuration errors: %s", len(e.Diagnostics), strings.Join(msgs, "; "))
}

// Unwrap returns [ErrConfiguration].
func (e *Error) Unwrap() error {
	return ErrConfiguration
}
