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
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const redacted = "***REDACTED***"

// validateWithTags validates using go-playground/validator struct tags.
func (v *Validator) validateWithTags(target any, cfg *config) error {
	err := v.tags.Struct(target)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return v.formatTagErrors(verrs, cfg)
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		// Not a struct; nothing to check.
		return nil
	}

	return &Error{Fields: []FieldError{{Code: "tag_error", Message: err.Error()}}}
}

// formatTagErrors converts go-playground errors into an [*Error] with stable codes.
func (v *Validator) formatTagErrors(errs validator.ValidationErrors, cfg *config) error {
	var result Error

	for _, e := range errs {
		path := namespacePath(e.Namespace())
		if cfg.fieldNameMapper != nil {
			path = cfg.fieldNameMapper(path)
		}

		msg := tagMessage(e, cfg)
		value := fmt.Sprint(e.Value())
		if cfg.redactor != nil && cfg.redactor(path) {
			msg = strings.ReplaceAll(msg, value, redacted)
			value = redacted
		}

		result.Add(path, "tag."+e.Tag(), msg, map[string]any{
			"tag":   e.Tag(),
			"param": e.Param(),
			"value": value,
		})

		if cfg.maxErrors > 0 && len(result.Fields) >= cfg.maxErrors {
			result.Truncated = len(errs) > cfg.maxErrors
			break
		}
	}

	result.Sort()
	return &result
}

// namespacePath turns "Request.items[2].price" into "items.2.price".
// Field names in the namespace are already request keys (see fieldKey).
func namespacePath(ns string) string {
	if idx := strings.Index(ns, "."); idx != -1 {
		ns = ns[idx+1:]
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	return strings.ReplaceAll(ns, "]", "")
}

// tagMessage returns the human-readable message of a tag failure.
func tagMessage(e validator.FieldError, cfg *config) string {
	if msg, ok := cfg.messages[e.Tag()]; ok {
		return msg
	}

	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return fmt.Sprintf("must be at most %s", e.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	case "slug":
		return "must be lowercase letters, numbers, and hyphens"
	default:
		return fmt.Sprintf("failed validation (%s)", e.Tag())
	}
}
