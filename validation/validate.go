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
	"context"
	"fmt"
	"reflect"
	"sync"
)

var (
	defaultValidator     *Validator
	defaultValidatorOnce sync.Once
)

func getDefaultValidator() *Validator {
	defaultValidatorOnce.Do(func() {
		defaultValidator = MustNew()
	})
	return defaultValidator
}

// Validate validates v with the default [Validator].
func Validate(ctx context.Context, v any, opts ...Option) error {
	return getDefaultValidator().Validate(ctx, v, opts...)
}

// Validate returns nil when val is valid, otherwise an [*Error].
// Per-call options override the validator's configuration.
//
// With [StrategyAuto] the first applicable strategy runs: the value's own
// Validate or ValidateContext method, then struct tags, then a JSON Schema.
func (v *Validator) Validate(ctx context.Context, val any, opts ...Option) error {
	if val == nil {
		return &Error{Fields: []FieldError{{Code: "nil", Message: ErrCannotValidateNilValue.Error()}}}
	}

	rv := reflect.ValueOf(val)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return &Error{Fields: []FieldError{{Code: "nil_pointer", Message: "cannot validate nil pointer"}}}
		}
		rv = rv.Elem()
	}

	cfg := applyOptions(v.cfg, opts...)
	target := addressable(rv)

	if cfg.runAll {
		return v.validateAll(ctx, target, cfg)
	}

	strategy := cfg.strategy
	if strategy == StrategyAuto {
		strategy = v.determineStrategy(target, cfg)
	}
	return v.validateByStrategy(ctx, target, strategy, cfg)
}

// addressable returns a pointer to the value so that methods declared on
// either receiver are visible.
func addressable(rv reflect.Value) any {
	if rv.CanAddr() {
		return rv.Addr().Interface()
	}
	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)
	return ptr.Interface()
}

func (v *Validator) validateAll(ctx context.Context, target any, cfg *config) error {
	var all Error
	for _, strategy := range []Strategy{StrategyInterface, StrategyTags, StrategyJSONSchema} {
		if !v.isApplicable(target, strategy, cfg) {
			continue
		}
		all.AddError(v.validateByStrategy(ctx, target, strategy, cfg))
		if cfg.maxErrors > 0 && len(all.Fields) >= cfg.maxErrors {
			all.Fields = all.Fields[:cfg.maxErrors]
			all.Truncated = true
			break
		}
	}

	if !all.HasErrors() {
		return nil
	}
	all.Sort()
	return &all
}

func (v *Validator) determineStrategy(target any, cfg *config) Strategy {
	for _, s := range []Strategy{StrategyInterface, StrategyTags, StrategyJSONSchema} {
		if v.isApplicable(target, s, cfg) {
			return s
		}
	}
	return StrategyTags
}

func (v *Validator) isApplicable(target any, strategy Strategy, cfg *config) bool {
	switch strategy {
	case StrategyInterface:
		switch target.(type) {
		case ValidatorWithContext, ValidatorInterface:
			return true
		}
		return false

	case StrategyTags:
		return hasValidateTags(reflect.TypeOf(target).Elem(), 0)

	case StrategyJSONSchema:
		if cfg.customSchema != "" {
			return true
		}
		_, ok := target.(JSONSchemaProvider)
		return ok

	default:
		return false
	}
}

// hasValidateTags reports whether t or a nested struct carries validate tags.
func hasValidateTags(t reflect.Type, depth int) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || depth > maxRecursionDepth {
		return false
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Tag.Get("validate") != "" {
			return true
		}
		if f.Type.Kind() == reflect.Struct && hasValidateTags(f.Type, depth+1) {
			return true
		}
	}
	return false
}

func (v *Validator) validateByStrategy(ctx context.Context, target any, strategy Strategy, cfg *config) error {
	switch strategy {
	case StrategyInterface:
		return validateWithInterface(ctx, target, cfg)
	case StrategyTags:
		return v.validateWithTags(target, cfg)
	case StrategyJSONSchema:
		return v.validateWithSchema(target, cfg)
	default:
		return &Error{Fields: []FieldError{{
			Code:    "unknown_strategy",
			Message: fmt.Sprintf("%v: %d", ErrUnknownStrategy, strategy),
		}}}
	}
}

// validateWithInterface calls ValidateContext, or Validate when only that is implemented.
func validateWithInterface(ctx context.Context, target any, cfg *config) error {
	var err error
	switch t := target.(type) {
	case ValidatorWithContext:
		err = t.ValidateContext(ctx)
	case ValidatorInterface:
		err = t.Validate()
	default:
		return nil
	}
	if err == nil {
		return nil
	}

	out := Coerce(err)
	if cfg.fieldNameMapper != nil {
		for i := range out.Fields {
			if out.Fields[i].Path != "" {
				out.Fields[i].Path = cfg.fieldNameMapper(out.Fields[i].Path)
			}
		}
	}
	return out
}
