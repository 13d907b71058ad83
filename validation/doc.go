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

// Package validation validates endpoint request values.
//
// Three strategies are supported:
//
//  1. Struct tags through go-playground/validator (`validate:"required,email"`)
//  2. JSON Schema through [JSONSchemaProvider] or [WithCustomSchema]
//  3. The value's own [ValidatorInterface] or [ValidatorWithContext] method
//
// With [StrategyAuto] the first applicable strategy runs, in the order
// interface, tags, schema. [WithRunAll] runs every applicable strategy.
//
// Failures are reported as an [*Error] holding one [FieldError] per field.
// Field paths use the request keys of the fields: the json name, or the
// path, query, header or form tag name, so errors name fields the way the
// caller sent them.
//
//	type CreateUser struct {
//	    Name  string `json:"name" validate:"required,min=3"`
//	    Email string `json:"email" validate:"required,email"`
//	}
//
//	v := validation.MustNew(validation.WithMaxErrors(10))
//	if err := v.Validate(ctx, &req); err != nil {
//	    var verr *validation.Error
//	    if errors.As(err, &verr) {
//	        problems := verr.ByField() // map[path][]message
//	    }
//	}
//
// [Validator] instances are safe for concurrent use.
package validation
