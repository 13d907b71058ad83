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
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// keyTags are consulted in order to name a field in error paths, so a
// failure on a `query:"page_size"` field is reported as "page_size".
var keyTags = []string{"json", "path", "query", "header", "form"}

// Validator validates request values. It is safe for concurrent use.
//
// Example:
//
//	v := validation.MustNew(
//	    validation.WithMaxErrors(10),
//	    validation.WithRedactor(func(path string) bool { return path == "password" }),
//	)
//
//	err := v.Validate(ctx, &req)
type Validator struct {
	cfg  *config
	tags *validator.Validate

	schemas   map[string]*jsonschema.Schema
	schemasMu sync.RWMutex
}

// New creates a [Validator].
// It returns an error when an option is invalid or a custom tag cannot be registered.
func New(opts ...Option) (*Validator, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	v := &Validator{
		cfg:     cfg,
		tags:    validator.New(validator.WithRequiredStructEnabled()),
		schemas: make(map[string]*jsonschema.Schema),
	}
	v.tags.RegisterTagNameFunc(fieldKey)

	if err := v.tags.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return reSlug.MatchString(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("register slug validator: %w", err)
	}
	for _, ct := range cfg.customTags {
		if err := v.tags.RegisterValidation(ct.name, ct.fn); err != nil {
			return nil, fmt.Errorf("register custom tag %q: %w", ct.name, err)
		}
	}

	return v, nil
}

// MustNew is like [New] but panics on error.
func MustNew(opts ...Option) *Validator {
	v, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("validation.MustNew: %v", err))
	}
	return v
}

var reSlug = regexp.MustCompile(`^[a-z0-9-]+$`)

// fieldKey names a field after its request key.
func fieldKey(f reflect.StructField) string {
	for _, tag := range keyTags {
		name, ok := f.Tag.Lookup(tag)
		if !ok {
			continue
		}
		if idx := strings.Index(name, ","); idx != -1 {
			name = name[:idx]
		}
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}
