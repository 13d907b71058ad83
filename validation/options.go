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
	"maps"
	"slices"

	"github.com/go-playground/validator/v10"
)

// Strategy defines the validation approach to use.
type Strategy int

const (
	// StrategyAuto picks the first applicable strategy in the order
	// interface, tags, JSON Schema.
	StrategyAuto Strategy = iota

	// StrategyTags uses struct tag validation (go-playground/validator).
	StrategyTags

	// StrategyJSONSchema uses JSON Schema validation.
	StrategyJSONSchema

	// StrategyInterface calls Validate() or ValidateContext().
	StrategyInterface
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyTags:
		return "tags"
	case StrategyJSONSchema:
		return "jsonschema"
	case StrategyInterface:
		return "interface"
	default:
		return "unknown"
	}
}

// ParseStrategy parses a strategy name as produced by [Strategy.String].
// The empty name selects [StrategyAuto].
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "auto":
		return StrategyAuto, nil
	case "tags":
		return StrategyTags, nil
	case "jsonschema":
		return StrategyJSONSchema, nil
	case "interface":
		return StrategyInterface, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Redactor reports whether the value at path must be hidden in error output.
type Redactor func(path string) bool

type customTag struct {
	name string
	fn   validator.Func
}

type config struct {
	strategy        Strategy
	runAll          bool
	maxErrors       int
	customSchemaID  string
	customSchema    string
	fieldNameMapper func(string) string
	redactor        Redactor
	customTags      []customTag
	messages        map[string]string
}

func (c *config) validate() error {
	if c.maxErrors < 0 {
		return errors.New("maxErrors must be non-negative")
	}
	return nil
}

func (c *config) clone() *config {
	out := *c
	out.customTags = slices.Clone(c.customTags)
	out.messages = maps.Clone(c.messages)
	return &out
}

// Option configures a [Validator] or a single Validate call.
type Option func(*config)

// WithStrategy sets the validation strategy.
func WithStrategy(strategy Strategy) Option {
	return func(c *config) {
		c.strategy = strategy
	}
}

// WithRunAll runs every applicable strategy and aggregates their errors.
func WithRunAll(runAll bool) Option {
	return func(c *config) {
		c.runAll = runAll
	}
}

// WithMaxErrors limits the number of errors returned. Zero means unlimited.
func WithMaxErrors(maxErrors int) Option {
	return func(c *config) {
		c.maxErrors = maxErrors
	}
}

// WithCustomSchema validates against schema instead of a [JSONSchemaProvider].
func WithCustomSchema(id, schema string) Option {
	return func(c *config) {
		c.customSchemaID = id
		c.customSchema = schema
	}
}

// WithFieldNameMapper transforms field paths in error output.
func WithFieldNameMapper(mapper func(string) string) Option {
	return func(c *config) {
		c.fieldNameMapper = mapper
	}
}

// WithRedactor hides values of sensitive fields in error output.
//
// Example:
//
//	validation.WithRedactor(func(path string) bool {
//	    return strings.Contains(path, "password")
//	})
func WithRedactor(redactor Redactor) Option {
	return func(c *config) {
		c.redactor = redactor
	}
}

// WithCustomTag registers a validation tag. Tags are registered when the
// [Validator] is created; passing this option to a single call has no effect.
//
// Example:
//
//	validation.WithCustomTag("sku", func(fl validator.FieldLevel) bool {
//	    return skuPattern.MatchString(fl.Field().String())
//	})
func WithCustomTag(name string, fn validator.Func) Option {
	return func(c *config) {
		c.customTags = append(c.customTags, customTag{name: name, fn: fn})
	}
}

// WithMessages overrides the default messages of the given tags.
func WithMessages(messages map[string]string) Option {
	return func(c *config) {
		if c.messages == nil {
			c.messages = make(map[string]string, len(messages))
		}
		maps.Copy(c.messages, messages)
	}
}

func newConfig() *config {
	return &config{strategy: StrategyAuto}
}

// applyOptions layers per-call options over the validator's configuration.
func applyOptions(base *config, opts ...Option) *config {
	if len(opts) == 0 {
		return base
	}
	cfg := base.clone()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
