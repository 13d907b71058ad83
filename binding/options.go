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
	"reflect"
	"time"
)

// SliceParseMode defines how slice values are parsed from query/form data.
type SliceParseMode int

const (
	SliceRepeat SliceParseMode = iota // ?tags=a&tags=b&tags=c (default)
	SliceCSV                          // ?tags=a,b,c
)

// Security and resilience limits for binding operations.
const (
	// DefaultMaxSliceLen is the default maximum number of slice elements per field.
	// It prevents memory exhaustion from large slice bindings.
	DefaultMaxSliceLen = 10_000

	// DefaultMaxBodySize is the default maximum request body size (10 MiB).
	DefaultMaxBodySize = 10 << 20

	// DefaultMaxMultipartMemory is the memory budget for multipart form parsing.
	DefaultMaxMultipartMemory = 32 << 20
)

// TypeConverter converts a string value to a custom type.
// Registered converters are checked before built-in type handling.
// If a converter returns an error, binding fails for that field.
type TypeConverter func(string) (any, error)

// Options configures how request inputs are converted.
//
// Options are applied per [Inputs] via functional options. It is safe to
// reuse Option functions across goroutines.
type Options struct {
	TimeLayouts    []string                       // Extra time layouts tried after the defaults
	SliceMode      SliceParseMode                 // How to parse slice values
	IntBaseAuto    bool                           // Auto-detect integer bases (0x, 0, 0b)
	TypeConverters map[reflect.Type]TypeConverter // Custom type converters
	MaxBodySize    int64                          // Maximum body bytes read; 0 disables the limit
	Codecs         *Registry                      // Body codecs; nil uses DefaultRegistry

	maxSliceLen int
}

// Option configures binding behavior.
type Option func(*Options)

// WithTimeLayouts sets custom time parsing layouts.
// Default layouts are tried first, then custom layouts are attempted.
//
// Example:
//
//	binding.NewInputs(r, params, nil,
//		binding.WithTimeLayouts("02/01/2006"))
func WithTimeLayouts(layouts ...string) Option {
	return func(o *Options) {
		o.TimeLayouts = layouts
	}
}

// WithSliceParseMode sets how to parse slice values from query/form data.
// SliceRepeat (default) expects repeated keys: ?tags=a&tags=b&tags=c
// SliceCSV expects comma-separated values: ?tags=a,b,c
func WithSliceParseMode(mode SliceParseMode) Option {
	return func(o *Options) {
		o.SliceMode = mode
	}
}

// WithIntBaseAuto enables auto-detection of integer bases from prefixes.
// When enabled, recognizes 0x (hex), 0 (octal), and 0b (binary) prefixes.
func WithIntBaseAuto(enabled bool) Option {
	return func(o *Options) {
		o.IntBaseAuto = enabled
	}
}

// WithTypedConverter provides type-safe converter registration.
// It works transparently for both T and *T.
//
// Example:
//
//	binding.WithTypedConverter(func(s string) (Money, error) {
//		return ParseMoney(s)
//	})
func WithTypedConverter[T any](fn func(string) (T, error)) Option {
	return func(o *Options) {
		if o.TypeConverters == nil {
			o.TypeConverters = make(map[reflect.Type]TypeConverter)
		}
		o.TypeConverters[reflect.TypeFor[T]()] = func(s string) (any, error) {
			return fn(s)
		}
	}
}

// WithMaxBodySize limits the number of body bytes read.
// Set to 0 to disable the limit.
func WithMaxBodySize(n int64) Option {
	return func(o *Options) {
		o.MaxBodySize = n
	}
}

// WithMaxSliceLen sets the maximum number of slice elements per field.
// The default is DefaultMaxSliceLen (10,000). Set to 0 to disable the limit.
func WithMaxSliceLen(n int) Option {
	return func(o *Options) {
		o.maxSliceLen = n
	}
}

// WithCodecs replaces the body codec registry.
func WithCodecs(r *Registry) Option {
	return func(o *Options) {
		o.Codecs = r
	}
}

// defaultTimeLayouts are tried before any custom layout.
var defaultTimeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC1123,
	time.RFC1123Z,
}

// defaultOptions returns default binding options.
func defaultOptions() *Options {
	return &Options{
		SliceMode:   SliceRepeat,
		MaxBodySize: DefaultMaxBodySize,
		maxSliceLen: DefaultMaxSliceLen,
	}
}

// applyOptions applies options to default options.
func applyOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.Codecs == nil {
		o.Codecs = DefaultRegistry
	}
	return o
}
