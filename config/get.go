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

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Value returns the raw loaded value at key, or nil when the key is absent.
// Keys are dot-separated and lowercase, as produced by every source:
//
//	cfg.Value("stages.timeout.timeout")
func (c *Config) Value(key string) any {
	if c == nil || c.k == nil {
		return nil
	}
	return c.k.Get(strings.ToLower(key))
}

// Keys returns every loaded leaf key, sorted.
func (c *Config) Keys() []string {
	if c == nil || c.k == nil {
		return nil
	}
	return c.k.Keys()
}

// Get returns the value at key as type T, or the zero value of T when the
// key is absent or cannot be converted. Endpoints use it for settings of
// their own that the typed [Config] does not declare.
//
// Example:
//
//	limit := config.Get[int](cfg, "orders.page_limit")
func Get[T any](c *Config, key string) T {
	v, _ := GetE[T](c, key)
	return v
}

// GetOr is like [Get] but returns defaultVal when the key is absent or
// cannot be converted.
//
//	ttl := config.GetOr(cfg, "orders.cache_ttl", 30*time.Second)
func GetOr[T any](c *Config, key string, defaultVal T) T {
	v, err := GetE[T](c, key)
	if err != nil {
		return defaultVal
	}
	return v
}

// GetE returns the value at key as type T, with an error when the key is
// absent or its value cannot be converted.
func GetE[T any](c *Config, key string) (T, error) {
	var zero T
	val := c.Value(key)
	if val == nil {
		return zero, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}

	if result, ok := val.(T); ok {
		return result, nil
	}

	result, err := convertTo[T](val)
	if err != nil {
		return zero, fmt.Errorf("cannot convert value at key %q to %T: %w", key, zero, err)
	}
	return result, nil
}

// convertTo converts common scalar, slice and map types through cast.
func convertTo[T any](val any) (T, error) {
	var zero T
	var (
		result any
		err    error
	)

	switch any(zero).(type) {
	case string:
		result, err = cast.ToStringE(val)
	case int:
		result, err = cast.ToIntE(val)
	case int64:
		result, err = cast.ToInt64E(val)
	case int32:
		result, err = cast.ToInt32E(val)
	case uint:
		result, err = cast.ToUintE(val)
	case uint64:
		result, err = cast.ToUint64E(val)
	case float64:
		result, err = cast.ToFloat64E(val)
	case bool:
		result, err = cast.ToBoolE(val)
	case []string:
		result, err = cast.ToStringSliceE(val)
	case []int:
		result, err = cast.ToIntSliceE(val)
	case map[string]any:
		result, err = cast.ToStringMapE(val)
	case map[string]string:
		result, err = cast.ToStringMapStringE(val)
	case time.Duration:
		result, err = cast.ToDurationE(val)
	case time.Time:
		result, err = cast.ToTimeE(val)
	default:
		return zero, fmt.Errorf("%w: %T", ErrUnknownValue, zero)
	}
	if err != nil {
		return zero, err
	}

	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T", ErrUnknownValue, result)
	}
	return typed, nil
}
