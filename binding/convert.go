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
	"encoding"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ParseString converts a raw string to a value of type t using the default
// conversion rules: Parser implementations, time.Time, time.Duration,
// uuid.UUID, ulid.ULID, url.URL, net.IP, encoding.TextUnmarshaler and all primitive
// kinds. A pointer type yields a pointer to the parsed value.
//
// Example:
//
//	v, err := binding.ParseString("42", reflect.TypeFor[int]())
//	// v == 42
func ParseString(raw string, t reflect.Type) (any, error) {
	v, err := parseValue(raw, t, defaultOptions())
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// parseValue converts one raw string to a value of type t.
// Pointer types are allocated; an empty raw value leaves them nil.
func parseValue(raw string, t reflect.Type, opts *Options) (reflect.Value, error) {
	if t.Kind() == reflect.Pointer {
		if raw == "" {
			return reflect.Zero(t), nil
		}
		ptr := reflect.New(t.Elem())
		if err := setFieldValue(ptr.Elem(), raw, opts); err != nil {
			return reflect.Value{}, err
		}
		return ptr, nil
	}

	v := reflect.New(t).Elem()
	if err := setFieldValue(v, raw, opts); err != nil {
		return reflect.Value{}, err
	}
	return v, nil
}

// parseValues converts raw values to type t. Slices (other than []byte)
// take every value; any other type takes the first.
func parseValues(values []string, t reflect.Type, opts *Options) (reflect.Value, error) {
	if t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8 && !IsParser(t) {
		slice := reflect.New(t).Elem()
		if err := setSliceField(slice, values, opts); err != nil {
			return reflect.Value{}, err
		}
		return slice, nil
	}

	var raw string
	if len(values) > 0 {
		raw = values[0]
	}
	return parseValue(raw, t, opts)
}

// setFieldValue sets the actual field value with type conversion.
// It checks custom converters first, then Parser implementations, special
// types, the TextUnmarshaler interface, and finally primitive kinds.
func setFieldValue(field reflect.Value, value string, opts *Options) error {
	fieldType := field.Type()

	// Priority 0: Custom type converters
	if converter := findConverter(fieldType, opts); converter != nil {
		converted, err := converter(value)
		if err != nil {
			return err
		}
		cv := reflect.ValueOf(converted)
		if !cv.IsValid() || !cv.Type().AssignableTo(fieldType) {
			return fmt.Errorf("%w: converter returned %T for %v", ErrUnsupportedType, converted, fieldType)
		}
		field.Set(cv)
		return nil
	}

	// Priority 1: the value type parses itself
	if field.CanAddr() && field.Addr().Type().Implements(parserType) {
		p, ok := field.Addr().Interface().(Parser)
		if !ok {
			return fmt.Errorf("%w: failed to assert Parser", ErrUnsupportedType)
		}
		return p.ParseValue(value)
	}

	// Priority 2: special types, handled before TextUnmarshaler so that
	// time.Time accepts more than RFC3339
	switch fieldType {
	case timeType:
		t, err := parseTime(value, opts)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(t))
		return nil

	case durationType:
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.Set(reflect.ValueOf(d))
		return nil

	case uuidType:
		id, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid UUID: %w", err)
		}
		field.Set(reflect.ValueOf(id))
		return nil

	case ulidType:
		id, err := ulid.ParseStrict(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid ULID: %w", err)
		}
		field.Set(reflect.ValueOf(id))
		return nil

	case urlType:
		u, err := url.Parse(value)
		if err != nil {
			return fmt.Errorf("invalid URL: %w", err)
		}
		field.Set(reflect.ValueOf(*u))
		return nil

	case ipType:
		ip := net.ParseIP(value)
		if ip == nil {
			return fmt.Errorf("%w: %s", ErrInvalidIPAddress, value)
		}
		field.Set(reflect.ValueOf(ip))
		return nil

	case ipNetType:
		_, ipnet, err := net.ParseCIDR(value)
		if err != nil {
			return fmt.Errorf("invalid CIDR notation: %w", err)
		}
		field.Set(reflect.ValueOf(*ipnet))
		return nil

	case regexpType:
		re, err := regexp.Compile(value)
		if err != nil {
			return fmt.Errorf("invalid regular expression: %w", err)
		}
		field.Set(reflect.ValueOf(*re))
		return nil
	}

	// Priority 3: encoding.TextUnmarshaler
	if field.CanAddr() && field.Addr().Type().Implements(textUnmarshalerType) {
		unmarshaler, ok := field.Addr().Interface().(encoding.TextUnmarshaler)
		if !ok {
			return fmt.Errorf("%w: failed to assert TextUnmarshaler", ErrUnsupportedType)
		}
		return unmarshaler.UnmarshalText([]byte(value))
	}

	// Priority 4: primitive kinds
	switch fieldType.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(strings.TrimSpace(value), intBase(opts), fieldType.Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(strings.TrimSpace(value), intBase(opts), fieldType.Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %w", err)
		}
		field.SetUint(u)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), fieldType.Bits())
		if err != nil {
			return fmt.Errorf("invalid float: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := parseBoolGenerous(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		if fieldType.Elem().Kind() == reflect.Uint8 {
			field.SetBytes([]byte(value))
			return nil
		}
		return setSliceField(field, []string{value}, opts)

	case reflect.Interface:
		if fieldType.NumMethod() != 0 {
			return fmt.Errorf("%w: %v", ErrUnsupportedType, fieldType)
		}
		field.Set(reflect.ValueOf(value))

	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedType, fieldType)
	}

	return nil
}

func intBase(opts *Options) int {
	if opts.IntBaseAuto {
		return 0 // Auto-detect: 0x=hex, 0=octal, 0b=binary
	}
	return 10
}

// setSliceField sets a slice field from multiple string values.
// It handles CSV mode (comma-separated values) and enforces maximum slice length limits.
func setSliceField(field reflect.Value, values []string, opts *Options) error {
	if len(values) == 0 {
		return nil
	}

	if opts.SliceMode == SliceCSV && len(values) == 1 {
		split := strings.Split(values[0], ",")
		for i := range split {
			split[i] = strings.TrimSpace(split[i])
		}
		values = split
	}

	if opts.maxSliceLen > 0 && len(values) > opts.maxSliceLen {
		return fmt.Errorf("%w: %d > %d (use WithMaxSliceLen to increase)",
			ErrSliceExceedsMaxLength, len(values), opts.maxSliceLen)
	}

	slice := reflect.MakeSlice(field.Type(), len(values), len(values))
	for i, val := range values {
		elem := slice.Index(i)
		if elem.Kind() == reflect.Pointer {
			v, err := parseValue(val, elem.Type(), opts)
			if err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
			elem.Set(v)
			continue
		}
		if err := setFieldValue(elem, val, opts); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}

	field.Set(slice)
	return nil
}

// parseBoolGenerous parses various boolean string representations.
// It supports: true/false, 1/0, yes/no, on/off, t/f, y/n (case-insensitive).
func parseBoolGenerous(s string) (bool, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch lower {
	case "true", "1", "yes", "on", "t", "y":
		return true, nil
	case "false", "0", "no", "off", "f", "n", "":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidBooleanValue, s)
	}
}

// parseTime attempts to parse a time string using multiple formats.
// It tries the default layouts first, then custom layouts from options.
func parseTime(value string, opts *Options) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrEmptyTimeValue
	}

	for _, layout := range defaultTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range opts.TimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w %q (tried RFC3339, date-only, and other common formats)", ErrUnableToParseTime, value)
}

// findConverter locates a registered converter for the given type.
// It checks direct matches and then interface implementations.
func findConverter(fieldType reflect.Type, opts *Options) TypeConverter {
	if opts.TypeConverters == nil {
		return nil
	}

	if conv, ok := opts.TypeConverters[fieldType]; ok {
		return conv
	}

	for regType, conv := range opts.TypeConverters {
		if regType.Kind() != reflect.Interface {
			continue
		}
		if fieldType.Implements(regType) || reflect.PointerTo(fieldType).Implements(regType) {
			return conv
		}
	}

	return nil
}
