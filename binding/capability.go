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
	"context"
	"net/http"
	"reflect"
)

// Parser is implemented by value types that parse themselves from a single
// raw string. The raw value is read from the route parameter of the same
// name when the route template declares one, otherwise from the query string.
//
// Implement it on the pointer receiver:
//
//	type Slug string
//
//	func (s *Slug) ParseValue(raw string) error {
//	    if !slugPattern.MatchString(raw) {
//	        return errors.New("invalid slug")
//	    }
//	    *s = Slug(raw)
//	    return nil
//	}
type Parser interface {
	ParseValue(raw string) error
}

// ContextBinder is implemented by value types that bind themselves from the
// whole request, for example a claim extracted from an authenticated caller.
//
//	type UserName struct{ Value string }
//
//	func (u *UserName) BindContext(ctx context.Context, r *http.Request) error {
//	    u.Value = r.Header.Get("X-User")
//	    return nil
//	}
type ContextBinder interface {
	BindContext(ctx context.Context, r *http.Request) error
}

// BodyMarker marks a type as body content. A property whose value type
// implements it is bound from the body without an explicit tag, and an
// embedded struct implementing it makes all its untagged fields body-bound.
//
//	type Payload struct{ ID int; Name string }
//
//	func (Payload) BindAsBody() {}
type BodyMarker interface {
	BindAsBody()
}

// unwrapNullable strips one pointer level, the Go form of a nullable value.
func unwrapNullable(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

// IsParser reports whether values of t parse themselves from a string.
func IsParser(t reflect.Type) bool {
	base := unwrapNullable(t)
	return reflect.PointerTo(base).Implements(parserType)
}

// IsContextBinder reports whether values of t bind themselves from the request.
func IsContextBinder(t reflect.Type) bool {
	base := unwrapNullable(t)
	return reflect.PointerTo(base).Implements(contextBinderType)
}

// HasCustomParse reports whether t (unwrapped through a pointer) declares a
// custom parse capability: [Parser] or [ContextBinder].
func HasCustomParse(t reflect.Type) bool {
	return IsParser(t) || IsContextBinder(t)
}

// IsBodyMarked reports whether t (unwrapped through a pointer) implements [BodyMarker].
func IsBodyMarked(t reflect.Type) bool {
	base := unwrapNullable(t)
	return base.Implements(bodyMarkerType) || reflect.PointerTo(base).Implements(bodyMarkerType)
}

// IsPrimitive reports whether t (unwrapped through a pointer) is a primitive
// or identifier-like scalar: booleans, numbers, strings, time.Time,
// time.Duration, uuid.UUID and ulid.ULID.
func IsPrimitive(t reflect.Type) bool {
	base := unwrapNullable(t)
	switch base {
	case timeType, durationType, uuidType, ulidType:
		return true
	}
	switch base.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
