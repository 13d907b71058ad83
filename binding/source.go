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
	"net/http"
	"net/url"
	"strings"
)

// Tag name constants for struct tags that select a binding source.
const (
	TagBody    = "body"    // Request body (JSON by default)
	TagForm    = "form"    // Form data
	TagHeader  = "header"  // HTTP header
	TagQuery   = "query"   // Query parameter
	TagRoute   = "path"    // Route template parameter
	TagService = "service" // Service resolved from the application's provider
)

// sourceTags lists the source tags in the order they are inspected.
// The order is part of the classification output and must stay stable.
var sourceTags = []string{TagBody, TagForm, TagHeader, TagQuery, TagRoute, TagService}

// Source represents where a property's value comes from.
type Source int

const (
	// SourceUnannotated is a property without any source tag.
	SourceUnannotated Source = iota

	// SourceBody represents the request body.
	SourceBody

	// SourceForm represents form data.
	SourceForm

	// SourceHeader represents HTTP headers.
	SourceHeader

	// SourceQuery represents URL query parameters.
	SourceQuery

	// SourceRoute represents route template parameters.
	SourceRoute

	// SourceService represents a value injected from the service provider.
	SourceService

	// SourceCustomParse represents a value type that parses or binds itself.
	SourceCustomParse
)

// String returns the string representation of the source.
func (s Source) String() string {
	switch s {
	case SourceBody:
		return "body"
	case SourceForm:
		return "form"
	case SourceHeader:
		return "header"
	case SourceQuery:
		return "query"
	case SourceRoute:
		return "route"
	case SourceService:
		return "service"
	case SourceCustomParse:
		return "custom"
	default:
		return "unannotated"
	}
}

// IsValueExtraction reports whether the source reads a raw value out of the
// request (form, header, query or route).
func (s Source) IsValueExtraction() bool {
	switch s {
	case SourceForm, SourceHeader, SourceQuery, SourceRoute:
		return true
	default:
		return false
	}
}

// sourceFromTag converts a tag name to its Source.
func sourceFromTag(tag string) Source {
	switch tag {
	case TagBody:
		return SourceBody
	case TagForm:
		return SourceForm
	case TagHeader:
		return SourceHeader
	case TagQuery:
		return SourceQuery
	case TagRoute:
		return SourceRoute
	case TagService:
		return SourceService
	default:
		return SourceUnannotated
	}
}

// ValueGetter abstracts the raw key/value inputs of a request.
//
// Implementers must distinguish between "key present with empty value" and
// "key not present": Has returns true for "?name=" and false when name is
// absent altogether.
type ValueGetter interface {
	// Get returns the first value for the given key, or an empty string if not present.
	Get(key string) string

	// GetAll returns all values for the given key, or nil if not present.
	GetAll(key string) []string

	// Has returns true if the key is present, even if its value is empty.
	Has(key string) bool
}

// GetterFunc is a function adapter that implements [ValueGetter].
//
// Example:
//
//	getter := binding.GetterFunc(func(key string) ([]string, bool) {
//	    v, ok := claims[key]
//	    return []string{v}, ok
//	})
type GetterFunc func(key string) (values []string, has bool)

// Get returns the first value for the key.
func (f GetterFunc) Get(key string) string {
	values, has := f(key)
	if has && len(values) > 0 {
		return values[0]
	}
	return ""
}

// GetAll returns all values for the key.
func (f GetterFunc) GetAll(key string) []string {
	values, _ := f(key)
	return values
}

// Has returns whether the key exists.
func (f GetterFunc) Has(key string) bool {
	_, has := f(key)
	return has
}

// QueryGetter implements [ValueGetter] for URL query parameters.
type QueryGetter struct {
	values url.Values
}

// NewQueryGetter creates a [QueryGetter] from url.Values.
func NewQueryGetter(v url.Values) *QueryGetter {
	return &QueryGetter{values: v}
}

// Get returns the first value for the key.
func (q *QueryGetter) Get(key string) string {
	if vals := q.GetAll(key); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// GetAll returns all values for the key.
// It supports both repeated keys ("ids=1&ids=2") and bracket notation
// ("ids[]=1&ids[]=2").
func (q *QueryGetter) GetAll(key string) []string {
	if vals := q.values[key]; len(vals) > 0 {
		return vals
	}
	return q.values[key+"[]"]
}

// Has returns whether the key exists.
func (q *QueryGetter) Has(key string) bool {
	return q.values.Has(key) || q.values.Has(key+"[]")
}

// RouteGetter implements [ValueGetter] for route template parameters.
type RouteGetter struct {
	params map[string]string
}

// NewRouteGetter creates a [RouteGetter] from a map of route parameters.
//
// Example:
//
//	getter := binding.NewRouteGetter(map[string]string{"id": "123"})
func NewRouteGetter(p map[string]string) *RouteGetter {
	return &RouteGetter{params: p}
}

// Get returns the value for the key. Keys match case-insensitively because
// route templates such as "/update/{Id}" are commonly written with the
// field's own casing.
func (p *RouteGetter) Get(key string) string {
	v, _ := p.lookup(key)
	return v
}

// GetAll returns the single value for the key as a slice.
func (p *RouteGetter) GetAll(key string) []string {
	if v, ok := p.lookup(key); ok {
		return []string{v}
	}
	return nil
}

// Has returns whether the key exists.
func (p *RouteGetter) Has(key string) bool {
	_, ok := p.lookup(key)
	return ok
}

func (p *RouteGetter) lookup(key string) (string, bool) {
	if v, ok := p.params[key]; ok {
		return v, true
	}
	for k, v := range p.params {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// FormGetter implements [ValueGetter] for form data.
type FormGetter struct {
	values url.Values
}

// NewFormGetter creates a [FormGetter] from url.Values.
func NewFormGetter(v url.Values) *FormGetter {
	return &FormGetter{values: v}
}

// Get returns the first value for the key.
func (f *FormGetter) Get(key string) string {
	return f.values.Get(key)
}

// GetAll returns all values for the key, including bracket notation.
func (f *FormGetter) GetAll(key string) []string {
	if vals := f.values[key]; len(vals) > 0 {
		return vals
	}
	return f.values[key+"[]"]
}

// Has returns whether the key exists.
func (f *FormGetter) Has(key string) bool {
	return f.values.Has(key) || f.values.Has(key+"[]")
}

// HeaderGetter implements [ValueGetter] for HTTP headers.
// Keys are canonicalized with [http.CanonicalHeaderKey].
type HeaderGetter struct {
	header http.Header
}

// NewHeaderGetter creates a [HeaderGetter] from http.Header.
func NewHeaderGetter(h http.Header) *HeaderGetter {
	return &HeaderGetter{header: h}
}

// Get returns the first value for the header.
func (h *HeaderGetter) Get(key string) string {
	return h.header.Get(key)
}

// GetAll returns all values for the header.
func (h *HeaderGetter) GetAll(key string) []string {
	return h.header.Values(key)
}

// Has returns whether the header exists.
func (h *HeaderGetter) Has(key string) bool {
	_, ok := h.header[http.CanonicalHeaderKey(key)]
	return ok
}
