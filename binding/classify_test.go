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

//go:build !integration

package binding

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/endpoint/diag"
)

type slug string

func (s *slug) ParseValue(raw string) error {
	if strings.ContainsAny(raw, " /") {
		return errors.New("invalid slug")
	}
	*s = slug(raw)
	return nil
}

type caller struct{ Name string }

func (c *caller) BindContext(_ context.Context, r *http.Request) error {
	c.Name = r.Header.Get("X-User")
	return nil
}

type markedPayload struct {
	Title string `json:"title"`
}

func (markedPayload) BindAsBody() {}

type markedBase struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (markedBase) BindAsBody() {}

type auditFields struct {
	TraceID string `header:"X-Trace-Id"`
}

type classifyRequest struct {
	auditFields
	ID      int           `path:"id"`
	Search  string        `query:"q"`
	Payload markedPayload // implicit body
	Slug    slug
	Caller  *caller
	Skipped string `bind:"-"`
	hidden  string
}

func TestClassify_Properties(t *testing.T) {
	t.Parallel()

	c, err := Classify(reflect.TypeFor[classifyRequest]())
	require.NoError(t, err)
	require.False(t, c.Diagnostics.HasErrors(), "diagnostics: %v", c.Diagnostics)

	names := make([]string, 0, len(c.Properties))
	for _, p := range c.Properties {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"TraceID", "ID", "Search", "Payload", "Slug", "Caller"}, names)

	tests := []struct {
		name      string
		index     int
		key       string
		source    Source
		custom    bool
		declaring reflect.Type
	}{
		{"embedded header", 0, "X-Trace-Id", SourceHeader, false, reflect.TypeFor[auditFields]()},
		{"route", 1, "id", SourceRoute, false, reflect.TypeFor[classifyRequest]()},
		{"query", 2, "q", SourceQuery, false, reflect.TypeFor[classifyRequest]()},
		{"marked body", 3, "Payload", SourceBody, false, reflect.TypeFor[classifyRequest]()},
		{"parser", 4, "Slug", SourceCustomParse, true, reflect.TypeFor[classifyRequest]()},
		{"context binder through pointer", 5, "Caller", SourceCustomParse, true, reflect.TypeFor[classifyRequest]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := c.Properties[tt.index]
			assert.Equal(t, tt.key, p.Key)
			assert.Equal(t, tt.source, p.Source())
			assert.Equal(t, tt.custom, p.HasCustomParse)
			assert.Equal(t, tt.declaring, p.DeclaringType)
		})
	}

	assert.Equal(t, []int{0, 0}, c.Properties[0].Index, "embedded fields keep their index path")
}

func TestClassify_UntaggedValues(t *testing.T) {
	t.Parallel()

	type filter struct {
		Status string `json:"status"`
	}
	type untagged struct {
		Filter filter
		Labels map[string]string
		IDs    []int
		Limit  int
	}

	c, err := Classify(reflect.TypeFor[untagged]())
	require.NoError(t, err)
	require.Len(t, c.Properties, 4)

	tests := []struct {
		name     string
		index    int
		source   Source
		implicit bool
	}{
		{"struct", 0, SourceBody, true},
		{"map", 1, SourceBody, true},
		{"scalar slice", 2, SourceUnannotated, false},
		{"scalar", 3, SourceUnannotated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := c.Properties[tt.index]
			assert.Equal(t, tt.source, p.Source())
			assert.Equal(t, tt.implicit, p.ImplicitBody)
		})
	}
}

func TestClassify_SkipAndComplex(t *testing.T) {
	t.Parallel()

	type request struct {
		Skipped string     `bind:"-"`
		Hidden  string     `json:"-"`
		Ratio   complex128 `query:"ratio"`
		Body    complex64  `body:"z"`
	}

	c, err := Classify(reflect.TypeFor[request]())
	require.NoError(t, err)

	var names []string
	for _, p := range c.Properties {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Hidden", "Ratio", "Body"}, names, "only bind:\"-\" skips a field")

	var codes []diag.Code
	for _, d := range c.Diagnostics {
		codes = append(codes, d.Code)
	}
	assert.Equal(t, []diag.Code{diag.UnresolvablePropertyType, diag.UnresolvablePropertyType}, codes,
		"complex numbers are unresolvable, not primitive body leaves")
}

func TestIsPrimitive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		typ  reflect.Type
		want bool
	}{
		{"string", reflect.TypeFor[string](), true},
		{"float", reflect.TypeFor[float32](), true},
		{"time", reflect.TypeFor[time.Time](), true},
		{"duration pointer", reflect.TypeFor[*time.Duration](), true},
		{"uuid", reflect.TypeFor[uuid.UUID](), true},
		{"ulid", reflect.TypeFor[ulid.ULID](), true},
		{"complex", reflect.TypeFor[complex128](), false},
		{"slice", reflect.TypeFor[[]int](), false},
		{"struct", reflect.TypeFor[struct{ A int }](), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsPrimitive(tt.typ))
		})
	}
}

func TestClassify_PointerAndNonStruct(t *testing.T) {
	t.Parallel()

	c, err := Classify(reflect.TypeFor[*classifyRequest]())
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[classifyRequest](), c.Type)

	_, err = Classify(reflect.TypeFor[int]())
	require.ErrorIs(t, err, ErrNotStruct)

	_, err = Classify(nil)
	require.ErrorIs(t, err, ErrNotStruct)
}

type bodyBaseRequest struct {
	markedBase
	Slug string `path:"slug"`
}

func TestClassify_BodyMarkedEmbeddedType(t *testing.T) {
	t.Parallel()

	c, err := Classify(reflect.TypeFor[bodyBaseRequest]())
	require.NoError(t, err)
	require.Len(t, c.Properties, 3)

	base := c.PropertiesDeclaredBy(reflect.TypeFor[markedBase]())
	require.Len(t, base, 2)
	for _, p := range base {
		assert.True(t, p.ImplicitBody, p.Name)
		assert.Equal(t, SourceBody, p.Source(), p.Name)
	}
	assert.Equal(t, "title", base[0].Key)
	assert.Equal(t, SourceRoute, c.Properties[2].Source())
}

func TestClassify_Diagnostics(t *testing.T) {
	t.Parallel()

	type conflicting struct {
		ID int `path:"id" query:"id"`
	}
	type customWithTag struct {
		Slug slug `path:"slug"`
	}
	type primitiveBody struct {
		ID   int    `path:"id"`
		Name string `body:"name"`
	}
	type ulidBody struct {
		ID  int       `path:"id"`
		Ref ulid.ULID `body:"ref"`
	}
	type unresolvable struct {
		Callback func() `query:"cb"`
		Events   chan int
	}
	type serviceFunc struct {
		Clock func() int64 `service:""`
	}
	type interfaceBody struct {
		Any any `body:""`
	}

	tests := []struct {
		name      string
		typ       reflect.Type
		wantCodes []diag.Code
		hasErrors bool
	}{
		{"conflicting source tags", reflect.TypeFor[conflicting](), []diag.Code{diag.ConflictingSourceTags}, true},
		{"custom parse with source tag", reflect.TypeFor[customWithTag](), []diag.Code{diag.CustomParseWithSourceTag}, true},
		{"primitive body leaf", reflect.TypeFor[primitiveBody](), []diag.Code{diag.BodyIsPrimitive}, false},
		{"ulid body leaf", reflect.TypeFor[ulidBody](), []diag.Code{diag.BodyIsPrimitive}, false},
		{"unresolvable types", reflect.TypeFor[unresolvable](), []diag.Code{diag.UnresolvablePropertyType, diag.UnresolvablePropertyType}, true},
		{"service func is resolvable", reflect.TypeFor[serviceFunc](), nil, false},
		{"interface body is resolvable", reflect.TypeFor[interfaceBody](), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := Classify(tt.typ)
			require.NoError(t, err)

			var codes []diag.Code
			for _, d := range c.Diagnostics {
				codes = append(codes, d.Code)
			}
			assert.Equal(t, tt.wantCodes, codes)
			assert.Equal(t, tt.hasErrors, c.Diagnostics.HasErrors())
		})
	}
}

func TestClassify_KeyResolution(t *testing.T) {
	t.Parallel()

	type keys struct {
		Explicit string `query:"explicit_name" json:"ignored"`
		JSONName string `query:"" json:"json_name,omitempty"`
		Plain    string `header:""`
	}

	c, err := Classify(reflect.TypeFor[keys]())
	require.NoError(t, err)
	require.Len(t, c.Properties, 3)

	assert.Equal(t, "explicit_name", c.Properties[0].Key)
	assert.Equal(t, "json_name", c.Properties[1].Key)
	assert.Equal(t, "Plain", c.Properties[2].Key)
}

func TestClassify_Cached(t *testing.T) {
	t.Parallel()

	type cachedRequest struct {
		ID int `path:"id"`
	}

	typ := reflect.TypeFor[cachedRequest]()
	first, err := Classify(typ)
	require.NoError(t, err)
	second, err := Classify(typ)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Positive(t, cacheLen())
}

func TestWarmupCache(t *testing.T) {
	t.Parallel()

	type warmRequest struct {
		Q string `query:"q"`
	}

	WarmupCache(warmRequest{}, 42, nil)
	c, err := Classify(reflect.TypeFor[warmRequest]())
	require.NoError(t, err)
	assert.Len(t, c.Properties, 1)

	assert.Panics(t, func() { MustWarmupCache("not a struct") })
}
