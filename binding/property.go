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
	"slices"

	"rivaas.dev/endpoint/diag"
)

// Property is a classified request field.
type Property struct {
	DeclaringType  reflect.Type      // Struct type that declares the field (embedded types declare their promoted fields)
	ValueType      reflect.Type      // Field type
	Name           string            // Go field name
	Key            string            // Lookup key (route/query/form/header name, or JSON name inside a body object)
	Index          []int             // Field index path from the request type
	Sources        []Source          // Source tags present, in tag inspection order
	HasCustomParse bool              // Value type implements Parser or ContextBinder
	ImplicitBody   bool              // Body-bound without an explicit tag: BodyMarker, or a value no raw string can produce
	Tag            reflect.StructTag // Raw struct tag
}

// Source returns the single effective source of the property.
// An explicit tag wins; otherwise implicit body, then a custom parse
// capability; everything else (scalars) is unannotated.
func (p Property) Source() Source {
	if len(p.Sources) > 0 {
		return p.Sources[0]
	}
	if p.ImplicitBody {
		return SourceBody
	}
	if p.HasCustomParse {
		return SourceCustomParse
	}
	return SourceUnannotated
}

// IsBody reports whether the property is bound from the body.
func (p Property) IsBody() bool {
	return p.Source() == SourceBody
}

// HasExplicitTag reports whether any source tag is present.
func (p Property) HasExplicitTag() bool {
	return len(p.Sources) > 0
}

// HasExplicitNonBody reports whether a source tag other than body is present.
func (p Property) HasExplicitNonBody() bool {
	return slices.ContainsFunc(p.Sources, func(s Source) bool { return s != SourceBody })
}

// HasExplicitBody reports whether the body tag is present.
func (p Property) HasExplicitBody() bool {
	return slices.Contains(p.Sources, SourceBody)
}

// WithoutTags returns a copy of p with its source tags dropped.
// It is used when a custom parse capability takes precedence over a tag.
func (p Property) WithoutTags() Property {
	p.Sources = nil
	return p
}

// Classification is the classifier output for one request type.
// It is immutable once returned and shared through the classification cache.
type Classification struct {
	Type        reflect.Type
	Properties  []Property
	Diagnostics diag.Report
}

// TypeName returns the diagnostic name of the classified type.
func (c *Classification) TypeName() string {
	return TypeName(c.Type)
}

// PropertiesDeclaredBy returns the properties whose declaring type is t.
func (c *Classification) PropertiesDeclaredBy(t reflect.Type) []Property {
	var out []Property
	for _, p := range c.Properties {
		if p.DeclaringType == t {
			out = append(out, p)
		}
	}
	return out
}

// TypeName returns the name used for t in diagnostics and synthesized types.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	t = unwrapNullable(t)
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
