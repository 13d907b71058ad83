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
	"fmt"
	"reflect"
	"strings"

	"rivaas.dev/endpoint/diag"
)

// TagSkip excludes a field from classification when set to "-".
const TagSkip = "bind"

// maxEmbedDepth bounds the embedded-struct walk.
const maxEmbedDepth = 32

// Classify inspects a request struct type and returns its classified properties
// together with the diagnostics found on them.
//
// The walk covers the struct and every embedded struct, embedded fields
// expanded in place so the property order follows the declaration order.
// Only exported fields are collected.
//
// Classify returns [ErrNotStruct] when t is not a struct or pointer to struct.
// Results are cached per type; the returned value must not be modified.
//
// Example:
//
//	type UpdateRequest struct {
//	    ID     int           `path:"id"`
//	    Values UpdateValues  `body:""`
//	}
//
//	c, err := binding.Classify(reflect.TypeFor[UpdateRequest]())
func Classify(t reflect.Type) (*Classification, error) {
	if t == nil {
		return nil, ErrNotStruct
	}
	t = unwrapNullable(t)
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, t)
	}
	return getClassification(t), nil
}

// classify performs the uncached walk.
func classify(t reflect.Type) *Classification {
	c := &Classification{Type: t}
	w := walker{root: t, out: c, visited: map[reflect.Type]bool{t: true}}
	w.walk(t, nil, false, 0)
	return c
}

type walker struct {
	root    reflect.Type
	out     *Classification
	visited map[reflect.Type]bool
}

func (w *walker) walk(t reflect.Type, prefix []int, bodyDeclaring bool, depth int) {
	if depth > maxEmbedDepth {
		return
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if f.Tag.Get(TagSkip) == "-" {
			continue
		}

		index := make([]int, len(prefix)+1)
		copy(index, prefix)
		index[len(prefix)] = i

		if f.Anonymous && !hasSourceTag(f.Tag) {
			et := f.Type
			isPtr := et.Kind() == reflect.Pointer
			if isPtr {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct {
				// Unexported embedded pointers cannot be allocated through reflection.
				if isPtr && !f.IsExported() {
					continue
				}
				if w.visited[et] {
					continue
				}
				w.visited[et] = true
				w.walk(et, index, IsBodyMarked(et), depth+1)
				continue
			}
		}

		if !f.IsExported() {
			continue
		}

		w.out.Properties = append(w.out.Properties, w.property(t, f, index, bodyDeclaring))
	}
}

func (w *walker) property(declaring reflect.Type, f reflect.StructField, index []int, bodyDeclaring bool) Property {
	p := Property{
		DeclaringType:  declaring,
		ValueType:      f.Type,
		Name:           f.Name,
		Index:          index,
		HasCustomParse: HasCustomParse(f.Type),
		Tag:            f.Tag,
	}

	var explicitKey string
	for _, tag := range sourceTags {
		v, ok := f.Tag.Lookup(tag)
		if !ok {
			continue
		}
		p.Sources = append(p.Sources, sourceFromTag(tag))
		if explicitKey == "" {
			explicitKey = tagName(v)
		}
	}
	p.Key = keyFor(f, explicitKey)

	// An untagged value that cannot be read from a raw string can only come
	// from the body.
	if len(p.Sources) == 0 && !p.HasCustomParse {
		p.ImplicitBody = IsBodyMarked(f.Type) || bodyDeclaring || !isScalar(f.Type)
	}

	w.check(p)
	return p
}

// check reports the diagnostics attached to a single property.
func (w *walker) check(p Property) {
	typeName := TypeName(w.root)

	if len(p.Sources) > 1 {
		names := make([]string, 0, len(p.Sources))
		for _, s := range p.Sources {
			names = append(names, s.String())
		}
		w.out.Diagnostics.Add(diag.New(diag.ConflictingSourceTags, diag.SeverityError, typeName, p.Name,
			"%s property in %s endpoint request has conflicting source tags [%s], use at most one",
			p.Name, typeName, strings.Join(names, ", ")))
	}

	if p.HasCustomParse && len(p.Sources) > 0 {
		w.out.Diagnostics.Add(diag.New(diag.CustomParseWithSourceTag, diag.SeverityError, typeName, p.Name,
			"%s property of %s type in %s endpoint request with ParseValue or BindContext should not have source tags",
			p.Name, TypeName(p.ValueType), typeName))
	}

	if !resolvable(p) {
		w.out.Diagnostics.Add(diag.New(diag.UnresolvablePropertyType, diag.SeverityError, typeName, p.Name,
			"%s property of %s type in %s endpoint request cannot be produced from request inputs",
			p.Name, p.ValueType, typeName))
	}

	// Members of a body-marked declaring type are grouped into that type,
	// so only standalone body leaves are reported.
	standalone := p.HasExplicitBody() || (p.ImplicitBody && IsBodyMarked(p.ValueType))
	if p.IsBody() && standalone && IsPrimitive(p.ValueType) {
		w.out.Diagnostics.Add(diag.New(diag.BodyIsPrimitive, diag.SeverityWarning, typeName, p.Name,
			"%s type in %s endpoint request has a primitive as body, use a struct parameter instead",
			TypeName(p.ValueType), typeName))
	}
}

// resolvable reports whether some source can produce a value of the property's type.
func resolvable(p Property) bool {
	src := p.Source()
	if src == SourceService || src == SourceCustomParse {
		return true
	}
	switch unwrapNullable(p.ValueType).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Interface:
		return src == SourceBody
	default:
		return true
	}
}

func hasSourceTag(tag reflect.StructTag) bool {
	for _, name := range sourceTags {
		if _, ok := tag.Lookup(name); ok {
			return true
		}
	}
	return false
}

// tagName returns the name part of a tag value ("user_id,omitempty" -> "user_id").
func tagName(v string) string {
	if idx := strings.Index(v, ","); idx != -1 {
		v = v[:idx]
	}
	return strings.TrimSpace(v)
}

// keyFor picks the lookup key: explicit tag name, then json name, then field name.
func keyFor(f reflect.StructField, explicit string) string {
	if explicit != "" && explicit != "-" {
		return explicit
	}
	if name := tagName(f.Tag.Get("json")); name != "" && name != "-" {
		return name
	}
	return f.Name
}
