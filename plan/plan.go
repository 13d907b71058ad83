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

package plan

import (
	"fmt"
	"reflect"
	"strings"

	"rivaas.dev/endpoint/binding"
	"rivaas.dev/endpoint/diag"
)

// Shape is the strategy used to assemble a request value from call inputs.
type Shape int

const (
	// ShapeEmpty is a request without properties; it is always the zero value.
	ShapeEmpty Shape = iota

	// ShapeFlatParameters binds every property as its own parameter.
	ShapeFlatParameters

	// ShapeSingleParameterObject passes the whole request as one parameter.
	ShapeSingleParameterObject

	// ShapeSplitWithAuxiliaryBody binds non-body properties individually and
	// groups the body-bound properties into one auxiliary body object.
	ShapeSplitWithAuxiliaryBody
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeEmpty:
		return "Empty"
	case ShapeFlatParameters:
		return "FlatParameters"
	case ShapeSingleParameterObject:
		return "SingleParameterObject"
	case ShapeSplitWithAuxiliaryBody:
		return "SplitWithAuxiliaryBody"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Mode is how a [ShapeSingleParameterObject] request is bound.
type Mode int

const (
	// ModeNone is used by every other shape.
	ModeNone Mode = iota

	// ModeAsParameters binds each property of the object from its own source.
	ModeAsParameters

	// ModeFromBody decodes the whole object from the request body.
	ModeFromBody
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeAsParameters:
		return "AsParameters"
	case ModeFromBody:
		return "FromBody"
	default:
		return "None"
	}
}

// Kind is the structural kind of a request type.
type Kind int

const (
	// KindRecord is a request declared as a struct value.
	KindRecord Kind = iota

	// KindReference is a request declared as a pointer to struct.
	KindReference
)

// String returns the kind name.
func (k Kind) String() string {
	if k == KindReference {
		return "reference"
	}
	return "record"
}

// KindOf returns the structural kind of a declared request type.
func KindOf(t reflect.Type) Kind {
	if t.Kind() == reflect.Pointer {
		return KindReference
	}
	return KindRecord
}

// SlotKind is how a slot value is produced from a request.
type SlotKind int

const (
	// SlotProperty resolves one property from its own source.
	SlotProperty SlotKind = iota

	// SlotBody decodes the request body into the slot type.
	SlotBody

	// SlotObject builds the request object, binding its properties individually.
	SlotObject
)

// Slot is one call-site parameter of a plan.
type Slot struct {
	Position   int            // Index in positional captures
	Name       string         // Key in named captures
	Kind       SlotKind       // How the value is produced
	Type       reflect.Type   // Value type
	Source     binding.Source // Binding source of the value
	Key        string         // Lookup key for SlotProperty slots
	Properties []int          // Indices into Plan.Properties carried by the slot
}

// AuxField maps one auxiliary body field to a request property.
type AuxField struct {
	Property int   // Index into Plan.Properties
	Index    []int // Field index path inside the auxiliary type
}

// AuxBody is the object grouping the body-bound properties of a request.
type AuxBody struct {
	Name   string       // <Request>Body when synthesized, the reused type name otherwise
	Type   reflect.Type // Struct type decoded from the body
	Reused bool         // Type is an existing embedded type of the request
	Embed  []int        // Index path of the reused embedded field in the request
	Fields []AuxField
}

// Plan is the immutable assembly plan of one request type for one verb and route.
// It is safe for concurrent use.
type Plan struct {
	Name        string       // Request type name
	Request     reflect.Type // Declared request type (struct or pointer to struct)
	Struct      reflect.Type // Underlying struct type
	Verb        string
	Route       string
	RouteParams []string
	Kind        Kind
	Shape       Shape
	Mode        Mode
	Properties  []binding.Property
	Slots       []Slot
	Aux         *AuxBody
	Diagnostics diag.Report // Warnings reported while planning

	slotOf []int // Property index -> slot index
}

// SlotOf returns the slot carrying property i.
func (p *Plan) SlotOf(i int) Slot {
	return p.Slots[p.slotOf[i]]
}

// String summarizes the plan.
func (p *Plan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s: %s", p.Name, p.Verb, p.Route, p.Shape)
	if p.Mode != ModeNone {
		fmt.Fprintf(&b, "(%s)", p.Mode)
	}
	names := make([]string, 0, len(p.Slots))
	for _, s := range p.Slots {
		names = append(names, s.Name)
	}
	fmt.Fprintf(&b, " [%s]", strings.Join(names, ", "))
	return b.String()
}
