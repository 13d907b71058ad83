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
	"unicode"

	"rivaas.dev/endpoint/binding"
	"rivaas.dev/endpoint/diag"
)

// RecordPolicy decides how record-kind requests are shaped.
type RecordPolicy int

const (
	// RecordAsParameters always binds record-kind requests as a single
	// parameter object, regardless of verb. Explicit body tags on such
	// requests are reported as warnings.
	RecordAsParameters RecordPolicy = iota

	// RecordByVerb shapes record-kind requests like reference-kind ones.
	RecordByVerb
)

// String returns the policy name.
func (r RecordPolicy) String() string {
	if r == RecordByVerb {
		return "verb"
	}
	return "parameters"
}

// ParseRecordPolicy parses a policy name as produced by [RecordPolicy.String].
// The empty name selects [RecordAsParameters].
func ParseRecordPolicy(name string) (RecordPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "parameters":
		return RecordAsParameters, nil
	case "verb":
		return RecordByVerb, nil
	default:
		return 0, fmt.Errorf("unknown record policy %q", name)
	}
}

// Option configures a [Planner].
type Option func(*Planner)

// WithLenientCustomParse downgrades a custom parse capability combined with
// a source tag from an error to a warning. The capability wins and the tag
// is ignored.
func WithLenientCustomParse(enabled bool) Option {
	return func(p *Planner) {
		p.lenientCustomParse = enabled
	}
}

// WithStrictPrimitiveBody turns primitive body leaves into configuration errors.
func WithStrictPrimitiveBody(enabled bool) Option {
	return func(p *Planner) {
		p.strictPrimitiveBody = enabled
	}
}

// WithRecordPolicy sets how record-kind requests are shaped.
func WithRecordPolicy(policy RecordPolicy) Option {
	return func(p *Planner) {
		p.recordPolicy = policy
	}
}

// WithConcurrency limits the number of request types planned at once by
// [Planner.PlanBatch]. Zero or less means no limit.
func WithConcurrency(n int) Option {
	return func(p *Planner) {
		p.concurrency = n
	}
}

// Planner computes assembly plans. A Planner is immutable and safe for
// concurrent use.
type Planner struct {
	lenientCustomParse  bool
	strictPrimitiveBody bool
	recordPolicy        RecordPolicy
	concurrency         int
}

// New creates a planner.
//
// Example:
//
//	planner := plan.New(plan.WithStrictPrimitiveBody(true))
//	p, err := planner.Plan(reflect.TypeFor[*UpdateRequest](), http.MethodPost, "/update/{id}")
func New(opts ...Option) *Planner {
	p := &Planner{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan computes the assembly plan of request type t for verb and route.
// Configuration errors are returned as a [*diag.Error]; warnings are kept in
// the plan's Diagnostics.
func (pl *Planner) Plan(t reflect.Type, verb, route string) (*Plan, error) {
	p, report := pl.plan(t, verb, route)
	if err := report.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// plan returns the plan, or nil, together with every diagnostic found.
func (pl *Planner) plan(t reflect.Type, verb, route string) (*Plan, diag.Report) {
	var report diag.Report

	if t == nil || binding.IsPrimitive(t) || reflectBase(t).Kind() != reflect.Struct {
		name := "<nil>"
		if t != nil {
			name = binding.TypeName(t)
		}
		report.Add(diag.New(diag.RequestTypeIsPrimitive, diag.SeverityError, name, "",
			"%s endpoint request type is not a struct, wrap it in a struct type", name))
		return nil, report
	}

	c, err := binding.Classify(t)
	if err != nil {
		report.Add(diag.New(diag.RequestTypeIsPrimitive, diag.SeverityError, binding.TypeName(t), "", "%v", err))
		return nil, report
	}

	p := &Plan{
		Name:        c.TypeName(),
		Request:     t,
		Struct:      c.Type,
		Verb:        strings.ToUpper(verb),
		Route:       route,
		RouteParams: RouteParams(route),
		Kind:        KindOf(t),
		Properties:  append([]binding.Property(nil), c.Properties...),
	}

	for _, d := range c.Diagnostics {
		switch {
		case d.Code == diag.CustomParseWithSourceTag && pl.lenientCustomParse:
			d.Severity = diag.SeverityWarning
			d.Message += "; the tag is ignored"
			for i := range p.Properties {
				if p.Properties[i].Name == d.Property {
					p.Properties[i] = p.Properties[i].WithoutTags()
				}
			}
		case d.Code == diag.BodyIsPrimitive && pl.strictPrimitiveBody:
			d.Severity = diag.SeverityError
		}
		report.Add(d)
	}

	if p.Kind == KindRecord && pl.recordPolicy == RecordAsParameters {
		for _, prop := range p.Properties {
			if prop.HasExplicitBody() {
				report.Add(diag.New(diag.RecordWithSourceTags, diag.SeverityWarning, p.Name, prop.Name,
					"%s property in %s endpoint request is tagged body, but record requests bind as parameters; declare the request as a pointer type to use body shapes",
					prop.Name, p.Name))
			}
		}
	}

	if report.HasErrors() {
		return nil, report
	}

	pl.shape(p)

	p.Diagnostics = report
	return p, report
}

// shape selects the shape and builds the slots.
func (pl *Planner) shape(p *Plan) {
	switch {
	case len(p.Properties) == 0:
		p.Shape = ShapeEmpty

	case p.Kind == KindRecord && pl.recordPolicy == RecordAsParameters:
		p.Shape, p.Mode = ShapeSingleParameterObject, ModeAsParameters
		if body := p.bodyProperties(); len(body) > 1 {
			p.Aux = auxBody(p, body)
		}
		p.addSlot(Slot{Name: "request", Kind: SlotObject, Type: p.Request, Properties: allIndices(p.Properties)})

	case isBodyVerb(p.Verb) && !HasPlaceholder(p.Route) && !p.hasExplicitNonBody():
		p.Shape, p.Mode = ShapeSingleParameterObject, ModeFromBody
		p.addSlot(Slot{Name: "request", Kind: SlotBody, Type: p.Request, Source: binding.SourceBody, Properties: allIndices(p.Properties)})

	default:
		body := p.bodyProperties()
		switch {
		case len(body) == 0:
			p.Shape = ShapeFlatParameters
			p.flatSlots(-1)
		case len(body) == 1 && ownsBody(p.Properties[body[0]]):
			p.Shape = ShapeFlatParameters
			p.flatSlots(body[0])
		default:
			p.Shape = ShapeSplitWithAuxiliaryBody
			p.Aux = auxBody(p, body)
			p.splitSlots(body)
		}
	}

	p.slotOf = make([]int, len(p.Properties))
	for si, s := range p.Slots {
		for _, pi := range s.Properties {
			p.slotOf[pi] = si
		}
	}
}

// flatSlots creates one slot per property; ownBody is the property bound
// from the whole body, or -1.
func (p *Plan) flatSlots(ownBody int) {
	for i, prop := range p.Properties {
		if i == ownBody {
			p.addSlot(Slot{Name: paramName(prop.Name), Kind: SlotBody, Type: prop.ValueType, Source: binding.SourceBody, Key: prop.Key, Properties: []int{i}})
			continue
		}
		p.addSlot(p.propertySlot(i))
	}
}

// splitSlots creates one slot per non-body property and the auxiliary body
// slot at the position of the first body property.
func (p *Plan) splitSlots(body []int) {
	for i := range p.Properties {
		switch {
		case i == body[0]:
			p.addSlot(Slot{Name: "body", Kind: SlotBody, Type: p.Aux.Type, Source: binding.SourceBody, Properties: body})
		case p.Properties[i].IsBody():
		default:
			p.addSlot(p.propertySlot(i))
		}
	}
}

func (p *Plan) propertySlot(i int) Slot {
	prop := p.Properties[i]
	src := prop.Source()
	if src == binding.SourceUnannotated {
		src = binding.SourceQuery
		if declares(p.RouteParams, prop.Key) {
			src = binding.SourceRoute
		}
	}
	return Slot{Name: paramName(prop.Name), Kind: SlotProperty, Type: prop.ValueType, Source: src, Key: prop.Key, Properties: []int{i}}
}

func (p *Plan) addSlot(s Slot) {
	s.Position = len(p.Slots)
	for _, existing := range p.Slots {
		if existing.Name == s.Name {
			s.Name = fmt.Sprintf("%s%d", s.Name, s.Position)
			break
		}
	}
	p.Slots = append(p.Slots, s)
}

func (p *Plan) bodyProperties() []int {
	var out []int
	for i, prop := range p.Properties {
		if prop.IsBody() {
			out = append(out, i)
		}
	}
	return out
}

func (p *Plan) hasExplicitNonBody() bool {
	for _, prop := range p.Properties {
		if prop.HasExplicitNonBody() || prop.Source() == binding.SourceCustomParse {
			return true
		}
	}
	return false
}

// ownsBody reports whether a lone body property is decoded from the whole
// body as its own parameter: it is structured and bound to the body by its
// own tag or value type rather than through its declaring type.
func ownsBody(prop binding.Property) bool {
	if binding.IsPrimitive(prop.ValueType) {
		return false
	}
	if prop.HasExplicitBody() || binding.IsBodyMarked(prop.ValueType) {
		return true
	}
	return prop.ImplicitBody && !binding.IsBodyMarked(prop.DeclaringType)
}

func isBodyVerb(verb string) bool {
	switch strings.ToUpper(verb) {
	case "POST", "PUT", "PATCH":
		return true
	default:
		return false
	}
}

func allIndices(props []binding.Property) []int {
	out := make([]int, len(props))
	for i := range out {
		out[i] = i
	}
	return out
}

// paramName converts a field name to a parameter name by lower-casing its
// leading upper-case run: ID -> id, UserID -> userID, HTTPCode -> httpCode.
func paramName(name string) string {
	runes := []rune(name)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	if n > 1 && n < len(runes) {
		n-- // keep the first letter of the next word
	}
	for i := range n {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

func reflectBase(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}
