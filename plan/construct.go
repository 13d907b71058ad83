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
	"errors"
	"fmt"
	"reflect"

	"rivaas.dev/endpoint/binding"
)

// Construction errors.
var (
	ErrArity            = errors.New("argument count does not match plan slots")
	ErrMissingParameter = errors.New("missing named parameter")
	ErrParameterType    = errors.New("parameter has the wrong type")
	ErrUnknownParameter = errors.New("unknown named parameter")
)

// FromArgs builds the request value from a positional capture, one value
// per slot in slot order. It is the construction used by pre-handler
// filters such as validation.
//
// The result has the declared request type: a struct value for record-kind
// requests, a pointer to struct for reference-kind ones.
func (p *Plan) FromArgs(args []any) (any, error) {
	if len(args) != len(p.Slots) {
		return nil, fmt.Errorf("%w: %s has %d slots, got %d", ErrArity, p.Name, len(p.Slots), len(args))
	}

	values := make([]reflect.Value, len(args))
	for i, s := range p.Slots {
		v, err := slotValue(s, args[i])
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return p.assemble(values), nil
}

// FromParams builds the request value from named parameters keyed by slot
// name. It is the construction used by the handler invocation and yields a
// value identical to [Plan.FromArgs] for the same inputs.
func (p *Plan) FromParams(params map[string]any) (any, error) {
	values := make([]reflect.Value, len(p.Slots))
	for i, s := range p.Slots {
		raw, ok := params[s.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrMissingParameter, p.Name, s.Name)
		}
		v, err := slotValue(s, raw)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return p.assemble(values), nil
}

// Args converts named parameters to a positional capture.
func (p *Plan) Args(params map[string]any) ([]any, error) {
	if len(params) > len(p.Slots) {
		for name := range params {
			if !p.hasSlot(name) {
				return nil, fmt.Errorf("%w: %s.%s", ErrUnknownParameter, p.Name, name)
			}
		}
	}

	args := make([]any, len(p.Slots))
	for i, s := range p.Slots {
		v, ok := params[s.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrMissingParameter, p.Name, s.Name)
		}
		args[i] = v
	}
	return args, nil
}

// Params converts a positional capture to named parameters.
func (p *Plan) Params(args []any) (map[string]any, error) {
	if len(args) != len(p.Slots) {
		return nil, fmt.Errorf("%w: %s has %d slots, got %d", ErrArity, p.Name, len(p.Slots), len(args))
	}

	params := make(map[string]any, len(args))
	for i, s := range p.Slots {
		params[s.Name] = args[i]
	}
	return params, nil
}

// Decompose is the inverse of [Plan.FromArgs]: it splits a request value
// into its positional capture.
func (p *Plan) Decompose(req any) ([]any, error) {
	v := reflect.ValueOf(req)
	if !v.IsValid() || v.Type() != p.Request {
		return nil, fmt.Errorf("%w: want %v, got %T", ErrParameterType, p.Request, req)
	}

	switch p.Shape {
	case ShapeEmpty:
		return []any{}, nil
	case ShapeSingleParameterObject:
		return []any{req}, nil
	}

	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v = reflect.New(p.Struct)
		}
		v = v.Elem()
	}

	args := make([]any, len(p.Slots))
	for i, s := range p.Slots {
		if s.Kind == SlotBody && p.Aux != nil && s.Type == p.Aux.Type {
			args[i] = p.Aux.gather(v, p.Properties).Interface()
			continue
		}
		if fv, ok := propertyValue(v, p.Properties[s.Properties[0]].Index); ok {
			args[i] = fv.Interface()
		}
	}
	return args, nil
}

// Zero returns the value of an empty request.
func (p *Plan) Zero() any {
	if p.Kind == KindReference {
		return reflect.New(p.Struct).Interface()
	}
	return reflect.Zero(p.Struct).Interface()
}

func (p *Plan) hasSlot(name string) bool {
	for _, s := range p.Slots {
		if s.Name == name {
			return true
		}
	}
	return false
}

// assemble runs the slot to property mapping shared by both constructions.
func (p *Plan) assemble(values []reflect.Value) any {
	if p.Shape == ShapeEmpty {
		return p.Zero()
	}
	if p.Shape == ShapeSingleParameterObject {
		v := values[0]
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return reflect.New(p.Struct).Interface()
		}
		return v.Interface()
	}

	ptr := reflect.New(p.Struct)
	dst := ptr.Elem()
	for i, s := range p.Slots {
		v := values[i]
		if s.Kind == SlotBody && p.Aux != nil && s.Type == p.Aux.Type {
			p.Aux.scatter(dst, v, p.Properties)
			continue
		}
		setProperty(dst, p.Properties[s.Properties[0]].Index, v)
	}

	if p.Kind == KindReference {
		return ptr.Interface()
	}
	return dst.Interface()
}

// scatter copies the auxiliary body fields into their request properties.
func (a *AuxBody) scatter(dst, aux reflect.Value, props []binding.Property) {
	if aux.Kind() == reflect.Pointer {
		if aux.IsNil() {
			return
		}
		aux = aux.Elem()
	}
	for _, f := range a.Fields {
		setProperty(dst, props[f.Property].Index, aux.FieldByIndex(f.Index))
	}
}

// gatherAux reads the auxiliary body fields back out of a request struct.
func (a *AuxBody) gather(src reflect.Value, props []binding.Property) reflect.Value {
	aux := reflect.New(a.Type).Elem()
	for _, f := range a.Fields {
		if v, ok := propertyValue(src, props[f.Property].Index); ok {
			aux.FieldByIndex(f.Index).Set(v)
		}
	}
	return aux
}

// slotValue checks a captured value against its slot type.
func slotValue(s Slot, raw any) (reflect.Value, error) {
	if raw == nil {
		return reflect.Zero(s.Type), nil
	}
	v := reflect.ValueOf(raw)
	if !v.Type().AssignableTo(s.Type) {
		return reflect.Value{}, fmt.Errorf("%w: %s wants %v, got %T", ErrParameterType, s.Name, s.Type, raw)
	}
	return v, nil
}

// setProperty sets the field at index, allocating nil embedded pointers on the way.
func setProperty(dst reflect.Value, index []int, v reflect.Value) {
	for n, i := range index {
		if n > 0 && dst.Kind() == reflect.Pointer {
			if dst.IsNil() {
				dst.Set(reflect.New(dst.Type().Elem()))
			}
			dst = dst.Elem()
		}
		dst = dst.Field(i)
	}
	if !v.IsValid() {
		v = reflect.Zero(dst.Type())
	}
	dst.Set(v)
}

// propertyValue reads the field at index; ok is false when a nil embedded
// pointer is on the path.
func propertyValue(src reflect.Value, index []int) (reflect.Value, bool) {
	for n, i := range index {
		if n > 0 && src.Kind() == reflect.Pointer {
			if src.IsNil() {
				return reflect.Value{}, false
			}
			src = src.Elem()
		}
		src = src.Field(i)
	}
	return src, true
}
