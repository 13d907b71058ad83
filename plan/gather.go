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
	"context"
	"errors"
	"reflect"

	"rivaas.dev/endpoint/binding"
)

// Gather produces the positional capture of a request: one value per slot,
// in slot order. Binding failures of all slots are collected into a single
// error; any other failure, such as a missing service, stops gathering.
//
// Example:
//
//	in := binding.NewInputs(r, routeParams, services)
//	args, err := p.Gather(ctx, in)
//	req, err := p.FromArgs(args)
func (p *Plan) Gather(ctx context.Context, in *binding.Inputs) ([]any, error) {
	args := make([]any, len(p.Slots))
	var errs binding.MultiError

	for i, s := range p.Slots {
		var (
			v   reflect.Value
			err error
		)
		switch s.Kind {
		case SlotBody:
			v, err = in.DecodeBody(s.Type)
			if err != nil && len(s.Properties) == 1 && s.Type != p.Request {
				err = keyed(err, s.Key)
			}
		case SlotObject:
			v, err = p.gatherObject(ctx, in)
		default:
			v, err = in.Resolve(ctx, p.Properties[s.Properties[0]])
		}

		if err != nil {
			if !isBindError(err) {
				return nil, err
			}
			errs.Add(err)
			continue
		}
		if v.IsValid() {
			args[i] = v.Interface()
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return args, nil
}

// gatherObject binds an as-parameters request object property by property.
func (p *Plan) gatherObject(ctx context.Context, in *binding.Inputs) (reflect.Value, error) {
	ptr := reflect.New(p.Struct)
	dst := ptr.Elem()
	var errs binding.MultiError

	grouped := make(map[int]bool)
	if p.Aux != nil {
		aux, err := in.DecodeBody(p.Aux.Type)
		if err != nil {
			return reflect.Value{}, err
		}
		p.Aux.scatter(dst, aux, p.Properties)
		for _, f := range p.Aux.Fields {
			grouped[f.Property] = true
		}
	}

	for i, prop := range p.Properties {
		if grouped[i] {
			continue
		}
		v, err := in.Resolve(ctx, prop)
		if err != nil {
			if !isBindError(err) {
				return reflect.Value{}, err
			}
			errs.Add(err)
			continue
		}
		setProperty(dst, prop.Index, v)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return reflect.Value{}, err
	}
	if p.Kind == KindReference {
		return ptr, nil
	}
	return dst, nil
}

func isBindError(err error) bool {
	var be *binding.BindError
	var me *binding.MultiError
	return errors.As(err, &be) || errors.As(err, &me)
}

func keyed(err error, key string) error {
	var be *binding.BindError
	if errors.As(err, &be) && be.Field == "" {
		be.Field = key
	}
	return err
}
