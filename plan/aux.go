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
	"strconv"
	"strings"

	"rivaas.dev/endpoint/binding"
)

// auxTags are the codec tags written on synthesized body fields.
var auxTags = []string{"json", "yaml", "toml", "msgpack", "xml"}

// auxBody groups the body properties into one object. An embedded declaring
// type is reused when it holds exactly the body properties; otherwise a
// struct type is synthesized.
func auxBody(p *Plan, body []int) *AuxBody {
	if aux := reusableAux(p, body); aux != nil {
		return aux
	}
	return synthesizeAux(p, body)
}

func reusableAux(p *Plan, body []int) *AuxBody {
	declaring := p.Properties[body[0]].DeclaringType
	if declaring == p.Struct {
		return nil
	}

	for _, i := range body {
		if p.Properties[i].DeclaringType != declaring {
			return nil
		}
	}
	for _, prop := range p.Properties {
		if prop.DeclaringType != declaring {
			continue
		}
		if !prop.IsBody() || prop.HasExplicitNonBody() || prop.HasCustomParse {
			return nil
		}
	}

	first := p.Properties[body[0]].Index
	aux := &AuxBody{
		Name:   binding.TypeName(declaring),
		Type:   declaring,
		Reused: true,
		Embed:  append([]int(nil), first[:len(first)-1]...),
	}
	for _, i := range body {
		idx := p.Properties[i].Index
		aux.Fields = append(aux.Fields, AuxField{Property: i, Index: []int{idx[len(idx)-1]}})
	}
	return aux
}

func synthesizeAux(p *Plan, body []int) *AuxBody {
	fields := make([]reflect.StructField, 0, len(body))
	aux := &AuxBody{Name: p.Name + "Body"}
	seen := make(map[string]bool, len(body))

	for n, i := range body {
		prop := p.Properties[i]
		name := prop.Name
		if seen[name] {
			name = fmt.Sprintf("%s%d", name, n)
		}
		seen[name] = true

		fields = append(fields, reflect.StructField{
			Name: name,
			Type: prop.ValueType,
			Tag:  auxTag(prop),
		})
		aux.Fields = append(aux.Fields, AuxField{Property: i, Index: []int{n}})
	}

	aux.Type = reflect.StructOf(fields)
	return aux
}

// auxTag names the field by the property key for every codec and carries
// the validation rules over.
func auxTag(prop binding.Property) reflect.StructTag {
	parts := make([]string, 0, len(auxTags)+1)
	for _, tag := range auxTags {
		parts = append(parts, tag+":"+strconv.Quote(prop.Key))
	}
	if rules, ok := prop.Tag.Lookup("validate"); ok {
		parts = append(parts, "validate:"+strconv.Quote(rules))
	}
	return reflect.StructTag(strings.Join(parts, " "))
}
