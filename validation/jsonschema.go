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

package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// maxRecursionDepth bounds walks over nested types and schema error trees.
const maxRecursionDepth = 100

// validateWithSchema validates the JSON form of target against its schema.
func (v *Validator) validateWithSchema(target any, cfg *config) error {
	id, doc := schemaFor(target, cfg)
	if doc == "" {
		return nil
	}

	schema, err := v.schema(id, doc)
	if err != nil {
		return &Error{Fields: []FieldError{{Code: "schema_compile_error", Message: err.Error()}}}
	}

	raw, err := json.Marshal(target)
	if err != nil {
		return &Error{Fields: []FieldError{{Code: "marshal_error", Message: err.Error()}}}
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return &Error{Fields: []FieldError{{Code: "unmarshal_error", Message: err.Error()}}}
	}

	err = schema.Validate(data)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &Error{Fields: []FieldError{{Code: "schema_validation_error", Message: err.Error()}}}
	}

	var result Error
	collectSchemaErrors(verr, &result, cfg, 0)
	result.Sort()
	return &result
}

func schemaFor(target any, cfg *config) (id, schema string) {
	if cfg.customSchema != "" {
		return cfg.customSchemaID, cfg.customSchema
	}
	if p, ok := target.(JSONSchemaProvider); ok {
		return p.JSONSchema()
	}
	return "", ""
}

// schema returns the compiled schema, caching it by id. Schemas without an
// id are compiled on every call.
func (v *Validator) schema(id, doc string) (*jsonschema.Schema, error) {
	if id != "" {
		v.schemasMu.RLock()
		s, ok := v.schemas[id]
		v.schemasMu.RUnlock()
		if ok {
			return s, nil
		}
	}

	s, err := compileSchema(id, doc)
	if err != nil {
		return nil, err
	}

	if id != "" {
		v.schemasMu.Lock()
		v.schemas[id] = s
		v.schemasMu.Unlock()
	}
	return s, nil
}

func compileSchema(id, doc string) (*jsonschema.Schema, error) {
	var parsed any
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		return nil, fmt.Errorf("invalid schema JSON: %w", err)
	}

	url := id
	if url == "" {
		url = "schema.json"
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat()
	if err := compiler.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	s, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return s, nil
}

// collectSchemaErrors flattens the leaves of a schema error tree.
func collectSchemaErrors(verr *jsonschema.ValidationError, result *Error, cfg *config, depth int) {
	if verr == nil || depth > maxRecursionDepth || result.Truncated {
		return
	}

	if len(verr.Causes) == 0 {
		path := strings.Join(verr.InstanceLocation, ".")
		if cfg.fieldNameMapper != nil && path != "" {
			path = cfg.fieldNameMapper(path)
		}
		keyword := strings.Join(verr.ErrorKind.KeywordPath(), ".")

		if cfg.maxErrors > 0 && len(result.Fields) >= cfg.maxErrors {
			result.Truncated = true
			return
		}
		result.Add(path, "schema."+keyword, verr.Error(), map[string]any{
			"keyword":    keyword,
			"schema_url": verr.SchemaURL,
		})
		return
	}

	for _, cause := range verr.Causes {
		collectSchemaErrors(cause, result, cfg, depth+1)
	}
}
