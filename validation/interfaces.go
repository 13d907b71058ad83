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

import "context"

// ValidatorInterface is implemented by request types that check themselves.
//
// Example:
//
//	func (r *CreateUser) Validate() error {
//	    if r.Password == r.Name {
//	        return validation.FieldError{Path: "password", Code: "weak", Message: "must differ from name"}
//	    }
//	    return nil
//	}
type ValidatorInterface interface {
	Validate() error
}

// ValidatorWithContext is the context-aware form of [ValidatorInterface].
// It is preferred when both are implemented.
type ValidatorWithContext interface {
	ValidateContext(context.Context) error
}

// JSONSchemaProvider is implemented by types that carry their own JSON Schema.
//
// Example:
//
//	func (CreateUser) JSONSchema() (id, schema string) {
//	    return "create-user-v1", `{
//	        "type": "object",
//	        "properties": {"name": {"type": "string", "minLength": 3}},
//	        "required": ["name"]
//	    }`
//	}
type JSONSchemaProvider interface {
	JSONSchema() (id string, schema string)
}
