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

// Package yaml provides a YAML body codec for the binding package,
// using gopkg.in/yaml.v3.
//
// Example:
//
//	reg := binding.DefaultRegistry.Clone()
//	yaml.Register(reg)
package yaml

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"

	"rivaas.dev/endpoint/binding"
)

// MediaType is the canonical YAML media type.
const MediaType = "application/yaml"

// Codec decodes and encodes YAML bodies.
type Codec struct {
	// Strict rejects documents with fields the target does not declare.
	Strict bool
}

// ContentType implements binding.Codec.
func (Codec) ContentType() string { return MediaType }

// Decode implements binding.Codec.
func (c Codec) Decode(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(c.Strict)
	if err := dec.Decode(out); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// Encode implements binding.Codec.
func (Codec) Encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Register adds the YAML codec to r under its common media types.
func Register(r *binding.Registry) {
	r.Register(Codec{}, "application/x-yaml", "text/yaml")
}
