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

// Package toml provides a TOML body codec for the binding package,
// using github.com/BurntSushi/toml.
package toml

import (
	"io"

	"github.com/BurntSushi/toml"

	"rivaas.dev/endpoint/binding"
)

// MediaType is the canonical TOML media type.
const MediaType = "application/toml"

// Codec decodes and encodes TOML bodies.
type Codec struct {
	// Strict rejects documents with keys the target does not declare.
	Strict bool
}

// ContentType implements binding.Codec.
func (Codec) ContentType() string { return MediaType }

// Decode implements binding.Codec.
func (c Codec) Decode(data []byte, out any) error {
	meta, err := toml.Decode(string(data), out)
	if err != nil {
		return err
	}
	if c.Strict {
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return &UndecodedError{Keys: undecoded}
		}
	}
	return nil
}

// Encode implements binding.Codec.
func (Codec) Encode(w io.Writer, v any) error {
	return toml.NewEncoder(w).Encode(v)
}

// UndecodedError lists keys a strict codec found without a target field.
type UndecodedError struct {
	Keys []toml.Key
}

func (e *UndecodedError) Error() string {
	if len(e.Keys) == 1 {
		return "unknown key: " + e.Keys[0].String()
	}
	s := "unknown keys:"
	for _, k := range e.Keys {
		s += " " + k.String()
	}
	return s
}

// Register adds the TOML codec to r.
func Register(r *binding.Registry) {
	r.Register(Codec{}, "application/x-toml")
}
