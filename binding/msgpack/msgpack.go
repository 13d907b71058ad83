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

// Package msgpack provides a MessagePack body codec for the binding package,
// using github.com/vmihailenco/msgpack/v5.
package msgpack

import (
	"bytes"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"rivaas.dev/endpoint/binding"
)

// MediaType is the canonical MessagePack media type.
const MediaType = "application/msgpack"

// Codec decodes and encodes MessagePack bodies.
type Codec struct {
	// UseJSONTag reads field names from json tags instead of msgpack tags.
	UseJSONTag bool

	// DisallowUnknown rejects payloads with fields the target does not declare.
	DisallowUnknown bool
}

// ContentType implements binding.Codec.
func (Codec) ContentType() string { return MediaType }

// Decode implements binding.Codec.
func (c Codec) Decode(data []byte, out any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	if c.UseJSONTag {
		dec.SetCustomStructTag("json")
	}
	dec.DisallowUnknownFields(c.DisallowUnknown)
	return dec.Decode(out)
}

// Encode implements binding.Codec.
func (c Codec) Encode(w io.Writer, v any) error {
	enc := msgpack.NewEncoder(w)
	if c.UseJSONTag {
		enc.SetCustomStructTag("json")
	}
	return enc.Encode(v)
}

// Register adds the MessagePack codec to r.
func Register(r *binding.Registry) {
	r.Register(Codec{}, "application/x-msgpack", "application/vnd.msgpack")
}
