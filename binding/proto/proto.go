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

// Package proto provides a Protocol Buffers body codec for the binding
// package, using google.golang.org/protobuf. Targets must implement
// proto.Message; request fields bound from a protobuf body are therefore
// generated message types.
package proto

import (
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/proto"

	"rivaas.dev/endpoint/binding"
)

// MediaType is the canonical protobuf media type.
const MediaType = "application/x-protobuf"

// ErrNotMessage is returned when a target is not a proto.Message.
var ErrNotMessage = errors.New("target does not implement proto.Message")

// Codec decodes and encodes protobuf bodies.
type Codec struct {
	// DiscardUnknown drops unknown fields instead of keeping them.
	DiscardUnknown bool
}

// ContentType implements binding.Codec.
func (Codec) ContentType() string { return MediaType }

// Decode implements binding.Codec.
func (c Codec) Decode(data []byte, out any) error {
	m, ok := out.(proto.Message)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotMessage, out)
	}
	return proto.UnmarshalOptions{DiscardUnknown: c.DiscardUnknown}.Unmarshal(data, m)
}

// Encode implements binding.Codec.
func (Codec) Encode(w io.Writer, v any) error {
	m, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotMessage, v)
	}
	data, err := proto.Marshal(m)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Register adds the protobuf codec to r.
func Register(r *binding.Registry) {
	r.Register(Codec{}, "application/protobuf", "application/vnd.google.protobuf")
}
