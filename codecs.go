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

package endpoint

import (
	"rivaas.dev/endpoint/binding"
	"rivaas.dev/endpoint/binding/msgpack"
	"rivaas.dev/endpoint/binding/proto"
	"rivaas.dev/endpoint/binding/toml"
	"rivaas.dev/endpoint/binding/yaml"
)

// DefaultCodecs returns a registry with JSON (the fallback), XML, YAML,
// TOML, MessagePack and protobuf codecs. It is used for request bodies and
// response negotiation unless [WithCodecs] is given.
func DefaultCodecs() *binding.Registry {
	r := binding.DefaultRegistry.Clone()
	yaml.Register(r)
	toml.Register(r)
	msgpack.Register(r)
	proto.Register(r)
	return r
}
