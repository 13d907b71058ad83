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

// Package binding classifies request struct fields by binding source and
// resolves their values from an HTTP request.
//
// A request type is a struct whose fields carry source tags:
//
//	type UpdateRequest struct {
//	    ID      int            `path:"id"`
//	    Trace   string         `header:"X-Trace-Id"`
//	    Verbose bool           `query:"verbose" default:"false"`
//	    Values  UpdateValues   `body:""`
//	    Clock   Clock          `service:""`
//	}
//
// Supported tags are body, form, header, query, path and service. The tag
// value is the lookup key; without one the json name and then the field
// name are used. A field tagged `bind:"-"` is ignored.
//
// # Classification
//
// [Classify] walks the struct and its embedded structs and returns one
// [Property] per exported field together with the configuration
// diagnostics found on it (see package rivaas.dev/endpoint/diag).
// Results are cached per type.
//
// # Custom Parsing
//
// Value types bind themselves by implementing [Parser] (one raw string,
// read from the route value of the same name, otherwise from the query) or
// [ContextBinder] (the whole request). Such fields must not carry a source
// tag. Types implementing [BodyMarker] are bound from the body without a tag.
//
// # Resolution
//
// [Inputs] captures one request and resolves property values:
//
//	in := binding.NewInputs(r, routeParams, services)
//	v, err := in.Resolve(ctx, prop)
//
// Bodies are decoded by the [Codec] registered for the request Content-Type.
// JSON and XML are built in; the yaml, toml, msgpack and proto sub-packages
// provide further codecs.
//
// # Errors
//
// Conversion failures are reported as [*BindError] with the failing key,
// source and value, and aggregate as [*MultiError]. Both report HTTP 400.
package binding
