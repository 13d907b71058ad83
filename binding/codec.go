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

package binding

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"mime"
	"strings"
	"sync"
)

// Common media types.
const (
	MediaTypeJSON = "application/json"
	MediaTypeXML  = "application/xml"
)

// Codec decodes request bodies and encodes response bodies for one media type.
type Codec interface {
	// ContentType returns the canonical media type written in responses.
	ContentType() string

	// Decode unmarshals data into out, a non-nil pointer.
	Decode(data []byte, out any) error

	// Encode writes v to w.
	Encode(w io.Writer, v any) error
}

// JSONCodec is the default body codec.
type JSONCodec struct {
	// DisallowUnknownFields rejects bodies with fields the target does not declare.
	DisallowUnknownFields bool
}

// ContentType implements [Codec].
func (JSONCodec) ContentType() string { return MediaTypeJSON }

// Decode implements [Codec].
func (c JSONCodec) Decode(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if c.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(out)
}

// Encode implements [Codec].
func (JSONCodec) Encode(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// XMLCodec decodes and encodes XML bodies.
type XMLCodec struct{}

// ContentType implements [Codec].
func (XMLCodec) ContentType() string { return MediaTypeXML }

// Decode implements [Codec].
func (XMLCodec) Decode(data []byte, out any) error {
	return xml.Unmarshal(data, out)
}

// Encode implements [Codec].
func (XMLCodec) Encode(w io.Writer, v any) error {
	return xml.NewEncoder(w).Encode(v)
}

// Registry selects codecs by media type. The first registered codec is the
// fallback for requests without a Content-Type and for responses whose
// Accept header matches nothing.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
	order  []Codec
}

// DefaultRegistry holds the JSON and XML codecs.
var DefaultRegistry = NewRegistry(JSONCodec{}, XMLCodec{})

// NewRegistry creates a registry holding the given codecs.
// The first codec is the fallback.
func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{codecs: make(map[string]Codec)}
	for _, c := range codecs {
		r.Register(c)
	}
	return r
}

// Register adds c under its content type and any aliases.
//
// Example:
//
//	reg.Register(yaml.Codec{}, "application/x-yaml", "text/yaml")
func (r *Registry) Register(c Codec, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[c.ContentType()] = c
	for _, a := range aliases {
		r.codecs[strings.ToLower(a)] = c
	}
	r.order = append(r.order, c)
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := &Registry{codecs: make(map[string]Codec, len(r.codecs)), order: append([]Codec(nil), r.order...)}
	for k, v := range r.codecs {
		c.codecs[k] = v
	}
	return c
}

// Lookup returns the codec for a Content-Type header value.
// An empty header selects the fallback codec.
func (r *Registry) Lookup(contentType string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if strings.TrimSpace(contentType) == "" {
		if len(r.order) == 0 {
			return nil, ErrUnsupportedContentType
		}
		return r.order[0], nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
	if c, ok := r.codecs[mediaType]; ok {
		return c, nil
	}
	// Structured syntax suffix, e.g. application/problem+json
	if i := strings.LastIndex(mediaType, "+"); i != -1 {
		if c, ok := r.codecs["application/"+mediaType[i+1:]]; ok {
			return c, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, mediaType)
}

// Negotiate picks the response codec for an Accept header value.
// Entries are tried in header order; quality values are ignored.
func (r *Registry) Negotiate(accept string) Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for part := range strings.SplitSeq(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil || mediaType == "*/*" {
			continue
		}
		if c, ok := r.codecs[mediaType]; ok {
			return c
		}
	}

	if len(r.order) == 0 {
		return JSONCodec{}
	}
	return r.order[0]
}
