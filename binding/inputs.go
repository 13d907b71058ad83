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
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"sync"
)

// TagDefault supplies a raw value when a value-extraction key is absent.
const TagDefault = "default"

// ServiceResolver supplies values for service-tagged properties.
type ServiceResolver interface {
	// Resolve returns the service registered for t.
	Resolve(t reflect.Type) (any, bool)
}

// Inputs holds the raw inputs of one request and resolves property values
// from them. Form data and the body are read lazily, at most once.
//
// Inputs is not safe for concurrent use; create one per request.
type Inputs struct {
	Request  *http.Request
	Route    ValueGetter
	Query    ValueGetter
	Header   ValueGetter
	Services ServiceResolver

	opts *Options

	formOnce sync.Once
	form     ValueGetter
	formErr  error

	bodyOnce sync.Once
	body     []byte
	bodyErr  error
}

// NewInputs captures the inputs of r. route holds the route template values
// of the matched route; services may be nil.
//
// Example:
//
//	in := binding.NewInputs(r, map[string]string{"id": chi.URLParam(r, "id")}, nil)
func NewInputs(r *http.Request, route map[string]string, services ServiceResolver, opts ...Option) *Inputs {
	return &Inputs{
		Request:  r,
		Route:    NewRouteGetter(route),
		Query:    NewQueryGetter(r.URL.Query()),
		Header:   NewHeaderGetter(r.Header),
		Services: services,
		opts:     applyOptions(opts),
	}
}

// Form returns the form values of the request body, parsing them on first use.
func (in *Inputs) Form() (ValueGetter, error) {
	in.formOnce.Do(func() {
		r := in.Request
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "multipart/form-data" {
			in.formErr = r.ParseMultipartForm(DefaultMaxMultipartMemory)
		} else {
			in.formErr = r.ParseForm()
		}
		if in.formErr == nil {
			in.form = NewFormGetter(r.PostForm)
		}
	})
	return in.form, in.formErr
}

// Body returns the raw request body, reading it on first use.
func (in *Inputs) Body() ([]byte, error) {
	in.bodyOnce.Do(func() {
		r := in.Request
		if r.Body == nil || r.Body == http.NoBody {
			return
		}
		var reader io.Reader = r.Body
		if in.opts.MaxBodySize > 0 {
			reader = io.LimitReader(r.Body, in.opts.MaxBodySize+1)
		}
		in.body, in.bodyErr = io.ReadAll(reader)
		if in.bodyErr == nil && in.opts.MaxBodySize > 0 && int64(len(in.body)) > in.opts.MaxBodySize {
			in.body = nil
			in.bodyErr = fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, in.opts.MaxBodySize)
		}
	})
	return in.body, in.bodyErr
}

// DecodeBody decodes the request body into a new value of type t, selecting
// the codec by Content-Type. An empty body yields the zero value of t.
func (in *Inputs) DecodeBody(t reflect.Type) (reflect.Value, error) {
	data, err := in.Body()
	if err != nil {
		return reflect.Value{}, &BindError{Source: SourceBody, Type: t, Reason: err.Error(), Err: err}
	}
	if len(data) == 0 {
		return reflect.Zero(t), nil
	}

	codec, err := in.opts.Codecs.Lookup(in.Request.Header.Get("Content-Type"))
	if err != nil {
		return reflect.Value{}, &BindError{Source: SourceBody, Type: t, Reason: err.Error(), Err: err}
	}

	base := unwrapNullable(t)
	ptr := reflect.New(base)
	if err := codec.Decode(data, ptr.Interface()); err != nil {
		return reflect.Value{}, &BindError{
			Source: SourceBody,
			Type:   t,
			Reason: fmt.Sprintf("invalid %s body: %v", codec.ContentType(), err),
			Err:    err,
		}
	}

	if t.Kind() == reflect.Pointer {
		return ptr, nil
	}
	return ptr.Elem(), nil
}

// Resolve produces the value of a single property from the request.
//
// Value-extraction sources read the property key from their getter, falling
// back to the `default` tag and then to the zero value. Custom parse types
// bind themselves; a non-nullable Parser without a raw value is an error.
// Unannotated scalar properties read the route value of the same name when
// present, otherwise the query; other unannotated properties are decoded
// from the body.
func (in *Inputs) Resolve(ctx context.Context, p Property) (reflect.Value, error) {
	switch src := p.Source(); src {
	case SourceBody:
		v, err := in.DecodeBody(p.ValueType)
		return v, withField(err, p.Key)

	case SourceRoute, SourceQuery, SourceHeader:
		return in.extract(p, src, in.getter(src))

	case SourceForm:
		form, err := in.Form()
		if err != nil {
			return reflect.Value{}, &BindError{Field: p.Key, Source: SourceForm, Type: p.ValueType, Reason: err.Error(), Err: err}
		}
		return in.extract(p, src, form)

	case SourceService:
		return in.service(p)

	case SourceCustomParse:
		if IsContextBinder(p.ValueType) {
			return in.bindContext(ctx, p)
		}
		return in.parseCustom(p)

	default:
		if in.Route.Has(p.Key) {
			return in.extract(p, SourceRoute, in.Route)
		}
		return in.extract(p, SourceQuery, in.Query)
	}
}

func (in *Inputs) getter(src Source) ValueGetter {
	switch src {
	case SourceRoute:
		return in.Route
	case SourceHeader:
		return in.Header
	default:
		return in.Query
	}
}

func (in *Inputs) extract(p Property, src Source, g ValueGetter) (reflect.Value, error) {
	values := g.GetAll(p.Key)
	if !g.Has(p.Key) || len(values) == 0 {
		def, ok := p.Tag.Lookup(TagDefault)
		if !ok {
			return reflect.Zero(p.ValueType), nil
		}
		values = []string{def}
	}

	v, err := parseValues(values, p.ValueType, in.opts)
	if err != nil {
		return reflect.Value{}, &BindError{Field: p.Key, Source: src, Value: values[0], Type: p.ValueType, Err: err}
	}
	return v, nil
}

func (in *Inputs) parseCustom(p Property) (reflect.Value, error) {
	g, src := in.Query, SourceQuery
	if in.Route.Has(p.Key) {
		g, src = in.Route, SourceRoute
	}

	raw := g.Get(p.Key)
	if raw == "" {
		if p.ValueType.Kind() == reflect.Pointer {
			return reflect.Zero(p.ValueType), nil
		}
		return reflect.Value{}, &BindError{Field: p.Key, Source: src, Type: p.ValueType, Reason: ErrMissingValue.Error(), Err: ErrMissingValue}
	}

	v, err := parseValue(raw, p.ValueType, in.opts)
	if err != nil {
		return reflect.Value{}, &BindError{Field: p.Key, Source: src, Value: raw, Type: p.ValueType, Err: err}
	}
	return v, nil
}

func (in *Inputs) bindContext(ctx context.Context, p Property) (reflect.Value, error) {
	ptr := reflect.New(unwrapNullable(p.ValueType))
	binder, ok := ptr.Interface().(ContextBinder)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %v does not bind from context", ErrUnsupportedType, p.ValueType)
	}
	if err := binder.BindContext(ctx, in.Request); err != nil {
		return reflect.Value{}, &BindError{Field: p.Key, Source: SourceCustomParse, Type: p.ValueType, Reason: err.Error(), Err: err}
	}
	if p.ValueType.Kind() == reflect.Pointer {
		return ptr, nil
	}
	return ptr.Elem(), nil
}

func (in *Inputs) service(p Property) (reflect.Value, error) {
	if in.Services != nil {
		if svc, ok := in.Services.Resolve(p.ValueType); ok {
			v := reflect.ValueOf(svc)
			if v.IsValid() && v.Type().AssignableTo(p.ValueType) {
				return v, nil
			}
		}
	}
	return reflect.Value{}, fmt.Errorf("%w: %v for property %s", ErrServiceNotFound, p.ValueType, p.Name)
}

// withField fills the field of a body BindError.
func withField(err error, key string) error {
	if err == nil {
		return nil
	}
	var be *BindError
	if errors.As(err, &be) && be.Field == "" {
		be.Field = key
	}
	return err
}

// isScalar reports whether t is read from a single raw string (or a list of them).
func isScalar(t reflect.Type) bool {
	base := unwrapNullable(t)
	if IsPrimitive(base) || IsParser(base) {
		return true
	}
	switch base {
	case urlType, ipType, ipNetType, regexpType:
		return true
	}
	if reflect.PointerTo(base).Implements(textUnmarshalerType) {
		return true
	}
	if base.Kind() == reflect.Slice {
		return isScalar(base.Elem())
	}
	return false
}
