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
	"context"
	"net/http"
	"reflect"
	"slices"
	"strings"

	"rivaas.dev/endpoint/binding"
	"rivaas.dev/endpoint/stages"
)

// Unit is the request type of endpoints that read nothing from the request
// and the response type of endpoints that return nothing. A Unit response
// is written as 204 No Content.
type Unit struct{}

// Endpoint handles one typed request.
type Endpoint[Req, Resp any] interface {
	Handle(ctx context.Context, req Req) (Resp, error)
}

// HandlerFunc adapts a function to [Endpoint].
type HandlerFunc[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Handle implements [Endpoint].
func (f HandlerFunc[Req, Resp]) Handle(ctx context.Context, req Req) (Resp, error) {
	return f(ctx, req)
}

// RequestValidator is implemented by endpoints that check a request before
// the pipeline runs. A non-nil error is rendered as a validation problem
// and the pipeline is bypassed.
type RequestValidator[Req any] interface {
	Validate(ctx context.Context, req Req) error
}

// Configurer is implemented by endpoints that adjust their route.
type Configurer interface {
	Configure(opts *RouteOptions)
}

// Route declares where an endpoint is mounted.
type Route struct {
	Pattern string   // chi pattern, e.g. "/items/{id}"
	Verbs   []string // HTTP methods; GET when empty
	Group   string   // Endpoint group; mounted under the group's prefix
}

// methods returns the upper-cased, de-duplicated verbs, defaulting to GET.
func (r Route) methods() []string {
	if len(r.Verbs) == 0 {
		return []string{http.MethodGet}
	}
	out := make([]string, 0, len(r.Verbs))
	for _, v := range r.Verbs {
		v = strings.ToUpper(strings.TrimSpace(v))
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// RouteOptions is the per-endpoint configuration collected from
// [RegisterOption] values and the endpoint's [Configurer] hook.
type RouteOptions struct {
	// Name identifies the endpoint in logs, traces and metrics.
	// Defaults to the endpoint type name.
	Name string

	// Middleware wraps the mounted route handler.
	Middleware []func(http.Handler) http.Handler

	// Stages run in this endpoint's chain only, ordered together with the
	// application's stages.
	Stages []*stages.Stage

	// SkipValidation disables the application validator for this endpoint.
	// The endpoint's own Validate still runs.
	SkipValidation bool
}

// Use appends route middleware.
func (o *RouteOptions) Use(mw ...func(http.Handler) http.Handler) {
	o.Middleware = append(o.Middleware, mw...)
}

// AddStage appends endpoint-local stages.
func (o *RouteOptions) AddStage(s ...*stages.Stage) {
	o.Stages = append(o.Stages, s...)
}

// RegisterOption configures one registration.
type RegisterOption func(*RouteOptions)

// WithStage adds endpoint-local stages.
//
// Example:
//
//	endpoint.Register(app, route, createItem, endpoint.WithStage(stages.Timeout(2*time.Second)))
func WithStage(s ...*stages.Stage) RegisterOption {
	return func(o *RouteOptions) {
		o.AddStage(s...)
	}
}

// WithName sets the endpoint name.
func WithName(name string) RegisterOption {
	return func(o *RouteOptions) {
		o.Name = name
	}
}

// WithMiddleware wraps the route handler with net/http middleware.
func WithMiddleware(mw ...func(http.Handler) http.Handler) RegisterOption {
	return func(o *RouteOptions) {
		o.Use(mw...)
	}
}

// WithoutRouteValidation skips the application validator for the endpoint.
func WithoutRouteValidation() RegisterOption {
	return func(o *RouteOptions) {
		o.SkipValidation = true
	}
}

// Register records an endpoint on a. Nothing is planned until [App.Build];
// configuration errors of the request type are reported there.
//
// Example:
//
//	type CreateItem struct{ store *Store }
//
//	func (e *CreateItem) Handle(ctx context.Context, req CreateItemRequest) (endpoint.Result, error) {
//	    item, err := e.store.Create(ctx, req.Name)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return endpoint.Created("/items/"+item.ID, item), nil
//	}
//
//	endpoint.Register(app, endpoint.Route{Pattern: "/items", Verbs: []string{"POST"}}, &CreateItem{store})
func Register[Req, Resp any](a *App, route Route, ep Endpoint[Req, Resp], opts ...RegisterOption) {
	o := RouteOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if c, ok := ep.(Configurer); ok {
		c.Configure(&o)
	}
	if o.Name == "" {
		o.Name = endpointName[Req](ep)
	}

	a.register(&registration[Req, Resp]{
		route:    route,
		endpoint: ep,
		opts:     o,
	})
}

// endpointName names an endpoint after its type, or after its request type
// when it is a plain function.
func endpointName[Req any](ep any) string {
	t := reflect.TypeOf(ep)
	if t.Kind() == reflect.Func {
		return binding.TypeName(reflect.TypeFor[Req]())
	}
	return binding.TypeName(t)
}
