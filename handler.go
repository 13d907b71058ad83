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
	"fmt"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"

	"rivaas.dev/endpoint/binding"
	"rivaas.dev/endpoint/pipeline"
	"rivaas.dev/endpoint/plan"
	"rivaas.dev/endpoint/stages"
	"rivaas.dev/endpoint/validation"
)

// registration is one typed [Register] call.
type registration[Req, Resp any] struct {
	route    Route
	endpoint Endpoint[Req, Resp]
	opts     RouteOptions
}

func (r *registration[Req, Resp]) requestType() reflect.Type { return reflect.TypeFor[Req]() }
func (r *registration[Req, Resp]) routeSpec() Route          { return r.route }
func (r *registration[Req, Resp]) name() string              { return r.opts.Name }

// compose builds the chain and route handler of one verb.
func (r *registration[Req, Resp]) compose(a *App, verb string, p *plan.Plan) *mountedRoute {
	respType := reflect.TypeFor[Resp]()

	var entries []pipeline.Entry[Req, Resp]
	for _, s := range a.chainStages(r.opts.Stages) {
		if !s.Accepts(respType) {
			continue
		}
		e := stages.Entry[Req, Resp](s)
		if a.metrics != nil {
			e = stages.Timed(a.metrics, e)
		}
		if a.tracer != nil {
			e = stages.Traced(a.tracer, e)
		}
		e = stages.Bounded(a.stageTimeout(s.Name()), e)
		entries = append(entries, e)
	}

	var chainOpts []pipeline.ChainOption
	if a.metrics != nil {
		chainOpts = append(chainOpts, pipeline.WithObserver(a.metrics))
	}
	chain := pipeline.Compose(entries, r.endpoint.Handle, chainOpts...)

	h := &routeHandler[Req, Resp]{
		app:   a,
		plan:  p,
		chain: chain,
		info: pipeline.Info{
			Name:    r.opts.Name,
			Group:   r.route.Group,
			Verb:    verb,
			Pattern: r.route.Pattern,
		},
	}
	if !r.opts.SkipValidation {
		h.validator = a.validator
	}
	if v, ok := r.endpoint.(RequestValidator[Req]); ok {
		h.endpointValidator = v
	}

	return &mountedRoute{
		name:       r.opts.Name,
		group:      r.route.Group,
		verb:       verb,
		pattern:    r.route.Pattern,
		stages:     chain.Stages(),
		middleware: r.opts.Middleware,
		handler:    h,
	}
}

// routeHandler serves one planned endpoint for one verb.
type routeHandler[Req, Resp any] struct {
	app               *App
	plan              *plan.Plan
	chain             *pipeline.Chain[Req, Resp]
	info              pipeline.Info
	validator         *validation.Validator
	endpointValidator RequestValidator[Req]
}

// ServeHTTP parses, validates and executes one call.
//
// A binding failure faults the call before any stage runs. A validation
// failure completes the call with a validation problem and bypasses the
// pipeline. Any other failure escapes to the application's fault boundary.
func (h *routeHandler[Req, Resp]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := pipeline.WithInfo(r.Context(), h.info)
	if h.app.tracer != nil {
		ctx = h.app.tracer.Extract(ctx, r.Header)
	}
	r = r.WithContext(ctx)
	call := h.chain.NewCall()

	in := binding.NewInputs(r, routeValues(r, h.plan.RouteParams), h.app.services, h.app.bindOpts...)
	args, err := h.plan.Gather(ctx, in)
	if err != nil {
		h.fail(w, r, call, err)
		return
	}
	captured, err := h.plan.FromArgs(args)
	if err != nil {
		h.fail(w, r, call, err)
		return
	}
	if err = call.Parsed(ctx); err != nil {
		h.fail(w, r, call, err)
		return
	}

	if verr := h.validate(ctx, captured); verr != nil {
		_ = call.Complete(ctx)
		h.app.problem(w, r, ValidationProblem(verr).(*Problem))
		return
	}
	if err = call.Validated(ctx); err != nil {
		h.fail(w, r, call, err)
		return
	}

	params, err := h.plan.Params(args)
	if err != nil {
		h.fail(w, r, call, err)
		return
	}
	built, err := h.plan.FromParams(params)
	if err != nil {
		h.fail(w, r, call, err)
		return
	}
	req, ok := built.(Req)
	if !ok {
		h.fail(w, r, call, fmt.Errorf("%w: %T is not %v", ErrRequestType, built, reflect.TypeFor[Req]()))
		return
	}

	resp, err := call.Run(ctx, req)
	if err != nil {
		h.app.fault(w, r, err)
		return
	}
	h.app.respond(w, r, resp)
}

// validate runs the application validator, then the endpoint's own check.
func (h *routeHandler[Req, Resp]) validate(ctx context.Context, captured any) *validation.Error {
	if h.validator != nil && h.plan.Shape != plan.ShapeEmpty {
		if err := h.validator.Validate(ctx, captured); err != nil {
			return validation.Coerce(err)
		}
	}
	if h.endpointValidator != nil {
		req, _ := captured.(Req)
		if err := h.endpointValidator.Validate(ctx, req); err != nil {
			return validation.Coerce(err)
		}
	}
	return nil
}

func (h *routeHandler[Req, Resp]) fail(w http.ResponseWriter, r *http.Request, call *pipeline.Call[Req, Resp], err error) {
	_ = call.Fault(r.Context(), err)
	h.app.fault(w, r, err)
}

// routeValues reads the matched chi URL parameters named by the route template.
func routeValues(r *http.Request, names []string) map[string]string {
	if len(names) == 0 {
		return nil
	}
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	out := make(map[string]string, len(names))
	for _, name := range names {
		if v := rctx.URLParam(name); v != "" {
			out[name] = v
		}
	}
	return out
}
