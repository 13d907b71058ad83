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
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"rivaas.dev/endpoint/binding"
	"rivaas.dev/endpoint/config"
	"rivaas.dev/endpoint/diag"
	riverrors "rivaas.dev/endpoint/errors"
	"rivaas.dev/endpoint/logging"
	"rivaas.dev/endpoint/metrics"
	"rivaas.dev/endpoint/middleware/requestid"
	"rivaas.dev/endpoint/pipeline"
	"rivaas.dev/endpoint/plan"
	"rivaas.dev/endpoint/stages"
	"rivaas.dev/endpoint/telemetry/semconv"
	"rivaas.dev/endpoint/tracing"
	"rivaas.dev/endpoint/validation"
)

// App collects endpoint registrations, plans them at [App.Build] and mounts
// the planned endpoints on a chi router.
//
// Registration and Build are not meant to run concurrently with serving;
// mounted handlers are safe for concurrent use.
type App struct {
	mu sync.Mutex

	logger      *logging.Logger
	formatter   riverrors.Formatter
	planner     *plan.Planner
	validator   *validation.Validator
	codecs      *binding.Registry
	bindOpts    []binding.Option
	services    *Services
	tracer      *tracing.Tracer
	metrics     *metrics.Recorder
	metricsPath string
	prefix      string
	groups      map[string]string
	requestID   []requestid.Option
	overrides   map[string]config.StageConfig

	stages []*stages.Stage
	regs   []endpointRegistration
	routes []*mountedRoute
	report diag.Report
	built  bool
}

// endpointRegistration is the untyped view of a [Register] call.
type endpointRegistration interface {
	requestType() reflect.Type
	routeSpec() Route
	name() string
	compose(a *App, verb string, p *plan.Plan) *mountedRoute
}

// mountedRoute is one planned endpoint for one verb.
type mountedRoute struct {
	name       string
	group      string
	verb       string
	pattern    string
	stages     []pipeline.Descriptor
	middleware []func(http.Handler) http.Handler
	handler    http.Handler
}

// RouteInfo describes a planned route.
type RouteInfo struct {
	Name    string
	Group   string
	Method  string
	Pattern string
	Stages  []pipeline.Descriptor // Execution order
}

// New creates an App.
//
// Example:
//
//	app, err := endpoint.New(
//	    endpoint.WithLogger(logger),
//	    endpoint.WithGroupPrefix("admin", "/admin"),
//	)
func New(opts ...Option) (*App, error) {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg != nil {
		if err := s.applyConfig(s.cfg); err != nil {
			return nil, err
		}
	}

	a := &App{
		logger:      s.logger,
		formatter:   s.formatter,
		planner:     plan.New(s.plannerOpts...),
		validator:   s.validator,
		codecs:      s.codecs,
		bindOpts:    s.bindOpts,
		services:    s.services,
		tracer:      s.tracer,
		metrics:     s.metrics,
		metricsPath: s.metricsPath,
		prefix:      s.prefix,
		groups:      s.groups,
		requestID:   s.requestID,
	}
	if s.cfg != nil {
		a.overrides = s.cfg.Stages
	}

	if a.logger == nil {
		a.logger = logging.Noop()
	}
	if a.formatter == nil {
		a.formatter = riverrors.NewRFC9457("")
	}
	if a.validator == nil && !s.skipValidation {
		a.validator = validation.MustNew()
	}
	if s.skipValidation {
		a.validator = nil
	}
	if a.codecs == nil {
		a.codecs = DefaultCodecs()
	}
	a.bindOpts = append(a.bindOpts, binding.WithCodecs(a.codecs))
	if a.services == nil {
		a.services = NewServices()
	}

	return a, nil
}

// MustNew is like [New] but panics on error.
func MustNew(opts ...Option) *App {
	a, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("endpoint: app initialization failed: %v", err))
	}
	return a
}

// applyConfig fills every setting not given as an explicit option.
func (s *settings) applyConfig(cfg *config.Config) error {
	if s.logger == nil {
		logger, err := loggerFromConfig(cfg.Logging)
		if err != nil {
			return fmt.Errorf("logging: %w", err)
		}
		s.logger = logger
	}

	if s.formatter == nil {
		f, err := riverrors.New(cfg.Errors.Format, cfg.Errors.BaseURL)
		if err != nil {
			return fmt.Errorf("errors: %w", err)
		}
		if p, ok := f.(*riverrors.RFC9457); ok {
			p.DisableErrorID = cfg.Errors.DisableErrorID
		}
		s.formatter = f
	}

	policy, err := plan.ParseRecordPolicy(cfg.Planner.RecordPolicy)
	if err != nil {
		return fmt.Errorf("planner: %w", err)
	}
	s.plannerOpts = append([]plan.Option{
		plan.WithLenientCustomParse(cfg.Planner.LenientCustomParse),
		plan.WithStrictPrimitiveBody(cfg.Planner.StrictPrimitiveBody),
		plan.WithRecordPolicy(policy),
		plan.WithConcurrency(cfg.Planner.Concurrency),
	}, s.plannerOpts...)

	if cfg.Validation.Disabled {
		s.skipValidation = true
	} else if s.validator == nil {
		strategy, err := validation.ParseStrategy(cfg.Validation.Strategy)
		if err != nil {
			return fmt.Errorf("validation: %w", err)
		}
		vopts := []validation.Option{validation.WithStrategy(strategy), validation.WithRunAll(cfg.Validation.RunAll)}
		if cfg.Validation.MaxErrors > 0 {
			vopts = append(vopts, validation.WithMaxErrors(cfg.Validation.MaxErrors))
		}
		v, err := validation.New(vopts...)
		if err != nil {
			return fmt.Errorf("validation: %w", err)
		}
		s.validator = v
	}

	bindOpts := []binding.Option{binding.WithMaxBodySize(cfg.Server.MaxBodySize)}
	if len(cfg.Server.TimeLayouts) > 0 {
		bindOpts = append(bindOpts, binding.WithTimeLayouts(cfg.Server.TimeLayouts...))
	}
	s.bindOpts = append(bindOpts, s.bindOpts...)

	if s.prefix == "" {
		s.prefix = cfg.Server.Prefix
	}
	for group, prefix := range cfg.Server.Groups {
		if _, ok := s.groups[group]; ok {
			continue
		}
		if s.groups == nil {
			s.groups = make(map[string]string)
		}
		s.groups[group] = prefix
	}
	return nil
}

func loggerFromConfig(c config.LoggingConfig) (*logging.Logger, error) {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := []logging.Option{
		logging.WithHandlerType(logging.HandlerType(c.Format)),
		logging.WithLevel(level),
		logging.WithServiceName(c.Service),
		logging.WithServiceVersion(c.Version),
		logging.WithEnvironment(c.Environment),
	}
	if len(c.RedactKeys) > 0 {
		opts = append(opts, logging.WithRedactKeys(c.RedactKeys...))
	}
	return logging.New(opts...)
}

// Use adds stages to every endpoint whose response type the stage accepts.
//
// Example:
//
//	app.Use(
//	    stages.Recovery(logger),
//	    stages.Logging(logger),
//	    endpoint.ValidationStage(5, nil),
//	)
func (a *App) Use(s ...*stages.Stage) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stages = append(a.stages, s...)
}

// Services returns the provider for service-tagged request fields.
func (a *App) Services() *Services {
	return a.services
}

// Logger returns the application logger.
func (a *App) Logger() *logging.Logger {
	return a.logger
}

func (a *App) register(r endpointRegistration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.built {
		a.logger.Error("endpoint registration ignored", semconv.EndpointName, r.name(), semconv.Error, ErrRegistrationClosed)
		return
	}
	a.regs = append(a.regs, r)
}

// Build plans every registered endpoint in parallel and composes its chain.
// A request type with configuration errors is left out and reported; the
// other endpoints are still built. The returned error is non-nil only when
// ctx ends before planning completes.
//
// Build runs once; later calls return the first report.
func (a *App) Build(ctx context.Context) (diag.Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.built {
		return a.report, nil
	}

	type owner struct {
		reg  endpointRegistration
		verb string
	}
	var (
		targets []plan.Target
		owners  []owner
	)
	for _, reg := range a.regs {
		route := reg.routeSpec()
		for _, verb := range route.methods() {
			targets = append(targets, plan.Target{Type: reg.requestType(), Verb: verb, Route: route.Pattern})
			owners = append(owners, owner{reg: reg, verb: verb})
		}
	}

	batch, err := a.planner.PlanBatch(ctx, targets)
	if err != nil {
		return nil, fmt.Errorf("planning endpoints: %w", err)
	}

	// Classification findings repeat for every verb of a type.
	report := slices.Compact(batch.Report)
	for _, d := range report {
		attrs := []any{"code", string(d.Code), "type", d.Type, "property", d.Property}
		if d.IsError() {
			a.logger.Error(d.Message, attrs...)
		} else {
			a.logger.Warn(d.Message, attrs...)
		}
	}

	for i, p := range batch.Plans {
		o := owners[i]
		if p == nil {
			a.logger.Error("endpoint skipped", semconv.EndpointName, o.reg.name(), semconv.HTTPMethod, o.verb, semconv.HTTPRoute, o.reg.routeSpec().Pattern)
			continue
		}
		a.routes = append(a.routes, o.reg.compose(a, o.verb, p))
	}

	a.report = report
	a.built = true
	a.logger.Info("endpoints built", "routes", len(a.routes), "skipped", len(batch.Failed()))
	return report, nil
}

// Report returns the diagnostics of the last Build.
func (a *App) Report() diag.Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.report
}

// Routes describes the planned routes in registration order.
func (a *App) Routes() []RouteInfo {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]RouteInfo, 0, len(a.routes))
	for _, r := range a.routes {
		out = append(out, RouteInfo{
			Name:    r.name,
			Group:   r.group,
			Method:  r.verb,
			Pattern: r.pattern,
			Stages:  slices.Clone(r.stages),
		})
	}
	return out
}

// Mount registers every planned endpoint on r, each under its group's
// prefix. Every route gets the request ID middleware.
//
// Example:
//
//	if _, err := app.Build(ctx); err != nil {
//	    return err
//	}
//	r := chi.NewRouter()
//	if err := app.Mount(r); err != nil {
//	    return err
//	}
func (a *App) Mount(r chi.Router) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.built {
		return ErrNotBuilt
	}

	a.mountRoutes(r, a.routes, a.groupPrefix)
	if a.metricsPath != "" && a.metrics != nil {
		if h := a.metrics.Handler(); h != nil {
			r.Method(http.MethodGet, a.metricsPath, h)
		}
	}
	return nil
}

// MountGroup registers the planned endpoints of group on r under prefix,
// regardless of configured prefixes.
func (a *App) MountGroup(r chi.Router, group, prefix string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.built {
		return ErrNotBuilt
	}

	var routes []*mountedRoute
	for _, rt := range a.routes {
		if rt.group == group {
			routes = append(routes, rt)
		}
	}
	a.mountRoutes(r, routes, func(string) string { return prefix })
	return nil
}

// Handler builds the App when needed and returns a new chi router with
// every endpoint mounted.
func (a *App) Handler(ctx context.Context) (http.Handler, error) {
	if _, err := a.Build(ctx); err != nil {
		return nil, err
	}
	r := chi.NewRouter()
	if err := a.Mount(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (a *App) mountRoutes(r chi.Router, routes []*mountedRoute, prefixOf func(group string) string) {
	r.Group(func(g chi.Router) {
		g.Use(requestid.New(a.requestID...))
		for _, rt := range routes {
			path := joinPath(prefixOf(rt.group), rt.pattern)
			g.With(rt.middleware...).Method(rt.verb, path, rt.handler)
			a.logger.Debug("endpoint mounted", semconv.EndpointName, rt.name, semconv.HTTPMethod, rt.verb, semconv.HTTPRoute, path)
		}
	})
}

func (a *App) groupPrefix(group string) string {
	if group == "" {
		return a.prefix
	}
	if p, ok := a.groups[group]; ok {
		return p
	}
	if p, ok := a.groups[strings.ToLower(group)]; ok {
		return p
	}
	return a.prefix
}

func joinPath(prefix, pattern string) string {
	prefix = strings.TrimRight(prefix, "/")
	if !strings.HasPrefix(pattern, "/") {
		pattern = "/" + pattern
	}
	if prefix != "" && pattern == "/" {
		return prefix
	}
	return prefix + pattern
}

// chainStages returns the stages of one endpoint with configuration
// overrides applied: global stages first, then local ones, so that local
// stages run after global stages of the same order.
func (a *App) chainStages(local []*stages.Stage) []*stages.Stage {
	all := slices.Concat(a.stages, local)
	if sc, ok := a.override("timeout"); ok && sc.Timeout > 0 && !sc.Disabled &&
		!slices.ContainsFunc(all, func(s *stages.Stage) bool { return s.Name() == "timeout" }) {
		all = append(all, stages.Timeout(sc.Timeout))
	}

	out := make([]*stages.Stage, 0, len(all))
	for _, s := range all {
		sc, ok := a.override(s.Name())
		switch {
		case !ok:
			out = append(out, s)
		case sc.Disabled:
			continue
		case sc.Order != nil:
			out = append(out, s.With(stages.WithOrder(*sc.Order)))
		default:
			out = append(out, s)
		}
	}
	return out
}

// stageTimeout returns the configured deadline for a stage other than the
// timeout stage itself.
func (a *App) stageTimeout(name string) time.Duration {
	if name == "timeout" {
		return 0
	}
	sc, ok := a.override(name)
	if !ok {
		return 0
	}
	return sc.Timeout
}

func (a *App) override(name string) (config.StageConfig, bool) {
	if a.overrides == nil {
		return config.StageConfig{}, false
	}
	sc, ok := a.overrides[strings.ToLower(name)]
	return sc, ok
}

// Shutdown flushes the tracer and metrics recorder.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracing: %w", err))
		}
	}
	if a.metrics != nil {
		if err := a.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// fault renders err with the error formatter. Nothing has been written to
// w before it is called.
func (a *App) fault(w http.ResponseWriter, r *http.Request, err error) {
	resp := a.formatter.Format(r, err)

	cl := logging.NewContextLogger(r.Context(), a.logger)
	args := []any{
		semconv.HTTPMethod, r.Method,
		semconv.HTTPTarget, r.URL.Path,
		semconv.HTTPStatusCode, resp.Status,
		semconv.Error, err.Error(),
	}
	if id := requestid.Get(r.Context()); id != "" {
		args = append(args, semconv.RequestID, id)
	}
	if resp.Status >= http.StatusInternalServerError {
		cl.Error("handler error", args...)
	} else {
		cl.Warn("handler error", args...)
	}

	a.writeFormatted(w, resp)
}

// problem renders a problem result. Problems are answers, not faults, and
// are logged at debug level.
func (a *App) problem(w http.ResponseWriter, r *http.Request, p *Problem) {
	resp := a.formatter.Format(r, p)
	logging.NewContextLogger(r.Context(), a.logger).Debug("problem result",
		semconv.HTTPMethod, r.Method, semconv.HTTPTarget, r.URL.Path, semconv.HTTPStatusCode, resp.Status, semconv.Error, p.Error())
	a.writeFormatted(w, resp)
}

func (a *App) writeFormatted(w http.ResponseWriter, resp riverrors.Response) {
	h := w.Header()
	for k, vs := range resp.Headers {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	h.Set("Content-Type", resp.ContentType)
	w.WriteHeader(resp.Status)
	_ = binding.JSONCodec{}.Encode(w, resp.Body)
}

// respond writes a successful call's response.
func (a *App) respond(w http.ResponseWriter, r *http.Request, resp any) {
	switch v := resp.(type) {
	case nil, Unit, *Unit:
		w.WriteHeader(http.StatusNoContent)
	case *Problem:
		a.problem(w, r, v)
	case Result:
		maps.Copy(w.Header(), v.Header())
		body := v.Value()
		if body == nil {
			w.WriteHeader(v.Status())
			return
		}
		a.encode(w, r, v.Status(), body)
	default:
		a.encode(w, r, http.StatusOK, resp)
	}
}

// encode negotiates a codec from the Accept header and writes v. The body
// is encoded before the status is written so an encoding failure can still
// be reported as a fault.
func (a *App) encode(w http.ResponseWriter, r *http.Request, status int, v any) {
	codec := a.codecs.Negotiate(r.Header.Get("Accept"))

	var buf bytes.Buffer
	if err := codec.Encode(&buf, v); err != nil {
		a.fault(w, r, fmt.Errorf("encoding %s response: %w", codec.ContentType(), err))
		return
	}

	w.Header().Set("Content-Type", codec.ContentType())
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
