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

// Package endpoint mounts typed request handlers on a chi router.
//
// An endpoint is a type with a Handle(ctx, Req) (Resp, error) method. The
// request type is a struct whose fields declare where their values come
// from with struct tags:
//
//	type UpdateItemRequest struct {
//	    ID     int        `path:"id"`
//	    Values ItemValues `body:""`
//	    Trace  string     `header:"X-Trace"`
//	}
//
// # Lifecycle
//
// [Register] records an endpoint. [App.Build] classifies and plans every
// request type once, in parallel; a request type with configuration errors
// is reported and skipped while the other endpoints are built. [App.Mount]
// then registers the planned routes on a chi router.
//
//	app := endpoint.MustNew(endpoint.WithLogger(logger))
//	app.Use(stages.Recovery(logger), stages.Logging(logger))
//
//	endpoint.Register(app, endpoint.Route{Pattern: "/items/{id}", Verbs: []string{"PUT"}}, &UpdateItem{})
//
//	report, err := app.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range report.Errors() {
//	    log.Println(d)
//	}
//
//	r := chi.NewRouter()
//	_ = app.Mount(r)
//	http.ListenAndServe(":8080", r)
//
// # Calls
//
// Each call gathers its inputs, assembles the request following the plan,
// validates it and runs the endpoint's stage chain around Handle:
//
//   - Binding failures answer 400 before any stage runs.
//   - Validation failures answer 422 with a validation problem and bypass
//     the chain.
//   - Any fault is rendered once by the configured error formatter.
//
// Endpoints declaring [Result] as their response type control the status
// and headers, and may return a [*Problem]. A [Unit] response answers 204.
//
// # Stages
//
// Stages added with [App.Use] apply to every endpoint whose response type
// they accept; [WithStage] adds stages to one endpoint. Stages run in
// ascending order, ties in declaration order. Orders, timeouts and
// disabled stages can be overridden by name through [WithConfig].
package endpoint
