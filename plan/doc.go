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

// Package plan decides how a request value is assembled from the inputs of
// an HTTP call.
//
// A [Planner] turns a classified request type, an HTTP verb and a route
// template into an immutable [Plan]. The plan fixes the [Shape]:
//
//   - [ShapeEmpty]: the request has no properties.
//   - [ShapeSingleParameterObject]: record-kind requests (declared as struct
//     values) bind as one object whose properties come from their own
//     sources; reference-kind requests (pointers) on POST, PUT or PATCH
//     without route placeholders or per-field tags decode from the body.
//   - [ShapeFlatParameters]: every property is its own parameter. A single
//     structured body property decodes from the whole body.
//   - [ShapeSplitWithAuxiliaryBody]: body properties are grouped into an
//     auxiliary object, either a reused embedded type or a synthesized one
//     named <Request>Body.
//
// Each plan carries an ordered list of [Slot] values and two constructions
// that share one slot to property mapping: [Plan.FromArgs] for positional
// captures and [Plan.FromParams] for named ones.
//
//	planner := plan.New()
//	p, err := planner.Plan(reflect.TypeFor[*UpdateRequest](), "POST", "/update/{id}")
//	args, err := p.Gather(ctx, binding.NewInputs(r, params, nil))
//	req, err := p.FromArgs(args)
//
// Configuration errors are reported as [*diag.Error]. [Planner.PlanBatch]
// plans many types in parallel and keeps going past failing ones.
package plan
