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

// Package stages provides pipeline stages shared across endpoints.
//
// A [Stage] serves endpoints of any request type. Registered globally, it
// joins the chain of every endpoint whose response type it accepts, at the
// position given by its order:
//
//	Recovery  -1000   panics become faults
//	Tracing    -900   server span around the call
//	Metrics    -800   call duration and outcome
//	Logging    -700   entry and exit log lines
//	Timeout    -600   deadline for the rest of the call
//	Validate   -100   request validation with short-circuit
//
// Orders are overridden with [WithOrder]; custom stages are built with [New].
// [Entry] adapts a stage to one endpoint's types.
package stages
