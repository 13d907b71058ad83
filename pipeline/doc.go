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

// Package pipeline composes ordered middleware stages around an endpoint
// handler and tracks the lifecycle of each call.
//
// Stages are sorted once by ascending order, ties kept in declaration
// order, and folded from the right so the first stage wraps all others:
//
//	stage(1) -> stage(2) -> handler -> stage(2) -> stage(1)
//
// A stage that returns without calling next short-circuits the chain.
// Each execution creates its own [Call], which moves through
// received, parsed, validated and executing(k) to completed or faulted.
// Composed chains are immutable and safe for concurrent use.
package pipeline
