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

// Package requestid provides HTTP middleware that gives every request an ID
// for log correlation.
//
// By default UUID v7 is used; the IDs are time-ordered and sort
// lexicographically. [WithULID] switches to the shorter ULID form:
//
//   - UUID v7 (default): 018f3e9a-1b2c-7def-8000-abcdef123456 (36 chars)
//   - ULID: 01ARZ3NDEKTSV4RRFFQ69G5FAV (26 chars)
//
// An ID sent by the client in the X-Request-ID header is kept unless
// [WithAllowClientID] is false. The ID is echoed in the response header and
// read back anywhere below the middleware with [Get]:
//
//	logger.Info("processing request", semconv.RequestID, requestid.Get(ctx))
package requestid
