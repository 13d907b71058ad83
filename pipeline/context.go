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

package pipeline

import "context"

type infoKey struct{}

// Info identifies the endpoint a call belongs to. The route adapter stores
// it in the call context so stages serving many endpoints can label their
// output.
type Info struct {
	Name    string // Endpoint type name
	Group   string // Endpoint group, "" when ungrouped
	Verb    string // HTTP method of the matched route
	Pattern string // Route pattern as registered
}

// WithInfo returns a child context carrying info.
func WithInfo(ctx context.Context, info Info) context.Context {
	return context.WithValue(ctx, infoKey{}, info)
}

// InfoFrom returns the endpoint info stored in ctx.
func InfoFrom(ctx context.Context) (Info, bool) {
	info, ok := ctx.Value(infoKey{}).(Info)
	return info, ok
}
