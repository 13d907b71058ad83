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

package plan

import (
	"context"
	"reflect"

	"golang.org/x/sync/errgroup"

	"rivaas.dev/endpoint/diag"
)

// Target identifies one request type to plan.
type Target struct {
	Type  reflect.Type
	Verb  string
	Route string
}

// Batch is the outcome of [Planner.PlanBatch].
type Batch struct {
	// Plans is index-aligned with the targets; failed targets hold nil.
	Plans []*Plan

	// Report holds the diagnostics of every target, sorted.
	Report diag.Report
}

// Failed returns the indices of targets that could not be planned.
func (b *Batch) Failed() []int {
	var out []int
	for i, p := range b.Plans {
		if p == nil {
			out = append(out, i)
		}
	}
	return out
}

// PlanBatch plans every target in parallel. A configuration error in one
// target excludes only that target; the returned error is non-nil only when
// ctx is done before every target was planned.
func (pl *Planner) PlanBatch(ctx context.Context, targets []Target) (*Batch, error) {
	plans := make([]*Plan, len(targets))
	reports := make([]diag.Report, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	if pl.concurrency > 0 {
		g.SetLimit(pl.concurrency)
	}

	for i, t := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			plans[i], reports[i] = pl.plan(t.Type, t.Verb, t.Route)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := &Batch{Plans: plans}
	for _, r := range reports {
		b.Report.Add(r...)
	}
	b.Report.Sort()
	return b, nil
}
