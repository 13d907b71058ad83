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

package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rivaas.dev/endpoint/pipeline"
)

// ExampleCompose shows that stages run in ascending order around the handler.
func ExampleCompose() {
	trace := func(name string) pipeline.Stage[string, string] {
		return pipeline.StageFunc[string, string](func(ctx context.Context, req string, next pipeline.Next[string]) (string, error) {
			fmt.Println("enter", name)
			resp, err := next(ctx)
			fmt.Println("leave", name)
			return resp, err
		})
	}

	chain := pipeline.Compose([]pipeline.Entry[string, string]{
		{Descriptor: pipeline.Descriptor{Name: "validate", Order: 20}, Stage: trace("validate")},
		{Descriptor: pipeline.Descriptor{Name: "log", Order: 10}, Stage: trace("log")},
	}, func(_ context.Context, req string) (string, error) {
		fmt.Println("handle", req)
		return strings.ToUpper(req), nil
	})

	resp, err := chain.Execute(context.Background(), "ping")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println(resp)
	// Output:
	// enter log
	// enter validate
	// handle ping
	// leave validate
	// leave log
	// PING
}

// ExampleCompose_shortCircuit shows a stage answering without calling next.
func ExampleCompose_shortCircuit() {
	cached := pipeline.StageFunc[string, string](func(ctx context.Context, req string, next pipeline.Next[string]) (string, error) {
		if req == "hit" {
			return "from cache", nil
		}
		return next(ctx)
	})

	chain := pipeline.Compose([]pipeline.Entry[string, string]{
		{Descriptor: pipeline.Descriptor{Name: "cache"}, Stage: cached},
	}, func(_ context.Context, req string) (string, error) {
		return "from handler", nil
	})

	for _, req := range []string{"hit", "miss"} {
		resp, _ := chain.Execute(context.Background(), req)
		fmt.Printf("%s: %s\n", req, resp)
	}
	// Output:
	// hit: from cache
	// miss: from handler
}

// ExampleTyped adapts a stage written once for every endpoint type.
func ExampleTyped() {
	deny := pipeline.UntypedFunc(func(ctx context.Context, req any, next pipeline.Next[any]) (any, error) {
		if req == nil {
			return nil, errors.New("empty request")
		}
		return next(ctx)
	})

	chain := pipeline.Compose([]pipeline.Entry[*int, int]{
		{Descriptor: pipeline.Descriptor{Name: "deny"}, Stage: pipeline.Typed[*int, int](deny)},
	}, func(_ context.Context, req *int) (int, error) {
		return *req * 2, nil
	})

	n := 21
	resp, err := chain.Execute(context.Background(), &n)
	fmt.Println(resp, err)
	// Output: 42 <nil>
}

// ExampleWithObserver prints the lifecycle of one call.
func ExampleWithObserver() {
	observer := pipeline.ObserverFunc(func(_ context.Context, e pipeline.Event) {
		if e.State == pipeline.StateExecuting {
			fmt.Printf("%s %d %s\n", e.State, e.Stage, e.Name)
			return
		}
		fmt.Println(e.State)
	})

	pass := pipeline.StageFunc[string, string](func(ctx context.Context, _ string, next pipeline.Next[string]) (string, error) {
		return next(ctx)
	})

	chain := pipeline.Compose([]pipeline.Entry[string, string]{
		{Descriptor: pipeline.Descriptor{Name: "auth"}, Stage: pass},
	}, func(_ context.Context, req string) (string, error) {
		return req, nil
	}, pipeline.WithObserver(observer))

	ctx := context.Background()
	call := chain.NewCall()
	_ = call.Parsed(ctx)
	_ = call.Validated(ctx)
	_, _ = call.Run(ctx, "ok")
	// Output:
	// parsed
	// validated
	// executing 0 auth
	// executing 1 handler
	// completed
}
