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

package plan_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"

	"rivaas.dev/endpoint/binding"
	"rivaas.dev/endpoint/plan"
)

type GetItem struct {
	ID      int  `path:"id"`
	Verbose bool `query:"verbose"`
}

type CreateItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type RenameItem struct {
	ID   int      `path:"id"`
	Name string   `body:"name"`
	Tags []string `body:"tags"`
}

// ExamplePlanner_Plan shows the shape chosen for three request types.
func ExamplePlanner_Plan() {
	planner := plan.New()

	targets := []struct {
		typ   reflect.Type
		verb  string
		route string
	}{
		{reflect.TypeFor[*GetItem](), http.MethodGet, "/items/{id}"},
		{reflect.TypeFor[*CreateItem](), http.MethodPost, "/items"},
		{reflect.TypeFor[*RenameItem](), http.MethodPost, "/items/{id}/rename"},
	}

	for _, tt := range targets {
		p, err := planner.Plan(tt.typ, tt.verb, tt.route)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println(p)
		for _, d := range p.Diagnostics {
			fmt.Printf("  %s %s %s\n", d.Code, d.Severity, d.Property)
		}
	}
	// Output:
	// GetItem GET /items/{id}: FlatParameters [id, verbose]
	// CreateItem POST /items: SingleParameterObject(FromBody) [request]
	// RenameItem POST /items/{id}/rename: SplitWithAuxiliaryBody [id, body]
	//   SEI003 warning Name
}

// ExamplePlan_Gather binds a request from route values and a JSON body.
func ExamplePlan_Gather() {
	p, err := plan.New().Plan(reflect.TypeFor[*RenameItem](), http.MethodPost, "/items/{id}/rename")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	r := httptest.NewRequest(http.MethodPost, "/items/9/rename", strings.NewReader(`{"name":"lamp","tags":["desk","led"]}`))
	r.Header.Set("Content-Type", "application/json")

	args, err := p.Gather(context.Background(), binding.NewInputs(r, map[string]string{"id": "9"}, nil))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	req, err := p.FromArgs(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	item := req.(*RenameItem)
	fmt.Printf("ID: %d, Name: %s, Tags: %v\n", item.ID, item.Name, item.Tags)
	fmt.Println("aux:", p.Aux.Name)
	// Output:
	// ID: 9, Name: lamp, Tags: [desk led]
	// aux: RenameItemBody
}

// ExamplePlan_FromParams builds the same request from named and positional captures.
func ExamplePlan_FromParams() {
	p, err := plan.New().Plan(reflect.TypeFor[*GetItem](), http.MethodGet, "/items/{id}")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	params := map[string]any{"id": 3, "verbose": true}
	named, err := p.FromParams(params)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	args, err := p.Args(params)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	positional, err := p.FromArgs(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("%+v\n", *named.(*GetItem))
	fmt.Println(args, reflect.DeepEqual(named, positional))
	// Output:
	// {ID:3 Verbose:true}
	// [3 true] true
}

// ExampleRouteParams lists the placeholders of a route template.
func ExampleRouteParams() {
	fmt.Println(plan.RouteParams("/orgs/{org}/items/{id:[0-9]+}/*"))
	// Output: [org id]
}
