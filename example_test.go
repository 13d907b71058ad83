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

package endpoint_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"rivaas.dev/endpoint"
)

type ItemValues struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

type UpdateItemRequest struct {
	ID     int        `path:"id"`
	Values ItemValues `body:""`
}

type Item struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

type BrokenRequest struct {
	ID int `path:"id" query:"id"`
}

type Clock interface{ Now() time.Time }

type StaticClock time.Time

func (c StaticClock) Now() time.Time { return time.Time(c) }

type TodayRequest struct {
	Clock Clock `service:""`
}

// ExampleRegister serves an endpoint that binds the route id and the JSON body.
func ExampleRegister() {
	app := endpoint.MustNew()
	endpoint.Register(app, endpoint.Route{Pattern: "/items/{id}", Verbs: []string{http.MethodPut}},
		endpoint.HandlerFunc[*UpdateItemRequest, Item](func(_ context.Context, req *UpdateItemRequest) (Item, error) {
			return Item{ID: req.ID, Name: req.Values.Name, Price: req.Values.Price}, nil
		}))

	h, err := app.Handler(context.Background())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	r := httptest.NewRequest(http.MethodPut, "/items/7", strings.NewReader(`{"name":"lamp","price":12}`))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	fmt.Println(w.Code, strings.TrimSpace(w.Body.String()))
	// Output: 200 {"id":7,"name":"lamp","price":12}
}

// ExampleApp_Build reports a misdeclared request type and still builds the rest.
func ExampleApp_Build() {
	app := endpoint.MustNew()
	endpoint.Register(app, endpoint.Route{Pattern: "/broken/{id}"},
		endpoint.HandlerFunc[*BrokenRequest, endpoint.Unit](func(context.Context, *BrokenRequest) (endpoint.Unit, error) {
			return endpoint.Unit{}, nil
		}))
	endpoint.Register(app, endpoint.Route{Pattern: "/items/{id}", Verbs: []string{"put"}},
		endpoint.HandlerFunc[*UpdateItemRequest, Item](func(context.Context, *UpdateItemRequest) (Item, error) {
			return Item{}, nil
		}))

	report, err := app.Build(context.Background())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	for _, d := range report {
		fmt.Println(d.Code, d.Severity, d.Type, d.Property)
	}
	for _, r := range app.Routes() {
		fmt.Println(r.Method, r.Pattern, r.Name)
	}
	// Output:
	// SEI004 error BrokenRequest ID
	// PUT /items/{id} UpdateItemRequest
}

// ExampleProvide injects a service into a request field.
func ExampleProvide() {
	app := endpoint.MustNew()
	endpoint.Provide[Clock](app.Services(), StaticClock(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)))
	endpoint.Register(app, endpoint.Route{Pattern: "/today"},
		endpoint.HandlerFunc[*TodayRequest, string](func(_ context.Context, req *TodayRequest) (string, error) {
			return req.Clock.Now().Format(time.DateOnly), nil
		}))

	h, err := app.Handler(context.Background())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/today", nil))

	fmt.Println(w.Code, strings.TrimSpace(w.Body.String()))
	// Output: 200 "2025-03-14"
}
