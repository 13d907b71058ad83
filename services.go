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

package endpoint

import (
	"reflect"
	"sync"
)

// Services is a type-keyed service provider. Request fields tagged
// `service:""` are resolved from it by their declared type.
//
// Services is safe for concurrent use.
type Services struct {
	mu sync.RWMutex
	m  map[reflect.Type]any
}

// NewServices creates an empty provider.
func NewServices() *Services {
	return &Services{m: make(map[reflect.Type]any)}
}

// Provide registers v under T, replacing any earlier value.
//
// Example:
//
//	endpoint.Provide[Clock](app.Services(), systemClock{})
func Provide[T any](s *Services, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[reflect.TypeFor[T]()] = v
}

// Resolve implements binding.ServiceResolver.
func (s *Services) Resolve(t reflect.Type) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[t]
	return v, ok
}
