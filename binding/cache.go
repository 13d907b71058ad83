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

package binding

import (
	"fmt"
	"maps"
	"reflect"
	"sync"
	"sync/atomic"
)

var (
	// RCU pattern: atomic pointer to immutable map
	classificationCachePtr atomic.Pointer[map[reflect.Type]*Classification]

	// Write-side lock (only for cache updates)
	classificationCacheMu sync.Mutex
)

func init() {
	m := make(map[reflect.Type]*Classification)
	classificationCachePtr.Store(&m)
}

// getClassification retrieves or computes the classification of a struct type.
// It uses a read-copy-update pattern: reads are lock-free and concurrent
// callers classifying the same type only walk it once.
func getClassification(typ reflect.Type) *Classification {
	m := classificationCachePtr.Load()
	if c, ok := (*m)[typ]; ok {
		return c
	}

	classificationCacheMu.Lock()
	defer classificationCacheMu.Unlock()

	// Double-check: another goroutine might have populated it
	m = classificationCachePtr.Load()
	if c, ok := (*m)[typ]; ok {
		return c
	}

	c := classify(typ)

	// Copy-on-write
	newMap := make(map[reflect.Type]*Classification, len(*m)+1)
	maps.Copy(newMap, *m)
	newMap[typ] = c

	classificationCachePtr.Store(&newMap)

	return c
}

// WarmupCache classifies request types ahead of the first request.
// Values that are not structs or pointers to structs are skipped.
//
// Example:
//
//	binding.WarmupCache(UpdateRequest{}, SearchRequest{})
func WarmupCache(values ...any) {
	for _, v := range values {
		typ := reflect.TypeOf(v)
		if typ == nil {
			continue
		}
		typ = unwrapNullable(typ)
		if typ.Kind() != reflect.Struct {
			continue
		}
		getClassification(typ)
	}
}

// MustWarmupCache is like [WarmupCache] but panics on values that cannot be classified.
func MustWarmupCache(values ...any) {
	for _, v := range values {
		if _, err := Classify(reflect.TypeOf(v)); err != nil {
			panic(fmt.Sprintf("binding: MustWarmupCache: %v", err))
		}
	}
}

// cacheLen reports the number of classified types (tests only).
func cacheLen() int {
	return len(*classificationCachePtr.Load())
}
