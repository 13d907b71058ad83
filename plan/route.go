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

import "strings"

// RouteParams returns the placeholder names of a route template in order.
// Both "{id}" and chi's "{id:[0-9]+}" forms are recognized; the catch-all
// "*" is not a placeholder.
func RouteParams(route string) []string {
	var params []string
	for {
		start := strings.IndexByte(route, '{')
		if start == -1 {
			return params
		}
		end := matchingBrace(route, start)
		if end == -1 {
			return params
		}

		name := route[start+1 : end]
		if i := strings.IndexByte(name, ':'); i != -1 {
			name = name[:i]
		}
		if name = strings.TrimSpace(name); name != "" {
			params = append(params, name)
		}
		route = route[end+1:]
	}
}

// HasPlaceholder reports whether a route template declares any placeholder.
func HasPlaceholder(route string) bool {
	return strings.Contains(route, "{")
}

// matchingBrace returns the index of the brace closing the one at start,
// allowing nested braces inside regular expressions.
func matchingBrace(s string, start int) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// declares reports whether params contains name, ignoring case.
func declares(params []string, name string) bool {
	for _, p := range params {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}
