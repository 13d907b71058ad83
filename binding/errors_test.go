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

//go:build !integration

package binding

import (
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *BindError
		contains []string
	}{
		{
			name:     "conversion failure with hint",
			err:      &BindError{Field: "id", Source: SourceRoute, Value: "1.5", Type: reflect.TypeFor[int](), Err: errors.New("invalid integer")},
			contains: []string{`binding field "id" (route)`, `failed to convert "1.5" to int`, "use float type"},
		},
		{
			name:     "reason",
			err:      &BindError{Field: "slug", Source: SourceQuery, Reason: "required value missing"},
			contains: []string{`binding field "slug" (query): required value missing`},
		},
		{
			name:     "bool hint",
			err:      &BindError{Field: "on", Source: SourceQuery, Value: "maybe", Type: reflect.TypeFor[bool](), Err: ErrInvalidBooleanValue},
			contains: []string{"accepted values"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for _, s := range tt.contains {
				assert.Contains(t, tt.err.Error(), s)
			}
		})
	}
}

func TestMultiError(t *testing.T) {
	t.Parallel()

	var m MultiError
	require.NoError(t, m.ErrorOrNil())

	first := &BindError{Field: "a", Source: SourceQuery, Reason: "bad"}
	m.Add(first)
	assert.Same(t, first, m.ErrorOrNil())

	m.Add(&MultiError{Errors: []*BindError{{Field: "b", Source: SourceHeader, Reason: "bad"}}})
	m.Add(errors.New("plain"))
	m.Add(nil)

	require.Len(t, m.Errors, 3)
	assert.Equal(t, "3 binding errors occurred", m.Error())
	assert.Equal(t, http.StatusBadRequest, m.HTTPStatus())
	assert.Equal(t, "multiple_binding_errors", m.Code())

	var be *BindError
	require.ErrorAs(t, m.ErrorOrNil(), &be)
	assert.Equal(t, "a", be.Field)

	details, ok := m.Details().([]map[string]string)
	require.True(t, ok)
	assert.Equal(t, "header", details[1]["source"])
}
