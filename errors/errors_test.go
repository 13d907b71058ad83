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

package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codedError struct {
	message string
	code    string
	status  int
}

func (e *codedError) Error() string { return e.message }
func (e *codedError) Code() string { return e.code }
func (e *codedError) HTTPStatus() int { return e.status }

type detailedError struct {
	message string
	details map[string]any
}

func (e *detailedError) Error() string { return e.message }
func (e *detailedError) Details() any { return e.details }

type fieldError struct {
	fields map[string][]string
}

func (e *fieldError) Error() string { return "validation failed" }
func (e *fieldError) HTTPStatus() int { return http.StatusUnprocessableEntity }
func (e *fieldError) ByField() map[string][]string { return e.fields }
func (e *fieldError) Details() any { return "unused" }

func decode(t *testing.T, body any) map[string]any {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestRFC9457_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		formatter  *RFC9457
		err        error
		wantStatus int
		wantType   string
		wantTitle  string
	}{
		{
			name:       "generic fault titled with its message",
			formatter:  NewRFC9457("https://api.example.com/problems"),
			err:        errors.New("database unavailable"),
			wantStatus: http.StatusInternalServerError,
			wantType:   "about:blank",
			wantTitle:  "database unavailable",
		},
		{
			name:       "coded error",
			formatter:  NewRFC9457("https://api.example.com/problems"),
			err:        &codedError{message: "bad input", code: "invalid_input", status: http.StatusBadRequest},
			wantStatus: http.StatusBadRequest,
			wantType:   "https://api.example.com/problems/invalid_input",
			wantTitle:  "bad input",
		},
		{
			name:       "coded error without base URL",
			formatter:  NewRFC9457(""),
			err:        &codedError{message: "gone", code: "gone", status: http.StatusGone},
			wantStatus: http.StatusGone,
			wantType:   "gone",
			wantTitle:  "gone",
		},
		{
			name:       "wrapped status",
			formatter:  NewRFC9457(""),
			err:        fmt.Errorf("lookup: %w", WithStatus(errors.New("order missing"), http.StatusNotFound)),
			wantStatus: http.StatusNotFound,
			wantType:   "about:blank",
			wantTitle:  "lookup: order missing",
		},
		{
			name:       "validation problem",
			formatter:  NewRFC9457(""),
			err:        &fieldError{fields: map[string][]string{"name": {"is required"}}},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   "about:blank",
			wantTitle:  ValidationTitle,
		},
		{
			name: "resolvers",
			formatter: &RFC9457{
				TypeResolver:   func(error) string { return "urn:problem:custom" },
				StatusResolver: func(error) int { return http.StatusTeapot },
			},
			err:        errors.New("x"),
			wantStatus: http.StatusTeapot,
			wantType:   "urn:problem:custom",
			wantTitle:  "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/orders/7", nil)
			resp := tt.formatter.Format(req, tt.err)

			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "application/problem+json; charset=utf-8", resp.ContentType)

			body := decode(t, resp.Body)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, tt.wantTitle, body["title"])
			assert.InDelta(t, float64(tt.wantStatus), body["status"], 0)
			assert.Equal(t, "/orders/7", body["instance"])
		})
	}
}

func TestRFC9457_Extensions(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/users", nil)

	t.Run("error id is a uuid", func(t *testing.T) {
		t.Parallel()
		body := decode(t, NewRFC9457("").Format(req, errors.New("x")).Body)
		id, ok := body["error_id"].(string)
		require.True(t, ok)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
	})

	t.Run("error id can be disabled or generated", func(t *testing.T) {
		t.Parallel()
		body := decode(t, (&RFC9457{DisableErrorID: true}).Format(req, errors.New("x")).Body)
		assert.NotContains(t, body, "error_id")

		body = decode(t, (&RFC9457{ErrorIDGenerator: func() string { return "fixed" }}).Format(req, errors.New("x")).Body)
		assert.Equal(t, "fixed", body["error_id"])
	})

	t.Run("validation fields", func(t *testing.T) {
		t.Parallel()
		err := &fieldError{fields: map[string][]string{"email": {"is required"}}}
		body := decode(t, NewRFC9457("").Format(req, err).Body)
		assert.Equal(t, map[string]any{"email": []any{"is required"}}, body["errors"])
	})

	t.Run("details and code", func(t *testing.T) {
		t.Parallel()
		body := decode(t, NewRFC9457("").Format(req, &detailedError{message: "x", details: map[string]any{"k": "v"}}).Body)
		assert.Equal(t, map[string]any{"k": "v"}, body["errors"])

		body = decode(t, NewRFC9457("").Format(req, &codedError{message: "x", code: "c", status: 409}).Body)
		assert.Equal(t, "c", body["code"])
	})

	t.Run("extensions cannot override members", func(t *testing.T) {
		t.Parallel()
		p := ProblemDetail{Type: "about:blank", Title: "t", Status: 400, Extensions: map[string]any{"status": 999, "extra": true}}
		body := decode(t, p)
		assert.InDelta(t, 400.0, body["status"], 0)
		assert.Equal(t, true, body["extra"])
		assert.NotContains(t, body, "detail")
	})
}

func TestSimple_Format(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	resp := NewSimple().Format(req, &codedError{message: "conflict", code: "dup", status: http.StatusConflict})
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, "application/json; charset=utf-8", resp.ContentType)
	body := decode(t, resp.Body)
	assert.Equal(t, "conflict", body["error"])
	assert.Equal(t, "dup", body["code"])

	resp = NewSimple().Format(req, &fieldError{fields: map[string][]string{"a": {"bad"}}})
	body = decode(t, resp.Body)
	assert.Equal(t, map[string]any{"a": []any{"bad"}}, body["details"])

	resp = (&Simple{StatusResolver: func(error) int { return http.StatusBadGateway }}).Format(req, errors.New("x"))
	assert.Equal(t, http.StatusBadGateway, resp.Status)
}

func TestNew(t *testing.T) {
	t.Parallel()

	f, err := New("", "https://example.com")
	require.NoError(t, err)
	assert.IsType(t, &RFC9457{}, f)

	f, err = New("simple", "")
	require.NoError(t, err)
	assert.IsType(t, &Simple{}, f)

	_, err = New("xml", "")
	require.Error(t, err)
}

func TestWithStatus(t *testing.T) {
	t.Parallel()

	base := errors.New("missing")
	err := WithStatus(base, http.StatusNotFound)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "missing", err.Error())

	assert.Equal(t, "No Content", WithStatus(nil, http.StatusNoContent).Error())
}
