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

package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	PageSize int    `query:"page_size" validate:"gte=1"`
}

type lineItem struct {
	Price int `json:"price" validate:"gt=0"`
}

type order struct {
	Items []lineItem `json:"items" validate:"dive"`
}

type selfChecked struct {
	Name string
}

func (s selfChecked) Validate() error {
	if s.Name == "" {
		return FieldError{Path: "name", Code: "required", Message: "is required"}
	}
	return nil
}

type tenantKey struct{}

type tenantChecked struct {
	Tenant string
}

func (t *tenantChecked) ValidateContext(ctx context.Context) error {
	if want, _ := ctx.Value(tenantKey{}).(string); want != t.Tenant {
		return errors.New("tenant mismatch")
	}
	return nil
}

type schemaChecked struct {
	Name string `json:"name"`
}

func (schemaChecked) JSONSchema() (string, string) {
	return "schema-checked", `{
		"type": "object",
		"properties": {"name": {"type": "string", "minLength": 3}},
		"required": ["name"]
	}`
}

type bothChecked struct {
	Name string `json:"name" validate:"required"`
}

func (bothChecked) Validate() error {
	return errors.New("object rule")
}

func TestValidator_Tags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     any
		wantPaths []string
		wantCode  string
	}{
		{
			name:  "valid",
			value: &signup{Name: "alice", Email: "a@example.com", PageSize: 10},
		},
		{
			name:      "paths use request keys",
			value:     &signup{Name: "al", Email: "nope", PageSize: 0},
			wantPaths: []string{"email", "name", "page_size"},
		},
		{
			name:      "non-pointer value",
			value:     signup{Email: "a@example.com", PageSize: 1},
			wantPaths: []string{"name"},
			wantCode:  "tag.required",
		},
		{
			name:      "nested slice",
			value:     &order{Items: []lineItem{{Price: 1}, {Price: 0}}},
			wantPaths: []string{"items.1.price"},
			wantCode:  "tag.gt",
		},
	}

	v := MustNew()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.Validate(t.Context(), tt.value)
			if tt.wantPaths == nil {
				require.NoError(t, err)
				return
			}

			var verr *Error
			require.ErrorAs(t, err, &verr)
			paths := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				paths = append(paths, f.Path)
			}
			assert.Equal(t, tt.wantPaths, paths)
			if tt.wantCode != "" {
				assert.True(t, verr.HasCode(tt.wantCode))
			}
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestValidator_Options(t *testing.T) {
	t.Parallel()

	t.Run("max errors truncates", func(t *testing.T) {
		t.Parallel()
		v := MustNew(WithMaxErrors(2))
		err := v.Validate(t.Context(), &signup{})

		var verr *Error
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 2)
		assert.True(t, verr.Truncated)
		assert.Contains(t, verr.Error(), "(truncated)")
	})

	t.Run("custom messages", func(t *testing.T) {
		t.Parallel()
		v := MustNew(WithMessages(map[string]string{"required": "must be provided"}))
		err := v.Validate(t.Context(), &signup{Email: "a@example.com", PageSize: 1})

		var verr *Error
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "must be provided", verr.Fields[0].Message)
	})

	t.Run("redactor hides values", func(t *testing.T) {
		t.Parallel()
		type login struct {
			Password string `json:"password" validate:"min=8"`
		}
		v := MustNew(WithRedactor(func(path string) bool { return path == "password" }))
		err := v.Validate(t.Context(), &login{Password: "hunter"})

		var verr *Error
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, redacted, verr.Fields[0].Meta["value"])
	})

	t.Run("custom tag", func(t *testing.T) {
		t.Parallel()
		type counter struct {
			N int `json:"n" validate:"even"`
		}
		v := MustNew(WithCustomTag("even", func(fl validator.FieldLevel) bool {
			return fl.Field().Int()%2 == 0
		}))

		require.NoError(t, v.Validate(t.Context(), &counter{N: 2}))
		err := v.Validate(t.Context(), &counter{N: 3})

		var verr *Error
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.HasCode("tag.even"))
	})

	t.Run("field name mapper", func(t *testing.T) {
		t.Parallel()
		v := MustNew(WithFieldNameMapper(func(p string) string { return "body." + p }))
		err := v.Validate(t.Context(), &signup{Email: "a@example.com", PageSize: 1})

		var verr *Error
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.Has("body.name"))
	})

	t.Run("negative max errors", func(t *testing.T) {
		t.Parallel()
		_, err := New(WithMaxErrors(-1))
		require.Error(t, err)
	})
}

func TestValidator_Interface(t *testing.T) {
	t.Parallel()

	v := MustNew()

	err := v.Validate(t.Context(), selfChecked{})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("name"))

	require.NoError(t, v.Validate(t.Context(), selfChecked{Name: "x"}))

	ctx := context.WithValue(t.Context(), tenantKey{}, "acme")
	require.NoError(t, v.Validate(ctx, &tenantChecked{Tenant: "acme"}))

	err = v.Validate(ctx, tenantChecked{Tenant: "other"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "tenant mismatch", verr.Fields[0].Message)
	assert.Empty(t, verr.Fields[0].Path)
}

func TestValidator_JSONSchema(t *testing.T) {
	t.Parallel()

	v := MustNew()

	require.NoError(t, v.Validate(t.Context(), schemaChecked{Name: "alice"}))

	err := v.Validate(t.Context(), schemaChecked{Name: "al"})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("name"))

	// Second run is served from the schema cache.
	require.Error(t, v.Validate(t.Context(), &schemaChecked{Name: "b"}))

	err = v.Validate(t.Context(), &signup{Name: "alice", Email: "a@example.com", PageSize: 1},
		WithStrategy(StrategyJSONSchema),
		WithCustomSchema("", `{"type": "object", "required": ["missing"]}`))
	require.Error(t, err)
}

func TestValidator_RunAll(t *testing.T) {
	t.Parallel()

	v := MustNew()

	// Auto stops at the interface strategy.
	err := v.Validate(t.Context(), bothChecked{})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 1)

	err = v.Validate(t.Context(), bothChecked{}, WithRunAll(true))
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 2)
	assert.Empty(t, verr.Fields[0].Path)
	assert.Equal(t, "name", verr.Fields[1].Path)
}

func TestValidator_Nil(t *testing.T) {
	t.Parallel()

	v := MustNew()

	err := v.Validate(t.Context(), nil)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasCode("nil"))

	err = v.Validate(t.Context(), (*signup)(nil))
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasCode("nil_pointer"))
}

func TestValidate_Default(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate(t.Context(), &signup{Name: "alice", Email: "a@example.com", PageSize: 1}))
	require.Error(t, Validate(t.Context(), &signup{}))
}

func TestError(t *testing.T) {
	t.Parallel()

	var e Error
	e.Add("name", "tag.required", "is required", nil)
	e.Add("name", "tag.min", "must be at least 3 characters", nil)
	e.AddError(errors.New("object rule"))
	e.AddError(nil)

	assert.Equal(t, map[string][]string{
		"name": {"is required", "must be at least 3 characters"},
		"":     {"object rule"},
	}, e.ByField())
	assert.Equal(t, 422, e.HTTPStatus())
	assert.Equal(t, "validation_error", e.Code())
	assert.Contains(t, e.Error(), "validation failed: ")

	e.Sort()
	assert.Empty(t, e.Fields[0].Path)

	single := Error{Fields: []FieldError{{Path: "email", Message: "must be a valid email address"}}}
	assert.Equal(t, "email: must be a valid email address", single.Error())
}

func TestCoerce(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Coerce(nil))

	existing := &Error{Fields: []FieldError{{Path: "a"}}}
	assert.Same(t, existing, Coerce(existing))

	fe := Coerce(FieldError{Path: "b", Message: "bad"})
	require.Len(t, fe.Fields, 1)
	assert.Equal(t, "b", fe.Fields[0].Path)

	plain := Coerce(errors.New("boom"))
	require.Len(t, plain.Fields, 1)
	assert.Equal(t, "boom", plain.Fields[0].Message)
}
