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
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseString(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	ref := ulid.MustParse("01ARZ3NDEKTSV4RRFFQ69G5FAV")
	seven := 7

	tests := []struct {
		name    string
		raw     string
		typ     reflect.Type
		want    any
		wantErr bool
	}{
		{"string", "hello", reflect.TypeFor[string](), "hello", false},
		{"int", "42", reflect.TypeFor[int](), 42, false},
		{"int8 overflow", "300", reflect.TypeFor[int8](), nil, true},
		{"uint", "7", reflect.TypeFor[uint16](), uint16(7), false},
		{"float", "1.5", reflect.TypeFor[float64](), 1.5, false},
		{"bool yes", "yes", reflect.TypeFor[bool](), true, false},
		{"bool invalid", "maybe", reflect.TypeFor[bool](), nil, true},
		{"duration", "1m30s", reflect.TypeFor[time.Duration](), 90 * time.Second, false},
		{"date only", "2024-01-15", reflect.TypeFor[time.Time](), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), false},
		{"uuid", id.String(), reflect.TypeFor[uuid.UUID](), id, false},
		{"uuid invalid", "nope", reflect.TypeFor[uuid.UUID](), nil, true},
		{"ulid", ref.String(), reflect.TypeFor[ulid.ULID](), ref, false},
		{"ulid invalid", "01ARZ3NDEKTSV4RRFFQ69G5FA!", reflect.TypeFor[ulid.ULID](), nil, true},
		{"ip", "10.0.0.1", reflect.TypeFor[net.IP](), net.ParseIP("10.0.0.1"), false},
		{"pointer", "7", reflect.TypeFor[*int](), &seven, false},
		{"empty pointer stays nil", "", reflect.TypeFor[*int](), (*int)(nil), false},
		{"parser", "hello-world", reflect.TypeFor[slug](), slug("hello-world"), false},
		{"parser rejects", "hello world", reflect.TypeFor[slug](), nil, true},
		{"unsupported", "x", reflect.TypeFor[map[string]int](), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseString(tt.raw, tt.typ)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseValues_Slices(t *testing.T) {
	t.Parallel()

	v, err := parseValues([]string{"1", "2", "3"}, reflect.TypeFor[[]int](), defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, v.Interface())

	csv := defaultOptions()
	csv.SliceMode = SliceCSV
	v, err = parseValues([]string{"a, b,c"}, reflect.TypeFor[[]string](), csv)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, v.Interface())

	limited := defaultOptions()
	limited.maxSliceLen = 2
	_, err = parseValues([]string{"1", "2", "3"}, reflect.TypeFor[[]int](), limited)
	require.ErrorIs(t, err, ErrSliceExceedsMaxLength)

	_, err = parseValues([]string{"1", "x"}, reflect.TypeFor[[]int](), defaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element 1")
}

func TestTypedConverter(t *testing.T) {
	t.Parallel()

	type money struct{ Cents int64 }
	opts := applyOptions([]Option{
		WithTypedConverter(func(s string) (money, error) {
			return money{Cents: int64(len(s))}, nil
		}),
	})

	v, err := parseValue("abcd", reflect.TypeFor[money](), opts)
	require.NoError(t, err)
	assert.Equal(t, money{Cents: 4}, v.Interface())

	v, err = parseValue("ab", reflect.TypeFor[*money](), opts)
	require.NoError(t, err)
	assert.Equal(t, &money{Cents: 2}, v.Interface())
}

func TestParseBoolGenerous(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"true", "1", "YES", "on", "t", "y"} {
		b, err := parseBoolGenerous(s)
		require.NoError(t, err, s)
		assert.True(t, b, s)
	}
	for _, s := range []string{"false", "0", "no", "OFF", "f", "n", ""} {
		b, err := parseBoolGenerous(s)
		require.NoError(t, err, s)
		assert.False(t, b, s)
	}
	_, err := parseBoolGenerous("perhaps")
	require.ErrorIs(t, err, ErrInvalidBooleanValue)
}
