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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  prefix: /api
  groups:
    Admin: /admin
logging:
  level: debug
  format: text
  redact_keys: password,token
errors:
  format: simple
planner:
  strict_primitive_body: true
  record_policy: verb
  concurrency: 4
validation:
  strategy: tags
  max_errors: 5
stages:
  Logging:
    order: -100
  timeout:
    timeout: 2s
orders:
  page_limit: "25"
  cache_ttl: 90s
`

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "rfc9457", cfg.Errors.Format)
	assert.Equal(t, "parameters", cfg.Planner.RecordPolicy)
	assert.Equal(t, "auto", cfg.Validation.Strategy)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxBodySize)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Content(t *testing.T) {
	t.Parallel()

	cfg, err := Load(WithContent([]byte(sampleYAML)))
	require.NoError(t, err)

	assert.Equal(t, "/api", cfg.Server.Prefix)
	assert.Equal(t, "/admin", cfg.GroupPrefix("admin"))
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, []string{"password", "token"}, cfg.Logging.RedactKeys)
	assert.Equal(t, "simple", cfg.Errors.Format)
	assert.True(t, cfg.Planner.StrictPrimitiveBody)
	assert.Equal(t, "verb", cfg.Planner.RecordPolicy)
	assert.Equal(t, 4, cfg.Planner.Concurrency)
	assert.Equal(t, "tags", cfg.Validation.Strategy)
	assert.Equal(t, 5, cfg.Validation.MaxErrors)

	logging, ok := cfg.Stage("logging")
	require.True(t, ok)
	require.NotNil(t, logging.Order)
	assert.Equal(t, -100, *logging.Order)

	timeout, ok := cfg.Stage("Timeout")
	require.True(t, ok)
	assert.Nil(t, timeout.Order)
	assert.Equal(t, 2*time.Second, timeout.Timeout)

	_, ok = cfg.Stage("metrics")
	assert.False(t, ok)
}

func TestLoad_DefaultsFillGaps(t *testing.T) {
	t.Parallel()

	cfg, err := Load(WithContent([]byte("logging:\n  service: orders\n")))
	require.NoError(t, err)

	assert.Equal(t, "orders", cfg.Logging.Service)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "rfc9457", cfg.Errors.Format)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "endpoint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := Load(WithFile(path))
	require.NoError(t, err)
	assert.Equal(t, "/api", cfg.Server.Prefix)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Load(WithFile(missing))
	require.Error(t, err)
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "load", cfgErr.Operation)

	cfg, err := Load(WithOptionalFile(missing))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EmptyPath(t *testing.T) {
	t.Parallel()

	_, err := Load(WithFile("  "))
	require.ErrorIs(t, err, ErrEmptyPath)
}

//nolint:paralleltest // mutates the process environment
func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("CFGTEST_LOGGING__LEVEL", "warn")
	t.Setenv("CFGTEST_PLANNER__LENIENT_CUSTOM_PARSE", "true")
	t.Setenv("CFGTEST_STAGES__METRICS__ORDER", "7")
	t.Setenv("CFGTEST_SERVER__TIME_LAYOUTS", "2006-01-02,02/01/2006")

	cfg, err := Load(WithContent([]byte(sampleYAML)), WithEnv("CFGTEST_"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.True(t, cfg.Planner.LenientCustomParse)
	assert.Equal(t, []string{"2006-01-02", "02/01/2006"}, cfg.Server.TimeLayouts)

	metrics, ok := cfg.Stage("metrics")
	require.True(t, ok)
	require.NotNil(t, metrics.Order)
	assert.Equal(t, 7, *metrics.Order)
}

//nolint:paralleltest // mutates the process environment
func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DOTENVTEST_ERRORS__BASE_URL=https://errors.example.com/\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("DOTENVTEST_ERRORS__BASE_URL") })

	cfg, err := Load(WithDotEnv(path), WithEnv("DOTENVTEST_"))
	require.NoError(t, err)
	assert.Equal(t, "https://errors.example.com/", cfg.Errors.BaseURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := Load(
		WithContent([]byte(sampleYAML)),
		WithOverrides(Config{Logging: LoggingConfig{Level: "error"}}),
	)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format, "zero override fields keep loaded values")
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{name: "level", yaml: "logging:\n  level: loud\n", field: "logging.level"},
		{name: "format", yaml: "logging:\n  format: xml\n", field: "logging.format"},
		{name: "error format", yaml: "errors:\n  format: jsonapi\n", field: "errors.format"},
		{name: "record policy", yaml: "planner:\n  record_policy: always\n", field: "planner.record_policy"},
		{name: "concurrency", yaml: "planner:\n  concurrency: -1\n", field: "planner.concurrency"},
		{name: "strategy", yaml: "validation:\n  strategy: magic\n", field: "validation.strategy"},
		{name: "stage timeout", yaml: "stages:\n  timeout:\n    timeout: -1s\n", field: "stages.timeout.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(WithContent([]byte(tt.yaml)))
			require.Error(t, err)

			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Equal(t, "validate", cfgErr.Operation)
		})
	}
}

func TestLoad_BadDuration(t *testing.T) {
	t.Parallel()

	_, err := Load(WithContent([]byte("stages:\n  timeout:\n    timeout: soon\n")))
	require.Error(t, err)

	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "bind", cfgErr.Operation)
}

func TestGet(t *testing.T) {
	t.Parallel()

	cfg := MustLoad(WithContent([]byte(sampleYAML)))

	assert.Equal(t, 25, Get[int](cfg, "orders.page_limit"))
	assert.Equal(t, "25", Get[string](cfg, "orders.page_limit"))
	assert.Equal(t, 90*time.Second, Get[time.Duration](cfg, "orders.cache_ttl"))
	assert.Equal(t, 0, Get[int](cfg, "orders.missing"))
	assert.Equal(t, 10, GetOr(cfg, "orders.missing", 10))
	assert.Equal(t, 25, GetOr(cfg, "Orders.Page_Limit", 10))
	assert.Contains(t, cfg.Keys(), "orders.page_limit")

	_, err := GetE[int](cfg, "orders.missing")
	require.ErrorIs(t, err, ErrKeyNotFound)

	_, err = GetE[int](cfg, "logging.format")
	require.Error(t, err)

	var nilCfg *Config
	assert.Equal(t, 3, GetOr(nilCfg, "anything", 3))
}

func TestError(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")

	err := NewError("source[0] a.yaml", "load", base)
	assert.Equal(t, "config error in source[0] a.yaml during load: boom", err.Error())
	require.ErrorIs(t, err, base)

	fieldErr := NewFieldError("config", "logging.level", "validate", base)
	assert.Equal(t, "config error in config.logging.level during validate: boom", fieldErr.Error())
}
