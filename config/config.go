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

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/v2"

	apperrors "rivaas.dev/endpoint/errors"
	"rivaas.dev/endpoint/logging"
	"rivaas.dev/endpoint/plan"
	"rivaas.dev/endpoint/validation"
)

// DefaultEnvPrefix is the environment variable prefix used by [WithEnv]
// when called with an empty prefix.
const DefaultEnvPrefix = "SLIM_"

// Config is the file and environment configuration of an endpoint application.
//
// Fields left empty after loading take the value of their default tag.
// Boolean settings are phrased so that false is the default.
type Config struct {
	Server     ServerConfig           `koanf:"server"`
	Logging    LoggingConfig          `koanf:"logging"`
	Errors     ErrorsConfig           `koanf:"errors"`
	Planner    PlannerConfig          `koanf:"planner"`
	Validation ValidationConfig       `koanf:"validation"`
	Stages     map[string]StageConfig `koanf:"stages"`

	k *koanf.Koanf
}

// ServerConfig holds route mounting settings.
type ServerConfig struct {
	Prefix      string            `koanf:"prefix"`
	Groups      map[string]string `koanf:"groups"` // group name -> mount prefix
	MaxBodySize int64             `koanf:"max_body_size" default:"10485760"`
	TimeLayouts []string          `koanf:"time_layouts"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level       string   `koanf:"level" default:"info"`
	Format      string   `koanf:"format" default:"json"`
	Service     string   `koanf:"service"`
	Version     string   `koanf:"version"`
	Environment string   `koanf:"environment"`
	RedactKeys  []string `koanf:"redact_keys"`
}

// ErrorsConfig selects the problem formatter.
type ErrorsConfig struct {
	Format         string `koanf:"format" default:"rfc9457"`
	BaseURL        string `koanf:"base_url"`
	DisableErrorID bool   `koanf:"disable_error_id"`
}

// PlannerConfig holds request planning policies.
type PlannerConfig struct {
	LenientCustomParse  bool   `koanf:"lenient_custom_parse"`
	StrictPrimitiveBody bool   `koanf:"strict_primitive_body"`
	RecordPolicy        string `koanf:"record_policy" default:"parameters"`
	Concurrency         int    `koanf:"concurrency"`
}

// ValidationConfig holds request validation settings.
type ValidationConfig struct {
	Disabled  bool   `koanf:"disabled"`
	Strategy  string `koanf:"strategy" default:"auto"`
	RunAll    bool   `koanf:"run_all"`
	MaxErrors int    `koanf:"max_errors"`
}

// StageConfig overrides the settings of one named stage.
type StageConfig struct {
	Order    *int          `koanf:"order"`
	Disabled bool          `koanf:"disabled"`
	Timeout  time.Duration `koanf:"timeout"`
}

// Stage returns the override for the named stage.
func (c *Config) Stage(name string) (StageConfig, bool) {
	if c == nil {
		return StageConfig{}, false
	}
	s, ok := c.Stages[strings.ToLower(name)]
	return s, ok
}

// GroupPrefix returns the mount prefix configured for group, or "" when none is.
func (c *Config) GroupPrefix(group string) string {
	if c == nil {
		return ""
	}
	return c.Server.Groups[strings.ToLower(group)]
}

// Default returns a configuration holding only default values.
func Default() *Config {
	c := &Config{k: koanf.New(".")}
	if err := applyDefaults(c); err != nil {
		panic(fmt.Sprintf("config: invalid default tag: %v", err))
	}
	return c
}

// Load reads configuration from the given sources, in order, later sources
// overriding earlier ones. Dotenv files are read before any source so that
// their variables are visible to [WithEnv].
//
// Example:
//
//	cfg, err := config.Load(
//	    config.WithDotEnv(),
//	    config.WithFile("endpoint.yaml"),
//	    config.WithEnv("SLIM_"),
//	)
func Load(opts ...Option) (*Config, error) {
	l := &loader{}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	if err := l.loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	for i, s := range l.sources {
		if err := k.Load(s.provider, s.parser); err != nil {
			if s.optional && isNotExist(err) {
				continue
			}
			return nil, NewError(fmt.Sprintf("source[%d] %s", i, s.name), "load", err)
		}
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag:           "koanf",
		DecoderConfig: decoderConfig(cfg),
	}); err != nil {
		return nil, NewError("koanf", "bind", err)
	}

	for _, o := range l.overrides {
		if err := mergo.Merge(cfg, o, mergo.WithOverride); err != nil {
			return nil, NewError("overrides", "merge", err)
		}
	}

	if err := applyDefaults(cfg); err != nil {
		return nil, NewError("defaults", "bind", err)
	}
	cfg.normalize()
	cfg.k = k

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is like [Load] but panics on error.
func MustLoad(opts ...Option) *Config {
	cfg, err := Load(opts...)
	if err != nil {
		panic(fmt.Sprintf("config.MustLoad: %v", err))
	}
	return cfg
}

// Validate checks every enumerated setting.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, NewFieldError("config", "logging.level", "validate", err))
	}
	switch logging.HandlerType(c.Logging.Format) {
	case logging.JSONHandler, logging.TextHandler:
	default:
		errs = append(errs, NewFieldError("config", "logging.format", "validate",
			fmt.Errorf("%w: %q", ErrUnknownValue, c.Logging.Format)))
	}
	if _, err := apperrors.New(c.Errors.Format, c.Errors.BaseURL); err != nil {
		errs = append(errs, NewFieldError("config", "errors.format", "validate", err))
	}
	if _, err := plan.ParseRecordPolicy(c.Planner.RecordPolicy); err != nil {
		errs = append(errs, NewFieldError("config", "planner.record_policy", "validate", err))
	}
	if c.Planner.Concurrency < 0 {
		errs = append(errs, NewFieldError("config", "planner.concurrency", "validate",
			fmt.Errorf("%w: %d", ErrNegative, c.Planner.Concurrency)))
	}
	if _, err := validation.ParseStrategy(c.Validation.Strategy); err != nil {
		errs = append(errs, NewFieldError("config", "validation.strategy", "validate", err))
	}
	if c.Validation.MaxErrors < 0 {
		errs = append(errs, NewFieldError("config", "validation.max_errors", "validate",
			fmt.Errorf("%w: %d", ErrNegative, c.Validation.MaxErrors)))
	}
	if c.Server.MaxBodySize < 0 {
		errs = append(errs, NewFieldError("config", "server.max_body_size", "validate",
			fmt.Errorf("%w: %d", ErrNegative, c.Server.MaxBodySize)))
	}
	for name, s := range c.Stages {
		if s.Timeout < 0 {
			errs = append(errs, NewFieldError("config", "stages."+name+".timeout", "validate",
				fmt.Errorf("%w: %s", ErrNegative, s.Timeout)))
		}
	}
	return errors.Join(errs...)
}

// normalize lowercases the map keys looked up by name.
func (c *Config) normalize() {
	if len(c.Stages) > 0 {
		stages := make(map[string]StageConfig, len(c.Stages))
		for name, s := range c.Stages {
			stages[strings.ToLower(name)] = s
		}
		c.Stages = stages
	}
	if len(c.Server.Groups) > 0 {
		groups := make(map[string]string, len(c.Server.Groups))
		for name, prefix := range c.Server.Groups {
			groups[strings.ToLower(name)] = prefix
		}
		c.Server.Groups = groups
	}
}

// decoderConfig mirrors the koanf defaults and adds the duration and
// comma-separated list hooks.
func decoderConfig(result any) *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		Result:           result,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	}
}
