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
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Option configures [Load].
type Option func(l *loader) error

type source struct {
	name     string
	provider koanf.Provider
	parser   koanf.Parser
	optional bool
}

type loader struct {
	sources   []source
	dotenv    []string
	useDotEnv bool
	overrides []*Config
}

// WithFile adds a YAML file source. Paths support environment variable
// expansion using ${VAR} or $VAR syntax.
func WithFile(path string) Option {
	return func(l *loader) error {
		if strings.TrimSpace(path) == "" {
			return ErrEmptyPath
		}
		path = os.ExpandEnv(path)
		l.sources = append(l.sources, source{name: path, provider: file.Provider(path), parser: yaml.Parser()})
		return nil
	}
}

// WithOptionalFile is like [WithFile] but skips the file when it does not exist.
func WithOptionalFile(path string) Option {
	return func(l *loader) error {
		if err := WithFile(path)(l); err != nil {
			return err
		}
		l.sources[len(l.sources)-1].optional = true
		return nil
	}
}

// WithContent adds raw YAML content as a source.
func WithContent(data []byte) Option {
	return func(l *loader) error {
		l.sources = append(l.sources, source{name: "content", provider: bytesProvider(data), parser: yaml.Parser()})
		return nil
	}
}

// WithEnv adds the environment as a source. Only variables starting with
// prefix are read; the prefix is stripped, the rest lowercased and a double
// underscore separates nesting levels:
//
//	SLIM_PLANNER__STRICT_PRIMITIVE_BODY=true  ->  planner.strict_primitive_body
//	SLIM_STAGES__LOGGING__ORDER=10            ->  stages.logging.order
func WithEnv(prefix string) Option {
	return func(l *loader) error {
		if prefix == "" {
			prefix = DefaultEnvPrefix
		}
		l.sources = append(l.sources, source{
			name:     "env:" + prefix,
			provider: env.Provider(prefix, ".", envKey(prefix)),
		})
		return nil
	}
}

// WithDotEnv loads dotenv files into the process environment before any
// source is read. Without paths it reads ".env" when present. Variables
// already set in the environment are kept.
func WithDotEnv(paths ...string) Option {
	return func(l *loader) error {
		l.useDotEnv = true
		l.dotenv = append(l.dotenv, paths...)
		return nil
	}
}

// WithOverrides merges programmatic settings over the loaded ones.
// Non-zero fields of o win.
func WithOverrides(o Config) Option {
	return func(l *loader) error {
		l.overrides = append(l.overrides, &o)
		return nil
	}
}

func (l *loader) loadDotEnv() error {
	if !l.useDotEnv {
		return nil
	}
	if len(l.dotenv) == 0 {
		if err := godotenv.Load(); err != nil && !isNotExist(err) {
			return NewError(".env", "load", err)
		}
		return nil
	}
	if err := godotenv.Load(l.dotenv...); err != nil {
		return NewError(strings.Join(l.dotenv, ","), "load", err)
	}
	return nil
}

func envKey(prefix string) func(string) string {
	return func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, prefix))
		return strings.ReplaceAll(s, "__", ".")
	}
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// bytesProvider serves raw bytes to a koanf parser.
type bytesProvider []byte

func (b bytesProvider) ReadBytes() ([]byte, error) {
	return b, nil
}

func (b bytesProvider) Read() (map[string]any, error) {
	return nil, errors.New("config: content source requires a parser")
}
