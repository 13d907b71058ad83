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

// Package config loads the file and environment configuration of an
// endpoint application.
//
// Sources are merged in the order given, later sources overriding earlier
// ones. YAML files and the process environment are read through koanf;
// dotenv files are loaded into the environment first.
//
//	cfg, err := config.Load(
//	    config.WithDotEnv(),
//	    config.WithOptionalFile("endpoint.yaml"),
//	    config.WithEnv("SLIM_"),
//	)
//
// A complete file:
//
//	server:
//	  prefix: /api
//	  groups:
//	    admin: /admin
//	logging:
//	  level: debug
//	  format: text
//	errors:
//	  format: rfc9457
//	  base_url: https://errors.example.com/
//	planner:
//	  strict_primitive_body: true
//	  record_policy: verb
//	validation:
//	  strategy: tags
//	stages:
//	  logging:
//	    order: -100
//	  timeout:
//	    timeout: 2s
//
// The same settings as environment variables use a double underscore
// between nesting levels, for example SLIM_LOGGING__LEVEL=debug.
// Durations accept Go duration strings and lists accept comma-separated
// values.
//
// Settings not declared by [Config] remain reachable through [Get],
// [GetOr] and [GetE].
package config
