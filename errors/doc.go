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

// Package errors formats endpoint faults as HTTP responses.
//
// Errors describe themselves through small interfaces: [ErrorType] for
// the status code, [ErrorCode] for a machine-readable code,
// [ErrorDetails] for structured details and [FieldProblems] for
// validation failures. Formatters read them with errors.As, so wrapped
// errors keep their meaning.
//
//	f := errors.NewRFC9457("https://api.example.com/problems")
//	resp := f.Format(req, err)
//
// [RFC9457] produces problem details with a random error_id for log
// correlation; [Simple] produces a plain JSON object.
package errors
