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

package endpoint

import "errors"

var (
	// ErrNotBuilt is returned by Mount before a successful [App.Build].
	ErrNotBuilt = errors.New("endpoints are not built")

	// ErrRegistrationClosed is reported when an endpoint is registered after Build.
	ErrRegistrationClosed = errors.New("endpoint registered after build")

	// ErrRequestType is returned when an assembled request does not have the
	// endpoint's request type.
	ErrRequestType = errors.New("assembled request has the wrong type")
)
