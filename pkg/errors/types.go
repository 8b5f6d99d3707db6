// Copyright 2025 Tom Barlow
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

package errors

import (
	"fmt"
)

// ValidationError reports a node parameter or input item that cannot be used.
// Field is the parameter name as written in the catalog, dotted for nested
// collection values (e.g. "fields.field").
type ValidationError struct {
	Field      string
	Message    string
	Suggestion string
	Cause      error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid parameter: " + e.Message
	}
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// ConfigError reports a settings file or credential setup problem.
// Key is the settings key or credential name involved.
type ConfigError struct {
	Key    string
	Reason string
	Cause  error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return "config: " + e.Reason
	}
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
