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

package tracing

import (
	"io"
)

// Config holds tracing configuration.
type Config struct {
	// ServiceName identifies this program in exported spans.
	ServiceName string

	// ServiceVersion is the application version.
	ServiceVersion string

	// Writer receives exported spans (default: os.Stderr).
	Writer io.Writer

	// PrettyPrint indents exported spans.
	PrettyPrint bool

	// SampleRate is the fraction of executions to trace (0.0 - 1.0).
	// Zero means the default of 1.0.
	SampleRate float64
}

// DefaultConfig returns a Config that exports every span to stderr.
func DefaultConfig() Config {
	return Config{
		ServiceName: "clappia",
		SampleRate:  1.0,
		PrettyPrint: true,
	}
}
