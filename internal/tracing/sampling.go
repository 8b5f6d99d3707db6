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
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewSampler returns a parent-based sampler for rate. Root spans are sampled
// at rate; children inherit the decision.
func NewSampler(rate float64) sdktrace.Sampler {
	var root sdktrace.Sampler
	switch {
	case rate <= 0.0:
		root = sdktrace.NeverSample()
	case rate >= 1.0:
		root = sdktrace.AlwaysSample()
	default:
		root = sdktrace.TraceIDRatioBased(rate)
	}
	return sdktrace.ParentBased(root)
}
