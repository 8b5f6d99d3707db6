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

/*
Package tracing wires OpenTelemetry spans for clappia runs.

The node starts a "clappia.execute" span per execution and a "clappia.item"
span per input item. This package supplies the tracer they use: an SDK
tracer provider tagged with the service name and version, exporting to a
console writer.

# Quick Start

	provider, err := tracing.NewProvider(tracing.Config{
	    ServiceName:    "clappia",
	    ServiceVersion: version,
	    Writer:         os.Stderr,
	    PrettyPrint:    true,
	})
	if err != nil {
	    return err
	}
	defer provider.Shutdown(ctx)

	n, err := node.New(t, node.WithTracer(provider.Tracer("clappia/node")))

# Sampling

Config.SampleRate below 1.0 samples that fraction of root spans. Child
spans follow their parent's decision so an execution is exported whole or
not at all.
*/
package tracing
