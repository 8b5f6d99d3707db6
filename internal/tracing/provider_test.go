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
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestProvider_RecordsServiceResource(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	p, err := newProvider(Config{ServiceName: "clappia", ServiceVersion: "1.2.3"}, sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, err)
	defer p.Shutdown(context.Background())

	ctx, parent := p.Tracer("test").Start(context.Background(), "clappia.execute")
	_, child := p.Tracer("test").Start(ctx, "clappia.item")
	child.End()
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "clappia.item", spans[0].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())

	attrs := spans[1].Resource().Attributes()
	assert.Contains(t, attrs, semconv.ServiceName("clappia"))
	assert.Contains(t, attrs, semconv.ServiceVersion("1.2.3"))
}

func TestProvider_ConsoleExport(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewProvider(Config{ServiceName: "clappia", Writer: &buf})
	require.NoError(t, err)

	_, span := p.Tracer("test").Start(context.Background(), "clappia.execute")
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"clappia.execute"`)
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		rate    float64
		records bool
	}{
		{rate: 1.0, records: true},
		{rate: 2.0, records: true},
		{rate: 0.0, records: false},
		{rate: -1, records: false},
	}

	for _, tt := range tests {
		exporter := tracetest.NewInMemoryExporter()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(NewSampler(tt.rate)), sdktrace.WithSyncer(exporter))

		_, span := tp.Tracer("test").Start(context.Background(), "root")
		span.End()

		assert.Equal(t, tt.records, len(exporter.GetSpans()) == 1, "rate %v", tt.rate)
		_ = tp.Shutdown(context.Background())
	}
}

func TestNewProvider_ZeroRateMeansAll(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	p, err := newProvider(Config{}, sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, err)

	_, span := p.Tracer("test").Start(context.Background(), "root")
	span.End()

	assert.Len(t, recorder.Ended(), 1)
}
