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
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Provider owns an SDK tracer provider and its exporter.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// NewProvider creates a tracer provider exporting to cfg.Writer.
// Extra options are applied after the defaults, so a test can add its own
// span processor.
func NewProvider(cfg Config, opts ...sdktrace.TracerProviderOption) (*Provider, error) {
	exporter, err := NewConsoleExporter(cfg)
	if err != nil {
		return nil, err
	}
	return newProvider(cfg, append([]sdktrace.TracerProviderOption{sdktrace.WithBatcher(exporter)}, opts...)...)
}

func newProvider(cfg Config, opts ...sdktrace.TracerProviderOption) (*Provider, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultConfig().ServiceName
	}
	rate := cfg.SampleRate
	if rate == 0 {
		rate = 1.0
	}

	// empty schema URL avoids a conflict with resource.Default()
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	allOpts := append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(NewSampler(rate)),
	}, opts...)

	return &Provider{tp: sdktrace.NewTracerProvider(allOpts...)}, nil
}

// NewConsoleExporter creates a span exporter writing JSON to cfg.Writer.
func NewConsoleExporter(cfg Config) (sdktrace.SpanExporter, error) {
	writer := cfg.Writer
	if writer == nil {
		writer = os.Stderr
	}

	opts := []stdouttrace.Option{stdouttrace.WithWriter(writer)}
	if cfg.PrettyPrint {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}

	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create console exporter: %w", err)
	}
	return exporter, nil
}

// Tracer returns a tracer for the given instrumentation scope.
func (p *Provider) Tracer(name string) trace.Tracer {
	return p.tp.Tracer(name)
}

// Shutdown flushes pending spans and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.tp.Shutdown(ctx)
}
