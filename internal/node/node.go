// Package node runs Clappia submission operations over a stream of input items.
//
// A Node is configured once with a transport and executed many times. Each
// execution reads the resource and operation once, fetches credentials once
// and then issues one request per input item (at least one request when there
// is no input).
package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/conductor-clappia/internal/integration/clappia"
	clog "github.com/tombee/conductor-clappia/internal/log"
	"github.com/tombee/conductor-clappia/internal/operation/transport"
)

// TracerName is the instrumentation scope of spans emitted by the node.
const TracerName = "github.com/tombee/conductor-clappia/internal/node"

// ErrParameterNotSet is returned by a ParameterResolver for absent parameters.
var ErrParameterNotSet = errors.New("parameter not set")

// ParameterResolver resolves node parameters for an input item.
// Nested values are addressed with dotted names such as "fields.field".
type ParameterResolver interface {
	Parameter(name string, itemIndex int) (any, error)
}

// CredentialSource supplies the credentials of one execution.
type CredentialSource interface {
	Credentials(ctx context.Context) (clappia.Credentials, error)
}

// Node executes Clappia operations.
type Node struct {
	transport transport.Transport
	baseURL   string
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *Metrics
}

// Option configures a Node.
type Option func(*Node)

// WithLogger sets the node's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Node) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithBaseURL overrides the Clappia API base URL.
func WithBaseURL(baseURL string) Option {
	return func(n *Node) {
		n.baseURL = baseURL
	}
}

// WithTracer sets the tracer used for execution and item spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(n *Node) {
		if tracer != nil {
			n.tracer = tracer
		}
	}
}

// WithMetrics sets the collectors the node records into.
func WithMetrics(m *Metrics) Option {
	return func(n *Node) {
		if m != nil {
			n.metrics = m
		}
	}
}

// New creates a Node that sends requests through t.
func New(t transport.Transport, opts ...Option) (*Node, error) {
	if t == nil {
		return nil, fmt.Errorf("node: transport is required")
	}

	n := &Node{
		transport: t,
		baseURL:   clappia.DefaultBaseURL,
		logger:    slog.Default(),
		tracer:    otel.Tracer(TracerName),
		metrics:   DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = clog.WithComponent(n.logger, "node")
	return n, nil
}
