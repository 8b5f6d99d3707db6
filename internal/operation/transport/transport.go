// Package transport provides the protocol-level abstraction the Clappia node
// sends its requests through.
//
// The transport layer separates protocol concerns (URL validation, headers,
// status classification) from operation concerns (parameter resolution,
// request bodies, response shaping). The node depends only on the Transport
// interface so hosts and tests can substitute their own HTTP stack.
package transport

import (
	"context"
)

// Transport executes requests with protocol-specific handling.
type Transport interface {
	// Execute sends a request and returns a response.
	// The context controls cancellation and deadlines.
	// Returns *TransportError on failure, including non-2xx responses.
	Execute(ctx context.Context, req *Request) (*Response, error)

	// Name returns the transport identifier (e.g., "http").
	Name() string
}

// Request represents a transport-agnostic request.
type Request struct {
	// Method is the HTTP method (GET, POST, ...)
	// Required, must be non-empty
	Method string

	// URL is the full request URL
	// Required, must be valid per RFC 3986
	URL string

	// Headers are request headers (case-insensitive)
	// Optional, may be nil or empty map
	Headers map[string]string

	// Body is the request body
	// Optional, may be nil or empty slice
	Body []byte
}

// SetHeader sets a header, allocating the header map on first use.
func (r *Request) SetHeader(key, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
}

// Response represents a transport-agnostic response.
type Response struct {
	// StatusCode is the HTTP status code
	StatusCode int

	// Headers contains response headers
	Headers map[string][]string

	// Body is the response body
	Body []byte

	// Metadata contains transport-specific data (e.g., request ID)
	Metadata map[string]interface{}
}

// Standard metadata keys used across transports
const (
	// MetadataRequestID is the service request ID
	MetadataRequestID = "request_id"

	// MetadataBody holds the raw body of an error response
	MetadataBody = "body"

	// MetadataRetryAfter holds the Retry-After header of an error response
	MetadataRetryAfter = "retry_after"
)
