package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the client timeout used when the config leaves it unset.
const DefaultTimeout = 30 * time.Second

// HTTPTransport implements the Transport interface for HTTP/HTTPS requests.
// Requests are sent exactly once; failed requests are reported, never retried.
type HTTPTransport struct {
	config *HTTPTransportConfig
	client *http.Client
	logger *slog.Logger
}

// HTTPTransportConfig configures the HTTP transport.
type HTTPTransportConfig struct {
	// Timeout is the request timeout (default: 30s)
	Timeout time.Duration

	// Headers are default headers applied to all requests
	Headers map[string]string

	// UserAgent is sent when a request does not set its own User-Agent
	UserAgent string

	// TLSInsecure disables TLS certificate validation (default: false)
	// WARNING: Only use for development/testing
	TLSInsecure bool

	// Client overrides the underlying HTTP client (used by tests)
	Client *http.Client

	// Logger receives request logs (default: slog.Default())
	Logger *slog.Logger
}

// Validate checks if the configuration is valid.
func (c *HTTPTransportConfig) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got %v", c.Timeout)
	}
	return nil
}

// NewHTTPTransport creates a new HTTP transport with the given configuration.
func NewHTTPTransport(config *HTTPTransportConfig) (*HTTPTransport, error) {
	if config == nil {
		config = &HTTPTransportConfig{}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	client := config.Client
	if client == nil {
		client = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				// Connection pool settings
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,

				// Timeouts
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,

				TLSClientConfig: &tls.Config{
					MinVersion:         tls.VersionTLS12,
					InsecureSkipVerify: config.TLSInsecure,
				},
			},
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPTransport{
		config: config,
		client: client,
		logger: logger,
	}, nil
}

// Name returns "http".
func (t *HTTPTransport) Name() string {
	return "http"
}

// Execute sends an HTTP request and returns the response.
// Responses with a status outside 2xx are returned as *TransportError.
func (t *HTTPTransport) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := t.validateRequest(req); err != nil {
		return nil, &TransportError{
			Type:    ErrorTypeInvalidReq,
			Message: fmt.Sprintf("invalid request: %s", err.Error()),
			Cause:   err,
		}
	}

	httpReq, err := t.buildHTTPRequest(ctx, req)
	if err != nil {
		return nil, &TransportError{
			Type:    ErrorTypeInvalidReq,
			Message: fmt.Sprintf("failed to build HTTP request: %s", err.Error()),
			Cause:   err,
		}
	}

	start := time.Now()
	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		t.logger.WarnContext(ctx, "http request failed",
			"method", req.Method,
			"url", sanitizeURL(httpReq.URL),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err.Error(),
		)
		return nil, classifyHTTPError(ctx, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{
			Type:    ErrorTypeConnection,
			Message: fmt.Sprintf("failed to read response body: %s", err.Error()),
			Cause:   err,
		}
	}

	level := slog.LevelDebug
	if httpResp.StatusCode >= 300 {
		level = slog.LevelWarn
	}
	t.logger.Log(ctx, level, "http request",
		"method", req.Method,
		"url", sanitizeURL(httpReq.URL),
		"status", httpResp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
		Metadata:   make(map[string]interface{}),
	}

	if requestID := httpResp.Header.Get("X-Request-ID"); requestID != "" {
		resp.Metadata[MetadataRequestID] = requestID
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		if retryAfter := httpResp.Header.Get("Retry-After"); retryAfter != "" {
			resp.Metadata[MetadataRetryAfter] = retryAfter
		}
		return nil, classifyHTTPStatusError(httpResp.StatusCode, body, resp.Metadata)
	}

	return resp, nil
}

// validateRequest checks if the request is valid.
func (t *HTTPTransport) validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("request is nil")
	}

	if req.Method == "" {
		return fmt.Errorf("method is required")
	}

	validMethods := map[string]bool{
		"GET": true, "POST": true, "PUT": true, "DELETE": true,
		"PATCH": true, "HEAD": true, "OPTIONS": true,
	}
	if !validMethods[req.Method] {
		return fmt.Errorf("invalid HTTP method: %q", req.Method)
	}

	if req.URL == "" {
		return fmt.Errorf("URL is required")
	}

	parsed, err := url.Parse(req.URL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}

	return nil
}

// buildHTTPRequest constructs an http.Request from a transport Request.
func (t *HTTPTransport) buildHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, err
	}

	// Apply default headers from config
	for key, value := range t.config.Headers {
		httpReq.Header.Set(key, value)
	}

	// Apply request headers (override defaults)
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if t.config.UserAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", t.config.UserAgent)
	}

	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return httpReq, nil
}

// classifyHTTPError classifies HTTP client errors into TransportError types.
func classifyHTTPError(ctx context.Context, err error) *TransportError {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return &TransportError{
			Type:    ErrorTypeCancelled,
			Message: "request cancelled",
			Cause:   err,
		}
	}

	if isTimeoutError(err) {
		return &TransportError{
			Type:    ErrorTypeTimeout,
			Message: "request timeout",
			Cause:   err,
		}
	}

	if isConnectionError(err) {
		return &TransportError{
			Type:    ErrorTypeConnection,
			Message: "connection error",
			Cause:   err,
		}
	}

	return &TransportError{
		Type:    ErrorTypeConnection,
		Message: fmt.Sprintf("HTTP error: %s", err.Error()),
		Cause:   err,
	}
}

// classifyHTTPStatusError classifies HTTP status code errors into TransportError types.
func classifyHTTPStatusError(statusCode int, body []byte, metadata map[string]interface{}) *TransportError {
	var errorType ErrorType

	switch {
	case statusCode == 401 || statusCode == 403:
		errorType = ErrorTypeAuth
	case statusCode == 429:
		errorType = ErrorTypeRateLimit
	case statusCode == 408:
		errorType = ErrorTypeTimeout
	case statusCode >= 500:
		errorType = ErrorTypeServer
	default:
		errorType = ErrorTypeClient
	}

	// Include small error responses in the message; larger ones stay in metadata
	message := fmt.Sprintf("HTTP %d", statusCode)
	if len(body) > 0 && len(body) < 500 {
		message = fmt.Sprintf("HTTP %d: %s", statusCode, strings.TrimSpace(string(body)))
	}

	if len(body) > 0 {
		metadata[MetadataBody] = body
	}

	requestID, _ := metadata[MetadataRequestID].(string)

	return &TransportError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
		RequestID:  requestID,
		Metadata:   metadata,
	}
}

// isTimeoutError checks if an error is a timeout error.
func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// isConnectionError checks if an error is a connection error.
func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	connectionKeywords := []string{
		"connection refused",
		"connection reset",
		"no such host",
		"network unreachable",
		"eof",
	}

	for _, keyword := range connectionKeywords {
		if strings.Contains(errMsg, keyword) {
			return true
		}
	}

	return false
}

// sanitizeURL strips query values that may carry identifiers before logging.
func sanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	clean := *u
	clean.User = nil
	if clean.RawQuery != "" {
		q := clean.Query()
		for key := range q {
			lower := strings.ToLower(key)
			if strings.Contains(lower, "key") || strings.Contains(lower, "token") || strings.Contains(lower, "secret") {
				q.Set(key, "[REDACTED]")
			}
		}
		clean.RawQuery = q.Encode()
	}
	return clean.String()
}
