package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/tombee/conductor-clappia/internal/operation/transport"
)

// BaseProvider provides common functionality for API integrations.
type BaseProvider struct {
	name      string
	transport transport.Transport
	baseURL   string
}

// NewBaseProvider creates a new base provider.
func NewBaseProvider(name string, config *ProviderConfig) *BaseProvider {
	return &BaseProvider{
		name:      name,
		transport: config.Transport,
		baseURL:   strings.TrimRight(config.BaseURL, "/"),
	}
}

// Name returns the integration identifier.
func (c *BaseProvider) Name() string {
	return c.name
}

// BaseURL returns the base URL without a trailing slash.
func (c *BaseProvider) BaseURL() string {
	return c.baseURL
}

// BuildURL joins the base URL with path and appends the encoded query, if any.
func (c *BaseProvider) BuildURL(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	return fullURL
}

// BuildRequestBody marshals a request body to JSON.
func (c *BaseProvider) BuildRequestBody(body interface{}) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return data, nil
}

// ExecuteRequest sends an HTTP request through the configured transport.
func (c *BaseProvider) ExecuteRequest(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	if c.transport == nil {
		return nil, fmt.Errorf("%s: no transport configured", c.name)
	}
	return c.transport.Execute(ctx, req)
}

// ParseJSONResponse parses a JSON response into a target value.
// An empty body leaves target untouched.
func (c *BaseProvider) ParseJSONResponse(resp *transport.Response, target interface{}) error {
	if resp == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, target); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", c.name, err)
	}
	return nil
}
