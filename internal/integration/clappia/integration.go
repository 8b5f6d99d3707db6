// Package clappia implements a client for the Clappia public REST API.
package clappia

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	clog "github.com/tombee/conductor-clappia/internal/log"
	"github.com/tombee/conductor-clappia/internal/operation/api"
	"github.com/tombee/conductor-clappia/internal/operation/transport"
)

const (
	// DefaultBaseURL is the Clappia public API endpoint.
	DefaultBaseURL = "https://api-public-v3.clappia.com"

	// HelpURL is attached to every app option returned by ListApps.
	HelpURL = "https://www.clappia.com/help"
)

// Client calls the Clappia API on behalf of one workplace.
type Client struct {
	*api.BaseProvider

	creds  Credentials
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Clappia client bound to the given credentials.
func New(config *api.ProviderConfig, creds Credentials, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("clappia: provider config is required")
	}
	if config.Transport == nil {
		return nil, fmt.Errorf("clappia: transport is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	c := &Client{
		BaseProvider: api.NewBaseProvider("clappia", config),
		creds:        creds,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// workplaceQuery returns the appId and workplaceId query. An empty appID is
// still sent.
func (c *Client) workplaceQuery(appID string) url.Values {
	q := url.Values{}
	q.Set("appId", appID)
	q.Set("workplaceId", c.creds.WorkplaceID)
	return q
}

// newRequest builds an authenticated request. A non-nil body is marshaled to JSON.
func (c *Client) newRequest(method, path string, query url.Values, body interface{}) (*transport.Request, error) {
	req := &transport.Request{
		Method: method,
		URL:    c.BuildURL(path, query),
	}
	if body != nil {
		data, err := c.BuildRequestBody(body)
		if err != nil {
			return nil, err
		}
		req.Body = data
		req.SetHeader("Content-Type", "application/json")
	}
	c.creds.Authenticate(req)
	return req, nil
}

// do executes req and decodes the JSON response. An empty body decodes to nil.
// Bodies are logged at trace level only.
func (c *Client) do(ctx context.Context, req *transport.Request) (interface{}, error) {
	clog.Trace(ctx, c.logger, "clappia request",
		slog.String("method", req.Method),
		slog.String("url", req.URL),
		slog.String("api_key", clog.SanitizeAPIKey(c.creds.APIKey)),
		slog.String("body", string(req.Body)),
	)

	resp, err := c.ExecuteRequest(ctx, req)
	if err != nil {
		return nil, ParseError(err)
	}

	clog.Trace(ctx, c.logger, "clappia response",
		slog.Int("status", resp.StatusCode),
		slog.String("body", string(resp.Body)),
	)

	var out interface{}
	if err := c.ParseJSONResponse(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeBody re-decodes a raw JSON value into target.
func decodeBody(raw interface{}, target interface{}) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
