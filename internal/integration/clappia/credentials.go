package clappia

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tombee/conductor-clappia/internal/operation/transport"
)

// Credentials identify a Clappia workplace and the user acting in it.
type Credentials struct {
	WorkplaceID                string `json:"workplaceId" yaml:"workplace_id"`
	APIKey                     string `json:"apiKey" yaml:"-"`
	RequestingUserEmailAddress string `json:"requestingUserEmailAddress" yaml:"requesting_user_email"`
}

// Validate reports every missing field.
func (c Credentials) Validate() error {
	var errs []error
	if c.WorkplaceID == "" {
		errs = append(errs, fmt.Errorf("workplace ID is required"))
	}
	if c.APIKey == "" {
		errs = append(errs, fmt.Errorf("API key is required"))
	}
	if c.RequestingUserEmailAddress == "" {
		errs = append(errs, fmt.Errorf("requesting user email address is required"))
	}
	return errors.Join(errs...)
}

// Authenticate attaches the API key header.
func (c Credentials) Authenticate(req *transport.Request) {
	req.SetHeader("x-api-key", c.APIKey)
}

// TestRequest builds the request used to verify stored credentials.
// The workplace ID travels as both query parameter and header.
func (c Credentials) TestRequest(baseURL string) *transport.Request {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	q := url.Values{}
	q.Set("workplaceId", c.WorkplaceID)

	req := &transport.Request{
		Method: "GET",
		URL:    strings.TrimRight(baseURL, "/") + "/workplace/getApps?" + q.Encode(),
	}
	req.SetHeader("workplaceId", c.WorkplaceID)
	req.SetHeader("Content-Type", "application/json")
	c.Authenticate(req)
	return req
}

// CredentialProperty describes one field of the credential form.
type CredentialProperty struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required"`
	Secret      bool   `json:"secret,omitempty"`
}

// DocumentationURL points users at the Clappia developer docs.
const DocumentationURL = "https://developer.clappia.com/"

// CredentialProperties lists the fields a user supplies to connect a workplace.
func CredentialProperties() []CredentialProperty {
	return []CredentialProperty{
		{
			Name:        "workplaceId",
			DisplayName: "Workplace ID",
			Description: "Your Clappia workplace ID",
			Placeholder: "YOUR_WORKPLACE_ID",
			Required:    true,
		},
		{
			Name:        "apiKey",
			DisplayName: "API Key",
			Description: "Your Clappia API key, sent as the x-api-key header",
			Placeholder: "YOUR_WORKPLACE_API_KEY",
			Required:    true,
			Secret:      true,
		},
		{
			Name:        "requestingUserEmailAddress",
			DisplayName: "Requesting User Email",
			Description: "Email address of the user making API requests",
			Placeholder: "your@email.com",
			Required:    true,
		},
	}
}

// TestCredentials runs the credential test request against the client's base URL.
// A rejected request is returned as *APIError.
func (c *Client) TestCredentials(ctx context.Context) error {
	req := c.creds.TestRequest(c.BaseURL())
	if _, err := c.ExecuteRequest(ctx, req); err != nil {
		return ParseError(err)
	}
	return nil
}
