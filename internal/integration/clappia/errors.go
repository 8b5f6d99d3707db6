package clappia

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tombee/conductor-clappia/internal/operation/transport"
)

// APIError represents a Clappia API error response.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string

	cause *transport.TransportError
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("Clappia API error: %s (status %d)", e.Message, e.StatusCode)
}

// Unwrap returns the transport error the response was parsed from.
func (e *APIError) Unwrap() error {
	if e.cause == nil {
		return nil
	}
	return e.cause
}

// IsUserVisible returns true; Clappia messages are meant for end users.
func (e *APIError) IsUserVisible() bool {
	return true
}

// UserMessage returns the message reported by Clappia.
func (e *APIError) UserMessage() string {
	return e.Message
}

// Suggestion returns guidance for common failures.
func (e *APIError) Suggestion() string {
	switch e.StatusCode {
	case 401, 403:
		return "Check the workplace ID and API key (clappia credentials test)"
	case 404:
		return "Check the app ID and submission ID"
	case 429:
		return "Clappia is rate limiting requests; wait before running again"
	default:
		return ""
	}
}

// ParseError converts a transport error carrying an HTTP status into an
// *APIError. Other errors are returned unchanged.
func ParseError(err error) error {
	var terr *transport.TransportError
	if !errors.As(err, &terr) || terr.StatusCode == 0 {
		return err
	}

	apiErr := &APIError{
		StatusCode: terr.StatusCode,
		RequestID:  terr.RequestID,
		cause:      terr,
	}

	if body := terr.Body(); len(body) > 0 {
		var errResp struct {
			Message      interface{} `json:"message"`
			Error        interface{} `json:"error"`
			ErrorMessage interface{} `json:"errorMessage"`
		}
		if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil {
			for _, candidate := range []interface{}{errResp.Message, errResp.Error, errResp.ErrorMessage} {
				if s, ok := candidate.(string); ok && s != "" {
					apiErr.Message = s
					break
				}
			}
		} else if len(body) < 500 {
			// Fallback to raw body as message
			apiErr.Message = strings.TrimSpace(string(body))
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = getDefaultMessage(terr.StatusCode)
	}

	return apiErr
}

// getDefaultMessage returns a default error message for a status code.
func getDefaultMessage(statusCode int) string {
	switch statusCode {
	case 400:
		return "Bad request"
	case 401:
		return "Unauthorized - check your API key"
	case 403:
		return "Forbidden - check your workplace permissions"
	case 404:
		return "Not found"
	case 429:
		return "Rate limit exceeded"
	case 500:
		return "Internal server error"
	case 502:
		return "Bad gateway"
	case 503:
		return "Service unavailable"
	default:
		return fmt.Sprintf("Request failed with status %d", statusCode)
	}
}
