package clappia

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tombee/conductor-clappia/internal/operation/transport"
)

func statusError(status int, body string) *transport.TransportError {
	terr := &transport.TransportError{
		Type:       transport.ErrorTypeClient,
		StatusCode: status,
		Message:    fmt.Sprintf("HTTP %d", status),
		RequestID:  "req-1",
		Metadata:   map[string]interface{}{},
	}
	if body != "" {
		terr.Metadata[transport.MetadataBody] = []byte(body)
	}
	return terr
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantMessage string
	}{
		{name: "message key", err: statusError(400, `{"message":"appId is required"}`), wantMessage: "appId is required"},
		{name: "error key", err: statusError(400, `{"error":"bad filter"}`), wantMessage: "bad filter"},
		{name: "errorMessage key", err: statusError(422, `{"errorMessage":"invalid status"}`), wantMessage: "invalid status"},
		{name: "message wins over error", err: statusError(400, `{"error":"second","message":"first"}`), wantMessage: "first"},
		{name: "non-string message", err: statusError(400, `{"message":{"code":1},"error":"fallback"}`), wantMessage: "fallback"},
		{name: "plain text body", err: statusError(502, "upstream down"), wantMessage: "upstream down"},
		{name: "empty body", err: statusError(401, ""), wantMessage: "Unauthorized - check your API key"},
		{name: "unknown status", err: statusError(418, ""), wantMessage: "Request failed with status 418"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseError(tt.err)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("ParseError() = %T, want *APIError", err)
			}
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, "req-1", apiErr.RequestID)
			assert.Contains(t, apiErr.Error(), tt.wantMessage)
			assert.True(t, apiErr.IsUserVisible())
			assert.Same(t, tt.err, errors.Unwrap(apiErr))
		})
	}
}

func TestParseError_PassThrough(t *testing.T) {
	conn := &transport.TransportError{Type: transport.ErrorTypeConnection, Message: "connection error"}
	assert.Same(t, error(conn), ParseError(conn))

	plain := errors.New("boom")
	assert.Same(t, plain, ParseError(plain))
}

func TestAPIError_Suggestion(t *testing.T) {
	assert.Contains(t, (&APIError{StatusCode: 401}).Suggestion(), "API key")
	assert.Contains(t, (&APIError{StatusCode: 404}).Suggestion(), "submission ID")
	assert.Empty(t, (&APIError{StatusCode: 500}).Suggestion())
}
