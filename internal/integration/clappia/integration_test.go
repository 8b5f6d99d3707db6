package clappia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clog "github.com/tombee/conductor-clappia/internal/log"
	"github.com/tombee/conductor-clappia/internal/operation/api"
	"github.com/tombee/conductor-clappia/internal/operation/transport"
	clappiaerrors "github.com/tombee/conductor-clappia/pkg/errors"
)

// mockTransport is a mock implementation of transport.Transport for testing.
type mockTransport struct {
	requests []*transport.Request
	respond  func(req *transport.Request) (*transport.Response, error)
}

func (m *mockTransport) Execute(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	m.requests = append(m.requests, req)
	if m.respond == nil {
		return &transport.Response{StatusCode: 200, Body: []byte(`{}`)}, nil
	}
	return m.respond(req)
}

func (m *mockTransport) Name() string {
	return "mock"
}

func (m *mockTransport) last(t *testing.T) *transport.Request {
	t.Helper()
	require.NotEmpty(t, m.requests, "no request was sent")
	return m.requests[len(m.requests)-1]
}

func jsonResponse(body string) func(*transport.Request) (*transport.Response, error) {
	return func(*transport.Request) (*transport.Response, error) {
		return &transport.Response{StatusCode: 200, Body: []byte(body)}, nil
	}
}

var testCreds = Credentials{
	WorkplaceID:                "WP1",
	APIKey:                     "secret-key",
	RequestingUserEmailAddress: "me@example.com",
}

func newTestClient(t *testing.T, mock *mockTransport) *Client {
	t.Helper()
	client, err := New(&api.ProviderConfig{Transport: mock}, testCreds)
	require.NoError(t, err)
	return client
}

func decodeRequestBody(t *testing.T, req *transport.Request) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(req.Body, &body))
	return body
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *api.ProviderConfig
		wantErr     bool
		wantBaseURL string
	}{
		{name: "default base URL", config: &api.ProviderConfig{Transport: &mockTransport{}}, wantBaseURL: DefaultBaseURL},
		{name: "custom base URL", config: &api.ProviderConfig{Transport: &mockTransport{}, BaseURL: "http://localhost:8080/"}, wantBaseURL: "http://localhost:8080"},
		{name: "nil config", config: nil, wantErr: true},
		{name: "missing transport", config: &api.ProviderConfig{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config, testCreds)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "clappia", client.Name())
			assert.Equal(t, tt.wantBaseURL, client.BaseURL())
		})
	}
}

func TestCreateSubmission(t *testing.T) {
	mock := &mockTransport{respond: jsonResponse(`{"submissionId":"S1"}`)}
	client := newTestClient(t, mock)

	resp, err := client.CreateSubmission(context.Background(), "APP1", map[string]interface{}{"name": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"submissionId": "S1"}, resp)

	req := mock.last(t)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, DefaultBaseURL+"/submissions/create", req.URL)
	assert.Equal(t, "secret-key", req.Headers["x-api-key"])
	assert.Equal(t, "application/json", req.Headers["Content-Type"])
	assert.NotContains(t, req.Headers, "workplaceId")

	assert.Equal(t, map[string]interface{}{
		"appId":                      "APP1",
		"workplaceId":                "WP1",
		"requestingUserEmailAddress": "me@example.com",
		"data":                       map[string]interface{}{"name": "Ann"},
	}, decodeRequestBody(t, req))
}

func TestCreateSubmission_NilDataSendsEmptyObject(t *testing.T) {
	mock := &mockTransport{}
	client := newTestClient(t, mock)

	_, err := client.CreateSubmission(context.Background(), "APP1", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{}, decodeRequestBody(t, mock.last(t))["data"])
}

func TestEditSubmission(t *testing.T) {
	mock := &mockTransport{}
	client := newTestClient(t, mock)

	_, err := client.EditSubmission(context.Background(), "APP1", "S9", map[string]interface{}{"qty": float64(3)})
	require.NoError(t, err)

	req := mock.last(t)
	assert.Equal(t, DefaultBaseURL+"/submissions/edit", req.URL)
	body := decodeRequestBody(t, req)
	assert.Equal(t, "S9", body["submissionId"])
	assert.Equal(t, map[string]interface{}{"qty": float64(3)}, body["data"])
}

func TestGetSubmission(t *testing.T) {
	mock := &mockTransport{respond: jsonResponse(`{"submissionId":"S9","data":{"a":"b"}}`)}
	client := newTestClient(t, mock)

	resp, err := client.GetSubmission(context.Background(), "APP1", "S9")
	require.NoError(t, err)
	assert.Equal(t, "S9", resp.(map[string]interface{})["submissionId"])

	req := mock.last(t)
	assert.Equal(t, "GET", req.Method)
	assert.Nil(t, req.Body)
	u, err := url.Parse(req.URL)
	require.NoError(t, err)
	assert.Equal(t, "/submissions/getSubmission", u.Path)
	assert.Equal(t, "WP1", u.Query().Get("workplaceId"))
	assert.Equal(t, "APP1", u.Query().Get("appId"))
	assert.Equal(t, "S9", u.Query().Get("submissionId"))
	assert.Equal(t, map[string]string{"x-api-key": "secret-key"}, req.Headers)
}

func TestGetSubmissions_Body(t *testing.T) {
	t.Run("no filters omits the key", func(t *testing.T) {
		mock := &mockTransport{respond: jsonResponse(`[]`)}
		client := newTestClient(t, mock)

		_, err := client.GetSubmissions(context.Background(), "APP1", 50, nil)
		require.NoError(t, err)

		body := decodeRequestBody(t, mock.last(t))
		assert.NotContains(t, body, "filters")
		assert.Equal(t, true, body["forward"])
		assert.Equal(t, float64(50), body["pageSize"])
		assert.Equal(t, "me@example.com", body["requestingUserEmailAddress"])
	})

	t.Run("one filter becomes a nested CONTAINS condition", func(t *testing.T) {
		mock := &mockTransport{respond: jsonResponse(`[]`)}
		client := newTestClient(t, mock)

		_, err := client.GetSubmissions(context.Background(), "APP1", 10, []CustomFilter{{FieldID: "f", FieldValue: "v"}})
		require.NoError(t, err)

		var body struct {
			Filters json.RawMessage `json:"filters"`
		}
		require.NoError(t, json.Unmarshal(mock.last(t).Body, &body))
		assert.JSONEq(t, `{
			"queries": [{
				"queries": [],
				"conditions": [{"operator":"CONTAINS","filterKeyType":"CUSTOM","key":"f","value":"v"}],
				"operator": "AND"
			}],
			"conditions": [],
			"operator": "AND"
		}`, string(body.Filters))
	})
}

func TestGetSubmissions_Unwrap(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "bare list", body: `[{"id":1},{"id":2}]`, want: 2},
		{name: "data envelope", body: `{"data":[{"id":1}],"submissions":[{"id":2},{"id":3}]}`, want: 1},
		{name: "submissions envelope", body: `{"submissions":[{"id":1},{"id":2},{"id":3}]}`, want: 3},
		{name: "data not a list falls through", body: `{"data":{"id":1},"submissions":[{"id":2}]}`, want: 1},
		{name: "unexpected object", body: `{"total":0}`, want: 0},
		{name: "scalar", body: `"nope"`, want: 0},
		{name: "empty body", body: ``, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, &mockTransport{respond: jsonResponse(tt.body)})
			got, err := client.GetSubmissions(context.Background(), "APP1", 10, nil)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestGetAppDefinition(t *testing.T) {
	mock := &mockTransport{respond: jsonResponse(`{"fieldDefinitions":{}}`)}
	client := newTestClient(t, mock)

	_, err := client.GetAppDefinition(context.Background(), "APP1")
	require.NoError(t, err)

	req := mock.last(t)
	assert.Equal(t, DefaultBaseURL+"/appdefinitionv2/getAppDefinition?appId=APP1&workplaceId=WP1", req.URL)
	assert.Equal(t, "WP1", req.Headers["workplaceId"])
	assert.Equal(t, "application/json", req.Headers["Content-Type"])
	assert.Equal(t, "secret-key", req.Headers["x-api-key"])
}

func TestGetAppDefinition_EmptyAppID(t *testing.T) {
	mock := &mockTransport{respond: jsonResponse(`{}`)}
	client := newTestClient(t, mock)

	_, err := client.GetAppDefinition(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL+"/appdefinitionv2/getAppDefinition?appId=&workplaceId=WP1", mock.last(t).URL)
}

func TestUpdateSubmissionOwners(t *testing.T) {
	mock := &mockTransport{}
	client := newTestClient(t, mock)

	_, err := client.UpdateSubmissionOwners(context.Background(), "APP1", "S1", nil)
	require.NoError(t, err)

	req := mock.last(t)
	assert.Equal(t, DefaultBaseURL+"/submissions/updateSubmissionOwners", req.URL)
	assert.Contains(t, string(req.Body), `"emailIds":[]`)
}

func TestUpdateSubmissionStatus(t *testing.T) {
	tests := []struct {
		name   string
		status SubmissionStatus
		want   string
	}{
		{name: "without comments", status: SubmissionStatus{Name: "Approved"}, want: `{"name":"Approved"}`},
		{name: "with comments", status: SubmissionStatus{Name: "Approved", Comments: "ok"}, want: `{"name":"Approved","comments":"ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockTransport{}
			client := newTestClient(t, mock)

			_, err := client.UpdateSubmissionStatus(context.Background(), "APP1", "S1", tt.status)
			require.NoError(t, err)

			var body struct {
				Status json.RawMessage `json:"status"`
			}
			require.NoError(t, json.Unmarshal(mock.last(t).Body, &body))
			assert.JSONEq(t, tt.want, string(body.Status))
		})
	}
}

func TestClient_APIErrorPropagation(t *testing.T) {
	mock := &mockTransport{respond: func(*transport.Request) (*transport.Response, error) {
		return nil, &transport.TransportError{
			Type:       transport.ErrorTypeClient,
			StatusCode: 404,
			Message:    "HTTP 404",
			Metadata:   map[string]interface{}{transport.MetadataBody: []byte(`{"message":"Submission not found"}`)},
		}
	}}
	client := newTestClient(t, mock)

	_, err := client.GetSubmission(context.Background(), "APP1", "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "Submission not found", apiErr.Message)

	var terr *transport.TransportError
	assert.True(t, errors.As(err, &terr), "transport error must stay reachable")

	var visible clappiaerrors.UserVisibleError
	require.True(t, errors.As(err, &visible))
	assert.NotEmpty(t, visible.Suggestion())
}

func TestClient_WithHTTPTransport(t *testing.T) {
	var gotKey, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotPath = r.URL.Path
		if strings.HasSuffix(r.URL.Path, "/getSubmission") {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"no such submission"}`))
			return
		}
		w.Write([]byte(`{"submissions":[{"submissionId":"S1"}]}`))
	}))
	defer server.Close()

	httpTransport, err := transport.NewHTTPTransport(nil)
	require.NoError(t, err)

	client, err := New(&api.ProviderConfig{Transport: httpTransport, BaseURL: server.URL}, testCreds)
	require.NoError(t, err)

	subs, err := client.GetSubmissions(context.Background(), "APP1", 10, nil)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "/submissions/getSubmissions", gotPath)

	_, err = client.GetSubmission(context.Background(), "APP1", "S2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such submission")
}

func TestClient_TraceLogsBodies(t *testing.T) {
	var buf bytes.Buffer
	mock := &mockTransport{respond: jsonResponse(`{"submissionId":"S1"}`)}
	client, err := New(&api.ProviderConfig{Transport: mock}, testCreds,
		WithLogger(clog.New(&clog.Config{Level: "trace", Format: clog.FormatJSON, Output: &buf})))
	require.NoError(t, err)

	_, err = client.CreateSubmission(context.Background(), "APP1", map[string]interface{}{"name": "Ada"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"clappia request"`)
	assert.Contains(t, out, `"msg":"clappia response"`)
	assert.Contains(t, out, "S1")
	assert.Contains(t, out, "...-key")
	assert.NotContains(t, out, "secret-key")
}

func TestClient_NoBodiesAboveTrace(t *testing.T) {
	var buf bytes.Buffer
	mock := &mockTransport{respond: jsonResponse(`{"submissionId":"S1"}`)}
	client, err := New(&api.ProviderConfig{Transport: mock}, testCreds,
		WithLogger(clog.New(&clog.Config{Level: "debug", Output: &buf})))
	require.NoError(t, err)

	_, err = client.CreateSubmission(context.Background(), "APP1", map[string]interface{}{"name": "Ada"})
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "clappia request")
}
