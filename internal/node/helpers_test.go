package node

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/tombee/conductor-clappia/internal/integration/clappia"
	clog "github.com/tombee/conductor-clappia/internal/log"
	"github.com/tombee/conductor-clappia/internal/operation/transport"
)

// fakeResolver serves static parameters with optional per-item overrides.
type fakeResolver struct {
	mu      sync.Mutex
	values  map[string]any
	perItem map[int]map[string]any
	asked   map[string][]int
}

func newResolver(values map[string]any) *fakeResolver {
	return &fakeResolver{values: values, perItem: map[int]map[string]any{}, asked: map[string][]int{}}
}

func (r *fakeResolver) withItem(index int, values map[string]any) *fakeResolver {
	r.perItem[index] = values
	return r
}

func (r *fakeResolver) Parameter(name string, itemIndex int) (any, error) {
	r.mu.Lock()
	r.asked[name] = append(r.asked[name], itemIndex)
	r.mu.Unlock()

	if v, ok := lookup(r.perItem[itemIndex], name); ok {
		return v, nil
	}
	if v, ok := lookup(r.values, name); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrParameterNotSet)
}

func lookup(values map[string]any, name string) (any, bool) {
	var cur any = values
	for _, key := range strings.Split(name, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

type staticCredentials struct {
	creds clappia.Credentials
	err   error
	calls int
}

func (s *staticCredentials) Credentials(ctx context.Context) (clappia.Credentials, error) {
	s.calls++
	return s.creds, s.err
}

func testCredentials() *staticCredentials {
	return &staticCredentials{creds: clappia.Credentials{
		WorkplaceID:                "WP1",
		APIKey:                     "secret-key",
		RequestingUserEmailAddress: "me@example.com",
	}}
}

// mockTransport is a mock implementation of transport.Transport for testing.
type mockTransport struct {
	requests []*transport.Request
	respond  func(n int, req *transport.Request) (*transport.Response, error)
}

func (m *mockTransport) Execute(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	m.requests = append(m.requests, req)
	if m.respond == nil {
		return &transport.Response{StatusCode: 200, Body: []byte(`{"ok":true}`)}, nil
	}
	return m.respond(len(m.requests)-1, req)
}

func (m *mockTransport) Name() string {
	return "mock"
}

func (m *mockTransport) body(t *testing.T, i int) map[string]any {
	t.Helper()
	require.Greater(t, len(m.requests), i)
	var body map[string]any
	require.NoError(t, json.Unmarshal(m.requests[i].Body, &body))
	return body
}

func ok(body string) (*transport.Response, error) {
	return &transport.Response{StatusCode: 200, Body: []byte(body)}, nil
}

func notFound(message string) (*transport.Response, error) {
	return nil, &transport.TransportError{
		Type:       transport.ErrorTypeClient,
		StatusCode: 404,
		Message:    "HTTP 404",
		Metadata:   map[string]any{transport.MetadataBody: []byte(`{"message":"` + message + `"}`)},
	}
}

func newTestNode(t *testing.T, mock *mockTransport, opts ...Option) *Node {
	t.Helper()
	opts = append([]Option{
		WithLogger(clog.Discard()),
		WithMetrics(NewMetrics(prometheus.NewRegistry())),
	}, opts...)
	n, err := New(mock, opts...)
	require.NoError(t, err)
	return n
}

func inputItems(n int) []Item {
	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, Item{JSON: map[string]any{"i": float64(i)}})
	}
	return items
}
