package node

import (
	"context"
	"fmt"

	"github.com/tombee/conductor-clappia/internal/integration/clappia"
	clog "github.com/tombee/conductor-clappia/internal/log"
	"github.com/tombee/conductor-clappia/internal/operation/api"
)

func (n *Node) client(ctx context.Context, creds CredentialSource) (*clappia.Client, error) {
	c, err := creds.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch credentials: %w", err)
	}
	return clappia.New(&api.ProviderConfig{Transport: n.transport, BaseURL: n.baseURL}, c, clappia.WithLogger(n.logger))
}

// ListApps backs the app picker.
func (n *Node) ListApps(ctx context.Context, creds CredentialSource) ([]clappia.AppOption, error) {
	client, err := n.client(ctx, creds)
	if err != nil {
		return nil, err
	}
	return client.ListApps(ctx)
}

// ListAppFields backs the field picker for the app chosen at item index 0.
// It never fails; problems are logged and yield an empty list.
func (n *Node) ListAppFields(ctx context.Context, params ParameterResolver, creds CredentialSource) []clappia.FieldOption {
	appID, err := paramReader{resolver: params, index: 0}.appID()
	if err != nil || appID == "" {
		return []clappia.FieldOption{}
	}

	client, err := n.client(ctx, creds)
	if err != nil {
		n.logger.DebugContext(ctx, "failed to load app fields", "app_id", appID, clog.Error(err))
		return []clappia.FieldOption{}
	}
	return client.ListAppFields(ctx, appID)
}

// TestCredentials sends the credential test request.
func (n *Node) TestCredentials(ctx context.Context, creds CredentialSource) error {
	client, err := n.client(ctx, creds)
	if err != nil {
		return err
	}
	return client.TestCredentials(ctx)
}
