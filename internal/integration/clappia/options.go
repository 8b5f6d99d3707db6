package clappia

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	clog "github.com/tombee/conductor-clappia/internal/log"
)

// ListApps returns the workplace's apps for the app picker.
// Entries without an app ID are skipped and blank names fall back to the ID.
func (c *Client) ListApps(ctx context.Context) ([]AppOption, error) {
	q := url.Values{}
	q.Set("workplaceId", c.creds.WorkplaceID)

	req, err := c.newRequest("GET", "/workplace/getApps", q, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch apps: %w", err)
	}
	req.SetHeader("workplaceId", c.creds.WorkplaceID)
	req.SetHeader("Content-Type", "application/json")

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch apps: %w", err)
	}

	apps, ok := resp.([]interface{})
	if !ok {
		return []AppOption{}, nil
	}

	results := make([]AppOption, 0, len(apps))
	for _, raw := range apps {
		app, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		appID := stringify(app["appId"])
		if appID == "" {
			continue
		}
		name := appID
		if n, ok := app["name"].(string); ok && strings.TrimSpace(n) != "" {
			name = n
		}
		results = append(results, AppOption{Name: name, Value: appID, URL: HelpURL})
	}
	return results, nil
}

// ListAppFields returns the fields of appID for the field picker.
// Failures are logged and yield an empty list.
func (c *Client) ListAppFields(ctx context.Context, appID string) []FieldOption {
	if appID == "" {
		return []FieldOption{}
	}

	resp, err := c.GetAppDefinition(ctx, appID)
	if err != nil {
		c.logger.DebugContext(ctx, "failed to load app fields", "app_id", appID, clog.Error(err))
		return []FieldOption{}
	}

	var def appDefinition
	if err := decodeBody(resp, &def); err != nil {
		c.logger.DebugContext(ctx, "unexpected app definition shape", "app_id", appID, clog.Error(err))
		return []FieldOption{}
	}

	fieldIDs := make([]string, 0, len(def.FieldDefinitions))
	for id := range def.FieldDefinitions {
		fieldIDs = append(fieldIDs, id)
	}
	sort.Strings(fieldIDs)

	options := make([]FieldOption, 0, len(fieldIDs))
	for _, id := range fieldIDs {
		label := def.FieldDefinitions[id].Label
		if label == "" {
			label = id
		}
		options = append(options, FieldOption{
			Name:  fmt.Sprintf("%s (%s)", label, id),
			Value: id,
		})
	}
	return options
}

// stringify renders a JSON scalar the way it would print in a picker.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
		return "true"
	case float64:
		if t == 0 {
			return ""
		}
		return fmt.Sprint(t)
	default:
		return fmt.Sprint(t)
	}
}
