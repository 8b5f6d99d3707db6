package clappia

import (
	"context"
	"net/url"
)

// CreateSubmission creates a submission in appID with the given field data.
func (c *Client) CreateSubmission(ctx context.Context, appID string, data map[string]interface{}) (interface{}, error) {
	req, err := c.newRequest("POST", "/submissions/create", nil, CreateSubmissionRequest{
		AppID:                      appID,
		WorkplaceID:                c.creds.WorkplaceID,
		RequestingUserEmailAddress: c.creds.RequestingUserEmailAddress,
		Data:                       nonNilData(data),
	})
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req)
}

// EditSubmission overwrites the given fields of an existing submission.
func (c *Client) EditSubmission(ctx context.Context, appID, submissionID string, data map[string]interface{}) (interface{}, error) {
	req, err := c.newRequest("POST", "/submissions/edit", nil, EditSubmissionRequest{
		AppID:                      appID,
		WorkplaceID:                c.creds.WorkplaceID,
		SubmissionID:               submissionID,
		RequestingUserEmailAddress: c.creds.RequestingUserEmailAddress,
		Data:                       nonNilData(data),
	})
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req)
}

// GetSubmission fetches one submission.
func (c *Client) GetSubmission(ctx context.Context, appID, submissionID string) (interface{}, error) {
	q := url.Values{}
	q.Set("workplaceId", c.creds.WorkplaceID)
	q.Set("appId", appID)
	q.Set("submissionId", submissionID)

	req, err := c.newRequest("GET", "/submissions/getSubmission", q, nil)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req)
}

// GetSubmissions lists up to pageSize submissions of appID matching every filter.
// The response may be a bare list or wrapped in "data" or "submissions";
// any other shape yields an empty list.
func (c *Client) GetSubmissions(ctx context.Context, appID string, pageSize int, filters []CustomFilter) ([]interface{}, error) {
	req, err := c.newRequest("POST", "/submissions/getSubmissions", nil, GetSubmissionsRequest{
		WorkplaceID:                c.creds.WorkplaceID,
		AppID:                      appID,
		RequestingUserEmailAddress: c.creds.RequestingUserEmailAddress,
		Forward:                    true,
		PageSize:                   pageSize,
		Filters:                    BuildFilters(filters),
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return UnwrapSubmissions(resp), nil
}

// UnwrapSubmissions extracts the submission list from a getSubmissions response.
func UnwrapSubmissions(resp interface{}) []interface{} {
	switch v := resp.(type) {
	case []interface{}:
		return v
	case map[string]interface{}:
		if list, ok := v["data"].([]interface{}); ok {
			return list
		}
		if list, ok := v["submissions"].([]interface{}); ok {
			return list
		}
	}
	return []interface{}{}
}

// GetAppDefinition fetches the field definitions of appID.
func (c *Client) GetAppDefinition(ctx context.Context, appID string) (interface{}, error) {
	req, err := c.newRequest("GET", "/appdefinitionv2/getAppDefinition", c.workplaceQuery(appID), nil)
	if err != nil {
		return nil, err
	}
	req.SetHeader("workplaceId", c.creds.WorkplaceID)
	req.SetHeader("Content-Type", "application/json")
	return c.do(ctx, req)
}

// UpdateSubmissionOwners replaces the owners of a submission.
func (c *Client) UpdateSubmissionOwners(ctx context.Context, appID, submissionID string, emailIDs []string) (interface{}, error) {
	if emailIDs == nil {
		emailIDs = []string{}
	}
	req, err := c.newRequest("POST", "/submissions/updateSubmissionOwners", nil, UpdateOwnersRequest{
		AppID:                      appID,
		WorkplaceID:                c.creds.WorkplaceID,
		SubmissionID:               submissionID,
		RequestingUserEmailAddress: c.creds.RequestingUserEmailAddress,
		EmailIDs:                   emailIDs,
	})
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req)
}

// UpdateSubmissionStatus moves a submission to a new status.
func (c *Client) UpdateSubmissionStatus(ctx context.Context, appID, submissionID string, status SubmissionStatus) (interface{}, error) {
	req, err := c.newRequest("POST", "/submissions/updateStatus", nil, UpdateStatusRequest{
		AppID:                      appID,
		WorkplaceID:                c.creds.WorkplaceID,
		SubmissionID:               submissionID,
		RequestingUserEmailAddress: c.creds.RequestingUserEmailAddress,
		Status:                     status,
	})
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req)
}

func nonNilData(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return map[string]interface{}{}
	}
	return data
}
