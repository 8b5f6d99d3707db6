package node

import (
	"context"
	"fmt"

	"github.com/tombee/conductor-clappia/internal/integration/clappia"
	clappiaerrors "github.com/tombee/conductor-clappia/pkg/errors"
)

// call carries what a variant needs for one item.
type call struct {
	client *clappia.Client
	params paramReader
}

// variant builds and sends the request of one operation for one item.
type variant interface {
	run(ctx context.Context, c *call) ([]map[string]any, error)
}

type (
	createOp           struct{}
	editOp             struct{}
	getOp              struct{}
	getManyOp          struct{}
	getAppDefinitionOp struct{}
	updateOwnersOp     struct{}
	updateStatusOp     struct{}
)

func variantFor(op Operation) (variant, error) {
	switch op {
	case OperationCreate:
		return createOp{}, nil
	case OperationEdit:
		return editOp{}, nil
	case OperationGet:
		return getOp{}, nil
	case OperationGetMany:
		return getManyOp{}, nil
	case OperationGetAppDefinition:
		return getAppDefinitionOp{}, nil
	case OperationUpdateOwners:
		return updateOwnersOp{}, nil
	case OperationUpdateStatus:
		return updateStatusOp{}, nil
	default:
		return nil, &clappiaerrors.ValidationError{
			Field:   "operation",
			Message: fmt.Sprintf("unsupported operation %q", op),
		}
	}
}

func single(resp any, err error) ([]map[string]any, error) {
	if err != nil {
		return nil, err
	}
	return []map[string]any{normalizeOutput(resp)}, nil
}

func (createOp) run(ctx context.Context, c *call) ([]map[string]any, error) {
	appID, err := c.params.appID()
	if err != nil {
		return nil, err
	}
	data, err := buildPayload(c.params, "submissionData")
	if err != nil {
		return nil, err
	}
	return single(c.client.CreateSubmission(ctx, appID, data))
}

func (editOp) run(ctx context.Context, c *call) ([]map[string]any, error) {
	appID, err := c.params.appID()
	if err != nil {
		return nil, err
	}
	submissionID, err := c.params.str("submissionId")
	if err != nil {
		return nil, err
	}
	data, err := buildPayload(c.params, "editData")
	if err != nil {
		return nil, err
	}
	return single(c.client.EditSubmission(ctx, appID, submissionID, data))
}

func (getOp) run(ctx context.Context, c *call) ([]map[string]any, error) {
	appID, err := c.params.appID()
	if err != nil {
		return nil, err
	}
	submissionID, err := c.params.str("submissionId")
	if err != nil {
		return nil, err
	}
	return single(c.client.GetSubmission(ctx, appID, submissionID))
}

func (getManyOp) run(ctx context.Context, c *call) ([]map[string]any, error) {
	appID, err := c.params.appID()
	if err != nil {
		return nil, err
	}
	returnAll, err := c.params.boolean("returnAll")
	if err != nil {
		return nil, err
	}

	pageSize := clappia.MaxPageSize
	if !returnAll {
		limit, err := c.params.integer("limit")
		if err != nil {
			return nil, err
		}
		if limit < 1 {
			return nil, &clappiaerrors.ValidationError{
				Field:   "limit",
				Message: fmt.Sprintf("limit must be at least 1, got %d", limit),
			}
		}
		pageSize = limit
	}

	rows, err := c.params.value("options.filterByCustomField.customFilters")
	if err != nil {
		return nil, err
	}
	filters, err := customFilters(rows)
	if err != nil {
		return nil, err
	}

	submissions, err := c.client.GetSubmissions(ctx, appID, pageSize, filters)
	if err != nil {
		return nil, err
	}

	results := make([]map[string]any, 0, len(submissions))
	for _, s := range submissions {
		results = append(results, normalizeOutput(s))
	}
	return results, nil
}

func (getAppDefinitionOp) run(ctx context.Context, c *call) ([]map[string]any, error) {
	appID, err := c.params.appID()
	if err != nil {
		return nil, err
	}
	return single(c.client.GetAppDefinition(ctx, appID))
}

func (updateOwnersOp) run(ctx context.Context, c *call) ([]map[string]any, error) {
	appID, err := c.params.appID()
	if err != nil {
		return nil, err
	}
	submissionID, err := c.params.str("submissionId")
	if err != nil {
		return nil, err
	}
	emails, err := c.params.str("emailIds")
	if err != nil {
		return nil, err
	}
	return single(c.client.UpdateSubmissionOwners(ctx, appID, submissionID, splitEmails(emails)))
}

func (updateStatusOp) run(ctx context.Context, c *call) ([]map[string]any, error) {
	appID, err := c.params.appID()
	if err != nil {
		return nil, err
	}
	submissionID, err := c.params.str("submissionId")
	if err != nil {
		return nil, err
	}
	name, err := c.params.str("status")
	if err != nil {
		return nil, err
	}
	comments, err := c.params.str("statusComments")
	if err != nil {
		return nil, err
	}
	return single(c.client.UpdateSubmissionStatus(ctx, appID, submissionID, clappia.SubmissionStatus{
		Name:     name,
		Comments: comments,
	}))
}
