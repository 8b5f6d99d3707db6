package node

import (
	"fmt"

	clappiaerrors "github.com/tombee/conductor-clappia/pkg/errors"
)

// Resource selects the remote entity type.
type Resource string

// ResourceSubmission is the only resource Clappia exposes.
const ResourceSubmission Resource = "submission"

// Operation selects the remote capability to invoke.
type Operation string

// Operations supported on submissions.
const (
	OperationCreate           Operation = "create"
	OperationEdit             Operation = "edit"
	OperationGet              Operation = "get"
	OperationGetMany          Operation = "getMany"
	OperationGetAppDefinition Operation = "getAppDefinition"
	OperationUpdateOwners     Operation = "getOwner"
	OperationUpdateStatus     Operation = "updateStatus"
)

// AllOperations lists every operation in catalog order.
var AllOperations = []Operation{
	OperationCreate,
	OperationEdit,
	OperationGet,
	OperationGetAppDefinition,
	OperationGetMany,
	OperationUpdateOwners,
	OperationUpdateStatus,
}

// ParseResource validates a resource name.
func ParseResource(s string) (Resource, error) {
	if Resource(s) == ResourceSubmission {
		return ResourceSubmission, nil
	}
	return "", &clappiaerrors.ValidationError{
		Field:      "resource",
		Message:    fmt.Sprintf("unknown resource %q", s),
		Suggestion: "use \"submission\"",
	}
}

// ParseOperation validates an operation name.
func ParseOperation(s string) (Operation, error) {
	for _, op := range AllOperations {
		if string(op) == s {
			return op, nil
		}
	}
	return "", &clappiaerrors.ValidationError{
		Field:      "operation",
		Message:    fmt.Sprintf("unknown operation %q", s),
		Suggestion: "run 'clappia operations' to list supported operations",
	}
}

// selection is the resource and operation of one execution.
type selection struct {
	resource  Resource
	operation Operation
}

// readSelection reads resource and operation at item index 0. Both are
// global to the execution even when the resolver could vary them per item.
func readSelection(params ParameterResolver) (selection, error) {
	p := paramReader{resolver: params, index: 0}

	rawResource, err := p.str("resource")
	if err != nil {
		return selection{}, err
	}
	resource, err := ParseResource(rawResource)
	if err != nil {
		return selection{}, err
	}

	rawOperation, err := p.str("operation")
	if err != nil {
		return selection{}, err
	}
	operation, err := ParseOperation(rawOperation)
	if err != nil {
		return selection{}, err
	}

	return selection{resource: resource, operation: operation}, nil
}
