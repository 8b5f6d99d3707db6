package clappia

// Filter condition constants used by getSubmissions.
const (
	FilterOperatorContains = "CONTAINS"
	FilterKeyTypeCustom    = "CUSTOM"
	FilterGroupAnd         = "AND"
)

// MaxPageSize is the page size requested when every submission is wanted.
const MaxPageSize = 1000

// CreateSubmissionRequest is the body of POST /submissions/create.
type CreateSubmissionRequest struct {
	AppID                      string                 `json:"appId"`
	WorkplaceID                string                 `json:"workplaceId"`
	RequestingUserEmailAddress string                 `json:"requestingUserEmailAddress"`
	Data                       map[string]interface{} `json:"data"`
}

// EditSubmissionRequest is the body of POST /submissions/edit.
type EditSubmissionRequest struct {
	AppID                      string                 `json:"appId"`
	WorkplaceID                string                 `json:"workplaceId"`
	SubmissionID               string                 `json:"submissionId"`
	RequestingUserEmailAddress string                 `json:"requestingUserEmailAddress"`
	Data                       map[string]interface{} `json:"data"`
}

// GetSubmissionsRequest is the body of POST /submissions/getSubmissions.
type GetSubmissionsRequest struct {
	WorkplaceID                string       `json:"workplaceId"`
	AppID                      string       `json:"appId"`
	RequestingUserEmailAddress string       `json:"requestingUserEmailAddress"`
	Forward                    bool         `json:"forward"`
	PageSize                   int          `json:"pageSize"`
	Filters                    *FilterGroup `json:"filters,omitempty"`
}

// UpdateOwnersRequest is the body of POST /submissions/updateSubmissionOwners.
type UpdateOwnersRequest struct {
	AppID                      string   `json:"appId"`
	WorkplaceID                string   `json:"workplaceId"`
	SubmissionID               string   `json:"submissionId"`
	RequestingUserEmailAddress string   `json:"requestingUserEmailAddress"`
	EmailIDs                   []string `json:"emailIds"`
}

// UpdateStatusRequest is the body of POST /submissions/updateStatus.
type UpdateStatusRequest struct {
	AppID                      string           `json:"appId"`
	WorkplaceID                string           `json:"workplaceId"`
	SubmissionID               string           `json:"submissionId"`
	RequestingUserEmailAddress string           `json:"requestingUserEmailAddress"`
	Status                     SubmissionStatus `json:"status"`
}

// SubmissionStatus names the target status. Empty comments are not sent.
type SubmissionStatus struct {
	Name     string `json:"name"`
	Comments string `json:"comments,omitempty"`
}

// CustomFilter matches submissions whose field contains a value.
type CustomFilter struct {
	FieldID    string `json:"fieldId" yaml:"fieldId"`
	FieldValue string `json:"fieldValue" yaml:"fieldValue"`
}

// FilterGroup is a node of the getSubmissions filter tree.
type FilterGroup struct {
	Queries    []FilterGroup     `json:"queries"`
	Conditions []FilterCondition `json:"conditions"`
	Operator   string            `json:"operator"`
}

// FilterCondition is a single leaf condition.
type FilterCondition struct {
	Operator      string `json:"operator"`
	FilterKeyType string `json:"filterKeyType"`
	Key           string `json:"key"`
	Value         string `json:"value"`
}

// BuildFilters ANDs the custom filters together as CONTAINS conditions,
// nested one level below the root group. It returns nil for no filters.
func BuildFilters(filters []CustomFilter) *FilterGroup {
	if len(filters) == 0 {
		return nil
	}

	conditions := make([]FilterCondition, 0, len(filters))
	for _, f := range filters {
		conditions = append(conditions, FilterCondition{
			Operator:      FilterOperatorContains,
			FilterKeyType: FilterKeyTypeCustom,
			Key:           f.FieldID,
			Value:         f.FieldValue,
		})
	}

	return &FilterGroup{
		Queries: []FilterGroup{{
			Queries:    []FilterGroup{},
			Conditions: conditions,
			Operator:   FilterGroupAnd,
		}},
		Conditions: []FilterCondition{},
		Operator:   FilterGroupAnd,
	}
}

// AppOption is one entry of the app picker.
type AppOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	URL   string `json:"url,omitempty"`
}

// FieldOption is one entry of the field picker.
type FieldOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// appDefinition is the part of the app definition the field picker reads.
type appDefinition struct {
	FieldDefinitions map[string]struct {
		Label string `json:"label"`
	} `json:"fieldDefinitions"`
}
