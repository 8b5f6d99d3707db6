package node

import (
	"sync"

	"github.com/tombee/conductor-clappia/internal/operation/api"
)

// AppIDPattern is the validation pattern of the "By ID" app locator mode.
const AppIDPattern = "[a-zA-Z0-9]+"

var operationCatalog = []struct {
	info   api.OperationInfo
	option api.ParameterOption
}{
	{
		info:   api.OperationInfo{Name: "create", DisplayName: "Create", Category: "submissions", Tags: []string{"write"}},
		option: api.ParameterOption{Name: "Create", Value: "create", Description: "Create a new submission in a Clappia app", Action: "Create a submission"},
	},
	{
		info:   api.OperationInfo{Name: "edit", DisplayName: "Edit", Category: "submissions", Tags: []string{"write"}},
		option: api.ParameterOption{Name: "Edit", Value: "edit", Description: "Edit an existing submission in a Clappia app", Action: "Edit a submission"},
	},
	{
		info:   api.OperationInfo{Name: "get", DisplayName: "Get", Category: "submissions", Tags: []string{"read"}},
		option: api.ParameterOption{Name: "Get", Value: "get", Description: "Get a single submission by ID", Action: "Get a submission"},
	},
	{
		info:   api.OperationInfo{Name: "getAppDefinition", DisplayName: "Get App Definition", Category: "apps", Tags: []string{"read"}},
		option: api.ParameterOption{Name: "Get App Definition", Value: "getAppDefinition", Description: "Get app field definitions (field IDs, labels, types, etc.)", Action: "Get app definition"},
	},
	{
		info:   api.OperationInfo{Name: "getMany", DisplayName: "Get Many", Category: "submissions", Tags: []string{"read", "fan-out"}},
		option: api.ParameterOption{Name: "Get Many", Value: "getMany", Description: "Get multiple submissions from a Clappia app", Action: "Get many submissions"},
	},
	{
		info:   api.OperationInfo{Name: "getOwner", DisplayName: "Update Owners", Category: "submissions", Tags: []string{"write"}},
		option: api.ParameterOption{Name: "Update Owners", Value: "getOwner", Description: "Update the owners of a submission", Action: "Update submission owners"},
	},
	{
		info:   api.OperationInfo{Name: "updateStatus", DisplayName: "Update Status", Category: "submissions", Tags: []string{"write"}},
		option: api.ParameterOption{Name: "Update Status", Value: "updateStatus", Description: "Update the status of a submission", Action: "Update submission status"},
	},
}

// Operations returns the list of available operations.
func Operations() []api.OperationInfo {
	ops := make([]api.OperationInfo, 0, len(operationCatalog))
	for _, entry := range operationCatalog {
		info := entry.info
		info.Description = entry.option.Description
		info.Action = entry.option.Action
		info.Tags = append([]string(nil), entry.info.Tags...)
		ops = append(ops, info)
	}
	return ops
}

// OperationSchema returns the operation description and the parameters shown
// for it with every other parameter at its default. Returns nil if the
// operation doesn't exist.
func OperationSchema(operation string) *api.OperationSchema {
	for _, entry := range operationCatalog {
		if entry.info.Name != operation {
			continue
		}
		return &api.OperationSchema{
			Description: entry.option.Description,
			Parameters: ActiveProperties(map[string]any{
				"resource":  string(ResourceSubmission),
				"operation": operation,
			}),
		}
	}
	return nil
}

// Properties returns the full parameter catalog in display order.
func Properties() []api.ParameterInfo {
	options := make([]api.ParameterOption, 0, len(operationCatalog))
	for _, entry := range operationCatalog {
		options = append(options, entry.option)
	}

	props := []api.ParameterInfo{
		{
			Name:        "resource",
			DisplayName: "Resource",
			Type:        "options",
			Default:     string(ResourceSubmission),
			Options:     []api.ParameterOption{{Name: "Submission", Value: string(ResourceSubmission)}},
		},
		{
			Name:           "operation",
			DisplayName:    "Operation",
			Type:           "options",
			Default:        string(OperationCreate),
			Options:        options,
			DisplayOptions: showFor(nil),
		},
	}

	// create
	props = append(props,
		appIDProperty(OperationCreate, "The Clappia app to create submission in", "e.g. 5f9e3b1c2e1f4a0017a1b2c3"),
		dataModeProperty(OperationCreate, "Fill in individual fields dynamically loaded from the app", "Choose how to input submission data"),
		fieldsProperty(OperationCreate, "The fields to submit", "The value to set for this field"),
		api.ParameterInfo{
			Name:           "submissionData",
			DisplayName:    "Submission Data",
			Type:           "json",
			Default:        "{}",
			Required:       true,
			Description:    `The submission data as JSON object. Use field IDs (like "tag", "notes", "title") as keys and provide values. Get field IDs from "Get App Definition" operation first.`,
			Hint:           `Tip: Run "Get App Definition" first to see all available field IDs and their types for this app`,
			Placeholder:    `{"tag": "Personal", "notes": "My note content", "title": "My Title"}`,
			DisplayOptions: showFor([]Operation{OperationCreate}, "dataMode", "json"),
		},
	)

	// edit
	props = append(props,
		appIDProperty(OperationEdit, "The Clappia app containing the submission", "e.g. 5f9e3b1c2e1f4a0017a1b2c3"),
		submissionIDProperty(OperationEdit, "The ID of the submission to edit", "e.g. 5f9e3b1c2e1f4a0017a1b2c3"),
		dataModeProperty(OperationEdit, "Edit individual fields dynamically loaded from the app", "Choose how to input edit data"),
		fieldsProperty(OperationEdit, "The fields to update", "The new value for this field"),
		api.ParameterInfo{
			Name:           "editData",
			DisplayName:    "Edit Data",
			Type:           "json",
			Default:        "{}",
			Required:       true,
			Description:    `The fields to update as JSON object. Use field IDs (like "tag", "notes", "title") as keys and provide new values. Only the fields you include will be updated.`,
			Hint:           `Tip: Run "Get App Definition" first to see all available field IDs for this app`,
			Placeholder:    `{"notes": "Updated note", "tag": "Work"}`,
			DisplayOptions: showFor([]Operation{OperationEdit}, "dataMode", "json"),
		},
	)

	// get
	props = append(props,
		appIDProperty(OperationGet, "The Clappia app containing the submission", "e.g. 5f9e3b1c2e1f4a0017a1b2c3"),
		submissionIDProperty(OperationGet, "The ID of the submission to retrieve", "e.g. 5f9e3b1c2e1f4a0017a1b2c3"),
	)

	// getAppDefinition
	props = append(props,
		appIDProperty(OperationGetAppDefinition, "The Clappia app to get field definitions for", "e.g. WUU023539"),
	)

	// getMany
	props = append(props,
		appIDProperty(OperationGetMany, "The Clappia app to get submissions from", "e.g. 5f9e3b1c2e1f4a0017a1b2c3"),
		api.ParameterInfo{
			Name:           "returnAll",
			DisplayName:    "Return All",
			Type:           "boolean",
			Default:        false,
			Description:    "Whether to return all results or only up to a given limit",
			DisplayOptions: showFor([]Operation{OperationGetMany}),
		},
		api.ParameterInfo{
			Name:           "limit",
			DisplayName:    "Limit",
			Type:           "number",
			Default:        DefaultLimit,
			Description:    "Max number of results to return",
			DisplayOptions: showFor([]Operation{OperationGetMany}, "returnAll", false),
		},
		api.ParameterInfo{
			Name:           "options",
			DisplayName:    "Options",
			Type:           "collection",
			Default:        map[string]any{},
			Placeholder:    "Add Option",
			DisplayOptions: showFor([]Operation{OperationGetMany}),
			Values: []api.ParameterInfo{{
				Name:           "filterByCustomField",
				DisplayName:    "Filter by Custom Field",
				Type:           "fixedCollection",
				Default:        map[string]any{},
				Description:    "Filter submissions by custom field value using CONTAINS operator",
				MultipleValues: true,
				Values: []api.ParameterInfo{{
					Name:        "customFilters",
					DisplayName: "Custom Filter",
					Type:        "collection",
					Values: []api.ParameterInfo{
						{Name: "fieldId", DisplayName: "Field ID", Type: "string", Default: "", Description: "The Clappia field ID to filter by", Placeholder: "e.g. single_line_text"},
						{Name: "fieldValue", DisplayName: "Field Value", Type: "string", Default: "", Description: "The value to filter by (CONTAINS operator)", Placeholder: "e.g. Some Text"},
					},
				}},
			}},
		},
	)

	// getOwner
	props = append(props,
		appIDProperty(OperationUpdateOwners, "The Clappia app containing the submission", "e.g. 5f9e3b1c2e1f4a0017a1b2c3"),
		submissionIDProperty(OperationUpdateOwners, "The ID of the submission to update owners for", "e.g. XNP68547738"),
		api.ParameterInfo{
			Name:           "emailIds",
			DisplayName:    "Owner Email IDs",
			Type:           "string",
			Default:        "",
			Required:       true,
			Description:    "Comma-separated list of email addresses to set as submission owners",
			Placeholder:    "e.g. a@clappia.com, support@clappia.com",
			DisplayOptions: showFor([]Operation{OperationUpdateOwners}),
		},
	)

	// updateStatus
	props = append(props,
		appIDProperty(OperationUpdateStatus, "The Clappia app containing the submission", "e.g. 5f9e3b1c2e1f4a0017a1b2c3"),
		submissionIDProperty(OperationUpdateStatus, "The ID of the submission to update status for", "e.g. 5f9e3b1c2e1f4a0017a1b2c3"),
		api.ParameterInfo{
			Name:           "status",
			DisplayName:    "Status",
			Type:           "string",
			Default:        "",
			Required:       true,
			Description:    "The new status name for the submission",
			Placeholder:    "e.g. Approved, Rejected, Pending",
			DisplayOptions: showFor([]Operation{OperationUpdateStatus}),
		},
		api.ParameterInfo{
			Name:           "statusComments",
			DisplayName:    "Status Comments",
			Type:           "string",
			Default:        "",
			Description:    "Optional comments for the status update",
			Placeholder:    "e.g. All documents verified and approved for processing",
			DisplayOptions: showFor([]Operation{OperationUpdateStatus}),
		},
	)

	return props
}

// ActiveProperties returns the properties visible for the given values.
// Controlling parameters missing from values take their catalog default.
func ActiveProperties(values map[string]any) []api.ParameterInfo {
	all := Properties()
	active := make([]api.ParameterInfo, 0, len(all))
	for _, prop := range all {
		if isVisible(prop, values) {
			active = append(active, prop)
		}
	}
	return active
}

func isVisible(prop api.ParameterInfo, values map[string]any) bool {
	if prop.DisplayOptions == nil {
		return true
	}
	for name, allowed := range prop.DisplayOptions.Show {
		current, ok := values[name]
		if !ok {
			current = defaultValue(name)
		}
		if !containsValue(allowed, current) {
			return false
		}
	}
	return true
}

func containsValue(allowed []any, v any) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

// showFor builds display options limited to the submission resource, the given
// operations and any extra name/value pairs.
func showFor(ops []Operation, extra ...any) *api.DisplayOptions {
	show := map[string][]any{
		"resource": {string(ResourceSubmission)},
	}
	if len(ops) > 0 {
		names := make([]any, 0, len(ops))
		for _, op := range ops {
			names = append(names, string(op))
		}
		show["operation"] = names
	}
	for i := 0; i+1 < len(extra); i += 2 {
		show[extra[i].(string)] = []any{extra[i+1]}
	}
	return &api.DisplayOptions{Show: show}
}

func appIDProperty(op Operation, description, placeholder string) api.ParameterInfo {
	return api.ParameterInfo{
		Name:        "appId",
		DisplayName: "App",
		Type:        "resourceLocator",
		Default:     map[string]any{"mode": "list", "value": ""},
		Required:    true,
		Description: description,
		Modes: []api.LocatorMode{
			{Name: "list", DisplayName: "From List", Type: "list", SearchMethod: "getApps"},
			{Name: "id", DisplayName: "By ID", Type: "string", Pattern: AppIDPattern, Placeholder: placeholder},
		},
		DisplayOptions: showFor([]Operation{op}),
	}
}

func submissionIDProperty(op Operation, description, placeholder string) api.ParameterInfo {
	return api.ParameterInfo{
		Name:           "submissionId",
		DisplayName:    "Submission ID",
		Type:           "string",
		Default:        "",
		Required:       true,
		Description:    description,
		Placeholder:    placeholder,
		DisplayOptions: showFor([]Operation{op}),
	}
}

func dataModeProperty(op Operation, formDescription, description string) api.ParameterInfo {
	return api.ParameterInfo{
		Name:        "dataMode",
		DisplayName: "Data Mode",
		Type:        "options",
		Default:     DataModeForm,
		Description: description,
		Options: []api.ParameterOption{
			{Name: "Form (Individual Fields)", Value: DataModeForm, Description: formDescription},
			{Name: "JSON (Advanced)", Value: DataModeJSON, Description: "Provide all data as a JSON object"},
		},
		DisplayOptions: showFor([]Operation{op}),
	}
}

func fieldsProperty(op Operation, description, valueDescription string) api.ParameterInfo {
	return api.ParameterInfo{
		Name:           "fields",
		DisplayName:    "Fields",
		Type:           "fixedCollection",
		Default:        map[string]any{},
		Placeholder:    "Add Field",
		Description:    description,
		MultipleValues: true,
		DisplayOptions: showFor([]Operation{op}, "dataMode", DataModeForm),
		Values: []api.ParameterInfo{{
			Name:        "field",
			DisplayName: "Field",
			Type:        "collection",
			Values: []api.ParameterInfo{
				{Name: "name", DisplayName: "Field Name or ID", Type: "options", Default: "", LoadOptionsMethod: "getAppFields", Description: "Choose from the list, or specify an ID using an expression"},
				{Name: "value", DisplayName: "Field Value", Type: "string", Default: "", Description: valueDescription},
			},
		}},
	}
}

// defaultValue returns the catalog default of a possibly dotted parameter
// name, or nil when the catalog has none.
func defaultValue(name string) any {
	path := splitPath(name)
	for _, prop := range catalogProperties() {
		if prop.Name != path[0] || prop.Default == nil {
			continue
		}
		v := prop.Default
		for _, key := range path[1:] {
			m, ok := v.(map[string]any)
			if !ok {
				return nil
			}
			v = m[key]
		}
		return v
	}
	return nil
}

var catalogProperties = sync.OnceValue(Properties)
