// Package api provides common types and utilities for API integrations.
package api

import (
	"github.com/tombee/conductor-clappia/internal/operation/transport"
)

// ProviderConfig holds configuration for API integrations.
type ProviderConfig struct {
	// Transport is the HTTP transport for making requests
	Transport transport.Transport

	// BaseURL is the API base URL
	BaseURL string
}

// OperationInfo provides metadata about an integration operation.
type OperationInfo struct {
	// Name is the operation identifier (e.g., "create")
	Name string `json:"name" yaml:"name"`

	// DisplayName is the label shown in pickers (e.g., "Update Owners")
	DisplayName string `json:"display_name" yaml:"display_name"`

	// Description is a human-readable description
	Description string `json:"description" yaml:"description"`

	// Action is the short imperative summary (e.g., "Create a submission")
	Action string `json:"action,omitempty" yaml:"action,omitempty"`

	// Category groups related operations (e.g., "submissions", "apps")
	Category string `json:"category" yaml:"category"`

	// Tags classify operations (e.g., "write", "read", "fan-out")
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// HasTag reports whether the operation carries the given tag.
func (o OperationInfo) HasTag(tag string) bool {
	for _, t := range o.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// OperationSchema describes an operation's inputs.
type OperationSchema struct {
	// Description is a human-readable description
	Description string

	// Parameters describes the operation inputs
	Parameters []ParameterInfo
}

// ParameterInfo describes an operation parameter.
type ParameterInfo struct {
	// Name is the parameter identifier
	Name string `json:"name" yaml:"name"`

	// DisplayName is the label shown in forms
	DisplayName string `json:"display_name" yaml:"display_name"`

	// Type is the parameter type (string, number, boolean, options, json,
	// resourceLocator, fixedCollection, collection)
	Type string `json:"type" yaml:"type"`

	// Description is a human-readable description
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Placeholder is example input shown in empty fields
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`

	// Hint is extra guidance shown below the field
	Hint string `json:"hint,omitempty" yaml:"hint,omitempty"`

	// Required indicates if the parameter is required
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`

	// Default is the default value (nil if no default)
	Default interface{} `json:"default,omitempty" yaml:"default,omitempty"`

	// Options enumerates allowed values for "options" parameters
	Options []ParameterOption `json:"options,omitempty" yaml:"options,omitempty"`

	// LoadOptionsMethod names the option provider backing this parameter
	LoadOptionsMethod string `json:"load_options_method,omitempty" yaml:"load_options_method,omitempty"`

	// Values describes the sub-fields of collection parameters
	Values []ParameterInfo `json:"values,omitempty" yaml:"values,omitempty"`

	// MultipleValues allows a collection to hold repeated rows
	MultipleValues bool `json:"multiple_values,omitempty" yaml:"multiple_values,omitempty"`

	// Modes lists the input modes of a resourceLocator parameter
	Modes []LocatorMode `json:"modes,omitempty" yaml:"modes,omitempty"`

	// DisplayOptions controls when the parameter is shown (nil means always)
	DisplayOptions *DisplayOptions `json:"display_options,omitempty" yaml:"display_options,omitempty"`
}

// DisplayOptions lists, per controlling parameter, the values that make a
// parameter visible. Every listed parameter must match.
type DisplayOptions struct {
	Show map[string][]interface{} `json:"show,omitempty" yaml:"show,omitempty"`
}

// ParameterOption is one selectable value of an "options" parameter.
type ParameterOption struct {
	Name        string      `json:"name" yaml:"name"`
	Value       interface{} `json:"value" yaml:"value"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Action      string      `json:"action,omitempty" yaml:"action,omitempty"`
}

// LocatorMode is one way of entering a resourceLocator value.
type LocatorMode struct {
	Name         string `json:"name" yaml:"name"`
	DisplayName  string `json:"display_name" yaml:"display_name"`
	Type         string `json:"type" yaml:"type"`
	SearchMethod string `json:"search_method,omitempty" yaml:"search_method,omitempty"`
	Pattern      string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Placeholder  string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}
