package node

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tombee/conductor-clappia/internal/integration/clappia"
	clappiaerrors "github.com/tombee/conductor-clappia/pkg/errors"
)

// Data modes for create and edit.
const (
	DataModeForm = "form"
	DataModeJSON = "json"
)

// DefaultLimit is the getMany page size when returnAll is off and no limit is set.
const DefaultLimit = 50

// buildPayload assembles the submission data for create and edit. Form mode
// merges the "fields.field" rows; any other mode parses jsonParam.
func buildPayload(p paramReader, jsonParam string) (map[string]any, error) {
	mode, err := p.str("dataMode")
	if err != nil {
		return nil, err
	}

	if mode == DataModeForm {
		rows, err := p.value("fields.field")
		if err != nil {
			return nil, err
		}
		return formPayload(rows)
	}

	raw, err := p.value(jsonParam)
	if err != nil {
		return nil, err
	}
	return jsonPayload(jsonParam, raw)
}

// formPayload merges field rows into a payload. A row contributes when its
// name is non-empty and it carries a value key; later rows win.
func formPayload(rows any) (map[string]any, error) {
	payload := map[string]any{}
	if rows == nil {
		return payload, nil
	}

	list, ok := rows.([]any)
	if !ok {
		// a single row given as an object
		if row, isRow := rows.(map[string]any); isRow {
			list = []any{row}
		} else {
			return nil, &clappiaerrors.ValidationError{
				Field:   "fields.field",
				Message: fmt.Sprintf("expected a list of {name, value} rows, got %T", rows),
			}
		}
	}

	for _, r := range list {
		row, ok := r.(map[string]any)
		if !ok {
			continue
		}
		name, _ := scalarString(row["name"])
		value, hasValue := row["value"]
		if name == "" || !hasValue {
			continue
		}
		payload[name] = value
	}
	return payload, nil
}

// jsonPayload parses a JSON-object payload. Values that are already objects
// are taken as-is.
func jsonPayload(field string, raw any) (map[string]any, error) {
	switch t := raw.(type) {
	case map[string]any:
		return t, nil
	case string:
		var v any
		if err := json.Unmarshal([]byte(t), &v); err != nil {
			return nil, &clappiaerrors.ValidationError{
				Field:      field,
				Message:    fmt.Sprintf("invalid JSON: %s", err.Error()),
				Suggestion: `provide a JSON object such as {"title": "My Title"}`,
				Cause:      err,
			}
		}
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, &clappiaerrors.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("expected a JSON object, got %s", jsonKind(v)),
			}
		}
		return obj, nil
	default:
		return nil, &clappiaerrors.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("expected a JSON object string, got %T", raw),
		}
	}
}

// splitEmails splits a comma-separated owner list. An empty string gives an
// empty list; blank segments are kept.
func splitEmails(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

// customFilters reads {fieldId, fieldValue} rows.
func customFilters(rows any) ([]clappia.CustomFilter, error) {
	if rows == nil {
		return nil, nil
	}
	list, ok := rows.([]any)
	if !ok {
		return nil, &clappiaerrors.ValidationError{
			Field:   "options.filterByCustomField.customFilters",
			Message: fmt.Sprintf("expected a list of {fieldId, fieldValue} rows, got %T", rows),
		}
	}

	filters := make([]clappia.CustomFilter, 0, len(list))
	for _, r := range list {
		row, ok := r.(map[string]any)
		if !ok {
			continue
		}
		fieldID, _ := scalarString(row["fieldId"])
		fieldValue, _ := scalarString(row["fieldValue"])
		filters = append(filters, clappia.CustomFilter{FieldID: fieldID, FieldValue: fieldValue})
	}
	return filters, nil
}

// normalizeOutput turns a decoded response into an item payload.
func normalizeOutput(v any) map[string]any {
	switch t := v.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return t
	default:
		return map[string]any{"data": t}
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
