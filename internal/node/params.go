package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	clappiaerrors "github.com/tombee/conductor-clappia/pkg/errors"
)

// paramReader reads typed parameters for one item index, falling back to the
// catalog default when the resolver has no value.
type paramReader struct {
	resolver ParameterResolver
	index    int
}

func (p paramReader) value(name string) (any, error) {
	v, err := p.resolver.Parameter(name, p.index)
	if err != nil {
		if errors.Is(err, ErrParameterNotSet) {
			return defaultValue(name), nil
		}
		return nil, fmt.Errorf("failed to resolve parameter %q: %w", name, err)
	}
	return v, nil
}

func (p paramReader) str(name string) (string, error) {
	v, err := p.value(name)
	if err != nil {
		return "", err
	}
	s, ok := scalarString(v)
	if !ok {
		return "", &clappiaerrors.ValidationError{
			Field:   name,
			Message: fmt.Sprintf("expected a string, got %T", v),
		}
	}
	return s, nil
}

func (p paramReader) boolean(name string) (bool, error) {
	v, err := p.value(name)
	if err != nil {
		return false, err
	}
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return false, &clappiaerrors.ValidationError{Field: name, Message: fmt.Sprintf("expected a boolean, got %q", t), Cause: err}
		}
		return b, nil
	default:
		return false, &clappiaerrors.ValidationError{Field: name, Message: fmt.Sprintf("expected a boolean, got %T", v)}
	}
}

func (p paramReader) integer(name string) (int, error) {
	v, err := p.value(name)
	if err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, &clappiaerrors.ValidationError{Field: name, Message: fmt.Sprintf("expected a whole number, got %v", t)}
		}
		return int(t), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, &clappiaerrors.ValidationError{Field: name, Message: fmt.Sprintf("expected a whole number, got %s", t), Cause: err}
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, &clappiaerrors.ValidationError{Field: name, Message: fmt.Sprintf("expected a number, got %q", t), Cause: err}
		}
		return n, nil
	default:
		return 0, &clappiaerrors.ValidationError{Field: name, Message: fmt.Sprintf("expected a number, got %T", v)}
	}
}

// appID reads the "appId" resource locator.
func (p paramReader) appID() (string, error) {
	v, err := p.value("appId")
	if err != nil {
		return "", err
	}
	return ResolveAppID(v), nil
}

// ResolveAppID returns the plain app identifier of a resource locator value.
// Locators are either a bare string or a map carrying the identifier under
// "value"; a locator with an empty value resolves to "".
func ResolveAppID(v any) string {
	if m, ok := v.(map[string]any); ok {
		v = m["value"]
	}
	s, _ := scalarString(v)
	return s
}

// scalarString renders JSON scalars as strings. It reports false for objects and lists.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

func splitPath(name string) []string {
	return strings.Split(name, ".")
}
