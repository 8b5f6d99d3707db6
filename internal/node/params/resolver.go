// Package params resolves node parameters from static values, evaluating
// "={{ expr }}" expressions against each input item.
package params

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tombee/conductor-clappia/internal/node"
	"github.com/tombee/conductor-clappia/pkg/errors"
)

// expressionPattern matches {{ ... }} segments of an expression value.
var expressionPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Static resolves parameters from a fixed value tree.
//
// String values starting with "=" are expressions: a value that is exactly
// "={{ expr }}" yields the expression's result with its type intact, any other
// "=" value interpolates each {{ expr }} segment into a string. Expressions see
// the current item as json (also $json) and its position as index.
type Static struct {
	values map[string]any
	items  []map[string]any
	eval   *Evaluator
}

var _ node.ParameterResolver = (*Static)(nil)

// New creates a resolver over values for the given input items.
func New(values map[string]any, items []node.Item) *Static {
	if values == nil {
		values = map[string]any{}
	}
	data := make([]map[string]any, 0, len(items))
	for _, item := range items {
		data = append(data, item.JSON)
	}
	return &Static{values: values, items: data, eval: NewEvaluator()}
}

// LoadFile reads a YAML (or JSON) parameter file.
func LoadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters: %w", err)
	}
	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, &errors.ValidationError{
			Field:   path,
			Message: fmt.Sprintf("invalid parameter file: %s", err.Error()),
			Cause:   err,
		}
	}
	return values, nil
}

// Set assigns value at a dotted path, creating intermediate maps.
func Set(values map[string]any, name string, value any) error {
	keys := strings.Split(name, ".")
	cur := values
	for _, key := range keys[:len(keys)-1] {
		next, ok := cur[key]
		if !ok {
			m := map[string]any{}
			cur[key] = m
			cur = m
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return &errors.ValidationError{
				Field:   name,
				Message: fmt.Sprintf("%q is not an object", key),
			}
		}
		cur = m
	}
	cur[keys[len(keys)-1]] = value
	return nil
}

// ParseAssignment parses "name=value". The value is read as a YAML scalar or
// flow collection, so "limit=10" yields an int and "returnAll=true" a bool.
func ParseAssignment(s string) (string, any, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return "", nil, &errors.ValidationError{
			Field:      "set",
			Message:    fmt.Sprintf("expected name=value, got %q", s),
			Suggestion: "use --set appId=ABC123",
		}
	}
	name = strings.TrimSpace(name)

	// expressions and empty values stay strings
	if raw == "" || strings.HasPrefix(raw, "=") {
		return name, raw, nil
	}

	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return name, raw, nil
	}
	return name, v, nil
}

// Parameter implements node.ParameterResolver.
func (s *Static) Parameter(name string, itemIndex int) (any, error) {
	v, ok := lookup(s.values, name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, node.ErrParameterNotSet)
	}
	return s.resolve(v, s.env(itemIndex))
}

func (s *Static) env(itemIndex int) map[string]any {
	item := map[string]any{}
	if itemIndex >= 0 && itemIndex < len(s.items) && s.items[itemIndex] != nil {
		item = s.items[itemIndex]
	}
	return map[string]any{"json": item, "index": itemIndex}
}

// resolve evaluates expressions anywhere inside v.
func (s *Static) resolve(v any, env map[string]any) (any, error) {
	switch t := v.(type) {
	case string:
		if !strings.HasPrefix(t, "=") {
			return t, nil
		}
		return s.expression(t[1:], env)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			r, err := s.resolve(val, env)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, 0, len(t))
		for _, val := range t {
			r, err := s.resolve(val, env)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	default:
		return v, nil
	}
}

func (s *Static) expression(body string, env map[string]any) (any, error) {
	trimmed := strings.TrimSpace(body)
	if m := expressionPattern.FindAllStringSubmatchIndex(trimmed, -1); len(m) == 1 && m[0][0] == 0 && m[0][1] == len(trimmed) {
		return s.eval.Evaluate(normalize(trimmed[m[0][2]:m[0][3]]), env)
	}

	var evalErr error
	out := expressionPattern.ReplaceAllStringFunc(body, func(match string) string {
		if evalErr != nil {
			return match
		}
		v, err := s.eval.Evaluate(normalize(match[2:len(match)-2]), env)
		if err != nil {
			evalErr = err
			return match
		}
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return out, nil
}

// normalize accepts $json and $index as aliases. String literals are left
// untouched.
func normalize(expression string) string {
	var b strings.Builder
	b.Grow(len(expression))

	var quote byte
	for i := 0; i < len(expression); i++ {
		c := expression[i]
		switch {
		case quote != 0:
			if c == '\\' && quote != '`' && i+1 < len(expression) {
				b.WriteByte(c)
				i++
				c = expression[i]
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '$':
			if alias := aliasAt(expression, i); alias != "" {
				b.WriteString(alias)
				i += len(alias)
				continue
			}
		}
		b.WriteByte(c)
	}
	return strings.TrimSpace(b.String())
}

// aliasAt returns the variable name when a $json or $index token starts at i.
func aliasAt(expression string, i int) string {
	if i > 0 && isIdentByte(expression[i-1]) {
		return ""
	}
	for _, name := range []string{"json", "index"} {
		end := i + 1 + len(name)
		if !strings.HasPrefix(expression[i+1:], name) {
			continue
		}
		if end < len(expression) && isIdentByte(expression[end]) {
			continue
		}
		return name
	}
	return ""
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func lookup(values map[string]any, name string) (any, bool) {
	var cur any = values
	for _, key := range strings.Split(name, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}
