package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/conductor-clappia/internal/node"
)

func items(objs ...map[string]any) []node.Item {
	return node.NewItems(objs)
}

func TestStatic_PlainValues(t *testing.T) {
	r := New(map[string]any{
		"operation": "get",
		"limit":     10,
		"fields": map[string]any{
			"field": []any{map[string]any{"name": "a", "value": "1"}},
		},
	}, nil)

	v, err := r.Parameter("operation", 0)
	require.NoError(t, err)
	assert.Equal(t, "get", v)

	v, err = r.Parameter("limit", 3)
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	v, err = r.Parameter("fields.field", 0)
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"name": "a", "value": "1"}}, v)
}

func TestStatic_NotSet(t *testing.T) {
	r := New(map[string]any{"options": map[string]any{}}, nil)

	_, err := r.Parameter("appId", 0)
	assert.ErrorIs(t, err, node.ErrParameterNotSet)

	_, err = r.Parameter("options.filterByCustomField.customFilters", 0)
	assert.ErrorIs(t, err, node.ErrParameterNotSet)
}

func TestStatic_Expressions(t *testing.T) {
	r := New(map[string]any{
		"submissionId": "={{ json.id }}",
		"limit":        "={{ json.count * 2 }}",
		"status":       "=Status {{ $json.state }} #{{ index }}",
		"missing":      "={{ json.nope }}",
		"fields": map[string]any{"field": []any{
			map[string]any{"name": "title", "value": "={{ json.title }}"},
		}},
	}, items(
		map[string]any{"id": "S1", "count": 2, "state": "open", "title": "first"},
		map[string]any{"id": "S2", "count": 5, "state": "closed", "title": "second"},
	))

	v, err := r.Parameter("submissionId", 1)
	require.NoError(t, err)
	assert.Equal(t, "S2", v)

	v, err = r.Parameter("limit", 0)
	require.NoError(t, err)
	assert.EqualValues(t, 4, v)

	v, err = r.Parameter("status", 1)
	require.NoError(t, err)
	assert.Equal(t, "Status closed #1", v)

	v, err = r.Parameter("missing", 0)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = r.Parameter("fields.field", 0)
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"name": "title", "value": "first"}}, v)
}

func TestStatic_ExpressionWithoutItems(t *testing.T) {
	r := New(map[string]any{"submissionId": "={{ json.id }}", "pos": "={{ index }}"}, nil)

	v, err := r.Parameter("submissionId", 0)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = r.Parameter("pos", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestStatic_InvalidExpression(t *testing.T) {
	r := New(map[string]any{"submissionId": "={{ json.id + }}"}, items(map[string]any{"id": "S1"}))
	_, err := r.Parameter("submissionId", 0)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"$json.a", "json.a"},
		{" $index + 1 ", "index + 1"},
		{`$json.note == "$json"`, `json.note == "$json"`},
		{`$json.tag == '$index' && $index > 0`, `json.tag == '$index' && index > 0`},
		{`"a \" $json" + $json.b`, `"a \" $json" + json.b`},
		{"$jsonish + $json_x", "$jsonish + $json_x"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.input))
		})
	}
}

func TestStatic_AliasInsideStringLiteral(t *testing.T) {
	r := New(map[string]any{"match": `={{ $json.note == "$json" }}`}, items(
		map[string]any{"note": "$json"},
		map[string]any{"note": "other"},
	))

	v, err := r.Parameter("match", 0)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = r.Parameter("match", 1)
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestEvaluator_Cache(t *testing.T) {
	e := NewEvaluator()
	for i := 0; i < 3; i++ {
		v, err := e.Evaluate("json.a", map[string]any{"json": map[string]any{"a": i}})
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	assert.Len(t, e.cache, 1)
}

func TestSet(t *testing.T) {
	values := map[string]any{"appId": "A"}
	require.NoError(t, Set(values, "options.filterByCustomField.customFilters", []any{}))
	require.NoError(t, Set(values, "submissionId", "S1"))

	assert.Equal(t, map[string]any{
		"appId":        "A",
		"submissionId": "S1",
		"options": map[string]any{
			"filterByCustomField": map[string]any{"customFilters": []any{}},
		},
	}, values)

	assert.Error(t, Set(values, "appId.value", "B"))
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		want     any
		wantErr  bool
	}{
		{in: "limit=10", wantName: "limit", want: 10},
		{in: "returnAll=true", wantName: "returnAll", want: true},
		{in: "appId=ABC123", wantName: "appId", want: "ABC123"},
		{in: "emailIds=a@x.com, b@x.com", wantName: "emailIds", want: "a@x.com, b@x.com"},
		{in: "statusComments=", wantName: "statusComments", want: ""},
		{in: "submissionId=={{ json.id }}", wantName: "submissionId", want: "={{ json.id }}"},
		{in: `fields.field=[{name: a, value: "1"}]`, wantName: "fields.field", want: []any{map[string]any{"name": "a", "value": "1"}}},
		{in: "novalue", wantErr: true},
		{in: "=x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, v, err := ParseAssignment(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
operation: getMany
appId:
  mode: list
  value: APP1
returnAll: false
limit: 25
options:
  filterByCustomField:
    customFilters:
      - fieldId: status
        fieldValue: open
`), 0o600))

	values, err := LoadFile(path)
	require.NoError(t, err)

	r := New(values, nil)
	v, err := r.Parameter("appId", 0)
	require.NoError(t, err)
	assert.Equal(t, "APP1", node.ResolveAppID(v))

	v, err = r.Parameter("options.filterByCustomField.customFilters", 0)
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"fieldId": "status", "fieldValue": "open"}}, v)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("operation: [unclosed"), 0o600))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}
