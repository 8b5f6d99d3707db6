// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package run

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/tombee/conductor-clappia/internal/commands/shared"
	"github.com/tombee/conductor-clappia/internal/node"
	"github.com/tombee/conductor-clappia/internal/secrets"
)

// setupRun points the command at server with credentials in the environment.
func setupRun(t *testing.T, server *httptest.Server, withCreds bool) {
	t.Helper()
	keyring.MockInit()

	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log:\n  level: error\n"), 0600))
	shared.SetConfigPathForTest(cfg)
	shared.SetBaseURLForTest(server.URL)
	t.Cleanup(func() {
		shared.SetConfigPathForTest("")
		shared.SetBaseURLForTest("")
		shared.SetJSONForTest(false)
	})

	for _, k := range []string{"CLAPPIA_BASE_URL", "CLAPPIA_CONTINUE_ON_FAIL", "CLAPPIA_DEBUG", "CLAPPIA_LOG_LEVEL", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	if withCreds {
		t.Setenv(secrets.EnvWorkplaceID, "WP1")
		t.Setenv(secrets.EnvAPIKey, "secret-key")
		t.Setenv(secrets.EnvRequestingUserEmail, "me@example.com")
	} else {
		t.Setenv(secrets.EnvWorkplaceID, "")
		t.Setenv(secrets.EnvAPIKey, "")
		t.Setenv(secrets.EnvRequestingUserEmail, "")
	}
}

func executeRun(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func submissionsServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "secret-key" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Invalid API key"}`))
			return
		}
		switch r.URL.Path {
		case "/submissions/getSubmissions":
			w.Write([]byte(`{"submissions":[{"submissionId":"S1"},{"submissionId":"S2"}]}`))
		case "/submissions/getSubmission":
			id := r.URL.Query().Get("submissionId")
			if id == "missing" {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"message":"Submission not found"}`))
				return
			}
			w.Write([]byte(`{"submissionId":"` + id + `","status":"Open"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()

	assert.Equal(t, "run", cmd.Use)
	for _, flag := range []string{"operation", "resource", "params", "set", "items", "continue-on-fail", "jq", "metrics", "trace"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "--%s flag not defined", flag)
	}
}

func TestRun_GetManyWithoutItems(t *testing.T) {
	setupRun(t, submissionsServer(t), true)

	stdout, _, err := executeRun(t, nil, "--operation", "getMany", "--set", "appId=APP1", "--set", "limit=10")
	require.NoError(t, err)

	var items []node.Item
	require.NoError(t, json.Unmarshal([]byte(stdout), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "S1", items[0].JSON["submissionId"])
	assert.Nil(t, items[0].PairedItem)
}

func TestRun_ExpressionPerItemFromStdin(t *testing.T) {
	setupRun(t, submissionsServer(t), true)

	stdin := strings.NewReader(`[{"id":"A"},{"id":"B"}]`)
	stdout, _, err := executeRun(t, stdin,
		"--operation", "get",
		"--set", "appId=APP1",
		"--set", "submissionId=={{ json.id }}",
		"--items", "-",
	)
	require.NoError(t, err)

	var items []node.Item
	require.NoError(t, json.Unmarshal([]byte(stdout), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "B", items[1].JSON["submissionId"])
	require.NotNil(t, items[1].PairedItem)
	assert.Equal(t, 1, items[1].PairedItem.Item)
}

func TestRun_JQFilter(t *testing.T) {
	setupRun(t, submissionsServer(t), true)

	stdout, _, err := executeRun(t, nil, "--operation", "getMany", "--set", "appId=APP1", "--jq", "[.[].submissionId]")
	require.NoError(t, err)

	var results []interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	assert.Equal(t, []interface{}{[]interface{}{"S1", "S2"}}, results)
}

func TestRun_InvalidJQ(t *testing.T) {
	setupRun(t, submissionsServer(t), true)

	_, _, err := executeRun(t, nil, "--operation", "getMany", "--jq", ".[")
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidInput, shared.ExitCodeFor(err))
}

func TestRun_ContinueOnFail(t *testing.T) {
	setupRun(t, submissionsServer(t), true)
	itemsFile := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(itemsFile, []byte(`[{"id":"A"},{"id":"missing"}]`), 0600))

	args := []string{"--operation", "get", "--set", "appId=APP1", "--set", "submissionId=={{ json.id }}", "--items", itemsFile}

	_, _, err := executeRun(t, nil, args...)
	require.Error(t, err)
	assert.Equal(t, shared.ExitAPIError, shared.ExitCodeFor(err))

	stdout, _, err := executeRun(t, nil, append(args, "--continue-on-fail")...)
	require.NoError(t, err)

	var items []node.Item
	require.NoError(t, json.Unmarshal([]byte(stdout), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].JSON["submissionId"])
	assert.Contains(t, items[1].JSON["error"], "Submission not found")
}

func TestRun_MissingCredentials(t *testing.T) {
	setupRun(t, submissionsServer(t), false)

	_, _, err := executeRun(t, nil, "--operation", "getMany", "--set", "appId=APP1")
	require.Error(t, err)
	assert.Equal(t, shared.ExitCredentialsError, shared.ExitCodeFor(err))
}

func TestRun_JSONEnvelopeOnFailure(t *testing.T) {
	setupRun(t, submissionsServer(t), true)
	t.Setenv(secrets.EnvAPIKey, "wrong")
	shared.SetJSONForTest(true)

	stdout, _, err := executeRun(t, nil, "--operation", "getMany", "--set", "appId=APP1")
	require.Error(t, err)
	assert.Equal(t, shared.ExitCredentialsError, shared.ExitCodeFor(err))
	assert.Contains(t, stdout, `"success": false`)
	assert.Contains(t, stdout, `"code": "E202"`)
}

func TestRun_Metrics(t *testing.T) {
	setupRun(t, submissionsServer(t), true)

	_, stderr, err := executeRun(t, nil, "--operation", "getMany", "--set", "appId=APP1", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, stderr, `clappia_node_executions_total{operation="getMany",status="success"} 1`)
	assert.Contains(t, stderr, `clappia_node_output_items_total{operation="getMany"} 2`)
}

func TestRun_Trace(t *testing.T) {
	setupRun(t, submissionsServer(t), true)

	_, stderr, err := executeRun(t, nil, "--operation", "getMany", "--set", "appId=APP1", "--trace")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"Name": "clappia.execute"`)
	assert.Contains(t, stderr, `"Name": "clappia.item"`)
}

func TestRun_InvalidAssignment(t *testing.T) {
	setupRun(t, submissionsServer(t), true)

	_, _, err := executeRun(t, nil, "--operation", "getMany", "--set", "appId")
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidInput, shared.ExitCodeFor(err))
}

func TestBuildParameters_Precedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(file, []byte("operation: get\nappId: FROM_FILE\nfields:\n  field: status\n"), 0600))

	values, err := buildParameters(&options{
		paramsFile: file,
		sets:       []string{"appId=FROM_SET", "fields.value=Open"},
		operation:  "edit",
	})
	require.NoError(t, err)

	assert.Equal(t, "edit", values["operation"])
	assert.Equal(t, "FROM_SET", values["appId"])
	assert.Equal(t, map[string]any{"field": "status", "value": "Open"}, values["fields"])
}

func TestLoadItems(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		items, err := loadItems("", nil)
		require.NoError(t, err)
		assert.Nil(t, items)
	})

	t.Run("single object", func(t *testing.T) {
		items, err := loadItems("-", strings.NewReader(`{"a":1}`))
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, float64(1), items[0].JSON["a"])
	})

	t.Run("array element not an object", func(t *testing.T) {
		_, err := loadItems("-", strings.NewReader(`[{"a":1}, 2]`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "items[1]")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := loadItems("-", strings.NewReader(`[{`))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadItems(filepath.Join(t.TempDir(), "nope.json"), nil)
		require.Error(t, err)
	})
}
