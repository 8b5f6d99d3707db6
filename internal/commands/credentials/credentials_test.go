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

package credentials

import (
	"bytes"
	"encoding/json"
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
	"github.com/tombee/conductor-clappia/internal/config"
	"github.com/tombee/conductor-clappia/internal/integration/clappia"
	"github.com/tombee/conductor-clappia/internal/secrets"
)

func setup(t *testing.T) string {
	t.Helper()
	keyring.MockInit()

	path := filepath.Join(t.TempDir(), "config.yaml")
	shared.SetConfigPathForTest(path)
	t.Cleanup(func() {
		shared.SetConfigPathForTest("")
		shared.SetBaseURLForTest("")
		shared.SetJSONForTest(false)
	})

	t.Setenv("CLAPPIA_NON_INTERACTIVE", "true")
	for _, k := range []string{secrets.EnvWorkplaceID, secrets.EnvAPIKey, secrets.EnvRequestingUserEmail, "CLAPPIA_BASE_URL", "CLAPPIA_LOG_LEVEL", "LOG_LEVEL", "CLAPPIA_DEBUG"} {
		t.Setenv(k, "")
	}
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSet_NonInteractive(t *testing.T) {
	path := setup(t)

	out, err := execute(t, "  secret-api-key-1234\n", "set", "--workplace-id", "WP1", "--email", "me@example.com", "--api-key-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "Credentials stored for workplace WP1")

	key, err := keyring.Get(secrets.KeychainService, secrets.KeyAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "secret-api-key-1234", key)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "WP1", cfg.WorkplaceID)
	assert.Equal(t, "me@example.com", cfg.RequestingUserEmail)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-api-key-1234")
}

func TestSet_MissingValuesWithoutTerminal(t *testing.T) {
	setup(t)

	called := false
	promptCredentials = func(*clappia.Credentials) error {
		called = true
		return nil
	}
	t.Cleanup(func() { promptCredentials = showCredentialsForm })

	_, err := execute(t, "", "set", "--workplace-id", "WP1")
	require.Error(t, err)
	assert.False(t, called)
	assert.Equal(t, shared.ExitInvalidInput, shared.ExitCodeFor(err))
	assert.Contains(t, err.Error(), "API key is required")
}

func TestSet_EmptyStdin(t *testing.T) {
	setup(t)

	_, err := execute(t, "   \n", "set", "--workplace-id", "WP1", "--email", "me@example.com", "--api-key-stdin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is empty")
}

func TestShow_SourcesAndMasking(t *testing.T) {
	path := setup(t)
	require.NoError(t, os.WriteFile(path, []byte("requesting_user_email: file@example.com\n"), 0600))
	require.NoError(t, keyring.Set(secrets.KeychainService, secrets.KeyAPIKey, "abcd-secret-wxyz"))
	t.Setenv(secrets.EnvWorkplaceID, "WP-ENV")
	shared.SetJSONForTest(true)

	out, err := execute(t, "", "show")
	require.NoError(t, err)

	var resp showResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Credentials, 3)
	assert.Equal(t, []string{"env", "keychain", "config"}, resp.LookupOrder)

	byKey := map[string]credentialEntry{}
	for _, e := range resp.Credentials {
		byKey[e.Key] = e
	}
	assert.Equal(t, credentialEntry{Key: secrets.KeyWorkplaceID, Value: "WP-ENV", Source: "env"}, byKey[secrets.KeyWorkplaceID])
	assert.Equal(t, credentialEntry{Key: secrets.KeyAPIKey, Value: "abcd...wxyz", Source: "keychain"}, byKey[secrets.KeyAPIKey])
	assert.Equal(t, "config", byKey[secrets.KeyRequestingUserEmail].Source)
	assert.NotContains(t, out, "abcd-secret-wxyz")
}

func TestShow_Unset(t *testing.T) {
	setup(t)

	out, err := execute(t, "", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "KEY")
	assert.Equal(t, 3, strings.Count(out, "unset"))
}

func TestTest_AgainstServer(t *testing.T) {
	setup(t)
	var gotKey, gotWorkplace string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotWorkplace = r.URL.Query().Get("workplaceId")
		if gotKey != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Invalid API key"}`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()
	shared.SetBaseURLForTest(server.URL)

	t.Setenv(secrets.EnvWorkplaceID, "WP1")
	t.Setenv(secrets.EnvRequestingUserEmail, "me@example.com")

	t.Setenv(secrets.EnvAPIKey, "good-key")
	out, err := execute(t, "", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "Credentials are valid")
	assert.Equal(t, "WP1", gotWorkplace)

	t.Setenv(secrets.EnvAPIKey, "bad-key")
	_, err = execute(t, "", "test")
	require.Error(t, err)
	assert.Equal(t, shared.ExitCredentialsError, shared.ExitCodeFor(err))
}

func TestDelete(t *testing.T) {
	path := setup(t)

	out, err := execute(t, "", "delete")
	require.NoError(t, err)
	assert.Contains(t, out, "No stored credentials found")

	_, err = execute(t, "secret-api-key-1234", "set", "--workplace-id", "WP1", "--email", "me@example.com", "--api-key-stdin")
	require.NoError(t, err)

	out, err = execute(t, "", "delete")
	require.NoError(t, err)
	assert.Contains(t, out, "Stored credentials removed")

	_, err = keyring.Get(secrets.KeychainService, secrets.KeyAPIKey)
	assert.ErrorIs(t, err, keyring.ErrNotFound)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.WorkplaceID)
}

func TestValidatorFor(t *testing.T) {
	props := map[string]clappia.CredentialProperty{}
	for _, p := range clappia.CredentialProperties() {
		props[p.Name] = p
	}

	assert.Error(t, validatorFor(props["workplaceId"])(""))
	assert.NoError(t, validatorFor(props["workplaceId"])("WP1"))
	assert.Error(t, validatorFor(props["requestingUserEmailAddress"])("nope"))
	assert.NoError(t, validatorFor(props["requestingUserEmailAddress"])("me@example.com"))

	err := validatorFor(props["apiKey"])("")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "YOUR_WORKPLACE_API_KEY")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "abcd...wxyz", maskSecret("abcd1234wxyz"))
}
