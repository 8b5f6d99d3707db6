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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/conductor-clappia/internal/commands/shared"
	"github.com/tombee/conductor-clappia/internal/config"
	"github.com/tombee/conductor-clappia/internal/integration/clappia"
	"github.com/tombee/conductor-clappia/internal/secrets"
)

// NewCommand creates the credentials command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage Clappia credentials",
		Annotations: map[string]string{
			"group": "configuration",
		},
		Long: `Manage the workplace ID, API key and requesting user email used to
call the Clappia API.

The API key is stored in the system keychain. The workplace ID and email
are written to the config file. Environment variables override both:

  CLAPPIA_WORKPLACE_ID
  CLAPPIA_API_KEY
  CLAPPIA_REQUESTING_USER_EMAIL`,
	}

	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(newShowCommand())
	cmd.AddCommand(newTestCommand())
	cmd.AddCommand(newDeleteCommand())

	return cmd
}

func newSetCommand() *cobra.Command {
	var creds clappia.Credentials
	var apiKeyStdin bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store credentials",
		Long: `Store Clappia credentials.

Missing values are prompted for in a terminal. In scripts pass the workplace
ID and email as flags and pipe the API key on stdin:

  echo "$KEY" | clappia credentials set --workplace-id WP1 --email me@example.com --api-key-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd, creds, apiKeyStdin)
		},
	}

	cmd.Flags().StringVar(&creds.WorkplaceID, "workplace-id", "", "Clappia workplace ID")
	cmd.Flags().StringVar(&creds.RequestingUserEmailAddress, "email", "", "Email address of the requesting user")
	cmd.Flags().BoolVar(&apiKeyStdin, "api-key-stdin", false, "Read the API key from stdin")

	return cmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the credentials in effect and where they come from",
		Args:  cobra.NoArgs,
		RunE:  runShow,
	}
}

func newTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Verify the credentials against the Clappia API",
		Args:  cobra.NoArgs,
		RunE:  runTest,
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove stored credentials from the keychain and config file",
		Args:  cobra.NoArgs,
		RunE:  runDelete,
	}
}

func runSet(cmd *cobra.Command, creds clappia.Credentials, apiKeyStdin bool) error {
	if apiKeyStdin {
		key, err := readAPIKey(cmd.InOrStdin())
		if err != nil {
			return shared.NewInvalidInputError("failed to read API key", err)
		}
		creds.APIKey = key
	}

	if creds.Validate() != nil {
		if shared.IsNonInteractive() {
			return shared.NewInvalidInputError("missing credentials", creds.Validate())
		}
		if err := promptCredentials(&creds); err != nil {
			return shared.NewInvalidInputError("credential entry aborted", err)
		}
	}
	creds = trimmed(creds)
	if err := creds.Validate(); err != nil {
		return shared.NewInvalidInputError("missing credentials", err)
	}

	rt, err := shared.LoadRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := rt.Secrets.Set(ctx, secrets.KeyAPIKey, creds.APIKey, "keychain"); err != nil {
		if errors.Is(err, secrets.ErrBackendUnavailable) {
			return shared.NewCredentialsError("keychain unavailable",
				fmt.Errorf("%w\n\nSet %s in the environment instead", err, secrets.EnvAPIKey))
		}
		return shared.NewCredentialsError("failed to store API key", err)
	}

	err = config.Update(shared.GetConfigPath(), func(cfg *config.Config) error {
		cfg.WorkplaceID = creds.WorkplaceID
		cfg.RequestingUserEmail = creds.RequestingUserEmailAddress
		return nil
	})
	if err != nil {
		return shared.NewInvalidInputError("failed to save config", err)
	}

	rt.Logger.Debug("credentials stored", "workplace_id", creds.WorkplaceID, "api_key", maskSecret(creds.APIKey))
	fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("Credentials stored for workplace "+creds.WorkplaceID))
	return nil
}

// credentialEntry is one row of `credentials show`.
type credentialEntry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

type showResponse struct {
	shared.JSONResponse
	Credentials []credentialEntry `json:"credentials"`
	// LookupOrder lists the backends consulted, first match wins.
	LookupOrder []string `json:"lookup_order"`
}

func runShow(cmd *cobra.Command, args []string) error {
	rt, err := shared.LoadRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	entries := make([]credentialEntry, 0, len(secrets.CredentialKeys))
	for _, key := range secrets.CredentialKeys {
		value, source, err := rt.Secrets.Lookup(ctx, key)
		switch {
		case errors.Is(err, secrets.ErrSecretNotFound):
			entries = append(entries, credentialEntry{Key: key, Source: "unset"})
			continue
		case err != nil:
			return shared.NewCredentialsError("failed to read "+key, err)
		}
		if secrets.IsSecretKey(key) {
			value = maskSecret(value)
		}
		entries = append(entries, credentialEntry{Key: key, Value: value, Source: source})
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(out, showResponse{
			JSONResponse: shared.NewJSONResponse("credentials show"),
			Credentials:  entries,
			LookupOrder:  rt.Secrets.Backends(),
		})
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		value := e.Value
		if e.Source == "unset" {
			value = shared.Muted.Render("-")
		}
		rows = append(rows, []string{e.Key, value, e.Source})
	}
	fmt.Fprint(out, shared.RenderTable([]string{"KEY", "VALUE", "SOURCE"}, rows))
	return nil
}

func runTest(cmd *cobra.Command, args []string) error {
	rt, err := shared.LoadRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	n, err := rt.NewNode()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := n.TestCredentials(ctx, rt.Secrets); err != nil {
		if shared.GetJSON() {
			_ = shared.EmitJSONError(cmd.OutOrStdout(), "credentials test", []shared.JSONError{{
				Code:    shared.ErrorCodeFor(err),
				Message: err.Error(),
			}})
		}
		return err
	}

	if shared.GetJSON() {
		return shared.EmitJSON(cmd.OutOrStdout(), shared.NewJSONResponse("credentials test"))
	}
	fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("Credentials are valid"))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	rt, err := shared.LoadRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	removed := 0
	for _, key := range secrets.CredentialKeys {
		err := rt.Secrets.Delete(ctx, key)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, secrets.ErrSecretNotFound), errors.Is(err, secrets.ErrBackendUnavailable):
		default:
			return shared.NewCredentialsError("failed to delete "+key, err)
		}
	}

	if rt.Config.WorkplaceID != "" || rt.Config.RequestingUserEmail != "" {
		err = config.Update(shared.GetConfigPath(), func(cfg *config.Config) error {
			cfg.WorkplaceID = ""
			cfg.RequestingUserEmail = ""
			return nil
		})
		if err != nil {
			return shared.NewInvalidInputError("failed to save config", err)
		}
		removed++
	}

	out := cmd.OutOrStdout()
	if removed == 0 {
		fmt.Fprintln(out, shared.RenderWarn("No stored credentials found"))
		return nil
	}
	fmt.Fprintln(out, shared.RenderOK("Stored credentials removed"))
	if os.Getenv(secrets.EnvAPIKey) != "" {
		fmt.Fprintln(out, shared.RenderWarn(secrets.EnvAPIKey+" is still set in the environment"))
	}
	return nil
}

// readAPIKey reads a single key from r, which must not be a terminal.
func readAPIKey(r io.Reader) (string, error) {
	if f, ok := r.(*os.File); ok && shared.IsTerminal(f) {
		return "", fmt.Errorf("--api-key-stdin requires input on stdin (pipe or redirect)")
	}
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "", err
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("API key is empty")
	}
	return key, nil
}

func trimmed(c clappia.Credentials) clappia.Credentials {
	return clappia.Credentials{
		WorkplaceID:                strings.TrimSpace(c.WorkplaceID),
		APIKey:                     strings.TrimSpace(c.APIKey),
		RequestingUserEmailAddress: strings.TrimSpace(c.RequestingUserEmailAddress),
	}
}

// maskSecret shows the first and last four characters of long values.
func maskSecret(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "..." + value[len(value)-4:]
}
