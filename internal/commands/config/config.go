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

package config

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/conductor-clappia/internal/commands/shared"
	"github.com/tombee/conductor-clappia/internal/config"
)

// NewCommand creates the config command with subcommands.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and manage configuration",
		Long: `View and manage the clappia configuration file.

Subcommands:
  show     - Display the effective configuration
  path     - Show config file location
  set      - Change one setting
  validate - Check the configuration file

The API key is never stored here; use 'clappia credentials set'.`,
		Annotations: map[string]string{
			"group": "setup",
		},
	}

	show := newShowCommand()
	cmd.AddCommand(show)
	cmd.AddCommand(newPathCommand())
	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(NewValidateCommand())

	// If no subcommand provided, default to 'show'
	cmd.RunE = show.RunE

	return cmd
}

// configView is the JSON shape of the configuration.
type configView struct {
	BaseURL             string `json:"base_url"`
	Timeout             string `json:"timeout"`
	WorkplaceID         string `json:"workplace_id,omitempty"`
	RequestingUserEmail string `json:"requesting_user_email,omitempty"`
	ContinueOnFail      bool   `json:"continue_on_fail"`
	LogLevel            string `json:"log_level"`
	LogFormat           string `json:"log_format"`
}

type showResponse struct {
	shared.JSONResponse
	Path   string     `json:"path"`
	Config configView `json:"config"`
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the configuration after defaults and environment overrides
(CLAPPIA_BASE_URL, CLAPPIA_TIMEOUT, CLAPPIA_CONTINUE_ON_FAIL) are applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.OutOrStdout())
		},
	}
}

func newPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long: `Change one setting in the configuration file.

Keys:
  base_url                Clappia public API root
  timeout                 Per-request timeout (e.g. 30s)
  workplace_id            Workplace ID used when none is stored elsewhere
  requesting_user_email   Requesting user email used when none is stored elsewhere
  continue_on_fail        Default for 'run --continue-on-fail' (true/false)
  log.level               trace, debug, info, warn or error
  log.format              json or text`,
		Example: `  clappia config set timeout 10s
  clappia config set log.level debug`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func resolvePath() (string, error) {
	if path := shared.GetConfigPath(); path != "" {
		return path, nil
	}
	path, err := config.ConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to determine config path: %w", err)
	}
	return path, nil
}

func runShow(w io.Writer) error {
	path, err := resolvePath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return shared.NewInvalidInputError("failed to load configuration", err)
	}

	if shared.GetJSON() {
		return shared.EmitJSON(w, showResponse{
			JSONResponse: shared.NewJSONResponse("config show"),
			Path:         path,
			Config:       viewOf(cfg),
		})
	}

	fmt.Fprintf(w, "%s %s\n\n", shared.Header.Render("Configuration:"), path)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

func viewOf(cfg *config.Config) configView {
	return configView{
		BaseURL:             cfg.BaseURL,
		Timeout:             cfg.Timeout.String(),
		WorkplaceID:         cfg.WorkplaceID,
		RequestingUserEmail: cfg.RequestingUserEmail,
		ContinueOnFail:      cfg.ContinueOnFail,
		LogLevel:            cfg.Log.Level,
		LogFormat:           cfg.Log.Format,
	}
}

func runSet(w io.Writer, key, value string) error {
	apply, err := setter(key, value)
	if err != nil {
		return err
	}

	path, err := resolvePath()
	if err != nil {
		return err
	}
	if err := config.Update(path, apply); err != nil {
		return shared.NewInvalidInputError(fmt.Sprintf("cannot set %s", key), err)
	}

	if shared.GetJSON() {
		return shared.EmitJSON(w, shared.NewJSONResponse("config set"))
	}
	fmt.Fprintln(w, shared.RenderOK(fmt.Sprintf("Set %s in %s", key, path)))
	return nil
}

// setter parses value for key and returns the change to apply.
func setter(key, value string) (func(*config.Config) error, error) {
	switch strings.ToLower(key) {
	case "base_url":
		return func(c *config.Config) error { c.BaseURL = value; return nil }, nil
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, shared.NewInvalidInputError(fmt.Sprintf("timeout must be a duration such as 30s, got %q", value), err)
		}
		return func(c *config.Config) error { c.Timeout = d; return nil }, nil
	case "workplace_id":
		return func(c *config.Config) error { c.WorkplaceID = value; return nil }, nil
	case "requesting_user_email":
		return func(c *config.Config) error { c.RequestingUserEmail = value; return nil }, nil
	case "continue_on_fail":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, shared.NewInvalidInputError(fmt.Sprintf("continue_on_fail must be true or false, got %q", value), err)
		}
		return func(c *config.Config) error { c.ContinueOnFail = b; return nil }, nil
	case "log.level":
		return func(c *config.Config) error { c.Log.Level = strings.ToLower(value); return nil }, nil
	case "log.format":
		return func(c *config.Config) error { c.Log.Format = strings.ToLower(value); return nil }, nil
	case "api_key", "apikey":
		return nil, shared.NewInvalidInputError("the API key is not stored in the config file; use 'clappia credentials set'", nil)
	default:
		return nil, shared.NewInvalidInputError(fmt.Sprintf("unknown config key %q", key), nil)
	}
}
