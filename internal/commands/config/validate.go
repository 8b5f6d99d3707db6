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
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/tombee/conductor-clappia/internal/commands/shared"
	"github.com/tombee/conductor-clappia/internal/config"
	"github.com/tombee/conductor-clappia/internal/secrets"
)

// ValidationResult represents the result of config validation.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type validateResponse struct {
	shared.JSONResponse
	Path string `json:"path"`
	ValidationResult
}

// NewValidateCommand creates the 'config validate' subcommand.
func NewValidateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate the configuration file.

Checks performed:
  - YAML syntax and field values
  - base_url uses https
  - A workplace ID is available from the file or the environment

With --strict, warnings are treated as errors.`,
		Example: `  clappia config validate
  clappia config validate --strict --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")

	return cmd
}

func runValidate(w io.Writer, strict bool) error {
	path, err := resolvePath()
	if err != nil {
		return err
	}

	var result ValidationResult
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		result = ValidationResult{
			Valid:    true,
			Warnings: []string{fmt.Sprintf("No config file at %s; defaults apply", path)},
		}
	} else if cfg, err := config.Load(path); err != nil {
		result = ValidationResult{Errors: []string{describe(err)}}
	} else {
		result = validateConfig(cfg)
	}

	return outputValidationResult(w, path, result, strict)
}

// validateConfig reports settings that load but are likely to fail at run time.
func validateConfig(cfg *config.Config) ValidationResult {
	var warnings []string

	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Scheme != "https" {
		warnings = append(warnings, fmt.Sprintf("base_url %q does not use https; the API key would be sent in clear text", cfg.BaseURL))
	}
	if cfg.WorkplaceID == "" && os.Getenv(secrets.EnvName(secrets.KeyWorkplaceID)) == "" {
		warnings = append(warnings, "No workplace_id configured; it must come from the keychain or "+secrets.EnvName(secrets.KeyWorkplaceID))
	}

	return ValidationResult{Valid: true, Warnings: warnings}
}

// describe appends the direct cause, which config errors leave out of Error().
func describe(err error) string {
	if cause := errors.Unwrap(err); cause != nil {
		return err.Error() + ": " + cause.Error()
	}
	return err.Error()
}

func outputValidationResult(w io.Writer, path string, result ValidationResult, strict bool) error {
	if shared.GetJSON() {
		resp := validateResponse{
			JSONResponse:     shared.NewJSONResponse("config validate"),
			Path:             path,
			ValidationResult: result,
		}
		resp.Success = result.Valid && !(strict && len(result.Warnings) > 0)
		if err := shared.EmitJSON(w, resp); err != nil {
			return err
		}
	} else {
		if result.Valid {
			fmt.Fprintln(w, shared.RenderOK("Configuration is valid"))
		} else {
			fmt.Fprintln(w, shared.RenderError("Configuration validation failed"))
		}
		fmt.Fprintln(w)

		if len(result.Errors) > 0 {
			fmt.Fprintln(w, shared.Header.Render("Errors:"))
			for _, e := range result.Errors {
				fmt.Fprintf(w, "  %s %s\n", shared.StatusError.Render(shared.SymbolError), e)
			}
			fmt.Fprintln(w)
		}

		if len(result.Warnings) > 0 {
			fmt.Fprintln(w, shared.Header.Render("Warnings:"))
			for _, warn := range result.Warnings {
				fmt.Fprintf(w, "  %s %s\n", shared.StatusWarn.Render(shared.SymbolWarn), warn)
			}
			fmt.Fprintln(w)
		}

		if result.Valid && len(result.Warnings) == 0 {
			fmt.Fprintln(w, "No issues found.")
		}
	}

	if !result.Valid {
		return shared.NewInvalidInputError("configuration is invalid", nil)
	}
	if strict && len(result.Warnings) > 0 {
		return shared.NewInvalidInputError("validation failed (strict mode: warnings treated as errors)", nil)
	}
	return nil
}
