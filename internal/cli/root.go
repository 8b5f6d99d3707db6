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

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tombee/conductor-clappia/internal/commands/shared"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for the clappia CLI
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clappia",
		Short: "Clappia - work with app submissions from the command line",
		Long: `clappia runs the Clappia submissions node against the Clappia public API.
It creates, reads, updates and lists submissions, changes their status and
owners, and lists the apps and fields of a workplace.

Run 'clappia credentials set' to store your workplace ID and API key.
Run 'clappia operations' to see the available operations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	verbose, json, config, baseURL := shared.RegisterFlagPointers()

	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ~/.config/clappia/config.yaml)")
	cmd.PersistentFlags().StringVar(baseURL, "base-url", "", "Override the Clappia API base URL")

	return cmd
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
