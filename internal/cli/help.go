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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tombee/conductor-clappia/internal/commands/shared"
	"github.com/tombee/conductor-clappia/internal/integration/clappia"
	"github.com/tombee/conductor-clappia/internal/node"
)

// CommandMetadata describes one command in JSON help.
type CommandMetadata struct {
	Name        string         `json:"name"`
	Short       string         `json:"short"`
	Long        string         `json:"long,omitempty"`
	Usage       string         `json:"usage"`
	Flags       []FlagMetadata `json:"flags,omitempty"`
	Examples    string         `json:"examples,omitempty"`
	Subcommands []string       `json:"subcommands,omitempty"`
	Group       string         `json:"group,omitempty"`
	Aliases     []string       `json:"aliases,omitempty"`
}

// FlagMetadata describes one flag in JSON help.
type FlagMetadata struct {
	Name      string `json:"name"`
	Shorthand string `json:"shorthand,omitempty"`
	Usage     string `json:"usage"`
	Default   string `json:"default,omitempty"`
	Required  bool   `json:"required"`
}

// OperationSummary is a catalog entry as listed in JSON help.
type OperationSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HelpResponse is the JSON help envelope. Operations and ExitCodes let a
// caller drive `clappia run` without reading the long help text.
type HelpResponse struct {
	shared.JSONResponse
	Commands    []CommandMetadata  `json:"commands,omitempty"`
	Command     *CommandMetadata   `json:"command,omitempty"`
	GlobalFlags []FlagMetadata     `json:"global_flags,omitempty"`
	Operations  []OperationSummary `json:"operations,omitempty"`
	ExitCodes   map[string]int     `json:"exit_codes,omitempty"`
	DocsURL     string             `json:"docs_url"`
}

// NewHelpCommand creates the help command
func NewHelpCommand(rootCmd *cobra.Command) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "help [command]",
		Short: "Help about any command",
		Long: `Help provides detailed information about commands and their usage.

Run 'clappia help' to see all available commands.
Run 'clappia help <command>' to see detailed help for a specific command.
Use --json to get machine-readable output, including the operation
catalog and exit codes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			useJSON := shared.GetJSON() || jsonOutput

			if len(args) == 0 {
				if useJSON {
					return shared.EmitJSON(cmd.OutOrStdout(), overview(rootCmd))
				}
				return rootCmd.Help()
			}

			target, _, err := rootCmd.Find(args)
			if err != nil {
				return fmt.Errorf("command %q not found", args[0])
			}
			if useJSON {
				return shared.EmitJSON(cmd.OutOrStdout(), detail(rootCmd, target))
			}
			return target.Help()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func overview(rootCmd *cobra.Command) HelpResponse {
	var commands []CommandMetadata
	for _, c := range rootCmd.Commands() {
		if !c.Hidden {
			commands = append(commands, extractCommandMetadata(c))
		}
	}

	return HelpResponse{
		JSONResponse: shared.NewJSONResponse("help"),
		Commands:     commands,
		GlobalFlags:  flagsOf(rootCmd.PersistentFlags()),
		Operations:   operationSummaries(),
		ExitCodes:    exitCodes(),
		DocsURL:      clappia.HelpURL,
	}
}

func detail(rootCmd, target *cobra.Command) HelpResponse {
	metadata := extractCommandMetadata(target)
	resp := HelpResponse{
		JSONResponse: shared.NewJSONResponse("help " + target.Name()),
		Command:      &metadata,
		GlobalFlags:  flagsOf(rootCmd.PersistentFlags()),
		DocsURL:      clappia.HelpURL,
	}
	if takesOperation(target) {
		resp.Operations = operationSummaries()
	}
	return resp
}

// takesOperation reports whether cmd has a flag whose value is an operation name.
func takesOperation(cmd *cobra.Command) bool {
	return cmd.Flags().Lookup("operation") != nil || cmd.Flags().Lookup("schema") != nil
}

func operationSummaries() []OperationSummary {
	ops := node.Operations()
	out := make([]OperationSummary, 0, len(ops))
	for _, op := range ops {
		out = append(out, OperationSummary{Name: op.Name, Description: op.Description})
	}
	return out
}

func exitCodes() map[string]int {
	return map[string]int{
		"success":           shared.ExitSuccess,
		"execution_failed":  shared.ExitExecutionFailed,
		"invalid_input":     shared.ExitInvalidInput,
		"credentials_error": shared.ExitCredentialsError,
		"api_error":         shared.ExitAPIError,
	}
}

func extractCommandMetadata(cmd *cobra.Command) CommandMetadata {
	metadata := CommandMetadata{
		Name:     cmd.Name(),
		Short:    cmd.Short,
		Long:     cmd.Long,
		Usage:    cmd.UseLine(),
		Examples: cmd.Example,
		Aliases:  cmd.Aliases,
		Group:    cmd.Annotations["group"],
		Flags:    flagsOf(cmd.Flags()),
	}

	for _, sub := range cmd.Commands() {
		if !sub.Hidden {
			metadata.Subcommands = append(metadata.Subcommands, sub.Name())
		}
	}

	return metadata
}

// flagsOf lists the visible flags of fs. Required comes from MarkFlagRequired.
func flagsOf(fs *pflag.FlagSet) []FlagMetadata {
	var flags []FlagMetadata
	fs.VisitAll(func(flag *pflag.Flag) {
		if flag.Hidden {
			return
		}
		_, required := flag.Annotations[cobra.BashCompOneRequiredFlag]
		flags = append(flags, FlagMetadata{
			Name:      flag.Name,
			Shorthand: flag.Shorthand,
			Usage:     flag.Usage,
			Default:   flag.DefValue,
			Required:  required,
		})
	})
	return flags
}
