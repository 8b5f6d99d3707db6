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
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/tombee/conductor-clappia/internal/integration/clappia"
)

func newTestTree() *cobra.Command {
	rootCmd := NewRootCommand()

	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Execute a node operation",
		Long:    "Run executes one operation for every input item.",
		Example: "  clappia run --operation getMany --set appId=APP1",
		Annotations: map[string]string{
			"group": "execution",
		},
		RunE: func(cmd *cobra.Command, args []string) error { return nil },
	}
	runCmd.Flags().String("operation", "", "Operation to run")
	_ = runCmd.MarkFlagRequired("operation")
	runCmd.Flags().Bool("continue-on-fail", false, "Keep going after item failures")
	rootCmd.AddCommand(runCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "apps",
		Short: "List apps in the workplace",
		RunE:  func(cmd *cobra.Command, args []string) error { return nil },
	})

	rootCmd.SetHelpCommand(NewHelpCommand(rootCmd))
	return rootCmd
}

func executeHelp(t *testing.T, args ...string) HelpResponse {
	t.Helper()

	rootCmd := newTestTree()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"help"}, args...))

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var resp HelpResponse
	if err := json.NewDecoder(strings.NewReader(buf.String())).Decode(&resp); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, buf.String())
	}
	return resp
}

func TestHelpCommand_JSONListsCommands(t *testing.T) {
	resp := executeHelp(t, "--json")

	if resp.Version != "1.0" || !resp.Success {
		t.Errorf("unexpected envelope: %+v", resp.JSONResponse)
	}
	if resp.DocsURL != clappia.HelpURL {
		t.Errorf("docs_url = %q, want %q", resp.DocsURL, clappia.HelpURL)
	}
	if resp.Command != nil {
		t.Errorf("expected no single command, got %+v", resp.Command)
	}

	names := map[string]bool{}
	for _, c := range resp.Commands {
		names[c.Name] = true
	}
	if !names["run"] || !names["apps"] {
		t.Errorf("expected run and apps in command list, got %v", names)
	}

	if len(resp.Operations) != 7 || resp.Operations[0].Name != "create" {
		t.Errorf("expected the 7 catalog operations, got %+v", resp.Operations)
	}
	if resp.ExitCodes["credentials_error"] != 3 || resp.ExitCodes["api_error"] != 4 {
		t.Errorf("unexpected exit codes: %v", resp.ExitCodes)
	}

	globals := map[string]bool{}
	for _, f := range resp.GlobalFlags {
		globals[f.Name] = true
	}
	for _, name := range []string{"verbose", "json", "config", "base-url"} {
		if !globals[name] {
			t.Errorf("expected global flag %q", name)
		}
	}
}

func TestHelpCommand_JSONSingleCommand(t *testing.T) {
	resp := executeHelp(t, "run", "--json")

	if resp.Command == nil {
		t.Fatal("expected command metadata, got nil")
	}
	if resp.Command.Name != "run" {
		t.Errorf("name = %q, want run", resp.Command.Name)
	}
	if resp.Command.Group != "execution" {
		t.Errorf("group = %q, want execution", resp.Command.Group)
	}
	if resp.Command.Examples == "" {
		t.Error("expected examples to be populated")
	}
	if len(resp.Commands) > 0 {
		t.Errorf("expected no command list, got %d entries", len(resp.Commands))
	}
	if len(resp.Operations) == 0 {
		t.Error("expected operations for a command taking --operation")
	}

	required := map[string]bool{}
	for _, f := range resp.Command.Flags {
		required[f.Name] = f.Required
	}
	if !required["operation"] {
		t.Error("expected --operation to be reported as required")
	}
	if required["continue-on-fail"] {
		t.Error("expected --continue-on-fail to be optional")
	}
}

func TestHelpCommand_JSONCommandWithoutOperations(t *testing.T) {
	resp := executeHelp(t, "apps", "--json")

	if resp.Command == nil || resp.Command.Name != "apps" {
		t.Fatalf("expected apps metadata, got %+v", resp.Command)
	}
	if len(resp.Operations) != 0 {
		t.Errorf("expected no operations for apps, got %d", len(resp.Operations))
	}
}

func TestHelpCommand_UnknownCommand(t *testing.T) {
	rootCmd := newTestTree()
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"help", "nope", "--json"})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), `"nope"`) {
		t.Errorf("error = %v, want it to name the command", err)
	}
}

func TestHelpCommand_HumanOutput(t *testing.T) {
	rootCmd := newTestTree()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"help"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	if strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("expected human output, got JSON")
	}
	if !strings.Contains(output, "clappia") {
		t.Errorf("expected root usage in output, got: %s", output)
	}
}

func TestExtractCommandMetadata(t *testing.T) {
	cmd := &cobra.Command{
		Use:     "fields",
		Short:   "List the fields of an app",
		Aliases: []string{"field"},
	}
	cmd.Flags().String("app", "", "App ID")
	cmd.Flags().Bool("debug-raw", false, "Dump raw responses")
	_ = cmd.Flags().MarkHidden("debug-raw")

	metadata := extractCommandMetadata(cmd)

	if metadata.Name != "fields" {
		t.Errorf("name = %q, want fields", metadata.Name)
	}
	if len(metadata.Aliases) != 1 {
		t.Errorf("expected 1 alias, got %d", len(metadata.Aliases))
	}
	if len(metadata.Flags) != 1 || metadata.Flags[0].Name != "app" {
		t.Errorf("expected only the visible app flag, got %+v", metadata.Flags)
	}
}
