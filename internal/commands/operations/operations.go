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

package operations

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/conductor-clappia/internal/commands/completion"
	"github.com/tombee/conductor-clappia/internal/commands/shared"
	"github.com/tombee/conductor-clappia/internal/node"
	"github.com/tombee/conductor-clappia/internal/operation/api"
	clappiaerrors "github.com/tombee/conductor-clappia/pkg/errors"
)

type listResponse struct {
	shared.JSONResponse
	Operations []api.OperationInfo `json:"operations"`
}

type schemaResponse struct {
	shared.JSONResponse
	Operation   string              `json:"operation"`
	Description string              `json:"description"`
	Parameters  []api.ParameterInfo `json:"parameters"`
}

// NewCommand creates the operations command
func NewCommand() *cobra.Command {
	var schema string

	cmd := &cobra.Command{
		Use:   "operations",
		Short: "List operations and their parameters",
		Annotations: map[string]string{
			"group": "discovery",
		},
		Example: `  clappia operations
  clappia operations --schema getMany --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if schema != "" {
				return showSchema(cmd, schema)
			}
			return listOperations(cmd)
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "Show the parameters of one operation")
	_ = cmd.RegisterFlagCompletionFunc("schema", completion.CompleteOperations)

	return cmd
}

func listOperations(cmd *cobra.Command) error {
	ops := node.Operations()
	out := cmd.OutOrStdout()

	if shared.GetJSON() {
		return shared.EmitJSON(out, listResponse{JSONResponse: shared.NewJSONResponse("operations"), Operations: ops})
	}

	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		mode := "read"
		if op.HasTag("write") {
			mode = "write"
		}
		rows = append(rows, []string{op.Name, op.DisplayName, mode, op.Description})
	}
	fmt.Fprint(out, shared.RenderTable([]string{"OPERATION", "NAME", "MODE", "DESCRIPTION"}, rows))
	return nil
}

func showSchema(cmd *cobra.Command, operation string) error {
	schema := node.OperationSchema(operation)
	if schema == nil {
		return shared.NewInvalidInputError("unknown operation", &clappiaerrors.ValidationError{
			Field:      "schema",
			Message:    fmt.Sprintf("no operation named %q", operation),
			Suggestion: "run 'clappia operations' to list supported operations",
		})
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(out, schemaResponse{
			JSONResponse: shared.NewJSONResponse("operations"),
			Operation:    operation,
			Description:  schema.Description,
			Parameters:   schema.Parameters,
		})
	}

	fmt.Fprintln(out, shared.Header.Render(operation)+"  "+schema.Description)
	fmt.Fprintln(out)

	var rows [][]string
	for _, p := range schema.Parameters {
		rows = append(rows, parameterRows(p, "")...)
	}
	fmt.Fprint(out, shared.RenderTable([]string{"PARAMETER", "TYPE", "REQUIRED", "DEFAULT"}, rows))
	return nil
}

// parameterRows flattens collection parameters into dotted names.
func parameterRows(p api.ParameterInfo, prefix string) [][]string {
	name := prefix + p.Name
	required := ""
	if p.Required {
		required = "yes"
	}
	def := ""
	if p.Default != nil {
		def = fmt.Sprint(p.Default)
	}
	if len(p.Options) > 0 {
		values := make([]string, 0, len(p.Options))
		for _, o := range p.Options {
			values = append(values, fmt.Sprint(o.Value))
		}
		def = strings.TrimSpace(def + " (" + strings.Join(values, "|") + ")")
	}

	rows := [][]string{{name, p.Type, required, def}}
	for _, sub := range p.Values {
		rows = append(rows, parameterRows(sub, name+".")...)
	}
	return rows
}
