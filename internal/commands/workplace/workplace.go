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

// Package workplace implements the app and field pickers as commands.
package workplace

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/conductor-clappia/internal/commands/completion"
	"github.com/tombee/conductor-clappia/internal/commands/shared"
	"github.com/tombee/conductor-clappia/internal/integration/clappia"
	"github.com/tombee/conductor-clappia/internal/node/params"
)

type appsResponse struct {
	shared.JSONResponse
	Apps []clappia.AppOption `json:"apps"`
}

type fieldsResponse struct {
	shared.JSONResponse
	AppID  string                `json:"app_id"`
	Fields []clappia.FieldOption `json:"fields"`
}

// NewAppsCommand creates the apps command
func NewAppsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List the apps in the workplace",
		Annotations: map[string]string{
			"group": "discovery",
		},
		Args: cobra.NoArgs,
		RunE: runApps,
	}
}

// NewFieldsCommand creates the fields command
func NewFieldsCommand() *cobra.Command {
	var appID string

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the fields of an app",
		Long: `List the field IDs of an app, as used in submissionData, fields and
customFilters parameters.

An app that cannot be read yields an empty list; run with --verbose to see why.`,
		Annotations: map[string]string{
			"group": "discovery",
		},
		Example: "  clappia fields --app APP1",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(cmd, appID)
		},
	}

	cmd.Flags().StringVar(&appID, "app", "", "App ID")
	_ = cmd.MarkFlagRequired("app")
	_ = cmd.RegisterFlagCompletionFunc("app", completion.CompleteAppIDs)

	return cmd
}

func runApps(cmd *cobra.Command, args []string) error {
	rt, err := shared.LoadRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	n, err := rt.NewNode()
	if err != nil {
		return err
	}

	apps, err := n.ListApps(contextOf(cmd), rt.Secrets)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(out, appsResponse{JSONResponse: shared.NewJSONResponse("apps"), Apps: apps})
	}
	if len(apps) == 0 {
		fmt.Fprintln(out, shared.RenderWarn("No apps found"))
		return nil
	}

	rows := make([][]string, 0, len(apps))
	for _, app := range apps {
		rows = append(rows, []string{app.Name, app.Value})
	}
	fmt.Fprint(out, shared.RenderTable([]string{"NAME", "APP ID"}, rows))
	return nil
}

func runFields(cmd *cobra.Command, appID string) error {
	rt, err := shared.LoadRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	n, err := rt.NewNode()
	if err != nil {
		return err
	}

	resolver := params.New(map[string]any{"appId": appID}, nil)
	fields := n.ListAppFields(contextOf(cmd), resolver, rt.Secrets)

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(out, fieldsResponse{JSONResponse: shared.NewJSONResponse("fields"), AppID: appID, Fields: fields})
	}
	if len(fields) == 0 {
		fmt.Fprintln(out, shared.RenderWarn("No fields found for app "+appID))
		return nil
	}

	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{f.Value, f.Name})
	}
	fmt.Fprint(out, shared.RenderTable([]string{"FIELD ID", "LABEL"}, rows))
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
