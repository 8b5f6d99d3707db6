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
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tombee/conductor-clappia/internal/commands/completion"
	"github.com/tombee/conductor-clappia/internal/commands/shared"
	"github.com/tombee/conductor-clappia/internal/node"
	"github.com/tombee/conductor-clappia/internal/node/params"
	"github.com/tombee/conductor-clappia/internal/tracing"
	clappiaerrors "github.com/tombee/conductor-clappia/pkg/errors"
)

type options struct {
	operation      string
	resource       string
	paramsFile     string
	sets           []string
	itemsFile      string
	continueOnFail bool
	jqExpr         string
	metrics        bool
	trace          bool
}

// NewCommand creates the run command
func NewCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a submissions operation",
		Annotations: map[string]string{
			"group": "execution",
		},
		Long: `Run executes one Clappia operation for every input item.

Parameters come from a YAML or JSON file (--params) and --set assignments,
which override the file. A string value starting with "=" is an expression
evaluated per item, e.g. --set 'submissionId=={{ json.id }}'.

Input items are a JSON array of objects read from --items (use '-' for
stdin). Without items the operation runs once.

Output items are printed as JSON. Use --jq to filter them.`,
		Example: `  clappia run --operation getMany --set appId=APP1 --set limit=10
  clappia run --operation create --params create.yaml --items rows.json
  cat ids.json | clappia run --operation get --set appId=APP1 \
      --set 'submissionId=={{ json.id }}' --items -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.operation, "operation", "o", "", "Operation to run (see 'clappia operations')")
	cmd.Flags().StringVar(&opts.resource, "resource", "", "Resource to operate on (default: submission)")
	cmd.Flags().StringVarP(&opts.paramsFile, "params", "p", "", "YAML or JSON parameter file")
	cmd.Flags().StringArrayVarP(&opts.sets, "set", "s", nil, "Parameter assignment name=value (dotted names allowed, repeatable)")
	cmd.Flags().StringVarP(&opts.itemsFile, "items", "i", "", "JSON file with input items (use '-' for stdin)")
	cmd.Flags().BoolVar(&opts.continueOnFail, "continue-on-fail", false, "Record item failures as error items instead of aborting")
	cmd.Flags().StringVar(&opts.jqExpr, "jq", "", "jq expression applied to the output items")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Print execution metrics to stderr")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Print execution spans to stderr")

	_ = cmd.RegisterFlagCompletionFunc("operation", completion.CompleteOperations)
	_ = cmd.RegisterFlagCompletionFunc("resource", completion.CompleteResources)

	return cmd
}

func runNode(cmd *cobra.Command, opts *options) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := shared.LoadRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("continue-on-fail") {
		opts.continueOnFail = rt.Config.ContinueOnFail
	}

	values, err := buildParameters(opts)
	if err != nil {
		return shared.NewInvalidInputError("invalid parameters", err)
	}

	items, err := loadItems(opts.itemsFile, cmd.InOrStdin())
	if err != nil {
		return shared.NewInvalidInputError("invalid input items", err)
	}

	var filter *outputFilter
	if opts.jqExpr != "" {
		if filter, err = newOutputFilter(opts.jqExpr); err != nil {
			return shared.NewInvalidInputError("invalid --jq expression", err)
		}
	}

	var nodeOpts []node.Option
	var registry *prometheus.Registry
	if opts.metrics {
		registry = prometheus.NewRegistry()
		nodeOpts = append(nodeOpts, node.WithMetrics(node.NewMetrics(registry)))
	}
	if opts.trace {
		v, _, _ := shared.GetVersion()
		provider, err := tracing.NewProvider(tracing.Config{
			ServiceName:    "clappia",
			ServiceVersion: v,
			Writer:         cmd.ErrOrStderr(),
			PrettyPrint:    true,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
				rt.Logger.Warn("failed to flush spans", "error", err)
			}
		}()
		nodeOpts = append(nodeOpts, node.WithTracer(provider.Tracer("clappia/node")))
	}

	n, err := rt.NewNode(nodeOpts...)
	if err != nil {
		return err
	}

	out, execErr := n.Execute(ctx, &node.ExecuteInput{
		Items:          items,
		Params:         params.New(values, items),
		Credentials:    rt.Secrets,
		ContinueOnFail: opts.continueOnFail,
	})

	if registry != nil {
		if err := dumpMetrics(cmd.ErrOrStderr(), registry); err != nil {
			rt.Logger.Warn("failed to write metrics", "error", err)
		}
	}

	if execErr != nil {
		if shared.GetJSON() {
			_ = shared.EmitJSONError(cmd.OutOrStdout(), "run", []shared.JSONError{jsonError(execErr)})
		}
		return fmt.Errorf("%s failed: %w", operationName(values), execErr)
	}

	var results []node.Item
	if len(out) > 0 {
		results = out[0]
	}
	return writeResults(ctx, cmd.OutOrStdout(), results, filter)
}

func operationName(values map[string]any) string {
	if op, ok := values["operation"].(string); ok && op != "" {
		return op
	}
	return "execution"
}

func jsonError(err error) shared.JSONError {
	return shared.JSONError{
		Code:       shared.ErrorCodeFor(err),
		Message:    err.Error(),
		Field:      clappiaerrors.FieldOf(err),
		Suggestion: clappiaerrors.SuggestionFor(err),
	}
}
