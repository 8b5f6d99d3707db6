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
	"io"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/tombee/conductor-clappia/internal/commands/shared"
	"github.com/tombee/conductor-clappia/internal/jq"
	"github.com/tombee/conductor-clappia/internal/node"
)

type runResponse struct {
	shared.JSONResponse
	Items   []node.Item   `json:"items,omitempty"`
	Results []interface{} `json:"results,omitempty"`
}

// outputFilter applies a jq expression to the list of output JSON objects.
type outputFilter struct {
	expr     string
	executor *jq.Executor
}

func newOutputFilter(expr string) (*outputFilter, error) {
	executor := jq.NewExecutor(0, 0)
	if err := executor.Validate(expr); err != nil {
		return nil, err
	}
	return &outputFilter{expr: expr, executor: executor}, nil
}

func (f *outputFilter) apply(ctx context.Context, items []node.Item) ([]interface{}, error) {
	data := make([]interface{}, 0, len(items))
	for _, item := range items {
		data = append(data, item.JSON)
	}
	return f.executor.ExecuteAll(ctx, f.expr, data)
}

// writeResults prints output items, or the jq results when filter is set.
// With --json the output is wrapped in the standard envelope.
func writeResults(ctx context.Context, w io.Writer, items []node.Item, filter *outputFilter) error {
	if items == nil {
		items = []node.Item{}
	}

	if filter != nil {
		results, err := filter.apply(ctx, items)
		if err != nil {
			return shared.NewExecutionError("jq filter failed", err)
		}
		if results == nil {
			results = []interface{}{}
		}
		if shared.GetJSON() {
			return shared.EmitJSON(w, runResponse{JSONResponse: shared.NewJSONResponse("run"), Results: results})
		}
		return shared.EmitJSON(w, results)
	}

	if shared.GetJSON() {
		return shared.EmitJSON(w, runResponse{JSONResponse: shared.NewJSONResponse("run"), Items: items})
	}
	return shared.EmitJSON(w, items)
}

// dumpMetrics writes everything gathered by g in the Prometheus text format.
func dumpMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	return writeFamilies(w, families)
}

func writeFamilies(w io.Writer, families []*dto.MetricFamily) error {
	encoder := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := encoder.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
