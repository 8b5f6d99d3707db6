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
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tombee/conductor-clappia/internal/node"
	"github.com/tombee/conductor-clappia/internal/node/params"
	clappiaerrors "github.com/tombee/conductor-clappia/pkg/errors"
)

// buildParameters merges the parameter file, --set assignments and the
// --resource/--operation flags, in that order of increasing precedence.
func buildParameters(opts *options) (map[string]any, error) {
	values := map[string]any{}
	if opts.paramsFile != "" {
		loaded, err := params.LoadFile(opts.paramsFile)
		if err != nil {
			return nil, err
		}
		values = loaded
	}

	for _, assignment := range opts.sets {
		name, value, err := params.ParseAssignment(assignment)
		if err != nil {
			return nil, err
		}
		if err := params.Set(values, name, value); err != nil {
			return nil, err
		}
	}

	if opts.resource != "" {
		values["resource"] = opts.resource
	}
	if opts.operation != "" {
		values["operation"] = opts.operation
	}
	return values, nil
}

// loadItems reads input items from a JSON file or stdin. The document is an
// array of objects or a single object. An empty path means no input.
func loadItems(path string, stdin io.Reader) ([]node.Item, error) {
	if path == "" {
		return nil, nil
	}

	var data []byte
	var err error
	if path == "-" {
		if f, ok := stdin.(*os.File); ok {
			if stat, statErr := f.Stat(); statErr == nil && stat.Mode()&os.ModeCharDevice != 0 {
				return nil, fmt.Errorf("--items - requires input on stdin (pipe or redirect)")
			}
		}
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read items file: %w", err)
		}
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &clappiaerrors.ValidationError{
			Field:      "items",
			Message:    fmt.Sprintf("failed to parse JSON: %s", err.Error()),
			Suggestion: "pass a JSON array of objects",
			Cause:      err,
		}
	}

	switch v := doc.(type) {
	case map[string]any:
		return node.NewItems([]map[string]any{v}), nil
	case []any:
		objects := make([]map[string]any, 0, len(v))
		for i, raw := range v {
			obj, ok := raw.(map[string]any)
			if !ok {
				return nil, &clappiaerrors.ValidationError{
					Field:   fmt.Sprintf("items[%d]", i),
					Message: fmt.Sprintf("expected an object, got %T", raw),
				}
			}
			objects = append(objects, obj)
		}
		return node.NewItems(objects), nil
	default:
		return nil, &clappiaerrors.ValidationError{
			Field:      "items",
			Message:    fmt.Sprintf("expected an array of objects, got %T", doc),
			Suggestion: "pass a JSON array of objects",
		}
	}
}
