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

package completion

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tombee/conductor-clappia/internal/commands/shared"
	"github.com/tombee/conductor-clappia/internal/integration/clappia"
)

// appsTimeout bounds the workplace lookup so a slow API never stalls the shell.
const appsTimeout = 2 * time.Second

// listApps is replaced in tests.
var listApps = fetchApps

// CompleteAppIDs provides dynamic completion for --app values.
// Queries the workplace with the stored credentials and returns app IDs
// with app names as descriptions.
func CompleteAppIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		parent := context.Background()
		if cmd != nil && cmd.Context() != nil {
			parent = cmd.Context()
		}
		ctx, cancel := context.WithTimeout(parent, appsTimeout)
		defer cancel()

		apps, err := listApps(ctx)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		out := make([]string, 0, len(apps))
		for _, app := range apps {
			if !strings.HasPrefix(app.Value, toComplete) {
				continue
			}
			out = append(out, app.Value+"\t"+app.Name)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
}

func fetchApps(ctx context.Context) ([]clappia.AppOption, error) {
	rt, err := shared.LoadRuntime(io.Discard)
	if err != nil {
		return nil, err
	}
	n, err := rt.NewNode()
	if err != nil {
		return nil, err
	}
	return n.ListApps(ctx, rt.Secrets)
}
