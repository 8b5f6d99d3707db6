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

/*
Package cli provides the root command and global flags for the clappia CLI.

Individual commands live in the internal/commands subpackages and are added
to the root from main.

# Command Tree

	clappia
	├── run           Execute a submissions operation over input items
	├── operations    List operations and their parameters
	├── apps          List apps in the workplace
	├── fields        List the fields of an app
	├── credentials   Store, show, test and delete credentials
	├── version       Show version
	└── help          Show help

# Usage

From main.go:

	cli.SetVersion(version, commit, date)
	rootCmd := cli.NewRootCommand()
	rootCmd.AddCommand(run.NewCommand(), ...)
	if err := rootCmd.Execute(); err != nil {
	    cli.HandleExitError(err)
	}

# Global Flags

	--verbose, -v    Enable debug logging
	--json           Output in JSON format
	--config         Path to config file
	--base-url       Override the Clappia API base URL

# Exit Codes

  - 0: Success
  - 1: Execution failed
  - 2: Invalid input
  - 3: Missing or rejected credentials
  - 4: Clappia API error
*/
package cli
