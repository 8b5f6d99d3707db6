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

package shared

// Error codes for structured JSON output
const (
	ErrorCodeInvalidInput    = "E001" // Bad flag, parameter file or item
	ErrorCodeMissingCreds    = "E201" // Credentials not configured
	ErrorCodeAuthFailed      = "E202" // Clappia rejected the credentials
	ErrorCodeAPIError        = "E301" // Clappia returned an error
	ErrorCodeExecutionFailed = "E403" // Execution failed
)

// ErrorCodeFor maps an error to its JSON error code.
func ErrorCodeFor(err error) string {
	switch ExitCodeFor(err) {
	case ExitInvalidInput:
		return ErrorCodeInvalidInput
	case ExitCredentialsError:
		if isAuthFailure(err) {
			return ErrorCodeAuthFailed
		}
		return ErrorCodeMissingCreds
	case ExitAPIError:
		return ErrorCodeAPIError
	default:
		return ErrorCodeExecutionFailed
	}
}
