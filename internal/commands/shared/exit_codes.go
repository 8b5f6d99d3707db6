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

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tombee/conductor-clappia/internal/integration/clappia"
	clappiaerrors "github.com/tombee/conductor-clappia/pkg/errors"
)

// Exit codes for clappia commands
const (
	ExitSuccess          = 0
	ExitExecutionFailed  = 1
	ExitInvalidInput     = 2
	ExitCredentialsError = 3
	ExitAPIError         = 4
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewExecutionError creates an error for node execution failures
func NewExecutionError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitExecutionFailed, Message: msg, Cause: cause}
}

// NewInvalidInputError creates an error for bad flags, parameter files or items
func NewInvalidInputError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitInvalidInput, Message: msg, Cause: cause}
}

// NewCredentialsError creates an error for missing or rejected credentials
func NewCredentialsError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitCredentialsError, Message: msg, Cause: cause}
}

// ExitCodeFor picks the exit code for err. An ExitError keeps its own code;
// otherwise typed errors in the chain decide.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var apiErr *clappia.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 401 || apiErr.StatusCode == 403 {
			return ExitCredentialsError
		}
		return ExitAPIError
	}

	var validationErr *clappiaerrors.ValidationError
	if errors.As(err, &validationErr) {
		return ExitInvalidInput
	}

	var configErr *clappiaerrors.ConfigError
	if errors.As(err, &configErr) {
		return ExitCredentialsError
	}

	return ExitExecutionFailed
}

// HandleExitError prints err and exits with the code from ExitCodeFor.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	os.Exit(ReportError(os.Stderr, err))
}

// ReportError writes err (and any suggestion it carries) to w and returns
// the exit code the process should use.
func ReportError(w io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}

	if msg := err.Error(); msg != "" {
		fmt.Fprintln(w, RenderError("Error: "+msg))
	}
	printUserVisibleSuggestion(w, err)

	return ExitCodeFor(err)
}

// printUserVisibleSuggestion prints the suggestion carried by err, if any.
func printUserVisibleSuggestion(w io.Writer, err error) {
	if suggestion := clappiaerrors.SuggestionFor(err); suggestion != "" {
		fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
	}
}

func isAuthFailure(err error) bool {
	var apiErr *clappia.APIError
	return errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403)
}
