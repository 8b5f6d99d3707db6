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

package errors

import (
	"errors"
)

// SuggestionFor returns the first suggestion found while unwrapping err.
// A UserVisibleError ends the search even when it has nothing to suggest.
func SuggestionFor(err error) string {
	for err != nil {
		if userErr, ok := err.(UserVisibleError); ok {
			if !userErr.IsUserVisible() {
				return ""
			}
			return userErr.Suggestion()
		}
		if validationErr, ok := err.(*ValidationError); ok && validationErr.Suggestion != "" {
			return validationErr.Suggestion
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// FieldOf returns the parameter named by the first ValidationError in err's
// chain, or "" when there is none.
func FieldOf(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Field
	}
	return ""
}
