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

package credentials

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/tombee/conductor-clappia/internal/integration/clappia"
)

// promptCredentials asks for every empty field of creds. It is a variable
// so tests can replace the terminal form.
var promptCredentials = showCredentialsForm

// showCredentialsForm renders one huh input per credential property, with
// the API key masked. Fields already filled are skipped.
func showCredentialsForm(creds *clappia.Credentials) error {
	targets := map[string]*string{
		"workplaceId":                &creds.WorkplaceID,
		"apiKey":                     &creds.APIKey,
		"requestingUserEmailAddress": &creds.RequestingUserEmailAddress,
	}

	var fields []huh.Field
	for _, prop := range clappia.CredentialProperties() {
		target := targets[prop.Name]
		if target == nil || *target != "" {
			continue
		}

		input := huh.NewInput().
			Title(prop.DisplayName).
			Description(prop.Description).
			Placeholder(prop.Placeholder).
			Value(target).
			Validate(validatorFor(prop))
		if prop.Secret {
			input = input.EchoMode(huh.EchoModePassword)
		}
		fields = append(fields, input)
	}
	if len(fields) == 0 {
		return nil
	}

	fields = append(fields, huh.NewNote().Description(docsLink()))
	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

// validatorFor never echoes the entered value, since one of the fields is
// the API key.
func validatorFor(prop clappia.CredentialProperty) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" && prop.Required {
			return fmt.Errorf("%s is required", prop.DisplayName)
		}
		if prop.Name == "requestingUserEmailAddress" {
			if _, err := mail.ParseAddress(s); err != nil {
				return fmt.Errorf("enter a valid email address")
			}
		}
		return nil
	}
}

func docsLink() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true)
	return "Find your workplace ID and API key at " + style.Render(clappia.DocumentationURL)
}
