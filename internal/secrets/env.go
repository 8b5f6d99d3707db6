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

package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvBackendPriority is the highest priority so the environment always
// overrides stored credentials.
const EnvBackendPriority = 100

// Environment variables holding each credential key.
const (
	EnvWorkplaceID         = "CLAPPIA_WORKPLACE_ID"
	EnvAPIKey              = "CLAPPIA_API_KEY"
	EnvRequestingUserEmail = "CLAPPIA_REQUESTING_USER_EMAIL"
)

var envNames = map[string]string{
	KeyWorkplaceID:         EnvWorkplaceID,
	KeyAPIKey:              EnvAPIKey,
	KeyRequestingUserEmail: EnvRequestingUserEmail,
}

// EnvBackend provides read-only access to credentials via environment variables.
// Keys without a fixed variable name are looked up as CLAPPIA_<KEY>.
type EnvBackend struct {
	getenv func(string) string
}

// NewEnvBackend creates a backend reading the process environment.
func NewEnvBackend() *EnvBackend {
	return &EnvBackend{getenv: os.Getenv}
}

// Name returns the backend identifier.
func (e *EnvBackend) Name() string {
	return "env"
}

// Get retrieves a credential from the environment.
func (e *EnvBackend) Get(ctx context.Context, key string) (string, error) {
	name := EnvName(key)
	if value := strings.TrimSpace(e.getenv(name)); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("%w: %s not set", ErrSecretNotFound, name)
}

// Set returns ErrReadOnlyBackend as environment backend is read-only.
func (e *EnvBackend) Set(ctx context.Context, key string, value string) error {
	return ErrReadOnlyBackend
}

// Delete returns ErrReadOnlyBackend as environment backend is read-only.
func (e *EnvBackend) Delete(ctx context.Context, key string) error {
	return ErrReadOnlyBackend
}

// Available returns true as environment variables are always available.
func (e *EnvBackend) Available() bool {
	return true
}

// Priority returns the backend priority (highest).
func (e *EnvBackend) Priority() int {
	return EnvBackendPriority
}

// ReadOnly returns true as environment backend is read-only.
func (e *EnvBackend) ReadOnly() bool {
	return true
}

// EnvName returns the environment variable consulted for key.
// Example: "workplace_id" -> "CLAPPIA_WORKPLACE_ID"
func EnvName(key string) string {
	if name, ok := envNames[key]; ok {
		return name
	}
	normalized := strings.ToUpper(strings.NewReplacer("/", "_", "-", "_", ".", "_").Replace(key))
	return "CLAPPIA_" + normalized
}
