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
	"strings"
)

// ConfigBackendPriority is the priority for values read from the config file.
const ConfigBackendPriority = 25

// StaticBackend serves a fixed, read-only set of values. The CLI uses it to
// expose the non-secret credential fields kept in the config file.
type StaticBackend struct {
	name     string
	priority int
	values   map[string]string
}

// NewStaticBackend creates a read-only backend over values. Blank values are
// treated as absent.
func NewStaticBackend(name string, priority int, values map[string]string) *StaticBackend {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			copied[k] = v
		}
	}
	return &StaticBackend{name: name, priority: priority, values: copied}
}

// Name returns the backend identifier.
func (s *StaticBackend) Name() string {
	return s.name
}

// Get returns the stored value for key.
func (s *StaticBackend) Get(ctx context.Context, key string) (string, error) {
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", ErrSecretNotFound, key)
}

// Set returns ErrReadOnlyBackend.
func (s *StaticBackend) Set(ctx context.Context, key string, value string) error {
	return ErrReadOnlyBackend
}

// Delete returns ErrReadOnlyBackend.
func (s *StaticBackend) Delete(ctx context.Context, key string) error {
	return ErrReadOnlyBackend
}

// Available always returns true.
func (s *StaticBackend) Available() bool {
	return true
}

// Priority returns the priority given at construction.
func (s *StaticBackend) Priority() int {
	return s.priority
}

// ReadOnly returns true.
func (s *StaticBackend) ReadOnly() bool {
	return true
}
