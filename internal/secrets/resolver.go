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
	"errors"
	"fmt"
	"sort"

	"github.com/tombee/conductor-clappia/internal/integration/clappia"
	clappiaerrors "github.com/tombee/conductor-clappia/pkg/errors"
)

// Resolver manages a chain of SecretBackends and resolves credentials
// by querying backends in priority order.
type Resolver struct {
	backends []SecretBackend
}

// NewResolver creates a new resolver with the given backends.
// Unavailable backends are dropped and the rest sorted by priority (highest first).
func NewResolver(backends ...SecretBackend) *Resolver {
	available := make([]SecretBackend, 0, len(backends))
	for _, b := range backends {
		if b != nil && b.Available() {
			available = append(available, b)
		}
	}

	sort.SliceStable(available, func(i, j int) bool {
		return available[i].Priority() > available[j].Priority()
	})

	return &Resolver{backends: available}
}

// Backends returns the names of the usable backends in resolution order.
func (r *Resolver) Backends() []string {
	names := make([]string, len(r.backends))
	for i, b := range r.backends {
		names[i] = b.Name()
	}
	return names
}

// Get retrieves a value by querying backends in priority order.
// Returns the first successful result or ErrSecretNotFound if all backends fail.
func (r *Resolver) Get(ctx context.Context, key string) (string, error) {
	value, _, err := r.Lookup(ctx, key)
	return value, err
}

// Lookup is Get that also reports which backend supplied the value.
func (r *Resolver) Lookup(ctx context.Context, key string) (string, string, error) {
	if len(r.backends) == 0 {
		return "", "", fmt.Errorf("%w: no available backends", ErrBackendUnavailable)
	}

	var lastErr error
	for _, backend := range r.backends {
		value, err := backend.Get(ctx, key)
		if err == nil {
			return value, backend.Name(), nil
		}
		if !errors.Is(err, ErrSecretNotFound) {
			lastErr = err
		}
	}

	if lastErr != nil {
		return "", "", fmt.Errorf("failed to get secret %q: %w", key, lastErr)
	}
	return "", "", fmt.Errorf("%w: %q", ErrSecretNotFound, key)
}

// Set stores a value in the first writable backend, or in backendName when given.
func (r *Resolver) Set(ctx context.Context, key string, value string, backendName string) error {
	if len(r.backends) == 0 {
		return fmt.Errorf("%w: no available backends", ErrBackendUnavailable)
	}

	if backendName != "" {
		backend := r.backend(backendName)
		if backend == nil {
			return fmt.Errorf("backend %q not found or unavailable", backendName)
		}
		if err := backend.Set(ctx, key, value); err != nil {
			return fmt.Errorf("failed to set secret in %s: %w", backendName, err)
		}
		return nil
	}

	for _, backend := range r.backends {
		if isReadOnly(backend) {
			continue
		}
		if err := backend.Set(ctx, key, value); err != nil {
			if errors.Is(err, ErrReadOnlyBackend) {
				continue
			}
			return fmt.Errorf("failed to set secret in %s: %w", backend.Name(), err)
		}
		return nil
	}

	return fmt.Errorf("%w: no writable backend", ErrBackendUnavailable)
}

// Delete removes a value from every writable backend that holds it.
func (r *Resolver) Delete(ctx context.Context, key string) error {
	if len(r.backends) == 0 {
		return fmt.Errorf("%w: no available backends", ErrBackendUnavailable)
	}

	deleted := false
	for _, backend := range r.backends {
		if isReadOnly(backend) {
			continue
		}
		if err := backend.Delete(ctx, key); err != nil {
			if errors.Is(err, ErrSecretNotFound) || errors.Is(err, ErrReadOnlyBackend) {
				continue
			}
			return fmt.Errorf("failed to delete secret from %s: %w", backend.Name(), err)
		}
		deleted = true
	}

	if !deleted {
		return fmt.Errorf("%w: %q", ErrSecretNotFound, key)
	}
	return nil
}

// Credentials assembles the Clappia credentials from the backend chain.
// Every missing key is reported in a single ConfigError.
func (r *Resolver) Credentials(ctx context.Context) (clappia.Credentials, error) {
	values := make(map[string]string, len(CredentialKeys))
	var missing []error
	for _, key := range CredentialKeys {
		value, err := r.Get(ctx, key)
		switch {
		case err == nil:
			values[key] = value
		case errors.Is(err, ErrSecretNotFound), errors.Is(err, ErrBackendUnavailable):
			missing = append(missing, fmt.Errorf("%s (set %s or run 'clappia credentials set')", key, EnvName(key)))
		default:
			return clappia.Credentials{}, err
		}
	}

	creds := clappia.Credentials{
		WorkplaceID:                values[KeyWorkplaceID],
		APIKey:                     values[KeyAPIKey],
		RequestingUserEmailAddress: values[KeyRequestingUserEmail],
	}
	if len(missing) > 0 {
		return creds, &clappiaerrors.ConfigError{
			Key:    "credentials",
			Reason: "missing Clappia credentials",
			Cause:  errors.Join(missing...),
		}
	}
	return creds, nil
}

// Store writes every non-empty credential field through Set.
func (r *Resolver) Store(ctx context.Context, creds clappia.Credentials, backendName string) error {
	fields := map[string]string{
		KeyWorkplaceID:         creds.WorkplaceID,
		KeyAPIKey:              creds.APIKey,
		KeyRequestingUserEmail: creds.RequestingUserEmailAddress,
	}
	for _, key := range CredentialKeys {
		if fields[key] == "" {
			continue
		}
		if err := r.Set(ctx, key, fields[key], backendName); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) backend(name string) SecretBackend {
	for _, b := range r.backends {
		if b.Name() == name {
			return b
		}
	}
	return nil
}

func isReadOnly(b SecretBackend) bool {
	ro, ok := b.(ReadOnlyBackend)
	return ok && ro.ReadOnly()
}
