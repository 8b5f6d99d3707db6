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
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeychainBackendPriority is the priority for keychain backend.
	KeychainBackendPriority = 50

	// KeychainService is the service name used for keychain entries.
	KeychainService = "clappia"
)

// KeychainBackend stores credentials in the system keychain.
// Supported platforms:
//   - macOS: Keychain Access
//   - Linux: Secret Service API (GNOME Keyring, KWallet)
//   - Windows: Credential Manager
type KeychainBackend struct {
	service   string
	available bool
}

// NewKeychainBackend creates a keychain backend under KeychainService.
// Availability is probed once so a locked or missing keyring is skipped
// by the Resolver instead of failing every lookup.
func NewKeychainBackend() *KeychainBackend {
	return newKeychainBackend(KeychainService)
}

func newKeychainBackend(service string) *KeychainBackend {
	backend := &KeychainBackend{service: service, available: true}

	_, err := keyring.Get(service, "__clappia_availability_probe__")
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		backend.available = false
	}

	return backend
}

// Name returns the backend identifier.
func (k *KeychainBackend) Name() string {
	return "keychain"
}

// Get retrieves a credential from the system keychain.
func (k *KeychainBackend) Get(ctx context.Context, key string) (string, error) {
	if !k.available {
		return "", fmt.Errorf("%w: keychain service unavailable", ErrBackendUnavailable)
	}

	value, err := keyring.Get(k.service, key)
	if err != nil {
		return "", k.wrap(key, err)
	}
	return value, nil
}

// Set stores a credential in the system keychain, replacing any previous value.
func (k *KeychainBackend) Set(ctx context.Context, key string, value string) error {
	if !k.available {
		return fmt.Errorf("%w: keychain service unavailable", ErrBackendUnavailable)
	}

	if err := keyring.Set(k.service, key, value); err != nil {
		return k.wrap(key, err)
	}
	return nil
}

// Delete removes a credential from the system keychain.
func (k *KeychainBackend) Delete(ctx context.Context, key string) error {
	if !k.available {
		return fmt.Errorf("%w: keychain service unavailable", ErrBackendUnavailable)
	}

	if err := keyring.Delete(k.service, key); err != nil {
		return k.wrap(key, err)
	}
	return nil
}

// Available returns true if the keychain service is accessible.
func (k *KeychainBackend) Available() bool {
	return k.available
}

// Priority returns the backend priority.
func (k *KeychainBackend) Priority() int {
	return KeychainBackendPriority
}

func (k *KeychainBackend) wrap(key string, err error) error {
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrSecretNotFound, key)
	case isKeychainUnavailableError(err):
		return fmt.Errorf("%w: %s", ErrBackendUnavailable, err.Error())
	default:
		return fmt.Errorf("keychain error: %w", err)
	}
}

// isKeychainUnavailableError checks if an error indicates the keychain is locked or inaccessible.
func isKeychainUnavailableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	unavailableIndicators := []string{
		"locked",
		"cannot access",
		"permission denied",
		"failed to unlock",
		"user interaction required",
		"secret service",
		"dbus",
		"user canceled",
	}

	for _, indicator := range unavailableIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}
