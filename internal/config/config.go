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

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tombee/conductor-clappia/internal/integration/clappia"
	"github.com/tombee/conductor-clappia/internal/log"
	"github.com/tombee/conductor-clappia/internal/secrets"
	clappiaerrors "github.com/tombee/conductor-clappia/pkg/errors"
)

var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// DefaultTimeout bounds each Clappia API request.
const DefaultTimeout = 30 * time.Second

// Config is the clappia CLI configuration file.
// The API key is never part of it; it lives in the keychain or the environment.
type Config struct {
	// BaseURL is the Clappia public API root.
	// Environment: CLAPPIA_BASE_URL
	BaseURL string `yaml:"base_url,omitempty"`

	// Timeout bounds each API request.
	// Environment: CLAPPIA_TIMEOUT
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// WorkplaceID and RequestingUserEmail are the non-secret credential
	// fields; the keychain and environment take precedence over them.
	WorkplaceID         string `yaml:"workplace_id,omitempty"`
	RequestingUserEmail string `yaml:"requesting_user_email,omitempty"`

	// ContinueOnFail is the default for `run --continue-on-fail`.
	ContinueOnFail bool `yaml:"continue_on_fail,omitempty"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	// Default: info
	Level string `yaml:"level"`

	// Format sets the output format (json, text).
	// Default: text
	Format string `yaml:"format"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		BaseURL: clappia.DefaultBaseURL,
		Timeout: DefaultTimeout,
		Log: LogConfig{
			Level:  "info",
			Format: string(log.FormatText),
		},
	}
}

// Load reads the config file at path, falling back to ConfigPath when path
// is empty. A missing file yields the defaults. Environment variables take
// precedence over file values.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return nil, &clappiaerrors.ConfigError{
				Key:    "config_file",
				Reason: "cannot determine config directory",
				Cause:  err,
			}
		}
	}

	cfg := Default()
	if err := cfg.loadFromFile(path); err != nil {
		return nil, &clappiaerrors.ConfigError{
			Key:    "config_file",
			Reason: fmt.Sprintf("failed to load from %s", path),
			Cause:  err,
		}
	}

	cfg.applyDefaults()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, &clappiaerrors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

// applyDefaults fills zero values left by a partial file.
func (c *Config) applyDefaults() {
	d := Default()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

func (c *Config) loadFromFile(path string) error {
	path, err := expandHome(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("CLAPPIA_BASE_URL"); val != "" {
		c.BaseURL = val
	}
	if val := os.Getenv("CLAPPIA_TIMEOUT"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			c.Timeout = duration
		}
	}
	if val := os.Getenv("CLAPPIA_CONTINUE_ON_FAIL"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.ContinueOnFail = b
		}
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if u, err := url.Parse(c.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("base_url must be an absolute http(s) URL, got %q", c.BaseURL))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("timeout must be non-negative, got %v", c.Timeout))
	}
	if c.RequestingUserEmail != "" && !strings.Contains(c.RequestingUserEmail, "@") {
		errs = append(errs, fmt.Sprintf("requesting_user_email must be an email address, got %q", c.RequestingUserEmail))
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of [trace, debug, info, warn, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// LoggerConfig converts the file settings into a logger config. Environment
// overrides from log.ApplyEnv still apply on top.
func (c *Config) LoggerConfig() *log.Config {
	cfg := log.DefaultConfig()
	cfg.Level = strings.ToLower(c.Log.Level)
	cfg.Format = log.Format(strings.ToLower(c.Log.Format))
	log.ApplyEnv(cfg)
	return cfg
}

// CredentialValues returns the non-secret credential fields keyed the way
// the secrets package expects.
func (c *Config) CredentialValues() map[string]string {
	return map[string]string{
		secrets.KeyWorkplaceID:         c.WorkplaceID,
		secrets.KeyRequestingUserEmail: c.RequestingUserEmail,
	}
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
