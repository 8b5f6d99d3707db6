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
	"io"
	"log/slog"
	"os"

	"github.com/tombee/conductor-clappia/internal/config"
	"github.com/tombee/conductor-clappia/internal/log"
	"github.com/tombee/conductor-clappia/internal/node"
	"github.com/tombee/conductor-clappia/internal/operation/transport"
	"github.com/tombee/conductor-clappia/internal/secrets"
)

// Runtime bundles the configuration and collaborators every command needs.
type Runtime struct {
	Config    *config.Config
	Logger    *slog.Logger
	Transport transport.Transport
	Secrets   *secrets.Resolver
}

// LoadRuntime reads the config file named by --config, applies --base-url
// and --verbose, and wires logging, transport and credential lookup.
// Logs go to logOut (stderr when nil).
func LoadRuntime(logOut io.Writer) (*Runtime, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, NewInvalidInputError("failed to load configuration", err)
	}
	if url := GetBaseURL(); url != "" {
		cfg.BaseURL = url
		if err := cfg.Validate(); err != nil {
			return nil, NewInvalidInputError("invalid --base-url", err)
		}
	}

	if logOut == nil {
		logOut = os.Stderr
	}
	logCfg := cfg.LoggerConfig()
	logCfg.Output = logOut
	if GetVerbose() && (logCfg.Level == "info" || logCfg.Level == "warn" || logCfg.Level == "error") {
		logCfg.Level = "debug"
	}
	logger := log.New(logCfg)

	t, err := transport.NewHTTPTransport(&transport.HTTPTransportConfig{
		Timeout:   cfg.Timeout,
		UserAgent: "clappia-cli/" + version,
		Logger:    log.WithComponent(logger, "transport"),
	})
	if err != nil {
		return nil, NewInvalidInputError("invalid transport configuration", err)
	}

	return &Runtime{
		Config:    cfg,
		Logger:    logger,
		Transport: t,
		Secrets:   NewSecretsResolver(cfg),
	}, nil
}

// NewSecretsResolver layers the environment over the keychain over the
// non-secret fields of cfg.
func NewSecretsResolver(cfg *config.Config) *secrets.Resolver {
	return secrets.NewResolver(
		secrets.NewEnvBackend(),
		secrets.NewKeychainBackend(),
		secrets.NewStaticBackend("config", secrets.ConfigBackendPriority, cfg.CredentialValues()),
	)
}

// NewNode creates a node bound to the runtime's transport, logger and base URL.
func (r *Runtime) NewNode(opts ...node.Option) (*node.Node, error) {
	base := []node.Option{
		node.WithLogger(r.Logger),
		node.WithBaseURL(r.Config.BaseURL),
	}
	return node.New(r.Transport, append(base, opts...)...)
}
