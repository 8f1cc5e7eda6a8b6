// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package config loads and validates the settings a client embedding
// sshauth needs to drive authentication: which identities to offer,
// how long to wait for a server response, and where to find an agent.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sage-x-project/sshauth/kbdint"
)

// Config is the top-level configuration structure.
type Config struct {
	Environment string         `yaml:"environment" json:"environment"`
	Auth        *AuthConfig    `yaml:"auth" json:"auth"`
	Agent       *AgentConfig   `yaml:"agent" json:"agent"`
	Logging     *LoggingConfig `yaml:"logging" json:"logging"`
	Metrics     *MetricsConfig `yaml:"metrics" json:"metrics"`
}

// AuthConfig holds method-driver settings. The client package does not
// read Config itself; an embedding program passes these values on to
// session.Builder and client.Client.
type AuthConfig struct {
	// IdentityFiles is the ordered private-key path list the auto driver
	// walks (without the ".pub" suffix).
	IdentityFiles []string `yaml:"identity_files" json:"identity_files"`

	// DefaultSubmethods is the hint sent with a keyboard-interactive
	// init request when the caller doesn't specify one.
	DefaultSubmethods string `yaml:"default_submethods" json:"default_submethods"`

	// UserTimeout bounds each driver call's wait for a terminal state.
	UserTimeout time.Duration `yaml:"user_timeout" json:"user_timeout"`

	// MaxPrompts is a per-INFO_REQUEST prompt ceiling. Zero is replaced
	// by kbdint.MaxPrompts when defaults are applied, and
	// ValidateConfiguration rejects values outside 1..kbdint.MaxPrompts.
	// The userauth parser and kbdint do not read it; they always enforce
	// the compiled-in ceiling of 32.
	MaxPrompts int `yaml:"max_prompts" json:"max_prompts"`
}

// AgentConfig locates the ssh-agent socket the agent driver dials.
type AgentConfig struct {
	SocketPath string `yaml:"socket_path" json:"socket_path"`
}

// LoggingConfig holds logger settings. This package does not apply them
// to internal/logger's default logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // json, text
	Output string `yaml:"output" json:"output"` // stdout, stderr, file path
}

// MetricsConfig holds the settings for exposing internal/metrics'
// dedicated Registry. The collectors are registered with that Registry
// regardless of these settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// LoadFromFile loads configuration from a YAML (or, as a fallback,
// JSON) file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("config: parse file (tried YAML and JSON): %w", err)
		}
	}

	setDefaults(cfg)
	return cfg, nil
}

// SaveToFile writes cfg to path, choosing JSON or YAML by extension.
func SaveToFile(cfg *Config, path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.DefaultSubmethods == "" {
		cfg.Auth.DefaultSubmethods = "keyboard-interactive"
	}
	if cfg.Auth.UserTimeout == 0 {
		cfg.Auth.UserTimeout = 30 * time.Second
	}
	if cfg.Auth.MaxPrompts == 0 {
		cfg.Auth.MaxPrompts = kbdint.MaxPrompts
	}

	if cfg.Agent == nil {
		cfg.Agent = &AgentConfig{}
	}
	if cfg.Agent.SocketPath == "" {
		cfg.Agent.SocketPath = os.Getenv("SSH_AUTH_SOCK")
	}

	if cfg.Logging == nil {
		cfg.Logging = &LoggingConfig{}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics == nil {
		cfg.Metrics = &MetricsConfig{}
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
