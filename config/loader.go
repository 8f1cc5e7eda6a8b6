// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sage-x-project/sshauth/kbdint"
)

// LoaderOptions configures the configuration loader.
type LoaderOptions struct {
	// ConfigDir is the directory containing config files (default: ./config)
	ConfigDir string
	// Environment overrides automatic environment detection
	Environment string
	// SkipEnvSubstitution disables environment variable substitution
	SkipEnvSubstitution bool
	// SkipValidation disables configuration validation
	SkipValidation bool
}

// DefaultLoaderOptions returns default loader options.
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{ConfigDir: "config"}
}

// Load loads configuration with automatic environment detection: an
// environment-specific file, falling back to default.yaml, then
// config.yaml, then compiled-in defaults.
func Load(opts ...LoaderOptions) (*Config, error) {
	options := DefaultLoaderOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	// A .env file next to the config directory may set any of the
	// SSHAUTH_* variables applyEnvironmentOverrides reads below; it is
	// optional, so a missing file is not an error.
	_ = godotenv.Load(filepath.Join(options.ConfigDir, ".env"))

	env := options.Environment
	if env == "" {
		env = GetEnvironment()
	}

	envConfigPath := filepath.Join(options.ConfigDir, fmt.Sprintf("%s.yaml", env))
	cfg, err := loadConfigFile(envConfigPath)
	if err != nil {
		defaultConfigPath := filepath.Join(options.ConfigDir, "default.yaml")
		cfg, err = loadConfigFile(defaultConfigPath)
		if err != nil {
			configPath := filepath.Join(options.ConfigDir, "config.yaml")
			cfg, err = loadConfigFile(configPath)
			if err != nil {
				cfg = &Config{Environment: env}
				setDefaults(cfg)
			}
		}
	}

	if cfg.Environment == "" {
		cfg.Environment = env
	}

	if !options.SkipEnvSubstitution {
		SubstituteEnvVarsInConfig(cfg)
	}
	applyEnvironmentOverrides(cfg)

	if !options.SkipValidation {
		if errs := ValidateConfiguration(cfg); len(errs) > 0 {
			for _, e := range errs {
				if e.Level == "error" {
					return nil, fmt.Errorf("config: validation failed: %s - %s", e.Field, e.Message)
				}
			}
		}
	}

	return cfg, nil
}

func loadConfigFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config: file not found: %s", path)
	}
	return LoadFromFile(path)
}

// applyEnvironmentOverrides lets environment variables win over file
// contents, the highest-priority layer.
func applyEnvironmentOverrides(cfg *Config) {
	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" && cfg.Agent != nil && cfg.Agent.SocketPath == "" {
		cfg.Agent.SocketPath = sock
	}
	if submethods := os.Getenv("SSHAUTH_KBDINT_SUBMETHODS"); submethods != "" && cfg.Auth != nil {
		cfg.Auth.DefaultSubmethods = submethods
	}
	if maxPrompts := os.Getenv("SSHAUTH_KBDINT_MAX_PROMPTS"); maxPrompts != "" && cfg.Auth != nil {
		if n, err := strconv.Atoi(maxPrompts); err == nil {
			cfg.Auth.MaxPrompts = n
		}
	}
	if logLevel := os.Getenv("SSHAUTH_LOG_LEVEL"); logLevel != "" && cfg.Logging != nil {
		cfg.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("SSHAUTH_LOG_FORMAT"); logFormat != "" && cfg.Logging != nil {
		cfg.Logging.Format = logFormat
	}
	if os.Getenv("SSHAUTH_METRICS_ENABLED") == "true" && cfg.Metrics != nil {
		cfg.Metrics.Enabled = true
	}
	if os.Getenv("SSHAUTH_METRICS_ENABLED") == "false" && cfg.Metrics != nil {
		cfg.Metrics.Enabled = false
	}
}

// LoadForEnvironment loads configuration for a specific environment.
func LoadForEnvironment(environment string) (*Config, error) {
	return Load(LoaderOptions{ConfigDir: "config", Environment: environment})
}

// MustLoad loads configuration or panics on error.
func MustLoad(opts ...LoaderOptions) *Config {
	cfg, err := Load(opts...)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// ValidationError describes one configuration problem. Level is either
// "error" (Load fails) or "warning" (logged by the caller, if at all).
type ValidationError struct {
	Field   string
	Message string
	Level   string
}

// ValidateConfiguration checks cfg for values that would cause a driver
// or dispatcher to misbehave at runtime, rather than leaving them to
// surface as a cryptic later failure.
func ValidateConfiguration(cfg *Config) []ValidationError {
	var errs []ValidationError

	if cfg.Auth != nil {
		if cfg.Auth.MaxPrompts < 1 {
			errs = append(errs, ValidationError{
				Field: "auth.max_prompts", Level: "error",
				Message: "must be at least 1",
			})
		}
		if cfg.Auth.MaxPrompts > kbdint.MaxPrompts {
			errs = append(errs, ValidationError{
				Field: "auth.max_prompts", Level: "error",
				Message: fmt.Sprintf("exceeds the compiled-in ceiling of %d", kbdint.MaxPrompts),
			})
		}
		if cfg.Auth.UserTimeout < 0 {
			errs = append(errs, ValidationError{
				Field: "auth.user_timeout", Level: "error",
				Message: "must not be negative",
			})
		}
	}

	if cfg.Logging != nil {
		switch cfg.Logging.Level {
		case "debug", "info", "warn", "error":
		default:
			errs = append(errs, ValidationError{
				Field: "logging.level", Level: "warning",
				Message: fmt.Sprintf("unrecognized level %q, falling back to info", cfg.Logging.Level),
			})
		}
	}

	return errs
}
