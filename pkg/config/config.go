// Copyright 2025 Cambio Authors
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

// Package config loads and validates service configuration.
//
// Configuration comes from an optional YAML file with ${VAR} env expansion,
// layered over environment variables (optionally from .env files). The env
// variables match the names the service has always used, so a bare
// deployment with AZURE_OPENAI_API_KEY and A2A_PORT set works without a
// config file at all.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Server ServerConfig `yaml:"server,omitempty"`
	Model  ModelConfig  `yaml:"model,omitempty"`
	Agent  AgentConfig  `yaml:"agent,omitempty"`
}

// Load reads configuration from an optional YAML file path, layered over
// the environment. An empty path loads from the environment alone.
func Load(path string) (*Config, error) {
	cfg := FromEnv()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Expand env references before decoding into typed config.
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		expanded, err := yaml.Marshal(ExpandEnvVarsInData(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to expand config: %w", err)
		}
		if err := yaml.Unmarshal(expanded, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables only.
// Defaults are not applied; call SetDefaults before use.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      os.Getenv("A2A_HOST"),
			Port:      envIntOr("PORT", envIntOr("A2A_PORT", 0)),
			PublicURL: os.Getenv("PUBLIC_URL"),
		},
		Model: ModelConfig{
			APIKey:          envOr("AZURE_OPENAI_API_KEY", os.Getenv("OPENAI_API_KEY")),
			Deployment:      os.Getenv("AZURE_OPENAI_DEPLOYMENT_NAME"),
			AzureEndpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
			AzureAPIVersion: os.Getenv("AZURE_OPENAI_API_VERSION"),
			BaseURL:         os.Getenv("OPENAI_BASE_URL"),
		},
	}
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Model.SetDefaults()
	c.Agent.SetDefaults()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Model.Validate(); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	if err := c.Agent.Validate(); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	return nil
}
