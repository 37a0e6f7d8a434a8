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

package config

import (
	"fmt"
	"time"
)

// ModelConfig configures the model backend.
type ModelConfig struct {
	// APIKey authenticates against the backend.
	APIKey string `yaml:"api_key,omitempty"`

	// Deployment is the model name, or the deployment name on Azure.
	Deployment string `yaml:"deployment,omitempty"`

	// AzureEndpoint is the Azure OpenAI resource endpoint. When set, the
	// client uses Azure URL layout and auth.
	AzureEndpoint string `yaml:"azure_endpoint,omitempty"`

	// AzureAPIVersion is the api-version for Azure requests.
	AzureAPIVersion string `yaml:"azure_api_version,omitempty"`

	// BaseURL overrides the OpenAI platform endpoint.
	// Ignored when AzureEndpoint is set.
	BaseURL string `yaml:"base_url,omitempty"`

	// MaxTokens limits response length.
	MaxTokens int `yaml:"max_tokens,omitempty"`

	// Temperature controls randomness.
	Temperature *float64 `yaml:"temperature,omitempty"`

	// Timeout bounds a single backend call, in seconds.
	Timeout int `yaml:"timeout,omitempty"`

	// MaxRetries bounds retries on transient backend failures.
	MaxRetries int `yaml:"max_retries,omitempty"`
}

// SetDefaults applies default values.
func (c *ModelConfig) SetDefaults() {
	if c.Deployment == "" {
		c.Deployment = "gpt-4o-mini"
	}
	if c.AzureEndpoint != "" && c.AzureAPIVersion == "" {
		c.AzureAPIVersion = "2024-02-15-preview"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	if c.Timeout == 0 {
		c.Timeout = 60
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
}

// Validate checks the model configuration.
func (c *ModelConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required (set AZURE_OPENAI_API_KEY or OPENAI_API_KEY)")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative")
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	return nil
}

// IsAzure returns whether the backend is an Azure OpenAI deployment.
func (c *ModelConfig) IsAzure() bool {
	return c.AzureEndpoint != ""
}

// TimeoutDuration returns the backend call timeout as a Duration.
func (c *ModelConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
