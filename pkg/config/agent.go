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

import "fmt"

// AgentConfig configures the orchestration loop.
type AgentConfig struct {
	// SystemPrompt overrides the built-in system prompt.
	SystemPrompt string `yaml:"system_prompt,omitempty"`

	// MaxIterations bounds model turns per request.
	MaxIterations int `yaml:"max_iterations,omitempty"`

	// MaxErrorTurns bounds consecutive turns where every tool call failed.
	MaxErrorTurns int `yaml:"max_error_turns,omitempty"`
}

// SetDefaults applies default values.
func (c *AgentConfig) SetDefaults() {
	if c.MaxIterations == 0 {
		c.MaxIterations = 10
	}
	if c.MaxErrorTurns == 0 {
		c.MaxErrorTurns = 3
	}
}

// Validate checks the agent configuration.
func (c *AgentConfig) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1")
	}
	if c.MaxErrorTurns < 1 {
		return fmt.Errorf("max_error_turns must be at least 1")
	}
	return nil
}
