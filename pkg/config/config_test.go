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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("AZURE_OPENAI_API_KEY", "key-123")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://res.openai.azure.com")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT_NAME", "gpt-4o-mini")
	t.Setenv("A2A_HOST", "127.0.0.1")
	t.Setenv("A2A_PORT", "9000")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "key-123", cfg.Model.APIKey)
	assert.Equal(t, "https://res.openai.azure.com", cfg.Model.AzureEndpoint)
	assert.True(t, cfg.Model.IsAzure())
	assert.Equal(t, "2024-02-15-preview", cfg.Model.AzureAPIVersion)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address())
	assert.Equal(t, "http://127.0.0.1:9000", cfg.Server.PublicURL)
	assert.Equal(t, 10, cfg.Agent.MaxIterations)
}

func TestLoad_PortOverridesA2APort(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-x")
	t.Setenv("A2A_PORT", "8000")
	t.Setenv("PORT", "8080")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_YAMLWithEnvExpansion(t *testing.T) {
	t.Setenv("TEST_API_KEY", "expanded-key")
	t.Setenv("AZURE_OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  host: localhost
  port: ${TEST_PORT:-9100}
  request_timeout: 30
model:
  api_key: ${TEST_API_KEY}
  deployment: gpt-4o
agent:
  max_iterations: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeoutDuration())
	assert.Equal(t, "expanded-key", cfg.Model.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Model.Deployment)
	assert.Equal(t, 5, cfg.Agent.MaxIterations)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("AZURE_OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}

func TestServerConfig_Defaults(t *testing.T) {
	cfg := &ServerConfig{}
	cfg.SetDefaults()

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "http://0.0.0.0:8000", cfg.PublicURL)
	assert.NotNil(t, cfg.CORS)
	assert.Equal(t, 120, cfg.RequestTimeout)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeoutDuration())
}

func TestServerConfig_InvalidPort(t *testing.T) {
	cfg := &ServerConfig{Port: 99999}
	assert.Error(t, cfg.Validate())
}

func TestModelConfig_Validate(t *testing.T) {
	cfg := &ModelConfig{APIKey: "k"}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "gpt-4o-mini", cfg.Deployment)
	assert.False(t, cfg.IsAzure())

	bad := 3.5
	cfg.Temperature = &bad
	assert.Error(t, cfg.Validate())
}

func TestAgentConfig_Validate(t *testing.T) {
	cfg := &AgentConfig{}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	cfg.MaxIterations = -1
	assert.Error(t, cfg.Validate())
}

func TestExpandEnvVarsInData(t *testing.T) {
	t.Setenv("EXPAND_ME", "value")

	data := map[string]any{
		"plain":   "text",
		"braced":  "${EXPAND_ME}",
		"defval":  "${MISSING_VAR:-fallback}",
		"number":  "${MISSING_PORT:-8080}",
		"boolean": "${MISSING_FLAG:-true}",
		"nested": map[string]any{
			"inner": "$EXPAND_ME",
		},
		"list": []any{"${EXPAND_ME}"},
	}

	result := ExpandEnvVarsInData(data).(map[string]any)

	assert.Equal(t, "text", result["plain"])
	assert.Equal(t, "value", result["braced"])
	assert.Equal(t, "fallback", result["defval"])
	assert.Equal(t, 8080, result["number"])
	assert.Equal(t, true, result["boolean"])
	assert.Equal(t, "value", result["nested"].(map[string]any)["inner"])
	assert.Equal(t, "value", result["list"].([]any)[0])
}
