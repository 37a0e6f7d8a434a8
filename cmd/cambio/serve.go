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

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/cambiolabs/cambio/pkg/agent"
	"github.com/cambiolabs/cambio/pkg/config"
	"github.com/cambiolabs/cambio/pkg/currency"
	"github.com/cambiolabs/cambio/pkg/model/openai"
	"github.com/cambiolabs/cambio/pkg/server"
	"github.com/cambiolabs/cambio/pkg/tool/currencytool"
)

// ServeCmd starts the A2A server.
type ServeCmd struct {
	Host string `help:"Host to bind to (overrides config)."`
	Port int    `help:"Port to listen on (overrides config)."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
		cfg.Server.PublicURL = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	ag, closeAgent, err := buildAgent(cfg)
	if err != nil {
		return err
	}
	defer closeAgent()

	srv := server.NewHTTPServer(&cfg.Server, ag)

	fmt.Printf("Cambio currency agent ready\n")
	fmt.Printf("  JSON-RPC:    http://%s/\n", srv.Address())
	fmt.Printf("  Agent Card:  http://%s/.well-known/agent-card.json\n", srv.Address())
	fmt.Printf("  Health:      http://%s/health\n", srv.Address())
	fmt.Printf("  Metrics:     http://%s/metrics\n", srv.Address())
	fmt.Println("\nPress Ctrl+C to stop")

	return srv.Start(ctx)
}

// buildAgent wires the model client, the tool registry, and the loop from
// config. The returned func closes the model client.
func buildAgent(cfg *config.Config) (*agent.Agent, func(), error) {
	llm, err := openai.New(openai.Config{
		APIKey:          cfg.Model.APIKey,
		Model:           cfg.Model.Deployment,
		BaseURL:         cfg.Model.BaseURL,
		AzureEndpoint:   cfg.Model.AzureEndpoint,
		AzureAPIVersion: cfg.Model.AzureAPIVersion,
		MaxTokens:       cfg.Model.MaxTokens,
		Temperature:     cfg.Model.Temperature,
		Timeout:         cfg.Model.TimeoutDuration(),
		MaxRetries:      cfg.Model.MaxRetries,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create model client: %w", err)
	}

	registry, err := currencytool.NewRegistry(currency.DefaultRates())
	if err != nil {
		_ = llm.Close()
		return nil, nil, fmt.Errorf("failed to create tool registry: %w", err)
	}

	opts := []agent.Option{
		agent.WithMaxIterations(cfg.Agent.MaxIterations),
		agent.WithMaxErrorTurns(cfg.Agent.MaxErrorTurns),
	}
	if cfg.Agent.SystemPrompt != "" {
		opts = append(opts, agent.WithSystemPrompt(cfg.Agent.SystemPrompt))
	}

	ag := agent.New(llm, registry, opts...)
	return ag, func() { _ = llm.Close() }, nil
}
