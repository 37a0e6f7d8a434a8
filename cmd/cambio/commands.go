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
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/a2aproject/a2a-go/a2a"

	"github.com/cambiolabs/cambio/pkg/config"
	"github.com/cambiolabs/cambio/pkg/server"
)

// CardCmd prints the agent card as JSON.
type CardCmd struct{}

func (c *CardCmd) Run(cli *CLI) error {
	cfg := config.FromEnv()
	cfg.SetDefaults()

	card := server.BuildAgentCard(cfg.Server.PublicURL)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(card)
}

// AskCmd sends one question through the agent loop and prints the answer.
type AskCmd struct {
	Question []string `arg:"" help:"Question to ask, e.g. 'Convert 100 USD to EUR'."`
}

func (c *AskCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	ag, closeAgent, err := buildAgent(cfg)
	if err != nil {
		return err
	}
	defer closeAgent()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.RequestTimeoutDuration())
	defer cancel()

	question := strings.Join(c.Question, " ")
	msg := a2a.NewMessage(a2a.MessageRoleUser, a2a.TextPart{Text: question})

	answer, err := ag.Respond(ctx, msg)
	if err != nil {
		return err
	}

	fmt.Println(answer)
	return nil
}
