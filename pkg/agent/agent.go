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

// Package agent implements the function-calling orchestration loop.
//
// Each request runs its own loop: the model is asked for a completion, any
// tool calls it requests are executed and their results appended to the
// conversation, and the loop repeats until the model answers in plain text
// or a limit is hit. Requests are independent; no state survives between
// them.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/a2aproject/a2a-go/a2a"
	"golang.org/x/sync/errgroup"

	"github.com/cambiolabs/cambio/pkg/model"
	"github.com/cambiolabs/cambio/pkg/tool"
	"github.com/cambiolabs/cambio/pkg/tool/currencytool"
)

// DefaultSystemPrompt instructs the model on how to use the currency tools.
const DefaultSystemPrompt = `You are a helpful currency conversion assistant.
Use the provided tools to convert currencies, look up exchange rates, and list supported currencies.
When converting, always show the converted amount and the exchange rate used.
If a currency is not supported, suggest listing the supported currencies.
Be concise and accurate with numbers.`

const (
	// defaultMaxIterations bounds the number of model turns per request.
	defaultMaxIterations = 10

	// defaultMaxErrorTurns bounds consecutive turns where every tool call
	// failed. The model gets a few chances to correct itself, then the
	// request is abandoned rather than burning the full iteration budget.
	defaultMaxErrorTurns = 3
)

// Agent runs the orchestration loop over a model and a tool registry.
type Agent struct {
	llm           model.LLM
	registry      *currencytool.Registry
	systemPrompt  string
	maxIterations int
	maxErrorTurns int
	logger        *slog.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithSystemPrompt overrides the default system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) {
		a.systemPrompt = prompt
	}
}

// WithMaxIterations overrides the model turn limit.
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		a.maxIterations = n
	}
}

// WithMaxErrorTurns overrides the consecutive failed tool turn limit.
func WithMaxErrorTurns(n int) Option {
	return func(a *Agent) {
		a.maxErrorTurns = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// New creates an Agent.
func New(llm model.LLM, registry *currencytool.Registry, opts ...Option) *Agent {
	a := &Agent{
		llm:           llm,
		registry:      registry,
		systemPrompt:  DefaultSystemPrompt,
		maxIterations: defaultMaxIterations,
		maxErrorTurns: defaultMaxErrorTurns,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Respond runs the loop for a single incoming message and returns the
// model's final text answer.
func (a *Agent) Respond(ctx context.Context, msg *a2a.Message) (string, error) {
	if msg == nil {
		return "", fmt.Errorf("%w: missing message", ErrInvalidRequest)
	}
	if extractText(msg) == "" {
		return "", fmt.Errorf("%w: message has no text", ErrInvalidRequest)
	}

	history := []*a2a.Message{msg}
	defs := a.registry.Definitions()
	errorTurns := 0

	for iteration := 1; iteration <= a.maxIterations; iteration++ {
		resp, err := a.llm.Generate(ctx, &model.Request{
			Messages:          history,
			Tools:             defs,
			SystemInstruction: a.systemPrompt,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", fmt.Errorf("%w: %v", ErrTimeout, ctxErr)
			}
			return "", fmt.Errorf("%w: %v", ErrModelBackend, err)
		}

		if !resp.HasToolCalls() {
			text := resp.TextContent()
			if text == "" {
				return "", fmt.Errorf("%w: model returned neither text nor tool calls", ErrModelBackend)
			}
			a.logger.Debug("loop finished", "iterations", iteration)
			return text, nil
		}

		a.logger.Debug("executing tool calls",
			"iteration", iteration,
			"count", len(resp.ToolCalls))

		if m := resp.ToMessage(); m != nil {
			history = append(history, m)
		}

		results := a.executeToolCalls(ctx, resp.ToolCalls)
		history = append(history, resultsMessage(results))

		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}

		if allFailed(results) {
			errorTurns++
			if errorTurns >= a.maxErrorTurns {
				return "", fmt.Errorf("%w: %d consecutive failed tool turns", ErrExhausted, errorTurns)
			}
		} else {
			errorTurns = 0
		}
	}

	return "", fmt.Errorf("%w: no final answer after %d iterations", ErrExhausted, a.maxIterations)
}

// executeToolCalls runs all calls from one model turn concurrently.
// Results are positioned to match the call order, so the conversation the
// model sees is deterministic regardless of completion order.
func (a *Agent) executeToolCalls(ctx context.Context, calls []tool.ToolCall) []tool.ToolResult {
	results := make([]tool.ToolResult, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			results[i] = a.registry.Dispatch(tool.NewContext(gctx, call.ID), call)
			return nil
		})
	}
	_ = g.Wait()

	for i := range results {
		if results[i].Error != "" {
			a.logger.Warn("tool call failed",
				"tool", calls[i].Name,
				"call_id", calls[i].ID,
				"error", results[i].Error)
		}
	}

	return results
}

// resultsMessage packs tool results into a user message for the next turn.
func resultsMessage(results []tool.ToolResult) *a2a.Message {
	parts := make([]a2a.Part, len(results))
	for i, tr := range results {
		data := map[string]any{
			"type":         "tool_result",
			"tool_call_id": tr.ToolCallID,
		}
		if tr.Error != "" {
			data["error"] = tr.Error
		} else {
			data["content"] = tr.Content
		}
		parts[i] = a2a.DataPart{Data: data}
	}
	return a2a.NewMessage(a2a.MessageRoleUser, parts...)
}

// allFailed reports whether every result in a turn carries an error.
func allFailed(results []tool.ToolResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, tr := range results {
		if tr.Error == "" {
			return false
		}
	}
	return true
}

// extractText concatenates the text parts of a message.
func extractText(msg *a2a.Message) string {
	var text string
	for _, part := range msg.Parts {
		if tp, ok := part.(a2a.TextPart); ok {
			text += tp.Text
		}
	}
	return text
}
