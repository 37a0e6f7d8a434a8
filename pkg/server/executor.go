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

// Package server exposes the currency agent over the A2A protocol.
//
// The package implements a2asrv.AgentExecutor to bridge the agent loop to
// a2a-go's JSON-RPC handler. Every message/send call produces a single
// Message reply on the event queue; the server never creates Tasks.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"

	"github.com/cambiolabs/cambio/pkg/agent"
)

// Executor implements a2asrv.AgentExecutor on top of the agent loop.
type Executor struct {
	agent   *agent.Agent
	timeout time.Duration
	metrics *Metrics
	logger  *slog.Logger
}

// NewExecutor creates an executor. A zero timeout disables the per-request
// deadline. metrics may be nil.
func NewExecutor(ag *agent.Agent, timeout time.Duration, metrics *Metrics, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		agent:   ag,
		timeout: timeout,
		metrics: metrics,
		logger:  logger,
	}
}

// Execute implements a2asrv.AgentExecutor. It runs the agent loop for the
// incoming message and writes the reply as a Message event.
func (e *Executor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	start := time.Now()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	answer, err := e.agent.Respond(ctx, reqCtx.Message)
	if err != nil {
		outcome := classify(err)
		e.observe(outcome, time.Since(start))
		e.logger.Warn("request failed", "outcome", outcome, "error", err)
		return publicError(err)
	}

	reply := a2a.NewMessage(a2a.MessageRoleAgent, a2a.TextPart{Text: answer})
	if err := queue.Write(ctx, reply); err != nil {
		e.observe("internal", time.Since(start))
		return fmt.Errorf("failed to write reply: %w", err)
	}

	e.observe("ok", time.Since(start))
	return nil
}

// Cancel implements a2asrv.AgentExecutor. Requests run synchronously within
// message/send, so there is nothing to cancel.
func (e *Executor) Cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	return errors.New("cancellation is not supported: requests are synchronous")
}

func (e *Executor) observe(outcome string, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.ObserveRequest(outcome, elapsed)
}

// classify maps an agent error to a metrics outcome label.
func classify(err error) string {
	switch {
	case errors.Is(err, agent.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, agent.ErrTimeout):
		return "timeout"
	case errors.Is(err, agent.ErrExhausted):
		return "exhausted"
	case errors.Is(err, agent.ErrModelBackend):
		return "model_backend"
	default:
		return "internal"
	}
}

// publicError converts internal errors to caller-visible ones. Backend
// detail stays in the server logs.
func publicError(err error) error {
	switch {
	case errors.Is(err, agent.ErrInvalidRequest):
		return fmt.Errorf("invalid request: a text message is required")
	case errors.Is(err, agent.ErrTimeout):
		return errors.New("request timed out")
	case errors.Is(err, agent.ErrExhausted):
		return errors.New("agent could not produce an answer")
	case errors.Is(err, agent.ErrModelBackend):
		return errors.New("model backend unavailable")
	default:
		return errors.New("internal error")
	}
}

// Ensure Executor implements a2asrv.AgentExecutor
var _ a2asrv.AgentExecutor = (*Executor)(nil)
