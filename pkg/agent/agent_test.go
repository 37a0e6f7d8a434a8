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

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cambiolabs/cambio/pkg/currency"
	"github.com/cambiolabs/cambio/pkg/model"
	"github.com/cambiolabs/cambio/pkg/tool"
	"github.com/cambiolabs/cambio/pkg/tool/currencytool"
)

// scriptedLLM returns canned responses in sequence and records the requests
// it received.
type scriptedLLM struct {
	responses []*model.Response
	errs      []error
	requests  []*model.Request
	calls     int
}

func (s *scriptedLLM) Name() string { return "scripted" }
func (s *scriptedLLM) Close() error { return nil }

func (s *scriptedLLM) Generate(ctx context.Context, req *model.Request) (*model.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.requests = append(s.requests, req)
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i >= len(s.responses) {
		return textResp("fallback"), nil
	}
	return s.responses[i], nil
}

func textResp(text string) *model.Response {
	return &model.Response{
		Content: &model.Content{
			Role:  a2a.MessageRoleAgent,
			Parts: []a2a.Part{a2a.TextPart{Text: text}},
		},
		FinishReason: model.FinishReasonStop,
	}
}

func toolResp(calls ...tool.ToolCall) *model.Response {
	parts := make([]a2a.Part, len(calls))
	for i, tc := range calls {
		parts[i] = a2a.DataPart{
			Data: map[string]any{
				"type":      "tool_use",
				"id":        tc.ID,
				"name":      tc.Name,
				"arguments": tc.Args,
			},
		}
	}
	return &model.Response{
		Content: &model.Content{
			Role:  a2a.MessageRoleAgent,
			Parts: parts,
		},
		ToolCalls:    calls,
		FinishReason: model.FinishReasonToolCalls,
	}
}

func userMsg(text string) *a2a.Message {
	return a2a.NewMessage(a2a.MessageRoleUser, a2a.TextPart{Text: text})
}

func newTestAgent(t *testing.T, llm model.LLM, opts ...Option) *Agent {
	t.Helper()
	registry, err := currencytool.NewRegistry(currency.DefaultRates())
	require.NoError(t, err)
	return New(llm, registry, opts...)
}

func TestRespond_DirectAnswer(t *testing.T) {
	llm := &scriptedLLM{responses: []*model.Response{
		textResp("I can convert currencies for you."),
	}}
	a := newTestAgent(t, llm)

	answer, err := a.Respond(context.Background(), userMsg("What can you do?"))
	require.NoError(t, err)
	assert.Equal(t, "I can convert currencies for you.", answer)
	assert.Equal(t, 1, llm.calls)

	// tools and system prompt advertised on every turn
	req := llm.requests[0]
	assert.Len(t, req.Tools, 3)
	assert.Equal(t, DefaultSystemPrompt, req.SystemInstruction)
}

func TestRespond_SingleToolCall(t *testing.T) {
	llm := &scriptedLLM{responses: []*model.Response{
		toolResp(tool.ToolCall{
			ID:   "call_1",
			Name: currencytool.ConvertCurrencyName,
			Args: map[string]any{"amount": 100.0, "from_currency": "USD", "to_currency": "EUR"},
		}),
		textResp("100 USD is 92.00 EUR at a rate of 0.92."),
	}}
	a := newTestAgent(t, llm)

	answer, err := a.Respond(context.Background(), userMsg("Convert 100 USD to EUR"))
	require.NoError(t, err)
	assert.Equal(t, "100 USD is 92.00 EUR at a rate of 0.92.", answer)
	assert.Equal(t, 2, llm.calls)

	// second request carries the call and its result in history
	history := llm.requests[1].Messages
	require.Len(t, history, 3)

	assistant := history[1]
	assert.Equal(t, a2a.MessageRoleAgent, assistant.Role)

	resultMsg := history[2]
	assert.Equal(t, a2a.MessageRoleUser, resultMsg.Role)
	dp := resultMsg.Parts[0].(a2a.DataPart)
	assert.Equal(t, "tool_result", dp.Data["type"])
	assert.Equal(t, "call_1", dp.Data["tool_call_id"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(dp.Data["content"].(string)), &payload))
	assert.Equal(t, 92.0, payload["converted_amount"])
}

func TestRespond_ParallelToolCallsPreserveOrder(t *testing.T) {
	llm := &scriptedLLM{responses: []*model.Response{
		toolResp(
			tool.ToolCall{
				ID:   "call_a",
				Name: currencytool.GetExchangeRateName,
				Args: map[string]any{"from_currency": "USD", "to_currency": "EUR"},
			},
			tool.ToolCall{
				ID:   "call_b",
				Name: currencytool.ListSupportedCurrenciesName,
				Args: map[string]any{},
			},
			tool.ToolCall{
				ID:   "call_c",
				Name: currencytool.GetExchangeRateName,
				Args: map[string]any{"from_currency": "GBP", "to_currency": "JPY"},
			},
		),
		textResp("done"),
	}}
	a := newTestAgent(t, llm)

	_, err := a.Respond(context.Background(), userMsg("rates please"))
	require.NoError(t, err)

	resultMsg := llm.requests[1].Messages[2]
	require.Len(t, resultMsg.Parts, 3)

	ids := make([]string, 3)
	for i, p := range resultMsg.Parts {
		ids[i] = p.(a2a.DataPart).Data["tool_call_id"].(string)
	}
	assert.Equal(t, []string{"call_a", "call_b", "call_c"}, ids)
}

func TestRespond_ToolErrorFedBack(t *testing.T) {
	llm := &scriptedLLM{responses: []*model.Response{
		toolResp(tool.ToolCall{
			ID:   "call_1",
			Name: currencytool.ConvertCurrencyName,
			Args: map[string]any{"amount": 100.0, "from_currency": "USD", "to_currency": "DOGE"},
		}),
		textResp("DOGE is not supported. Try list_supported_currencies."),
	}}
	a := newTestAgent(t, llm)

	answer, err := a.Respond(context.Background(), userMsg("Convert 100 USD to DOGE"))
	require.NoError(t, err)
	assert.Contains(t, answer, "not supported")

	dp := llm.requests[1].Messages[2].Parts[0].(a2a.DataPart)
	assert.Contains(t, dp.Data["error"].(string), "unknown currency")
	_, hasContent := dp.Data["content"]
	assert.False(t, hasContent)
}

func TestRespond_Exhaustion(t *testing.T) {
	// the model asks for the same successful tool call forever
	responses := make([]*model.Response, 12)
	for i := range responses {
		responses[i] = toolResp(tool.ToolCall{
			ID:   fmt.Sprintf("call_%d", i),
			Name: currencytool.ListSupportedCurrenciesName,
			Args: map[string]any{},
		})
	}
	llm := &scriptedLLM{responses: responses}
	a := newTestAgent(t, llm)

	_, err := a.Respond(context.Background(), userMsg("loop forever"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 10, llm.calls)
}

func TestRespond_ConsecutiveErrorTurns(t *testing.T) {
	// every turn is a single failing tool call
	responses := make([]*model.Response, 5)
	for i := range responses {
		responses[i] = toolResp(tool.ToolCall{
			ID:   fmt.Sprintf("call_%d", i),
			Name: currencytool.GetExchangeRateName,
			Args: map[string]any{"from_currency": "XXX", "to_currency": "YYY"},
		})
	}
	llm := &scriptedLLM{responses: responses}
	a := newTestAgent(t, llm)

	_, err := a.Respond(context.Background(), userMsg("bad loop"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	// abandoned after 3 failed turns, well before the iteration cap
	assert.Equal(t, 3, llm.calls)
}

func TestRespond_ErrorTurnCounterResets(t *testing.T) {
	fail := func(id string) *model.Response {
		return toolResp(tool.ToolCall{
			ID:   id,
			Name: currencytool.GetExchangeRateName,
			Args: map[string]any{"from_currency": "XXX", "to_currency": "YYY"},
		})
	}
	ok := func(id string) *model.Response {
		return toolResp(tool.ToolCall{
			ID:   id,
			Name: currencytool.ListSupportedCurrenciesName,
			Args: map[string]any{},
		})
	}

	llm := &scriptedLLM{responses: []*model.Response{
		fail("c1"), fail("c2"), ok("c3"), fail("c4"), fail("c5"),
		textResp("recovered"),
	}}
	a := newTestAgent(t, llm)

	answer, err := a.Respond(context.Background(), userMsg("flaky"))
	require.NoError(t, err)
	assert.Equal(t, "recovered", answer)
	assert.Equal(t, 6, llm.calls)
}

func TestRespond_ModelBackendError(t *testing.T) {
	llm := &scriptedLLM{errs: []error{fmt.Errorf("connection refused")}}
	a := newTestAgent(t, llm)

	_, err := a.Respond(context.Background(), userMsg("hello"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelBackend)
}

func TestRespond_Timeout(t *testing.T) {
	llm := &scriptedLLM{responses: []*model.Response{
		textResp("too late"),
	}}
	a := newTestAgent(t, llm)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := a.Respond(ctx, userMsg("hello"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestRespond_InvalidRequest(t *testing.T) {
	a := newTestAgent(t, &scriptedLLM{})

	_, err := a.Respond(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = a.Respond(context.Background(), a2a.NewMessage(a2a.MessageRoleUser))
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = a.Respond(context.Background(), a2a.NewMessage(a2a.MessageRoleUser,
		a2a.DataPart{Data: map[string]any{"type": "blob"}}))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRespond_EmptyModelResponse(t *testing.T) {
	llm := &scriptedLLM{responses: []*model.Response{
		{FinishReason: model.FinishReasonStop},
	}}
	a := newTestAgent(t, llm)

	_, err := a.Respond(context.Background(), userMsg("hello"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelBackend)
}

func TestRespond_CustomOptions(t *testing.T) {
	responses := make([]*model.Response, 3)
	for i := range responses {
		responses[i] = toolResp(tool.ToolCall{
			ID:   fmt.Sprintf("call_%d", i),
			Name: currencytool.ListSupportedCurrenciesName,
			Args: map[string]any{},
		})
	}
	llm := &scriptedLLM{responses: responses}
	a := newTestAgent(t, llm,
		WithMaxIterations(2),
		WithSystemPrompt("custom prompt"))

	_, err := a.Respond(context.Background(), userMsg("hi"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 2, llm.calls)
	assert.Equal(t, "custom prompt", llm.requests[0].SystemInstruction)
}
