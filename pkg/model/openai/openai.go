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

// Package openai provides an LLM implementation over the Chat Completions
// API with function calling. It works against both the OpenAI platform and
// Azure OpenAI deployments, which share the wire format but differ in URL
// layout and auth headers.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/a2aproject/a2a-go/a2a"

	"github.com/cambiolabs/cambio/pkg/httpclient"
	"github.com/cambiolabs/cambio/pkg/model"
	"github.com/cambiolabs/cambio/pkg/tool"
)

const (
	defaultBaseURL    = "https://api.openai.com/v1"
	defaultModel      = "gpt-4o-mini"
	defaultMaxTokens  = 4096
	defaultTimeout    = 120 * time.Second
	defaultAPIVersion = "2024-02-15-preview"
)

// Config configures the client.
type Config struct {
	// APIKey authenticates against the backend (required).
	APIKey string

	// Model is the model name, or the deployment name on Azure.
	Model string

	// BaseURL overrides the OpenAI platform endpoint.
	// Ignored when AzureEndpoint is set.
	BaseURL string

	// AzureEndpoint is the Azure OpenAI resource endpoint
	// (https://<resource>.openai.azure.com). When set, requests use the
	// Azure URL layout and api-key auth.
	AzureEndpoint string

	// AzureAPIVersion is the api-version query parameter for Azure.
	AzureAPIVersion string

	MaxTokens   int
	Temperature *float64
	Timeout     time.Duration
	MaxRetries  int
}

// Option configures the client.
type Option func(*Config)

// WithModel sets the model (or Azure deployment) name.
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithMaxTokens sets the maximum output tokens.
func WithMaxTokens(maxTokens int) Option {
	return func(c *Config) {
		c.MaxTokens = maxTokens
	}
}

// WithTemperature sets the temperature.
func WithTemperature(temp float64) Option {
	return func(c *Config) {
		c.Temperature = &temp
	}
}

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithAzure points the client at an Azure OpenAI deployment.
func WithAzure(endpoint, apiVersion string) Option {
	return func(c *Config) {
		c.AzureEndpoint = endpoint
		c.AzureAPIVersion = apiVersion
	}
}

// Client implements model.LLM over the Chat Completions API.
type Client struct {
	httpClient  *httpclient.Client
	apiKey      string
	baseURL     string
	azure       bool
	apiVersion  string
	modelName   string
	maxTokens   int
	temperature *float64
}

// New creates a new client.
func New(cfg Config, opts ...Option) (*Client, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	client := &Client{
		httpClient: httpclient.New(
			httpclient.WithHTTPClient(&http.Client{Timeout: timeout}),
			httpclient.WithMaxRetries(maxRetries),
			httpclient.WithHeaderParser(httpclient.ParseOpenAIHeaders),
		),
		apiKey:      cfg.APIKey,
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}

	if cfg.AzureEndpoint != "" {
		client.azure = true
		client.baseURL = strings.TrimSuffix(cfg.AzureEndpoint, "/")
		client.apiVersion = cfg.AzureAPIVersion
		if client.apiVersion == "" {
			client.apiVersion = defaultAPIVersion
		}
	} else {
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = defaultBaseURL
		}
		client.baseURL = strings.TrimSuffix(baseURL, "/")
	}

	return client, nil
}

// Name returns the model identifier.
func (c *Client) Name() string {
	return c.modelName
}

// Close releases resources.
func (c *Client) Close() error {
	return nil
}

// Generate performs a single chat completion.
func (c *Client) Generate(ctx context.Context, req *model.Request) (*model.Response, error) {
	apiReq := c.buildRequest(req)

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.completionsURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			bodyBytes, _ := io.ReadAll(resp.Body)
			if len(bodyBytes) > 0 {
				return nil, fmt.Errorf("request failed: %w - response: %s", err, string(bodyBytes))
			}
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return c.parseResponse(&apiResp)
}

// completionsURL returns the chat completions endpoint.
func (c *Client) completionsURL() string {
	if c.azure {
		return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			c.baseURL, url.PathEscape(c.modelName), url.QueryEscape(c.apiVersion))
	}
	return c.baseURL + "/chat/completions"
}

// setHeaders sets the required HTTP headers.
// Azure uses api-key; the OpenAI platform uses a bearer token.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.azure {
		req.Header.Set("api-key", c.apiKey)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// buildRequest creates an API request from model.Request.
func (c *Client) buildRequest(req *model.Request) *chatRequest {
	apiReq := &chatRequest{}

	// Azure routes by deployment in the URL; the platform needs the model
	// in the body.
	if !c.azure {
		apiReq.Model = c.modelName
	}

	if c.maxTokens > 0 {
		apiReq.MaxTokens = &c.maxTokens
	}
	if c.temperature != nil {
		apiReq.Temperature = c.temperature
	}

	if cfg := req.Config; cfg != nil {
		if cfg.MaxTokens != nil {
			apiReq.MaxTokens = cfg.MaxTokens
		}
		if cfg.Temperature != nil {
			apiReq.Temperature = cfg.Temperature
		}
		if cfg.TopP != nil {
			apiReq.TopP = cfg.TopP
		}
		if len(cfg.StopSequences) > 0 {
			apiReq.Stop = cfg.StopSequences
		}
	}

	if req.SystemInstruction != "" {
		apiReq.Messages = append(apiReq.Messages, chatMessage{
			Role:    "system",
			Content: req.SystemInstruction,
		})
	}

	apiReq.Messages = append(apiReq.Messages, c.convertMessages(req.Messages)...)

	if len(req.Tools) > 0 {
		apiReq.Tools = c.convertTools(req.Tools)
		apiReq.ToolChoice = "auto"
	}

	return apiReq
}

// convertMessages converts a2a messages to chat messages.
func (c *Client) convertMessages(messages []*a2a.Message) []chatMessage {
	var items []chatMessage

	for _, msg := range messages {
		if msg == nil {
			continue
		}

		// Tool results become role=tool messages, one per result.
		toolResults := extractToolResults(msg)
		if len(toolResults) > 0 {
			for _, tr := range toolResults {
				content := tr.Content
				if tr.Error != "" {
					content = fmt.Sprintf(`{"error": %q}`, tr.Error)
				}
				items = append(items, chatMessage{
					Role:       "tool",
					ToolCallID: tr.ToolCallID,
					Content:    content,
				})
			}
			continue
		}

		// Assistant messages that requested tool calls carry them in
		// the tool_calls field.
		toolCalls := extractToolCalls(msg)
		if msg.Role == a2a.MessageRoleAgent && len(toolCalls) > 0 {
			item := chatMessage{Role: "assistant"}
			if text := extractText(msg); text != "" {
				item.Content = text
			}
			for _, tc := range toolCalls {
				argsJSON, _ := json.Marshal(tc.Args)
				item.ToolCalls = append(item.ToolCalls, apiToolCall{
					ID:   tc.ID,
					Type: "function",
					Function: apiFunctionCall{
						Name:      tc.Name,
						Arguments: string(argsJSON),
					},
				})
			}
			items = append(items, item)
			continue
		}

		role := "user"
		if msg.Role == a2a.MessageRoleAgent {
			role = "assistant"
		}

		if text := extractText(msg); text != "" {
			items = append(items, chatMessage{
				Role:    role,
				Content: text,
			})
		}
	}

	return items
}

// extractText extracts text content from a message.
func extractText(msg *a2a.Message) string {
	var text strings.Builder
	for _, part := range msg.Parts {
		if tp, ok := part.(a2a.TextPart); ok && tp.Text != "" {
			text.WriteString(tp.Text)
		}
	}
	return text.String()
}

// extractToolCalls extracts tool calls from a message.
func extractToolCalls(msg *a2a.Message) []tool.ToolCall {
	var calls []tool.ToolCall
	for _, part := range msg.Parts {
		if dp, ok := part.(a2a.DataPart); ok {
			if dataType, ok := dp.Data["type"].(string); ok && dataType == "tool_use" {
				tc := tool.ToolCall{
					ID:   getString(dp.Data, "id"),
					Name: getString(dp.Data, "name"),
				}
				if args, ok := dp.Data["arguments"].(map[string]any); ok {
					tc.Args = args
				}
				calls = append(calls, tc)
			}
		}
	}
	return calls
}

// extractToolResults extracts tool results from a message.
func extractToolResults(msg *a2a.Message) []tool.ToolResult {
	var results []tool.ToolResult
	for _, part := range msg.Parts {
		if dp, ok := part.(a2a.DataPart); ok {
			if dataType, ok := dp.Data["type"].(string); ok && dataType == "tool_result" {
				results = append(results, tool.ToolResult{
					ToolCallID: getString(dp.Data, "tool_call_id"),
					Content:    getString(dp.Data, "content"),
					Error:      getString(dp.Data, "error"),
				})
			}
		}
	}
	return results
}

// convertTools converts tool definitions to the API format.
func (c *Client) convertTools(tools []tool.Definition) []apiTool {
	result := make([]apiTool, len(tools))
	for i, t := range tools {
		result[i] = apiTool{
			Type: "function",
			Function: apiFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return result
}

// parseResponse converts an API response to model.Response.
func (c *Client) parseResponse(resp *chatResponse) (*model.Response, error) {
	if resp.Error != nil {
		return nil, fmt.Errorf("API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := resp.Choices[0]

	result := &model.Response{
		Usage: &model.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		FinishReason: mapFinishReason(choice.FinishReason),
	}

	var parts []a2a.Part

	if choice.Message.Content != "" {
		parts = append(parts, a2a.TextPart{Text: choice.Message.Content})
	}

	for _, tc := range choice.Message.ToolCalls {
		var args map[string]any
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("failed to parse arguments for %s: %w", tc.Function.Name, err)
			}
		} else {
			args = make(map[string]any)
		}

		result.ToolCalls = append(result.ToolCalls, tool.ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: args,
		})
		parts = append(parts, a2a.DataPart{
			Data: map[string]any{
				"type":      "tool_use",
				"id":        tc.ID,
				"name":      tc.Function.Name,
				"arguments": args,
			},
		})
	}

	if len(parts) > 0 {
		result.Content = &model.Content{
			Parts: parts,
			Role:  a2a.MessageRoleAgent,
		}
	}

	return result, nil
}

// mapFinishReason maps an API finish reason to the model enum.
func mapFinishReason(reason string) model.FinishReason {
	switch reason {
	case "stop":
		return model.FinishReasonStop
	case "length":
		return model.FinishReasonLength
	case "tool_calls":
		return model.FinishReasonToolCalls
	case "content_filter":
		return model.FinishReasonContent
	default:
		return model.FinishReasonStop
	}
}

// getString safely extracts a string from a map.
func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// API types

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
	Tools       []apiTool     `json:"tools,omitempty"`
	ToolChoice  any           `json:"tool_choice,omitempty"`
}

type chatMessage struct {
	Role       string        `json:"role"`
	Content    string        `json:"content,omitempty"`
	ToolCalls  []apiToolCall `json:"tool_calls,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
}

type apiTool struct {
	Type     string      `json:"type"`
	Function apiFunction `json:"function"`
}

type apiFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type apiToolCall struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Function apiFunctionCall `json:"function"`
}

type apiFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   apiUsage     `json:"usage"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Ensure Client implements model.LLM
var _ model.LLM = (*Client)(nil)
