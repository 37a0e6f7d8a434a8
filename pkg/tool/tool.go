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

// Package tool defines the interfaces for tools the agent can invoke
// through LLM function calling.
//
// All tools in this system are synchronous: the model requests a call, the
// tool executes and returns a structured result, and the result is fed back
// into the conversation. Tool errors are carried as values in ToolResult
// rather than aborting the turn, so the model can recover or rephrase.
package tool

import "context"

// Tool defines the base interface for a callable tool.
type Tool interface {
	// Name returns the unique name of the tool.
	Name() string

	// Description returns a human-readable description of what the tool does.
	// Used by LLMs to decide when to use this tool.
	Description() string
}

// CallableTool extends Tool with synchronous execution capability.
type CallableTool interface {
	Tool

	// Call executes the tool with the given arguments.
	// Returns the result as a map and any error that occurred.
	Call(ctx Context, args map[string]any) (map[string]any, error)

	// Schema returns the JSON schema for the tool's parameters.
	// Returns nil if the tool takes no parameters.
	Schema() map[string]any
}

// Context provides the execution context for a tool invocation.
type Context interface {
	// Context returns the request-scoped context for cancellation and deadlines.
	Context() context.Context

	// FunctionCallID returns the unique ID of this tool invocation,
	// assigned by the model.
	FunctionCallID() string
}

type callContext struct {
	ctx    context.Context
	callID string
}

// NewContext builds a Context for a single tool invocation.
func NewContext(ctx context.Context, callID string) Context {
	return &callContext{ctx: ctx, callID: callID}
}

func (c *callContext) Context() context.Context { return c.ctx }
func (c *callContext) FunctionCallID() string   { return c.callID }

// Definition represents a tool definition for LLM function calling.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToDefinition converts a tool to a Definition.
func ToDefinition(t Tool) Definition {
	def := Definition{
		Name:        t.Name(),
		Description: t.Description(),
	}
	if ct, ok := t.(CallableTool); ok {
		def.Parameters = ct.Schema()
	}
	return def
}

// ToolCall represents an LLM's request to invoke a tool.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult represents the result of a tool invocation.
// Used for building the conversation history.
type ToolResult struct {
	ToolCallID string
	Content    string
	Error      string
	Metadata   map[string]any
}
