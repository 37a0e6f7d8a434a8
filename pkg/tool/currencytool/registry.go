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

package currencytool

import (
	"encoding/json"
	"fmt"

	"github.com/cambiolabs/cambio/pkg/currency"
	"github.com/cambiolabs/cambio/pkg/tool"
)

// Registry holds the closed set of currency tools and dispatches model
// tool calls to them. The registry is built once at startup and is safe
// for concurrent use.
type Registry struct {
	tools  []tool.CallableTool
	byName map[string]tool.CallableTool
}

// NewRegistry builds a Registry over the given rate table.
func NewRegistry(table *currency.Table) (*Registry, error) {
	tools, err := All(table)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]tool.CallableTool, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
	}

	return &Registry{tools: tools, byName: byName}, nil
}

// Definitions returns the tool definitions to advertise to the model,
// in a stable order.
func (r *Registry) Definitions() []tool.Definition {
	defs := make([]tool.Definition, len(r.tools))
	for i, t := range r.tools {
		defs[i] = tool.ToDefinition(t)
	}
	return defs
}

// Dispatch executes a single model tool call and returns its result.
//
// Failures never propagate as errors: an unknown tool name, bad arguments,
// or a tool error all produce a ToolResult with Error set, which is fed
// back to the model so it can adjust its next step.
func (r *Registry) Dispatch(ctx tool.Context, call tool.ToolCall) tool.ToolResult {
	t, ok := r.byName[call.Name]
	if !ok {
		return tool.ToolResult{
			ToolCallID: call.ID,
			Error:      fmt.Sprintf("unknown tool: %q", call.Name),
		}
	}

	payload, err := t.Call(ctx, call.Args)
	if err != nil {
		return tool.ToolResult{
			ToolCallID: call.ID,
			Error:      err.Error(),
		}
	}

	content, err := json.Marshal(payload)
	if err != nil {
		return tool.ToolResult{
			ToolCallID: call.ID,
			Error:      fmt.Sprintf("failed to encode result: %v", err),
		}
	}

	return tool.ToolResult{
		ToolCallID: call.ID,
		Content:    string(content),
	}
}
