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

// Package functiontool provides a convenient way to create tools from typed
// Go functions, with automatic JSON schema generation from struct tags.
//
// FunctionTool is syntactic sugar over the CallableTool interface: it wraps a
// typed function in a CallableTool implementation, so tool authors get
// compile-time type safety for arguments without hand-writing schemas.
//
//	type ConvertArgs struct {
//	    Amount float64 `json:"amount" jsonschema:"required,description=The amount to convert"`
//	    From   string  `json:"from_currency" jsonschema:"required,description=Source currency code"`
//	}
//
//	convertTool, err := functiontool.New(
//	    functiontool.Config{
//	        Name:        "convert_currency",
//	        Description: "Convert an amount between currencies",
//	    },
//	    func(ctx tool.Context, args ConvertArgs) (map[string]any, error) {
//	        // Implementation
//	    },
//	)
package functiontool

import (
	"fmt"
	"strings"

	"github.com/cambiolabs/cambio/pkg/tool"
)

// Config defines the configuration for a function tool.
type Config struct {
	// Name is the unique identifier for this tool (required).
	Name string

	// Description explains what the tool does (required).
	// This is shown to the LLM to help it decide when to use the tool.
	Description string
}

// New creates a CallableTool from a typed function.
//
// The function signature must be:
//
//	func(tool.Context, Args) (map[string]any, error)
//
// Where Args is a struct with json and jsonschema tags defining the
// parameters. Use a named empty struct for tools that take no arguments;
// schema reflection requires the args type to be named.
func New[Args any](cfg Config, fn func(tool.Context, Args) (map[string]any, error)) (tool.CallableTool, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	schema, err := generateSchema[Args]()
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema for %s: %w", cfg.Name, err)
	}

	return &functionTool[Args]{
		config:   cfg,
		fn:       fn,
		schema:   schema,
		required: requiredKeys(schema),
	}, nil
}

// functionTool implements tool.CallableTool by wrapping a typed function.
type functionTool[Args any] struct {
	config   Config
	fn       func(tool.Context, Args) (map[string]any, error)
	schema   map[string]any
	required []string
}

// Name returns the tool name.
func (t *functionTool[Args]) Name() string {
	return t.config.Name
}

// Description returns the tool description.
func (t *functionTool[Args]) Description() string {
	return t.config.Description
}

// Schema returns the JSON schema for tool parameters.
func (t *functionTool[Args]) Schema() map[string]any {
	return t.schema
}

// Call executes the function with typed arguments. Arguments the schema
// marks required must be present in args; decoding would otherwise
// zero-fill them and silently compute on defaults.
func (t *functionTool[Args]) Call(ctx tool.Context, args map[string]any) (map[string]any, error) {
	if missing := missingArgs(t.required, args); len(missing) > 0 {
		return nil, fmt.Errorf("missing required arguments for %s: %s",
			t.config.Name, strings.Join(missing, ", "))
	}

	var typedArgs Args
	if err := mapToStruct(args, &typedArgs); err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", t.config.Name, err)
	}

	return t.fn(ctx, typedArgs)
}

// requiredKeys reads the required property names out of a generated schema.
func requiredKeys(schema map[string]any) []string {
	raw, ok := schema["required"].([]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		if s, ok := k.(string); ok {
			keys = append(keys, s)
		}
	}
	return keys
}

// missingArgs returns the required keys absent from args.
func missingArgs(required []string, args map[string]any) []string {
	var missing []string
	for _, key := range required {
		if _, ok := args[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// validateConfig checks that the configuration is valid.
func validateConfig(cfg Config) error {
	if cfg.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if cfg.Description == "" {
		return fmt.Errorf("tool description is required")
	}
	return nil
}

// Verify interface compliance at compile time
var _ tool.CallableTool = (*functionTool[struct{}])(nil)
