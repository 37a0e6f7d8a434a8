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

package functiontool_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cambiolabs/cambio/pkg/tool"
	"github.com/cambiolabs/cambio/pkg/tool/functiontool"
)

func testContext() tool.Context {
	return tool.NewContext(context.Background(), "call-1")
}

func TestNew_SimpleArgs(t *testing.T) {
	type RateArgs struct {
		From string `json:"from_currency" jsonschema:"required,description=Source currency code"`
		To   string `json:"to_currency,omitempty" jsonschema:"description=Target currency code"`
	}

	rateTool, err := functiontool.New(
		functiontool.Config{
			Name:        "lookup_rate",
			Description: "Look up an exchange rate",
		},
		func(ctx tool.Context, args RateArgs) (map[string]any, error) {
			return map[string]any{
				"pair": fmt.Sprintf("%s/%s", args.From, args.To),
			}, nil
		},
	)

	if err != nil {
		t.Fatalf("Failed to create tool: %v", err)
	}

	if rateTool.Name() != "lookup_rate" {
		t.Errorf("Expected name 'lookup_rate', got %q", rateTool.Name())
	}
	if rateTool.Description() != "Look up an exchange rate" {
		t.Errorf("Expected description 'Look up an exchange rate', got %q", rateTool.Description())
	}

	schema := rateTool.Schema()
	if schema == nil {
		t.Fatal("Schema is nil")
	}
	if schema["type"] != "object" {
		t.Errorf("Expected type 'object', got %v", schema["type"])
	}

	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatal("Properties not found or wrong type")
	}
	if _, ok := props["from_currency"]; !ok {
		t.Error("Property 'from_currency' not found in schema")
	}
	if _, ok := props["to_currency"]; !ok {
		t.Error("Property 'to_currency' not found in schema")
	}

	required, ok := schema["required"].([]any)
	if !ok {
		t.Fatal("Required field not found or wrong type")
	}
	foundFrom := false
	for _, r := range required {
		if r == "from_currency" {
			foundFrom = true
		}
	}
	if !foundFrom {
		t.Error("'from_currency' should be in required fields")
	}
}

func TestCall_ValidArgs(t *testing.T) {
	type SumArgs struct {
		A float64 `json:"a" jsonschema:"required,description=First amount"`
		B float64 `json:"b" jsonschema:"required,description=Second amount"`
	}

	sumTool, err := functiontool.New(
		functiontool.Config{
			Name:        "sum",
			Description: "Add two amounts",
		},
		func(ctx tool.Context, args SumArgs) (map[string]any, error) {
			return map[string]any{
				"result": args.A + args.B,
			}, nil
		},
	)

	if err != nil {
		t.Fatalf("Failed to create tool: %v", err)
	}

	result, err := sumTool.Call(testContext(), map[string]any{
		"a": 5.0,
		"b": 3.0,
	})

	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if result["result"] != 8.0 {
		t.Errorf("Expected result 8, got %v", result["result"])
	}
}

func TestCall_MissingArgs(t *testing.T) {
	type StrictArgs struct {
		Code string `json:"code" jsonschema:"required"`
	}

	strictTool, err := functiontool.New(
		functiontool.Config{
			Name:        "strict",
			Description: "Requires code",
		},
		func(ctx tool.Context, args StrictArgs) (map[string]any, error) {
			return map[string]any{"code": args.Code}, nil
		},
	)

	if err != nil {
		t.Fatalf("Failed to create tool: %v", err)
	}

	// Required fields must be present; zero-filling would silently
	// compute on defaults.
	_, err = strictTool.Call(testContext(), map[string]any{})
	if err == nil {
		t.Fatal("Expected error for missing required argument")
	}
	if !strings.Contains(err.Error(), "code") {
		t.Errorf("Expected error to name the missing field, got: %v", err)
	}

	result, err := strictTool.Call(testContext(), map[string]any{"code": "EUR"})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if result["code"] != "EUR" {
		t.Errorf("Expected code 'EUR', got %v", result["code"])
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	type DummyArgs struct {
		Value string `json:"value"`
	}

	_, err := functiontool.New(
		functiontool.Config{
			Description: "No name",
		},
		func(ctx tool.Context, args DummyArgs) (map[string]any, error) {
			return nil, nil
		},
	)
	if err == nil {
		t.Error("Expected error for missing name")
	}

	_, err = functiontool.New(
		functiontool.Config{
			Name: "no_description",
		},
		func(ctx tool.Context, args DummyArgs) (map[string]any, error) {
			return nil, nil
		},
	)
	if err == nil {
		t.Error("Expected error for missing description")
	}
}

func TestCall_FunctionError(t *testing.T) {
	type ErrorArgs struct {
		ShouldFail bool `json:"should_fail"`
	}

	errorTool, err := functiontool.New(
		functiontool.Config{
			Name:        "error_test",
			Description: "Tests error handling",
		},
		func(ctx tool.Context, args ErrorArgs) (map[string]any, error) {
			if args.ShouldFail {
				return nil, fmt.Errorf("intentional error")
			}
			return map[string]any{"success": true}, nil
		},
	)

	if err != nil {
		t.Fatalf("Failed to create tool: %v", err)
	}

	result, err := errorTool.Call(testContext(), map[string]any{
		"should_fail": false,
	})
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if result["success"] != true {
		t.Error("Expected success")
	}

	_, err = errorTool.Call(testContext(), map[string]any{
		"should_fail": true,
	})
	if err == nil {
		t.Error("Expected error from function")
	}
	if !strings.Contains(err.Error(), "intentional error") {
		t.Errorf("Expected 'intentional error', got: %v", err)
	}
}

func TestCall_TypeConversion(t *testing.T) {
	type NumericArgs struct {
		IntVal    int     `json:"int_val"`
		FloatVal  float64 `json:"float_val"`
		BoolVal   bool    `json:"bool_val"`
		StringVal string  `json:"string_val"`
	}

	numericTool, err := functiontool.New(
		functiontool.Config{
			Name:        "numeric",
			Description: "Tests type conversion",
		},
		func(ctx tool.Context, args NumericArgs) (map[string]any, error) {
			return map[string]any{
				"int":    args.IntVal,
				"float":  args.FloatVal,
				"bool":   args.BoolVal,
				"string": args.StringVal,
			}, nil
		},
	)

	if err != nil {
		t.Fatalf("Failed to create tool: %v", err)
	}

	// JSON numbers arrive as float64; mapToStruct narrows them back.
	result, err := numericTool.Call(testContext(), map[string]any{
		"int_val":    42.0,
		"float_val":  3.14,
		"bool_val":   true,
		"string_val": "hello",
	})

	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if result["int"] != 42 {
		t.Errorf("Expected int 42, got %v", result["int"])
	}
	if result["float"] != 3.14 {
		t.Errorf("Expected float 3.14, got %v", result["float"])
	}
	if result["bool"] != true {
		t.Errorf("Expected bool true, got %v", result["bool"])
	}
	if result["string"] != "hello" {
		t.Errorf("Expected string 'hello', got %v", result["string"])
	}
}

func TestNoArgsSchema(t *testing.T) {
	type ListAllArgs struct{}

	noArgsTool, err := functiontool.New(
		functiontool.Config{
			Name:        "list_all",
			Description: "List everything",
		},
		func(ctx tool.Context, args ListAllArgs) (map[string]any, error) {
			return map[string]any{"ok": true}, nil
		},
	)

	if err != nil {
		t.Fatalf("Failed to create tool: %v", err)
	}

	schema := noArgsTool.Schema()
	if schema["type"] != "object" {
		t.Errorf("Expected type 'object', got %v", schema["type"])
	}

	result, err := noArgsTool.Call(testContext(), nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if result["ok"] != true {
		t.Error("Expected ok=true")
	}
}
