// Copyright (c) Microsoft. All rights reserved.

package agents

import (
	"context"
	"encoding/json"
)

// Function is a local capability the service can ask the caller to execute
// through a tool call.
type Function interface {
	// Name returns the function name as declared to the agent.
	Name() string

	// Description returns a human-readable description for the model.
	Description() string

	// Parameters returns the JSON Schema describing the function's input.
	Parameters() json.RawMessage

	// Invoke calls the function with the JSON arguments of a tool call.
	Invoke(ctx context.Context, args json.RawMessage) (any, error)
}

// FunctionDefinition is the declaration of a [Function] sent to the service
// when an agent is created.
type FunctionDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Define returns the declaration of fn.
func Define(fn Function) FunctionDefinition {
	return FunctionDefinition{
		Name:        fn.Name(),
		Description: fn.Description(),
		Parameters:  fn.Parameters(),
	}
}

// FunctionTool is a concrete [Function] backed by a Go function.
type FunctionTool struct {
	name        string
	description string
	parameters  json.RawMessage
	fn          func(ctx context.Context, args json.RawMessage) (any, error)
}

var _ Function = (*FunctionTool)(nil)

// NewFunction creates a [FunctionTool] with a raw JSON schema and handler.
// A nil parameters schema declares an empty object.
func NewFunction(name, description string, parameters json.RawMessage, fn func(ctx context.Context, args json.RawMessage) (any, error)) *FunctionTool {
	if len(parameters) == 0 {
		parameters = json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewTypedFunction creates a [FunctionTool] whose schema is generated from
// the Args type parameter and whose arguments are decoded into Args.
//
// Args should be a struct with json tags. The `jsonschema` tag adds schema
// metadata:
//
//	type WeatherArgs struct {
//	    Location string `json:"location" jsonschema:"description=City name,required"`
//	    Unit     string `json:"unit"     jsonschema:"description=Temperature unit,enum=celsius|fahrenheit"`
//	}
func NewTypedFunction[Args any](name, description string, fn func(ctx context.Context, args Args) (any, error)) *FunctionTool {
	wrapped := func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args Args
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, &ToolError{
					ToolName: name,
					Message:  "invalid arguments: " + err.Error(),
					Err:      ErrToolExecution,
				}
			}
		}
		return fn(ctx, args)
	}
	return NewFunction(name, description, GenerateSchema[Args](), wrapped)
}

func (t *FunctionTool) Name() string                { return t.name }
func (t *FunctionTool) Description() string         { return t.description }
func (t *FunctionTool) Parameters() json.RawMessage { return t.parameters }

// Invoke calls the function's backing handler.
func (t *FunctionTool) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	if t.fn == nil {
		return nil, &ToolError{
			ToolName: t.name,
			Message:  "function has no handler",
			Err:      ErrToolExecution,
		}
	}
	return t.fn(ctx, args)
}
