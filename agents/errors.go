// Copyright (c) Microsoft. All rights reserved.

package agents

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrAgent is the base error for run fulfillment failures.
	ErrAgent = errors.New("agent error")

	// ErrExecution indicates a runtime failure while driving a run.
	ErrExecution = fmt.Errorf("%w: execution", ErrAgent)

	// ErrNoToolCalls is returned when a run requires action but lists no
	// tool calls. The run is cancelled before this error is returned.
	ErrNoToolCalls = fmt.Errorf("%w: required action without tool calls", ErrExecution)

	// ErrService is the base error for backend service failures.
	ErrService = errors.New("service error")

	// ErrInvalidRequest indicates the request was malformed or invalid.
	ErrInvalidRequest = fmt.Errorf("%w: invalid request", ErrService)

	// ErrInvalidResponse indicates the service returned an unexpected response.
	ErrInvalidResponse = fmt.Errorf("%w: invalid response", ErrService)

	// ErrAuth indicates an authentication or authorization failure.
	ErrAuth = fmt.Errorf("%w: authentication", ErrService)

	// ErrNotFound indicates the thread, run or agent does not exist.
	ErrNotFound = fmt.Errorf("%w: not found", ErrService)

	// ErrRateLimited indicates the service throttled the request.
	ErrRateLimited = fmt.Errorf("%w: rate limited", ErrService)

	// ErrTool is the base error for function-related failures.
	ErrTool = errors.New("tool error")

	// ErrToolExecution indicates a failure during function invocation.
	ErrToolExecution = fmt.Errorf("%w: execution", ErrTool)

	// ErrUnknownFunction indicates a tool call named a function that is not
	// in the registry.
	ErrUnknownFunction = fmt.Errorf("%w: unknown function", ErrTool)

	// ErrDuplicateFunction is returned when registering a name twice.
	ErrDuplicateFunction = fmt.Errorf("%w: duplicate function", ErrTool)
)

// ServiceError provides rich context for backend service failures.
// Use errors.As to extract it from a wrapped error chain.
type ServiceError struct {
	StatusCode int
	Message    string
	Code       string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("service error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("service error %d: %s", e.StatusCode, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ToolError provides context for function invocation failures.
type ToolError struct {
	ToolName string
	CallID   string
	Message  string
	Err      error
}

func (e *ToolError) Error() string {
	if e.CallID != "" {
		return fmt.Sprintf("tool %q (call %s): %s", e.ToolName, e.CallID, e.Message)
	}
	return fmt.Sprintf("tool %q: %s", e.ToolName, e.Message)
}

func (e *ToolError) Unwrap() error { return e.Err }
