// Copyright (c) Microsoft. All rights reserved.

package agents

// RunStatus is the lifecycle state of a remote run.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusExpired        RunStatus = "expired"
	RunStatusIncomplete     RunStatus = "incomplete"
)

// Active reports whether the runner keeps polling a run in this status.
// Every other status ends the loop.
func (s RunStatus) Active() bool {
	switch s {
	case RunStatusQueued, RunStatusInProgress, RunStatusRequiresAction:
		return true
	}
	return false
}

// RequiredActionType discriminates the kind of action a run waits for.
type RequiredActionType string

const RequiredActionSubmitToolOutputs RequiredActionType = "submit_tool_outputs"

// Run is a remote execution of an agent against a thread.
type Run struct {
	ID             string
	ThreadID       string
	AgentID        string
	Status         RunStatus
	RequiredAction *RequiredAction
	LastError      *RunError
	Usage          UsageDetails
}

// RequiredAction is present only while a run is in requires_action.
type RequiredAction struct {
	Type      RequiredActionType
	ToolCalls []ToolCall
}

// RunError is the failure reported by the service for a failed run.
type RunError struct {
	Code    string
	Message string
}

func (e *RunError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// PendingToolCalls returns the tool calls the run waits on, or nil when the
// run requires no action.
func (r *Run) PendingToolCalls() []ToolCall {
	if r == nil || r.RequiredAction == nil {
		return nil
	}
	return r.RequiredAction.ToolCalls
}

// ToolCall is a request from the service to execute a local function.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON-encoded argument object
}

// ToolOutput answers a [ToolCall] by call id.
type ToolOutput struct {
	CallID string
	Output string
}

// UsageDetails holds token consumption statistics for a run.
type UsageDetails struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
