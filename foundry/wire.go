// Copyright (c) Microsoft. All rights reserved.

package foundry

import (
	"encoding/json"
	"time"

	"github.com/microsoft/foundry-agent-runs/go/agents"
)

// createAgentRequest is the body of POST /assistants.
type createAgentRequest struct {
	Model        string     `json:"model"`
	Name         string     `json:"name,omitempty"`
	Instructions string     `json:"instructions,omitempty"`
	Tools        []toolSpec `json:"tools,omitempty"`
}

type toolSpec struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type functionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type agentResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Model        string `json:"model"`
	Instructions string `json:"instructions"`
}

type threadResponse struct {
	ID string `json:"id"`
}

type deleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type createMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type createRunRequest struct {
	AssistantID            string `json:"assistant_id"`
	AdditionalInstructions string `json:"additional_instructions,omitempty"`
}

type submitToolOutputsRequest struct {
	ToolOutputs []toolOutput `json:"tool_outputs"`
}

type toolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// runResponse is a thread.run object.
type runResponse struct {
	ID             string          `json:"id"`
	ThreadID       string          `json:"thread_id"`
	AssistantID    string          `json:"assistant_id"`
	Status         string          `json:"status"`
	RequiredAction *requiredAction `json:"required_action"`
	LastError      *lastError      `json:"last_error"`
	Usage          *runUsage       `json:"usage"`
}

type requiredAction struct {
	Type              string `json:"type"`
	SubmitToolOutputs *struct {
		ToolCalls []toolCall `json:"tool_calls"`
	} `json:"submit_tool_outputs"`
}

type toolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function functionCall `json:"function"`
}

type functionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type lastError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type runUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// messageResponse is a thread.message object.
type messageResponse struct {
	ID        string           `json:"id"`
	ThreadID  string           `json:"thread_id"`
	RunID     string           `json:"run_id"`
	Role      string           `json:"role"`
	CreatedAt int64            `json:"created_at"`
	Content   []messageContent `json:"content"`
}

type messageContent struct {
	Type string       `json:"type"`
	Text *messageText `json:"text,omitempty"`
}

type messageText struct {
	Value       string       `json:"value"`
	Annotations []annotation `json:"annotations"`
}

type annotation struct {
	Type        string       `json:"type"`
	Text        string       `json:"text"`
	StartIndex  *int         `json:"start_index"`
	EndIndex    *int         `json:"end_index"`
	URLCitation *urlCitation `json:"url_citation,omitempty"`
}

type urlCitation struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type listMessagesResponse struct {
	Data    []messageResponse `json:"data"`
	LastID  string            `json:"last_id"`
	HasMore bool              `json:"has_more"`
}

func toolSpecs(defs []agents.FunctionDefinition) []toolSpec {
	if len(defs) == 0 {
		return nil
	}
	specs := make([]toolSpec, len(defs))
	for i, d := range defs {
		specs[i] = toolSpec{
			Type: "function",
			Function: functionSpec{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		}
	}
	return specs
}

// parseRun converts a run object into the agents representation.
func parseRun(raw *runResponse) *agents.Run {
	run := &agents.Run{
		ID:       raw.ID,
		ThreadID: raw.ThreadID,
		AgentID:  raw.AssistantID,
		Status:   agents.RunStatus(raw.Status),
	}

	if ra := raw.RequiredAction; ra != nil {
		action := &agents.RequiredAction{Type: agents.RequiredActionType(ra.Type)}
		if ra.SubmitToolOutputs != nil {
			for _, tc := range ra.SubmitToolOutputs.ToolCalls {
				if tc.Type != "" && tc.Type != "function" {
					continue
				}
				action.ToolCalls = append(action.ToolCalls, agents.ToolCall{
					ID:        tc.ID,
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				})
			}
		}
		run.RequiredAction = action
	}

	if raw.LastError != nil {
		run.LastError = &agents.RunError{
			Code:    raw.LastError.Code,
			Message: raw.LastError.Message,
		}
	}

	if raw.Usage != nil {
		run.Usage = agents.UsageDetails{
			InputTokens:  raw.Usage.PromptTokens,
			OutputTokens: raw.Usage.CompletionTokens,
			TotalTokens:  raw.Usage.TotalTokens,
		}
	}

	return run
}

// parseMessage converts a message object, keeping only its text parts.
func parseMessage(raw *messageResponse) agents.ThreadMessage {
	msg := agents.ThreadMessage{
		ID:       raw.ID,
		ThreadID: raw.ThreadID,
		RunID:    raw.RunID,
		Role:     agents.Role(raw.Role),
	}
	if raw.CreatedAt > 0 {
		msg.CreatedAt = time.Unix(raw.CreatedAt, 0).UTC()
	}

	for _, c := range raw.Content {
		if c.Type != "text" || c.Text == nil {
			continue
		}
		text := agents.MessageText{Value: c.Text.Value}
		for _, a := range c.Text.Annotations {
			ann := agents.Annotation{
				Type:       agents.AnnotationType(a.Type),
				Text:       a.Text,
				StartIndex: a.StartIndex,
				EndIndex:   a.EndIndex,
			}
			if a.URLCitation != nil {
				ann.URLCitation = &agents.URLCitation{
					URL:   a.URLCitation.URL,
					Title: a.URLCitation.Title,
				}
			}
			text.Annotations = append(text.Annotations, ann)
		}
		msg.Contents = append(msg.Contents, text)
	}
	return msg
}
