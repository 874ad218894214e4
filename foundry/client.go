// Copyright (c) Microsoft. All rights reserved.

// Package foundry provides a client for the Azure AI Foundry Agent Service.
//
// [Client] implements [agents.RunService], so it can be handed straight to
// [agents.NewRunner]:
//
//	client := foundry.New(endpoint, foundry.WithAzureCredential(cred))
//	runner := agents.NewRunner(client, registry)
package foundry

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/microsoft/foundry-agent-runs/go/agents"
)

// Client talks to a single Foundry project endpoint. Use [New] to create one.
type Client struct {
	tp transport
}

// Verify interface compliance at compile time.
var _ agents.RunService = (*Client)(nil)

// Agent is an agent definition stored by the service.
type Agent struct {
	ID           string
	Name         string
	Model        string
	Instructions string
}

// AgentDefinition describes an agent to create.
type AgentDefinition struct {
	Model        string
	Name         string
	Instructions string
	Functions    []agents.FunctionDefinition
}

// New creates a [Client] for the project endpoint, e.g.
// https://<resource>.services.ai.azure.com/api/projects/<project>.
func New(endpoint string, opts ...Option) *Client {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}
	return &Client{tp: newHTTPTransport(endpoint, cfg)}
}

// newWithTransport creates a Client with a custom transport (for testing).
func newWithTransport(tp transport) *Client {
	return &Client{tp: tp}
}

// CreateAgent registers an agent with the given model, instructions and
// function tools.
func (c *Client) CreateAgent(ctx context.Context, def AgentDefinition) (*Agent, error) {
	if def.Model == "" {
		return nil, fmt.Errorf("%w: model is required", agents.ErrInvalidRequest)
	}
	req := createAgentRequest{
		Model:        def.Model,
		Name:         def.Name,
		Instructions: def.Instructions,
		Tools:        toolSpecs(def.Functions),
	}

	var raw agentResponse
	if err := c.call(ctx, http.MethodPost, "/assistants", nil, req, &raw); err != nil {
		return nil, err
	}
	return &Agent{
		ID:           raw.ID,
		Name:         raw.Name,
		Model:        raw.Model,
		Instructions: raw.Instructions,
	}, nil
}

// DeleteAgent removes an agent.
func (c *Client) DeleteAgent(ctx context.Context, agentID string) error {
	var raw deleteResponse
	return c.call(ctx, http.MethodDelete, "/assistants/"+url.PathEscape(agentID), nil, nil, &raw)
}

// CreateThread starts an empty conversation thread and returns its id.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var raw threadResponse
	if err := c.call(ctx, http.MethodPost, "/threads", nil, struct{}{}, &raw); err != nil {
		return "", err
	}
	if raw.ID == "" {
		return "", fmt.Errorf("%w: thread id missing", agents.ErrInvalidResponse)
	}
	return raw.ID, nil
}

// DeleteThread removes a thread and its messages.
func (c *Client) DeleteThread(ctx context.Context, threadID string) error {
	var raw deleteResponse
	return c.call(ctx, http.MethodDelete, threadPath(threadID), nil, nil, &raw)
}

// CreateMessage appends a message to a thread.
func (c *Client) CreateMessage(ctx context.Context, threadID string, role agents.Role, content string) (*agents.ThreadMessage, error) {
	req := createMessageRequest{Role: string(role), Content: content}

	var raw messageResponse
	if err := c.call(ctx, http.MethodPost, threadPath(threadID)+"/messages", nil, req, &raw); err != nil {
		return nil, err
	}
	msg := parseMessage(&raw)
	return &msg, nil
}

// ListMessages returns every message in the thread, oldest first.
func (c *Client) ListMessages(ctx context.Context, threadID string) ([]agents.ThreadMessage, error) {
	var msgs []agents.ThreadMessage
	after := ""
	for {
		q := url.Values{"order": {"asc"}}
		if after != "" {
			q.Set("after", after)
		}

		var page listMessagesResponse
		if err := c.call(ctx, http.MethodGet, threadPath(threadID)+"/messages", q, nil, &page); err != nil {
			return nil, err
		}
		for i := range page.Data {
			msgs = append(msgs, parseMessage(&page.Data[i]))
		}

		if !page.HasMore || page.LastID == "" || page.LastID == after {
			return msgs, nil
		}
		after = page.LastID
	}
}

// CreateRun starts a run of the agent on the thread.
func (c *Client) CreateRun(ctx context.Context, threadID, agentID string) (*agents.Run, error) {
	req := createRunRequest{AssistantID: agentID}
	return c.run(ctx, http.MethodPost, threadPath(threadID)+"/runs", req)
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*agents.Run, error) {
	return c.run(ctx, http.MethodGet, runPath(threadID, runID), nil)
}

// SubmitToolOutputs answers the run's pending tool calls.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []agents.ToolOutput) (*agents.Run, error) {
	req := submitToolOutputsRequest{ToolOutputs: make([]toolOutput, len(outputs))}
	for i, o := range outputs {
		req.ToolOutputs[i] = toolOutput{ToolCallID: o.CallID, Output: o.Output}
	}
	return c.run(ctx, http.MethodPost, runPath(threadID, runID)+"/submit_tool_outputs", req)
}

// CancelRun asks the service to cancel a run.
func (c *Client) CancelRun(ctx context.Context, threadID, runID string) (*agents.Run, error) {
	return c.run(ctx, http.MethodPost, runPath(threadID, runID)+"/cancel", struct{}{})
}

func (c *Client) run(ctx context.Context, method, path string, body any) (*agents.Run, error) {
	var raw runResponse
	if err := c.call(ctx, method, path, nil, body, &raw); err != nil {
		return nil, err
	}
	if raw.ID == "" || raw.Status == "" {
		return nil, fmt.Errorf("%w: run id or status missing", agents.ErrInvalidResponse)
	}
	return parseRun(&raw), nil
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.tp.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

func threadPath(threadID string) string {
	return "/threads/" + url.PathEscape(threadID)
}

func runPath(threadID, runID string) string {
	return threadPath(threadID) + "/runs/" + url.PathEscape(runID)
}
