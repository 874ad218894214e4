// Copyright (c) Microsoft. All rights reserved.

package agents_test

import (
	"context"
	"sync"

	"github.com/microsoft/foundry-agent-runs/go/agents"
)

// fakeService replays a scripted sequence of run states. Each GetRun
// returns the next state; the last state repeats.
type fakeService struct {
	mu        sync.Mutex
	script    []agents.Run
	polls     int
	submitted [][]agents.ToolOutput
	cancelled int
	getErr    error
	submitErr error
}

var _ agents.RunService = (*fakeService)(nil)

func newFakeService(script ...agents.Run) *fakeService {
	return &fakeService{script: script}
}

func (f *fakeService) GetRun(_ context.Context, threadID, runID string) (*agents.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	i := f.polls
	if i >= len(f.script) {
		i = len(f.script) - 1
	}
	f.polls++
	run := f.script[i]
	run.ID = runID
	run.ThreadID = threadID
	return &run, nil
}

func (f *fakeService) SubmitToolOutputs(_ context.Context, threadID, runID string, outputs []agents.ToolOutput) (*agents.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	cp := make([]agents.ToolOutput, len(outputs))
	copy(cp, outputs)
	f.submitted = append(f.submitted, cp)
	return &agents.Run{ID: runID, ThreadID: threadID, Status: agents.RunStatusQueued}, nil
}

func (f *fakeService) CancelRun(_ context.Context, threadID, runID string) (*agents.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled++
	return &agents.Run{ID: runID, ThreadID: threadID, Status: agents.RunStatusCancelled}, nil
}

func requiresAction(calls ...agents.ToolCall) agents.Run {
	return agents.Run{
		Status: agents.RunStatusRequiresAction,
		RequiredAction: &agents.RequiredAction{
			Type:      agents.RequiredActionSubmitToolOutputs,
			ToolCalls: calls,
		},
	}
}

func status(s agents.RunStatus) agents.Run {
	return agents.Run{Status: s}
}
