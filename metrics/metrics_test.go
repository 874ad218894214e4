// Copyright (c) Microsoft. All rights reserved.

package metrics_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/microsoft/foundry-agent-runs/go/agents"
	"github.com/microsoft/foundry-agent-runs/go/metrics"
)

func invoke(mw agents.FunctionMiddleware, fn agents.Function) (any, error) {
	handler := mw(func(ctx context.Context, fn agents.Function, args json.RawMessage) (any, error) {
		return fn.Invoke(ctx, args)
	})
	return handler(context.Background(), fn, json.RawMessage(`{}`))
}

func TestCollector_Middleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	ok := agents.NewFunction("fetch_weather", "", nil,
		func(ctx context.Context, args json.RawMessage) (any, error) { return "snowy", nil })
	bad := agents.NewFunction("get_network_status", "", nil,
		func(ctx context.Context, args json.RawMessage) (any, error) { return nil, errors.New("down") })

	mw := m.Middleware()
	if result, err := invoke(mw, ok); err != nil || result != "snowy" {
		t.Fatalf("invoke = %v, %v", result, err)
	}
	invoke(mw, ok)
	if _, err := invoke(mw, bad); err == nil {
		t.Fatal("error should pass through the middleware")
	}

	expected := `
# HELP foundry_tool_invocations_total Tool calls executed, by function and outcome.
# TYPE foundry_tool_invocations_total counter
foundry_tool_invocations_total{function="fetch_weather",outcome="success"} 2
foundry_tool_invocations_total{function="get_network_status",outcome="error"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "foundry_tool_invocations_total"); err != nil {
		t.Error(err)
	}
	if n, err := testutil.GatherAndCount(reg, "foundry_tool_duration_seconds"); err != nil || n != 2 {
		t.Errorf("duration series = %d, %v", n, err)
	}
}

func TestCollector_ObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveRun(&agents.Run{Status: agents.RunStatusQueued})
	m.ObserveRun(&agents.Run{Status: agents.RunStatusRequiresAction})
	m.ObserveRun(&agents.Run{
		Status: agents.RunStatusCompleted,
		Usage:  agents.UsageDetails{InputTokens: 30, OutputTokens: 12, TotalTokens: 42},
	})

	expected := `
# HELP foundry_run_polls_total Run states observed while polling, by status.
# TYPE foundry_run_polls_total counter
foundry_run_polls_total{status="completed"} 1
foundry_run_polls_total{status="queued"} 1
foundry_run_polls_total{status="requires_action"} 1
# HELP foundry_run_tokens_total Tokens reported by finished runs, by direction.
# TYPE foundry_run_tokens_total counter
foundry_run_tokens_total{direction="input"} 30
foundry_run_tokens_total{direction="output"} 12
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"foundry_run_polls_total", "foundry_run_tokens_total"); err != nil {
		t.Error(err)
	}
}

func TestCollector_WriteText(t *testing.T) {
	m := metrics.New(nil)
	m.ObserveRun(&agents.Run{Status: agents.RunStatusFailed})

	var buf bytes.Buffer
	if err := m.WriteText(&buf); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if !strings.Contains(buf.String(), `foundry_run_polls_total{status="failed"} 1`) {
		t.Errorf("output = %s", buf.String())
	}
}

func TestCollector_WithRunner(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	svc := &scriptedService{runs: []*agents.Run{
		{ID: "run_1", Status: agents.RunStatusRequiresAction, RequiredAction: &agents.RequiredAction{
			Type:      agents.RequiredActionSubmitToolOutputs,
			ToolCalls: []agents.ToolCall{{ID: "call_1", Name: "fetch_weather", Arguments: `{}`}},
		}},
		{ID: "run_1", Status: agents.RunStatusCompleted},
	}}
	registry, _ := agents.NewRegistry(agents.NewFunction("fetch_weather", "", nil,
		func(ctx context.Context, args json.RawMessage) (any, error) { return "ok", nil }))

	runner := agents.NewRunner(svc, registry,
		agents.WithPollInterval(0),
		agents.WithFunctionMiddleware(m.Middleware()),
		agents.WithRunObserver(m.ObserveRun),
	)
	if _, err := runner.Fulfill(context.Background(), "thread_1", "run_1"); err != nil {
		t.Fatalf("Fulfill: %v", err)
	}

	if n, _ := testutil.GatherAndCount(reg, "foundry_tool_invocations_total"); n != 1 {
		t.Errorf("invocation series = %d", n)
	}
	if n, _ := testutil.GatherAndCount(reg, "foundry_run_polls_total"); n != 2 {
		t.Errorf("poll series = %d", n)
	}
}

// scriptedService replays runs in order and repeats the last one.
type scriptedService struct {
	runs []*agents.Run
	next int
}

func (s *scriptedService) GetRun(ctx context.Context, threadID, runID string) (*agents.Run, error) {
	run := s.runs[min(s.next, len(s.runs)-1)]
	s.next++
	return run, nil
}

func (s *scriptedService) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []agents.ToolOutput) (*agents.Run, error) {
	return &agents.Run{ID: runID, Status: agents.RunStatusQueued}, nil
}

func (s *scriptedService) CancelRun(ctx context.Context, threadID, runID string) (*agents.Run, error) {
	return &agents.Run{ID: runID, Status: agents.RunStatusCancelled}, nil
}
