// Copyright (c) Microsoft. All rights reserved.

package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultPollInterval is the delay between two polls of a run.
const DefaultPollInterval = time.Second

// RunService is the remote side of a run as seen by the [Runner].
// The foundry package provides an implementation.
type RunService interface {
	// GetRun fetches the current state of a run.
	GetRun(ctx context.Context, threadID, runID string) (*Run, error)

	// SubmitToolOutputs answers the pending tool calls of a run.
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error)

	// CancelRun asks the service to cancel a run.
	CancelRun(ctx context.Context, threadID, runID string) (*Run, error)
}

// ToolErrorPolicy decides what the runner submits for a tool call whose
// function could not be found or failed.
type ToolErrorPolicy int

const (
	// SkipFailedCalls submits nothing for a failed call. If every call of a
	// batch fails nothing is submitted and the run stalls until the service
	// expires it.
	SkipFailedCalls ToolErrorPolicy = iota

	// SubmitErrorOutputs answers a failed call with {"error": "..."} so the
	// agent can react to the failure.
	SubmitErrorOutputs
)

func (p ToolErrorPolicy) String() string {
	switch p {
	case SkipFailedCalls:
		return "skip"
	case SubmitErrorOutputs:
		return "submit"
	}
	return fmt.Sprintf("ToolErrorPolicy(%d)", int(p))
}

// ParseToolErrorPolicy maps "skip" and "submit" to a policy.
func ParseToolErrorPolicy(s string) (ToolErrorPolicy, error) {
	switch s {
	case "", "skip":
		return SkipFailedCalls, nil
	case "submit":
		return SubmitErrorOutputs, nil
	}
	return SkipFailedCalls, fmt.Errorf("%w: unknown tool error policy %q", ErrAgent, s)
}

// Runner advances runs to a terminal state, executing the tool calls they
// request along the way. Create one with [NewRunner].
type Runner struct {
	svc            RunService
	registry       *Registry
	pollInterval   time.Duration
	errorPolicy    ToolErrorPolicy
	detailedErrors bool
	middleware     []FunctionMiddleware
	observers      []func(*Run)
	logger         *slog.Logger
}

// RunnerOption configures a [Runner] via [NewRunner].
type RunnerOption func(*Runner)

// WithPollInterval sets the delay between two polls. Zero polls without delay.
func WithPollInterval(d time.Duration) RunnerOption {
	return func(r *Runner) { r.pollInterval = d }
}

// WithToolErrorPolicy sets how failed tool calls are answered.
func WithToolErrorPolicy(p ToolErrorPolicy) RunnerOption {
	return func(r *Runner) { r.errorPolicy = p }
}

// WithDetailedErrors includes the error text in outputs submitted under
// [SubmitErrorOutputs]. When false a generic message is used.
func WithDetailedErrors(enabled bool) RunnerOption {
	return func(r *Runner) { r.detailedErrors = enabled }
}

// WithFunctionMiddleware adds [FunctionMiddleware] to the invocation pipeline.
func WithFunctionMiddleware(mws ...FunctionMiddleware) RunnerOption {
	return func(r *Runner) { r.middleware = append(r.middleware, mws...) }
}

// WithRunObserver registers a callback invoked with every polled run.
func WithRunObserver(fn func(*Run)) RunnerOption {
	return func(r *Runner) { r.observers = append(r.observers, fn) }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a Runner that polls svc and serves tool calls from registry.
func NewRunner(svc RunService, registry *Registry, opts ...RunnerOption) *Runner {
	r := &Runner{
		svc:          svc,
		registry:     registry,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry, _ = NewRegistry()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.pollInterval < 0 {
		r.pollInterval = DefaultPollInterval
	}
	return r
}

// Fulfill polls the run until it leaves the active statuses and returns its
// final state.
//
// While the run requires action, every pending tool call is dispatched to
// the registry and the collected outputs are submitted in one batch. A
// required action without tool calls cancels the run; the cancelled run is
// returned together with an error wrapping [ErrNoToolCalls]. Service errors
// are returned as they occur.
func (r *Runner) Fulfill(ctx context.Context, threadID, runID string) (*Run, error) {
	pacer := rate.NewLimiter(rate.Every(r.pollInterval), 1)
	log := r.logger.With(
		"fulfillment_id", uuid.NewString(),
		"thread_id", threadID,
		"run_id", runID,
	)

	for {
		if err := pacer.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: poll: %w", ErrExecution, err)
		}

		run, err := r.svc.GetRun(ctx, threadID, runID)
		if err != nil {
			return nil, fmt.Errorf("%w: get run: %w", ErrExecution, err)
		}
		if run == nil {
			return nil, fmt.Errorf("%w: get run: %w", ErrExecution, ErrInvalidResponse)
		}
		r.observe(run)
		log.DebugContext(ctx, "run polled", "status", run.Status)

		if !run.Status.Active() {
			return run, nil
		}
		if run.Status != RunStatusRequiresAction {
			continue
		}

		calls := run.PendingToolCalls()
		if len(calls) == 0 {
			log.ErrorContext(ctx, "run requires action without tool calls, cancelling")
			cancelled, err := r.svc.CancelRun(ctx, threadID, runID)
			if err != nil {
				return nil, fmt.Errorf("%w: cancel run: %w", ErrExecution, err)
			}
			r.observe(cancelled)
			return cancelled, ErrNoToolCalls
		}

		outputs := r.dispatch(ctx, log, calls)
		if len(outputs) == 0 {
			log.WarnContext(ctx, "no tool outputs collected, nothing submitted",
				"tool_calls", len(calls),
			)
			continue
		}

		if _, err := r.svc.SubmitToolOutputs(ctx, threadID, runID, outputs); err != nil {
			return nil, fmt.Errorf("%w: submit tool outputs: %w", ErrExecution, err)
		}
		log.DebugContext(ctx, "tool outputs submitted",
			"tool_calls", len(calls),
			"outputs", len(outputs),
		)
	}
}

// dispatch invokes each call in order and returns one output per call that
// is answered under the configured policy. Call ids repeated within the
// batch are answered once.
func (r *Runner) dispatch(ctx context.Context, log *slog.Logger, calls []ToolCall) []ToolOutput {
	handler := chainFunctionMiddleware(invokeFunction, r.middleware...)

	outputs := make([]ToolOutput, 0, len(calls))
	seen := make(map[string]bool, len(calls))
	for _, call := range calls {
		if seen[call.ID] {
			log.WarnContext(ctx, "duplicate tool call id in batch", "call_id", call.ID)
			continue
		}
		seen[call.ID] = true

		output, err := r.execute(ctx, handler, call)
		if err != nil {
			log.WarnContext(ctx, "tool call failed",
				"call_id", call.ID,
				"function", call.Name,
				"error", err,
			)
			if r.errorPolicy != SubmitErrorOutputs {
				continue
			}
			output = r.errorOutput(err)
		}
		outputs = append(outputs, ToolOutput{CallID: call.ID, Output: output})
	}
	return outputs
}

func (r *Runner) execute(ctx context.Context, handler FunctionHandler, call ToolCall) (string, error) {
	fn, ok := r.registry.Lookup(call.Name)
	if !ok {
		return "", &ToolError{
			ToolName: call.Name,
			CallID:   call.ID,
			Message:  "not registered",
			Err:      ErrUnknownFunction,
		}
	}

	result, err := invokeRecovered(ctx, handler, fn, json.RawMessage(call.Arguments))
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			return "", err
		}
		return "", &ToolError{
			ToolName: call.Name,
			CallID:   call.ID,
			Message:  err.Error(),
			Err:      fmt.Errorf("%w: %w", ErrToolExecution, err),
		}
	}

	output, err := EncodeOutput(result)
	if err != nil {
		return "", &ToolError{
			ToolName: call.Name,
			CallID:   call.ID,
			Message:  "encode result: " + err.Error(),
			Err:      ErrToolExecution,
		}
	}
	return output, nil
}

// invokeRecovered calls handler, reporting a panic as a [ToolError].
func invokeRecovered(ctx context.Context, handler FunctionHandler, fn Function, args json.RawMessage) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = &ToolError{
				ToolName: fn.Name(),
				Message:  fmt.Sprintf("panic: %v", p),
				Err:      ErrToolExecution,
			}
		}
	}()
	return handler(ctx, fn, args)
}

func (r *Runner) errorOutput(err error) string {
	msg := "error invoking function"
	if r.detailedErrors {
		msg = err.Error()
	}
	b, _ := json.Marshal(map[string]string{"error": msg})
	return string(b)
}

func (r *Runner) observe(run *Run) {
	if run == nil {
		return
	}
	for _, fn := range r.observers {
		fn(run)
	}
}

// EncodeOutput coerces a function result to the string submitted as a tool
// output. Strings pass through, raw JSON and byte slices are used as their
// text, and any other value is JSON-encoded.
func EncodeOutput(result any) (string, error) {
	switch v := result.(type) {
	case string:
		return v, nil
	case json.RawMessage:
		return string(v), nil
	case []byte:
		return string(v), nil
	}
	b, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
