// Copyright (c) Microsoft. All rights reserved.

// Package metrics exposes Prometheus metrics for tool invocations and run
// polling.
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//	runner := agents.NewRunner(client, registry,
//	    agents.WithFunctionMiddleware(m.Middleware()),
//	    agents.WithRunObserver(m.ObserveRun),
//	)
package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/microsoft/foundry-agent-runs/go/agents"
)

// Invocation outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Collector records tool and run metrics. Use [New] to create one.
type Collector struct {
	toolInvocations *prometheus.CounterVec
	toolDuration    *prometheus.HistogramVec
	runPolls        *prometheus.CounterVec
	runTokens       *prometheus.CounterVec
	gatherer        prometheus.Gatherer
}

// New creates a Collector and registers its metrics with reg. When reg is nil
// a private registry is used.
func New(reg prometheus.Registerer) *Collector {
	var gatherer prometheus.Gatherer
	if reg == nil {
		r := prometheus.NewRegistry()
		reg, gatherer = r, r
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{
		toolInvocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foundry_tool_invocations_total",
				Help: "Tool calls executed, by function and outcome.",
			},
			[]string{"function", "outcome"},
		),
		toolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "foundry_tool_duration_seconds",
				Help:    "Tool call execution time in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"function"},
		),
		runPolls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foundry_run_polls_total",
				Help: "Run states observed while polling, by status.",
			},
			[]string{"status"},
		),
		runTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foundry_run_tokens_total",
				Help: "Tokens reported by finished runs, by direction.",
			},
			[]string{"direction"},
		),
		gatherer: gatherer,
	}
	reg.MustRegister(c.toolInvocations, c.toolDuration, c.runPolls, c.runTokens)
	return c
}

// Middleware returns a function middleware that counts and times every
// invocation.
func (c *Collector) Middleware() agents.FunctionMiddleware {
	return func(next agents.FunctionHandler) agents.FunctionHandler {
		return func(ctx context.Context, fn agents.Function, args json.RawMessage) (any, error) {
			start := time.Now()
			result, err := next(ctx, fn, args)
			c.toolDuration.WithLabelValues(fn.Name()).Observe(time.Since(start).Seconds())

			outcome := OutcomeSuccess
			if err != nil {
				outcome = OutcomeError
			}
			c.toolInvocations.WithLabelValues(fn.Name(), outcome).Inc()
			return result, err
		}
	}
}

// ObserveRun counts a polled run state. Token usage is added once the run
// leaves the active states.
func (c *Collector) ObserveRun(run *agents.Run) {
	c.runPolls.WithLabelValues(string(run.Status)).Inc()
	if run.Status.Active() {
		return
	}
	if run.Usage.InputTokens > 0 {
		c.runTokens.WithLabelValues("input").Add(float64(run.Usage.InputTokens))
	}
	if run.Usage.OutputTokens > 0 {
		c.runTokens.WithLabelValues("output").Add(float64(run.Usage.OutputTokens))
	}
}

// WriteText writes the gathered metrics in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	if c.gatherer == nil {
		return errors.New("metrics: registerer is not a gatherer")
	}
	families, err := c.gatherer.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
