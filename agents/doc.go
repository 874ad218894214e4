// Copyright (c) Microsoft. All rights reserved.

// Package agents provides the caller-side pieces needed to drive Azure AI
// Foundry agent runs: the run and tool call types, a registry of local
// functions, and the [Runner] that fulfills tool calls until a run reaches
// a terminal state.
//
// # Quick Start
//
// Register local functions and drive a run created with a service client
// (e.g., from the foundry package):
//
//	weather := agents.NewTypedFunction("fetch_weather", "Get the weather for a city",
//	    func(ctx context.Context, args struct {
//	        Location string `json:"location" jsonschema:"description=City name,required"`
//	    }) (any, error) {
//	        return map[string]string{"weather": "Snowy, -5°C"}, nil
//	    },
//	)
//
//	registry, err := agents.NewRegistry(weather)
//	runner := agents.NewRunner(client, registry,
//	    agents.WithPollInterval(time.Second),
//	)
//	run, err := runner.Fulfill(ctx, threadID, runID)
//
// # Run lifecycle
//
// A run moves queued → in_progress → requires_action → in_progress → one of
// completed, failed, cancelled, expired. The runner polls while the run is
// [RunStatus.Active]. In requires_action it invokes every pending tool call
// found in the registry and submits the outputs in a single batch.
//
// # Middleware
//
// Function invocations pass through [FunctionMiddleware], first = outermost:
//
//	runner := agents.NewRunner(client, registry,
//	    agents.WithFunctionMiddleware(agents.LoggingMiddleware(logger)),
//	)
package agents
