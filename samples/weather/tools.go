// Copyright (c) Microsoft. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/microsoft/foundry-agent-runs/go/agents"
)

// forecasts is the simulated weather service.
var forecasts = map[string]string{
	"stockholm": "Snowy, -5°C",
	"oslo":      "Rainy, 2°C",
	"seattle":   "Cloudy, 9°C",
	"london":    "Foggy, 7°C",
	"new york":  "Sunny, 12°C",
}

// weatherArgs are the arguments of fetch_weather.
type weatherArgs struct {
	Location string `json:"location" jsonschema:"description=City name,required"`
}

// newTools returns the registry of local functions the agent may call.
func newTools() (*agents.Registry, error) {
	return agents.NewRegistry(fetchWeather(), networkStatus())
}

func fetchWeather() agents.Function {
	return agents.NewTypedFunction("fetch_weather",
		"Fetch the current weather for a location.",
		func(ctx context.Context, args weatherArgs) (any, error) {
			weather, ok := forecasts[strings.ToLower(strings.TrimSpace(args.Location))]
			if !ok {
				weather = "Weather data not available for this location."
			}
			return map[string]string{"weather": weather}, nil
		},
	)
}

func networkStatus() agents.Function {
	return agents.NewFunction("get_network_status",
		"Report the status of the local network link.",
		json.RawMessage(`{"type":"object","properties":{},"required":[]}`),
		func(ctx context.Context, args json.RawMessage) (any, error) {
			return map[string]any{
				"connected":  true,
				"latency_ms": 23,
				"interface":  "eth0",
			}, nil
		},
	)
}
