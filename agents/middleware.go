// Copyright (c) Microsoft. All rights reserved.

package agents

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// FunctionHandler is the function signature for invoking a local function.
type FunctionHandler func(ctx context.Context, fn Function, args json.RawMessage) (any, error)

// FunctionMiddleware wraps a [FunctionHandler] to add cross-cutting behavior.
// Middleware should call next to continue the chain, or return early to
// short-circuit.
type FunctionMiddleware func(next FunctionHandler) FunctionHandler

// chainFunctionMiddleware applies middleware in order (first in list = outermost wrapper).
func chainFunctionMiddleware(handler FunctionHandler, mws ...FunctionMiddleware) FunctionHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}

func invokeFunction(ctx context.Context, fn Function, args json.RawMessage) (any, error) {
	return fn.Invoke(ctx, args)
}

// LoggingMiddleware returns a [FunctionMiddleware] that logs function
// invocations using slog.
func LoggingMiddleware(logger *slog.Logger) FunctionMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next FunctionHandler) FunctionHandler {
		return func(ctx context.Context, fn Function, args json.RawMessage) (any, error) {
			start := time.Now()
			logger.InfoContext(ctx, "function call started",
				"function", fn.Name(),
				"args_bytes", len(args),
			)

			result, err := next(ctx, fn, args)

			duration := time.Since(start)
			if err != nil {
				logger.ErrorContext(ctx, "function call failed",
					"function", fn.Name(),
					"duration", duration,
					"error", err,
				)
				return nil, err
			}

			logger.InfoContext(ctx, "function call completed",
				"function", fn.Name(),
				"duration", duration,
			)
			return result, nil
		}
	}
}
