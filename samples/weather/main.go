// Copyright (c) Microsoft. All rights reserved.

// Command foundry-weather creates a Foundry agent with local weather
// functions, asks it a question and answers the tool calls of the run.
//
// Usage:
//
//	export AZURE_FOUNDRY_PROJECT_ENDPOINT=https://<resource>.services.ai.azure.com/api/projects/<project>
//	export AZURE_FOUNDRY_KEY=<your-key>        # optional, az login is used otherwise
//	export AZURE_FOUNDRY_MODEL=gpt-4o          # optional, defaults to gpt-4o
//	go run . run --prompt "What's the weather in Stockholm?"
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/microsoft/foundry-agent-runs/go/agents"
	"github.com/microsoft/foundry-agent-runs/go/config"
	"github.com/microsoft/foundry-agent-runs/go/foundry"
	"github.com/microsoft/foundry-agent-runs/go/metrics"
	"github.com/microsoft/foundry-agent-runs/go/render"
)

const instructions = "You are a weather bot. Use the provided functions to answer questions about the weather and the network. Keep responses concise."

var configPath string

var rootCmd = &cobra.Command{
	Use:           "foundry-weather",
	Short:         "Run a Foundry agent that calls local weather functions",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ask the agent a question and print the thread",
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, _ := cmd.Flags().GetString("prompt")
		keep, _ := cmd.Flags().GetBool("keep")
		showMetrics, _ := cmd.Flags().GetBool("metrics")
		return runPrompt(cmd.Context(), prompt, keep, showMetrics)
	},
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the local functions and their parameter schemas",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := newTools()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, def := range registry.Definitions() {
			var params bytes.Buffer
			if err := json.Indent(&params, def.Parameters, "  ", "  "); err != nil {
				return fmt.Errorf("format %s schema: %w", def.Name, err)
			}
			fmt.Fprintf(out, "%s\n  %s\n  %s\n\n", def.Name, def.Description, params.String())
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")

	runCmd.Flags().String("prompt", "What's the weather in Stockholm?", "user message sent to the agent")
	runCmd.Flags().Bool("keep", false, "keep the agent and thread after the run")
	runCmd.Flags().Bool("metrics", false, "print Prometheus metrics to stderr when done")

	rootCmd.AddCommand(runCmd, toolsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runPrompt(ctx context.Context, prompt string, keep, showMetrics bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	registry, err := newTools()
	if err != nil {
		return err
	}

	agent, err := client.CreateAgent(ctx, foundry.AgentDefinition{
		Model:        cfg.Model,
		Name:         "weather-agent",
		Instructions: instructions,
		Functions:    registry.Definitions(),
	})
	if err != nil {
		return fmt.Errorf("create agent: %w", err)
	}
	logger.Info("agent created", "agent_id", agent.ID)

	threadID, err := client.CreateThread(ctx)
	if err != nil {
		return fmt.Errorf("create thread: %w", err)
	}
	logger.Info("thread created", "thread_id", threadID)

	if !keep {
		defer cleanup(client, logger, agent.ID, threadID)
	}

	if _, err := client.CreateMessage(ctx, threadID, agents.RoleUser, prompt); err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	run, err := client.CreateRun(ctx, threadID, agent.ID)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	collector := metrics.New(prometheus.NewRegistry())
	opts := append(cfg.RunnerOptions(),
		agents.WithLogger(logger),
		agents.WithFunctionMiddleware(agents.LoggingMiddleware(logger), collector.Middleware()),
		agents.WithRunObserver(collector.ObserveRun),
	)
	runner := agents.NewRunner(client, registry, opts...)

	final, err := runner.Fulfill(ctx, threadID, run.ID)
	if err != nil && !errors.Is(err, agents.ErrNoToolCalls) {
		return err
	}
	logger.Info("run finished", "status", final.Status, "total_tokens", final.Usage.TotalTokens)
	if final.Status == agents.RunStatusFailed && final.LastError != nil {
		logger.Error("run failed", "error", final.LastError)
	}

	msgs, err := client.ListMessages(ctx, threadID)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	if err := render.Thread(os.Stdout, msgs, render.WithWidth(cfg.RenderWidth), render.WithIcons(true)); err != nil {
		return err
	}

	if showMetrics {
		return collector.WriteText(os.Stderr)
	}
	return nil
}

// newClient authenticates with the configured key or, without one, with
// DefaultAzureCredential.
func newClient(cfg *config.Config, logger *slog.Logger) (*foundry.Client, error) {
	opts := cfg.ClientOptions()
	if cfg.APIKey == "" {
		logger.Info("using Azure AD authentication (DefaultAzureCredential)")
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("create Azure credential: %w", err)
		}
		opts = append(opts, foundry.WithAzureCredential(cred))
	}
	return foundry.New(cfg.Endpoint, opts...), nil
}

// cleanup runs on its own context so an interrupted run still deletes its
// resources.
func cleanup(client *foundry.Client, logger *slog.Logger, agentID, threadID string) {
	ctx := context.Background()
	if err := client.DeleteThread(ctx, threadID); err != nil {
		logger.Warn("delete thread", "thread_id", threadID, "error", err)
	}
	if err := client.DeleteAgent(ctx, agentID); err != nil {
		logger.Warn("delete agent", "agent_id", agentID, "error", err)
	}
}
