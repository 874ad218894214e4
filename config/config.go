// Copyright (c) Microsoft. All rights reserved.

// Package config loads settings for Foundry agent runs from the environment,
// an optional .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/microsoft/foundry-agent-runs/go/agents"
	"github.com/microsoft/foundry-agent-runs/go/foundry"
)

// Config holds everything a run needs besides its tools.
type Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	APIVersion      string        `mapstructure:"api_version"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	ToolErrorPolicy string        `mapstructure:"tool_error_policy"`
	RenderWidth     int           `mapstructure:"render_width"`
	Debug           bool          `mapstructure:"debug"`
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"endpoint":          "AZURE_FOUNDRY_PROJECT_ENDPOINT",
	"api_key":           "AZURE_FOUNDRY_KEY",
	"model":             "AZURE_FOUNDRY_MODEL",
	"api_version":       "AZURE_FOUNDRY_API_VERSION",
	"poll_interval":     "POLL_INTERVAL",
	"tool_error_policy": "TOOL_ERROR_POLICY",
	"render_width":      "RENDER_WIDTH",
	"debug":             "DEBUG",
}

// Load reads .env from the working directory if present, then the YAML file
// at path if path is not empty, then the environment. Environment variables
// take precedence over the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	v.SetDefault("model", "gpt-4o")
	v.SetDefault("api_version", foundry.DefaultAPIVersion)
	v.SetDefault("poll_interval", agents.DefaultPollInterval)
	v.SetDefault("tool_error_policy", agents.SkipFailedCalls.String())
	v.SetDefault("render_width", 80)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	return &cfg, nil
}

// Validate reports missing or malformed settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, errors.New("AZURE_FOUNDRY_PROJECT_ENDPOINT is required"))
	} else if !strings.HasPrefix(c.Endpoint, "https://") && !strings.HasPrefix(c.Endpoint, "http://") {
		errs = append(errs, fmt.Errorf("endpoint %q is not an http(s) URL", c.Endpoint))
	}
	if c.Model == "" {
		errs = append(errs, errors.New("model is required"))
	}
	if c.PollInterval < 0 {
		errs = append(errs, fmt.Errorf("poll interval %s is negative", c.PollInterval))
	}
	if _, err := agents.ParseToolErrorPolicy(c.ToolErrorPolicy); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ErrorPolicy returns the parsed tool error policy.
func (c *Config) ErrorPolicy() agents.ToolErrorPolicy {
	p, _ := agents.ParseToolErrorPolicy(c.ToolErrorPolicy)
	return p
}

// ClientOptions returns the foundry options implied by the config. Callers
// add an Azure credential when APIKey is empty.
func (c *Config) ClientOptions() []foundry.Option {
	opts := []foundry.Option{foundry.WithAPIVersion(c.APIVersion)}
	if c.APIKey != "" {
		opts = append(opts, foundry.WithAPIKey(c.APIKey))
	}
	return opts
}

// RunnerOptions returns the runner options implied by the config.
func (c *Config) RunnerOptions() []agents.RunnerOption {
	return []agents.RunnerOption{
		agents.WithPollInterval(c.PollInterval),
		agents.WithToolErrorPolicy(c.ErrorPolicy()),
	}
}
