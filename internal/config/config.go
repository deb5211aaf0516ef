/*
Copyright 2025 Jordi Gil.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads the radar's configuration from a YAML file with
// nested per-concern sections, validated via struct tags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ProviderConfig is one entry in llm.providers.
type ProviderConfig struct {
	Name   string `yaml:"name" validate:"required"`
	APIKey string `yaml:"api_key"`
	APIURL string `yaml:"api_url"`
	Model  string `yaml:"model" validate:"required"`
	Region string `yaml:"region"` // only meaningful for bedrock-style providers
}

// Available reports whether this provider has a configured API key.
// Load requires at least one available provider; wiring also admits a
// provider without a key when it sets Region (AWS credentials).
func (p ProviderConfig) Available() bool {
	return p.APIKey != ""
}

// LLMConfig groups every LLM-router configuration option.
type LLMConfig struct {
	Providers            []ProviderConfig `yaml:"providers" validate:"required,dive"`
	TimeoutSummarizeMS   int              `yaml:"timeout_summarize_ms"`
	TimeoutDailyMS       int              `yaml:"timeout_daily_ms"`
	TimeoutWeeklyMS      int              `yaml:"timeout_weekly_ms"`
	DailyEnabled         bool             `yaml:"daily_enabled"`
	DailyMaxSignalsForLLM int             `yaml:"daily_max_signals_for_llm"`
	PromptVersion        string           `yaml:"prompt_version"`
}

func (c LLMConfig) SummarizeTimeout() time.Duration {
	return durationOrDefault(c.TimeoutSummarizeMS, 30_000)
}

func (c LLMConfig) DailyTimeout() time.Duration {
	return durationOrDefault(c.TimeoutDailyMS, 120_000)
}

func (c LLMConfig) WeeklyTimeout() time.Duration {
	return durationOrDefault(c.TimeoutWeeklyMS, 30_000)
}

func durationOrDefault(ms int, fallbackMS int) time.Duration {
	if ms <= 0 {
		ms = fallbackMS
	}
	return time.Duration(ms) * time.Millisecond
}

// RedisConfig configures the KV store's backing Redis connection.
type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"required"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SlackConfig configures the chat collaborator's slack adapter.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// Config is the root configuration: one nested section per concern
// (redis, llm, slack) plus the radar's own top-level tunables.
type Config struct {
	Redis             RedisConfig `yaml:"redis" validate:"required"`
	LLM               LLMConfig   `yaml:"llm" validate:"required"`
	Slack             SlackConfig `yaml:"slack"`
	PushThreshold     int         `yaml:"push_threshold"`
	SeenRetentionDays int         `yaml:"seen_retention_days"`
}

// SeenRetention returns the configured retention horizon as a Duration,
// defaulting to 14 days.
func (c Config) SeenRetention() time.Duration {
	days := c.SeenRetentionDays
	if days <= 0 {
		days = 14
	}
	return time.Duration(days) * 24 * time.Hour
}

// PushThresholdOrDefault returns PushThreshold, defaulting to 3 and
// clamped to [1,5].
func (c Config) PushThresholdOrDefault() int {
	t := c.PushThreshold
	if t <= 0 {
		t = 3
	}
	if t > 5 {
		t = 5
	}
	return t
}

var validate = validator.New()

// Load reads and validates a YAML config file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	availableProviders := 0
	for _, p := range cfg.LLM.Providers {
		if p.Available() {
			availableProviders++
		}
	}
	if availableProviders == 0 {
		return nil, fmt.Errorf("config: no LLM provider has an API key configured")
	}

	return &cfg, nil
}
