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

// Package wiring assembles a scheduler.Env from a loaded Config. It is
// shared by the three cmd/radar-* binaries so each stays a thin
// entrypoint.
package wiring

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/signalradar/core/internal/config"
	"github.com/signalradar/core/pkg/radar/chat"
	"github.com/signalradar/core/pkg/radar/digest"
	"github.com/signalradar/core/pkg/radar/feed"
	"github.com/signalradar/core/pkg/radar/kv"
	"github.com/signalradar/core/pkg/radar/llmrouter"
	"github.com/signalradar/core/pkg/radar/processor"
	"github.com/signalradar/core/pkg/radar/scheduler"
	"github.com/signalradar/core/pkg/radar/seenset"
	"github.com/signalradar/core/pkg/radar/signalstore"
)

// Build assembles every component from cfg. feeds is supplied by the
// caller since the core treats feed adapters as external collaborators
// — the binaries decide which Source implementations to wire.
func Build(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger, feeds []feed.Source) (*scheduler.Env, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := kv.NewRedisStore(redisClient)

	providers, err := buildProviders(ctx, cfg.LLM.Providers)
	if err != nil {
		return nil, fmt.Errorf("wiring: build llm providers: %w", err)
	}
	router := llmrouter.New("1.0.0", logger, providers...)

	signalStore := signalstore.New(store, logger)
	seenSet := seenset.New(store, cfg.SeenRetention(), logger)
	proc := processor.New(router, signalStore, cfg.PushThresholdOrDefault(), cfg.LLM.SummarizeTimeout(), logger)
	composer := digest.New(signalStore, router, digest.Config{
		LLMEnabled:       cfg.LLM.DailyEnabled,
		MaxSignalsForLLM: cfg.LLM.DailyMaxSignalsForLLM,
		PromptVersion:    cfg.LLM.PromptVersion,
		DailyTimeout:     cfg.LLM.DailyTimeout(),
		WeeklyTimeout:    cfg.LLM.WeeklyTimeout(),
	}, logger)

	var sender chat.Sender
	if cfg.Slack.BotToken != "" {
		sender = chat.NewSlackSender(cfg.Slack.BotToken, cfg.Slack.ChannelID)
	}

	return &scheduler.Env{
		Feeds:     feeds,
		SeenSet:   seenSet,
		Processor: proc,
		Composer:  composer,
		Chat:      sender,
		Logger:    logger,
	}, nil
}

// buildProviders constructs the ordered provider list, skipping any
// provider without a configured API key. A bedrock-style
// provider (no API key, AWS-credential-based) opts in via a non-empty
// Region instead.
func buildProviders(ctx context.Context, entries []config.ProviderConfig) ([]llmrouter.Provider, error) {
	var providers []llmrouter.Provider
	for _, p := range entries {
		switch {
		case p.Available():
			providers = append(providers, llmrouter.NewAnthropicProvider(p.Name, p.APIKey, p.Model))
		case p.Region != "":
			awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(p.Region))
			if err != nil {
				return nil, fmt.Errorf("load aws config for provider %s: %w", p.Name, err)
			}
			providers = append(providers, llmrouter.NewBedrockProvider(p.Name, awsCfg, p.Model))
		default:
			// Neither an API key nor a region: unavailable, skipped silently.
		}
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("no provider has credentials configured")
	}
	return providers, nil
}
