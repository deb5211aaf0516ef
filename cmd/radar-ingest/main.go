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

// Command radar-ingest is the external-trigger entrypoint for the
// scheduler's tick_ingest. The trigger itself (cron/HTTP) is an
// out-of-scope collaborator; this binary is invoked once per tick.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/signalradar/core/internal/config"
	"github.com/signalradar/core/internal/wiring"
	"github.com/signalradar/core/pkg/radar/feed"
	"github.com/signalradar/core/pkg/radar/scheduler"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the radar configuration file")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("radar-ingest: configuration error")
	}

	// Host platform's per-invocation CPU budget: ingest gets 30s wall-clock.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Feed adapters are external collaborators; wiring a real
	// one (HTTP polling hacker_news/product_hunt) is the operator's
	// concern, not this core's. An empty feed list here is itself a
	// configuration error the scheduler surfaces.
	feeds := []feed.Source{}

	env, err := wiring.Build(ctx, cfg, logger, feeds)
	if err != nil {
		logger.WithError(err).Fatal("radar-ingest: wiring error")
	}

	if err := scheduler.TickIngest(ctx, env); err != nil {
		logger.WithError(err).Error("radar-ingest: tick failed")
		os.Exit(1)
	}
}
