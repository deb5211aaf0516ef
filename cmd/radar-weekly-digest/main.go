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

// Command radar-weekly-digest is the external-trigger entrypoint for
// C7's tick_weekly_digest.
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
		logger.WithError(err).Fatal("radar-weekly-digest: configuration error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	env, err := wiring.Build(ctx, cfg, logger, []feed.Source{})
	if err != nil {
		logger.WithError(err).Fatal("radar-weekly-digest: wiring error")
	}

	if err := scheduler.TickWeeklyDigest(ctx, env); err != nil {
		logger.WithError(err).Error("radar-weekly-digest: tick failed")
		os.Exit(1)
	}
}
