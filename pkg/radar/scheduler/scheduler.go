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

// Package scheduler implements C7: three stateless, idempotent entry
// points invoked by an external trigger collaborator.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/signalradar/core/pkg/metrics"
	"github.com/signalradar/core/pkg/radar/chat"
	"github.com/signalradar/core/pkg/radar/digest"
	"github.com/signalradar/core/pkg/radar/feed"
	"github.com/signalradar/core/pkg/radar/processor"
	"github.com/signalradar/core/pkg/radar/seenset"
)

// Env bundles every collaborator and component a tick needs. It is
// built once per process invocation and passed into the tick functions;
// the core holds no state between ticks.
type Env struct {
	Feeds     []feed.Source
	SeenSet   *seenset.Set
	Processor *processor.Processor
	Composer  *digest.Composer
	Chat      chat.Sender
	Logger    logrus.FieldLogger
}

func (e *Env) logger() logrus.FieldLogger {
	if e.Logger != nil {
		return e.Logger
	}
	return logrus.StandardLogger()
}

// TickIngest fetches raw items from every configured feed, filters
// already-seen ids, hands survivors to the signal processor, then marks
// every item accepted into the pipeline as seen.
func TickIngest(ctx context.Context, env *Env) error {
	tickID := uuid.NewString()
	log := env.logger().WithField("tick", "ingest").WithField("tick_id", tickID)
	start := time.Now()
	defer func() {
		metrics.TickDuration.WithLabelValues("ingest").Observe(time.Since(start).Seconds())
	}()

	if len(env.Feeds) == 0 {
		return fmt.Errorf("scheduler: no feed configured") // configuration error, not a transient failure
	}

	for _, source := range env.Feeds {
		items, err := source.FetchLatest(ctx)
		if err != nil {
			log.WithError(err).Warn("scheduler: feed fetch failed, skipping this feed this tick")
			continue
		}

		newItems, err := env.SeenSet.FilterNew(ctx, items)
		if err != nil {
			log.WithError(err).Warn("scheduler: seen-set filter failed, treating all items as new")
			newItems = items
		}
		if len(newItems) == 0 {
			continue
		}

		accepted := env.Processor.Run(ctx, newItems)
		env.SeenSet.MarkSeen(ctx, accepted)
	}

	return nil
}

// TickDailyDigest invokes the daily composer and hands messages to the
// chat collaborator.
func TickDailyDigest(ctx context.Context, env *Env) error {
	return runDigestTick(ctx, env, "daily", env.Composer.Daily)
}

// TickWeeklyDigest invokes the weekly composer and hands messages to the
// chat collaborator.
func TickWeeklyDigest(ctx context.Context, env *Env) error {
	return runDigestTick(ctx, env, "weekly", env.Composer.Weekly)
}

func runDigestTick(ctx context.Context, env *Env, kind string, compose func(context.Context) (digest.Result, error)) error {
	log := env.logger().WithField("tick", kind)
	start := time.Now()
	defer func() {
		metrics.TickDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	result, err := compose(ctx)
	if err != nil {
		return fmt.Errorf("scheduler: compose %s digest: %w", kind, err)
	}

	generatedBy := "none"
	if result.Record != nil {
		generatedBy = result.Record.GeneratedBy
	}
	metrics.DigestGenerationSeconds.WithLabelValues(kind, generatedBy).Observe(time.Since(start).Seconds())

	if env.Chat == nil {
		log.Warn("scheduler: no chat collaborator configured, messages not delivered")
		return nil
	}
	if err := env.Chat.Send(ctx, result.Messages); err != nil {
		return fmt.Errorf("scheduler: deliver %s digest: %w", kind, err)
	}
	return nil
}
