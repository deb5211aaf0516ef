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

// Package seenset implements C1: bounded-retention dedup of RawItem ids.
package seenset

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/signalradar/core/pkg/radar/kv"
	"github.com/signalradar/core/pkg/radar/types"
)

const keyPrefix = "seen:"

// Set records and queries per-item seen markers with bounded TTL.
type Set struct {
	store      kv.Store
	retention  time.Duration
	logger     logrus.FieldLogger
}

// New builds a Set backed by store, with the given retention horizon
// (default: 14 days).
func New(store kv.Store, retention time.Duration, logger logrus.FieldLogger) *Set {
	if retention <= 0 {
		retention = 14 * 24 * time.Hour
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Set{store: store, retention: retention, logger: logger}
}

func key(id string) string {
	return keyPrefix + id
}

// FilterNew returns the subset of items whose id is not present in the
// set. A backing-store read error is treated as "unseen" (fail-open).
func (s *Set) FilterNew(ctx context.Context, items []types.RawItem) ([]types.RawItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	seen := make([]bool, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i := range items {
		i := i
		g.Go(func() error {
			_, err := s.store.Get(gctx, key(items[i].ID))
			switch err {
			case nil:
				seen[i] = true
			case kv.ErrNotFound:
				seen[i] = false
			default:
				s.logger.WithError(err).WithField("item_id", items[i].ID).
					Warn("seenset: lookup failed, treating as unseen")
				seen[i] = false
			}
			return nil
		})
	}
	// errgroup.Wait only ever returns an error from a failing func; the
	// lookup goroutines above never return one, so this is unreachable
	// in practice and kept only to satisfy the errgroup contract.
	_ = g.Wait()

	out := make([]types.RawItem, 0, len(items))
	for i, item := range items {
		if !seen[i] {
			out = append(out, item)
		}
	}
	return out, nil
}

// MarkSeen writes a SeenMarker for each item, retried up to 3 times with
// exponential backoff on write failure; a final failure is logged and
// swallowed. Duplicates surviving into the next tick are tolerable.
func (s *Set) MarkSeen(ctx context.Context, items []types.RawItem) {
	now := time.Now().UnixMilli()
	for _, item := range items {
		marker := types.SeenMarker{SeenAt: now}
		payload, err := json.Marshal(marker)
		if err != nil {
			s.logger.WithError(err).WithField("item_id", item.ID).
				Error("seenset: marshal seen marker")
			continue
		}

		id := item.ID
		op := func() (struct{}, error) {
			putErr := s.store.Put(ctx, key(id), payload, s.retention)
			return struct{}{}, putErr
		}

		// WithMaxTries counts every attempt: the first write plus 3 retries.
		_, err = backoff.Retry(ctx, op,
			backoff.WithMaxTries(4),
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
		)
		if err != nil {
			s.logger.WithError(err).WithField("item_id", id).
				Warn("seenset: mark_seen failed after retries, swallowing")
		}
	}
}
