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

// Package signalstore implements C2: dual daily/weekly-indexed signal
// persistence against the flat KV namespace.
package signalstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/signalradar/core/pkg/metrics"
	"github.com/signalradar/core/pkg/radar/kv"
	"github.com/signalradar/core/pkg/radar/scoring"
	"github.com/signalradar/core/pkg/radar/signalstore/isoweek"
	"github.com/signalradar/core/pkg/radar/types"
)

const (
	signalTTL = 90 * 24 * time.Hour
	indexTTL  = 90 * 24 * time.Hour
	digestTTL = 365 * 24 * time.Hour
)

// Store persists Signal records and maintains the daily/weekly indexes
// of signal ids over them.
type Store struct {
	kv     kv.Store
	logger logrus.FieldLogger
	now    func() time.Time
}

// New builds a Store backed by kv.
func New(store kv.Store, logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{kv: store, logger: logger, now: time.Now}
}

func signalKey(date, signalID string) string {
	return fmt.Sprintf("signal:%s:%s", date, signalID)
}

func dailyIndexKey(date string) string {
	return fmt.Sprintf("index:daily:%s", date)
}

func weeklyIndexKey(week string) string {
	return fmt.Sprintf("index:weekly:%s", week)
}

// DigestKey renders the digest namespace key used by the digest
// composer (C6); exported so C6 can share the exact same layout without
// duplicating the format string.
func DigestKey(kind types.DigestType, dateOrWeek string) string {
	return fmt.Sprintf("digest:%s:%s", kind, dateOrWeek)
}

// DigestTTL is the 365-day retention for digest records.
const DigestTTL = digestTTL

// Store writes signal, appending its id to the date's daily index and
// the date's ISO-week's weekly index. Index updates are read-modify-
// write and idempotent: duplicate inserts are no-ops.
func (s *Store) Store(ctx context.Context, signal types.Signal) error {
	if err := scoring.AssertValueScore(signal.ScoreBreakdown, signal.ValueScore); err != nil {
		return fmt.Errorf("signalstore: %w", err)
	}

	now := s.now()
	dateStr := now.UTC().Format("2006-01-02")
	weekStr := isoweek.Format(now)

	signal.StoredAt = now
	payload, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("signalstore: marshal signal: %w", err)
	}

	if err := s.kv.Put(ctx, signalKey(dateStr, signal.ID), payload, signalTTL); err != nil {
		return fmt.Errorf("signalstore: put signal: %w", err)
	}
	if err := s.appendIndex(ctx, dailyIndexKey(dateStr), signal.ID); err != nil {
		return fmt.Errorf("signalstore: append daily index: %w", err)
	}
	if err := s.appendIndex(ctx, weeklyIndexKey(weekStr), signal.ID); err != nil {
		return fmt.Errorf("signalstore: append weekly index: %w", err)
	}
	metrics.SignalsStoredTotal.WithLabelValues(string(signal.Source)).Inc()
	return nil
}

// appendIndex performs the read-modify-write append with duplicate
// suppression: an id already present in the index is a no-op.
func (s *Store) appendIndex(ctx context.Context, key, signalID string) error {
	ids, err := s.readIndex(ctx, key)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == signalID {
			return nil // already present, idempotent no-op
		}
	}
	ids = append(ids, signalID)
	payload, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	return s.kv.Put(ctx, key, payload, indexTTL)
}

func (s *Store) readIndex(ctx context.Context, key string) ([]string, error) {
	raw, err := s.kv.Get(ctx, key)
	if err == kv.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get index %q: %w", key, err)
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("unmarshal index %q: %w", key, err)
	}
	return ids, nil
}

func (s *Store) writeIndex(ctx context.Context, key string, ids []string) error {
	payload, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	return s.kv.Put(ctx, key, payload, indexTTL)
}

// resolve reads the signal for one id under the given date, returning
// (signal, ok). A missing or invariant-violating payload is not an
// error: the caller skips it and self-heals the index.
func (s *Store) resolve(ctx context.Context, date, signalID string) (types.Signal, bool) {
	raw, err := s.kv.Get(ctx, signalKey(date, signalID))
	if err != nil {
		return types.Signal{}, false
	}
	var signal types.Signal
	if err := json.Unmarshal(raw, &signal); err != nil {
		s.logger.WithError(err).WithField("signal_id", signalID).
			Warn("signalstore: dropping signal with unparsable payload")
		return types.Signal{}, false
	}
	if err := scoring.AssertValueScore(signal.ScoreBreakdown, signal.ValueScore); err != nil {
		s.logger.WithError(err).WithField("signal_id", signalID).
			Warn("signalstore: dropping signal failing value_score invariant")
		return types.Signal{}, false
	}
	return signal, true
}

func sortSignals(signals []types.Signal) {
	sort.SliceStable(signals, func(i, j int) bool {
		if signals[i].ValueScore != signals[j].ValueScore {
			return signals[i].ValueScore > signals[j].ValueScore
		}
		return signals[i].DetectedAt.After(signals[j].DetectedAt)
	})
}

// ListByDate returns the signals indexed under date, sorted by
// value_score desc then detected_at desc. Orphan index entries (payload
// missing, TTL still open) are self-healed by removing them from the
// index on read.
func (s *Store) ListByDate(ctx context.Context, date string) ([]types.Signal, error) {
	ids, err := s.readIndex(ctx, dailyIndexKey(date))
	if err != nil {
		return nil, err
	}

	out := make([]types.Signal, 0, len(ids))
	live := make([]string, 0, len(ids))
	for _, id := range ids {
		signal, ok := s.resolve(ctx, date, id)
		if !ok {
			continue // orphan or invariant violation: drop silently
		}
		out = append(out, signal)
		live = append(live, id)
	}
	if len(live) != len(ids) {
		if err := s.writeIndex(ctx, dailyIndexKey(date), live); err != nil {
			s.logger.WithError(err).WithField("date", date).
				Warn("signalstore: failed to self-heal orphaned daily index entries")
		}
	}

	sortSignals(out)
	return out, nil
}

// ListByWeek resolves the weekly index by iterating the 7 UTC dates of
// that ISO week, reading each candidate id at most once.
func (s *Store) ListByWeek(ctx context.Context, week string) ([]types.Signal, error) {
	ids, err := s.readIndex(ctx, weeklyIndexKey(week))
	if err != nil {
		return nil, err
	}

	var year, w int
	if _, err := fmt.Sscanf(week, "%d-W%d", &year, &w); err != nil {
		return nil, fmt.Errorf("signalstore: malformed week %q: %w", week, err)
	}
	dates := isoweek.DateStrings(year, w)

	visited := make(map[string]bool, len(ids))
	out := make([]types.Signal, 0, len(ids))
	live := make([]string, 0, len(ids))
	for _, id := range ids {
		if visited[id] {
			continue
		}
		var found bool
		for _, date := range dates {
			if signal, ok := s.resolve(ctx, date, id); ok {
				out = append(out, signal)
				found = true
				break
			}
		}
		visited[id] = true
		if found {
			live = append(live, id)
		}
	}
	if len(live) != len(ids) {
		if err := s.writeIndex(ctx, weeklyIndexKey(week), live); err != nil {
			s.logger.WithError(err).WithField("week", week).
				Warn("signalstore: failed to self-heal orphaned weekly index entries")
		}
	}

	sortSignals(out)
	return out, nil
}

// PutDigest writes a DigestRecord under its namespace key with the
// 365-day digest TTL.
func (s *Store) PutDigest(ctx context.Context, record types.DigestRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("signalstore: marshal digest: %w", err)
	}
	key := DigestKey(record.Type, record.Date)
	if err := s.kv.Put(ctx, key, payload, digestTTL); err != nil {
		return fmt.Errorf("signalstore: put digest: %w", err)
	}
	return nil
}
