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

package kv

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by components that want a
// deterministic fake without a real Redis connection (e.g. unit specs
// that don't need miniredis's wire-protocol fidelity).
type MemoryStore struct {
	mu      sync.Mutex
	values  map[string][]byte
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:  make(map[string][]byte),
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	_, span := tracer.Start(ctx, "kv.MemoryStore.Get")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if exp, ok := s.expires[key]; ok && s.now().After(exp) {
		delete(s.values, key)
		delete(s.expires, key)
		return nil, ErrNotFound
	}
	v, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, span := tracer.Start(ctx, "kv.MemoryStore.Put")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	s.values[key] = cp
	if ttl > 0 {
		s.expires[key] = s.now().Add(ttl)
	} else {
		delete(s.expires, key)
	}
	return nil
}
