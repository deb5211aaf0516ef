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

// Package kv defines the flat string-to-bytes store with per-key TTL
// that the seen-set (C1), signal store (C2) and digest namespace share.
package kv

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("kv: key not found")

// tracer emits spans around every Get/Put, the suspension points where a
// RedisStore call can block on the network.
var tracer trace.Tracer = otel.Tracer("signalradar/kv")

// Store is the minimal contract backing every collaborator above: a
// flat GET/PUT namespace with per-key TTL, no transactions, no CAS.
type Store interface {
	// Get returns the bytes stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes value at key; ttl <= 0 means no expiration.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
