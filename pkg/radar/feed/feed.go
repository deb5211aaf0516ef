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

// Package feed defines the feed collaborator boundary. Actual per-feed
// parsers for external sites are explicitly out of scope; this package
// carries only the interface the core depends on, plus a deterministic
// in-memory double for tests.
package feed

import (
	"context"

	"github.com/signalradar/core/pkg/radar/types"
)

// Source fetches the latest candidate items from one feed. id must be
// stable for the same logical item across refetches.
type Source interface {
	FetchLatest(ctx context.Context) ([]types.RawItem, error)
}

// Static is an in-memory Source double returning a fixed slice, useful
// for specs and for local dry-runs without a network-backed feed.
type Static struct {
	Items []types.RawItem
	Err   error
}

func (s Static) FetchLatest(_ context.Context) ([]types.RawItem, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]types.RawItem, len(s.Items))
	copy(out, s.Items)
	return out, nil
}
