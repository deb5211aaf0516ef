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

// Package metrics is the ambient Prometheus surface every tick reports
// into: tick duration, LLM call outcome, signals stored and discarded,
// digest generation time, and per-provider circuit breaker state.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "signalradar",
		Name:      "tick_duration_seconds",
		Help:      "Wall-clock duration of a scheduler tick.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tick"})

	LLMCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signalradar",
		Name:      "llm_calls_total",
		Help:      "LLM router provider call attempts by provider and outcome.",
	}, []string{"provider", "outcome"})

	SignalsStoredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signalradar",
		Name:      "signals_stored_total",
		Help:      "Signals persisted by source.",
	}, []string{"source"})

	SignalsDiscardedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signalradar",
		Name:      "signals_discarded_total",
		Help:      "Raw items processed but discarded: no provider answered, or value_score fell below the push threshold.",
	}, []string{"source"})

	ProviderBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "signalradar",
		Name:      "llm_provider_breaker_state",
		Help:      "Circuit breaker state per provider: 0=closed, 1=half-open, 2=open.",
	}, []string{"provider"})

	DigestGenerationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "signalradar",
		Name:      "digest_generation_seconds",
		Help:      "Time spent composing a digest.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"type", "generated_by"})
)
