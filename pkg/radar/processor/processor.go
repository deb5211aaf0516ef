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

// Package processor implements C5: per-item summarize+score via the LLM
// router and scoring calibrator, filtered by threshold and handed to the
// signal store.
package processor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/signalradar/core/pkg/metrics"
	"github.com/signalradar/core/pkg/radar/llmrouter"
	"github.com/signalradar/core/pkg/radar/scoring"
	"github.com/signalradar/core/pkg/radar/signalstore"
	"github.com/signalradar/core/pkg/radar/types"
)

// maxConcurrency bounds the per-item worker pool to preserve ordering
// semantics at the store.
const maxConcurrency = 4

// llmScoreResponse is the strict-JSON shape the summarize prompt
// contract requires.
type llmScoreResponse struct {
	SummaryZH         string                `json:"summary_zh"`
	ScoreBreakdown    types.ScoreBreakdown  `json:"score_breakdown"`
	ScoreConfidence   float64               `json:"score_confidence"`
	ScoreReasoning    string                `json:"score_reasoning"`
	UncertaintyReason types.UncertaintyReason `json:"uncertainty_reason"`
	KeyPoints         []string              `json:"key_points"`
	TargetAudience    string                `json:"target_audience"`
}

// Processor is C5.
type Processor struct {
	router        *llmrouter.Router
	store         *signalstore.Store
	pushThreshold int
	timeout       time.Duration
	logger        logrus.FieldLogger
}

// New builds a Processor. pushThreshold is the configured minimum
// value_score (default 3); timeout is the summarize call budget
// (default 30s).
func New(router *llmrouter.Router, store *signalstore.Store, pushThreshold int, timeout time.Duration, logger logrus.FieldLogger) *Processor {
	if pushThreshold <= 0 {
		pushThreshold = 3
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Processor{router: router, store: store, pushThreshold: pushThreshold, timeout: timeout, logger: logger}
}

// Run processes every item, storing those whose value_score clears the
// push threshold. It returns every item handed in — these should be
// seen-marked whether or not they cleared threshold — and never aborts
// on a single item's failure; errors are isolated per item.
func (p *Processor) Run(ctx context.Context, items []types.RawItem) []types.RawItem {
	accepted := make([]types.RawItem, len(items))
	copy(accepted, items)

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxConcurrency)

	for _, item := range items {
		item := item
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			p.processOne(gctx, item)
			return nil
		})
	}
	_ = g.Wait()

	return accepted
}

func (p *Processor) processOne(ctx context.Context, item types.RawItem) {
	log := p.logger.WithField("item_id", item.ID).WithField("source", item.Source)

	body := p.router.Call(ctx, summarizeSystemPrompt, summarizeUserPrompt(item.Title, string(item.Source), item.Link), llmrouter.CallOptions{
		ResponseFormat: llmrouter.FormatJSON,
		Timeout:        p.timeout,
		MaxTokens:      1024,
	})
	if body == "" {
		metrics.SignalsDiscardedTotal.WithLabelValues(string(item.Source)).Inc()
		log.Warn("processor: all providers failed, skipping item")
		return
	}

	resp, usedFallback := parseScoreResponse(body)
	breakdown := scoring.NormalizeBreakdown(resp.ScoreBreakdown)
	valueScore := scoring.WeightedScore(breakdown)
	confidence := scoring.ClampConfidence(resp.ScoreConfidence)
	if usedFallback {
		confidence = scoring.FallbackConfidence
	}

	if valueScore < p.pushThreshold {
		metrics.SignalsDiscardedTotal.WithLabelValues(string(item.Source)).Inc()
		log.WithField("value_score", valueScore).Debug("processor: below push threshold, discarding")
		return
	}

	uncertaintyReason := resp.UncertaintyReason
	if scoring.RequiresUncertaintyReason(confidence) && uncertaintyReason == "" {
		uncertaintyReason = scoring.ClassifyUncertainty(confidence, usedFallback, usedFallback)
	}
	if !scoring.RequiresUncertaintyReason(confidence) {
		uncertaintyReason = ""
	}

	signal := types.Signal{
		ID:                string(item.Source) + "_" + item.ID,
		Source:            item.Source,
		Title:             item.Title,
		Link:              item.Link,
		SummaryZH:         resp.SummaryZH,
		ValueScore:        valueScore,
		ScoreBreakdown:    breakdown,
		ScoreConfidence:   confidence,
		ScoreReasoning:    scoring.TruncateReasoning(resp.ScoreReasoning),
		UncertaintyReason: uncertaintyReason,
		DetectedAt:        item.DetectedAt,
		KeyPoints:         capKeyPoints(resp.KeyPoints),
		TargetAudience:    resp.TargetAudience,
		FeedbackCount:     0,
	}

	if err := p.store.Store(ctx, signal); err != nil {
		log.WithError(err).Error("processor: failed to store signal")
	}
}

func capKeyPoints(points []string) []string {
	if len(points) > 3 {
		return points[:3]
	}
	return points
}

// parseScoreResponse parses body (already possibly fenced) into the
// strict schema; on malformed JSON it returns the calibrator's fallback
// signal and usedFallback=true.
func parseScoreResponse(body string) (llmScoreResponse, bool) {
	stripped := llmrouter.StripCodeFences(body)
	var resp llmScoreResponse
	if err := json.Unmarshal([]byte(stripped), &resp); err != nil {
		breakdown, _, confidence, reasoning := scoring.Fallback()
		return llmScoreResponse{
			ScoreBreakdown:  breakdown,
			ScoreConfidence: confidence,
			ScoreReasoning:  reasoning,
		}, true
	}
	return resp, false
}
