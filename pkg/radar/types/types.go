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

// Package types holds the entities shared across the information-radar
// pipeline: raw feed items, calibrated scores, durable signals and
// digest records.
package types

import "time"

// Source enumerates the feed collaborators the core recognizes.
type Source string

const (
	SourceHackerNews  Source = "hacker_news"
	SourceProductHunt Source = "product_hunt"
)

// RawItem is a candidate harvested from a feed collaborator. It is
// transient: the core never persists a RawItem directly.
type RawItem struct {
	ID         string    `json:"id"`
	Source     Source    `json:"source"`
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	DetectedAt time.Time `json:"detected_at"`
}

// ScoreBreakdown is the 5-dimension rubric every persisted Signal carries
// in fully-populated, clamped form.
type ScoreBreakdown struct {
	Innovation      int `json:"innovation"`
	Relevance       int `json:"relevance"`
	Actionability   int `json:"actionability"`
	SignalStrength  int `json:"signal_strength"`
	Timeliness      int `json:"timeliness"`
}

// UncertaintyReason enumerates why a signal's score_confidence fell below
// the 0.8 threshold that makes the field mandatory.
type UncertaintyReason string

const (
	UncertaintyLowConfidence  UncertaintyReason = "low_confidence"
	UncertaintyAmbiguousInput UncertaintyReason = "ambiguous_source"
	UncertaintyPartialJSON    UncertaintyReason = "partial_json"
	UncertaintyStaleContext   UncertaintyReason = "stale_context"
)

// Signal is the durable unit produced by the signal processor (C5) and
// owned exclusively by the signal store (C2).
type Signal struct {
	ID                string             `json:"id"`
	Source            Source             `json:"source"`
	Title             string             `json:"title"`
	Link              string             `json:"link"`
	SummaryZH         string             `json:"summary_zh"`
	ValueScore        int                `json:"value_score"`
	ScoreBreakdown    ScoreBreakdown     `json:"score_breakdown"`
	ScoreConfidence   float64            `json:"score_confidence"`
	ScoreReasoning    string             `json:"score_reasoning"`
	UncertaintyReason UncertaintyReason  `json:"uncertainty_reason,omitempty"`
	DetectedAt        time.Time          `json:"detected_at"`
	StoredAt          time.Time          `json:"stored_at"`
	KeyPoints         []string           `json:"key_points"`
	TargetAudience    string             `json:"target_audience"`
	// FeedbackCount is initialized to 0 and never incremented by this
	// core; no feedback collaborator exists yet to write to it.
	FeedbackCount int `json:"feedback_count"`
}

// DigestSection distinguishes a fully-rendered digest entry from a
// name-only one.
type DigestSection string

const (
	SectionFull  DigestSection = "full"
	SectionBrief DigestSection = "brief"
)

// DigestSignalRef is one row of a DigestRecord's signals list.
type DigestSignalRef struct {
	SignalID string        `json:"signal_id"`
	Rank     int           `json:"rank"`
	Section  DigestSection `json:"section"`
}

// DigestType distinguishes daily from weekly digests.
type DigestType string

const (
	DigestDaily  DigestType = "daily"
	DigestWeekly DigestType = "weekly"
)

// DigestRecord is the fully-composed, immutable-once-written digest
// owned exclusively by the digest composer (C6).
type DigestRecord struct {
	DigestID          string             `json:"digest_id"`
	Type              DigestType         `json:"type"`
	Date              string             `json:"date"`
	Signals           []DigestSignalRef  `json:"signals"`
	Themes            []string           `json:"themes"`
	GeneratedBy       string             `json:"generated_by"`
	PromptVersion     string             `json:"prompt_version"`
	PromptHash        string             `json:"prompt_hash"`
	GenerationTimeMs  int64              `json:"generation_time_ms"`
	ContentMarkdown   string             `json:"content_markdown"`
	ContentLength     int                `json:"content_length"`
	CreatedAt         time.Time          `json:"created_at"`
}

// SeenMarker is the record C1 writes per RawItem.ID.
type SeenMarker struct {
	SeenAt int64 `json:"seenAt"`
}
