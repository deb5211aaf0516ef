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

// Package scoring implements C4: the calibrator that normalizes a raw
// 5-dimension rubric into a weighted, clamped value_score.
package scoring

import (
	"fmt"
	"math"

	"github.com/signalradar/core/pkg/radar/types"
)

// Weights are the fixed weighted-sum coefficients. They sum to 1.0
// by construction; changing them changes every stored value_score, so
// they are not configurable.
var Weights = struct {
	Innovation     float64
	Relevance      float64
	Actionability  float64
	SignalStrength float64
	Timeliness     float64
}{
	Innovation:     0.25,
	Relevance:      0.25,
	Actionability:  0.20,
	SignalStrength: 0.15,
	Timeliness:     0.15,
}

const (
	minDimension     = 1
	maxDimension     = 5
	neutralDimension = 3
	// FallbackConfidence is the confidence assigned to the JSON-parse
	// failure fallback signal.
	FallbackConfidence = 0.3
	// FallbackReasoning is the reasoning text assigned to the fallback
	// signal.
	FallbackReasoning = "JSON parse failed"
	// ConfidenceUncertaintyThreshold: below this, uncertainty_reason is
	// required on the stored signal.
	ConfidenceUncertaintyThreshold = 0.8
	// MaxReasoningChars is advisory; we
	// truncate rather than reject.
	MaxReasoningChars = 200
)

func clampInt(v int, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizeBreakdown clamps every dimension into [1,5]; a zero-value
// field (never set by the caller) is treated as missing and defaulted
// to 3, so an explicit 0 and a field absent in JSON are treated alike.
func NormalizeBreakdown(b types.ScoreBreakdown) types.ScoreBreakdown {
	normalize := func(v int) int {
		if v == 0 {
			return neutralDimension
		}
		return clampInt(v, minDimension, maxDimension)
	}
	return types.ScoreBreakdown{
		Innovation:     normalize(b.Innovation),
		Relevance:      normalize(b.Relevance),
		Actionability:  normalize(b.Actionability),
		SignalStrength: normalize(b.SignalStrength),
		Timeliness:     normalize(b.Timeliness),
	}
}

// WeightedScore computes the deterministic scalar value_score from an
// already-normalized breakdown.
func WeightedScore(b types.ScoreBreakdown) int {
	weighted := Weights.Innovation*float64(b.Innovation) +
		Weights.Relevance*float64(b.Relevance) +
		Weights.Actionability*float64(b.Actionability) +
		Weights.SignalStrength*float64(b.SignalStrength) +
		Weights.Timeliness*float64(b.Timeliness)
	rounded := int(math.Round(weighted))
	return clampInt(rounded, minDimension, maxDimension)
}

// AssertValueScore recomputes WeightedScore(breakdown) and returns an
// error if it doesn't match stored. Every emit path and every read
// path must call this.
func AssertValueScore(breakdown types.ScoreBreakdown, stored int) error {
	want := WeightedScore(breakdown)
	if want != stored {
		return fmt.Errorf("scoring: value_score invariant violated: want %d, got %d", want, stored)
	}
	return nil
}

// ClampConfidence clamps a raw confidence value into [0,1].
func ClampConfidence(v float64) float64 {
	return clampFloat(v, 0, 1)
}

// TruncateReasoning truncates s to MaxReasoningChars, treating the limit
// as advisory: never rejects the signal, only shortens the
// text.
func TruncateReasoning(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxReasoningChars {
		return s
	}
	return string(runes[:MaxReasoningChars])
}

// RequiresUncertaintyReason reports whether confidence is low enough
// that uncertainty_reason must be populated.
func RequiresUncertaintyReason(confidence float64) bool {
	return confidence < ConfidenceUncertaintyThreshold
}

// Fallback returns the deterministic fallback signal body (breakdown,
// value_score, confidence, reasoning) used when the LLM's JSON cannot be
// parsed even after code-fence stripping.
func Fallback() (types.ScoreBreakdown, int, float64, string) {
	breakdown := types.ScoreBreakdown{
		Innovation:     2,
		Relevance:      2,
		Actionability:  2,
		SignalStrength: 2,
		Timeliness:     2,
	}
	return breakdown, WeightedScore(breakdown), FallbackConfidence, FallbackReasoning
}

// ClassifyUncertainty picks a closed-set UncertaintyReason for a signal
// whose confidence fell below the threshold. It never changes whether
// the reason is required, only its value.
func ClassifyUncertainty(confidence float64, usedFallback bool, partialJSON bool) types.UncertaintyReason {
	switch {
	case usedFallback:
		return types.UncertaintyPartialJSON
	case partialJSON:
		return types.UncertaintyPartialJSON
	case confidence < 0.5:
		return types.UncertaintyLowConfidence
	default:
		return types.UncertaintyAmbiguousInput
	}
}
