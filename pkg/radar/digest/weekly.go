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

package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/signalradar/core/pkg/radar/llmrouter"
	"github.com/signalradar/core/pkg/radar/signalstore/isoweek"
	"github.com/signalradar/core/pkg/radar/types"
)

type weeklyTopEntry struct {
	Rank       int    `json:"rank"`
	SignalID   string `json:"signal_id"`
	Title      string `json:"title"`
	Source     string `json:"source"`
	Score      int    `json:"score"`
	Summary    string `json:"summary"`
	Link       string `json:"link"`
	DayOfWeek  string `json:"dayOfWeek"`
}

type weeklyOtherEntry struct {
	Rank     int    `json:"rank"`
	SignalID string `json:"signal_id"`
	Title    string `json:"title"`
	Score    int    `json:"score"`
	Link     string `json:"link"`
}

type weeklyResponse struct {
	Title         string             `json:"title"`
	WeekInfo      string             `json:"weekInfo"`
	TotalCount    int                `json:"totalCount"`
	Overview      string             `json:"overview"`
	TopSignals    []weeklyTopEntry   `json:"topSignals"`
	TrendAnalysis []string           `json:"trendAnalysis"`
	OtherPicks    []weeklyOtherEntry `json:"otherPicks"`
	WeekAhead     []string           `json:"weekAhead"`
	Themes        []string           `json:"themes"`
}

func weeklySystemPrompt(promptVersion string) string {
	return fmt.Sprintf(`You are composing a weekly information-radar digest (prompt version %s).
Given up to 10 top signals and any remaining lower-ranked signals from the
week, respond with a single JSON object and nothing else:
{
  "title": "digest title",
  "weekInfo": "ISO week, e.g. 2026-W05",
  "totalCount": <int>,
  "overview": "short overview",
  "topSignals": [up to 10 entries: {"rank","signal_id","title","source","score","summary","link","dayOfWeek"}],
  "trendAnalysis": ["short strings"],
  "otherPicks": [{"rank","signal_id","title","score","link"} for remaining signals],
  "weekAhead": ["short strings"],
  "themes": [5 to 8 short strings]
}`, promptVersion)
}

func weeklyUserPrompt(week string, top, rest []types.Signal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "week: %s\ntop signals (%d):\n", week, len(top))
	for i, s := range top {
		fmt.Fprintf(&b, "%d. id=%s title=%q source=%s score=%d day=%s summary_zh=%q link=%s\n",
			i+1, s.ID, s.Title, s.Source, s.ValueScore, s.DetectedAt.Weekday(), s.SummaryZH, s.Link)
	}
	fmt.Fprintf(&b, "other signals (%d):\n", len(rest))
	for i, s := range rest {
		fmt.Fprintf(&b, "%d. id=%s title=%q score=%d link=%s\n", len(top)+i+1, s.ID, s.Title, s.ValueScore, s.Link)
	}
	return b.String()
}

// Weekly composes the weekly digest: same shape as Daily but resolved
// against ListByWeek and emitted as a single message (no self-chunking).
func (c *Composer) Weekly(ctx context.Context) (Result, error) {
	week := isoweek.Format(c.now())

	signals, err := c.store.ListByWeek(ctx, week)
	if err != nil {
		return Result{}, fmt.Errorf("digest: list by week: %w", err)
	}
	if len(signals) == 0 {
		return placeholderResult(), nil
	}

	if !c.llmEnabled || c.router == nil {
		return c.weeklyTemplateFallback(week, signals, "simple_template"), nil
	}

	start := c.now()
	top := signals
	var rest []types.Signal
	if len(top) > c.maxSignalsForLLM {
		rest = append(rest, top[c.maxSignalsForLLM:]...)
		top = top[:c.maxSignalsForLLM]
	}

	system := weeklySystemPrompt(c.promptVersion)
	user := weeklyUserPrompt(week, top, rest)

	callCtx, cancel := context.WithTimeout(ctx, c.weeklyTimeout)
	defer cancel()
	body := c.router.Call(callCtx, system, user, llmrouter.CallOptions{
		ResponseFormat: llmrouter.FormatJSON,
		Timeout:        c.weeklyTimeout,
		MaxTokens:      4096,
	})
	if body == "" {
		c.logger.Warn("digest: weekly LLM call failed, falling back to template")
		return c.weeklyTemplateFallback(week, signals, "simple_template_fallback"), nil
	}

	var resp weeklyResponse
	if err := json.Unmarshal([]byte(llmrouter.StripCodeFences(body)), &resp); err != nil {
		c.logger.WithError(err).Warn("digest: weekly LLM response malformed, falling back to template")
		return c.weeklyTemplateFallback(week, signals, "simple_template_fallback"), nil
	}

	markdown := renderWeeklyMarkdown(resp)
	elapsed := c.now().Sub(start)

	record := types.DigestRecord{
		DigestID:         "weekly_" + week,
		Type:             types.DigestWeekly,
		Date:             week,
		Signals:          weeklyDigestRefs(resp),
		Themes:           resp.Themes,
		GeneratedBy:      fmt.Sprintf("router/%s", c.router.Version),
		PromptVersion:    c.promptVersion,
		PromptHash:       hashPrompt(system),
		GenerationTimeMs: elapsed.Milliseconds(),
		ContentMarkdown:  markdown,
		ContentLength:    len(markdown),
		CreatedAt:        c.now(),
	}
	if err := c.store.PutDigest(ctx, record); err != nil {
		return Result{}, fmt.Errorf("digest: put weekly record: %w", err)
	}

	return Result{Markdown: markdown, Messages: []string{markdown}, Record: &record}, nil
}

func (c *Composer) weeklyTemplateFallback(week string, signals []types.Signal, generatedBy string) Result {
	markdown, refs := renderTemplate(fmt.Sprintf("每周情报摘要 · %s", week), signals)
	record := types.DigestRecord{
		DigestID:        "weekly_" + week,
		Type:            types.DigestWeekly,
		Date:            week,
		Signals:         refs,
		GeneratedBy:     generatedBy,
		PromptVersion:   c.promptVersion,
		PromptHash:      "none",
		ContentMarkdown: markdown,
		ContentLength:   len(markdown),
		CreatedAt:       c.now(),
	}
	ctx := context.Background()
	if err := c.store.PutDigest(ctx, record); err != nil {
		c.logger.WithError(err).Error("digest: failed to persist template-fallback weekly record")
	}
	return Result{Markdown: markdown, Messages: []string{markdown}, Record: &record}
}

func weeklyDigestRefs(resp weeklyResponse) []types.DigestSignalRef {
	refs := make([]types.DigestSignalRef, 0, len(resp.TopSignals)+len(resp.OtherPicks))
	for _, e := range resp.TopSignals {
		refs = append(refs, types.DigestSignalRef{SignalID: e.SignalID, Rank: e.Rank, Section: types.SectionFull})
	}
	for _, e := range resp.OtherPicks {
		refs = append(refs, types.DigestSignalRef{SignalID: e.SignalID, Rank: e.Rank, Section: types.SectionBrief})
	}
	return refs
}

func renderWeeklyMarkdown(resp weeklyResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n%s\n\n%s\n\n", headerOrDefault(resp.Title, resp.WeekInfo), resp.WeekInfo, resp.Overview)
	for _, e := range resp.TopSignals {
		fmt.Fprintf(&b, "%d. **%s** [%s] %s (%s)\n%s\n%s\n\n", e.Rank, e.Title, e.Source, stars(e.Score), e.DayOfWeek, e.Summary, e.Link)
	}
	fmt.Fprintf(&b, "【趋势分析】%s\n\n【下周展望】%s\n\n【本周关键词】%s",
		strings.Join(resp.TrendAnalysis, "；"), strings.Join(resp.WeekAhead, "；"), strings.Join(resp.Themes, "、"))
	return strings.TrimRight(b.String(), "\n")
}
