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
	"github.com/signalradar/core/pkg/radar/types"
)

// dailyFullEntry / dailyBriefEntry / dailyResponse mirror the daily
// digest prompt contract's response JSON exactly.
type dailyFullEntry struct {
	Rank     int    `json:"rank"`
	SignalID string `json:"signal_id"`
	Title    string `json:"title"`
	Source   string `json:"source"`
	Score    int    `json:"score"`
	Summary  string `json:"summary"`
	Link     string `json:"link"`
}

type dailyBriefEntry struct {
	Rank     int    `json:"rank"`
	SignalID string `json:"signal_id"`
	Title    string `json:"title"`
	Score    int    `json:"score"`
	Link     string `json:"link"`
}

type dailyResponse struct {
	Title       string            `json:"title"`
	Date        string            `json:"date"`
	TotalCount  int               `json:"totalCount"`
	FullSummary []dailyFullEntry  `json:"fullSummary"`
	BriefList   []dailyBriefEntry `json:"briefList"`
	Themes      []string          `json:"themes"`
	Insights    string            `json:"insights"`
}

func dailySystemPrompt(promptVersion string) string {
	return fmt.Sprintf(`You are composing a daily information-radar digest (prompt version %s).
Given up to 10 top signals and any remaining lower-ranked signals, respond
with a single JSON object and nothing else:
{
  "title": "digest title",
  "date": "YYYY-MM-DD",
  "totalCount": <int>,
  "fullSummary": [exactly 10 entries, or fewer if fewer than 10 signals were provided: {"rank","signal_id","title","source","score","summary","link"}],
  "briefList": [{"rank","signal_id","title","score","link"} for remaining signals],
  "themes": [3 to 5 short strings],
  "insights": "100-150 Chinese-language characters"
}`, promptVersion)
}

func dailyUserPrompt(top []types.Signal, rest []types.Signal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "top signals (%d):\n", len(top))
	for i, s := range top {
		fmt.Fprintf(&b, "%d. id=%s title=%q source=%s score=%d summary_zh=%q link=%s\n",
			i+1, s.ID, s.Title, s.Source, s.ValueScore, s.SummaryZH, s.Link)
	}
	fmt.Fprintf(&b, "other signals (%d):\n", len(rest))
	for i, s := range rest {
		fmt.Fprintf(&b, "%d. id=%s title=%q score=%d link=%s\n",
			len(top)+i+1, s.ID, s.Title, s.ValueScore, s.Link)
	}
	return b.String()
}

// Daily composes the daily digest: list today's signals, call the LLM
// router for composition, fall back to the deterministic template on
// any failure, then persist and return the rendered result.
func (c *Composer) Daily(ctx context.Context) (Result, error) {
	dateStr := beijingDateStr(c.now())

	signals, err := c.store.ListByDate(ctx, dateStr)
	if err != nil {
		return Result{}, fmt.Errorf("digest: list by date: %w", err)
	}
	if len(signals) == 0 {
		return placeholderResult(), nil
	}

	if !c.llmEnabled || c.router == nil {
		return c.dailyTemplateFallback(dateStr, signals, "simple_template"), nil
	}

	start := c.now()
	top := signals
	var rest []types.Signal
	if len(top) > c.maxSignalsForLLM {
		rest = append(rest, top[c.maxSignalsForLLM:]...)
		top = top[:c.maxSignalsForLLM]
	}

	system := dailySystemPrompt(c.promptVersion)
	user := dailyUserPrompt(top, rest)

	callCtx, cancel := context.WithTimeout(ctx, c.dailyTimeout)
	defer cancel()
	body := c.router.Call(callCtx, system, user, llmrouter.CallOptions{
		ResponseFormat: llmrouter.FormatJSON,
		Timeout:        c.dailyTimeout,
		MaxTokens:      4096,
	})
	if body == "" {
		c.logger.Warn("digest: daily LLM call failed, falling back to template")
		return c.dailyTemplateFallback(dateStr, signals, "simple_template_fallback"), nil
	}

	var resp dailyResponse
	if err := json.Unmarshal([]byte(llmrouter.StripCodeFences(body)), &resp); err != nil {
		c.logger.WithError(err).Warn("digest: daily LLM response malformed, falling back to template")
		return c.dailyTemplateFallback(dateStr, signals, "simple_template_fallback"), nil
	}

	generatedBy := fmt.Sprintf("router/%s", c.router.Version)
	if len(resp.FullSummary) < len(top) && len(resp.FullSummary) < 10 {
		generatedBy = fmt.Sprintf("%s+partial(%d/10)", generatedBy, len(resp.FullSummary))
	}

	markdown, messages := renderDailyMessages(resp)
	elapsed := c.now().Sub(start)

	record := types.DigestRecord{
		DigestID:         "daily_" + dateStr,
		Type:             types.DigestDaily,
		Date:             dateStr,
		Signals:          dailyDigestRefs(resp),
		Themes:           resp.Themes,
		GeneratedBy:      generatedBy,
		PromptVersion:    c.promptVersion,
		PromptHash:       hashPrompt(system),
		GenerationTimeMs: elapsed.Milliseconds(),
		ContentMarkdown:  markdown,
		ContentLength:    len(markdown),
		CreatedAt:        c.now(),
	}
	if err := c.store.PutDigest(ctx, record); err != nil {
		return Result{}, fmt.Errorf("digest: put daily record: %w", err)
	}

	return Result{Markdown: markdown, Messages: messages, Record: &record}, nil
}

func (c *Composer) dailyTemplateFallback(dateStr string, signals []types.Signal, generatedBy string) Result {
	markdown, refs := renderTemplate(fmt.Sprintf("每日情报摘要 · %s", dateStr), signals)
	record := types.DigestRecord{
		DigestID:        "daily_" + dateStr,
		Type:            types.DigestDaily,
		Date:            dateStr,
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
		c.logger.WithError(err).Error("digest: failed to persist template-fallback daily record")
	}
	return Result{Markdown: markdown, Messages: []string{markdown}, Record: &record}
}

func dailyDigestRefs(resp dailyResponse) []types.DigestSignalRef {
	refs := make([]types.DigestSignalRef, 0, len(resp.FullSummary)+len(resp.BriefList))
	for _, e := range resp.FullSummary {
		refs = append(refs, types.DigestSignalRef{SignalID: e.SignalID, Rank: e.Rank, Section: types.SectionFull})
	}
	for _, e := range resp.BriefList {
		refs = append(refs, types.DigestSignalRef{SignalID: e.SignalID, Rank: e.Rank, Section: types.SectionBrief})
	}
	return refs
}

// renderDailyMessages builds the fixed four-message sequence (top 3,
// ranks 4-6, ranks 7-10, themes+insights) and the full markdown
// (concatenation) for storage.
func renderDailyMessages(resp dailyResponse) (string, []string) {
	ranks := func(lo, hi int) []dailyFullEntry {
		var out []dailyFullEntry
		for _, e := range resp.FullSummary {
			if e.Rank >= lo && e.Rank <= hi {
				out = append(out, e)
			}
		}
		return out
	}
	renderEntries := func(entries []dailyFullEntry) string {
		var b strings.Builder
		for _, e := range entries {
			fmt.Fprintf(&b, "%d. **%s** [%s] %s\n%s\n%s\n\n", e.Rank, e.Title, e.Source, stars(e.Score), e.Summary, e.Link)
		}
		return strings.TrimRight(b.String(), "\n")
	}

	msg1 := fmt.Sprintf("**[消息 1/4]**\n**%s**\n\n%s", headerOrDefault(resp.Title, resp.Date), renderEntries(ranks(1, 3)))

	var messages []string
	messages = append(messages, msg1)

	if body := renderEntries(ranks(4, 6)); body != "" {
		messages = append(messages, fmt.Sprintf("**[消息 2/4]**\n%s", body))
	}
	if body := renderEntries(ranks(7, 10)); body != "" {
		messages = append(messages, fmt.Sprintf("**[消息 3/4]**\n%s", body))
	}

	var themesBlock strings.Builder
	fmt.Fprintf(&themesBlock, "【今日关键词】%s\n\n【今日趋势洞察】%s", strings.Join(resp.Themes, "、"), resp.Insights)
	messages = append(messages, fmt.Sprintf("**[消息 4/4]**\n%s", themesBlock.String()))

	return strings.Join(messages, "\n\n---\n\n"), messages
}

func headerOrDefault(title, date string) string {
	if title != "" {
		return title
	}
	return "每日情报摘要 · " + date
}
