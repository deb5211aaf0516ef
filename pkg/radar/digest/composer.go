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

// Package digest implements C6: reads the signal store's indexes,
// composes a daily or weekly digest via the LLM router with a
// deterministic template fallback, and chunks the result into the
// fixed message shape the daily/weekly prompt contracts describe.
package digest

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/signalradar/core/pkg/radar/llmrouter"
	"github.com/signalradar/core/pkg/radar/signalstore"
	"github.com/signalradar/core/pkg/radar/types"
)

// Result is what both Daily and Weekly return to the scheduler (C7),
// which hands Messages to the chat collaborator.
type Result struct {
	Markdown string
	Messages []string
	Record   *types.DigestRecord // nil on the "no signals" placeholder path
}

// Composer is C6.
type Composer struct {
	store              *signalstore.Store
	router             *llmrouter.Router
	llmEnabled         bool
	maxSignalsForLLM   int
	promptVersion      string
	dailyTimeout       time.Duration
	weeklyTimeout      time.Duration
	logger             logrus.FieldLogger
	now                func() time.Time
}

// Config bundles the composer's configuration knobs.
type Config struct {
	LLMEnabled       bool
	MaxSignalsForLLM int
	PromptVersion    string
	DailyTimeout     time.Duration
	WeeklyTimeout    time.Duration
}

// New builds a Composer. router may be nil, which is treated identically
// to "no provider available".
func New(store *signalstore.Store, router *llmrouter.Router, cfg Config, logger logrus.FieldLogger) *Composer {
	if cfg.MaxSignalsForLLM <= 0 {
		cfg.MaxSignalsForLLM = 10
	}
	if cfg.PromptVersion == "" {
		cfg.PromptVersion = "2.0.0"
	}
	if cfg.DailyTimeout <= 0 {
		cfg.DailyTimeout = 120 * time.Second
	}
	if cfg.WeeklyTimeout <= 0 {
		cfg.WeeklyTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Composer{
		store:            store,
		router:           router,
		llmEnabled:       cfg.LLMEnabled,
		maxSignalsForLLM: cfg.MaxSignalsForLLM,
		promptVersion:    cfg.PromptVersion,
		dailyTimeout:     cfg.DailyTimeout,
		weeklyTimeout:    cfg.WeeklyTimeout,
		logger:           logger,
		now:              time.Now,
	}
}

// beijingDateStr resolves the civil date digests run against: add 8
// hours to UTC, then extract YYYY-MM-DD.
func beijingDateStr(t time.Time) string {
	return t.UTC().Add(8 * time.Hour).Format("2006-01-02")
}

func placeholderResult() Result {
	return Result{
		Markdown: placeholderMessage,
		Messages: []string{placeholderMessage},
		Record:   nil,
	}
}

const placeholderMessage = "**【今日无新信号】** 今天没有超过阈值的新信号。"
