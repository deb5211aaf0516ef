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

package signalstore_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/signalradar/core/pkg/radar/kv"
	"github.com/signalradar/core/pkg/radar/signalstore"
	"github.com/signalradar/core/pkg/radar/types"
)

func TestSignalStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Signal Store Suite")
}

func newTestSignal(id string, valueScore int, detectedAt time.Time) types.Signal {
	breakdown := breakdownFor(valueScore)
	return types.Signal{
		ID:              id,
		Source:          types.SourceHackerNews,
		Title:           "title-" + id,
		Link:            "https://example.com/" + id,
		SummaryZH:       "摘要",
		ValueScore:      valueScore,
		ScoreBreakdown:  breakdown,
		ScoreConfidence: 0.9,
		DetectedAt:      detectedAt,
	}
}

// breakdownFor returns a breakdown whose WeightedScore equals valueScore
// for the small set of scores these specs use (all-dimensions-equal is
// always exact under the calibrator's weights, since they sum to 1.0).
func breakdownFor(valueScore int) types.ScoreBreakdown {
	return types.ScoreBreakdown{
		Innovation:     valueScore,
		Relevance:      valueScore,
		Actionability:  valueScore,
		SignalStrength: valueScore,
		Timeliness:     valueScore,
	}
}

var _ = Describe("Store / ListByDate", func() {
	var (
		ctx   context.Context
		store *signalstore.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger := logrus.New()
		logger.SetLevel(logrus.FatalLevel)
		store = signalstore.New(kv.NewMemoryStore(), logger)
	})

	It("round-trips a stored signal back out of ListByDate exactly once", func() {
		s := newTestSignal("hacker_news_a", 5, time.Now())
		Expect(store.Store(ctx, s)).To(Succeed())

		date := time.Now().UTC().Format("2006-01-02")
		out, err := store.ListByDate(ctx, date)
		Expect(err).ToNot(HaveOccurred())

		matches := 0
		for _, got := range out {
			if got.ID == s.ID {
				matches++
			}
		}
		Expect(matches).To(Equal(1))
	})

	It("sorts by value_score descending, ties broken by detected_at descending", func() {
		now := time.Now()
		low := newTestSignal("hacker_news_low", 3, now)
		highOld := newTestSignal("hacker_news_high_old", 5, now.Add(-time.Hour))
		highNew := newTestSignal("hacker_news_high_new", 5, now)

		Expect(store.Store(ctx, low)).To(Succeed())
		Expect(store.Store(ctx, highOld)).To(Succeed())
		Expect(store.Store(ctx, highNew)).To(Succeed())

		date := now.UTC().Format("2006-01-02")
		out, err := store.ListByDate(ctx, date)
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(HaveLen(3))
		Expect(out[0].ID).To(Equal(highNew.ID))
		Expect(out[1].ID).To(Equal(highOld.ID))
		Expect(out[2].ID).To(Equal(low.ID))
	})

	It("suppresses duplicate ids in the index on re-store", func() {
		s := newTestSignal("hacker_news_dup", 4, time.Now())
		Expect(store.Store(ctx, s)).To(Succeed())
		Expect(store.Store(ctx, s)).To(Succeed())

		date := time.Now().UTC().Format("2006-01-02")
		out, err := store.ListByDate(ctx, date)
		Expect(err).ToNot(HaveOccurred())

		count := 0
		for _, got := range out {
			if got.ID == s.ID {
				count++
			}
		}
		Expect(count).To(Equal(1))
	})

	It("rejects a signal whose value_score violates the weighted-score invariant", func() {
		bad := newTestSignal("hacker_news_bad", 5, time.Now())
		bad.ValueScore = 1 // tampered
		Expect(store.Store(ctx, bad)).ToNot(Succeed())
	})
})

var _ = Describe("ListByWeek", func() {
	var (
		ctx   context.Context
		store *signalstore.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger := logrus.New()
		logger.SetLevel(logrus.FatalLevel)
		store = signalstore.New(kv.NewMemoryStore(), logger)
	})

	It("resolves only signals whose ISO week matches (2026-01-04 vs 2026-01-05)", func() {
		sunday := newTestSignal("hacker_news_sunday", 4, time.Date(2026, 1, 4, 10, 0, 0, 0, time.UTC))
		monday := newTestSignal("hacker_news_monday", 4, time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC))

		// Store() always stamps the *current* date/week, so this spec
		// pokes the store's underlying clock to the signal's own
		// detected_at instant to land each signal on its target day.
		storeAt(store, sunday.DetectedAt, func() { Expect(store.Store(ctx, sunday)).To(Succeed()) })
		storeAt(store, monday.DetectedAt, func() { Expect(store.Store(ctx, monday)).To(Succeed()) })

		week01, err := store.ListByWeek(ctx, "2026-W01")
		Expect(err).ToNot(HaveOccurred())
		Expect(week01).To(HaveLen(1))
		Expect(week01[0].ID).To(Equal(sunday.ID))

		week02, err := store.ListByWeek(ctx, "2026-W02")
		Expect(err).ToNot(HaveOccurred())
		Expect(week02).To(HaveLen(1))
		Expect(week02[0].ID).To(Equal(monday.ID))
	})
})

// storeAt is a test-only seam: Store has no exported clock override, so
// these specs rely on the package-private `now` field via a same-package
// accessor file (export_test.go).
func storeAt(store *signalstore.Store, at time.Time, fn func()) {
	signalstore.SetClockForTest(store, func() time.Time { return at })
	defer signalstore.SetClockForTest(store, time.Now)
	fn()
}
