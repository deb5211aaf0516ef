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

package scheduler_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/signalradar/core/pkg/radar/digest"
	"github.com/signalradar/core/pkg/radar/feed"
	"github.com/signalradar/core/pkg/radar/kv"
	"github.com/signalradar/core/pkg/radar/llmrouter"
	"github.com/signalradar/core/pkg/radar/processor"
	"github.com/signalradar/core/pkg/radar/scheduler"
	"github.com/signalradar/core/pkg/radar/seenset"
	"github.com/signalradar/core/pkg/radar/signalstore"
	"github.com/signalradar/core/pkg/radar/types"
)

func TestScheduler(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Scheduler Suite")
}

func newLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.FatalLevel)
	return l
}

type scriptedProvider struct {
	name string
	body string
}

func (s scriptedProvider) Name() string { return s.name }

func (s scriptedProvider) Invoke(ctx context.Context, system, user string, opts llmrouter.CallOptions) (string, error) {
	return s.body, nil
}

type recordingChat struct {
	sent [][]string
	err  error
}

func (r *recordingChat) Send(ctx context.Context, messages []string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, messages)
	return nil
}

func item(id string) types.RawItem {
	return types.RawItem{ID: id, Source: types.SourceHackerNews, Title: "t-" + id, Link: "https://example.com/" + id, DetectedAt: time.Now()}
}

var _ = Describe("TickIngest", func() {
	It("errors when no feed is configured", func() {
		env := &scheduler.Env{Logger: newLogger()}
		err := scheduler.TickIngest(context.Background(), env)
		Expect(err).To(HaveOccurred())
	})

	It("processes new items and marks them seen so a second tick is a no-op", func() {
		store := kv.NewMemoryStore()
		set := seenset.New(store, 14*24*time.Hour, newLogger())
		body := `{"summary_zh":"s","score_breakdown":{"innovation":5,"relevance":5,"actionability":5,"signal_strength":5,"timeliness":5},"score_confidence":0.9,"score_reasoning":"r","key_points":[],"target_audience":"x"}`
		router := llmrouter.New("v1", newLogger(), scriptedProvider{name: "zhipu_glm", body: body})
		signals := signalstore.New(kv.NewMemoryStore(), newLogger())
		proc := processor.New(router, signals, 1, time.Second, newLogger())

		src := feed.Static{Items: []types.RawItem{item("a"), item("b")}}
		env := &scheduler.Env{
			Feeds:     []feed.Source{src},
			SeenSet:   set,
			Processor: proc,
			Logger:    newLogger(),
		}

		Expect(scheduler.TickIngest(context.Background(), env)).To(Succeed())

		date := time.Now().UTC().Format("2006-01-02")
		out, err := signals.ListByDate(context.Background(), date)
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(HaveLen(2))

		// Second tick: both items are now seen, so FilterNew drops them
		// and nothing new is stored.
		Expect(scheduler.TickIngest(context.Background(), env)).To(Succeed())
		out2, err := signals.ListByDate(context.Background(), date)
		Expect(err).ToNot(HaveOccurred())
		Expect(out2).To(HaveLen(2))
	})

	It("skips a feed that fails to fetch rather than aborting the tick", func() {
		store := kv.NewMemoryStore()
		set := seenset.New(store, 14*24*time.Hour, newLogger())
		router := llmrouter.New("v1", newLogger(), scriptedProvider{name: "zhipu_glm", body: "{}"})
		signals := signalstore.New(kv.NewMemoryStore(), newLogger())
		proc := processor.New(router, signals, 1, time.Second, newLogger())

		failing := feed.Static{Err: context.DeadlineExceeded}
		env := &scheduler.Env{
			Feeds:     []feed.Source{failing},
			SeenSet:   set,
			Processor: proc,
			Logger:    newLogger(),
		}
		Expect(scheduler.TickIngest(context.Background(), env)).To(Succeed())
	})
})

var _ = Describe("TickDailyDigest / TickWeeklyDigest", func() {
	It("warns but does not error when no chat collaborator is configured", func() {
		store := signalstore.New(kv.NewMemoryStore(), newLogger())
		composer := digest.New(store, nil, digest.Config{}, newLogger())
		env := &scheduler.Env{Composer: composer, Logger: newLogger()}

		Expect(scheduler.TickDailyDigest(context.Background(), env)).To(Succeed())
		Expect(scheduler.TickWeeklyDigest(context.Background(), env)).To(Succeed())
	})

	It("delivers composed messages through the chat collaborator", func() {
		store := signalstore.New(kv.NewMemoryStore(), newLogger())
		composer := digest.New(store, nil, digest.Config{}, newLogger())
		chatSender := &recordingChat{}
		env := &scheduler.Env{Composer: composer, Chat: chatSender, Logger: newLogger()}

		Expect(scheduler.TickDailyDigest(context.Background(), env)).To(Succeed())
		Expect(chatSender.sent).To(HaveLen(1))
	})

	It("surfaces a delivery error from the chat collaborator", func() {
		store := signalstore.New(kv.NewMemoryStore(), newLogger())
		composer := digest.New(store, nil, digest.Config{}, newLogger())
		chatSender := &recordingChat{err: context.DeadlineExceeded}
		env := &scheduler.Env{Composer: composer, Chat: chatSender, Logger: newLogger()}

		Expect(scheduler.TickDailyDigest(context.Background(), env)).To(HaveOccurred())
	})
})
