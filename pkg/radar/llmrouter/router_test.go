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

package llmrouter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/signalradar/core/pkg/radar/llmrouter"
)

func TestLLMRouter(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "LLM Router Suite")
}

type fakeProvider struct {
	name    string
	body    string
	err     error
	calls   int
	delay   time.Duration
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Invoke(ctx context.Context, system, user string, opts llmrouter.CallOptions) (string, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.body, nil
}

func newLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.FatalLevel)
	return l
}

var _ = Describe("New", func() {
	It("panics when constructed with zero providers", func() {
		Expect(func() {
			llmrouter.New("v1", newLogger())
		}).To(Panic())
	})
})

var _ = Describe("Call", func() {
	It("returns the first provider's body when it succeeds", func() {
		primary := &fakeProvider{name: "zhipu_glm", body: `{"ok":true}`}
		secondary := &fakeProvider{name: "gemini", body: `{"ok":false}`}
		r := llmrouter.New("router-v1", newLogger(), primary, secondary)

		got := r.Call(context.Background(), "sys", "user", llmrouter.CallOptions{ResponseFormat: llmrouter.FormatJSON, Timeout: time.Second})
		Expect(got).To(Equal(`{"ok":true}`))
		Expect(secondary.calls).To(Equal(0))
	})

	It("falls back to the next provider when the first errors", func() {
		primary := &fakeProvider{name: "zhipu_glm", err: errors.New("upstream 500")}
		secondary := &fakeProvider{name: "gemini", body: `{"ok":true}`}
		r := llmrouter.New("router-v1", newLogger(), primary, secondary)

		got := r.Call(context.Background(), "sys", "user", llmrouter.CallOptions{ResponseFormat: llmrouter.FormatJSON, Timeout: time.Second})
		Expect(got).To(Equal(`{"ok":true}`))
		Expect(primary.calls).To(Equal(1))
		Expect(secondary.calls).To(Equal(1))
	})

	It("falls back on an empty body the same as an error", func() {
		primary := &fakeProvider{name: "zhipu_glm", body: "   "}
		secondary := &fakeProvider{name: "gemini", body: "final answer"}
		r := llmrouter.New("router-v1", newLogger(), primary, secondary)

		got := r.Call(context.Background(), "sys", "user", llmrouter.CallOptions{Timeout: time.Second})
		Expect(got).To(Equal("final answer"))
	})

	It("returns empty string, never an error, when every provider fails", func() {
		primary := &fakeProvider{name: "zhipu_glm", err: errors.New("down")}
		secondary := &fakeProvider{name: "gemini", err: errors.New("also down")}
		r := llmrouter.New("router-v1", newLogger(), primary, secondary)

		got := r.Call(context.Background(), "sys", "user", llmrouter.CallOptions{Timeout: time.Second})
		Expect(got).To(Equal(""))
	})

	It("advances to the next provider when the first exceeds its per-call timeout", func() {
		slow := &fakeProvider{name: "zhipu_glm", delay: 50 * time.Millisecond}
		fast := &fakeProvider{name: "gemini", body: "fast answer"}
		r := llmrouter.New("router-v1", newLogger(), slow, fast)

		got := r.Call(context.Background(), "sys", "user", llmrouter.CallOptions{Timeout: 5 * time.Millisecond})
		Expect(got).To(Equal("fast answer"))
	})
})

var _ = Describe("StripCodeFences", func() {
	It("strips a ```json fenced body", func() {
		in := "```json\n{\"a\":1}\n```"
		Expect(llmrouter.StripCodeFences(in)).To(Equal(`{"a":1}`))
	})

	It("strips a bare ``` fenced body", func() {
		in := "```\n{\"a\":1}\n```"
		Expect(llmrouter.StripCodeFences(in)).To(Equal(`{"a":1}`))
	})

	It("leaves an unfenced body untouched", func() {
		Expect(llmrouter.StripCodeFences(`{"a":1}`)).To(Equal(`{"a":1}`))
	})
})

var _ = Describe("BreakerState", func() {
	It("reports ok=false for an unknown provider name", func() {
		r := llmrouter.New("v1", newLogger(), &fakeProvider{name: "zhipu_glm", body: "x"})
		_, ok := r.BreakerState("not-configured")
		Expect(ok).To(BeFalse())
	})

	It("reports ok=true for a configured provider", func() {
		r := llmrouter.New("v1", newLogger(), &fakeProvider{name: "zhipu_glm", body: "x"})
		_, ok := r.BreakerState("zhipu_glm")
		Expect(ok).To(BeTrue())
	})
})
