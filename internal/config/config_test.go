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

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/signalradar/core/internal/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

func writeConfig(dir, body string) string {
	path := filepath.Join(dir, "config.yaml")
	Expect(os.WriteFile(path, []byte(body), 0o600)).To(Succeed())
	return path
}

var validYAML = `
redis:
  addr: "localhost:6379"
llm:
  providers:
    - name: zhipu_glm
      api_key: "sk-test"
      model: "glm-4"
    - name: gemini
      model: "gemini-pro"
push_threshold: 3
seen_retention_days: 14
`

var _ = Describe("Load", func() {
	It("loads and validates a well-formed config", func() {
		path := writeConfig(GinkgoT().TempDir(), validYAML)
		cfg, err := config.Load(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Redis.Addr).To(Equal("localhost:6379"))
		Expect(cfg.LLM.Providers).To(HaveLen(2))
		Expect(cfg.PushThresholdOrDefault()).To(Equal(3))
		Expect(cfg.SeenRetention()).To(Equal(14 * 24 * time.Hour))
	})

	It("errors when the file does not exist", func() {
		_, err := config.Load(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
		Expect(err).To(HaveOccurred())
	})

	It("errors when redis.addr is missing", func() {
		path := writeConfig(GinkgoT().TempDir(), `
redis:
  addr: ""
llm:
  providers:
    - name: zhipu_glm
      api_key: "sk-test"
      model: "glm-4"
`)
		_, err := config.Load(path)
		Expect(err).To(HaveOccurred())
	})

	It("errors when no configured provider has an api_key", func() {
		path := writeConfig(GinkgoT().TempDir(), `
redis:
  addr: "localhost:6379"
llm:
  providers:
    - name: zhipu_glm
      model: "glm-4"
    - name: gemini
      model: "gemini-pro"
`)
		_, err := config.Load(path)
		Expect(err).To(MatchError(ContainSubstring("no LLM provider")))
	})
})

var _ = Describe("ProviderConfig.Available", func() {
	It("is available iff api_key is non-empty", func() {
		Expect(config.ProviderConfig{APIKey: "x"}.Available()).To(BeTrue())
		Expect(config.ProviderConfig{}.Available()).To(BeFalse())
	})
})

var _ = Describe("defaults", func() {
	It("defaults push_threshold to 3 and clamps above 5", func() {
		Expect(config.Config{}.PushThresholdOrDefault()).To(Equal(3))
		Expect(config.Config{PushThreshold: 9}.PushThresholdOrDefault()).To(Equal(5))
	})

	It("defaults seen retention to 14 days", func() {
		Expect(config.Config{}.SeenRetention()).To(Equal(14 * 24 * time.Hour))
	})

	It("defaults LLM timeouts", func() {
		c := config.LLMConfig{}
		Expect(c.SummarizeTimeout()).To(Equal(30 * time.Second))
		Expect(c.DailyTimeout()).To(Equal(120 * time.Second))
		Expect(c.WeeklyTimeout()).To(Equal(30 * time.Second))
	})
})
