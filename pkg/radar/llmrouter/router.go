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

// Package llmrouter implements C3: an ordered provider list with
// JSON-mode enforcement, per-call timeouts and sequential fallback.
package llmrouter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"

	"github.com/sirupsen/logrus"

	"github.com/signalradar/core/pkg/metrics"
)

// tracer emits a span around every provider attempt, the suspension
// point where Call blocks on an outbound LLM request.
var tracer = otel.Tracer("signalradar/llmrouter")

// ResponseFormat selects whether the router should hint the provider for
// plain text or a JSON-only body.
type ResponseFormat string

const (
	FormatText ResponseFormat = "text"
	FormatJSON ResponseFormat = "json"
)

// CallOptions carries the per-call knobs a provider invocation needs.
type CallOptions struct {
	ResponseFormat ResponseFormat
	Timeout        time.Duration
	MaxTokens      int
}

// Provider is the single-method adapter interface every transport
// implements: one outbound request, raw text body or error on failure.
type Provider interface {
	// Name identifies the provider for logging/metrics; it also keys the
	// provider's circuit breaker.
	Name() string
	// Invoke issues exactly one outbound request. Any non-2xx, empty
	// body, timeout or malformed structural wrapper must be surfaced as
	// a non-nil error so the router can advance to the next provider.
	Invoke(ctx context.Context, system, user string, opts CallOptions) (string, error)
}

// Router holds a stable provider order and tries each sequentially,
// never retrying the same provider within one call.
type Router struct {
	providers []Provider
	breakers  map[string]*gobreaker.CircuitBreaker
	logger    logrus.FieldLogger
	// Version is surfaced in DigestRecord.generated_by so the consumer
	// can distinguish router revisions from the specific provider that
	// happened to answer.
	Version string
}

// New builds a Router over providers in the given order. Providers with
// no configured API key should simply be omitted by the caller before
// constructing the Router; an unavailable provider is skipped silently,
// never listed.
func New(version string, logger logrus.FieldLogger, providers ...Provider) *Router {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if len(providers) == 0 {
		// No provider configured at all is a configuration error: it
		// aborts the enclosing tick via panic, the one place this core
		// uses exceptions rather than result types.
		panic("llmrouter: no provider configured")
	}
	breakers := make(map[string]*gobreaker.CircuitBreaker, len(providers))
	for _, p := range providers {
		breakers[p.Name()] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        p.Name(),
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		})
	}
	return &Router{providers: providers, breakers: breakers, logger: logger, Version: version}
}

// BreakerState exposes the current state of a provider's circuit
// breaker for observability; it never changes Call's behavior.
func (r *Router) BreakerState(name string) (gobreaker.State, bool) {
	b, ok := r.breakers[name]
	if !ok {
		return 0, false
	}
	return b.State(), true
}

// Call tries each provider in order within opts.Timeout, returning the
// first successful body. It returns "" if every provider fails or every
// breaker is open — never an error.
func (r *Router) Call(ctx context.Context, system, user string, opts CallOptions) string {
	for _, p := range r.providers {
		breaker := r.breakers[p.Name()]
		body, err := breaker.Execute(func() (interface{}, error) {
			spanCtx, span := tracer.Start(ctx, "llmrouter.Call "+p.Name())
			defer span.End()

			callCtx, cancel := context.WithTimeout(spanCtx, opts.Timeout)
			defer cancel()
			out, invokeErr := p.Invoke(callCtx, system, user, opts)
			if invokeErr != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
				return out, timeoutError(p.Name(), opts.Timeout)
			}
			return out, invokeErr
		})
		metrics.ProviderBreakerState.WithLabelValues(p.Name()).Set(float64(breaker.State()))
		if err != nil {
			metrics.LLMCallsTotal.WithLabelValues(p.Name(), "error").Inc()
			r.logger.WithError(err).WithField("provider", p.Name()).
				Warn("llmrouter: provider attempt failed, advancing")
			continue
		}
		text, ok := body.(string)
		if !ok || strings.TrimSpace(text) == "" {
			metrics.LLMCallsTotal.WithLabelValues(p.Name(), "empty").Inc()
			r.logger.WithField("provider", p.Name()).
				Warn("llmrouter: provider returned empty body, advancing")
			continue
		}
		metrics.LLMCallsTotal.WithLabelValues(p.Name(), "success").Inc()
		return text
	}
	return ""
}

// StripCodeFences removes a leading ```json / ``` fence and trailing ```
// from an LLM response; providers routinely wrap JSON bodies in Markdown
// fences despite the JSON-mode hint. The router itself never calls
// this; it is exported for callers that parse the router's raw string.
func StripCodeFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}

// timeoutError is a convenience wrapper adapters can use to make the
// advance-on-timeout intent explicit in logs.
func timeoutError(provider string, d time.Duration) error {
	return fmt.Errorf("llmrouter: provider %s exceeded timeout %s", provider, d)
}
