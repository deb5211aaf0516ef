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

package llmrouter

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider calls the Anthropic Messages API directly. It is the
// first entry in the default provider order, realized as one of two
// independent Claude-compatible transports (see DESIGN.md for the
// second, Bedrock-backed provider).
type AnthropicProvider struct {
	client anthropic.Client
	model  anthropic.Model
	name   string
}

// NewAnthropicProvider builds a provider bound to apiKey/model. Callers
// omit this provider from the Router entirely when apiKey is empty.
func NewAnthropicProvider(name, apiKey, model string) *AnthropicProvider {
	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
		name:   name,
	}
}

func (p *AnthropicProvider) Name() string { return p.name }

func (p *AnthropicProvider) Invoke(ctx context.Context, system, user string, opts CallOptions) (string, error) {
	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: jsonHint(system, opts.ResponseFormat)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic provider %s: %w", p.name, err)
	}
	if len(message.Content) == 0 {
		return "", errors.New("anthropic provider: empty content blocks")
	}
	var out string
	for _, block := range message.Content {
		if text := block.Text; text != "" {
			out += text
		}
	}
	if out == "" {
		return "", errors.New("anthropic provider: empty text body")
	}
	return out, nil
}

// jsonHint appends the provider-specific instruction that elicits pure
// JSON. Anthropic has no dedicated response_mime_type flag, so the hint
// is a system-prompt instruction instead.
func jsonHint(system string, format ResponseFormat) string {
	if format != FormatJSON {
		return system
	}
	return system + "\n\nRespond with a single JSON object and nothing else. Do not wrap it in Markdown code fences."
}
