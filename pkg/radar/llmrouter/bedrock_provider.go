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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// bedrockRequest is Anthropic's "bedrock" wire schema, the shape Bedrock
// expects in the InvokeModel body when the model family is a Claude
// model served through Bedrock.
type bedrockRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	System           string             `json:"system,omitempty"`
	Messages         []bedrockMessage   `json:"messages"`
}

type bedrockMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type bedrockResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// BedrockProvider calls a Claude model through AWS Bedrock's
// InvokeModel API — a second, independently-operated transport to the
// same model family as AnthropicProvider, giving the router genuine
// provider redundancy when chained behind it.
type BedrockProvider struct {
	client  *bedrockruntime.Client
	modelID string
	name    string
}

// NewBedrockProvider builds a provider bound to an AWS SDK config and
// Bedrock model id (e.g. "anthropic.claude-3-5-sonnet-20241022-v2:0").
func NewBedrockProvider(name string, cfg aws.Config, modelID string) *BedrockProvider {
	return &BedrockProvider{
		client:  bedrockruntime.NewFromConfig(cfg),
		modelID: modelID,
		name:    name,
	}
}

func (p *BedrockProvider) Name() string { return p.name }

func (p *BedrockProvider) Invoke(ctx context.Context, system, user string, opts CallOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	body, err := json.Marshal(bedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        maxTokens,
		System:           jsonHint(system, opts.ResponseFormat),
		Messages: []bedrockMessage{
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("bedrock provider %s: marshal request: %w", p.name, err)
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock provider %s: %w", p.name, err)
	}
	if len(out.Body) == 0 {
		return "", errors.New("bedrock provider: empty response body")
	}

	var resp bedrockResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("bedrock provider %s: malformed structural wrapper: %w", p.name, err)
	}
	var text string
	for _, block := range resp.Content {
		text += block.Text
	}
	if text == "" {
		return "", errors.New("bedrock provider: empty text body")
	}
	return text, nil
}
