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

package chat

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// SlackSender posts each digest message as an individual Slack message
// to a fixed channel, preserving the "[消息 i/N]" ordering the composer
// already stamped into each element.
type SlackSender struct {
	client    *slack.Client
	channelID string
}

// NewSlackSender builds a SlackSender bound to a bot token and channel.
func NewSlackSender(botToken, channelID string) *SlackSender {
	return &SlackSender{client: slack.New(botToken), channelID: channelID}
}

func (s *SlackSender) Send(ctx context.Context, messages []string) error {
	for i, msg := range messages {
		if msg == "" {
			continue
		}
		_, _, err := s.client.PostMessageContext(ctx, s.channelID, slack.MsgOptionText(msg, false))
		if err != nil {
			return fmt.Errorf("chat: slack post message %d/%d: %w", i+1, len(messages), err)
		}
	}
	return nil
}
