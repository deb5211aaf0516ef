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

// Package chat defines the chat collaborator boundary: the core only
// ever hands over messages[]; formatting and delivery semantics beyond
// that are this package's adapters' concern, not the core's.
package chat

import "context"

// Sender delivers a fully-composed digest's messages. At-least-once
// delivery is this collaborator's responsibility, not the core's.
type Sender interface {
	Send(ctx context.Context, messages []string) error
}
