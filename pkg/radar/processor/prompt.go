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

package processor

import "fmt"

// summarizeSystemPrompt is the fixed system prompt for the summarize+
// score call: the 5-dimension rubric plus strict JSON keys.
const summarizeSystemPrompt = `You are an information-radar analyst. Score the candidate item on five
dimensions, each an integer from 1 to 5:
  - innovation: how novel is the idea or approach
  - relevance: how relevant to a technology/product audience
  - actionability: how directly actionable is the information
  - signal_strength: how strong/credible is the underlying signal
  - timeliness: how time-sensitive is the item

Respond with a single JSON object and nothing else, using exactly these
keys:
{
  "summary_zh": "150-250 Chinese-language characters, not truncated mid-sentence",
  "score_breakdown": {
    "innovation": 1-5,
    "relevance": 1-5,
    "actionability": 1-5,
    "signal_strength": 1-5,
    "timeliness": 1-5
  },
  "score_confidence": 0.0-1.0,
  "score_reasoning": "<=200 characters",
  "uncertainty_reason": "optional, required iff score_confidence < 0.8",
  "key_points": ["0 to 3 short strings"],
  "target_audience": "short string"
}`

func summarizeUserPrompt(title, source, link string) string {
	return fmt.Sprintf("title: %s\nsource: %s\nlink: %s", title, source, link)
}
