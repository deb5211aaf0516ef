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

package digest

import (
	"fmt"
	"strings"

	"github.com/signalradar/core/pkg/radar/types"
)

// renderTemplate is the no-LLM fallback: signals arrive already sorted
// desc by value_score from the store; render a single Markdown message
// with a header and a numbered list.
func renderTemplate(title string, signals []types.Signal) (string, []types.DigestSignalRef) {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", title)

	refs := make([]types.DigestSignalRef, 0, len(signals))
	for i, s := range signals {
		rank := i + 1
		fmt.Fprintf(&b, "%d. **%s** [%s] %s\n", rank, s.Title, s.Source, stars(s.ValueScore))
		fmt.Fprintf(&b, "   %s\n", s.SummaryZH)
		fmt.Fprintf(&b, "   %s\n\n", s.Link)
		refs = append(refs, types.DigestSignalRef{SignalID: s.ID, Rank: rank, Section: types.SectionFull})
	}
	return strings.TrimRight(b.String(), "\n"), refs
}

func stars(valueScore int) string {
	if valueScore < 1 {
		valueScore = 1
	}
	if valueScore > 5 {
		valueScore = 5
	}
	return strings.Repeat("★", valueScore) + strings.Repeat("☆", 5-valueScore)
}
