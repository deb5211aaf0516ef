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

	"github.com/cespare/xxhash/v2"
)

// hashPrompt is a deterministic 8-hex-char fingerprint of the system
// prompt text, truncated from xxhash's 64-bit sum.
func hashPrompt(s string) string {
	sum := xxhash.Sum64String(s)
	return fmt.Sprintf("%08x", uint32(sum))
}
