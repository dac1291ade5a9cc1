// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package clips

import (
	"encoding/json"
	"strings"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

// ExtractJSONArray finds the first well-formed top-level JSON array in raw
// and returns it, tolerating surrounding prose and markdown fences. Returns
// an empty string when no array can be found.
func ExtractJSONArray(raw string) string {
	for start := strings.IndexByte(raw, '['); start >= 0; {
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(raw); i++ {
			ch := raw[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case ch == '\\':
					escaped = true
				case ch == '"':
					inString = false
				}
				continue
			}
			switch ch {
			case '"':
				inString = true
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					candidate := raw[start : i+1]
					if json.Valid([]byte(candidate)) {
						return candidate
					}
					// Unbalanced-but-closed garbage; look past it.
					i = len(raw)
				}
			}
		}
		next := strings.IndexByte(raw[start+1:], '[')
		if next < 0 {
			break
		}
		start = start + 1 + next
	}
	return ""
}

// ParseCandidates leniently parses a generation response into candidate
// clips. It never returns an error: unusable responses yield nil so callers
// can treat a failed parse uniformly as an empty result.
func ParseCandidates(raw string) []*model.CandidateClip {
	extracted := ExtractJSONArray(raw)
	if extracted == "" {
		return nil
	}
	var candidates []*model.CandidateClip
	if err := json.Unmarshal([]byte(extracted), &candidates); err != nil {
		return nil
	}
	return candidates
}

// AppendRollingContext appends newly parsed candidates to the rolling
// accumulator and truncates it to limit, keeping the most recent entries.
func AppendRollingContext(rolling []*model.CandidateClip, parsed []*model.CandidateClip, limit int) []*model.CandidateClip {
	rolling = append(rolling, parsed...)
	if limit > 0 && len(rolling) > limit {
		rolling = rolling[len(rolling)-limit:]
	}
	return rolling
}

// RollingContextCap bounds the cross-chunk candidate buffer to the most
// recent entries.
const RollingContextCap = 30
