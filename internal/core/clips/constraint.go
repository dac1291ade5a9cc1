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
	"regexp"
	"strconv"
	"strings"
)

// SelectionConstraint is what the free-text instruction pins down
// numerically. A nil ExplicitDurationSeconds means the instruction named no
// duration; RequireFromEnd means the clip must start within the final 20% of
// the source.
type SelectionConstraint struct {
	ExplicitDurationSeconds *float64
	RequireFromEnd          bool
}

// durationPattern matches phrasings like "8 second", "11.5 seconds", "20s",
// "90 sec". The first match wins; multi-duration phrasing is out of contract.
var durationPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)[\s-]*(?:seconds?|secs?|s)\b`)

// minutePattern handles the minute phrasings ("2 minutes", "1.5-minute",
// "3 min"), converted to seconds. Checked only when no seconds phrasing
// matched.
var minutePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)[\s-]*(?:minutes?|mins?|m)\b`)

// endAnchorPattern looks for the words that anchor a request to the tail of
// the footage.
var endAnchorPattern = regexp.MustCompile(`(?i)\b(?:end|ending|last|final)\b`)

// ParseConstraint derives the numeric constraint from a free-text
// instruction with a single duration regex and a keyword check. An
// instruction that matches neither heuristic yields the zero constraint;
// unparsable instructions are never rejected.
func ParseConstraint(instruction string) SelectionConstraint {
	constraint := SelectionConstraint{}

	if m := durationPattern.FindStringSubmatch(instruction); m != nil {
		if seconds, err := strconv.ParseFloat(m[1], 64); err == nil && seconds > 0 {
			constraint.ExplicitDurationSeconds = &seconds
		}
	} else if m := minutePattern.FindStringSubmatch(instruction); m != nil {
		if minutes, err := strconv.ParseFloat(m[1], 64); err == nil && minutes > 0 {
			seconds := minutes * 60
			constraint.ExplicitDurationSeconds = &seconds
		}
	}
	constraint.RequireFromEnd = endAnchorPattern.MatchString(strings.ToLower(instruction))

	return constraint
}
