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
	"fmt"
	"math"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

// ClampMarginSeconds is how far a candidate time may drift outside the
// source bounds and still be clamped instead of rejected. Model-rounding
// drift is expected; genuine over-length requests are not.
const ClampMarginSeconds = 1.0

// Validate checks candidates against bounds and the selection constraint,
// returning validated clips or the first violation found. Checks run in
// order: non-empty array, per-clip bounds (clamping marginal drift), explicit
// duration tolerance, end-anchor threshold. Partial validation is never
// attempted.
func Validate(
	candidates []*model.CandidateClip,
	durationBySource map[string]float64,
	constraint SelectionConstraint,
) ([]*model.Clip, error) {
	if len(candidates) == 0 {
		return nil, &ValidationError{
			ClipID:   "none",
			Field:    "clips",
			Expected: "a non-empty array",
			Actual:   "empty",
		}
	}

	validated := make([]*model.Clip, 0, len(candidates))
	for i, candidate := range candidates {
		clipID := fmt.Sprintf("%d (%s)", i, candidate.SourceID)

		sourceDuration, ok := durationBySource[candidate.SourceID]
		if !ok {
			return nil, &ValidationError{
				ClipID:   clipID,
				Field:    "source_id",
				Expected: "a known source",
				Actual:   candidate.SourceID,
			}
		}

		start, end := candidate.StartTime, candidate.EndTime
		if start < 0 {
			if start < -ClampMarginSeconds {
				return nil, &ValidationError{
					ClipID:   clipID,
					Field:    "start_time",
					Expected: ">= 0",
					Actual:   fmt.Sprintf("%.2f", start),
				}
			}
			start = 0
		}
		if end > sourceDuration {
			if end > sourceDuration+ClampMarginSeconds {
				return nil, &ValidationError{
					ClipID:   clipID,
					Field:    "end_time",
					Expected: fmt.Sprintf("<= source duration %.2f", sourceDuration),
					Actual:   fmt.Sprintf("%.2f", end),
				}
			}
			end = sourceDuration
		}
		if start >= end {
			return nil, &ValidationError{
				ClipID:   clipID,
				Field:    "start_time",
				Expected: fmt.Sprintf("< end_time %.2f", end),
				Actual:   fmt.Sprintf("%.2f", start),
			}
		}

		if constraint.ExplicitDurationSeconds != nil {
			want := *constraint.ExplicitDurationSeconds
			got := end - start
			if math.Abs(got-want) > DurationToleranceSeconds {
				return nil, &ValidationError{
					ClipID:   clipID,
					Field:    "duration",
					Expected: fmt.Sprintf("%.2fs +/- %.2fs", want, DurationToleranceSeconds),
					Actual:   fmt.Sprintf("%.2fs", got),
				}
			}
		}

		if constraint.RequireFromEnd {
			threshold := EndAnchorFraction * sourceDuration
			if start < threshold {
				return nil, &ValidationError{
					ClipID:   clipID,
					Field:    "start_time",
					Expected: fmt.Sprintf(">= %.2f (80%% of %.2f)", threshold, sourceDuration),
					Actual:   fmt.Sprintf("%.2f", start),
				}
			}
		}

		validated = append(validated, &model.Clip{
			SourceID:       candidate.SourceID,
			TranscriptText: candidate.TranscriptText,
			StartTime:      start,
			EndTime:        end,
		})
	}
	return validated, nil
}

// DefaultFallbackSeconds is the synthesized clip length when the instruction
// named no explicit duration.
const DefaultFallbackSeconds = 11.0

// SynthesizeFallback deterministically builds the one clip the selection
// pipeline returns after generation has exhausted every attempt: the final
// explicit-duration (or default) seconds of the primary source, clamped to
// the source bounds. The result always passes Validate for the same
// constraint, which is what makes it a safe terminal state.
func SynthesizeFallback(primary *model.SourceTranscript, constraint SelectionConstraint) *model.Clip {
	seconds := DefaultFallbackSeconds
	if constraint.ExplicitDurationSeconds != nil {
		seconds = *constraint.ExplicitDurationSeconds
	}
	start := primary.DurationSeconds - seconds
	if start < 0 {
		start = 0
	}
	return &model.Clip{
		SourceID:  primary.SourceID,
		StartTime: start,
		EndTime:   primary.DurationSeconds,
	}
}
