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
	"iter"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

const (
	// DefaultMaxTokensPerChunk is the per-call token ceiling when the
	// config does not override it.
	DefaultMaxTokensPerChunk = 40000

	// TokenHeadroom is subtracted from the ceiling up front to leave room
	// for prompt scaffolding and prior-chunk context.
	TokenHeadroom = 5000
)

// SegmentTokenCost approximates a segment's token cost as the length of its
// JSON form divided by four, rounded up. The approximation only needs to be
// deterministic and monotonic so chunk boundaries are reproducible.
func SegmentTokenCost(segment *model.TranscriptSegment) int {
	raw, err := json.Marshal(segment)
	if err != nil {
		// Marshal of a plain struct cannot fail; keep a sane floor anyway.
		return 1
	}
	return (len(raw) + 3) / 4
}

// ChunkSegments greedily partitions segments into ordered chunks that each
// fit maxTokensPerChunk minus the headroom. A segment whose cost alone
// exceeds the effective ceiling becomes a one-element chunk rather than
// being dropped or truncated. The returned sequence is lazy and single-use;
// concatenating every yielded chunk reproduces the input exactly.
func ChunkSegments(segments []*model.TranscriptSegment, maxTokensPerChunk int) iter.Seq[[]*model.TranscriptSegment] {
	if maxTokensPerChunk <= 0 {
		maxTokensPerChunk = DefaultMaxTokensPerChunk
	}
	ceiling := maxTokensPerChunk - TokenHeadroom
	if ceiling < 1 {
		ceiling = 1
	}

	return func(yield func([]*model.TranscriptSegment) bool) {
		var current []*model.TranscriptSegment
		used := 0

		for _, segment := range segments {
			cost := SegmentTokenCost(segment)
			if len(current) > 0 && used+cost > ceiling {
				if !yield(current) {
					return
				}
				current = nil
				used = 0
			}
			current = append(current, segment)
			used += cost
		}
		if len(current) > 0 {
			yield(current)
		}
	}
}
