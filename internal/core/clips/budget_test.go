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

package clips_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

func makeSegments(count int, textLen int) []*model.TranscriptSegment {
	segments := make([]*model.TranscriptSegment, 0, count)
	for i := 0; i < count; i++ {
		segments = append(segments, &model.TranscriptSegment{
			Text:      strings.Repeat("x", textLen) + fmt.Sprintf(" #%d", i),
			StartTime: float64(i * 10),
			EndTime:   float64(i*10 + 10),
		})
	}
	return segments
}

func collectChunks(segments []*model.TranscriptSegment, ceiling int) [][]*model.TranscriptSegment {
	var chunks [][]*model.TranscriptSegment
	for chunk := range clips.ChunkSegments(segments, ceiling) {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func TestChunkSegmentsPreservesOrderAndContent(t *testing.T) {
	segments := makeSegments(50, 200)

	// A ceiling just above the headroom forces many small chunks.
	chunks := collectChunks(segments, clips.TokenHeadroom+150)
	require.Greater(t, len(chunks), 1)

	var rejoined []*model.TranscriptSegment
	for _, chunk := range chunks {
		rejoined = append(rejoined, chunk...)
	}
	require.Len(t, rejoined, len(segments))
	for i := range segments {
		assert.Same(t, segments[i], rejoined[i])
	}
}

func TestChunkSegmentsOversizedSegmentKeptAlone(t *testing.T) {
	segments := []*model.TranscriptSegment{
		{Text: "short", StartTime: 0, EndTime: 1},
		{Text: strings.Repeat("y", 5000), StartTime: 1, EndTime: 2},
		{Text: "tail", StartTime: 2, EndTime: 3},
	}

	// Effective ceiling is far below the big segment's cost.
	chunks := collectChunks(segments, clips.TokenHeadroom+100)

	require.Len(t, chunks, 3)
	assert.Equal(t, "short", chunks[0][0].Text)
	require.Len(t, chunks[1], 1)
	assert.Equal(t, segments[1], chunks[1][0])
	assert.Equal(t, "tail", chunks[2][0].Text)
}

func TestChunkSegmentsSingleChunkWhenEverythingFits(t *testing.T) {
	segments := makeSegments(5, 20)
	chunks := collectChunks(segments, clips.DefaultMaxTokensPerChunk)
	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0], 5)
}

func TestChunkSegmentsEmptyInput(t *testing.T) {
	assert.Empty(t, collectChunks(nil, clips.DefaultMaxTokensPerChunk))
}

func TestSegmentTokenCostMonotonic(t *testing.T) {
	short := &model.TranscriptSegment{Text: "a"}
	long := &model.TranscriptSegment{Text: strings.Repeat("a", 400)}
	assert.Greater(t, clips.SegmentTokenCost(long), clips.SegmentTokenCost(short))
	assert.Equal(t, clips.SegmentTokenCost(short), clips.SegmentTokenCost(short))
}
