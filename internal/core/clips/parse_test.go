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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

func TestParseCandidatesBareArray(t *testing.T) {
	raw := `[{"source_id":"src-1","transcript_text":"hello","start_time":1.5,"end_time":4.0}]`
	candidates := clips.ParseCandidates(raw)
	require.Len(t, candidates, 1)
	assert.Equal(t, "src-1", candidates[0].SourceID)
	assert.InDelta(t, 1.5, candidates[0].StartTime, 0.0001)
}

func TestParseCandidatesTolleratesProseAndFences(t *testing.T) {
	raw := "Sure! Here are the clips you asked for:\n```json\n" +
		`[{"source_id":"src-2","transcript_text":"quote","start_time":10,"end_time":18}]` +
		"\n```\nLet me know if you need anything else."
	candidates := clips.ParseCandidates(raw)
	require.Len(t, candidates, 1)
	assert.Equal(t, "src-2", candidates[0].SourceID)
}

func TestParseCandidatesNestedArraysInsideObjects(t *testing.T) {
	raw := `noise [broken then the real one: ` +
		`[{"source_id":"src-3","transcript_text":"a [bracketed] quote","start_time":0,"end_time":3}]`
	candidates := clips.ParseCandidates(raw)
	require.Len(t, candidates, 1)
	assert.Equal(t, "a [bracketed] quote", candidates[0].TranscriptText)
}

func TestParseCandidatesMalformedReturnsNil(t *testing.T) {
	assert.Nil(t, clips.ParseCandidates("I could not find anything relevant."))
	assert.Nil(t, clips.ParseCandidates(`{"not":"an array"}`))
	assert.Nil(t, clips.ParseCandidates(""))
}

func TestExtractJSONArrayFindsFirstValid(t *testing.T) {
	raw := `prefix [1, 2, 3] suffix [4]`
	assert.Equal(t, "[1, 2, 3]", clips.ExtractJSONArray(raw))
}

func TestAppendRollingContextCapsAtLimit(t *testing.T) {
	var rolling []*model.CandidateClip
	for i := 0; i < 5; i++ {
		batch := make([]*model.CandidateClip, 10)
		for j := range batch {
			batch[j] = &model.CandidateClip{SourceID: "src", StartTime: float64(i*10 + j)}
		}
		rolling = clips.AppendRollingContext(rolling, batch, clips.RollingContextCap)
	}
	require.Len(t, rolling, clips.RollingContextCap)
	// Most recent entries survive: the last batch ended at start 49.
	assert.InDelta(t, 49, rolling[len(rolling)-1].StartTime, 0.0001)
	assert.InDelta(t, 20, rolling[0].StartTime, 0.0001)
}
