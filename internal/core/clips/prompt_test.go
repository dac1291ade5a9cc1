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

func testChunk() []*model.TranscriptSegment {
	return []*model.TranscriptSegment{
		{Text: "welcome to the show", StartTime: 0, EndTime: 4, Speaker: "host"},
		{Text: "thanks for having me", StartTime: 4, EndTime: 7},
	}
}

func TestBuildScanPromptIncludesChunkAndContext(t *testing.T) {
	builder, err := clips.NewPromptBuilder("", "")
	require.NoError(t, err)

	rolling := []*model.CandidateClip{
		{SourceID: "src-1", TranscriptText: "earlier highlight", StartTime: 2, EndTime: 5},
	}
	prompt, err := builder.BuildScanPrompt(0, 3, testChunk(), rolling, "clips about the interview")
	require.NoError(t, err)

	assert.Contains(t, prompt, "part 1 of 3")
	assert.Contains(t, prompt, "welcome to the show")
	assert.Contains(t, prompt, "host")
	assert.Contains(t, prompt, "earlier highlight")
	assert.Contains(t, prompt, "clips about the interview")
	assert.Contains(t, prompt, "VERBATIM")
}

func TestBuildFinalPromptStatesExplicitConstraints(t *testing.T) {
	builder, err := clips.NewPromptBuilder("", "")
	require.NoError(t, err)

	constraint := clips.SelectionConstraint{ExplicitDurationSeconds: ptr(8), RequireFromEnd: true}
	prompt, err := builder.BuildFinalPrompt(2, 3, testChunk(), nil, "8 seconds from the end", constraint)
	require.NoError(t, err)

	assert.Contains(t, prompt, "8.00 seconds")
	assert.Contains(t, prompt, "0.05 seconds")
	assert.Contains(t, prompt, "80%")
	assert.Contains(t, prompt, "JSON array")
}

func TestBuildFinalPromptUnconstrainedRange(t *testing.T) {
	builder, err := clips.NewPromptBuilder("", "")
	require.NoError(t, err)

	prompt, err := builder.BuildFinalPrompt(0, 1, testChunk(), nil, "something great", clips.SelectionConstraint{})
	require.NoError(t, err)
	assert.Contains(t, prompt, "between 3 and 60 seconds")
}

func TestNewPromptBuilderRejectsBadTemplate(t *testing.T) {
	_, err := clips.NewPromptBuilder("{{ .Unclosed", "")
	assert.Error(t, err)
}

func TestConfiguredTemplatesOverrideDefaults(t *testing.T) {
	builder, err := clips.NewPromptBuilder("SCAN {{ .ChunkNumber }}", "FINAL {{ .ConstraintText }}")
	require.NoError(t, err)

	scan, err := builder.BuildScanPrompt(1, 4, nil, nil, "x")
	require.NoError(t, err)
	assert.Equal(t, "SCAN 2", scan)
}
