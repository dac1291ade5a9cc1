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

package workflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-clip-composer/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/workflow"
)

// scriptedGenerator replays canned responses and records the temperatures
// it was called with.
type scriptedGenerator struct {
	responses    []string
	calls        int
	temperatures []*float32
}

func (g *scriptedGenerator) GenerateText(_ context.Context, _ string, temperature *float32) (string, error) {
	g.temperatures = append(g.temperatures, temperature)
	response := g.responses[len(g.responses)-1]
	if g.calls < len(g.responses) {
		response = g.responses[g.calls]
	}
	g.calls++
	return response, nil
}

func endAnchoredRequest() *model.SelectionRequest {
	return &model.SelectionRequest{
		Instruction: "give me an 8 second clip from the end",
		Sources: []*model.SourceTranscript{{
			SourceID:        "src-1",
			DurationSeconds: 100,
			Segments: []*model.TranscriptSegment{
				{Text: "a", StartTime: 0, EndTime: 10},
				{Text: "b", StartTime: 10, EndTime: 20},
				{Text: "end part", StartTime: 90, EndTime: 100},
			},
		}},
	}
}

func runSelection(t *testing.T, generator cloud.TextGenerator, request *model.SelectionRequest) *model.SelectionResult {
	t.Helper()
	pipeline := workflow.NewClipSelectionWorkflow(cloud.NewConfig(), generator)

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, request)
	defer chainCtx.Close()

	pipeline.Execute(chainCtx)
	require.False(t, chainCtx.HasErrors())

	// The chain pipes the last command's output back into CtxIn.
	result, ok := chainCtx.Get(cor.CtxIn).(*model.SelectionResult)
	require.True(t, ok, "pipeline must always produce a result")
	return result
}

func TestSelectionEndToEndEightSecondsFromTheEnd(t *testing.T) {
	generator := &scriptedGenerator{responses: []string{
		`[{"source_id":"src-1","transcript_text":"end part","start_time":91.0,"end_time":99.0}]`,
	}}

	result := runSelection(t, generator, endAnchoredRequest())

	assert.False(t, result.UsedFallback)
	require.Len(t, result.Clips, 1)
	clip := result.Clips[0]
	assert.GreaterOrEqual(t, clip.StartTime, 80.0)
	assert.InDelta(t, 8, clip.Duration(), 0.05)

	// A transcript this small fits one chunk: a single committing call,
	// leaning deterministic.
	assert.Equal(t, 1, generator.calls)
	require.NotNil(t, generator.temperatures[0])
	assert.InDelta(t, 0.2, *generator.temperatures[0], 0.0001)
}

func TestSelectionMalformedResponsesFallBack(t *testing.T) {
	generator := &scriptedGenerator{responses: []string{"I'm sorry, I can't produce JSON today."}}

	result := runSelection(t, generator, endAnchoredRequest())

	assert.True(t, result.UsedFallback)
	require.Len(t, result.Clips, 1)
	clip := result.Clips[0]
	assert.Equal(t, "src-1", clip.SourceID)
	assert.InDelta(t, 8, clip.Duration(), 0.0001)
	assert.InDelta(t, 92, clip.StartTime, 0.0001)
	assert.InDelta(t, 100, clip.EndTime, 0.0001)

	// One low-temperature attempt plus two minimum-temperature retries.
	require.Equal(t, 3, generator.calls)
	assert.InDelta(t, 0.0, *generator.temperatures[1], 0.0001)
	assert.InDelta(t, 0.0, *generator.temperatures[2], 0.0001)
}

func TestSelectionFallbackDefaultsToElevenSeconds(t *testing.T) {
	generator := &scriptedGenerator{responses: []string{"no json here"}}
	request := endAnchoredRequest()
	request.Instruction = "give me a clip about the good part"

	result := runSelection(t, generator, request)

	assert.True(t, result.UsedFallback)
	require.Len(t, result.Clips, 1)
	assert.InDelta(t, 11, result.Clips[0].Duration(), 0.0001)
}

func TestSelectionValidationFailureRetriesThenRecovers(t *testing.T) {
	// First answer violates the end anchor; the retry fixes it.
	generator := &scriptedGenerator{responses: []string{
		`[{"source_id":"src-1","transcript_text":"b","start_time":10.0,"end_time":18.0}]`,
		`[{"source_id":"src-1","transcript_text":"end part","start_time":92.0,"end_time":100.0}]`,
	}}

	result := runSelection(t, generator, endAnchoredRequest())

	assert.False(t, result.UsedFallback)
	require.Len(t, result.Clips, 1)
	assert.GreaterOrEqual(t, result.Clips[0].StartTime, 80.0)
	assert.Equal(t, 2, generator.calls)
}
