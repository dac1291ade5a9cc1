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

package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-clip-composer/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/services"
)

type cannedGenerator struct{ response string }

func (g *cannedGenerator) GenerateText(_ context.Context, _ string, _ *float32) (string, error) {
	return g.response, nil
}

type mapLookup map[string]*model.SourceVideo

func (l mapLookup) GetSourceVideo(_ context.Context, id string) (*model.SourceVideo, error) {
	video, ok := l[id]
	if !ok {
		return nil, fmt.Errorf("source video %s not found", id)
	}
	return video, nil
}

type noopStore struct{}

func (noopStore) Put(_ context.Context, _ string, bucket string, objectName string, _ string) (string, error) {
	return cloud.GCSURLPrefix + bucket + "/" + objectName, nil
}

type noopInserter struct{}

func (noopInserter) Put(_ context.Context, _ any) error { return nil }

func TestClipServiceSelectClips(t *testing.T) {
	generator := &cannedGenerator{
		response: `[{"source_id":"src-1","transcript_text":"end","start_time":92.0,"end_time":100.0}]`,
	}
	service := services.NewClipService(cloud.NewConfig(), generator)

	result, err := service.SelectClips(context.Background(), &model.SelectionRequest{
		Instruction: "give me an 8 second clip from the end",
		Sources: []*model.SourceTranscript{{
			SourceID:        "src-1",
			DurationSeconds: 100,
			Segments:        []*model.TranscriptSegment{{Text: "end", StartTime: 90, EndTime: 100}},
		}},
	})

	require.NoError(t, err)
	assert.False(t, result.UsedFallback)
	require.Len(t, result.Clips, 1)
	assert.InDelta(t, 8, result.Clips[0].Duration(), 0.05)
}

func TestClipServiceRejectsEmptyRequests(t *testing.T) {
	service := services.NewClipService(cloud.NewConfig(), &cannedGenerator{response: "[]"})

	_, err := service.SelectClips(context.Background(), &model.SelectionRequest{
		Instruction: "anything",
	})
	require.Error(t, err)
}

func TestMergeServiceSurfacesResolutionFailures(t *testing.T) {
	config := cloud.NewConfig()
	config.Storage.UploadRoot = t.TempDir()
	lookup := mapLookup{"src-1": {Id: "src-1", StoragePath: "missing.mp4"}}
	service := services.NewMergeService(config, lookup, noopStore{}, noopInserter{})

	_, err := service.MergeClips(context.Background(), &model.MergeRequest{
		OwnerId: "user-1",
		Clips:   []*model.Clip{{SourceID: "src-1", StartTime: 0, EndTime: 5}},
	})

	require.Error(t, err)
	var notFound *clips.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestMessagePipelineSharesTheMergeGate(t *testing.T) {
	config := cloud.NewConfig()
	config.Merge.MaxConcurrent = 1
	config.Storage.UploadRoot = t.TempDir()
	lookup := mapLookup{"src-1": {Id: "src-1", StoragePath: "missing.mp4"}}
	service := services.NewMergeService(config, lookup, noopStore{}, noopInserter{})
	handler := service.MessagePipeline()
	payload := `{"owner_id":"user-1","clips":[{"source_id":"src-1","start_time":0,"end_time":5}]}`

	// With the only slot held, a cancelled message gives up without ever
	// starting the pipeline.
	release := service.Acquire()
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	gatedCtx := cor.NewBaseContext()
	gatedCtx.SetContext(cancelled)
	gatedCtx.Add(cor.CtxIn, payload)
	handler.Execute(gatedCtx)
	require.True(t, gatedCtx.HasErrors())
	assert.Empty(t, gatedCtx.GetTempFiles(), "no work dir may exist before the gate opens")
	release()

	// With the slot free the same handler runs the pipeline: the payload is
	// parsed into a job (work dir registered) and resolution fails on the
	// missing source file.
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, payload)
	defer chainCtx.Close()

	handler.Execute(chainCtx)
	assert.NotEmpty(t, chainCtx.GetTempFiles())
	require.True(t, chainCtx.HasErrors())
	var notFound *clips.NotFoundError
	assert.ErrorAs(t, chainCtx.GetErrors()["resolve-clip-sources"], &notFound)
}

func TestMergeServiceHonorsContextWhileGated(t *testing.T) {
	config := cloud.NewConfig()
	config.Merge.MaxConcurrent = 1
	service := services.NewMergeService(config, mapLookup{}, noopStore{}, noopInserter{})

	// Fill the gate, then a cancelled caller must not wait.
	release := service.Acquire()
	defer release()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := service.MergeClips(cancelled, &model.MergeRequest{
		OwnerId: "user-1",
		Clips:   []*model.Clip{{SourceID: "src-1", StartTime: 0, EndTime: 5}},
	})
	assert.ErrorIs(t, err, context.Canceled)
}
