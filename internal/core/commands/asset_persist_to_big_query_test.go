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

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/commands"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

// captureInserter records rows instead of writing to BigQuery.
type captureInserter struct {
	rows []any
	err  error
}

func (i *captureInserter) Put(_ context.Context, src any) error {
	if i.err != nil {
		return i.err
	}
	i.rows = append(i.rows, src)
	return nil
}

func mergeWorkFixture() *commands.MergeWork {
	return &commands.MergeWork{
		Job: &model.MergeJob{
			JobId:   "job-1",
			OwnerId: "user-1",
			Clips: []*model.Clip{
				{SourceID: "src-1", StartTime: 10, EndTime: 15},
				{SourceID: "src-2", StartTime: 0, EndTime: 5},
			},
			State: model.JobStateUploading,
		},
		ProbedDuration: 10.4,
		StorageUrl:     "https://storage.mtls.cloud.google.com/assets/merges/job-1/merged.mp4",
		ThumbnailUrl:   "https://storage.mtls.cloud.google.com/assets/merges/job-1/thumbnail.jpg",
		StartedAt:      time.Now().Add(-3 * time.Second),
	}
}

func TestBuildFinalAssetUsesProbedDuration(t *testing.T) {
	asset := commands.BuildFinalAsset(mergeWorkFixture())

	// Probed duration wins over the sum of the requested windows.
	assert.InDelta(t, 10.4, asset.DurationSeconds, 0.0001)
	assert.InDelta(t, 10.0, asset.Stats.TotalDurationSeconds, 0.0001)
	assert.Equal(t, 2, asset.Stats.TotalClips)
	assert.GreaterOrEqual(t, asset.Stats.ProcessingTimeMs, int64(3000))

	require.Len(t, asset.SourceClips, 2)
	assert.Equal(t, "src-1", asset.SourceClips[0].SourceId)
	assert.InDelta(t, 5, asset.SourceClips[0].DurationSeconds, 0.0001)
}

func TestAssetPersistWritesOnceAndMarksDone(t *testing.T) {
	inserter := &captureInserter{}
	persist := commands.NewAssetPersistToBigQuery("write-to-bigquery", inserter)

	work := mergeWorkFixture()
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, work)

	require.True(t, persist.IsExecutable(chainCtx))
	persist.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	require.Len(t, inserter.rows, 1)
	assert.Equal(t, model.JobStateDone, work.Job.State)

	asset := chainCtx.Get(cor.CtxOut).(*model.FinalAsset)
	assert.Equal(t, "job-1", asset.JobId)
}

func TestAssetPersistNotExecutableBeforeUpload(t *testing.T) {
	persist := commands.NewAssetPersistToBigQuery("write-to-bigquery", &captureInserter{})

	work := mergeWorkFixture()
	work.StorageUrl = ""
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, work)

	assert.False(t, persist.IsExecutable(chainCtx))
}

func TestAssetPersistInsertFailureIsUpstreamError(t *testing.T) {
	inserter := &captureInserter{err: errors.New("quota")}
	persist := commands.NewAssetPersistToBigQuery("write-to-bigquery", inserter)

	work := mergeWorkFixture()
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, work)

	persist.Execute(chainCtx)
	require.True(t, chainCtx.HasErrors())
	assert.Equal(t, model.JobStateFailed, work.Job.State)

	var upstream *clips.UpstreamError
	assert.ErrorAs(t, chainCtx.GetErrors()["write-to-bigquery"], &upstream)
}
