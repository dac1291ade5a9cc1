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

package commands

import (
	"time"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

// AssetPersistToBigQuery writes the FinalAsset record, exactly once and only
// after the upload succeeded, so a record never points at a remote object
// that does not exist. The record's duration is the probed duration of the
// produced file, not the sum of the requested windows.
type AssetPersistToBigQuery struct {
	cor.BaseCommand
	inserter RowInserter
}

func NewAssetPersistToBigQuery(name string, inserter RowInserter) *AssetPersistToBigQuery {
	return &AssetPersistToBigQuery{
		BaseCommand: *cor.NewBaseCommand(name),
		inserter:    inserter,
	}
}

func (c *AssetPersistToBigQuery) IsExecutable(context cor.Context) bool {
	work, ok := context.Get(c.GetInputParam()).(*MergeWork)
	return ok && work.StorageUrl != ""
}

func (c *AssetPersistToBigQuery) Execute(context cor.Context) {
	work := context.Get(c.GetInputParam()).(*MergeWork)
	work.Job.State = model.JobStatePersisting

	asset := BuildFinalAsset(work)
	if err := c.inserter.Put(context.GetContext(), asset); err != nil {
		work.Job.State = model.JobStateFailed
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &clips.UpstreamError{Op: "bigquery.insert final asset", Err: err})
		return
	}

	work.Job.State = model.JobStateDone
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), asset)
}

// BuildFinalAsset assembles the immutable record from the finished work.
func BuildFinalAsset(work *MergeWork) *model.FinalAsset {
	sourceClips := make([]*model.SourceClipRef, 0, len(work.Job.Clips))
	requestedTotal := 0.0
	for _, clip := range work.Job.Clips {
		sourceClips = append(sourceClips, &model.SourceClipRef{
			SourceId:        clip.SourceID,
			StartTime:       clip.StartTime,
			EndTime:         clip.EndTime,
			DurationSeconds: clip.Duration(),
		})
		requestedTotal += clip.Duration()
	}

	return &model.FinalAsset{
		JobId:           work.Job.JobId,
		OwnerId:         work.Job.OwnerId,
		StorageUrl:      work.StorageUrl,
		ThumbnailUrl:    work.ThumbnailUrl,
		DurationSeconds: work.ProbedDuration,
		SourceClips:     sourceClips,
		Stats: &model.MergeStats{
			TotalClips:           len(work.Job.Clips),
			TotalDurationSeconds: requestedTotal,
			ProcessingTimeMs:     time.Since(work.StartedAt).Milliseconds(),
			MergeDate:            time.Now(),
		},
	}
}
