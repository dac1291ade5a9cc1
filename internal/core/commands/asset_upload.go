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
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

// AssetUpload pushes the merged video and its thumbnail to durable storage.
// A failed video upload is fatal to the job; a failed thumbnail upload only
// loses the thumbnail. Local files stay registered for cleanup either way.
type AssetUpload struct {
	cor.BaseCommand
	store           BlobStore
	assetBucket     string
	thumbnailBucket string
}

func NewAssetUpload(name string, store BlobStore, assetBucket string, thumbnailBucket string) *AssetUpload {
	if thumbnailBucket == "" {
		thumbnailBucket = assetBucket
	}
	return &AssetUpload{
		BaseCommand:     *cor.NewBaseCommand(name),
		store:           store,
		assetBucket:     assetBucket,
		thumbnailBucket: thumbnailBucket,
	}
}

func (c *AssetUpload) IsExecutable(context cor.Context) bool {
	work, ok := context.Get(c.GetInputParam()).(*MergeWork)
	return ok && work.OutputPath != ""
}

func (c *AssetUpload) Execute(context cor.Context) {
	work := context.Get(c.GetInputParam()).(*MergeWork)
	work.Job.State = model.JobStateUploading

	videoObject := fmt.Sprintf("merges/%s/%s", work.Job.JobId, MergedFileName)
	url, err := c.store.Put(context.GetContext(), work.OutputPath, c.assetBucket, videoObject, "video/mp4")
	if err != nil {
		work.Job.State = model.JobStateFailed
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &clips.UpstreamError{Op: "storage.put merged video", Err: err})
		return
	}
	work.StorageUrl = url

	if work.ThumbnailPath != "" {
		thumbObject := fmt.Sprintf("merges/%s/%s", work.Job.JobId, ThumbnailFileName)
		thumbUrl, err := c.store.Put(context.GetContext(), work.ThumbnailPath, c.thumbnailBucket, thumbObject, "image/jpeg")
		if err != nil {
			slog.Warn("thumbnail upload failed, continuing without it",
				"job", work.Job.JobId, "error", err)
		} else {
			work.ThumbnailUrl = thumbUrl
		}
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), work)
}
