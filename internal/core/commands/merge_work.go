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
	"context"
	"time"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

// MergeWork is the payload threaded through the merge chain: the job, its
// resolved inputs, and the artifacts each state produces.
type MergeWork struct {
	Job            *model.MergeJob
	Resolved       []*model.ResolvedClip
	OutputPath     string
	ThumbnailPath  string
	ProbedDuration float64
	StorageUrl     string
	ThumbnailUrl   string
	StartedAt      time.Time
}

// SourceVideoLookup is the slice of the video service the resolver needs.
type SourceVideoLookup interface {
	GetSourceVideo(ctx context.Context, id string) (*model.SourceVideo, error)
}

// BlobStore is the durable-storage surface the upload command depends on.
// Put copies a local file to the bucket and returns its remote URL.
type BlobStore interface {
	Put(ctx context.Context, localPath string, bucket string, objectName string, contentType string) (string, error)
}

// RowInserter matches bigquery.Inserter's Put, so tests can capture rows
// without a live dataset.
type RowInserter interface {
	Put(ctx context.Context, src any) error
}
