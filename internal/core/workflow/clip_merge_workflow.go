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

// Package workflow defines the high-level orchestrations. This file
// implements the merge workflow: resolve every clip, trim and concatenate
// in one ffmpeg pass, verify the artifact, capture a thumbnail, upload, and
// persist the final record. Temp paths registered along the way are removed
// by the caller closing the context, on success and failure alike.
package workflow

import (
	"time"

	"github.com/jaycherian/gcp-go-clip-composer/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/commands"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/cor"
)

// ClipMergeWorkflow runs one merge job through the full pipeline. The
// input under cor.CtxIn is a *commands.MergeWork when driven by the merge
// service, or a raw JSON merge-request string when driven by the Pub/Sub
// listener (withRequestReader). The output under cor.CtxOut is the
// persisted *model.FinalAsset.
type ClipMergeWorkflow struct {
	cor.BaseCommand
	config            *cloud.Config
	lookup            commands.SourceVideoLookup
	store             commands.BlobStore
	inserter          commands.RowInserter
	withRequestReader bool
	chain             cor.Chain
}

// Execute runs the merge chain.
func (w *ClipMergeWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *ClipMergeWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Message-driven jobs first parse the request and allocate the job's
	// work directory; service-driven jobs arrive with that already done.
	if w.withRequestReader {
		out.AddCommand(commands.NewMergeRequestReader("read-merge-request", ""))
	}

	resolver := clips.NewPathResolver(w.config.Storage.UploadRoot, w.config.Storage.LegacyPathPrefix)
	out.AddCommand(commands.NewClipSourceResolver("resolve-clip-sources", w.lookup, resolver))

	timeout := time.Duration(w.config.Merge.TimeoutMinutes) * time.Minute
	out.AddCommand(commands.NewFfmpegMerge("trim-and-concat", w.config.Merge.FfmpegPath, timeout))
	out.AddCommand(commands.NewMergeVerifier("verify-output", w.config.Merge.FfprobePath))
	out.AddCommand(commands.NewThumbnailExtractor("extract-thumbnail", w.config.Merge.FfmpegPath))
	out.AddCommand(commands.NewAssetUpload("upload-assets", w.store,
		w.config.Storage.AssetBucket, w.config.Storage.ThumbnailBucket))
	out.AddCommand(commands.NewAssetPersistToBigQuery("write-to-bigquery", w.inserter))

	w.chain = out
}

// NewClipMergeWorkflow builds the merge pipeline driven by the merge
// service, which hands in a prepared job.
func NewClipMergeWorkflow(
	config *cloud.Config,
	lookup commands.SourceVideoLookup,
	store commands.BlobStore,
	inserter commands.RowInserter,
) *ClipMergeWorkflow {
	pipeline := &ClipMergeWorkflow{
		BaseCommand: *cor.NewBaseCommand("clip-merge-pipeline"),
		config:      config,
		lookup:      lookup,
		store:       store,
		inserter:    inserter,
	}
	pipeline.initializeChain()
	return pipeline
}

// NewMergeMessagePipeline builds the merge pipeline for the Pub/Sub
// listener, prepending the request reader so raw message payloads become
// jobs.
func NewMergeMessagePipeline(
	config *cloud.Config,
	lookup commands.SourceVideoLookup,
	store commands.BlobStore,
	inserter commands.RowInserter,
) *ClipMergeWorkflow {
	pipeline := &ClipMergeWorkflow{
		BaseCommand:       *cor.NewBaseCommand("merge-message-pipeline"),
		config:            config,
		lookup:            lookup,
		store:             store,
		inserter:          inserter,
		withRequestReader: true,
	}
	pipeline.initializeChain()
	return pipeline
}
