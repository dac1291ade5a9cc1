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

package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jaycherian/gcp-go-clip-composer/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/commands"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/workflow"
)

// DefaultMaxConcurrentMerges bounds simultaneous ffmpeg jobs when the
// config does not say otherwise.
const DefaultMaxConcurrentMerges = 2

// MergeService runs the merge pipeline for both entry points: synchronous
// API calls and queued Pub/Sub messages. A single semaphore keeps the
// number of simultaneous ffmpeg jobs bounded across both; each job gets its
// own chain context and a namespaced work directory that is removed on
// every exit path.
type MergeService struct {
	pipeline        cor.Command
	messagePipeline cor.Command
	sem             chan struct{}
}

// NewMergeService wires the merge workflow against the given collaborators.
func NewMergeService(
	config *cloud.Config,
	lookup commands.SourceVideoLookup,
	store commands.BlobStore,
	inserter commands.RowInserter,
) *MergeService {
	maxConcurrent := config.Merge.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentMerges
	}
	return &MergeService{
		pipeline:        workflow.NewClipMergeWorkflow(config, lookup, store, inserter),
		messagePipeline: workflow.NewMergeMessagePipeline(config, lookup, store, inserter),
		sem:             make(chan struct{}, maxConcurrent),
	}
}

// Acquire takes a slot on the concurrency gate unconditionally and returns
// its release func. Exposed so callers can hold a slot across work that
// wraps a merge.
func (s *MergeService) Acquire() func() {
	s.sem <- struct{}{}
	return func() { <-s.sem }
}

// MessagePipeline returns the Pub/Sub merge pipeline wrapped in the same
// concurrency gate as MergeClips, so queued jobs cannot exceed the
// configured ffmpeg ceiling no matter how many messages arrive at once.
func (s *MergeService) MessagePipeline() cor.Command {
	return &gatedCommand{Command: s.messagePipeline, sem: s.sem}
}

// gatedCommand blocks on the semaphore before delegating. A context
// cancelled while waiting records the cancellation instead of running.
type gatedCommand struct {
	cor.Command
	sem chan struct{}
}

func (c *gatedCommand) Execute(chCtx cor.Context) {
	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-chCtx.GetContext().Done():
		chCtx.AddError(c.GetName(), chCtx.GetContext().Err())
		return
	}
	c.Command.Execute(chCtx)
}

// MergeClips runs one merge job to completion and returns the persisted
// asset. The call blocks while the concurrency gate is full; a cancelled
// context abandons the wait.
func (s *MergeService) MergeClips(ctx context.Context, request *model.MergeRequest) (*model.FinalAsset, error) {
	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	job, err := commands.NewMergeJob(request, os.TempDir())
	if err != nil {
		return nil, err
	}

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.AddTempFile(job.WorkDir)
	chainCtx.Add(cor.CtxIn, &commands.MergeWork{Job: job, StartedAt: time.Now()})
	defer chainCtx.Close()

	s.pipeline.Execute(chainCtx)

	if chainCtx.HasErrors() {
		return nil, firstChainError(chainCtx)
	}
	asset, ok := chainCtx.Get(cor.CtxIn).(*model.FinalAsset)
	if !ok {
		return nil, fmt.Errorf("merge pipeline produced no asset")
	}
	return asset, nil
}
