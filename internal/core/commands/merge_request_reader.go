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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

// MergeRequestReader turns a raw merge-request message (the Pub/Sub
// payload) into a MergeJob with a fresh job id and its own work directory.
// The work directory is registered as a temp path so chain teardown removes
// it on every exit path.
type MergeRequestReader struct {
	cor.BaseCommand
	workRoot string
}

// NewMergeRequestReader creates the reader. An empty workRoot falls back to
// the system temp directory.
func NewMergeRequestReader(name string, workRoot string) *MergeRequestReader {
	if workRoot == "" {
		workRoot = os.TempDir()
	}
	return &MergeRequestReader{
		BaseCommand: *cor.NewBaseCommand(name),
		workRoot:    workRoot,
	}
}

func (c *MergeRequestReader) IsExecutable(context cor.Context) bool {
	_, ok := context.Get(c.GetInputParam()).(string)
	return ok
}

func (c *MergeRequestReader) Execute(context cor.Context) {
	raw := context.Get(c.GetInputParam()).(string)

	var request model.MergeRequest
	if err := json.Unmarshal([]byte(raw), &request); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to parse merge request: %w", err))
		return
	}
	if len(request.Clips) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("merge request has no clips"))
		return
	}

	job, err := NewMergeJob(&request, c.workRoot)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}
	context.AddTempFile(job.WorkDir)

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), &MergeWork{Job: job, StartedAt: time.Now()})
}

// NewMergeJob allocates a job id and creates the job-scoped work directory
// under workRoot. The uuid namespace keeps concurrent jobs from colliding.
func NewMergeJob(request *model.MergeRequest, workRoot string) (*model.MergeJob, error) {
	jobId := uuid.New().String()
	workDir := filepath.Join(workRoot, "clip-merge-"+jobId)
	if err := os.MkdirAll(workDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create work directory %s: %w", workDir, err)
	}
	return &model.MergeJob{
		JobId:     jobId,
		OwnerId:   request.OwnerId,
		Clips:     request.Clips,
		State:     model.JobStateResolving,
		WorkDir:   workDir,
		CreatedAt: time.Now(),
	}, nil
}
