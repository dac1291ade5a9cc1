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
	"slices"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

// TranscriptChunker is the first command of the selection chain: it parses
// the instruction's constraint and partitions the full transcript into
// token-budgeted chunks.
type TranscriptChunker struct {
	cor.BaseCommand
	maxTokensPerChunk int
}

// NewTranscriptChunker creates the chunker. maxTokensPerChunk at or below
// zero selects the default ceiling.
func NewTranscriptChunker(name string, maxTokensPerChunk int) *TranscriptChunker {
	return &TranscriptChunker{
		BaseCommand:       *cor.NewBaseCommand(name),
		maxTokensPerChunk: maxTokensPerChunk,
	}
}

func (c *TranscriptChunker) IsExecutable(context cor.Context) bool {
	request, ok := context.Get(c.GetInputParam()).(*model.SelectionRequest)
	return ok && len(request.Sources) > 0
}

func (c *TranscriptChunker) Execute(context cor.Context) {
	request := context.Get(c.GetInputParam()).(*model.SelectionRequest)

	work := &SelectionWork{
		Request:    request,
		Constraint: clips.ParseConstraint(request.Instruction),
	}
	segments := work.AllSegments()
	if len(segments) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("selection request has no transcript segments"))
		return
	}
	work.Chunks = slices.Collect(clips.ChunkSegments(segments, c.maxTokensPerChunk))

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), work)
}
