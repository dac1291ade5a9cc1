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
	"log/slog"

	"github.com/jaycherian/gcp-go-clip-composer/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/cor"
)

// CandidateScanner walks every non-final chunk in order, asking the
// generation service for candidate segments and folding the parsed results
// into the rolling context. Chunks are strictly sequential: each prompt
// depends on the context accumulated so far. Candidate gathering is an
// optimization, not a correctness requirement, so a failed generation or an
// unparsable response for one chunk is logged and skipped, never fatal.
type CandidateScanner struct {
	cor.BaseCommand
	generator cloud.TextGenerator
	builder   *clips.PromptBuilder
}

// NewCandidateScanner creates the scanner. The generator should already be
// wrapped with the rate-limit retry policy.
func NewCandidateScanner(name string, generator cloud.TextGenerator, builder *clips.PromptBuilder) *CandidateScanner {
	return &CandidateScanner{
		BaseCommand: *cor.NewBaseCommand(name),
		generator:   generator,
		builder:     builder,
	}
}

func (c *CandidateScanner) IsExecutable(context cor.Context) bool {
	_, ok := context.Get(c.GetInputParam()).(*SelectionWork)
	return ok
}

func (c *CandidateScanner) Execute(context cor.Context) {
	work := context.Get(c.GetInputParam()).(*SelectionWork)
	totalChunks := len(work.Chunks)

	for i := 0; i < totalChunks-1; i++ {
		prompt, err := c.builder.BuildScanPrompt(i, totalChunks, work.Chunks[i], work.Rolling, work.Request.Instruction)
		if err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), err)
			return
		}

		response, err := c.generator.GenerateText(context.GetContext(), prompt, nil)
		if err != nil {
			slog.Warn("candidate scan failed for chunk, continuing without its context",
				"chunk", i, "total", totalChunks, "error", err)
			continue
		}

		parsed := clips.ParseCandidates(response)
		if parsed == nil {
			slog.Warn("candidate scan response was not parsable, continuing",
				"chunk", i, "total", totalChunks)
			continue
		}
		work.Rolling = clips.AppendRollingContext(work.Rolling, parsed, clips.RollingContextCap)
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), work)
}
