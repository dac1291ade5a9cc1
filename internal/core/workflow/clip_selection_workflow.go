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

// Package workflow defines the high-level orchestrations, combining
// commands into coherent pipelines. This file implements the clip selection
// workflow: token-budgeted chunking, sequential candidate scanning, and the
// validated (or fallback) final answer.
package workflow

import (
	"github.com/jaycherian/gcp-go-clip-composer/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/commands"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/cor"
)

// ClipSelectionWorkflow turns a selection request (transcripts plus a free
// text instruction) into a SelectionResult. The input to Execute is a
// *model.SelectionRequest under cor.CtxIn; the output is a
// *model.SelectionResult under cor.CtxOut.
type ClipSelectionWorkflow struct {
	cor.BaseCommand
	config    *cloud.Config
	generator cloud.TextGenerator
	builder   *clips.PromptBuilder
	chain     cor.Chain
}

// Execute runs the selection chain.
func (w *ClipSelectionWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *ClipSelectionWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: parse the instruction's constraint and partition the
	// transcript into token-budgeted chunks.
	out.AddCommand(commands.NewTranscriptChunker("chunk-transcript", w.config.Selection.MaxTokensPerChunk))

	// Step 2: walk the non-final chunks in order, gathering candidate
	// segments into the rolling context. Failures here degrade, never
	// abort.
	out.AddCommand(commands.NewCandidateScanner("scan-candidates", w.generator, w.builder))

	// Step 3: commit to the final clip list under the stated numeric
	// constraints, retrying at minimum temperature and synthesizing the
	// deterministic fallback when all attempts are spent.
	out.AddCommand(commands.NewClipFinalizer("finalize-clips", w.generator, w.builder, w.config.Selection.FinalRetryAttempts))

	w.chain = out
}

// NewClipSelectionWorkflow builds the selection pipeline. The generator
// should already carry the rate-limit retry policy; pass the quota-aware
// model wrapped in cloud.WithRetry.
func NewClipSelectionWorkflow(config *cloud.Config, generator cloud.TextGenerator) *ClipSelectionWorkflow {
	builder, err := clips.NewPromptBuilder(config.PromptTemplates.Scan, config.PromptTemplates.Final)
	if err != nil {
		// The application cannot run with broken prompt templates.
		panic(err)
	}

	pipeline := &ClipSelectionWorkflow{
		BaseCommand: *cor.NewBaseCommand("clip-selection-pipeline"),
		config:      config,
		generator:   generator,
		builder:     builder,
	}
	pipeline.initializeChain()
	return pipeline
}
