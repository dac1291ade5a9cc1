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
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

const (
	// FinalTemperature leans deterministic for the committing call.
	FinalTemperature float32 = 0.2
	// MinimumTemperature is used on validation-failure retries.
	MinimumTemperature float32 = 0.0
	// DefaultFinalRetryAttempts is how many extra minimum-temperature
	// attempts follow a failed first final generation.
	DefaultFinalRetryAttempts = 2
)

// ClipFinalizer runs the committing generation over the last chunk,
// validates the response, retries at minimum temperature on validation
// failure, and synthesizes the deterministic fallback clip when every
// attempt is spent. It always emits a SelectionResult: selection never
// fails a parseable request, it degrades.
type ClipFinalizer struct {
	cor.BaseCommand
	generator     cloud.TextGenerator
	builder       *clips.PromptBuilder
	retryAttempts int
}

// NewClipFinalizer creates the finalizer. retryAttempts at or below zero
// selects the default of two extra attempts.
func NewClipFinalizer(name string, generator cloud.TextGenerator, builder *clips.PromptBuilder, retryAttempts int) *ClipFinalizer {
	if retryAttempts <= 0 {
		retryAttempts = DefaultFinalRetryAttempts
	}
	return &ClipFinalizer{
		BaseCommand:   *cor.NewBaseCommand(name),
		generator:     generator,
		builder:       builder,
		retryAttempts: retryAttempts,
	}
}

func (c *ClipFinalizer) IsExecutable(context cor.Context) bool {
	work, ok := context.Get(c.GetInputParam()).(*SelectionWork)
	return ok && len(work.Chunks) > 0
}

func (c *ClipFinalizer) Execute(context cor.Context) {
	work := context.Get(c.GetInputParam()).(*SelectionWork)
	totalChunks := len(work.Chunks)
	finalChunk := work.Chunks[totalChunks-1]
	durations := work.Request.DurationBySource()

	temperature := FinalTemperature
	for attempt := 0; attempt <= c.retryAttempts; attempt++ {
		validated, err := c.attemptFinal(context, work, finalChunk, totalChunks, durations, temperature)
		if err == nil {
			c.GetSuccessCounter().Add(context.GetContext(), 1)
			context.Add(c.GetOutputParam(), &model.SelectionResult{Clips: validated})
			return
		}
		slog.Warn("final clip generation attempt failed",
			"attempt", attempt+1, "max_attempts", c.retryAttempts+1, "error", err)
		temperature = MinimumTemperature
	}

	// Every attempt is spent: synthesize the safe default rather than
	// failing the user-visible request.
	fallback := clips.SynthesizeFallback(work.Request.Primary(), work.Constraint)
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), &model.SelectionResult{
		Clips:        []*model.Clip{fallback},
		UsedFallback: true,
	})
}

// attemptFinal runs one build-generate-parse-validate cycle.
func (c *ClipFinalizer) attemptFinal(
	context cor.Context,
	work *SelectionWork,
	finalChunk []*model.TranscriptSegment,
	totalChunks int,
	durations map[string]float64,
	temperature float32,
) ([]*model.Clip, error) {
	prompt, err := c.builder.BuildFinalPrompt(
		totalChunks-1, totalChunks, finalChunk, work.Rolling, work.Request.Instruction, work.Constraint)
	if err != nil {
		return nil, err
	}

	response, err := c.generator.GenerateText(context.GetContext(), prompt, &temperature)
	if err != nil {
		return nil, err
	}

	candidates := clips.ParseCandidates(response)
	return clips.Validate(candidates, durations, work.Constraint)
}
