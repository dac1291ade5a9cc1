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

package clips

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

const (
	// DurationToleranceSeconds is the allowed deviation from an explicitly
	// requested clip duration.
	DurationToleranceSeconds = 0.05

	// EndAnchorFraction is the portion of the source an end-anchored clip
	// must start after.
	EndAnchorFraction = 0.8

	// MinClipSeconds and MaxClipSeconds bound unconstrained final clips.
	MinClipSeconds = 3
	MaxClipSeconds = 60
)

// DefaultScanTemplate renders the prompt for non-final chunks: gather
// candidate segments as narrative context, never a final answer.
const DefaultScanTemplate = `You are reviewing part {{ .ChunkNumber }} of {{ .TotalChunks }} of a video transcript.
The user wants: {{ .Instruction }}

Identify 5 to 10 candidate important segments from this part that could serve the request.
For each candidate, quote the transcript text VERBATIM (no paraphrasing), give its
start_time and end_time in seconds, and add a one-sentence rationale in "notes".

{{ if .RollingContext }}Candidates already gathered from earlier parts, for context only:
{{ .RollingContext }}

{{ end }}Respond with a JSON array and nothing else, shaped like this example:
{{ .Example }}

Transcript part {{ .ChunkNumber }}:
{{ .ChunkText }}
`

// DefaultFinalTemplate renders the committing prompt for the last chunk. It
// restates every numeric constraint so the model has no room to improvise.
const DefaultFinalTemplate = `You are choosing the final clips for a video edit.
The user wants: {{ .Instruction }}

{{ .ConstraintText }}

Quote transcript text VERBATIM in "transcript_text" (no paraphrasing).
Use only times that exist in the transcript below or in the gathered candidates.

{{ if .RollingContext }}Candidates gathered while reading the full transcript:
{{ .RollingContext }}

{{ end }}Respond with a JSON array and NOTHING else (no prose, no markdown fences), shaped like:
{{ .Example }}

Final transcript part:
{{ .ChunkText }}
`

// promptData is the template input for both prompt flavors.
type promptData struct {
	ChunkNumber    int
	TotalChunks    int
	Instruction    string
	ConstraintText string
	RollingContext string
	Example        string
	ChunkText      string
}

// PromptBuilder renders generation-service requests from configurable
// templates. Templates come from config in production and fall back to the
// compiled-in defaults, so the builder is always usable in tests.
type PromptBuilder struct {
	scan  *template.Template
	final *template.Template
}

// NewPromptBuilder parses the scan and final templates. Empty strings select
// the defaults.
func NewPromptBuilder(scanTemplate string, finalTemplate string) (*PromptBuilder, error) {
	if scanTemplate == "" {
		scanTemplate = DefaultScanTemplate
	}
	if finalTemplate == "" {
		finalTemplate = DefaultFinalTemplate
	}

	scan, err := template.New("clip-scan").Parse(scanTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scan template: %w", err)
	}
	final, err := template.New("clip-final").Parse(finalTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse final template: %w", err)
	}
	return &PromptBuilder{scan: scan, final: final}, nil
}

// BuildScanPrompt renders the candidate-gathering prompt for a non-final
// chunk. chunkIndex is zero-based.
func (b *PromptBuilder) BuildScanPrompt(
	chunkIndex int,
	totalChunks int,
	chunk []*model.TranscriptSegment,
	rollingContext []*model.CandidateClip,
	instruction string,
) (string, error) {
	data := promptData{
		ChunkNumber:    chunkIndex + 1,
		TotalChunks:    totalChunks,
		Instruction:    instruction,
		RollingContext: renderCandidates(rollingContext),
		Example:        renderCandidates(model.GetExampleCandidates()),
		ChunkText:      renderSegments(chunk),
	}
	var out strings.Builder
	if err := b.scan.Execute(&out, data); err != nil {
		return "", fmt.Errorf("failed to render scan prompt: %w", err)
	}
	return out.String(), nil
}

// BuildFinalPrompt renders the committing prompt, including the explicit
// numeric constraint text.
func (b *PromptBuilder) BuildFinalPrompt(
	chunkIndex int,
	totalChunks int,
	chunk []*model.TranscriptSegment,
	rollingContext []*model.CandidateClip,
	instruction string,
	constraint SelectionConstraint,
) (string, error) {
	data := promptData{
		ChunkNumber:    chunkIndex + 1,
		TotalChunks:    totalChunks,
		Instruction:    instruction,
		ConstraintText: ConstraintText(constraint),
		RollingContext: renderCandidates(rollingContext),
		Example:        renderCandidates(model.GetExampleFinalClips()),
		ChunkText:      renderSegments(chunk),
	}
	var out strings.Builder
	if err := b.final.Execute(&out, data); err != nil {
		return "", fmt.Errorf("failed to render final prompt: %w", err)
	}
	return out.String(), nil
}

// ConstraintText spells the numeric constraints out for the final prompt.
func ConstraintText(constraint SelectionConstraint) string {
	var lines []string
	if constraint.ExplicitDurationSeconds != nil {
		lines = append(lines, fmt.Sprintf(
			"Each clip MUST be exactly %.2f seconds long, within a tolerance of %.2f seconds.",
			*constraint.ExplicitDurationSeconds, DurationToleranceSeconds))
	} else {
		lines = append(lines, fmt.Sprintf(
			"Each clip must be between %d and %d seconds long.", MinClipSeconds, MaxClipSeconds))
	}
	if constraint.RequireFromEnd {
		lines = append(lines,
			"The user asked for footage from the END of the video: every clip MUST start after 80% of the source duration.")
	}
	return strings.Join(lines, "\n")
}

func renderSegments(segments []*model.TranscriptSegment) string {
	var out strings.Builder
	for _, s := range segments {
		if s.Speaker != "" {
			fmt.Fprintf(&out, "[%.2f - %.2f] %s: %s\n", s.StartTime, s.EndTime, s.Speaker, s.Text)
		} else {
			fmt.Fprintf(&out, "[%.2f - %.2f] %s\n", s.StartTime, s.EndTime, s.Text)
		}
	}
	return out.String()
}

func renderCandidates(candidates []*model.CandidateClip) string {
	if len(candidates) == 0 {
		return ""
	}
	raw, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return ""
	}
	return string(raw)
}
