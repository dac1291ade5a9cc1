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

// Package model defines the data structures for the clip composer. This file
// holds the transcript-side types: the timestamped segments produced by the
// transcription collaborator and the transient structures the selection
// pipeline builds from them. None of these are persisted; they live only for
// the duration of a selection request.
package model

// TranscriptSegment is one timestamped span of transcript text. Segments
// arrive in chronological order from the transcription service and are never
// mutated by the pipeline.
type TranscriptSegment struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Speaker   string  `json:"speaker,omitempty"`
}

// SourceTranscript pairs a source video with its full transcript and probed
// duration. The first source in a selection request is the primary source,
// used for fallback synthesis.
type SourceTranscript struct {
	SourceID        string               `json:"source_id"`
	DurationSeconds float64              `json:"duration_seconds"`
	Segments        []*TranscriptSegment `json:"segments"`
}

// SelectionRequest is the input to the clip selection pipeline: one or more
// source transcripts plus the user's free-text instruction.
type SelectionRequest struct {
	Sources     []*SourceTranscript `json:"sources" binding:"required,min=1"`
	Instruction string              `json:"instruction" binding:"required"`
}

// Primary returns the first source of the request, or nil when empty.
func (r *SelectionRequest) Primary() *SourceTranscript {
	if len(r.Sources) == 0 {
		return nil
	}
	return r.Sources[0]
}

// DurationBySource builds the sourceId -> duration map the validator needs.
func (r *SelectionRequest) DurationBySource() map[string]float64 {
	out := make(map[string]float64, len(r.Sources))
	for _, s := range r.Sources {
		out[s.SourceID] = s.DurationSeconds
	}
	return out
}

// CandidateClip is an unvalidated clip proposal from the generation service.
// Non-final chunks produce these as narrative context for later chunks; only
// the final generation step's candidates are ever validated and returned.
type CandidateClip struct {
	SourceID       string  `json:"source_id"`
	TranscriptText string  `json:"transcript_text"`
	StartTime      float64 `json:"start_time"`
	EndTime        float64 `json:"end_time"`
	Notes          string  `json:"notes,omitempty"`
}

// Duration returns the candidate's requested length in seconds.
func (c *CandidateClip) Duration() float64 {
	return c.EndTime - c.StartTime
}

// Clip is a candidate that has passed validation. Invariants: StartTime is
// within [0, source duration), EndTime within (StartTime, source duration].
type Clip struct {
	SourceID       string  `json:"source_id"`
	TranscriptText string  `json:"transcript_text,omitempty"`
	StartTime      float64 `json:"start_time"`
	EndTime        float64 `json:"end_time"`
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	return c.EndTime - c.StartTime
}

// SelectionResult is the outcome of a selection request. UsedFallback tells
// the caller the clips were synthesized deterministically after the
// generation service repeatedly failed validation, so the user-facing message
// can be adjusted.
type SelectionResult struct {
	Clips        []*Clip `json:"clips"`
	UsedFallback bool    `json:"used_fallback"`
}
