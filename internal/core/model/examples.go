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

// Package model defines the data structures for the clip composer. This
// file provides factory functions for hardcoded example instances used for
// few-shot prompting: embedding a concrete example of the expected JSON
// output in the prompt keeps the generation service's responses consistent
// and parsable.
package model

// GetExampleCandidates returns a sample candidate-clip array shown to the
// generation service when scanning a transcript chunk. The quoted text is
// verbatim from the (fictional) transcript, which is the fidelity the
// pipeline demands of real responses.
func GetExampleCandidates() []*CandidateClip {
	return []*CandidateClip{
		{
			SourceID:       "src-8842",
			TranscriptText: "And that was the moment we knew the launch was going to work.",
			StartTime:      142.5,
			EndTime:        148.0,
			Notes:          "emotional turning point of the launch story",
		},
		{
			SourceID:       "src-8842",
			TranscriptText: "Three years of work came down to those final ninety seconds.",
			StartTime:      233.0,
			EndTime:        238.5,
			Notes:          "high-stakes summary, strong hook",
		},
	}
}

// GetExampleFinalClips returns a sample final-answer array for the last
// chunk's prompt: the committed clip list the service must emit as a bare
// JSON array.
func GetExampleFinalClips() []*CandidateClip {
	return []*CandidateClip{
		{
			SourceID:       "src-8842",
			TranscriptText: "Three years of work came down to those final ninety seconds.",
			StartTime:      233.0,
			EndTime:        241.0,
			Notes:          "closing beat, fits the requested eight seconds",
		},
	}
}
