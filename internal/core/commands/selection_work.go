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

// Package commands provides the concrete Command implementations for both
// pipelines: the chunked transcript-to-clip-selection chain and the
// deterministic media-merge chain. Each command reads its input from the
// workflow context, does one step, and hands its output to the next command.
package commands

import (
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

// SelectionWork is the payload threaded through the clip selection chain.
// Rolling is the cross-chunk candidate accumulator: explicit state passed
// from command to command, never ambient.
type SelectionWork struct {
	Request    *model.SelectionRequest
	Constraint clips.SelectionConstraint
	Chunks     [][]*model.TranscriptSegment
	Rolling    []*model.CandidateClip
}

// AllSegments flattens every source's transcript in request order.
func (w *SelectionWork) AllSegments() []*model.TranscriptSegment {
	var all []*model.TranscriptSegment
	for _, source := range w.Request.Sources {
		all = append(all, source.Segments...)
	}
	return all
}
