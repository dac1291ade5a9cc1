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
	"math"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

// ClipSourceResolver looks up every clip's source record, resolves its
// playable location, and checks the trim window numbers. Any failing clip
// aborts the whole job: partial merges are never produced.
type ClipSourceResolver struct {
	cor.BaseCommand
	lookup   SourceVideoLookup
	resolver *clips.PathResolver
}

func NewClipSourceResolver(name string, lookup SourceVideoLookup, resolver *clips.PathResolver) *ClipSourceResolver {
	return &ClipSourceResolver{
		BaseCommand: *cor.NewBaseCommand(name),
		lookup:      lookup,
		resolver:    resolver,
	}
}

func (c *ClipSourceResolver) IsExecutable(context cor.Context) bool {
	work, ok := context.Get(c.GetInputParam()).(*MergeWork)
	return ok && len(work.Job.Clips) > 0
}

func (c *ClipSourceResolver) Execute(context cor.Context) {
	work := context.Get(c.GetInputParam()).(*MergeWork)
	work.Job.State = model.JobStateResolving

	// One lookup per distinct source, reused across clips.
	sources := make(map[string]*model.SourceVideo)
	paths := make(map[string]string)

	resolved := make([]*model.ResolvedClip, 0, len(work.Job.Clips))
	for i, clip := range work.Job.Clips {
		if math.IsNaN(clip.StartTime) || math.IsNaN(clip.EndTime) || clip.StartTime < 0 || clip.StartTime >= clip.EndTime {
			c.fail(context, work, fmt.Errorf("clip %d has an invalid trim window [%f, %f]", i, clip.StartTime, clip.EndTime))
			return
		}

		source, ok := sources[clip.SourceID]
		if !ok {
			var err error
			source, err = c.lookup.GetSourceVideo(context.GetContext(), clip.SourceID)
			if err != nil {
				c.fail(context, work, fmt.Errorf("clip %d source %s lookup failed: %w", i, clip.SourceID, err))
				return
			}
			path, err := c.resolver.Resolve(source.StoragePath)
			if err != nil {
				c.fail(context, work, fmt.Errorf("clip %d: %w", i, err))
				return
			}
			sources[clip.SourceID] = source
			paths[clip.SourceID] = path
		}

		resolved = append(resolved, &model.ResolvedClip{
			Clip:   clip,
			Source: source,
			Path:   paths[clip.SourceID],
		})
	}

	work.Resolved = resolved
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), work)
}

func (c *ClipSourceResolver) fail(context cor.Context, work *MergeWork, err error) {
	work.Job.State = model.JobStateFailed
	c.GetErrorCounter().Add(context.GetContext(), 1)
	context.AddError(c.GetName(), err)
}
