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

package commands_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/commands"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

func resolvedClip(path string, start, end float64) *model.ResolvedClip {
	return &model.ResolvedClip{
		Clip:   &model.Clip{SourceID: "src", StartTime: start, EndTime: end},
		Source: &model.SourceVideo{Id: "src", StoragePath: path},
		Path:   path,
	}
}

func TestBuildMergeArgsTwoClips(t *testing.T) {
	resolved := []*model.ResolvedClip{
		resolvedClip("/media/a.mp4", 5, 10),
		resolvedClip("/media/b.mp4", 0, 5),
	}
	args := commands.BuildMergeArgs(resolved, "/tmp/out/merged.mp4")
	joined := strings.Join(args, " ")

	// One trimmed input per clip, in request order.
	assert.Contains(t, joined, "-ss 5.000 -to 10.000 -i /media/a.mp4")
	assert.Contains(t, joined, "-ss 0.000 -to 5.000 -i /media/b.mp4")
	assert.Less(t, strings.Index(joined, "a.mp4"), strings.Index(joined, "b.mp4"))

	// A single concat filter over both inputs, one video and one audio stream.
	assert.Contains(t, joined, "[0:v][0:a][1:v][1:a]concat=n=2:v=1:a=1[outv][outa]")

	// H.264/AAC MP4 with a streamable moov atom.
	assert.Contains(t, joined, "-c:v libx264")
	assert.Contains(t, joined, "-c:a aac")
	assert.Contains(t, joined, "-movflags +faststart")
	assert.Equal(t, "/tmp/out/merged.mp4", args[len(args)-1])
}

func TestBuildMergeArgsSingleClip(t *testing.T) {
	args := commands.BuildMergeArgs([]*model.ResolvedClip{
		resolvedClip("/media/a.mp4", 1.25, 3.5),
	}, "out.mp4")
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-ss 1.250 -to 3.500")
	assert.Contains(t, joined, "concat=n=1:v=1:a=1")
}

func TestBuildMergeArgsInvokedOncePerJob(t *testing.T) {
	resolved := []*model.ResolvedClip{
		resolvedClip("/media/a.mp4", 0, 1),
		resolvedClip("/media/a.mp4", 2, 3),
		resolvedClip("/media/b.mp4", 4, 5),
	}
	args := commands.BuildMergeArgs(resolved, "out.mp4")

	inputs := 0
	for _, a := range args {
		if a == "-i" {
			inputs++
		}
	}
	require.Equal(t, 3, inputs)
	assert.Contains(t, strings.Join(args, " "), "concat=n=3")
}
