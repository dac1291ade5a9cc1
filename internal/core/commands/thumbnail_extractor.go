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
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

// ThumbnailFileName is the captured frame's name inside the work directory.
const ThumbnailFileName = "thumbnail.jpg"

// ThumbnailExtractor captures one frame at the midpoint of the merged
// output. Failure here is non-fatal: the job falls back to the first clip's
// existing source thumbnail and carries on.
type ThumbnailExtractor struct {
	cor.BaseCommand
	ffmpegPath string
}

func NewThumbnailExtractor(name string, ffmpegPath string) *ThumbnailExtractor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &ThumbnailExtractor{
		BaseCommand: *cor.NewBaseCommand(name),
		ffmpegPath:  ffmpegPath,
	}
}

func (c *ThumbnailExtractor) IsExecutable(context cor.Context) bool {
	work, ok := context.Get(c.GetInputParam()).(*MergeWork)
	return ok && work.ProbedDuration > 0
}

func (c *ThumbnailExtractor) Execute(context cor.Context) {
	work := context.Get(c.GetInputParam()).(*MergeWork)
	work.Job.State = model.JobStateThumbnail

	thumbPath := filepath.Join(work.Job.WorkDir, ThumbnailFileName)
	midpoint := work.ProbedDuration / 2

	cmd := exec.CommandContext(context.GetContext(), c.ffmpegPath,
		"-y", "-hide_banner",
		"-ss", formatSeconds(midpoint),
		"-i", work.OutputPath,
		"-vframes", "1",
		"-q:v", "2",
		thumbPath,
	)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		slog.Warn("thumbnail extraction failed, falling back to source thumbnail",
			"job", work.Job.JobId, "error", err)
		if len(work.Resolved) > 0 {
			work.ThumbnailUrl = work.Resolved[0].Source.ThumbnailUrl
		}
	} else {
		work.ThumbnailPath = thumbPath
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), work)
}
