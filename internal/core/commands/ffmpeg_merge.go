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

// This file defines the command that invokes ffmpeg once per merge job:
// every input is trimmed with a per-input -ss/-to window and stitched in
// request order through a single concat filter graph into one H.264/AAC
// MP4. The subprocess runs under a hard wall-clock budget and is killed on
// expiry.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

const (
	// DefaultMergeTimeout is the subprocess wall-clock budget.
	DefaultMergeTimeout = 30 * time.Minute
	// MergedFileName is the output name inside the job's work directory.
	MergedFileName = "merged.mp4"
)

// FfmpegMerge trims and concatenates every resolved clip in one ffmpeg
// invocation.
type FfmpegMerge struct {
	cor.BaseCommand
	ffmpegPath string
	timeout    time.Duration
}

// NewFfmpegMerge creates the command. A zero timeout selects the default
// 30-minute budget.
func NewFfmpegMerge(name string, ffmpegPath string, timeout time.Duration) *FfmpegMerge {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = DefaultMergeTimeout
	}
	return &FfmpegMerge{
		BaseCommand: *cor.NewBaseCommand(name),
		ffmpegPath:  ffmpegPath,
		timeout:     timeout,
	}
}

func (c *FfmpegMerge) IsExecutable(context cor.Context) bool {
	work, ok := context.Get(c.GetInputParam()).(*MergeWork)
	return ok && len(work.Resolved) > 0
}

func (c *FfmpegMerge) Execute(chCtx cor.Context) {
	work := chCtx.Get(c.GetInputParam()).(*MergeWork)
	work.Job.State = model.JobStateMerging
	work.OutputPath = filepath.Join(work.Job.WorkDir, MergedFileName)

	args := BuildMergeArgs(work.Resolved, work.OutputPath)

	runCtx, cancel := context.WithTimeout(chCtx.GetContext(), c.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	if err != nil {
		work.Job.State = model.JobStateFailed
		c.GetErrorCounter().Add(chCtx.GetContext(), 1)
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			chCtx.AddError(c.GetName(), &clips.TimeoutError{Limit: c.timeout})
		} else {
			chCtx.AddError(c.GetName(), fmt.Errorf("ffmpeg merge failed: %w", err))
		}
		return
	}

	c.GetSuccessCounter().Add(chCtx.GetContext(), 1)
	chCtx.Add(c.GetOutputParam(), work)
}

// BuildMergeArgs assembles the full ffmpeg argument list: one -ss/-to
// trimmed input per clip, a concat filter over all of them emitting one
// video and one audio stream, and H.264/AAC encoding with the moov atom up
// front for streamability. Pure, so the exact invocation is testable.
func BuildMergeArgs(resolved []*model.ResolvedClip, outputPath string) []string {
	args := []string{"-y", "-hide_banner"}
	for _, rc := range resolved {
		args = append(args,
			"-ss", formatSeconds(rc.Clip.StartTime),
			"-to", formatSeconds(rc.Clip.EndTime),
			"-i", rc.Path,
		)
	}

	var filter strings.Builder
	for i := range resolved {
		fmt.Fprintf(&filter, "[%d:v][%d:a]", i, i)
	}
	fmt.Fprintf(&filter, "concat=n=%d:v=1:a=1[outv][outa]", len(resolved))

	args = append(args,
		"-filter_complex", filter.String(),
		"-map", "[outv]",
		"-map", "[outa]",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-movflags", "+faststart",
		outputPath,
	)
	return args
}

func formatSeconds(seconds float64) string {
	return fmt.Sprintf("%.3f", seconds)
}
