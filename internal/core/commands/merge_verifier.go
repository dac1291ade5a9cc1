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
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

// MergeVerifier checks the merged file is actually usable: non-empty on
// disk and reporting a positive duration through ffprobe. The subprocess
// exit code alone is not trusted; a zero-byte or zero-duration artifact
// fails the job even after a "successful" merge.
type MergeVerifier struct {
	cor.BaseCommand
	ffprobePath string
}

func NewMergeVerifier(name string, ffprobePath string) *MergeVerifier {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &MergeVerifier{
		BaseCommand: *cor.NewBaseCommand(name),
		ffprobePath: ffprobePath,
	}
}

func (c *MergeVerifier) IsExecutable(context cor.Context) bool {
	work, ok := context.Get(c.GetInputParam()).(*MergeWork)
	return ok && work.OutputPath != ""
}

func (c *MergeVerifier) Execute(context cor.Context) {
	work := context.Get(c.GetInputParam()).(*MergeWork)
	work.Job.State = model.JobStateVerifying

	info, err := os.Stat(work.OutputPath)
	if err != nil || info.Size() == 0 {
		c.fail(context, work, &clips.EmptyOutputError{Path: work.OutputPath})
		return
	}

	cmd := exec.CommandContext(context.GetContext(), c.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		work.OutputPath,
	)
	raw, err := cmd.Output()
	if err != nil {
		c.fail(context, work, fmt.Errorf("ffprobe failed for %s: %w", work.OutputPath, err))
		return
	}

	duration, err := ParseProbeDuration(raw)
	if err != nil || duration <= 0 {
		c.fail(context, work, &clips.EmptyOutputError{Path: work.OutputPath})
		return
	}
	work.ProbedDuration = duration

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), work)
}

func (c *MergeVerifier) fail(context cor.Context, work *MergeWork, err error) {
	work.Job.State = model.JobStateFailed
	c.GetErrorCounter().Add(context.GetContext(), 1)
	context.AddError(c.GetName(), err)
}

// probeFormat mirrors the "format" block of ffprobe's JSON output.
type probeFormat struct {
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
	} `json:"format"`
}

// ParseProbeDuration extracts the container duration in seconds from
// ffprobe `-print_format json -show_format` output.
func ParseProbeDuration(raw []byte) (float64, error) {
	var probe probeFormat
	if err := json.Unmarshal(raw, &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if probe.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe output has no duration field")
	}
	duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe duration %q: %w", probe.Format.Duration, err)
	}
	return duration, nil
}
