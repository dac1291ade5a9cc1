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

package services

import (
	"context"
	"fmt"

	"github.com/jaycherian/gcp-go-clip-composer/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/workflow"
)

// ClipService runs the clip selection pipeline for the API layer. The chain
// is built once and reused; each request gets its own chain context.
type ClipService struct {
	pipeline cor.Command
}

// NewClipService wires the selection workflow against the given generator.
func NewClipService(config *cloud.Config, generator cloud.TextGenerator) *ClipService {
	return &ClipService{pipeline: workflow.NewClipSelectionWorkflow(config, generator)}
}

// SelectClips runs the selection chain for one request and returns the
// chosen clips. The pipeline degrades to fallback synthesis on model
// failures, so an error here means the request itself was unusable.
func (s *ClipService) SelectClips(ctx context.Context, request *model.SelectionRequest) (*model.SelectionResult, error) {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, request)
	defer chainCtx.Close()

	s.pipeline.Execute(chainCtx)

	if chainCtx.HasErrors() {
		return nil, firstChainError(chainCtx)
	}
	// The chain leaves the final command's output under CtxIn.
	result, ok := chainCtx.Get(cor.CtxIn).(*model.SelectionResult)
	if !ok {
		return nil, fmt.Errorf("selection pipeline produced no result")
	}
	return result, nil
}

// firstChainError surfaces one of the chain's recorded errors, keyed by the
// command that failed. Chains stop at the first error so the map almost
// always holds exactly one entry.
func firstChainError(chainCtx cor.Context) error {
	for name, err := range chainCtx.GetErrors() {
		return fmt.Errorf("%s: %w", name, err)
	}
	return fmt.Errorf("pipeline failed without a recorded error")
}
