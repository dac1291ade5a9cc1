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

package test_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-clip-composer/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
	test "github.com/jaycherian/gcp-go-clip-composer/internal/testutil"
)

// The test runtime layers .env.test.toml on top of the base file: overridden
// values win, everything else falls through to the base.
func TestConfigTestRuntimeLayering(t *testing.T) {
	t.Setenv(cloud.EnvConfigFilePrefix, "../../configs")
	t.Setenv(cloud.EnvConfigRuntime, "test")

	config := cloud.NewConfig()
	cloud.LoadConfig(&config)

	// Overridden by .env.test.toml.
	assert.Equal(t, "clip-composer-test", config.Application.Name)
	assert.Equal(t, "clip_composer_test_ds", config.BigQueryDataSource.DatasetName)
	assert.Equal(t, 1, config.Merge.MaxConcurrent)
	assert.Equal(t, 5, config.Merge.TimeoutMinutes)
	assert.Equal(t, 10, config.AgentModels["clip-selector"].RateLimit)

	// Inherited from the base file.
	assert.Equal(t, 40000, config.Selection.MaxTokensPerChunk)
	assert.Equal(t, "clip-selector", config.Selection.AgentModel)
	assert.Equal(t, "source_videos", config.BigQueryDataSource.SourceVideoTable)
	assert.Equal(t, "gemini-2.0-flash", config.AgentModels["clip-selector"].Model)
}

func TestMergeMessageTextIsAValidRequest(t *testing.T) {
	var request model.MergeRequest
	err := json.Unmarshal([]byte(test.GetTestMergeMessageText()), &request)
	test.HandleErr(err, t)

	assert.Equal(t, "test-user-001", request.OwnerId)
	require.Len(t, request.Clips, 3)
	assert.Equal(t, "src-0001", request.Clips[0].SourceID)
	assert.Equal(t, "src-0002", request.Clips[2].SourceID)
	assert.InDelta(t, 7.5, request.Clips[0].Duration(), 0.001)
}
