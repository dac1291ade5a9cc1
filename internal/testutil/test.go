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

// Package test provides helpers and mock data for the test suite: a cached
// test configuration and sample merge-request payloads.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/jaycherian/gcp-go-clip-composer/internal/cloud"
)

// StateManager caches the test configuration so it loads once per run.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is non-nil.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("Error reading config file: %v", err)
	}
}

// GetTestMergeMessageText returns a JSON merge request in the shape the
// merge-request subscription delivers.
func GetTestMergeMessageText() string {
	return `{
  "owner_id": "test-user-001",
  "clips": [
    { "source_id": "src-0001", "start_time": 12.5, "end_time": 20.0 },
    { "source_id": "src-0001", "start_time": 48.0, "end_time": 55.5 },
    { "source_id": "src-0002", "start_time": 3.0, "end_time": 9.0 }
  ]
}`
}

// SetupOS points the config loader at the test configuration files.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is the singleton accessor for the test configuration.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}
