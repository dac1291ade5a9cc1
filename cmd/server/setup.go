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

// Package main contains the setup and initialization logic for the server's
// state: configuration loading, Google Cloud clients, and the application
// services wired against them.
package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/bigquery"

	"github.com/jaycherian/gcp-go-clip-composer/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/services"
)

// StateManager holds the shared dependencies for the server: configuration,
// cloud clients, and the application services.
type StateManager struct {
	config         *cloud.Config
	cloud          *cloud.ServiceClients
	clipService    *services.ClipService
	mergeService   *services.MergeService
	videoService   *services.VideoService
	blobStore      *cloud.GCSBlobStore
	sourceInserter *bigquery.Inserter
}

var state = &StateManager{}

// SetupOS points the configuration loader at the configs directory and the
// local runtime context.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig loads the application configuration once and caches it.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState creates the cloud clients, wires the application services, and
// starts the merge-request listener.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	state.videoService = &services.VideoService{
		BigqueryClient:   cloudClients.BigQueryClient,
		StorageClient:    cloudClients.StorageClient,
		IAMClient:        cloudClients.IAMClient,
		SignerEmail:      config.Application.SignerServiceAccountEmail,
		DatasetName:      config.BigQueryDataSource.DatasetName,
		SourceVideoTable: config.BigQueryDataSource.SourceVideoTable,
		FinalAssetTable:  config.BigQueryDataSource.FinalAssetTable,
	}

	// The selection pipeline talks to the model through the rate-limit-aware
	// retry decorator; everything past that point treats generation failures
	// as fallback triggers, not retries.
	generator := cloud.WithRetry(
		cloudClients.AgentModels[config.Selection.AgentModel],
		cloud.NewRetryPolicy(),
	)
	state.clipService = services.NewClipService(config, generator)

	blobStore := cloud.NewGCSBlobStore(cloudClients.StorageClient)
	inserter := cloudClients.BigQueryClient.
		Dataset(config.BigQueryDataSource.DatasetName).
		Table(config.BigQueryDataSource.FinalAssetTable).
		Inserter()
	state.blobStore = blobStore
	state.sourceInserter = cloudClients.BigQueryClient.
		Dataset(config.BigQueryDataSource.DatasetName).
		Table(config.BigQueryDataSource.SourceVideoTable).
		Inserter()
	state.mergeService = services.NewMergeService(config, state.videoService, blobStore, inserter)

	SetupListeners(ctx, cloudClients)
}
