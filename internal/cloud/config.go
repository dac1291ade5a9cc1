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

// Package cloud provides components for interacting with Google Cloud
// services. This file centralizes the application configuration structs,
// loaded from TOML files: GCP project settings, storage buckets and the
// local upload root, BigQuery tables, the selection and merge pipeline
// knobs, prompt templates, Pub/Sub subscriptions, and GenAI agent models.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings disables content blocking across all harm
// categories. The pipeline only ever feeds the model transcripts the user
// already owns, so the input is trusted.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// Storage holds the GCS buckets for final assets and the local directory
// uploads land in. LegacyPathPrefix is the path prefix older SourceVideo
// records carry from the previous deployment layout; the path resolver
// strips it when hunting for files under UploadRoot.
type Storage struct {
	UploadRoot       string `toml:"upload_root"`
	LegacyPathPrefix string `toml:"legacy_path_prefix"`
	AssetBucket      string `toml:"asset_bucket"`
	ThumbnailBucket  string `toml:"thumbnail_bucket"`
}

// BigQueryDataSource names the dataset and tables for source videos and
// final merged assets.
type BigQueryDataSource struct {
	DatasetName      string `toml:"dataset"`
	SourceVideoTable string `toml:"source_video_table"`
	FinalAssetTable  string `toml:"final_asset_table"`
}

// PromptTemplates holds the text/template sources for the two prompt
// flavors. Empty values select the compiled-in defaults.
type PromptTemplates struct {
	Scan  string `toml:"scan"`
	Final string `toml:"final"`
}

// Selection configures the clip selection pipeline.
type Selection struct {
	MaxTokensPerChunk  int    `toml:"max_tokens_per_chunk"`
	AgentModel         string `toml:"agent_model"`
	FinalRetryAttempts int    `toml:"final_retry_attempts"`
}

// Merge configures the media merge pipeline: subprocess binaries, the
// wall-clock budget, and the concurrency ceiling for simultaneous jobs.
type Merge struct {
	MaxConcurrent  int    `toml:"max_concurrent"`
	FfmpegPath     string `toml:"ffmpeg_path"`
	FfprobePath    string `toml:"ffprobe_path"`
	TimeoutMinutes int    `toml:"timeout_minutes"`
}

// VertexAiLLMModel represents the configuration for a Vertex AI large
// language model, including its sampling parameters and request rate limit.
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`
	SystemInstructions string  `toml:"system_instructions"`
	Temperature        float32 `toml:"temperature"`
	TopP               float32 `toml:"top_p"`
	TopK               float32 `toml:"top_k"`
	MaxTokens          int32   `toml:"max_tokens"`
	OutputFormat       string  `toml:"output_format"`
	RateLimit          int     `toml:"rate_limit"`
}

// TopicSubscription represents the configuration for a single Pub/Sub
// subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`
	DeadLetterTopic  string `toml:"dead_letter_topic"`
	TimeoutInSeconds int    `toml:"timeout_in_seconds"`
}

// Config is the root container for all application configuration, loaded
// from `.env.toml` with environment-specific overrides layered on top.
type Config struct {
	Application struct {
		Name                      string `toml:"name"`
		GoogleProjectId           string `toml:"google_project_id"`
		GoogleLocation            string `toml:"location"`
		SignerServiceAccountEmail string `toml:"signer_service_account_email"`
	} `toml:"application"`
	Storage            Storage                      `toml:"storage"`
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"`
	PromptTemplates    PromptTemplates              `toml:"prompt_templates"`
	Selection          Selection                    `toml:"selection"`
	Merge              Merge                        `toml:"merge"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`
	AgentModels        map[string]VertexAiLLMModel  `toml:"agent_models"`
}

// NewConfig creates an initialized Config. The maps must exist before the
// TOML decoder populates them.
func NewConfig() *Config {
	return &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		AgentModels:        make(map[string]VertexAiLLMModel),
	}
}
