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
// services. This file wraps the Generative AI client with a token-bucket
// rate limiter (Decorator pattern) and translates its errors into the
// pipeline's taxonomy, so the retry policy can tell a quota rejection from
// everything else.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
)

// TextGenerator is the surface the selection commands depend on. Keeping it
// this narrow lets tests substitute a fake without touching Vertex AI.
// A nil temperature keeps the model's configured default.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, temperature *float32) (string, error)
}

// QuotaAwareGenerativeAIModel decorates a GenAI model handle with a rate
// limiter so the application never exceeds its Vertex AI request quota.
type QuotaAwareGenerativeAIModel struct {
	GenerateConfig *genai.GenerateContentConfig
	ModelName      string
	ModelHandle    *genai.Models
	Limiter        *rate.Limiter
}

// NewQuotaAwareModel wraps the model handle with a limiter allowing
// requestsPerSecond sustained calls with an equal burst.
func NewQuotaAwareModel(
	config *genai.GenerateContentConfig,
	name string,
	handle *genai.Models,
	requestsPerSecond int,
) *QuotaAwareGenerativeAIModel {
	if requestsPerSecond < 1 {
		requestsPerSecond = 1
	}
	return &QuotaAwareGenerativeAIModel{
		GenerateConfig: config,
		ModelName:      name,
		ModelHandle:    handle,
		Limiter:        rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

// GenerateText blocks on the limiter, issues one generation call, and
// returns the concatenated text of the response with any markdown fences
// stripped. Service errors come back classified: quota rejections as
// RateLimitedError, everything else as GenerationError.
func (q *QuotaAwareGenerativeAIModel) GenerateText(ctx context.Context, prompt string, temperature *float32) (string, error) {
	if err := q.Limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait aborted: %w", err)
	}

	config := q.GenerateConfig
	if temperature != nil {
		override := *q.GenerateConfig
		override.Temperature = temperature
		config = &override
	}

	resp, err := q.ModelHandle.GenerateContent(ctx, q.ModelName, genai.Text(prompt), config)
	if err != nil {
		return "", ClassifyGenAIError(err)
	}

	var out strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			out.WriteString(part.Text)
		}
	}
	value := strings.TrimSpace(out.String())
	value = strings.TrimPrefix(value, "```json")
	value = strings.TrimPrefix(value, "```")
	value = strings.TrimSuffix(value, "```")
	return value, nil
}

// ClassifyGenAIError maps a GenAI client error into the pipeline taxonomy.
// Only HTTP 429 becomes RateLimitedError; the advertised retry delay is
// pulled from the RetryInfo detail when the service includes one.
func ClassifyGenAIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return &clips.RateLimitedError{
				RetryAfter: retryDelayFromDetails(apiErr.Details),
				Err:        err,
			}
		}
	}
	return &clips.GenerationError{Reason: "generation call failed", Err: err}
}

// retryDelayFromDetails extracts the RetryInfo delay from an APIError's
// detail blocks. Best effort: any parse miss yields zero.
func retryDelayFromDetails(details []map[string]any) time.Duration {
	for _, detail := range details {
		typeName, ok := detail["@type"].(string)
		if !ok || !strings.HasSuffix(typeName, "RetryInfo") {
			continue
		}
		if raw, ok := detail["retryDelay"].(string); ok {
			if delay, err := time.ParseDuration(raw); err == nil {
				return delay
			}
		}
	}
	return 0
}
