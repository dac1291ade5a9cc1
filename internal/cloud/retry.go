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

package cloud

import (
	"context"
	"errors"
	"time"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
)

// MaxGenerationAttempts bounds the retry loop: one initial call plus two
// retries.
const MaxGenerationAttempts = 3

// RetryPolicy retries generation calls on rate-limit signals only. Any
// other error wastes quota on a second attempt, so it propagates
// immediately. The sleep function is injectable for tests.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	Sleep          func(ctx context.Context, d time.Duration) error
}

// NewRetryPolicy returns the default policy: 3 attempts, backoff starting
// at one second and doubling per attempt when the service gives no
// retry-after hint.
func NewRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:    MaxGenerationAttempts,
		InitialBackoff: time.Second,
		Sleep:          sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Execute runs op until it succeeds, fails with a non-rate-limit error, or
// exhausts the attempts. Between attempts it sleeps for the service's
// advertised retry delay when present, else the doubling backoff. On
// exhaustion the final RateLimitedError propagates to the caller rather
// than being masked.
func (p *RetryPolicy) Execute(ctx context.Context, op func(ctx context.Context) (string, error)) (string, error) {
	backoff := p.InitialBackoff
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}

		var rateLimited *clips.RateLimitedError
		if !errors.As(err, &rateLimited) {
			return "", err
		}
		lastErr = err
		if attempt == p.MaxAttempts-1 {
			break
		}

		delay := backoff
		if rateLimited.RetryAfter > 0 {
			delay = rateLimited.RetryAfter
		} else {
			backoff *= 2
		}
		if sleepErr := p.Sleep(ctx, delay); sleepErr != nil {
			return "", sleepErr
		}
	}
	return "", lastErr
}

// WithRetry adapts a TextGenerator so every call runs under the policy.
// Commands depend on the wrapped generator and never re-implement the loop.
func WithRetry(generator TextGenerator, policy *RetryPolicy) TextGenerator {
	return &retryingGenerator{wrapped: generator, policy: policy}
}

type retryingGenerator struct {
	wrapped TextGenerator
	policy  *RetryPolicy
}

func (g *retryingGenerator) GenerateText(ctx context.Context, prompt string, temperature *float32) (string, error) {
	return g.policy.Execute(ctx, func(ctx context.Context) (string, error) {
		return g.wrapped.GenerateText(ctx, prompt, temperature)
	})
}
