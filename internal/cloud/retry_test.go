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

package cloud_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-clip-composer/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
)

// fakeClock records requested sleeps without actually sleeping.
type fakeClock struct {
	slept []time.Duration
}

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	return nil
}

func testPolicy(clock *fakeClock) *cloud.RetryPolicy {
	policy := cloud.NewRetryPolicy()
	policy.Sleep = clock.sleep
	return policy
}

func TestRetryPolicySucceedsFirstTry(t *testing.T) {
	clock := &fakeClock{}
	calls := 0

	out, err := testPolicy(clock).Execute(context.Background(), func(_ context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clock.slept)
}

func TestRetryPolicyDoublingBackoffWithoutHint(t *testing.T) {
	clock := &fakeClock{}
	calls := 0

	_, err := testPolicy(clock).Execute(context.Background(), func(_ context.Context) (string, error) {
		calls++
		return "", &clips.RateLimitedError{}
	})

	var rateLimited *clips.RateLimitedError
	require.ErrorAs(t, err, &rateLimited)
	assert.Equal(t, cloud.MaxGenerationAttempts, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, clock.slept)
}

func TestRetryPolicyHonorsAdvertisedDelay(t *testing.T) {
	clock := &fakeClock{}
	calls := 0

	out, err := testPolicy(clock).Execute(context.Background(), func(_ context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", &clips.RateLimitedError{RetryAfter: 7 * time.Second}
		}
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Equal(t, []time.Duration{7 * time.Second}, clock.slept)
}

func TestRetryPolicyDoesNotRetryOtherErrors(t *testing.T) {
	clock := &fakeClock{}
	calls := 0

	_, err := testPolicy(clock).Execute(context.Background(), func(_ context.Context) (string, error) {
		calls++
		return "", &clips.GenerationError{Reason: "malformed prompt"}
	})

	var genErr *clips.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clock.slept)
}

func TestRetryPolicyStopsOnCancelledSleep(t *testing.T) {
	policy := cloud.NewRetryPolicy()
	policy.Sleep = func(_ context.Context, _ time.Duration) error {
		return context.Canceled
	}
	calls := 0

	_, err := policy.Execute(context.Background(), func(_ context.Context) (string, error) {
		calls++
		return "", &clips.RateLimitedError{}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
