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

// Package clips holds the pure core of both pipelines: token budgeting,
// constraint parsing, prompt rendering, lenient response parsing, clip
// validation, fallback synthesis, and media path resolution. Nothing in this
// package touches the network or spawns processes, which keeps the whole
// error taxonomy and every invariant unit-testable without cloud access.
package clips

import (
	"fmt"
	"strings"
	"time"
)

// RateLimitedError signals the generation service refused the call for quota
// reasons. RetryAfter is the service-advertised delay when one was given,
// zero otherwise. This is the only error class the retry policy retries.
type RateLimitedError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("generation rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("generation rate limited: %v", e.Err)
}

func (e *RateLimitedError) Unwrap() error { return e.Err }

// GenerationError covers unusable model output or a failed generation call
// after retries are exhausted. Selection degrades to fallback synthesis on
// this; contexts without a fallback treat it as fatal.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ValidationError identifies the first clip that failed a constraint check,
// the field that failed, and the expected vs. actual values.
type ValidationError struct {
	ClipID   string
	Field    string
	Expected string
	Actual   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("clip %s failed validation on %s: expected %s, got %s",
		e.ClipID, e.Field, e.Expected, e.Actual)
}

// NotFoundError reports a media reference that resolved to nothing on disk.
// Tried carries every candidate path in the order they were checked; callers
// must surface the list, not swallow it.
type NotFoundError struct {
	Ref   string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no file found for reference %q, tried: %s",
		e.Ref, strings.Join(e.Tried, ", "))
}

// TimeoutError reports a subprocess that exceeded its wall-clock budget and
// was terminated.
type TimeoutError struct {
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("subprocess exceeded the %s wall-clock limit and was killed", e.Limit)
}

// EmptyOutputError reports a subprocess that exited successfully but left an
// unusable artifact (zero bytes or zero probed duration). Exit codes alone
// are not trusted.
type EmptyOutputError struct {
	Path string
}

func (e *EmptyOutputError) Error() string {
	return fmt.Sprintf("subprocess reported success but output %q is empty or has no duration", e.Path)
}

// UpstreamError wraps a failed storage or persistence call with the
// operation name for diagnosis.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream operation %q failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
