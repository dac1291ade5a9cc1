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

package clips_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
)

func TestParseConstraint(t *testing.T) {
	tests := []struct {
		name        string
		instruction string
		duration    float64
		hasDuration bool
		fromEnd     bool
	}{
		{
			name:        "duration and end anchor",
			instruction: "give me an 8 second clip from the end",
			duration:    8,
			hasDuration: true,
			fromEnd:     true,
		},
		{
			name:        "fractional seconds",
			instruction: "make it 11.5 seconds about the launch",
			duration:    11.5,
			hasDuration: true,
		},
		{
			name:        "compact unit",
			instruction: "a 20s highlight",
			duration:    20,
			hasDuration: true,
		},
		{
			name:        "whole minutes convert to seconds",
			instruction: "cut a 2 minute clip of the keynote",
			duration:    120,
			hasDuration: true,
		},
		{
			name:        "fractional hyphenated minutes",
			instruction: "a 1.5-minute recap",
			duration:    90,
			hasDuration: true,
		},
		{
			name:        "seconds win over minutes",
			instruction: "from the 3 minute mark grab 20 seconds",
			duration:    20,
			hasDuration: true,
		},
		{
			name:        "last keyword anchors to end",
			instruction: "show the last part of the interview",
			fromEnd:     true,
		},
		{
			name:        "no numeric hints",
			instruction: "give me a clip about the product demo",
		},
		{
			name:        "word ending in s is not a unit",
			instruction: "a clip about sports",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			constraint := clips.ParseConstraint(tt.instruction)
			if tt.hasDuration {
				require.NotNil(t, constraint.ExplicitDurationSeconds)
				assert.InDelta(t, tt.duration, *constraint.ExplicitDurationSeconds, 0.0001)
			} else {
				assert.Nil(t, constraint.ExplicitDurationSeconds)
			}
			assert.Equal(t, tt.fromEnd, constraint.RequireFromEnd)
		})
	}
}
