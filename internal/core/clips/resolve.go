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

package clips

import (
	"os"
	"path/filepath"
	"strings"
)

// PathResolver maps a stored media reference, which may be stale, relative,
// or from an earlier deployment, to an existing file under the current
// deployment's upload root. Stat is injectable for tests and defaults to
// os.Stat.
type PathResolver struct {
	UploadRoot   string
	LegacyPrefix string
	Stat         func(string) (os.FileInfo, error)
}

// NewPathResolver builds a resolver rooted at uploadRoot. legacyPrefix is
// the path prefix older records carry that no longer exists on disk.
func NewPathResolver(uploadRoot string, legacyPrefix string) *PathResolver {
	return &PathResolver{
		UploadRoot:   uploadRoot,
		LegacyPrefix: legacyPrefix,
		Stat:         os.Stat,
	}
}

// IsRemoteURL reports whether the reference is a remote location ffmpeg can
// read directly, with no local resolution needed.
func IsRemoteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "gs://")
}

// Resolve returns a playable location for the stored reference. Remote URLs
// pass through unchanged. Local references try, in order: the reference as
// given, the upload root joined with its basename, the upload root joined
// with the legacy-prefix-stripped reference, and the absolute form of the
// reference. The first candidate that exists on disk wins; a total miss is a
// NotFoundError carrying every candidate tried.
func (r *PathResolver) Resolve(ref string) (string, error) {
	if IsRemoteURL(ref) {
		return ref, nil
	}

	stat := r.Stat
	if stat == nil {
		stat = os.Stat
	}

	candidates := []string{
		ref,
		filepath.Join(r.UploadRoot, filepath.Base(ref)),
	}
	if r.LegacyPrefix != "" && strings.HasPrefix(ref, r.LegacyPrefix) {
		candidates = append(candidates,
			filepath.Join(r.UploadRoot, strings.TrimPrefix(ref, r.LegacyPrefix)))
	} else {
		candidates = append(candidates, filepath.Join(r.UploadRoot, ref))
	}
	if abs, err := filepath.Abs(ref); err == nil {
		candidates = append(candidates, abs)
	}

	tried := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		tried = append(tried, candidate)
		if info, err := stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", &NotFoundError{Ref: ref, Tried: tried}
}
