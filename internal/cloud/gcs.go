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
// services. This file implements the durable-storage surface over GCS:
// copy a local file into a bucket and hand back its canonical URL.
package cloud

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
)

// GCSURLPrefix is the scheme and host all stored asset URLs carry. The
// signed URL generator parses bucket and object back out of this form.
const GCSURLPrefix = "https://storage.mtls.cloud.google.com/"

// GCSBlobStore copies local files into GCS buckets.
type GCSBlobStore struct {
	Client *storage.Client
}

func NewGCSBlobStore(client *storage.Client) *GCSBlobStore {
	return &GCSBlobStore{Client: client}
}

// Put streams localPath into bucket/objectName with the given content type
// and returns the object's canonical URL. The writer is closed before the
// URL is returned, so a non-error result means the object is durably
// stored.
func (s *GCSBlobStore) Put(ctx context.Context, localPath string, bucket string, objectName string, contentType string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for upload: %w", localPath, err)
	}
	defer file.Close()

	writer := s.Client.Bucket(bucket).Object(objectName).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := io.Copy(writer, file); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to write gs://%s/%s: %w", bucket, objectName, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize gs://%s/%s: %w", bucket, objectName, err)
	}
	return GCSURLPrefix + bucket + "/" + objectName, nil
}
