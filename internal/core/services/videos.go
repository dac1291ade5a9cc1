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

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/jaycherian/gcp-go-clip-composer/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
)

// VideoService is the data access layer for video records: source video
// lookups for the merge pipeline, final asset lookups for the API, and
// signed streaming URLs for assets stored in GCS.
type VideoService struct {
	BigqueryClient   *bigquery.Client
	StorageClient    *storage.Client
	IAMClient        *credentials.IamCredentialsClient
	SignerEmail      string
	DatasetName      string
	SourceVideoTable string
	FinalAssetTable  string
}

// GetSourceVideoFQN returns the fully qualified source video table name with
// dots instead of colons so it can be used in standard SQL.
func (s *VideoService) GetSourceVideoFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.SourceVideoTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// GetFinalAssetFQN returns the fully qualified final asset table name.
func (s *VideoService) GetFinalAssetFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.FinalAssetTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// GetSourceVideo retrieves a single source video record by id. It satisfies
// the lookup the clip source resolver depends on.
func (s *VideoService) GetSourceVideo(ctx context.Context, id string) (*model.SourceVideo, error) {
	queryText := fmt.Sprintf(QryFindSourceVideoById, s.GetSourceVideoFQN(), id)
	q := s.BigqueryClient.Query(queryText)
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, &clips.UpstreamError{Op: "bigquery.query source video", Err: err}
	}
	video := &model.SourceVideo{}
	if err := itr.Next(video); err != nil {
		return nil, fmt.Errorf("source video %s: %w", id, err)
	}
	return video, nil
}

// GetFinalAsset retrieves the merged asset record produced by a job.
func (s *VideoService) GetFinalAsset(ctx context.Context, jobId string) (*model.FinalAsset, error) {
	queryText := fmt.Sprintf(QryFindFinalAssetByJobId, s.GetFinalAssetFQN(), jobId)
	q := s.BigqueryClient.Query(queryText)
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, &clips.UpstreamError{Op: "bigquery.query final asset", Err: err}
	}
	asset := &model.FinalAsset{}
	if err := itr.Next(asset); err != nil {
		return nil, fmt.Errorf("final asset %s: %w", jobId, err)
	}
	return asset, nil
}

// ListSourceVideos returns the most recent uploads, newest first.
func (s *VideoService) ListSourceVideos(ctx context.Context, limit int) ([]*model.SourceVideo, error) {
	queryText := fmt.Sprintf(QryListSourceVideos, s.GetSourceVideoFQN(), limit)
	q := s.BigqueryClient.Query(queryText)
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, &clips.UpstreamError{Op: "bigquery.list source videos", Err: err}
	}
	var videos []*model.SourceVideo
	for {
		video := &model.SourceVideo{}
		err := itr.Next(video)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, nil
}

// GenerateSignedURL creates a time-limited URL for a stored asset so clients
// can stream directly from GCS without credentials. The stored URL carries
// the mtls host prefix; it is split into bucket and object before signing
// with the V4 scheme.
func (s *VideoService) GenerateSignedURL(_ context.Context, gcsURI string, expires time.Duration) (string, error) {
	if !strings.HasPrefix(gcsURI, cloud.GCSURLPrefix) {
		return "", fmt.Errorf("invalid GCS URI format: %s", gcsURI)
	}
	path := strings.TrimPrefix(gcsURI, cloud.GCSURLPrefix)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid GCS URI: unable to determine bucket and object from %s", gcsURI)
	}
	bucketName := parts[0]
	objectName := parts[1]

	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "GET",
		Expires:        time.Now().Add(expires),
		GoogleAccessID: s.SignerEmail,
	}

	u, err := s.StorageClient.Bucket(bucketName).SignedURL(objectName, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).Object(%q).SignedURL: %w", bucketName, objectName, err)
	}
	return u, nil
}
