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

// Package model defines the data structures for the clip composer. This file
// holds the persisted records (source videos and final merged assets, both
// stored in BigQuery) and the in-flight merge job that produces an asset.
package model

import "time"

// SourceVideo is the persisted record for an uploaded video. StoragePath is
// the stored reference the path resolver works from; it may be a bare
// filename, a stale absolute path from an earlier deployment, or a remote
// URL.
type SourceVideo struct {
	Id              string    `json:"id" bigquery:"id"`
	FileName        string    `json:"file_name" bigquery:"file_name"`
	StoragePath     string    `json:"storage_path" bigquery:"storage_path"`
	StorageUrl      string    `json:"storage_url,omitempty" bigquery:"storage_url"`
	ThumbnailUrl    string    `json:"thumbnail_url,omitempty" bigquery:"thumbnail_url"`
	DurationSeconds float64   `json:"duration_seconds" bigquery:"duration_seconds"`
	UploadDate      time.Time `json:"upload_date" bigquery:"upload_date"`
}

// MergeJob state names, in pipeline order.
const (
	JobStateResolving  = "resolving"
	JobStateMerging    = "merging"
	JobStateVerifying  = "verifying"
	JobStateThumbnail  = "thumbnail"
	JobStateUploading  = "uploading"
	JobStatePersisting = "persisting"
	JobStateDone       = "done"
	JobStateFailed     = "failed"
)

// MergeJob is the unit of work for one merge request. WorkDir is a
// job-scoped temporary directory, namespaced by JobId so concurrent jobs
// never collide; it is removed on every exit path.
type MergeJob struct {
	JobId     string    `json:"job_id"`
	OwnerId   string    `json:"owner_id"`
	Clips     []*Clip   `json:"clips"`
	State     string    `json:"state"`
	WorkDir   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// ResolvedClip pairs a requested clip with the playable location of its
// source footage. Source is the looked-up video record; Path is either a
// local absolute path or a remote URL ffmpeg can read directly.
type ResolvedClip struct {
	Clip   *Clip
	Source *SourceVideo
	Path   string
}

// SourceClipRef is the per-clip provenance stored on a FinalAsset.
type SourceClipRef struct {
	SourceId        string  `json:"source_id" bigquery:"source_id"`
	StartTime       float64 `json:"start_time" bigquery:"start_time"`
	EndTime         float64 `json:"end_time" bigquery:"end_time"`
	DurationSeconds float64 `json:"duration_seconds" bigquery:"duration_seconds"`
}

// MergeStats summarizes a completed merge for the historical record.
type MergeStats struct {
	TotalClips           int       `json:"total_clips" bigquery:"total_clips"`
	TotalDurationSeconds float64   `json:"total_duration_seconds" bigquery:"total_duration_seconds"`
	ProcessingTimeMs     int64     `json:"processing_time_ms" bigquery:"processing_time_ms"`
	MergeDate            time.Time `json:"merge_date" bigquery:"merge_date"`
}

// FinalAsset is the immutable record of a successful merge. It is inserted
// exactly once, after the merged file and thumbnail are durably stored, and
// never updated. DurationSeconds is the probed duration of the produced
// file, not the sum of the requested clip windows.
type FinalAsset struct {
	JobId           string           `json:"job_id" bigquery:"job_id"`
	OwnerId         string           `json:"owner_id" bigquery:"owner_id"`
	StorageUrl      string           `json:"storage_url" bigquery:"storage_url"`
	ThumbnailUrl    string           `json:"thumbnail_url,omitempty" bigquery:"thumbnail_url"`
	DurationSeconds float64          `json:"duration_seconds" bigquery:"duration_seconds"`
	SourceClips     []*SourceClipRef `json:"source_clips" bigquery:"source_clips"`
	Stats           *MergeStats      `json:"stats" bigquery:"stats"`
}

// MergeRequest is the external input to the merge pipeline, arriving either
// from the HTTP layer or from the merge-request Pub/Sub subscription.
type MergeRequest struct {
	OwnerId string  `json:"owner_id" binding:"required"`
	Clips   []*Clip `json:"clips" binding:"required,min=1"`
}
