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

// Package services contains the business logic for interacting with data
// sources. This file centralizes the BigQuery SQL query strings; the
// placeholders are fmt.Sprintf format verbs filled in at runtime with the
// fully qualified table name and the lookup keys.
package services

const (
	// QryFindSourceVideoById looks up one uploaded video record by its id.
	QryFindSourceVideoById = "SELECT * FROM `%s` WHERE id = '%s'"

	// QryFindFinalAssetByJobId looks up one merged asset by the job that
	// produced it.
	QryFindFinalAssetByJobId = "SELECT * FROM `%s` WHERE job_id = '%s'"

	// QryListSourceVideos lists the most recent uploads, newest first.
	QryListSourceVideos = "SELECT * FROM `%s` ORDER BY upload_date DESC LIMIT %d"
)
