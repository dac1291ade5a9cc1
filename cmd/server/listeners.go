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

package main

import (
	"context"

	"github.com/jaycherian/gcp-go-clip-composer/internal/cloud"
)

// SetupListeners attaches the merge pipeline to the merge-request
// subscription and starts listening. The pipeline comes from the merge
// service so queued jobs share the same concurrency gate as API-driven
// ones. Messages are acked only when the whole pipeline succeeds, so failed
// merges are redelivered or dead-lettered per the subscription policy.
func SetupListeners(ctx context.Context, cloudClients *cloud.ServiceClients) {
	cloudClients.PubSubListeners["merge_requests"].SetCommand(state.mergeService.MessagePipeline())
	cloudClients.PubSubListeners["merge_requests"].Listen(ctx)
}
