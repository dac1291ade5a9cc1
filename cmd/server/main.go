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

// Package main is the entry point for the clip composer server.
//
// The server exposes a REST API for transcript-driven clip selection, media
// merging, video lookups, streaming URLs, and uploads. It is instrumented
// with OpenTelemetry and also consumes merge requests from a Pub/Sub
// subscription.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-clip-composer/internal/core/clips"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/commands"
	"github.com/jaycherian/gcp-go-clip-composer/internal/core/model"
	"github.com/jaycherian/gcp-go-clip-composer/internal/telemetry"
)

func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	_, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	r := gin.Default()
	r.Use(otelgin.Middleware("clip-composer-server"))
	r.Use(cors.Default())

	apiV1 := r.Group("/api/v1")
	{
		ClipRouter(apiV1)
		VideoRouter(apiV1)
		FileUpload(apiV1)
	}

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}

	log.Println("Server exiting")
}

// ClipRouter registers the selection and merge endpoints.
//
//   - POST /clips/select: run the transcript selection pipeline.
//   - POST /clips/merge: run a merge job to completion and return the asset.
func ClipRouter(r *gin.RouterGroup) {
	group := r.Group("/clips")
	{
		group.POST("/select", func(c *gin.Context) {
			var request model.SelectionRequest
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := state.clipService.SelectClips(c.Request.Context(), &request)
			if err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, result)
		})

		group.POST("/merge", func(c *gin.Context) {
			var request model.MergeRequest
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			asset, err := state.mergeService.MergeClips(c.Request.Context(), &request)
			if err != nil {
				c.JSON(mergeStatus(err), gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, asset)
		})
	}
}

// mergeStatus maps a merge pipeline failure onto an HTTP status.
func mergeStatus(err error) int {
	var notFound *clips.NotFoundError
	var timeout *clips.TimeoutError
	var upstream *clips.UpstreamError
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// DefaultListCount is how many recent videos a listing returns when the
// caller does not say.
const DefaultListCount = 25

// listCount parses a ?count query value, falling back to the default for
// missing or unusable values.
func listCount(raw string) int {
	count, err := strconv.Atoi(raw)
	if err != nil || count <= 0 {
		return DefaultListCount
	}
	return count
}

// VideoRouter registers the video and asset lookup endpoints.
//
//   - GET /videos: the most recent source videos, newest first.
//   - GET /videos/:id: a source video record.
//   - GET /videos/:id/stream: a time-limited streaming URL for a source video.
//   - GET /assets/:id: a merged asset record by job id.
func VideoRouter(r *gin.RouterGroup) {
	videos := r.Group("/videos")
	{
		videos.GET("", func(c *gin.Context) {
			results, err := state.videoService.ListSourceVideos(c.Request.Context(), listCount(c.Query("count")))
			if err != nil {
				slog.Error("failed to list source videos", "error", err)
				c.JSON(http.StatusBadGateway, gin.H{"error": "could not list videos"})
				return
			}
			c.JSON(http.StatusOK, results)
		})

		videos.GET("/:id", func(c *gin.Context) {
			video, err := state.videoService.GetSourceVideo(c.Request.Context(), c.Param("id"))
			if err != nil {
				c.Status(http.StatusNotFound)
				return
			}
			c.JSON(http.StatusOK, video)
		})

		videos.GET("/:id/stream", func(c *gin.Context) {
			video, err := state.videoService.GetSourceVideo(c.Request.Context(), c.Param("id"))
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
				return
			}
			signedURL, err := state.videoService.GenerateSignedURL(c.Request.Context(), video.StorageUrl, 15*time.Minute)
			if err != nil {
				slog.Error("failed to generate signed url", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate streaming URL"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"url": signedURL})
		})
	}

	assets := r.Group("/assets")
	{
		assets.GET("/:id", func(c *gin.Context) {
			asset, err := state.videoService.GetFinalAsset(c.Request.Context(), c.Param("id"))
			if err != nil {
				c.Status(http.StatusNotFound)
				return
			}
			c.JSON(http.StatusOK, asset)
		})
	}
}

// FileUpload registers the multipart upload endpoint. Each file is sniffed
// for a video type, saved under the upload root, mirrored to GCS, and
// registered as a SourceVideo record.
func FileUpload(r *gin.RouterGroup) {
	upload := r.Group("/upload")
	{
		upload.POST("", func(c *gin.Context) {
			form, err := c.MultipartForm()
			if err != nil {
				c.String(http.StatusBadRequest, "get form err: %s", err.Error())
				return
			}
			files := form.File["files"]

			var registered []*model.SourceVideo
			for _, file := range files {
				localPath := filepath.Join(state.config.Storage.UploadRoot, file.Filename)
				if err := c.SaveUploadedFile(file, localPath); err != nil {
					c.String(http.StatusBadRequest, "upload file err: %s", err.Error())
					return
				}

				content, err := os.ReadFile(localPath)
				if err != nil {
					slog.Error("failed to read uploaded file", "path", localPath, "error", err)
					c.Status(http.StatusInternalServerError)
					return
				}
				if !filetype.IsVideo(content) {
					_ = os.Remove(localPath)
					c.String(http.StatusUnsupportedMediaType, "%s is not a video file", file.Filename)
					return
				}

				storageUrl, err := state.blobStore.Put(c.Request.Context(), localPath,
					state.config.Storage.AssetBucket, "uploads/"+file.Filename, "video/mp4")
				if err != nil {
					c.String(http.StatusBadGateway, "write file to bucket err: %s", err.Error())
					return
				}

				video := &model.SourceVideo{
					Id:              uuid.New().String(),
					FileName:        file.Filename,
					StoragePath:     file.Filename,
					StorageUrl:      storageUrl,
					DurationSeconds: probeDuration(c.Request.Context(), localPath),
					UploadDate:      time.Now(),
				}
				if err := state.sourceInserter.Put(c.Request.Context(), video); err != nil {
					slog.Error("failed to register source video", "id", video.Id, "error", err)
					c.Status(http.StatusBadGateway)
					return
				}
				registered = append(registered, video)
			}
			c.JSON(http.StatusOK, registered)
		})
	}
}

// probeDuration measures an uploaded file with ffprobe. Failures degrade to
// zero; the record can be backfilled once the file is probed successfully.
func probeDuration(ctx context.Context, path string) float64 {
	cmd := exec.CommandContext(ctx, state.config.Merge.FfprobePath,
		"-v", "error", "-print_format", "json", "-show_format", path)
	raw, err := cmd.Output()
	if err != nil {
		slog.Warn("ffprobe failed for upload", "path", path, "error", err)
		return 0
	}
	duration, err := commands.ParseProbeDuration(raw)
	if err != nil {
		slog.Warn("unparsable ffprobe output for upload", "path", path, "error", err)
		return 0
	}
	return duration
}
