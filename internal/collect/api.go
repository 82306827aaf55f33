// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package collect

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voicebankai/config"
	"github.com/voicebankai/internal/storage"
	"github.com/voicebankai/pkg/commons"
	"github.com/voicebankai/pkg/utils"
)

type collectApi struct {
	cfg       *config.AppConfig
	logger    commons.Logger
	service   *Service
	archive   *storage.Archive
	startedAt time.Time
}

// CollectApi exposes the HTTP surface of the collection proxy.
type CollectApi interface {
	Proxy(c *gin.Context)
	Ingest(c *gin.Context)
	ListRecordings(c *gin.Context)
	Stats(c *gin.Context)
	PurgeRecordings(c *gin.Context)
	Health(c *gin.Context)
}

func NewCollectApi(cfg *config.AppConfig, logger commons.Logger, service *Service, archive *storage.Archive) CollectApi {
	return &collectApi{
		cfg:       cfg,
		logger:    logger,
		service:   service,
		archive:   archive,
		startedAt: time.Now(),
	}
}

// Proxy handles POST /api/proxy: the multipart contract the browser
// pipeline posts to, forwarded to the remote collection service.
func (api *collectApi) Proxy(c *gin.Context) {
	data, filename, contentType, ok := api.readUpload(c, "file")
	if !ok {
		return
	}
	label := c.PostForm("label")

	result, err := api.service.Process(c.Request.Context(), data, filename, contentType, []byte(label))
	if err != nil {
		api.writeProcessError(c, err)
		return
	}

	switch result.Kind {
	case ResultAcceptedLocally:
		c.JSON(http.StatusOK, utils.Success(gin.H{
			"acceptedLocally": true,
			"message":         result.Message,
			"localFile":       result.Filename,
			"note":            "Recording archived for later upload to the collection service.",
		}))
	default:
		api.relay(c, result)
	}
}

// relay passes the remote service's reply through, wrapping non-JSON
// bodies in the error envelope so clients always get JSON.
func (api *collectApi) relay(c *gin.Context, result *Result) {
	if json.Valid(result.Body) && len(result.Body) > 0 {
		c.Data(result.Status, "application/json", result.Body)
		return
	}
	c.JSON(result.Status, gin.H{"status": "error", "message": string(result.Body)})
}

// Ingest handles POST /api/recordings: direct local collection without the
// remote hop, used for development rigs.
func (api *collectApi) Ingest(c *gin.Context) {
	data, filename, _, ok := api.readUpload(c, "audio")
	if !ok {
		return
	}

	metadata := c.PostForm("metadata")
	if !json.Valid([]byte(metadata)) || utils.IsEmpty(metadata) {
		c.JSON(http.StatusBadRequest, utils.Failure("Invalid metadata format"))
		return
	}

	rec, err := api.archive.Save(filename, data, []byte(metadata))
	if err != nil {
		api.logger.Errorf("unable to archive direct ingest: %v", err)
		c.JSON(http.StatusInternalServerError, utils.Failure("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, utils.Success(gin.H{
		"recordingId": rec.RecordingID,
		"message":     "Recording processed successfully",
		"data": gin.H{
			"filename":  rec.Filename,
			"size":      rec.FileSize,
			"duration":  rec.Duration,
			"timestamp": rec.UploadedAt,
		},
	}))
}

// ListRecordings handles GET /api/recordings.
func (api *collectApi) ListRecordings(c *gin.Context) {
	recordings, err := api.archive.List()
	if err != nil {
		api.logger.Errorf("unable to list recordings: %v", err)
		c.JSON(http.StatusInternalServerError, utils.Failure("Failed to fetch recordings"))
		return
	}
	c.JSON(http.StatusOK, utils.Success(gin.H{
		"count":      len(recordings),
		"recordings": recordings,
	}))
}

// Stats handles GET /api/stats.
func (api *collectApi) Stats(c *gin.Context) {
	stats, err := api.archive.Stats()
	if err != nil {
		api.logger.Errorf("unable to compute stats: %v", err)
		c.JSON(http.StatusInternalServerError, utils.Failure("Failed to fetch statistics"))
		return
	}
	c.JSON(http.StatusOK, utils.Success(gin.H{"statistics": stats}))
}

// PurgeRecordings handles DELETE /api/recordings.
func (api *collectApi) PurgeRecordings(c *gin.Context) {
	deleted, err := api.archive.Purge()
	if err != nil {
		api.logger.Errorf("unable to purge recordings: %v", err)
		c.JSON(http.StatusInternalServerError, utils.Failure("Failed to delete recordings"))
		return
	}
	c.JSON(http.StatusOK, utils.Success(gin.H{
		"message": fmt.Sprintf("Deleted %d files", deleted),
	}))
}

// Health handles GET /api/health.
func (api *collectApi) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(api.startedAt).Seconds(),
	})
}

// readUpload pulls a multipart file out of the request. A missing or empty
// part is a caller error, answered immediately.
func (api *collectApi) readUpload(c *gin.Context, field string) (data []byte, filename, contentType string, ok bool) {
	header, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.Failure("No audio file provided"))
		return nil, "", "", false
	}
	if header.Size > api.cfg.Collect.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, utils.Failure(ErrPayloadTooLarge.Error()))
		return nil, "", "", false
	}

	file, err := header.Open()
	if err != nil {
		api.logger.Errorf("unable to open uploaded file: %v", err)
		c.JSON(http.StatusBadRequest, utils.Failure("Unreadable audio file"))
		return nil, "", "", false
	}
	defer file.Close()

	data, err = io.ReadAll(io.LimitReader(file, api.cfg.Collect.MaxUploadBytes+1))
	if err != nil {
		api.logger.Errorf("unable to read uploaded file: %v", err)
		c.JSON(http.StatusBadRequest, utils.Failure("Unreadable audio file"))
		return nil, "", "", false
	}
	if int64(len(data)) > api.cfg.Collect.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, utils.Failure(ErrPayloadTooLarge.Error()))
		return nil, "", "", false
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, utils.Failure(ErrEmptyPayload.Error()))
		return nil, "", "", false
	}

	return data, header.Filename, header.Header.Get("Content-Type"), true
}

func (api *collectApi) writeProcessError(c *gin.Context, err error) {
	var transcodeErr *ErrTranscode
	switch {
	case errors.Is(err, ErrEmptyPayload), errors.Is(err, ErrUnsupportedMedia):
		c.JSON(http.StatusBadRequest, utils.Failure(err.Error()))
	case errors.Is(err, ErrPayloadTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, utils.Failure(err.Error()))
	case errors.As(err, &transcodeErr):
		api.logger.Errorf("transcode failure: %v", err)
		c.JSON(http.StatusInternalServerError, utils.Failure(err.Error()))
	default:
		api.logger.Errorf("proxy error: %v", err)
		c.JSON(http.StatusInternalServerError, utils.Failure("Proxy error: "+err.Error()))
	}
}
