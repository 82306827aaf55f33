// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package collect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/voicebankai/config"
	"github.com/voicebankai/internal/audio"
	"github.com/voicebankai/internal/storage"
	"github.com/voicebankai/pkg/commons"
)

// Caller errors. These surface as 4xx and are never degraded: a malformed
// request is a bug on the sending side, not a backend outage.
var (
	ErrEmptyPayload     = errors.New("no audio payload provided")
	ErrUnsupportedMedia = errors.New("only audio files are allowed")
	ErrPayloadTooLarge  = errors.New("audio payload exceeds the upload limit")
)

// ErrTranscode wraps a conversion failure. Reported as a delivery failure
// with the underlying reason, never silently dropped.
type ErrTranscode struct {
	Err error
}

func (e *ErrTranscode) Error() string { return fmt.Sprintf("audio conversion failed: %v", e.Err) }
func (e *ErrTranscode) Unwrap() error { return e.Err }

// ResultKind tags what happened to a proxied recording.
type ResultKind int

const (
	// ResultForwarded: the remote service answered; its status and body
	// are passed through.
	ResultForwarded ResultKind = iota
	// ResultAcceptedLocally: the remote service was unreachable, the
	// recording was archived and the caller gets a success-shaped reply.
	ResultAcceptedLocally
)

// Result is the outcome of proxying one recording.
type Result struct {
	Kind     ResultKind
	Status   int
	Body     json.RawMessage
	Message  string
	Filename string
}

// Service is the collection proxy: it validates an incoming recording,
// transcodes it to an accepted format when needed, forwards it to the
// remote collection service and degrades gracefully when that service is
// down. The one rule that matters: a volunteer must never lose a recorded
// take merely because the backend is unreachable.
type Service struct {
	cfg        *config.AppConfig
	logger     commons.Logger
	transcoder audio.Transcoder
	forwarder  Forwarder
	archive    *storage.Archive
}

func NewService(cfg *config.AppConfig, logger commons.Logger, transcoder audio.Transcoder, forwarder Forwarder, archive *storage.Archive) *Service {
	return &Service{
		cfg:        cfg,
		logger:     logger,
		transcoder: transcoder,
		forwarder:  forwarder,
		archive:    archive,
	}
}

// Process validates, converts and forwards one recording.
func (s *Service) Process(ctx context.Context, data []byte, filename, contentType string, label []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	if int64(len(data)) > s.cfg.Collect.MaxUploadBytes {
		return nil, ErrPayloadTooLarge
	}
	if !IsAudioUpload(filename, contentType) {
		return nil, ErrUnsupportedMedia
	}

	if !isAcceptedFormat(filename, contentType) {
		s.logger.Infof("converting %s (%s) to mp3 for the collection service", filename, contentType)
		converted, newName, err := s.transcoder.ToMP3(ctx, data, filename)
		if err != nil {
			return nil, &ErrTranscode{Err: err}
		}
		data = converted
		filename = newName
		contentType = "audio/mpeg"
	}

	result, err := s.forwarder.Forward(ctx, data, filename, contentType, string(label))
	if err != nil || isGatewayFailure(result.Status) {
		return s.acceptLocally(data, filename, label, err, result)
	}

	s.logger.Debugf("collection service answered %d for %s", result.Status, filename)
	return &Result{
		Kind:     ResultForwarded,
		Status:   result.Status,
		Body:     json.RawMessage(result.Body),
		Filename: filename,
	}, nil
}

// acceptLocally archives the recording and shapes a success reply. The
// recording stays in the uploads directory for later resubmission.
func (s *Service) acceptLocally(data []byte, filename string, label []byte, cause error, result *ForwardResult) (*Result, error) {
	reason := "collection service unreachable"
	if cause != nil {
		s.logger.Warnf("collection service unreachable for %s: %v", filename, cause)
	} else {
		reason = fmt.Sprintf("collection service returned %d", result.Status)
		s.logger.Warnf("collection service gateway failure for %s: status %d", filename, result.Status)
	}

	if _, err := s.archive.Save(filename, data, label); err != nil {
		// Archiving failed on top of the outage. Still do not fail the
		// volunteer; log loudly instead.
		s.logger.Errorf("unable to archive recording %s after degradation: %v", filename, err)
	}

	return &Result{
		Kind:     ResultAcceptedLocally,
		Status:   0,
		Message:  fmt.Sprintf("Recording saved locally (%s)", reason),
		Filename: filename,
	}, nil
}

// isGatewayFailure reports whether the remote status means "the service
// did not really handle this" and the degradation rule applies. Anything
// the remote service answered itself, including its own 4xx/500, is passed
// through instead.
func isGatewayFailure(status int) bool {
	switch status {
	case 502, 503, 504:
		return true
	}
	return false
}

// isAcceptedFormat reports whether the remote collection service takes
// this payload as-is (mp3, wav or flac, by extension or declared MIME).
func isAcceptedFormat(filename, contentType string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp3", ".wav", ".flac":
		return true
	}
	switch strings.ToLower(contentType) {
	case "audio/mpeg", "audio/mp3", "audio/wav", "audio/x-wav", "audio/flac":
		return true
	}
	return false
}

// IsAudioUpload reports whether an incoming file looks like audio: audio
// MIME, the generic octet-stream browsers sometimes send, or a known audio
// file extension.
func IsAudioUpload(filename, contentType string) bool {
	ct := strings.ToLower(contentType)
	if strings.HasPrefix(ct, "audio/") || ct == "application/octet-stream" {
		return true
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp3", ".wav", ".m4a", ".mp4", ".webm", ".ogg", ".flac":
		return true
	}
	return false
}
