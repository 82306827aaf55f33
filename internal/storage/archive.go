// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voicebankai/config"
	"github.com/voicebankai/pkg/commons"
)

// ArchivedRecording is the metadata sidecar written next to each audio
// file in the uploads directory. Degraded uploads land here so they can be
// resubmitted once the remote collection service is reachable again.
type ArchivedRecording struct {
	RecordingID string          `json:"recordingId"`
	Filename    string          `json:"filename"`
	FileSize    int64           `json:"fileSize"`
	UploadedAt  time.Time       `json:"uploadedAt"`
	SessionID   string          `json:"sessionId,omitempty"`
	PhraseText  string          `json:"phraseText,omitempty"`
	Duration    float64         `json:"duration,omitempty"`
	Label       json.RawMessage `json:"label,omitempty"`
}

// Stats aggregates the archive for the /api/stats endpoint.
type Stats struct {
	TotalRecordings int     `json:"totalRecordings"`
	TotalDuration   float64 `json:"totalDuration"`
	TotalSizeBytes  int64   `json:"totalSizeBytes"`
	UniqueSessions  int     `json:"uniqueSessions"`
	UniquePhrases   int     `json:"uniquePhrases"`
	AverageDuration float64 `json:"averageDuration"`
}

// Archive stores recordings and metadata sidecars on disk.
type Archive struct {
	cfg    *config.AppConfig
	logger commons.Logger
	dir    string
}

func NewArchive(cfg *config.AppConfig, logger commons.Logger) (*Archive, error) {
	dir := cfg.Session.UploadsDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create uploads directory %q: %w", dir, err)
	}
	return &Archive{cfg: cfg, logger: logger, dir: dir}, nil
}

// labelFields is the subset of the upload label the archive indexes for
// listing and stats.
type labelFields struct {
	SessionID  string  `json:"sessionId"`
	PhraseText string  `json:"phraseText"`
	Duration   float64 `json:"duration"`
}

// Save writes the audio bytes and a metadata sidecar, returning the
// archived record.
func (a *Archive) Save(filename string, data []byte, label []byte) (*ArchivedRecording, error) {
	recordingID := fmt.Sprintf("rec_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:9])

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".webm"
	}
	storedName := recordingID + ext
	if err := os.WriteFile(filepath.Join(a.dir, storedName), data, 0o644); err != nil {
		return nil, fmt.Errorf("unable to store recording: %w", err)
	}

	rec := &ArchivedRecording{
		RecordingID: recordingID,
		Filename:    storedName,
		FileSize:    int64(len(data)),
		UploadedAt:  time.Now(),
	}
	if len(label) > 0 {
		var fields labelFields
		if err := json.Unmarshal(label, &fields); err == nil {
			rec.SessionID = fields.SessionID
			rec.PhraseText = fields.PhraseText
			rec.Duration = fields.Duration
			rec.Label = json.RawMessage(label)
		} else {
			a.logger.Warnf("recording %s has an unparsable label, archiving without it", recordingID)
		}
	}

	sidecar, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(a.dir, recordingID+".json"), sidecar, 0o644); err != nil {
		return nil, fmt.Errorf("unable to store recording metadata: %w", err)
	}

	a.logger.Infof("archived recording %s (%d bytes)", recordingID, len(data))
	return rec, nil
}

// List returns every archived recording, most recent first. Unreadable
// sidecars are logged and skipped.
func (a *Archive) List() ([]*ArchivedRecording, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, err
	}

	recordings := make([]*ArchivedRecording, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(a.dir, entry.Name()))
		if err != nil {
			a.logger.Warnf("unable to read sidecar %s: %v", entry.Name(), err)
			continue
		}
		var rec ArchivedRecording
		if err := json.Unmarshal(data, &rec); err != nil {
			a.logger.Warnf("corrupt sidecar %s: %v", entry.Name(), err)
			continue
		}
		recordings = append(recordings, &rec)
	}

	sort.Slice(recordings, func(i, j int) bool {
		return recordings[i].UploadedAt.After(recordings[j].UploadedAt)
	})
	return recordings, nil
}

// Stats aggregates totals across the archive.
func (a *Archive) Stats() (*Stats, error) {
	recordings, err := a.List()
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalRecordings: len(recordings)}
	sessions := make(map[string]struct{})
	phrases := make(map[string]struct{})
	for _, rec := range recordings {
		stats.TotalDuration += rec.Duration
		stats.TotalSizeBytes += rec.FileSize
		if rec.SessionID != "" {
			sessions[rec.SessionID] = struct{}{}
		}
		if rec.PhraseText != "" {
			phrases[rec.PhraseText] = struct{}{}
		}
	}
	stats.UniqueSessions = len(sessions)
	stats.UniquePhrases = len(phrases)
	if stats.TotalRecordings > 0 {
		stats.AverageDuration = stats.TotalDuration / float64(stats.TotalRecordings)
	}
	return stats, nil
}

// Purge removes every file in the archive and returns how many were
// deleted. Intended for test rigs only.
func (a *Archive) Purge() (int, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(a.dir, entry.Name())); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
