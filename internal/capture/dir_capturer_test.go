// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package capture

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/voicebankai/config"
	"github.com/voicebankai/internal/audio"
	"github.com/voicebankai/pkg/commons"
)

func newTestCapturer(t *testing.T) *DirCapturer {
	t.Helper()
	logger, err := commons.NewApplicationLogger(
		commons.Name("test-capture"),
		commons.Level("debug"),
	)
	if err != nil {
		t.Fatalf("NewApplicationLogger: %v", err)
	}
	cfg := &config.AppConfig{}
	cfg.Recording.InboxDir = t.TempDir()
	cfg.Recording.MaxDuration = 15
	cfg.Recording.MimeType = "audio/wav"
	capturer, err := NewDirCapturer(cfg, logger)
	if err != nil {
		t.Fatalf("NewDirCapturer: %v", err)
	}
	return capturer
}

func writeTake(t *testing.T, capturer *DirCapturer, name string, seconds float64) {
	t.Helper()
	n := int(seconds * 16000 * audio.BytesPerSample)
	wav := audio.BuildWAV(make([]byte, n), 16000, 1)
	if err := os.WriteFile(filepath.Join(capturer.dir, name), wav, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCaptureConsumesOldestTake(t *testing.T) {
	capturer := newTestCapturer(t)
	writeTake(t, capturer, "take_001.wav", 1.0)
	writeTake(t, capturer, "take_002.wav", 2.0)

	artifact, err := capturer.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if math.Abs(artifact.DurationSeconds-1.0) > 1e-9 {
		t.Errorf("duration = %f, want the first take's 1.0", artifact.DurationSeconds)
	}
	if artifact.MimeType != "audio/wav" {
		t.Errorf("mime = %q, want audio/wav", artifact.MimeType)
	}
	if _, err := os.Stat(filepath.Join(capturer.dir, "take_001.wav")); !os.IsNotExist(err) {
		t.Error("consumed take must be removed from the inbox")
	}
	if _, err := os.Stat(filepath.Join(capturer.dir, "take_002.wav")); err != nil {
		t.Error("later take must stay queued")
	}
}

func TestCaptureWaitsForTake(t *testing.T) {
	capturer := newTestCapturer(t)

	go func() {
		time.Sleep(300 * time.Millisecond)
		n := int(0.5 * 16000 * audio.BytesPerSample)
		wav := audio.BuildWAV(make([]byte, n), 16000, 1)
		os.WriteFile(filepath.Join(capturer.dir, "late.wav"), wav, 0o644)
	}()

	artifact, err := capturer.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if len(artifact.Bytes) == 0 {
		t.Error("empty artifact for the late take")
	}
}

func TestCaptureCanceled(t *testing.T) {
	capturer := newTestCapturer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := capturer.Capture(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want context deadline", err)
	}
}

func TestCaptureTruncatesOverlongTake(t *testing.T) {
	capturer := newTestCapturer(t)
	capturer.cfg.Recording.MaxDuration = 2.0
	writeTake(t, capturer, "long.wav", 5.0)

	artifact, err := capturer.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if math.Abs(artifact.DurationSeconds-2.0) > 1e-9 {
		t.Errorf("duration = %f, want truncated 2.0", artifact.DurationSeconds)
	}
	info, err := audio.ProbeWAV(artifact.Bytes)
	if err != nil {
		t.Fatalf("ProbeWAV: %v", err)
	}
	if math.Abs(info.DurationSeconds-2.0) > 1e-9 {
		t.Errorf("rebuilt header says %f, want 2.0", info.DurationSeconds)
	}
}

func TestCaptureSkipsUnreadableFiles(t *testing.T) {
	capturer := newTestCapturer(t)
	if err := os.WriteFile(filepath.Join(capturer.dir, "aaa_garbage.wav"), []byte("not a wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeTake(t, capturer, "zzz_good.wav", 1.0)

	artifact, err := capturer.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if math.Abs(artifact.DurationSeconds-1.0) > 1e-9 {
		t.Errorf("duration = %f, want the good take's 1.0", artifact.DurationSeconds)
	}
}
