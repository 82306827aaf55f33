// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.

// Package capture picks up takes recorded by an external rig. The rig
// drops finished wav files into an inbox directory; Capture consumes the
// oldest one and hands it to the session controller as an artifact.
package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/voicebankai/config"
	"github.com/voicebankai/internal/audio"
	"github.com/voicebankai/internal/session"
	"github.com/voicebankai/pkg/commons"
)

const pollInterval = 250 * time.Millisecond

type DirCapturer struct {
	cfg    *config.AppConfig
	logger commons.Logger
	dir    string
}

// NewDirCapturer watches the configured inbox directory for finished wav
// takes.
func NewDirCapturer(cfg *config.AppConfig, logger commons.Logger) (*DirCapturer, error) {
	dir := cfg.Recording.InboxDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create inbox directory %q: %w", dir, err)
	}
	return &DirCapturer{cfg: cfg, logger: logger, dir: dir}, nil
}

// Capture blocks until a wav file appears in the inbox or the context is
// canceled. The file is removed once consumed; a take longer than the
// configured maximum is truncated to it, matching the recorder's own
// auto-stop.
func (d *DirCapturer) Capture(ctx context.Context) (session.Artifact, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if artifact, ok, err := d.consumeNext(); err != nil {
			return session.Artifact{}, err
		} else if ok {
			return artifact, nil
		}

		select {
		case <-ctx.Done():
			return session.Artifact{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (d *DirCapturer) consumeNext() (session.Artifact, bool, error) {
	name, ok, err := d.oldestWav()
	if err != nil || !ok {
		return session.Artifact{}, false, err
	}
	path := filepath.Join(d.dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		return session.Artifact{}, false, fmt.Errorf("unable to read take %s: %w", name, err)
	}
	if err := os.Remove(path); err != nil {
		d.logger.Warnf("unable to remove consumed take %s: %v", name, err)
	}

	info, err := audio.ProbeWAV(data)
	if err != nil {
		// Not a playable take; skip it rather than wedging the inbox.
		d.logger.Warnf("discarding unreadable take %s: %v", name, err)
		return session.Artifact{}, false, nil
	}

	if max := d.cfg.Recording.MaxDuration; info.DurationSeconds > max {
		data = truncateWAV(data, info, max)
		info.DurationSeconds = max
		d.logger.Infof("take %s truncated to the %.1fs maximum", name, max)
	}

	return session.Artifact{
		Bytes:           data,
		MimeType:        d.cfg.Recording.MimeType,
		DurationSeconds: info.DurationSeconds,
	}, true, nil
}

func (d *DirCapturer) oldestWav() (string, bool, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return "", false, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".wav") {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return "", false, nil
	}
	sort.Strings(names)
	return names[0], true, nil
}

// truncateWAV cuts the data chunk of a canonical wav payload down to the
// given duration and rebuilds the container so the header stays honest.
func truncateWAV(data []byte, info audio.WAVInfo, seconds float64) []byte {
	keep := int(seconds * float64(info.SampleRate*info.Channels*audio.BytesPerSample))
	pcm := data[44:]
	if keep > len(pcm) {
		keep = len(pcm)
	}
	return audio.BuildWAV(pcm[:keep], info.SampleRate, info.Channels)
}
