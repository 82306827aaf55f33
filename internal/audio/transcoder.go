// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/voicebankai/config"
	"github.com/voicebankai/pkg/commons"
)

// Transcoder converts an audio payload into a format the remote collection
// service accepts.
type Transcoder interface {
	// ToMP3 converts input to mono MP3 at the configured sample rate and
	// bitrate, returning the converted bytes and the adjusted filename.
	ToMP3(ctx context.Context, input []byte, filename string) ([]byte, string, error)
}

type ffmpegTranscoder struct {
	cfg    *config.AppConfig
	logger commons.Logger
}

// NewFFmpegTranscoder shells out to the ffmpeg binary for browser-format
// conversion.
func NewFFmpegTranscoder(cfg *config.AppConfig, logger commons.Logger) Transcoder {
	return &ffmpegTranscoder{cfg: cfg, logger: logger}
}

func (t *ffmpegTranscoder) ToMP3(ctx context.Context, input []byte, filename string) ([]byte, string, error) {
	if len(input) == 0 {
		return nil, "", fmt.Errorf("empty audio payload")
	}

	tmpDir, err := os.MkdirTemp("", "transcode-")
	if err != nil {
		return nil, "", fmt.Errorf("unable to create transcode workspace: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	inPath := filepath.Join(tmpDir, "input")
	outPath := filepath.Join(tmpDir, "output.mp3")
	if err := os.WriteFile(inPath, input, 0o600); err != nil {
		return nil, "", fmt.Errorf("unable to stage input audio: %w", err)
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-i", inPath,
		"-acodec", "libmp3lame",
		"-f", "mp3",
		"-b:a", t.cfg.Recording.BitRate,
		"-ac", "1",
		"-ar", strconv.Itoa(t.cfg.Recording.SampleRate),
		outPath,
	}

	cmd := exec.CommandContext(ctx, t.cfg.Recording.FFmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	t.logger.Debugf("transcoding %s (%d bytes) to mp3", filename, len(input))
	if err := cmd.Run(); err != nil {
		return nil, "", fmt.Errorf("ffmpeg conversion failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	output, err := os.ReadFile(outPath)
	if err != nil {
		return nil, "", fmt.Errorf("ffmpeg produced no output: %w", err)
	}
	if len(output) == 0 {
		return nil, "", fmt.Errorf("ffmpeg produced an empty file")
	}

	return output, replaceExt(filename, ".mp3"), nil
}

func replaceExt(filename, ext string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if base == "" {
		base = "recording"
	}
	return base + ext
}
