// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package config

import (
	"testing"
)

func TestDefaultsProduceValidConfig(t *testing.T) {
	v, err := InitConfig()
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	cfg, err := GetApplicationConfig(v)
	if err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	if cfg.Collect.RetryAttempts != 3 {
		t.Errorf("retry attempts = %d, want 3", cfg.Collect.RetryAttempts)
	}
	if cfg.Recording.MinDuration != 0.5 || cfg.Recording.MaxDuration != 15.0 {
		t.Errorf("recording window = [%f, %f], want [0.5, 15]", cfg.Recording.MinDuration, cfg.Recording.MaxDuration)
	}
	if cfg.Session.SnapshotTTLHr != 24 {
		t.Errorf("snapshot ttl = %dh, want 24h", cfg.Session.SnapshotTTLHr)
	}
	if cfg.Study.ProjectID != "voice_research_2024" {
		t.Errorf("project id = %q", cfg.Study.ProjectID)
	}
}

func TestInvertedRecordingWindowRefused(t *testing.T) {
	v, err := InitConfig()
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	v.Set("RECORDING__MAX_DURATION", 0.2)
	v.Set("RECORDING__MIN_DURATION", 0.5)

	if _, err := GetApplicationConfig(v); err == nil {
		t.Fatal("max_duration below min_duration must refuse startup")
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := &AppConfig{}
	cfg.Collect.TimeoutMs = 30000
	cfg.Collect.ForwardTimeoutMs = 10000
	cfg.Collect.RetryDelayMs = 2000
	cfg.Session.SnapshotTTLHr = 24

	if got := cfg.Collect.Timeout().Seconds(); got != 30 {
		t.Errorf("timeout = %fs, want 30s", got)
	}
	if got := cfg.Collect.ForwardTimeout().Seconds(); got != 10 {
		t.Errorf("forward timeout = %fs, want 10s", got)
	}
	if got := cfg.Collect.RetryDelay().Seconds(); got != 2 {
		t.Errorf("retry delay = %fs, want 2s", got)
	}
	if got := cfg.Session.SnapshotTTL().Hours(); got != 24 {
		t.Errorf("snapshot ttl = %fh, want 24h", got)
	}
}
