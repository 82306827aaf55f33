// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/voicebankai/config"
	"github.com/voicebankai/pkg/commons"
)

// Store persists session snapshots keyed by an opaque name. A snapshot
// older than the configured TTL is treated as absent so a stale browser
// tab cannot resume a day-old session. Serialization problems are logged
// and treated as "no snapshot", never as a fatal error.
type Store interface {
	Save(ctx context.Context, key string, session *Session) error
	Load(ctx context.Context, key string) (*Session, error)
	Clear(ctx context.Context, key string) error
}

// snapshot wraps a session with its write timestamp so age can be checked
// on load regardless of backend.
type snapshot struct {
	Session   *Session  `json:"session"`
	Timestamp time.Time `json:"timestamp"`
}

type fileStore struct {
	cfg    *config.AppConfig
	logger commons.Logger
	clock  func() time.Time
}

// NewFileStore persists snapshots as JSON files under the configured
// storage path.
func NewFileStore(cfg *config.AppConfig, logger commons.Logger) (Store, error) {
	if err := os.MkdirAll(cfg.Session.StoragePath, 0o755); err != nil {
		return nil, err
	}
	return &fileStore{cfg: cfg, logger: logger, clock: time.Now}, nil
}

func (s *fileStore) path(key string) string {
	return filepath.Join(s.cfg.Session.StoragePath, s.cfg.Session.StoragePrefix+key+".json")
}

func (s *fileStore) Save(ctx context.Context, key string, session *Session) error {
	data, err := json.Marshal(snapshot{Session: session, Timestamp: s.clock()})
	if err != nil {
		s.logger.Errorf("unable to serialize session snapshot %s: %v", key, err)
		return err
	}
	return os.WriteFile(s.path(key), data, 0o644)
}

func (s *fileStore) Load(ctx context.Context, key string) (*Session, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		s.logger.Errorf("unable to read session snapshot %s: %v", key, err)
		return nil, nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Errorf("corrupt session snapshot %s: %v", key, err)
		return nil, nil
	}
	if snap.Session == nil {
		return nil, nil
	}
	if s.clock().Sub(snap.Timestamp) >= s.cfg.Session.SnapshotTTL() {
		s.logger.Infof("session snapshot %s expired, starting fresh", key)
		return nil, nil
	}
	return snap.Session, nil
}

func (s *fileStore) Clear(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
