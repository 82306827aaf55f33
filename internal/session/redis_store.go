// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voicebankai/config"
	"github.com/voicebankai/pkg/commons"
)

type redisStore struct {
	cfg    *config.AppConfig
	logger commons.Logger
	client redis.UniversalClient
	clock  func() time.Time
}

// NewRedisStore persists snapshots in Redis. The snapshot TTL rides on the
// key itself, so expiry needs no load-side age arithmetic; the write
// timestamp is still stored for parity with the file backend.
func NewRedisStore(cfg *config.AppConfig, logger commons.Logger, client redis.UniversalClient) Store {
	return &redisStore{cfg: cfg, logger: logger, client: client, clock: time.Now}
}

func (s *redisStore) key(key string) string {
	return s.cfg.Session.StoragePrefix + key
}

func (s *redisStore) Save(ctx context.Context, key string, session *Session) error {
	data, err := json.Marshal(snapshot{Session: session, Timestamp: s.clock()})
	if err != nil {
		s.logger.Errorf("unable to serialize session snapshot %s: %v", key, err)
		return err
	}
	return s.client.Set(ctx, s.key(key), data, s.cfg.Session.SnapshotTTL()).Err()
}

func (s *redisStore) Load(ctx context.Context, key string) (*Session, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
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
		return nil, nil
	}
	return snap.Session, nil
}

func (s *redisStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
