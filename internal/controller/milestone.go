// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package controller

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/voicebankai/config"
	"github.com/voicebankai/pkg/commons"
)

// milestone tracks lifetime submissions on this device. It lives outside
// the session snapshot on purpose: restarting a session must not reset it,
// and the one-time thank-you acknowledgement fires at most once ever.
type milestone struct {
	CompletedRecordings int  `json:"completedRecordings"`
	ThankYouShown       bool `json:"thankYouShown"`
}

type milestoneKeeper struct {
	logger commons.Logger
	path   string
	state  milestone
}

func newMilestoneKeeper(cfg *config.AppConfig, logger commons.Logger) *milestoneKeeper {
	k := &milestoneKeeper{
		logger: logger,
		path:   filepath.Join(cfg.Session.StoragePath, cfg.Session.StoragePrefix+"milestone.json"),
	}
	k.load()
	return k
}

func (k *milestoneKeeper) load() {
	data, err := os.ReadFile(k.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			k.logger.Warnf("unable to read milestone state: %v", err)
		}
		return
	}
	if err := json.Unmarshal(data, &k.state); err != nil {
		k.logger.Warnf("corrupt milestone state, starting at zero: %v", err)
		k.state = milestone{}
	}
}

func (k *milestoneKeeper) save() {
	data, err := json.Marshal(k.state)
	if err != nil {
		return
	}
	if err := os.WriteFile(k.path, data, 0o644); err != nil {
		k.logger.Warnf("unable to persist milestone state: %v", err)
	}
}

// recordSubmission bumps the lifetime counter and reports whether the
// one-time acknowledgement should be shown now.
func (k *milestoneKeeper) recordSubmission(threshold int) bool {
	k.state.CompletedRecordings++
	show := threshold > 0 && !k.state.ThankYouShown && k.state.CompletedRecordings >= threshold
	if show {
		k.state.ThankYouShown = true
	}
	k.save()
	return show
}

func (k *milestoneKeeper) lifetime() int {
	return k.state.CompletedRecordings
}
