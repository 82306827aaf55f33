// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is the resumable state of one volunteer's run through the deck.
// Invariant outside restart: CurrentIndex equals
// len(CompletedTakes) + len(SkippedPhrases).
type Session struct {
	SessionID      string          `json:"sessionId"`
	PhraseOrder    []int           `json:"phraseOrder"`
	CurrentIndex   int             `json:"currentIndex"`
	CompletedTakes []CompletedTake `json:"completedTakes"`
	SkippedPhrases []SkippedPhrase `json:"skippedPhrases"`
	StartedAt      time.Time       `json:"startedAt"`
}

// CompletedTake is the durable record of one submitted recording.
type CompletedTake struct {
	PhraseIndex int       `json:"phraseIndex"`
	PhraseText  string    `json:"phraseText"`
	Timestamp   time.Time `json:"timestamp"`
	Duration    float64   `json:"duration"`
	Uploaded    bool      `json:"uploaded"`
}

// SkippedPhrase records a prompt the volunteer chose not to read.
type SkippedPhrase struct {
	PhraseIndex int       `json:"phraseIndex"`
	PhraseText  string    `json:"phraseText"`
	Timestamp   time.Time `json:"timestamp"`
}

// Artifact is the captured audio payload handed over by the recorder.
// Capture itself is outside this service; the artifact is opaque bytes
// with a declared mime and duration.
type Artifact struct {
	Bytes           []byte
	MimeType        string
	DurationSeconds float64
}

// Take is a single recording attempt, owned exclusively by the session
// controller until it is submitted or discarded.
type Take struct {
	Artifact    Artifact
	PhraseIndex int
	PhraseText  string
	CapturedAt  time.Time
}

// NewSession creates a fresh session over the given phrase order.
func NewSession(order []int) *Session {
	return &Session{
		SessionID:   NewSessionID(),
		PhraseOrder: append([]int(nil), order...),
		StartedAt:   time.Now(),
	}
}

// NewSessionID mints an opaque session token carrying a creation
// timestamp, matching the id shape of archived recordings.
func NewSessionID() string {
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
