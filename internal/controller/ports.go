// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package controller

import (
	"context"

	"github.com/voicebankai/internal/session"
)

// Capturer is the recording hardware boundary. One call captures one take:
// it resolves with the finished artifact or fails with a capture error
// (permission denied, unsupported format). Implementations must make stop
// idempotent; a stop signal after the recorder already stopped is ignored.
type Capturer interface {
	Capture(ctx context.Context) (session.Artifact, error)
}

// Screen is the coarse application screen the controller drives.
type Screen int

const (
	ScreenWelcome Screen = iota
	ScreenPractice
	ScreenRecording
	ScreenBreak
	ScreenCompletion
)

func (s Screen) String() string {
	switch s {
	case ScreenWelcome:
		return "welcome"
	case ScreenPractice:
		return "practice"
	case ScreenRecording:
		return "recording"
	case ScreenBreak:
		return "break"
	case ScreenCompletion:
		return "completion"
	default:
		return "unknown"
	}
}

// Phase is the per-phrase substate within the recording screen.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCapturing
	PhaseReviewing
	PhaseSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCapturing:
		return "capturing"
	case PhaseReviewing:
		return "reviewing"
	case PhaseSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// CompletionSummary is what the completion screen shows.
type CompletionSummary struct {
	SessionID     string
	TotalRecorded int
	TotalSkipped  int
	TotalMinutes  int
}

// EventSink receives user-facing notifications from the controller. The
// UI layer implements it; the controller never touches rendering.
type EventSink interface {
	ScreenChanged(screen Screen)
	StatusMessage(level, message string)
	BreakSuggested(completed, remaining int)
	MilestoneReached(lifetimeRecordings int)
	SessionCompleted(summary CompletionSummary)
}

// NopEvents discards every notification. NewController falls back to it
// when no sink is wired.
type NopEvents struct{}

func (NopEvents) ScreenChanged(Screen)               {}
func (NopEvents) StatusMessage(string, string)       {}
func (NopEvents) BreakSuggested(int, int)            {}
func (NopEvents) MilestoneReached(int)               {}
func (NopEvents) SessionCompleted(CompletionSummary) {}
