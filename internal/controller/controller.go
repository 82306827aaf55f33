// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package controller

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/voicebankai/config"
	"github.com/voicebankai/internal/audio"
	"github.com/voicebankai/internal/phrase"
	"github.com/voicebankai/internal/session"
	"github.com/voicebankai/internal/uploader"
	"github.com/voicebankai/pkg/commons"
)

const snapshotKey = "session"

var (
	ErrCaptureInFlight    = errors.New("a capture is already in progress")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrNoTakeToSubmit     = errors.New("no take is awaiting review")
	ErrSkipDisabled       = errors.New("skipping phrases is disabled")
	ErrSessionComplete    = errors.New("the session is already complete")
	ErrTakeTooShort       = errors.New("recording too short")
	ErrNotRecording       = errors.New("recording is not active on this screen")
)

// recentTakesKept is how many completed takes are retained for replay
// bookkeeping on the client.
const recentTakesKept = 5

// Controller is the recording session state machine. It owns the current
// take exclusively for its whole lifetime and is the only writer of the
// session snapshot. All methods are serialized by a single mutex: the
// cooperation model is one volunteer, one tab, one action at a time, with
// in-flight network work guarded against double submission.
type Controller struct {
	cfg       *config.AppConfig
	logger    commons.Logger
	deck      *phrase.Deck
	store     session.Store
	pipeline  uploader.Pipeline
	capturer  Capturer
	events    EventSink
	milestone *milestoneKeeper

	mu          sync.Mutex
	sess        *session.Session
	take        *session.Take
	screen      Screen
	phase       Phase
	gated       bool
	recentTakes []session.CompletedTake
}

// NewController restores a session snapshot younger than the configured
// TTL or starts fresh. The deck order is validated against the restored
// snapshot; a mismatched snapshot is discarded.
func NewController(
	cfg *config.AppConfig,
	logger commons.Logger,
	deck *phrase.Deck,
	store session.Store,
	pipeline uploader.Pipeline,
	capturer Capturer,
	events EventSink,
) (*Controller, error) {
	if events == nil {
		events = NopEvents{}
	}
	c := &Controller{
		cfg:       cfg,
		logger:    logger,
		deck:      deck,
		store:     store,
		pipeline:  pipeline,
		capturer:  capturer,
		events:    events,
		milestone: newMilestoneKeeper(cfg, logger),
		screen:    ScreenWelcome,
		phase:     PhaseIdle,
	}

	restored, err := store.Load(context.Background(), snapshotKey)
	if err != nil {
		return nil, err
	}
	if restored != nil && deck.Restore(restored.PhraseOrder, restored.CurrentIndex) {
		c.sess = restored
		logger.Infof("session %s restored at phrase %d/%d",
			restored.SessionID, restored.CurrentIndex, deck.Len())
	} else {
		if restored != nil {
			logger.Warnf("session snapshot does not match the configured deck, starting fresh")
		}
		c.sess = session.NewSession(deck.Order())
		logger.Infof("session started: %s", c.sess.SessionID)
	}
	return c, nil
}

// Start handles the welcome screen gate. Recording requires explicit
// affirmative consent; declining drops into ungated mode where the deck is
// untouched and nothing is collected.
func (c *Controller) Start(consent bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gated = consent
	if !consent {
		c.logger.Infof("consent declined, staying in ungated mode")
		return
	}
	c.setScreen(ScreenRecording)
}

// StartPractice enters the optional practice screen. Practice takes are
// never stored or uploaded.
func (c *Controller) StartPractice() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cfg.Study.EnablePracticeMode {
		return errors.New("practice mode is disabled")
	}
	c.setScreen(ScreenPractice)
	return nil
}

// FinishPractice returns from practice to the recording loop.
func (c *Controller) FinishPractice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen == ScreenPractice {
		c.setScreen(ScreenRecording)
	}
}

// recordingActive reports whether collection is permitted right now:
// consent granted and the recording screen active. Practice, welcome and
// break screens never collect. Callers must hold the mutex.
func (c *Controller) recordingActive() bool {
	return c.gated && c.screen == ScreenRecording
}

// Record captures one take for the current phrase. Refused unless consent
// was granted and the recording screen is active; the artifact's duration
// is then gated against the configured minimum before it can ever reach
// the upload pipeline.
func (c *Controller) Record(ctx context.Context) error {
	c.mu.Lock()
	current, ok := c.deck.Current()
	if !ok {
		c.mu.Unlock()
		return ErrSessionComplete
	}
	if !c.recordingActive() {
		c.mu.Unlock()
		return ErrNotRecording
	}
	if c.phase == PhaseCapturing {
		c.mu.Unlock()
		return ErrCaptureInFlight
	}
	if c.phase == PhaseSubmitting {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	c.phase = PhaseCapturing
	c.take = nil
	c.mu.Unlock()

	artifact, err := c.capturer.Capture(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseCapturing {
		// The capture was superseded (restart, discard). A late completion
		// from an already-stopped recorder is dropped.
		c.logger.Debugf("ignoring capture completion in phase %s", c.phase)
		return nil
	}

	if err != nil {
		c.phase = PhaseIdle
		c.events.StatusMessage("error", "Microphone access failed. Please allow microphone access to record audio.")
		return fmt.Errorf("capture failed: %w", err)
	}

	if artifact.DurationSeconds < c.cfg.Recording.MinDuration {
		c.phase = PhaseIdle
		c.events.StatusMessage("error", fmt.Sprintf(
			"Recording too short. Please record for at least %.1f seconds.", c.cfg.Recording.MinDuration))
		return ErrTakeTooShort
	}
	c.crossCheckDuration(&artifact)

	c.take = &session.Take{
		Artifact:    artifact,
		PhraseIndex: current.Index,
		PhraseText:  current.Text,
		CapturedAt:  time.Now(),
	}
	c.phase = PhaseReviewing
	return nil
}

// crossCheckDuration compares the declared duration against the WAV header
// when the artifact claims to be wav. Disagreement is logged, not fatal:
// the declared duration stays authoritative.
func (c *Controller) crossCheckDuration(artifact *session.Artifact) {
	if uploader.ExtensionFor(artifact.MimeType) != "wav" {
		return
	}
	info, err := audio.ProbeWAV(artifact.Bytes)
	if err != nil {
		c.logger.Debugf("unable to probe wav artifact: %v", err)
		return
	}
	if math.Abs(info.DurationSeconds-artifact.DurationSeconds) > 0.25 {
		c.logger.Warnf("declared duration %.2fs disagrees with wav header %.2fs",
			artifact.DurationSeconds, info.DurationSeconds)
	}
}

// Discard drops the take under review and returns to idle for a redo.
func (c *Controller) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseReviewing || c.phase == PhaseCapturing {
		c.take = nil
		c.phase = PhaseIdle
	}
}

// Submit sends the reviewed take through the upload pipeline. Any outcome
// other than a hard failure counts as a completed take: a recording the
// proxy accepted locally is not lost and must not force a re-record. On
// failure the take is preserved so the volunteer can retry or discard.
func (c *Controller) Submit(ctx context.Context) (uploader.Outcome, error) {
	c.mu.Lock()
	if !c.recordingActive() {
		c.mu.Unlock()
		return uploader.Outcome{}, ErrNotRecording
	}
	if c.phase == PhaseSubmitting {
		c.mu.Unlock()
		return uploader.Outcome{}, ErrSubmissionInFlight
	}
	if c.phase != PhaseReviewing || c.take == nil {
		c.mu.Unlock()
		return uploader.Outcome{}, ErrNoTakeToSubmit
	}
	take := c.take
	meta := c.buildMetadata(take)
	c.phase = PhaseSubmitting
	c.mu.Unlock()

	outcome := c.pipeline.Submit(ctx, take.Artifact, meta)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !outcome.Succeeded() {
		c.phase = PhaseReviewing
		c.events.StatusMessage("error",
			"Failed to upload recording. Please check your connection and try again.")
		c.logger.Errorf("submission failed after %d attempts: %v", outcome.Attempts, outcome.Err)
		return outcome, nil
	}

	completed := session.CompletedTake{
		PhraseIndex: take.PhraseIndex,
		PhraseText:  take.PhraseText,
		Timestamp:   take.CapturedAt,
		Duration:    take.Artifact.DurationSeconds,
		Uploaded:    outcome.Kind == uploader.KindDelivered,
	}
	c.sess.CompletedTakes = append(c.sess.CompletedTakes, completed)
	c.rememberTake(completed)
	c.take = nil
	c.phase = PhaseIdle
	c.advance()
	c.saveSnapshot(ctx)

	c.events.StatusMessage("success", "Recording submitted successfully!")
	c.logger.Infof("take for phrase %d %s", completed.PhraseIndex, outcome.String())

	if c.milestone.recordSubmission(c.cfg.Study.MilestoneRecordings) {
		c.events.MilestoneReached(c.milestone.lifetime())
	}

	if c.checkCompletion(ctx) {
		return outcome, nil
	}
	c.maybeSuggestBreak()
	return outcome, nil
}

// Skip records the current phrase as skipped and advances, independent of
// any upload state. Only permitted when skipping is enabled.
func (c *Controller) Skip(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.deck.Current()
	if !ok {
		return ErrSessionComplete
	}
	if !c.recordingActive() {
		return ErrNotRecording
	}
	if !c.cfg.Study.AllowSkip {
		return ErrSkipDisabled
	}
	if c.phase == PhaseSubmitting {
		return ErrSubmissionInFlight
	}

	c.sess.SkippedPhrases = append(c.sess.SkippedPhrases, session.SkippedPhrase{
		PhraseIndex: current.Index,
		PhraseText:  current.Text,
		Timestamp:   time.Now(),
	})
	c.take = nil
	c.phase = PhaseIdle
	c.advance()
	c.saveSnapshot(ctx)
	c.events.StatusMessage("info", "Phrase skipped")

	c.checkCompletion(ctx)
	return nil
}

// TakeBreak pauses the session. Pure pause: no data mutation.
func (c *Controller) TakeBreak() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen == ScreenRecording {
		c.setScreen(ScreenBreak)
	}
}

// ResumeFromBreak returns to the recording loop.
func (c *Controller) ResumeFromBreak() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen == ScreenBreak {
		c.setScreen(ScreenRecording)
	}
}

// Restart resets the session: cursor, completed and skipped lists, and a
// fresh shuffle. The lifetime milestone counter is deliberately left
// alone.
func (c *Controller) Restart(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.deck.Restart()
	c.sess.PhraseOrder = c.deck.Order()
	c.sess.CurrentIndex = 0
	c.sess.CompletedTakes = nil
	c.sess.SkippedPhrases = nil
	c.sess.StartedAt = time.Now()
	c.take = nil
	c.phase = PhaseIdle
	c.saveSnapshot(ctx)
	c.setScreen(ScreenRecording)
}

// Session returns a snapshot copy of the current session state.
func (c *Controller) Session() session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := *c.sess
	out.PhraseOrder = append([]int(nil), c.sess.PhraseOrder...)
	out.CompletedTakes = append([]session.CompletedTake(nil), c.sess.CompletedTakes...)
	out.SkippedPhrases = append([]session.SkippedPhrase(nil), c.sess.SkippedPhrases...)
	return out
}

// CurrentPhrase exposes the phrase under the cursor, if any.
func (c *Controller) CurrentPhrase() (phrase.Phrase, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deck.Current()
}

// Screen reports the active screen.
func (c *Controller) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

// Phase reports the per-phrase substate.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// RecentTakes returns the most recent completed takes, newest last.
func (c *Controller) RecentTakes() []session.CompletedTake {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]session.CompletedTake(nil), c.recentTakes...)
}

func (c *Controller) buildMetadata(take *session.Take) uploader.Metadata {
	return uploader.Metadata{
		SessionID:   c.sess.SessionID,
		PhraseID:    take.PhraseIndex,
		PhraseText:  take.PhraseText,
		Timestamp:   take.CapturedAt.UnixMilli(),
		Duration:    take.Artifact.DurationSeconds,
		AudioFormat: take.Artifact.MimeType,
		SampleRate:  c.cfg.Recording.SampleRate,
		ProjectID:   c.cfg.Study.ProjectID,
		AppVersion:  c.cfg.Version,
	}
}

// advance moves deck and session cursor together, preserving the
// invariant currentIndex == completed + skipped.
func (c *Controller) advance() {
	c.deck.Advance()
	c.sess.CurrentIndex = c.deck.Cursor()
}

func (c *Controller) rememberTake(take session.CompletedTake) {
	c.recentTakes = append(c.recentTakes, take)
	if len(c.recentTakes) > recentTakesKept {
		c.recentTakes = c.recentTakes[len(c.recentTakes)-recentTakesKept:]
	}
}

func (c *Controller) saveSnapshot(ctx context.Context) {
	if err := c.store.Save(ctx, snapshotKey, c.sess); err != nil {
		c.logger.Errorf("unable to save session snapshot: %v", err)
	}
}

// checkCompletion fires the completion transition once the cursor passes
// the end of the deck: totals are computed and the snapshot is cleared.
func (c *Controller) checkCompletion(ctx context.Context) bool {
	if _, ok := c.deck.Current(); ok {
		return false
	}

	summary := CompletionSummary{
		SessionID:     c.sess.SessionID,
		TotalRecorded: len(c.sess.CompletedTakes),
		TotalSkipped:  len(c.sess.SkippedPhrases),
		TotalMinutes:  int(time.Since(c.sess.StartedAt).Minutes()),
	}
	if err := c.store.Clear(ctx, snapshotKey); err != nil {
		c.logger.Errorf("unable to clear session snapshot: %v", err)
	}
	c.setScreen(ScreenCompletion)
	c.events.SessionCompleted(summary)
	c.logger.Infof("session %s complete: %d recorded, %d skipped, %d minutes",
		summary.SessionID, summary.TotalRecorded, summary.TotalSkipped, summary.TotalMinutes)
	return true
}

// maybeSuggestBreak offers a pause after every N completed takes, unless
// the deck just finished.
func (c *Controller) maybeSuggestBreak() {
	n := c.cfg.Study.BreakAfterRecordings
	if n <= 0 || len(c.sess.CompletedTakes) == 0 {
		return
	}
	if len(c.sess.CompletedTakes)%n != 0 {
		return
	}
	remaining := c.deck.Len() - c.deck.Cursor()
	if remaining <= 0 {
		return
	}
	c.events.BreakSuggested(len(c.sess.CompletedTakes), remaining)
	c.setScreen(ScreenBreak)
}

func (c *Controller) setScreen(screen Screen) {
	if c.screen == screen {
		return
	}
	c.screen = screen
	c.events.ScreenChanged(screen)
}
