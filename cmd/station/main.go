// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.

// The station binary drives a headless recording session: a volunteer
// sits at a recording rig that drops finished wav takes into the inbox
// directory, and the station walks them through the shuffled phrase deck,
// uploading each take through the proxy.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/voicebankai/config"
	"github.com/voicebankai/internal/capture"
	"github.com/voicebankai/internal/controller"
	"github.com/voicebankai/internal/phrase"
	"github.com/voicebankai/internal/session"
	"github.com/voicebankai/internal/uploader"
	"github.com/voicebankai/pkg/commons"
)

// consoleEvents renders controller events on the station console.
type consoleEvents struct {
	logger commons.Logger
}

func (e *consoleEvents) ScreenChanged(s controller.Screen) {
	e.logger.Debugf("screen: %s", s)
}

func (e *consoleEvents) StatusMessage(level, message string) {
	fmt.Printf("[%s] %s\n", level, message)
}

func (e *consoleEvents) BreakSuggested(completed, remaining int) {
	fmt.Printf("\nYou've recorded %d phrases - great progress! %d to go. Take a short break if you like.\n",
		completed, remaining)
}

func (e *consoleEvents) MilestoneReached(lifetime int) {
	fmt.Printf("\nThank you! You've contributed %d recordings to the study.\n", lifetime)
}

func (e *consoleEvents) SessionCompleted(s controller.CompletionSummary) {
	fmt.Printf("\nSession %s complete: %d recorded, %d skipped, about %d minutes. Thank you!\n",
		s.SessionID, s.TotalRecorded, s.TotalSkipped, s.TotalMinutes)
}

func main() {
	vConfig, err := config.InitConfig()
	if err != nil {
		log.Fatalf("unable to initialize configuration: %v", err)
	}
	cfg, err := config.GetApplicationConfig(vConfig)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := commons.NewApplicationLogger(
		commons.Name(cfg.Name+"-station"),
		commons.Path(cfg.LogPath),
		commons.Level(cfg.LogLevel),
	)
	if err != nil {
		log.Fatalf("unable to initialize logger: %v", err)
	}
	defer logger.Sync()

	deck, err := phrase.NewDeck(cfg, logger)
	if err != nil {
		logger.Fatalf("unable to load the phrase deck: %v", err)
	}

	store, err := newSnapshotStore(cfg, logger)
	if err != nil {
		logger.Fatalf("unable to initialize the session store: %v", err)
	}

	capturer, err := capture.NewDirCapturer(cfg, logger)
	if err != nil {
		logger.Fatalf("unable to initialize the capture inbox: %v", err)
	}

	pipeline := uploader.NewPipeline(cfg, logger)
	events := &consoleEvents{logger: logger}
	ctrl, err := controller.NewController(cfg, logger, deck, store, pipeline, capturer, events)
	if err != nil {
		logger.Fatalf("unable to initialize the session controller: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, ctrl); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("station stopped: %v", err)
	}
}

// newSnapshotStore picks the snapshot backend: Redis when an address is
// configured, the local file store otherwise.
func newSnapshotStore(cfg *config.AppConfig, logger commons.Logger) (session.Store, error) {
	if cfg.Session.RedisAddr == "" {
		return session.NewFileStore(cfg, logger)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.Session.RedisAddr},
		Password: cfg.Session.RedisPassword,
	})
	logger.Infof("session snapshots stored in redis at %s", cfg.Session.RedisAddr)
	return session.NewRedisStore(cfg, logger, client), nil
}

func run(ctx context.Context, cfg *config.AppConfig, ctrl *controller.Controller) error {
	stdin := bufio.NewScanner(os.Stdin)

	fmt.Println("Welcome to the voice research study.")
	fmt.Println("Your recordings help improve speech technology. Participation is voluntary.")
	fmt.Print("Do you consent to your voice being recorded for research? [y/N] ")
	if !stdin.Scan() || !isYes(stdin.Text()) {
		fmt.Println("No problem - nothing will be recorded. Goodbye.")
		return nil
	}
	ctrl.Start(true)

	for {
		current, ok := ctrl.CurrentPhrase()
		if !ok {
			return nil
		}
		sess := ctrl.Session()
		fmt.Printf("\nPhrase %d of %d:\n\n    %q\n\n", sess.CurrentIndex+1, len(sess.PhraseOrder), current.Text)
		fmt.Printf("Record the phrase on the rig (drop the wav into %s), or type 'skip'.\n", cfg.Recording.InboxDir)

		if cfg.Study.AllowSkip && wantsSkip(stdin) {
			if err := ctrl.Skip(ctx); err != nil {
				return err
			}
			continue
		}

		if err := ctrl.Record(ctx); err != nil {
			if errors.Is(err, controller.ErrTakeTooShort) {
				continue // the status message already told the volunteer
			}
			return err
		}

		outcome, err := ctrl.Submit(ctx)
		if err != nil {
			return err
		}
		// Keep offering retry or redo until the take is either delivered
		// or the volunteer explicitly discards it.
		for !outcome.Succeeded() {
			fmt.Print("Press enter to retry the upload, or type 'redo' to re-record: ")
			if !stdin.Scan() {
				return nil
			}
			if strings.EqualFold(strings.TrimSpace(stdin.Text()), "redo") {
				ctrl.Discard()
				break
			}
			if outcome, err = ctrl.Submit(ctx); err != nil {
				return err
			}
		}

		if ctrl.Screen() == controller.ScreenBreak {
			fmt.Print("Press enter when you're ready to continue: ")
			stdin.Scan()
			ctrl.ResumeFromBreak()
		}
	}
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// wantsSkip gives the volunteer a moment to type 'skip' before the
// station starts waiting on the inbox. Any other input proceeds to
// recording.
func wantsSkip(stdin *bufio.Scanner) bool {
	fmt.Print("> ")
	if !stdin.Scan() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(stdin.Text()), "skip")
}
