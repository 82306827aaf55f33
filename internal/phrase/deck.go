// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package phrase

import (
	"math/rand"
	"time"

	"github.com/voicebankai/config"
	"github.com/voicebankai/pkg/commons"
)

// Phrase is a single prompt the volunteer reads aloud. Index refers to the
// position in the configured source list, not the shuffled order.
type Phrase struct {
	Index int
	Text  string
}

// Deck owns the shuffled prompt order and the cursor into it. The order is
// fixed once shuffled at session start; Restart produces a fresh
// independent permutation.
type Deck struct {
	logger  commons.Logger
	phrases []string
	order   []int
	cursor  int
	rng     *rand.Rand
}

type DeckOption func(*Deck)

// WithRand injects the random source, for deterministic tests.
func WithRand(rng *rand.Rand) DeckOption {
	return func(d *Deck) { d.rng = rng }
}

// NewDeck loads the phrase list and shuffles it. An empty list is a
// configuration problem worth shouting about, but not fatal: the deck is
// simply complete from the start.
func NewDeck(cfg *config.AppConfig, logger commons.Logger, opts ...DeckOption) (*Deck, error) {
	phrases, err := loadPhrases(cfg.Study.PhrasesFile)
	if err != nil {
		return nil, err
	}
	if len(phrases) == 0 {
		logger.Warnf("no phrases configured, session will complete immediately")
	}

	d := &Deck{
		logger:  logger,
		phrases: phrases,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.order = d.shuffleOrder()
	return d, nil
}

// shuffleOrder returns a uniform permutation of phrase indices
// (Fisher-Yates).
func (d *Deck) shuffleOrder() []int {
	order := make([]int, len(d.phrases))
	for i := range order {
		order[i] = i
	}
	for i := len(order) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// Current returns the phrase under the cursor. ok is false once the cursor
// has passed the end of the deck, which signals session completion.
func (d *Deck) Current() (Phrase, bool) {
	if d.cursor >= len(d.order) {
		return Phrase{}, false
	}
	idx := d.order[d.cursor]
	return Phrase{Index: idx, Text: d.phrases[idx]}, true
}

// Advance moves the cursor forward by one. There is no wraparound.
func (d *Deck) Advance() {
	d.cursor++
}

// Len is the total number of phrases in the deck.
func (d *Deck) Len() int {
	return len(d.order)
}

// Cursor is the current position in the shuffled order.
func (d *Deck) Cursor() int {
	return d.cursor
}

// Order returns a copy of the shuffled phrase order, for persistence.
func (d *Deck) Order() []int {
	out := make([]int, len(d.order))
	copy(out, d.order)
	return out
}

// Restore positions the deck from a persisted session snapshot. Orders
// whose contents do not match the configured phrase list are rejected so a
// stale snapshot cannot index out of range.
func (d *Deck) Restore(order []int, cursor int) bool {
	if len(order) != len(d.phrases) || cursor < 0 || cursor > len(order) {
		return false
	}
	seen := make([]bool, len(d.phrases))
	for _, idx := range order {
		if idx < 0 || idx >= len(d.phrases) || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	d.order = append([]int(nil), order...)
	d.cursor = cursor
	return true
}

// Restart reshuffles the deck and resets the cursor.
func (d *Deck) Restart() {
	d.order = d.shuffleOrder()
	d.cursor = 0
}
