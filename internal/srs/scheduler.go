// Package srs implements the SuperMemo-2 spaced repetition algorithm that
// decides when a card is next due.
package srs

import (
	"errors"
	"math"
	"time"

	"github.com/groking122/readingcompanion-sub001/internal/entities"
)

// PassThreshold is the quality below which a review counts as a lapse and
// resets scheduling progress. This is the scheduling boundary; statistics
// use a separate, stricter success threshold.
const PassThreshold = 3

// ErrInvalidQuality is returned by ValidateQuality for scores outside 0-5.
var ErrInvalidQuality = errors.New("quality must be between 0 and 5")

// ValidateQuality rejects recall scores outside the 0-5 ordinal scale.
// Callers must validate before handing a quality to Update; Update itself
// performs no bounds checking beyond the ease-factor floor.
func ValidateQuality(quality int) error {
	if quality < 0 || quality > 5 {
		return ErrInvalidQuality
	}
	return nil
}

// Update computes a card's next scheduling state from an observed recall
// quality. Pure and deterministic: the input card is not mutated.
//
// The ease factor adjusts on every review and is floored at 1.3. A quality
// below PassThreshold is a lapse: repetitions reset to 0 and the card comes
// back in 1 day. Otherwise the first two successful repetitions use fixed
// intervals of 1 and 6 days before the exponential regime takes over.
func Update(card entities.Card, quality int, now time.Time) entities.Card {
	next := card

	ease := card.EaseFactor + (0.1 - float64(5-quality)*(0.08+float64(5-quality)*0.02))
	if ease < entities.MinEaseFactor {
		ease = entities.MinEaseFactor
	}
	next.EaseFactor = ease

	if quality < PassThreshold {
		next.Repetitions = 0
		next.Interval = 1
	} else {
		next.Repetitions = card.Repetitions + 1
		switch next.Repetitions {
		case 1:
			next.Interval = 1
		case 2:
			next.Interval = 6
		default:
			next.Interval = int(math.Round(float64(card.Interval) * ease))
		}
	}

	if next.Interval < 1 {
		next.Interval = 1
	}

	next.DueAt = now.AddDate(0, 0, next.Interval)

	return next
}
