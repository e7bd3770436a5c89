package entities

import (
	"time"

	"gorm.io/gorm"
)

// Default scheduling state for a card on first exposure to a vocabulary item.
const (
	DefaultEaseFactor = 2.5
	DefaultInterval   = 1
	MinEaseFactor     = 1.3
)

// ExerciseType identifies the kind of exercise that produced a review attempt.
type ExerciseType string

const (
	ExerciseTypeFlashcard      ExerciseType = "flashcard"
	ExerciseTypeMultipleChoice ExerciseType = "multiple_choice"
	ExerciseTypeTyping         ExerciseType = "typing"
	ExerciseTypeListening      ExerciseType = "listening"
)

// Card holds the scheduling state of a single learned vocabulary item.
// It is mutated only by the scheduler in response to a submitted review
// attempt and is cascade-deleted with its owning vocabulary item.
type Card struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;uniqueIndex:idx_cards_user_vocab" json:"user_id"`
	VocabularyID uint      `gorm:"uniqueIndex:idx_cards_user_vocab" json:"vocabulary_id"`
	EaseFactor   float64   `gorm:"default:2.5" json:"ease_factor"`
	Interval     int       `gorm:"default:1" json:"interval"` // days until next review
	Repetitions  int       `gorm:"default:0" json:"repetitions"`
	DueAt        time.Time `gorm:"index" json:"due_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// NewCard returns a card with the default scheduling state, due immediately.
func NewCard(userID, vocabularyID uint, now time.Time) *Card {
	return &Card{
		UserID:       userID,
		VocabularyID: vocabularyID,
		EaseFactor:   DefaultEaseFactor,
		Interval:     DefaultInterval,
		Repetitions:  0,
		DueAt:        now,
	}
}

// IsDue reports whether the card's scheduled review timestamp has passed.
func (c *Card) IsDue(now time.Time) bool {
	return !now.Before(c.DueAt)
}

// ReviewAttempt is an immutable event recording one review interaction.
// Attempts are append-only and form the historical log the statistics
// aggregator reads.
type ReviewAttempt struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	UserID       uint         `gorm:"index" json:"user_id"`
	VocabularyID uint         `gorm:"index" json:"vocabulary_id"`
	Quality      int          `json:"quality"` // 0-5 ordinal recall score
	ExerciseType ExerciseType `gorm:"size:30;default:'flashcard'" json:"exercise_type"`
	ResponseMs   int          `json:"response_ms"`

	// ClientAttemptID is the client-local identifier assigned when the
	// attempt was enqueued offline. The server deduplicates on it so a
	// retried submission is persisted exactly once.
	ClientAttemptID string `gorm:"uniqueIndex;size:36" json:"client_attempt_id"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Card) TableName() string {
	return "cards"
}

func (ReviewAttempt) TableName() string {
	return "review_attempts"
}
