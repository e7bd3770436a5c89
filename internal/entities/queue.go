package entities

import "time"

// QueueStatus is the submission state of a locally queued review attempt.
type QueueStatus string

const (
	QueueStatusPending    QueueStatus = "pending"
	QueueStatusSubmitting QueueStatus = "submitting"
	QueueStatusFailed     QueueStatus = "failed"
)

// QueuedAttempt is a review attempt awaiting server submission. Rows are
// owned exclusively by the offline queue: created on every local review
// action, deleted once the server acknowledges persistence. There is no
// terminal failure state; failed entries are retried on every drain until
// they succeed or are manually discarded.
type QueuedAttempt struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	LocalID string `gorm:"uniqueIndex;size:36" json:"local_id"`

	UserID       uint         `json:"user_id"`
	VocabularyID uint         `json:"vocabulary_id"`
	Quality      int          `json:"quality"`
	ExerciseType ExerciseType `gorm:"size:30" json:"exercise_type"`
	ResponseMs   int          `json:"response_ms"`
	AttemptedAt  time.Time    `json:"attempted_at"`

	Status             QueueStatus `gorm:"size:20;default:'pending';index" json:"status"`
	SubmissionAttempts int         `gorm:"default:0" json:"submission_attempts"`
	LastError          string      `gorm:"type:text" json:"last_error,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attempt converts the queued row back into the immutable review attempt
// it carries, keyed by the client-local identifier for deduplication.
func (q *QueuedAttempt) Attempt() ReviewAttempt {
	return ReviewAttempt{
		UserID:          q.UserID,
		VocabularyID:    q.VocabularyID,
		Quality:         q.Quality,
		ExerciseType:    q.ExerciseType,
		ResponseMs:      q.ResponseMs,
		ClientAttemptID: q.LocalID,
		CreatedAt:       q.AttemptedAt,
	}
}

func (QueuedAttempt) TableName() string {
	return "queued_attempts"
}
