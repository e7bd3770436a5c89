// Package review implements the server side of review submission: card
// state persistence, the append-only attempt log, and due-card queries.
package review

import (
	"time"

	"gorm.io/gorm"

	"github.com/groking122/readingcompanion-sub001/internal/entities"
)

// Repository handles card and review-attempt database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new review repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetCard returns the card for a user's vocabulary item.
func (r *Repository) GetCard(userID, vocabularyID uint) (*entities.Card, error) {
	var card entities.Card
	err := r.db.Where("user_id = ? AND vocabulary_id = ?", userID, vocabularyID).First(&card).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// GetAttemptByClientID looks up a persisted attempt by its client-local
// identifier.
func (r *Repository) GetAttemptByClientID(clientAttemptID string) (*entities.ReviewAttempt, error) {
	var attempt entities.ReviewAttempt
	err := r.db.Where("client_attempt_id = ?", clientAttemptID).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// SaveAttempt persists an attempt and the updated card state in one
// transaction. Either both land or neither does.
func (r *Repository) SaveAttempt(attempt *entities.ReviewAttempt, card *entities.Card) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		return tx.Save(card).Error
	})
}

// DueCount returns the number of cards due for review.
func (r *Repository) DueCount(userID uint, now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Card{}).
		Where("user_id = ? AND due_at <= ?", userID, now).
		Count(&count).Error
	return count, err
}

// DueCards returns cards due for review, most overdue first.
func (r *Repository) DueCards(userID uint, now time.Time, limit int) ([]entities.Card, error) {
	var cards []entities.Card
	query := r.db.
		Where("user_id = ? AND due_at <= ?", userID, now).
		Order("due_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&cards).Error
	return cards, err
}

// DueCountsByUser returns the due-card count for every user with at least
// one due card. Consumed by the notification scheduler.
func (r *Repository) DueCountsByUser(now time.Time) (map[uint]int64, error) {
	type row struct {
		UserID uint
		Count  int64
	}
	var rows []row
	err := r.db.Model(&entities.Card{}).
		Select("user_id, COUNT(*) as count").
		Where("due_at <= ?", now).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.UserID] = r.Count
	}
	return counts, nil
}

// DeleteCardsForVocabulary cascades a vocabulary item deletion to its card.
func (r *Repository) DeleteCardsForVocabulary(userID, vocabularyID uint) error {
	return r.db.
		Where("user_id = ? AND vocabulary_id = ?", userID, vocabularyID).
		Delete(&entities.Card{}).Error
}

// PruneAttemptsBefore removes attempt log entries older than the cutoff.
// Used by the retention task; the statistics aggregator only ever reads
// back a bounded window.
func (r *Repository) PruneAttemptsBefore(cutoff time.Time) (int64, error) {
	result := r.db.
		Where("created_at < ?", cutoff).
		Delete(&entities.ReviewAttempt{})
	return result.RowsAffected, result.Error
}
