package review

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/groking122/readingcompanion-sub001/internal/entities"
	"github.com/groking122/readingcompanion-sub001/internal/srs"
)

// ErrMissingVocabulary is returned for submissions without a vocabulary id.
var ErrMissingVocabulary = errors.New("submission is missing a vocabulary id")

// Service applies submitted review attempts: it validates, runs the
// scheduler, and persists the attempt plus the updated card state.
// Submission is idempotent on the client attempt ID so a retried offline
// submission is persisted exactly once.
type Service struct {
	repo *Repository
	now  func() time.Time
}

// NewService creates a review service. The clock defaults to time.Now and
// is injectable for tests.
func NewService(repo *Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// WithClock overrides the service clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit persists a review attempt and advances its card's scheduling
// state. A duplicate client attempt ID returns the already-persisted
// attempt without touching the card again.
func (s *Service) Submit(ctx context.Context, attempt entities.ReviewAttempt) (*entities.ReviewAttempt, error) {
	if attempt.VocabularyID == 0 {
		return nil, ErrMissingVocabulary
	}
	if err := srs.ValidateQuality(attempt.Quality); err != nil {
		return nil, err
	}
	if attempt.ExerciseType == "" {
		attempt.ExerciseType = entities.ExerciseTypeFlashcard
	}

	// Direct submissions arrive without a client-assigned id. Mint one
	// server-side so every persisted attempt keys the unique index
	// distinctly.
	if attempt.ClientAttemptID == "" {
		attempt.ClientAttemptID = uuid.NewString()
	}

	existing, err := s.repo.GetAttemptByClientID(attempt.ClientAttemptID)
	if err == nil {
		log.Printf("Review: duplicate submission %s, returning persisted attempt", attempt.ClientAttemptID)
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check duplicate attempt: %w", err)
	}

	now := s.now()

	card, err := s.repo.GetCard(attempt.UserID, attempt.VocabularyID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		card = entities.NewCard(attempt.UserID, attempt.VocabularyID, now)
	} else if err != nil {
		return nil, fmt.Errorf("load card: %w", err)
	}

	updated := srs.Update(*card, attempt.Quality, now)
	updated.ID = card.ID

	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = now
	}

	if err := s.repo.SaveAttempt(&attempt, &updated); err != nil {
		return nil, fmt.Errorf("persist attempt: %w", err)
	}

	return &attempt, nil
}

// DueCount returns the number of cards due for the user.
func (s *Service) DueCount(userID uint) (int64, error) {
	return s.repo.DueCount(userID, s.now())
}

// DueCards returns the user's due cards, most overdue first.
func (s *Service) DueCards(userID uint, limit int) ([]entities.Card, error) {
	return s.repo.DueCards(userID, s.now(), limit)
}

// DueCountsByUser returns due-card counts keyed by user.
func (s *Service) DueCountsByUser() (map[uint]int64, error) {
	return s.repo.DueCountsByUser(s.now())
}
