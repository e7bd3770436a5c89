// Package queue provides the durable offline queue of review attempts and
// the reconciliation routine that drains it against the server.
package queue

import (
	"fmt"
	"log"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/groking122/readingcompanion-sub001/internal/entities"
)

// Store is the durable local store backing the offline queue. It lives in a
// dedicated SQLite database so queue writes never contend with the main
// database, and it survives process restart.
type Store struct {
	db *gorm.DB
}

// StorePathFor derives the queue database path from the main database path,
// alongside it with a "-queue" suffix.
func StorePathFor(mainDBPath string) string {
	dir := filepath.Dir(mainDBPath)
	base := filepath.Base(mainDBPath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	return filepath.Join(dir, name+"-queue"+ext)
}

// NewStore opens (or creates) the queue database at the given path. Entries
// left in the submitting state by a crash are released back to pending so
// the next drain retries them.
func NewStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_journal=WAL&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open queue database: %w", err)
	}

	if err := db.AutoMigrate(&entities.QueuedAttempt{}); err != nil {
		return nil, fmt.Errorf("migrate queue database: %w", err)
	}

	store := &Store{db: db}

	released, err := store.releaseStuck()
	if err != nil {
		return nil, err
	}
	if released > 0 {
		log.Printf("Offline queue: released %d interrupted submission(s) back to pending", released)
	}

	return store, nil
}

// releaseStuck returns submitting entries to pending. Called on open; a row
// can only be submitting while a drain is in flight, so finding one at
// startup means the previous process died mid-drain.
func (s *Store) releaseStuck() (int64, error) {
	result := s.db.Model(&entities.QueuedAttempt{}).
		Where("status = ?", entities.QueueStatusSubmitting).
		Update("status", entities.QueueStatusPending)
	if result.Error != nil {
		return 0, fmt.Errorf("release stuck entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Put persists a queued attempt.
func (s *Store) Put(attempt *entities.QueuedAttempt) error {
	return s.db.Create(attempt).Error
}

// ListSubmittable returns pending and failed entries in enqueue order.
func (s *Store) ListSubmittable() ([]entities.QueuedAttempt, error) {
	var attempts []entities.QueuedAttempt
	err := s.db.
		Where("status IN ?", []entities.QueueStatus{entities.QueueStatusPending, entities.QueueStatusFailed}).
		Order("id ASC").
		Find(&attempts).Error
	return attempts, err
}

// ListAll returns every queued entry in enqueue order.
func (s *Store) ListAll() ([]entities.QueuedAttempt, error) {
	var attempts []entities.QueuedAttempt
	err := s.db.Order("id ASC").Find(&attempts).Error
	return attempts, err
}

// Get looks up an entry by its client-local identifier.
func (s *Store) Get(localID string) (*entities.QueuedAttempt, error) {
	var attempt entities.QueuedAttempt
	err := s.db.Where("local_id = ?", localID).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// MarkSubmitting transitions an entry to the submitting state.
func (s *Store) MarkSubmitting(localID string) error {
	return s.db.Model(&entities.QueuedAttempt{}).
		Where("local_id = ?", localID).
		Update("status", entities.QueueStatusSubmitting).Error
}

// MarkFailed records a failed submission, keeping the entry for retry.
func (s *Store) MarkFailed(localID string, submissionErr error) error {
	updates := map[string]any{
		"status":              entities.QueueStatusFailed,
		"submission_attempts": gorm.Expr("submission_attempts + 1"),
	}
	if submissionErr != nil {
		updates["last_error"] = submissionErr.Error()
	}
	return s.db.Model(&entities.QueuedAttempt{}).
		Where("local_id = ?", localID).
		Updates(updates).Error
}

// Delete removes an entry once the server has acknowledged it.
func (s *Store) Delete(localID string) error {
	return s.db.Where("local_id = ?", localID).Delete(&entities.QueuedAttempt{}).Error
}

// Count returns the number of entries awaiting submission.
func (s *Store) Count() (int64, error) {
	var count int64
	err := s.db.Model(&entities.QueuedAttempt{}).Count(&count).Error
	return count, err
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
