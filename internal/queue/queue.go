package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/groking122/readingcompanion-sub001/internal/entities"
	"github.com/groking122/readingcompanion-sub001/internal/srs"
)

// ErrMissingVocabulary is returned when an attempt lacks a vocabulary item.
var ErrMissingVocabulary = errors.New("attempt is missing a vocabulary id")

// ErrDrainInProgress is returned when Drain is invoked while another drain
// is already running. The caller may safely ignore it; the running drain
// covers the same entries.
var ErrDrainInProgress = errors.New("drain already in progress")

// ErrNotQueued is returned by Discard for a local id with no queue entry.
var ErrNotQueued = errors.New("no queued attempt with that local id")

// Submitter delivers a review attempt to the server. Implementations must
// persist the attempt exactly once per client attempt ID.
type Submitter interface {
	Submit(ctx context.Context, attempt entities.ReviewAttempt) error
}

// ConnectivityChecker reports the current connectivity signal.
type ConnectivityChecker interface {
	IsOnline() bool
}

// Result summarizes one drain pass, surfaced to the caller for user
// notification.
type Result struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

// Queue is the durable offline queue of review attempts. Enqueue never
// touches the network; Drain reconciles queued entries with the server and
// is safe to invoke concurrently with Enqueue. All mutation of the durable
// store goes through these two operations.
type Queue struct {
	store        *Store
	submitter    Submitter
	connectivity ConnectivityChecker

	mu       sync.Mutex
	draining bool
}

// New creates a queue over the given durable store. The connectivity
// checker may be nil, in which case the queue assumes it is online.
func New(store *Store, submitter Submitter, connectivity ConnectivityChecker) *Queue {
	return &Queue{
		store:        store,
		submitter:    submitter,
		connectivity: connectivity,
	}
}

// Enqueue validates and persists a review attempt for later submission,
// assigning it a client-local identifier. It returns immediately and never
// blocks on the network. Validation failures are surfaced synchronously;
// nothing invalid ever enters the durable store.
func (q *Queue) Enqueue(userID, vocabularyID uint, quality int, exerciseType entities.ExerciseType, responseMs int) (*entities.QueuedAttempt, error) {
	if vocabularyID == 0 {
		return nil, ErrMissingVocabulary
	}
	if err := srs.ValidateQuality(quality); err != nil {
		return nil, err
	}
	if exerciseType == "" {
		exerciseType = entities.ExerciseTypeFlashcard
	}

	attempt := &entities.QueuedAttempt{
		LocalID:      uuid.NewString(),
		UserID:       userID,
		VocabularyID: vocabularyID,
		Quality:      quality,
		ExerciseType: exerciseType,
		ResponseMs:   responseMs,
		AttemptedAt:  time.Now(),
		Status:       entities.QueueStatusPending,
	}

	if err := q.store.Put(attempt); err != nil {
		// Durability is the queue's core promise; a storage failure here
		// means the attempt would be lost, so it is surfaced loudly.
		log.Printf("Offline queue: WARNING - failed to persist attempt for vocabulary %d: %v", vocabularyID, err)
		return nil, fmt.Errorf("persist queued attempt: %w", err)
	}

	return attempt, nil
}

// IsOnline reports the current connectivity signal.
func (q *Queue) IsOnline() bool {
	if q.connectivity == nil {
		return true
	}
	return q.connectivity.IsOnline()
}

// Drain submits pending and failed entries in enqueue order. A failed
// submission marks the entry for retry and moves on; one bad entry never
// blocks the rest. Only one drain runs at a time: a concurrent call is a
// no-op returning ErrDrainInProgress. Entries enqueued while a drain is in
// flight are left for the next pass, so they are neither lost nor
// double-submitted.
func (q *Queue) Drain(ctx context.Context) (Result, error) {
	q.mu.Lock()
	if q.draining {
		q.mu.Unlock()
		log.Printf("Offline queue: drain skipped (already draining)")
		return Result{}, ErrDrainInProgress
	}
	q.draining = true
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.draining = false
		q.mu.Unlock()
	}()

	// Snapshot the submittable entries up front. Concurrent enqueues land
	// after this listing and stay pending for the next drain.
	attempts, err := q.store.ListSubmittable()
	if err != nil {
		return Result{}, fmt.Errorf("list queued attempts: %w", err)
	}

	if len(attempts) == 0 {
		return Result{}, nil
	}

	log.Printf("Offline queue: draining %d queued attempt(s)", len(attempts))

	var result Result
	for _, queued := range attempts {
		select {
		case <-ctx.Done():
			log.Printf("Offline queue: drain cancelled after %d synced, %d failed", result.Synced, result.Failed)
			return result, ctx.Err()
		default:
		}

		// The entry may have been discarded since the snapshot.
		if _, err := q.store.Get(queued.LocalID); err != nil {
			continue
		}

		if err := q.store.MarkSubmitting(queued.LocalID); err != nil {
			log.Printf("Offline queue: WARNING - failed to mark %s submitting: %v", queued.LocalID, err)
			result.Failed++
			continue
		}

		if err := q.submitter.Submit(ctx, queued.Attempt()); err != nil {
			if markErr := q.store.MarkFailed(queued.LocalID, err); markErr != nil {
				log.Printf("Offline queue: WARNING - failed to record failure for %s: %v", queued.LocalID, markErr)
			}
			result.Failed++
			continue
		}

		if err := q.store.Delete(queued.LocalID); err != nil {
			// The server has the attempt; the duplicate left behind is
			// harmless because submission is idempotent on the local ID.
			log.Printf("Offline queue: WARNING - failed to remove synced entry %s: %v", queued.LocalID, err)
		}
		result.Synced++
	}

	log.Printf("Offline queue: drain finished, %d synced, %d failed", result.Synced, result.Failed)
	return result, nil
}

// Discard removes an entry without submitting it. This is the only way an
// attempt leaves the queue other than a successful submission.
func (q *Queue) Discard(localID string) error {
	if _, err := q.store.Get(localID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotQueued
		}
		return err
	}
	return q.store.Delete(localID)
}

// Pending returns every queued entry in enqueue order.
func (q *Queue) Pending() ([]entities.QueuedAttempt, error) {
	return q.store.ListAll()
}

// Size returns the number of entries awaiting submission.
func (q *Queue) Size() (int64, error) {
	return q.store.Count()
}
