package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groking122/readingcompanion-sub001/internal/entities"
	"github.com/groking122/readingcompanion-sub001/internal/srs"
)

func setupStore(t *testing.T) (*Store, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "queue_"+t.Name()+".db")
	store, err := NewStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
		os.Remove(dbPath)
	})

	return store, dbPath
}

// fakeSubmitter records submissions and fails on demand.
type fakeSubmitter struct {
	mu        sync.Mutex
	failAll   bool
	failVocab map[uint]bool
	submitted []entities.ReviewAttempt

	// entered/release coordinate tests that need a drain held mid-flight.
	entered chan struct{}
	release chan struct{}
}

func (f *fakeSubmitter) Submit(_ context.Context, attempt entities.ReviewAttempt) error {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll || f.failVocab[attempt.VocabularyID] {
		return errors.New("simulated network failure")
	}
	f.submitted = append(f.submitted, attempt)
	return nil
}

func (f *fakeSubmitter) submissions() []entities.ReviewAttempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entities.ReviewAttempt(nil), f.submitted...)
}

type fakeConnectivity struct{ online bool }

func (f *fakeConnectivity) IsOnline() bool { return f.online }

func TestEnqueue_ValidationErrors(t *testing.T) {
	store, _ := setupStore(t)
	q := New(store, &fakeSubmitter{}, nil)

	_, err := q.Enqueue(1, 0, 4, entities.ExerciseTypeFlashcard, 1200)
	assert.ErrorIs(t, err, ErrMissingVocabulary)

	_, err = q.Enqueue(1, 10, 6, entities.ExerciseTypeFlashcard, 1200)
	assert.ErrorIs(t, err, srs.ErrInvalidQuality)

	_, err = q.Enqueue(1, 10, -1, entities.ExerciseTypeFlashcard, 1200)
	assert.ErrorIs(t, err, srs.ErrInvalidQuality)

	size, err := q.Size()
	require.NoError(t, err)
	assert.Zero(t, size, "invalid attempts must never enter the store")
}

func TestEnqueue_AssignsLocalIDAndPersists(t *testing.T) {
	store, _ := setupStore(t)
	q := New(store, &fakeSubmitter{}, nil)

	queued, err := q.Enqueue(1, 10, 4, entities.ExerciseTypeTyping, 2500)

	require.NoError(t, err)
	assert.NotEmpty(t, queued.LocalID)
	assert.Equal(t, entities.QueueStatusPending, queued.Status)

	stored, err := store.Get(queued.LocalID)
	require.NoError(t, err)
	assert.Equal(t, uint(10), stored.VocabularyID)
	assert.Equal(t, 4, stored.Quality)
}

func TestEnqueue_SurvivesProcessRestart(t *testing.T) {
	store, dbPath := setupStore(t)
	q := New(store, &fakeSubmitter{}, nil)

	queued, err := q.Enqueue(1, 10, 5, entities.ExerciseTypeFlashcard, 800)
	require.NoError(t, err)

	// Simulate a restart: close the store and reload from disk.
	require.NoError(t, store.Close())

	reopened, err := NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	stored, err := reopened.Get(queued.LocalID)
	require.NoError(t, err)
	assert.Equal(t, uint(10), stored.VocabularyID)
	assert.Equal(t, entities.QueueStatusPending, stored.Status)
}

func TestDrain_SubmitsInEnqueueOrder(t *testing.T) {
	store, _ := setupStore(t)
	submitter := &fakeSubmitter{}
	q := New(store, submitter, nil)

	for i := uint(1); i <= 3; i++ {
		_, err := q.Enqueue(1, i, 4, entities.ExerciseTypeFlashcard, 1000)
		require.NoError(t, err)
	}

	result, err := q.Drain(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Result{Synced: 3, Failed: 0}, result)

	submitted := submitter.submissions()
	require.Len(t, submitted, 3)
	for i, attempt := range submitted {
		assert.Equal(t, uint(i+1), attempt.VocabularyID, "FIFO order")
	}

	size, err := q.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestDrain_FailureKeepsEntryForRetry(t *testing.T) {
	store, _ := setupStore(t)
	submitter := &fakeSubmitter{failAll: true}
	q := New(store, submitter, nil)

	queued, err := q.Enqueue(1, 10, 3, entities.ExerciseTypeFlashcard, 1500)
	require.NoError(t, err)

	result, err := q.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Synced: 0, Failed: 1}, result)

	stored, err := store.Get(queued.LocalID)
	require.NoError(t, err)
	assert.Equal(t, entities.QueueStatusFailed, stored.Status)
	assert.Equal(t, 1, stored.SubmissionAttempts)
	assert.Contains(t, stored.LastError, "simulated network failure")

	// Connectivity restored: the retry succeeds and the entry is removed.
	submitter.failAll = false

	result, err = q.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Synced: 1, Failed: 0}, result)

	_, err = store.Get(queued.LocalID)
	assert.Error(t, err)
	assert.Len(t, submitter.submissions(), 1, "exactly one successful submission")
}

func TestDrain_OneFailureDoesNotBlockOthers(t *testing.T) {
	store, _ := setupStore(t)
	submitter := &fakeSubmitter{failVocab: map[uint]bool{2: true}}
	q := New(store, submitter, nil)

	for i := uint(1); i <= 3; i++ {
		_, err := q.Enqueue(1, i, 4, entities.ExerciseTypeFlashcard, 1000)
		require.NoError(t, err)
	}

	result, err := q.Drain(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Result{Synced: 2, Failed: 1}, result)

	remaining, err := q.Pending()
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, uint(2), remaining[0].VocabularyID)
}

func TestDrain_EmptyQueue(t *testing.T) {
	store, _ := setupStore(t)
	q := New(store, &fakeSubmitter{}, nil)

	result, err := q.Drain(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Result{}, result)
}

func TestDrain_ConcurrentDrainIsNoOp(t *testing.T) {
	store, _ := setupStore(t)
	submitter := &fakeSubmitter{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	q := New(store, submitter, nil)

	_, err := q.Enqueue(1, 10, 4, entities.ExerciseTypeFlashcard, 1000)
	require.NoError(t, err)

	done := make(chan Result, 1)
	go func() {
		result, _ := q.Drain(context.Background())
		done <- result
	}()

	// Wait until the first drain is mid-submission.
	<-submitter.entered

	_, err = q.Drain(context.Background())
	assert.ErrorIs(t, err, ErrDrainInProgress)

	close(submitter.release)

	select {
	case result := <-done:
		assert.Equal(t, Result{Synced: 1, Failed: 0}, result)
	case <-time.After(5 * time.Second):
		t.Fatal("drain did not finish")
	}
}

func TestDrain_EnqueueDuringDrainIsNotLostOrDoubleSubmitted(t *testing.T) {
	store, _ := setupStore(t)
	submitter := &fakeSubmitter{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	q := New(store, submitter, nil)

	_, err := q.Enqueue(1, 10, 4, entities.ExerciseTypeFlashcard, 1000)
	require.NoError(t, err)

	done := make(chan Result, 1)
	go func() {
		result, _ := q.Drain(context.Background())
		done <- result
	}()

	<-submitter.entered

	// Enqueue while the drain is mid-flight.
	late, err := q.Enqueue(1, 20, 5, entities.ExerciseTypeFlashcard, 700)
	require.NoError(t, err)

	close(submitter.release)
	result := <-done

	// The in-flight drain only covered its snapshot.
	assert.Equal(t, Result{Synced: 1, Failed: 0}, result)

	stored, err := store.Get(late.LocalID)
	require.NoError(t, err)
	assert.Equal(t, entities.QueueStatusPending, stored.Status)

	// The next drain picks it up exactly once.
	submitter.entered = nil
	result, err = q.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Synced: 1, Failed: 0}, result)
	assert.Len(t, submitter.submissions(), 2)
}

func TestDiscard_UnknownLocalID(t *testing.T) {
	store, _ := setupStore(t)
	q := New(store, &fakeSubmitter{}, nil)

	err := q.Discard("no-such-id")
	assert.ErrorIs(t, err, ErrNotQueued)

	// A known entry is still removable.
	entry, err := q.Enqueue(1, 10, 4, entities.ExerciseTypeFlashcard, 1000)
	require.NoError(t, err)
	require.NoError(t, q.Discard(entry.LocalID))

	size, err := q.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)
}

func TestDrain_SkipsEntriesDiscardedAfterSnapshot(t *testing.T) {
	store, _ := setupStore(t)
	submitter := &fakeSubmitter{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	q := New(store, submitter, nil)

	first, err := q.Enqueue(1, 10, 4, entities.ExerciseTypeFlashcard, 1000)
	require.NoError(t, err)
	second, err := q.Enqueue(1, 20, 4, entities.ExerciseTypeFlashcard, 1000)
	require.NoError(t, err)

	done := make(chan Result, 1)
	go func() {
		result, _ := q.Drain(context.Background())
		done <- result
	}()

	// While the first entry is being submitted, discard the second.
	<-submitter.entered
	require.NoError(t, q.Discard(second.LocalID))
	submitter.entered = nil
	close(submitter.release)

	result := <-done
	assert.Equal(t, Result{Synced: 1, Failed: 0}, result)

	submitted := submitter.submissions()
	require.Len(t, submitted, 1)
	assert.Equal(t, first.LocalID, submitted[0].ClientAttemptID)
}

func TestDrain_CancelledContextStopsEarly(t *testing.T) {
	store, _ := setupStore(t)
	submitter := &fakeSubmitter{}
	q := New(store, submitter, nil)

	for i := uint(1); i <= 3; i++ {
		_, err := q.Enqueue(1, i, 4, entities.ExerciseTypeFlashcard, 1000)
		require.NoError(t, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := q.Drain(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Result{}, result)

	size, sizeErr := q.Size()
	require.NoError(t, sizeErr)
	assert.Equal(t, int64(3), size, "cancelled drain loses nothing")
}

func TestStore_ReleasesStuckSubmittingOnReopen(t *testing.T) {
	store, dbPath := setupStore(t)
	q := New(store, &fakeSubmitter{}, nil)

	queued, err := q.Enqueue(1, 10, 4, entities.ExerciseTypeFlashcard, 1000)
	require.NoError(t, err)

	// Simulate a crash mid-drain: entry left in submitting state.
	require.NoError(t, store.MarkSubmitting(queued.LocalID))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	stored, err := reopened.Get(queued.LocalID)
	require.NoError(t, err)
	assert.Equal(t, entities.QueueStatusPending, stored.Status)
}

func TestQueue_IsOnline(t *testing.T) {
	store, _ := setupStore(t)

	q := New(store, &fakeSubmitter{}, &fakeConnectivity{online: false})
	assert.False(t, q.IsOnline())

	q = New(store, &fakeSubmitter{}, &fakeConnectivity{online: true})
	assert.True(t, q.IsOnline())

	q = New(store, &fakeSubmitter{}, nil)
	assert.True(t, q.IsOnline(), "nil checker assumes online")
}

func TestQueue_ManyEntriesDrainCleanly(t *testing.T) {
	store, _ := setupStore(t)
	submitter := &fakeSubmitter{}
	q := New(store, submitter, nil)

	for i := 0; i < 25; i++ {
		_, err := q.Enqueue(1, uint(i+1), i%6, entities.ExerciseTypeFlashcard, 500+i)
		require.NoError(t, err, fmt.Sprintf("enqueue %d", i))
	}

	result, err := q.Drain(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Result{Synced: 25, Failed: 0}, result)
	assert.Len(t, submitter.submissions(), 25)
}
