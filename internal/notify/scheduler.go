package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DueChecker reports due-card counts per user.
type DueChecker interface {
	DueCountsByUser() (map[uint]int64, error)
}

// Scheduler runs periodic due-card checks and raises reminders through a
// Notifier. One logical instance exists per process; construct it
// explicitly and stop it on shutdown.
type Scheduler struct {
	checker  DueChecker
	notifier Notifier
	interval time.Duration

	mu         sync.RWMutex
	cron       *cron.Cron
	generation uint64
	isRunning  bool
	isChecking bool
	cancelFunc context.CancelFunc
}

// NewScheduler creates a notification scheduler checking every interval.
func NewScheduler(checker DueChecker, notifier Notifier, interval time.Duration) *Scheduler {
	if interval < time.Minute {
		interval = time.Minute
	}
	return &Scheduler{
		checker:  checker,
		notifier: notifier,
		interval: interval,
	}
}

// Start begins periodic due checks. Starting while already started stops
// the previous timer first, so there is never more than one.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		s.runCheck(context.Background())
	}); err != nil {
		return fmt.Errorf("schedule due check: %w", err)
	}

	s.mu.Lock()

	var prev *cron.Cron
	if s.isRunning {
		prev = s.detachLocked()
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron = c
	s.generation++
	gen := s.generation

	c.Start()
	s.isRunning = true
	s.mu.Unlock()

	log.Printf("Notifications: scheduler started, checking every %s", s.interval)

	// Stop this timer when the parent context is cancelled. The generation
	// check keeps a stale watcher from stopping a restarted scheduler. The
	// wait on the stopped cron happens outside the mutex: an in-flight
	// check needs it to clear its busy flag.
	go func() {
		<-cancelCtx.Done()
		s.mu.Lock()
		if !s.isRunning || s.generation != gen {
			s.mu.Unlock()
			return
		}
		stopped := s.detachLocked()
		s.mu.Unlock()

		<-stopped.Stop().Done()
		log.Printf("Notifications: scheduler stopped")
	}()

	if prev != nil {
		<-prev.Stop().Done()
	}

	return nil
}

// Stop cancels the periodic timer, waiting for an in-flight check to
// finish. Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	stopped := s.detachLocked()
	s.mu.Unlock()

	<-stopped.Stop().Done()
	log.Printf("Notifications: scheduler stopped")
}

// detachLocked clears the running state and hands back the cron instance.
// Callers must wait on its Stop context after releasing s.mu, never while
// holding it: an in-flight check takes the mutex to clear its busy flag.
func (s *Scheduler) detachLocked() *cron.Cron {
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false
	return s.cron
}

// IsRunning reports whether the periodic timer is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// RunNow triggers an immediate check outside the periodic schedule.
func (s *Scheduler) RunNow(ctx context.Context) {
	s.runCheck(ctx)
}

// CheckDue queries outstanding due counts and raises one reminder per user
// with due cards. Without notification permission the check is a silent
// no-op for that user.
func (s *Scheduler) CheckDue(ctx context.Context) error {
	counts, err := s.checker.DueCountsByUser()
	if err != nil {
		return fmt.Errorf("query due counts: %w", err)
	}

	for userID, count := range counts {
		if count == 0 {
			continue
		}
		if !s.notifier.PermissionGranted(userID) {
			continue
		}
		if err := s.notifier.Notify(ctx, userID, count); err != nil {
			log.Printf("Notifications: failed to notify user %d: %v", userID, err)
		}
	}

	return nil
}

// runCheck wraps CheckDue with a skip-if-busy guard so a slow check never
// stacks behind the next timer tick.
func (s *Scheduler) runCheck(ctx context.Context) {
	s.mu.Lock()
	if s.isChecking {
		s.mu.Unlock()
		log.Printf("Notifications: due check skipped (already checking)")
		return
	}
	s.isChecking = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isChecking = false
		s.mu.Unlock()
	}()

	if err := s.CheckDue(ctx); err != nil {
		log.Printf("Notifications: due check failed: %v", err)
	}
}
