package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// AttemptPruner removes old review attempts from the historical log.
type AttemptPruner interface {
	PruneAttemptsBefore(cutoff time.Time) (int64, error)
}

// PruneAttemptsTask trims the attempt log to a retention window. The
// statistics aggregator only reads bounded windows, so attempts older than
// the retention period serve no reader.
type PruneAttemptsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t PruneAttemptsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_attempts",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PruneAttemptsProcessor creates a processor for attempt log retention.
func PruneAttemptsProcessor(pruner AttemptPruner) backlite.QueueProcessor[PruneAttemptsTask] {
	return func(ctx context.Context, task PruneAttemptsTask) error {
		retention := task.RetentionDays
		if retention <= 0 {
			return nil
		}

		cutoff := time.Now().AddDate(0, 0, -retention)
		pruned, err := pruner.PruneAttemptsBefore(cutoff)
		if err != nil {
			return fmt.Errorf("prune attempts before %s: %w", cutoff.Format("2006-01-02"), err)
		}

		if pruned > 0 {
			log.Printf("[TASK] Pruned %d review attempt(s) older than %d days", pruned, retention)
		}
		return nil
	}
}

func NewPruneAttemptsQueue(pruner AttemptPruner) backlite.Queue {
	return backlite.NewQueue(PruneAttemptsProcessor(pruner))
}
