package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/groking122/readingcompanion-sub001/internal/notify"
)

// ReminderTask delivers one due-card reminder to one user. Delivery runs
// on the durable queue so a transient display failure is retried instead
// of dropped.
type ReminderTask struct {
	UserID   uint  `json:"user_id"`
	DueCount int64 `json:"due_count"`
}

func (t ReminderTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "reminder",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReminderProcessor creates a processor delivering reminders through the
// given notifier. Permission is re-checked at delivery time; a revoked
// permission turns the task into a no-op rather than a failure.
func ReminderProcessor(notifier notify.Notifier) backlite.QueueProcessor[ReminderTask] {
	return func(ctx context.Context, task ReminderTask) error {
		if !notifier.PermissionGranted(task.UserID) {
			log.Printf("[TASK] Reminder for user %d skipped (no permission)", task.UserID)
			return nil
		}

		if err := notifier.Notify(ctx, task.UserID, task.DueCount); err != nil {
			return fmt.Errorf("deliver reminder to user %d: %w", task.UserID, err)
		}
		return nil
	}
}

func NewReminderQueue(notifier notify.Notifier) backlite.Queue {
	return backlite.NewQueue(ReminderProcessor(notifier))
}

// QueuedNotifier implements notify.Notifier by enqueueing a ReminderTask
// instead of delivering inline, decoupling the due check from delivery.
type QueuedNotifier struct {
	client *Client
	inner  notify.Notifier
}

// NewQueuedNotifier wraps a notifier with durable, retried delivery.
func NewQueuedNotifier(client *Client, inner notify.Notifier) *QueuedNotifier {
	return &QueuedNotifier{client: client, inner: inner}
}

func (n *QueuedNotifier) PermissionGranted(userID uint) bool {
	return n.inner.PermissionGranted(userID)
}

func (n *QueuedNotifier) Notify(ctx context.Context, userID uint, dueCount int64) error {
	_, err := n.client.Add(ReminderTask{UserID: userID, DueCount: dueCount}).Ctx(ctx).Save()
	return err
}
