// Package notify raises periodic due-card reminders.
package notify

import (
	"context"
	"log"
)

// Notifier displays a due-card reminder to a user. The display primitive
// itself (browser/OS notification) is an external collaborator; an
// implementation without permission must report it so checks degrade to a
// silent no-op instead of failing.
type Notifier interface {
	PermissionGranted(userID uint) bool
	Notify(ctx context.Context, userID uint, dueCount int64) error
}

// LogNotifier writes reminders to the process log. Used as the default
// sink and in environments without a notification display.
type LogNotifier struct {
	Granted bool
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(granted bool) *LogNotifier {
	return &LogNotifier{Granted: granted}
}

func (n *LogNotifier) PermissionGranted(_ uint) bool {
	return n.Granted
}

func (n *LogNotifier) Notify(_ context.Context, userID uint, dueCount int64) error {
	log.Printf("Notifications: user %d has %d card(s) due for review", userID, dueCount)
	return nil
}
