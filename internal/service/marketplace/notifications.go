package marketplace

import (
	"slices"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
)

// notificationLog is append-only except for rollback of a failed save. It is
// guarded by the marketplace lock.
type notificationLog struct {
	entries []models.Notification
}

func (l *notificationLog) append(n models.Notification) {
	l.entries = append(l.entries, n)
}

// forUser returns the messages queued for userID in insertion order.
func (l *notificationLog) forUser(userID string) []string {
	out := make([]string, 0)
	for _, n := range l.entries {
		if n.UserID == userID {
			out = append(out, n.Message)
		}
	}
	return out
}

func (l *notificationLog) snapshot() []models.Notification {
	return slices.Clone(l.entries)
}

func (l *notificationLog) len() int {
	return len(l.entries)
}

// truncate drops entries appended after mark.
func (l *notificationLog) truncate(mark int) {
	l.entries = l.entries[:mark]
}
