package marketplace

import (
	"context"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
)

// Notifier delivers a notification outside the process (websocket, broker).
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

type SnapshotSaver interface {
	Save(ctx context.Context, section types.SnapshotSection, revision uint64, state any) error
}
