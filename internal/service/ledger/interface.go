package ledger

import (
	"context"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
)

type SnapshotSaver interface {
	Save(ctx context.Context, section types.SnapshotSection, revision uint64, state any) error
}

type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event models.LedgerEvent) error
}
