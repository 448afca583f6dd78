package reward

import (
	"context"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
)

type RideCounter interface {
	CountRidesByDriver(driverID string) uint64
}

// Minter credits rewards. Publish is called once the engine lock is released.
type Minter interface {
	Credit(ctx context.Context, to models.Identity, amount uint64) (models.LedgerEvent, error)
	Publish(ctx context.Context, event models.LedgerEvent)
}

type SnapshotSaver interface {
	Save(ctx context.Context, section types.SnapshotSection, revision uint64, state any) error
}
