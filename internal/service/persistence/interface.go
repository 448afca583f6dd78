package persistence

import (
	"context"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
)

// Store keeps one opaque document per section.
type Store interface {
	Save(ctx context.Context, section types.SnapshotSection, payload []byte) error
	SaveBatch(ctx context.Context, payloads map[types.SnapshotSection][]byte) error
	// Load returns types.ErrSnapshotNotFound when the section was never saved.
	Load(ctx context.Context, section types.SnapshotSection) ([]byte, error)
	List(ctx context.Context) ([]models.SnapshotInfo, error)
}

// Component is a stateful part of the service that can be snapshotted.
type Component interface {
	Section() types.SnapshotSection
	SnapshotEntry() models.SnapshotEntry
	RestoreSnapshot(payload []byte) error
}
