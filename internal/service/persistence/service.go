package persistence

import (
	"context"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
)

// Service binds the persister to the components it snapshots.
type Service struct {
	persister  *Persister
	components []Component
}

func NewService(persister *Persister, components ...Component) *Service {
	return &Service{
		persister:  persister,
		components: components,
	}
}

// Restore loads every section. Called once before the service accepts requests.
func (s *Service) Restore(ctx context.Context) error {
	return s.persister.RestoreAll(ctx, s.components...)
}

// SaveSnapshot writes every section in one batch.
func (s *Service) SaveSnapshot(ctx context.Context) error {
	return s.persister.SaveAll(ctx, s.components...)
}

func (s *Service) ListSnapshots(ctx context.Context) ([]models.SnapshotInfo, error) {
	return s.persister.List(ctx)
}
