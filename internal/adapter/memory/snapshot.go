package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/Temutjin2k/rideshare-ledger/pkg/metrics"
)

const backend = "memory"

// SnapshotStore keeps snapshots in process memory. State does not survive a restart.
type SnapshotStore struct {
	mu      sync.RWMutex
	docs    map[types.SnapshotSection][]byte
	updated map[types.SnapshotSection]time.Time
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		docs:    make(map[types.SnapshotSection][]byte),
		updated: make(map[types.SnapshotSection]time.Time),
	}
}

func (s *SnapshotStore) Save(ctx context.Context, section types.SnapshotSection, payload []byte) error {
	return s.SaveBatch(ctx, map[types.SnapshotSection][]byte{section: payload})
}

func (s *SnapshotStore) SaveBatch(ctx context.Context, payloads map[types.SnapshotSection][]byte) (err error) {
	defer func(start time.Time) { metrics.RecordSnapshot(backend, "save", err, time.Since(start)) }(time.Now())

	if err := ctx.Err(); err != nil {
		return err
	}
	for section := range payloads {
		if !section.Valid() {
			return types.ErrUnknownSection
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for section, payload := range payloads {
		s.docs[section] = slices.Clone(payload)
		s.updated[section] = now
	}
	return nil
}

func (s *SnapshotStore) Load(ctx context.Context, section types.SnapshotSection) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[section]
	if !ok {
		return nil, types.ErrSnapshotNotFound
	}
	return slices.Clone(doc), nil
}

func (s *SnapshotStore) List(ctx context.Context) ([]models.SnapshotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]models.SnapshotInfo, 0, len(s.docs))
	for _, section := range types.Sections {
		doc, ok := s.docs[section]
		if !ok {
			continue
		}
		infos = append(infos, models.SnapshotInfo{Section: section, Bytes: int64(len(doc)), UpdatedAt: s.updated[section]})
	}
	return infos, nil
}
