package redis

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
)

func newStore() *SnapshotStore {
	// never dialed: every case below fails before reaching the network
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	return NewSnapshotStore(client, "test")
}

func TestSnapshotStore_Keys(t *testing.T) {
	s := newStore()

	assert.Equal(t, "test:snapshot:ledger", s.key(types.SectionLedger))
	assert.Equal(t, "test:snapshot:driver_stats", s.key(types.SectionDriverStats))
	assert.Equal(t, "test:snapshot:updated", s.updatedKey())
}

func TestSnapshotStore_UnknownSection(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	err := s.Save(ctx, types.SnapshotSection("bogus"), []byte("{}"))
	assert.ErrorIs(t, err, types.ErrUnknownSection)

	_, err = s.Load(ctx, types.SnapshotSection("bogus"))
	assert.ErrorIs(t, err, types.ErrUnknownSection)
}
