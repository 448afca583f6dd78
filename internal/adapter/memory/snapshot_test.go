package memory

import (
	"context"
	"testing"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStore(t *testing.T) {
	ctx := context.Background()
	s := NewSnapshotStore()

	_, err := s.Load(ctx, types.SectionLedger)
	require.ErrorIs(t, err, types.ErrSnapshotNotFound)

	payload := []byte(`{"a":1}`)
	require.NoError(t, s.Save(ctx, types.SectionLedger, payload))
	payload[2] = 'b'

	got, err := s.Load(ctx, types.SectionLedger)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	require.NoError(t, s.SaveBatch(ctx, map[types.SnapshotSection][]byte{
		types.SectionMarketplace: []byte(`{}`),
		types.SectionDriverStats: []byte(`{}`),
	}))
	_, err = s.Load(ctx, types.SectionDriverStats)
	assert.NoError(t, err)

	assert.ErrorIs(t, s.Save(ctx, "bogus", nil), types.ErrUnknownSection)
}

func TestSnapshotStore_List(t *testing.T) {
	ctx := context.Background()
	s := NewSnapshotStore()

	infos, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)

	require.NoError(t, s.Save(ctx, types.SectionDriverStats, []byte(`{}`)))
	require.NoError(t, s.Save(ctx, types.SectionLedger, []byte(`{"x":1}`)))

	infos, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, types.SectionLedger, infos[0].Section)
	assert.Equal(t, int64(7), infos[0].Bytes)
	assert.Equal(t, types.SectionDriverStats, infos[1].Section)
	assert.False(t, infos[1].UpdatedAt.IsZero())
}
