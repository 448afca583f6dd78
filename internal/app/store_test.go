package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/rideshare-ledger/config"
	"github.com/Temutjin2k/rideshare-ledger/internal/adapter/memory"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		cfg := config.Config{Storage: config.StorageConfig{Driver: config.StorageMemory}}

		store, closeFn, err := OpenStore(ctx, cfg, logger.Nop())
		require.NoError(t, err)
		defer closeFn()

		assert.IsType(t, &memory.SnapshotStore{}, store)
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := config.Config{Storage: config.StorageConfig{Driver: "sqlite"}}

		_, _, err := OpenStore(ctx, cfg, logger.Nop())
		assert.ErrorIs(t, err, config.ErrInvalidStorageDriver)
	})
}
