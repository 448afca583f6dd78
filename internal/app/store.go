package app

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/rideshare-ledger/config"
	"github.com/Temutjin2k/rideshare-ledger/internal/adapter/memory"
	repo "github.com/Temutjin2k/rideshare-ledger/internal/adapter/postgres"
	redisadapter "github.com/Temutjin2k/rideshare-ledger/internal/adapter/redis"
	"github.com/Temutjin2k/rideshare-ledger/internal/service/persistence"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	"github.com/Temutjin2k/rideshare-ledger/pkg/postgres"
	"github.com/Temutjin2k/rideshare-ledger/pkg/redis"
	"github.com/Temutjin2k/rideshare-ledger/pkg/trm"
)

const redisConnectAttempts = 5

// OpenStore connects the snapshot backend selected by storage.driver.
// The returned func releases the connection.
func OpenStore(ctx context.Context, cfg config.Config, log logger.Logger) (persistence.Store, func(), error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := postgres.New(ctx, cfg.Database, postgres.WithPoolLimits(
			cfg.Database.MaxConns,
			cfg.Database.MinConns,
			cfg.Database.MaxConnLifetime,
			cfg.Database.MaxConnIdleTime,
		))
		if err != nil {
			log.Error(ctx, "Failed to setup database", err)
			return nil, nil, err
		}

		snapshotRepo := repo.NewSnapshotRepo(db.Pool, trm.New(db.Pool))
		if err := snapshotRepo.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return snapshotRepo, db.Close, nil

	case config.StorageRedis:
		client, err := redis.New(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, redisConnectAttempts)
		if err != nil {
			log.Error(ctx, "Failed to setup redis", err)
			return nil, nil, err
		}

		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Warn(ctx, "Failed to close redis", "error", err.Error())
			}
		}
		return redisadapter.NewSnapshotStore(client.Client, cfg.Redis.Prefix), closeFn, nil

	case config.StorageMemory:
		return memory.NewSnapshotStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrInvalidStorageDriver, cfg.Storage.Driver)
	}
}
