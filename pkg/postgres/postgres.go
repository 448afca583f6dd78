package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgreDB struct {
	Pool     *pgxpool.Pool
	DBConfig *pgxpool.Config
}

type Config interface {
	GetDSN() string
}

type Option func(*pgxpool.Config)

// WithPoolLimits задает размеры пула и время жизни соединений. Нулевые значения игнорируются.
func WithPoolLimits(maxConns, minConns int32, maxLifetime, maxIdle time.Duration) Option {
	return func(c *pgxpool.Config) {
		if maxConns > 0 {
			c.MaxConns = maxConns
		}
		if minConns > 0 {
			c.MinConns = minConns
		}
		if maxLifetime > 0 {
			c.MaxConnLifetime = maxLifetime
		}
		if maxIdle > 0 {
			c.MaxConnIdleTime = maxIdle
		}
	}
}

func New(ctx context.Context, config Config, opts ...Option) (*PostgreDB, error) {
	dbConfig, err := pgxpool.ParseConfig(config.GetDSN())
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(dbConfig)
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, err
	}

	// Ping the database
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgreDB{
		Pool:     pool,
		DBConfig: dbConfig,
	}, nil
}

func (db *PostgreDB) Close() {
	db.Pool.Close()
}
