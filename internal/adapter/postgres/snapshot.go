package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
	"github.com/Temutjin2k/rideshare-ledger/pkg/metrics"
	"github.com/Temutjin2k/rideshare-ledger/pkg/postgres"
	"github.com/Temutjin2k/rideshare-ledger/pkg/trm"
)

const backend = "postgres"

// payload is BYTEA: the checksum covers exact bytes, JSONB would normalize them
const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    section    TEXT PRIMARY KEY,
    payload    BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const upsertSnapshot = `
INSERT INTO snapshots (section, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (section) DO UPDATE
SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at;`

type SnapshotRepo struct {
	db  *pgxpool.Pool
	trm trm.TxManager
}

func NewSnapshotRepo(db *pgxpool.Pool, trm trm.TxManager) *SnapshotRepo {
	return &SnapshotRepo{db: db, trm: trm}
}

// Migrate creates the snapshots table if it does not exist.
func (r *SnapshotRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return wrap.Error(ctx, fmt.Errorf("snapshot repo: Migrate: %w", err))
	}
	return nil
}

func (r *SnapshotRepo) Save(ctx context.Context, section types.SnapshotSection, payload []byte) (err error) {
	defer func(start time.Time) { metrics.RecordSnapshot(backend, "save", err, time.Since(start)) }(time.Now())

	q := TxorDB(ctx, r.db)
	if _, err := q.Exec(ctx, upsertSnapshot, section.String(), payload); err != nil {
		return fmt.Errorf("snapshot repo: Save %s: %w", section, err)
	}
	return nil
}

// SaveBatch writes every section in one transaction.
func (r *SnapshotRepo) SaveBatch(ctx context.Context, payloads map[types.SnapshotSection][]byte) (err error) {
	defer func(start time.Time) { metrics.RecordSnapshot(backend, "save_batch", err, time.Since(start)) }(time.Now())

	err = r.trm.Do(ctx, func(ctx context.Context) error {
		q := TxorDB(ctx, r.db)
		for section, payload := range payloads {
			if _, err := q.Exec(ctx, upsertSnapshot, section.String(), payload); err != nil {
				return fmt.Errorf("snapshot repo: SaveBatch %s: %w", section, err)
			}
		}
		return nil
	})
	if err != nil {
		return wrap.Error(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed), err)
	}
	return nil
}

func (r *SnapshotRepo) Load(ctx context.Context, section types.SnapshotSection) (payload []byte, err error) {
	defer func(start time.Time) { metrics.RecordSnapshot(backend, "load", err, time.Since(start)) }(time.Now())

	q := TxorDB(ctx, r.db)
	err = q.QueryRow(ctx, `SELECT payload FROM snapshots WHERE section = $1;`, section.String()).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || postgres.IsUndefinedTable(err) {
			return nil, types.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("snapshot repo: Load %s: %w", section, err)
	}
	return payload, nil
}

// List returns the stored envelopes' metadata, read in one read-only transaction.
func (r *SnapshotRepo) List(ctx context.Context) ([]models.SnapshotInfo, error) {
	var out []models.SnapshotInfo

	err := r.trm.DoReadOnly(ctx, func(ctx context.Context) error {
		rows, err := TxorDB(ctx, r.db).Query(ctx, `SELECT section, octet_length(payload), updated_at FROM snapshots ORDER BY section;`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var info models.SnapshotInfo
			var section string
			if err := rows.Scan(&section, &info.Bytes, &info.UpdatedAt); err != nil {
				return err
			}
			info.Section = types.SnapshotSection(section)
			out = append(out, info)
		}
		return rows.Err()
	})
	if err != nil {
		if postgres.IsUndefinedTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot repo: List: %w", err)
	}
	return out, nil
}
