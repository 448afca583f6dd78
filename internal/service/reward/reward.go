package reward

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
	"github.com/Temutjin2k/rideshare-ledger/pkg/metrics"
)

// BatchSize is the number of rides that earns one reward batch.
// A driver gets BatchSize tokens per BatchSize rides.
const BatchSize uint64 = 10

// Engine owns the per driver reward watermarks.
// Lock order: Engine.mu, then the marketplace read lock, then the ledger lock.
type Engine struct {
	mu       sync.Mutex
	stats    map[string]models.DriverStats
	revision uint64

	rides  RideCounter
	ledger Minter
	saver  SnapshotSaver
	log    logger.Logger
}

func New(rides RideCounter, ledger Minter, saver SnapshotSaver, log logger.Logger) *Engine {
	return &Engine{
		stats:  make(map[string]models.DriverStats),
		rides:  rides,
		ledger: ledger,
		saver:  saver,
		log:    log,
	}
}

// CheckDriverRewards pays every full batch of rides not yet rewarded.
// The mint event is published after the engine lock is released.
func (e *Engine) CheckDriverRewards(ctx context.Context, driverID string) (*models.RewardResult, error) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionRewardChecked, UserID: driverID})

	result, event, err := e.check(ctx, driverID)
	if event != nil {
		e.ledger.Publish(ctx, *event)
	}
	return result, err
}

// check returns the mint event whenever tokens were credited, even alongside a save error.
func (e *Engine) check(ctx context.Context, driverID string) (*models.RewardResult, *models.LedgerEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stats[driverID]
	st.CompletedRides = e.rides.CountRidesByDriver(driverID)
	e.stats[driverID] = st
	e.revision++

	eligible := (st.CompletedRides / BatchSize) * BatchSize
	var pending uint64
	if eligible > st.LastRewardAt {
		pending = eligible - st.LastRewardAt
	}

	result := &models.RewardResult{
		DriverID:       driverID,
		CompletedRides: st.CompletedRides,
	}

	if pending == 0 {
		result.RidesRemaining = BatchSize - st.CompletedRides%BatchSize
		result.Message = fmt.Sprintf("You have completed %d rides. Complete %d more rides for your next reward.",
			st.CompletedRides, result.RidesRemaining)
		e.log.Debug(ctx, "no reward pending", "completed_rides", st.CompletedRides, "last_reward_at", st.LastRewardAt)
		return result, nil, nil
	}

	driver, err := models.ParseIdentity(driverID)
	if err != nil {
		return nil, nil, wrap.Error(ctx, fmt.Errorf("invalid driver id: %w", err))
	}

	event, err := e.ledger.Credit(ctx, driver, pending)
	if err != nil {
		return nil, nil, wrap.Error(ctx, err)
	}

	st.LastRewardAt = eligible
	e.stats[driverID] = st
	e.revision++

	metrics.RewardsGrantedTotal.Add(float64(pending))
	e.log.Info(wrap.WithAction(ctx, types.ActionRewardGranted), "driver rewarded", "amount", pending, "completed_rides", st.CompletedRides)

	result.Rewarded = pending
	result.Message = fmt.Sprintf("Congratulations! %d RDT tokens rewarded for completing %d rides!", pending, st.CompletedRides)

	// the tokens are already credited, so the new watermark stays in memory even if saving fails
	if e.saver != nil {
		if err := e.saver.Save(ctx, types.SectionDriverStats, e.revision, maps.Clone(e.stats)); err != nil {
			if !errors.Is(err, types.ErrSnapshotFailed) {
				err = fmt.Errorf("%w: %w", types.ErrSnapshotFailed, err)
			}
			e.log.Error(wrap.ErrorCtx(wrap.WithAction(ctx, types.ActionSnapshotFailed), err), "reward credited but driver stats not saved", err,
				"credited", pending, "last_reward_at", eligible, "revision", e.revision)
			return nil, &event, wrap.Error(ctx, err)
		}
	}

	return result, &event, nil
}

// Stats returns the stats of one driver.
func (e *Engine) Stats(driverID string) (models.DriverStats, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.stats[driverID]
	return st, ok
}

func (e *Engine) Snapshot() map[string]models.DriverStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	return maps.Clone(e.stats)
}

func (e *Engine) Restore(stats map[string]models.DriverStats) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats = maps.Clone(stats)
	if e.stats == nil {
		e.stats = make(map[string]models.DriverStats)
	}
}

func (e *Engine) Section() types.SnapshotSection {
	return types.SectionDriverStats
}

func (e *Engine) SnapshotEntry() models.SnapshotEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	return models.SnapshotEntry{
		Section:  types.SectionDriverStats,
		Revision: e.revision,
		State:    maps.Clone(e.stats),
	}
}

func (e *Engine) RestoreSnapshot(payload []byte) error {
	var stats map[string]models.DriverStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return fmt.Errorf("decode driver stats snapshot: %w", err)
	}

	e.Restore(stats)
	return nil
}
