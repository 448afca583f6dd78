package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
	"github.com/Temutjin2k/rideshare-ledger/pkg/metrics"
)

// TotalSupply caps the tokens that can ever be issued.
const TotalSupply uint64 = 1_000_000_000

// Ledger keeps balances and the issued supply behind one lock.
// sum(balances) == issued holds as long as only Mint and Transfer touch the state.
type Ledger struct {
	mu       sync.RWMutex
	balances map[models.Identity]uint64
	issued   uint64
	revision uint64

	saver     SnapshotSaver
	publisher EventPublisher
	log       logger.Logger
	now       func() time.Time
}

// New creates an empty ledger. publisher may be nil.
func New(saver SnapshotSaver, publisher EventPublisher, log logger.Logger) *Ledger {
	return &Ledger{
		balances:  make(map[models.Identity]uint64),
		saver:     saver,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Mint credits amount to the identity and grows the issued supply.
func (l *Ledger) Mint(ctx context.Context, to models.Identity, amount uint64) error {
	event, err := l.Credit(ctx, to, amount)
	if err != nil {
		return err
	}

	l.Publish(ctx, event)
	return nil
}

// Credit is Mint without publishing. Callers holding their own locks publish
// the returned event after releasing them.
func (l *Ledger) Credit(ctx context.Context, to models.Identity, amount uint64) (models.LedgerEvent, error) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionTokensMinted, UserID: to.String()})

	event, err := l.mint(ctx, to, amount)
	if err != nil {
		return models.LedgerEvent{}, err
	}

	metrics.RecordMint(amount, event.IssuedSupply)
	l.log.Info(ctx, "tokens minted", "amount", amount, "issued_supply", event.IssuedSupply)

	return event, nil
}

func (l *Ledger) mint(ctx context.Context, to models.Identity, amount uint64) (models.LedgerEvent, error) {
	if to.IsAnonymous() {
		return models.LedgerEvent{}, wrap.Error(ctx, types.ErrAnonymousCaller)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// amount > TotalSupply-issued also covers unsigned wraparound of issued+amount
	if amount > TotalSupply-l.issued {
		return models.LedgerEvent{}, wrap.Error(ctx, types.ErrSupplyExceeded)
	}

	prevBalance, existed := l.balances[to]
	prevIssued := l.issued

	l.balances[to] = prevBalance + amount
	l.issued += amount

	if err := l.persist(ctx); err != nil {
		if existed {
			l.balances[to] = prevBalance
		} else {
			delete(l.balances, to)
		}
		l.issued = prevIssued
		return models.LedgerEvent{}, wrap.Error(ctx, err)
	}

	return models.LedgerEvent{
		Type:         types.EventTokensMinted,
		To:           to.String(),
		Amount:       amount,
		IssuedSupply: l.issued,
		OccurredAt:   l.now().UTC(),
	}, nil
}

// Transfer moves amount from one identity to another. The issued supply does not change.
func (l *Ledger) Transfer(ctx context.Context, from, to models.Identity, amount uint64) error {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionTokensTransferred, UserID: from.String()})

	event, err := l.transfer(ctx, from, to, amount)
	metrics.RecordTransfer(err)
	if err != nil {
		return err
	}

	l.log.Info(ctx, "tokens transferred", "to", to.String(), "amount", amount)
	l.Publish(ctx, event)

	return nil
}

func (l *Ledger) transfer(ctx context.Context, from, to models.Identity, amount uint64) (models.LedgerEvent, error) {
	if from.IsAnonymous() {
		return models.LedgerEvent{}, wrap.Error(ctx, types.ErrAnonymousCaller)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fromBalance := l.balances[from]
	if fromBalance < amount {
		return models.LedgerEvent{}, wrap.Error(ctx, fmt.Errorf("%w: you have %d RDT", types.ErrInsufficientBalance, fromBalance))
	}

	event := models.LedgerEvent{
		Type:         types.EventTokensTransferred,
		From:         from.String(),
		To:           to.String(),
		Amount:       amount,
		IssuedSupply: l.issued,
		OccurredAt:   l.now().UTC(),
	}

	// paying yourself changes nothing
	if from == to {
		return event, nil
	}

	prevTo, toExisted := l.balances[to]

	l.balances[from] = fromBalance - amount
	l.balances[to] = prevTo + amount

	if err := l.persist(ctx); err != nil {
		l.balances[from] = fromBalance
		if toExisted {
			l.balances[to] = prevTo
		} else {
			delete(l.balances, to)
		}
		return models.LedgerEvent{}, wrap.Error(ctx, err)
	}

	return event, nil
}

// persist must be called with mu held.
func (l *Ledger) persist(ctx context.Context) error {
	if l.saver == nil {
		return nil
	}

	l.revision++
	if err := l.saver.Save(ctx, types.SectionLedger, l.revision, l.snapshotLocked()); err != nil {
		l.revision--
		if errors.Is(err, types.ErrSnapshotFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", types.ErrSnapshotFailed, err)
	}
	return nil
}

// Publish hands the event to the publisher. Failures are logged, never returned.
func (l *Ledger) Publish(ctx context.Context, event models.LedgerEvent) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.PublishLedgerEvent(ctx, event); err != nil {
		l.log.Error(wrap.ErrorCtx(wrap.WithAction(ctx, types.ActionLedgerEventFailed), err), "failed to publish ledger event", err, "type", event.Type)
	}
}

// BalanceOf returns 0 for unknown identities.
func (l *Ledger) BalanceOf(id models.Identity) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.balances[id]
}

func (l *Ledger) IssuedSupply() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.issued
}

// BuyTokens mints amount to the caller.
func (l *Ledger) BuyTokens(ctx context.Context, caller models.Identity, amount uint64) (string, error) {
	if err := l.Mint(ctx, caller, amount); err != nil {
		return "", err
	}
	return fmt.Sprintf("Minted %d RDT to your wallet!", amount), nil
}

// PayForRide transfers amount from the caller to the driver.
func (l *Ledger) PayForRide(ctx context.Context, caller, driver models.Identity, amount uint64) (string, error) {
	if err := l.Transfer(ctx, caller, driver, amount); err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully paid %d RDT to driver!", amount), nil
}

// Snapshot returns a copy of the current state.
func (l *Ledger) Snapshot() models.LedgerState {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.snapshotLocked()
}

func (l *Ledger) snapshotLocked() models.LedgerState {
	return models.LedgerState{
		Balances:     maps.Clone(l.balances),
		IssuedSupply: l.issued,
	}
}

// Restore replaces the state. Meant to be called once before serving traffic.
func (l *Ledger) Restore(state models.LedgerState) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances = maps.Clone(state.Balances)
	if l.balances == nil {
		l.balances = make(map[models.Identity]uint64)
	}
	l.issued = state.IssuedSupply
	metrics.IssuedSupplyGauge.Set(float64(l.issued))
}

func (l *Ledger) Section() types.SnapshotSection {
	return types.SectionLedger
}

func (l *Ledger) SnapshotEntry() models.SnapshotEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return models.SnapshotEntry{
		Section:  types.SectionLedger,
		Revision: l.revision,
		State:    l.snapshotLocked(),
	}
}

func (l *Ledger) RestoreSnapshot(payload []byte) error {
	var state models.LedgerState
	if err := json.Unmarshal(payload, &state); err != nil {
		return fmt.Errorf("decode ledger snapshot: %w", err)
	}

	var sum uint64
	for _, b := range state.Balances {
		sum += b
	}
	if state.IssuedSupply > TotalSupply || sum != state.IssuedSupply {
		return fmt.Errorf("ledger snapshot is inconsistent: issued %d, balances sum %d", state.IssuedSupply, sum)
	}

	l.Restore(state)
	return nil
}
