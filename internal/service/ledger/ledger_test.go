package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saverStub struct {
	mu        sync.Mutex
	err       error
	saves     int
	revisions []uint64
}

func (s *saverStub) Save(_ context.Context, section types.SnapshotSection, revision uint64, state any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	if section != types.SectionLedger {
		return errors.New("unexpected section")
	}
	if _, ok := state.(models.LedgerState); !ok {
		return errors.New("unexpected state type")
	}
	s.saves++
	s.revisions = append(s.revisions, revision)
	return nil
}

type publisherStub struct {
	mu     sync.Mutex
	events []models.LedgerEvent
}

func (p *publisherStub) PublishLedgerEvent(_ context.Context, e models.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func newLedger() (*Ledger, *saverStub, *publisherStub) {
	s := &saverStub{}
	p := &publisherStub{}
	return New(s, p, logger.Nop()), s, p
}

func TestBuyTokens(t *testing.T) {
	l, saver, pub := newLedger()
	alice := models.NewIdentity()

	msg, err := l.BuyTokens(context.Background(), alice, 100)
	require.NoError(t, err)
	assert.Equal(t, "Minted 100 RDT to your wallet!", msg)
	assert.Equal(t, uint64(100), l.BalanceOf(alice))
	assert.Equal(t, uint64(100), l.IssuedSupply())
	assert.Equal(t, 1, saver.saves)

	require.Len(t, pub.events, 1)
	assert.Equal(t, types.EventTokensMinted, pub.events[0].Type)
	assert.Equal(t, alice.String(), pub.events[0].To)
}

func TestMintRejectsAnonymous(t *testing.T) {
	l, saver, _ := newLedger()

	_, err := l.BuyTokens(context.Background(), models.Anonymous, 10)
	require.ErrorIs(t, err, types.ErrAnonymousCaller)
	assert.Zero(t, l.BalanceOf(models.Anonymous))
	assert.Zero(t, l.IssuedSupply())
	assert.Zero(t, saver.saves)
}

func TestMintSupplyCap(t *testing.T) {
	l, _, _ := newLedger()
	ctx := context.Background()
	alice, bob := models.NewIdentity(), models.NewIdentity()

	require.NoError(t, l.Mint(ctx, alice, TotalSupply-5))
	require.NoError(t, l.Mint(ctx, bob, 5))

	err := l.Mint(ctx, bob, 1)
	require.ErrorIs(t, err, types.ErrSupplyExceeded)
	assert.Equal(t, TotalSupply, l.IssuedSupply())
	assert.Equal(t, uint64(5), l.BalanceOf(bob))
}

func TestMintOverflowIsSupplyExceeded(t *testing.T) {
	l, _, _ := newLedger()
	ctx := context.Background()
	alice := models.NewIdentity()

	require.NoError(t, l.Mint(ctx, alice, 1))
	err := l.Mint(ctx, alice, math.MaxUint64)
	require.ErrorIs(t, err, types.ErrSupplyExceeded)
	assert.Equal(t, uint64(1), l.BalanceOf(alice))
}

func TestPayForRideConservation(t *testing.T) {
	l, _, pub := newLedger()
	ctx := context.Background()
	rider, driver := models.NewIdentity(), models.NewIdentity()

	require.NoError(t, l.Mint(ctx, rider, 50))

	msg, err := l.PayForRide(ctx, rider, driver, 20)
	require.NoError(t, err)
	assert.Equal(t, "Successfully paid 20 RDT to driver!", msg)
	assert.Equal(t, uint64(30), l.BalanceOf(rider))
	assert.Equal(t, uint64(20), l.BalanceOf(driver))
	assert.Equal(t, uint64(50), l.IssuedSupply())

	require.Len(t, pub.events, 2)
	assert.Equal(t, types.EventTokensTransferred, pub.events[1].Type)
	assert.Equal(t, rider.String(), pub.events[1].From)
}

func TestTransferInsufficientBalance(t *testing.T) {
	l, _, _ := newLedger()
	ctx := context.Background()
	rider, driver := models.NewIdentity(), models.NewIdentity()

	require.NoError(t, l.Mint(ctx, rider, 5))

	_, err := l.PayForRide(ctx, rider, driver, 6)
	require.ErrorIs(t, err, types.ErrInsufficientBalance)
	assert.Contains(t, err.Error(), "you have 5 RDT")
	assert.Equal(t, uint64(5), l.BalanceOf(rider))
	assert.Zero(t, l.BalanceOf(driver))
}

func TestTransferRejectsAnonymous(t *testing.T) {
	l, _, _ := newLedger()

	err := l.Transfer(context.Background(), models.Anonymous, models.NewIdentity(), 0)
	require.ErrorIs(t, err, types.ErrAnonymousCaller)
}

func TestSelfTransferDoesNotMint(t *testing.T) {
	l, _, _ := newLedger()
	ctx := context.Background()
	alice := models.NewIdentity()

	require.NoError(t, l.Mint(ctx, alice, 10))
	require.NoError(t, l.Transfer(ctx, alice, alice, 10))

	assert.Equal(t, uint64(10), l.BalanceOf(alice))
	assert.Equal(t, uint64(10), l.IssuedSupply())
}

func TestSnapshotFailureRollsBack(t *testing.T) {
	l, saver, pub := newLedger()
	ctx := context.Background()
	alice, bob := models.NewIdentity(), models.NewIdentity()

	require.NoError(t, l.Mint(ctx, alice, 10))
	saver.err = errors.New("disk full")

	err := l.Mint(ctx, bob, 10)
	require.ErrorIs(t, err, types.ErrSnapshotFailed)
	assert.Zero(t, l.BalanceOf(bob))
	assert.Equal(t, uint64(10), l.IssuedSupply())

	err = l.Transfer(ctx, alice, bob, 4)
	require.ErrorIs(t, err, types.ErrSnapshotFailed)
	assert.Equal(t, uint64(10), l.BalanceOf(alice))
	assert.Zero(t, l.BalanceOf(bob))
	assert.NotContains(t, l.Snapshot().Balances, bob)

	assert.Len(t, pub.events, 1)
}

func TestRevisionsIncrease(t *testing.T) {
	l, saver, _ := newLedger()
	ctx := context.Background()
	alice := models.NewIdentity()

	for range 3 {
		require.NoError(t, l.Mint(ctx, alice, 1))
	}
	assert.Equal(t, []uint64{1, 2, 3}, saver.revisions)
	assert.Equal(t, uint64(3), l.SnapshotEntry().Revision)
}

func TestConcurrentMints(t *testing.T) {
	l, _, _ := newLedger()
	ctx := context.Background()
	ids := []models.Identity{models.NewIdentity(), models.NewIdentity(), models.NewIdentity()}

	var wg sync.WaitGroup
	for i := range 300 {
		wg.Add(1)
		go func(id models.Identity) {
			defer wg.Done()
			_ = l.Mint(ctx, id, 2)
		}(ids[i%len(ids)])
	}
	wg.Wait()

	var sum uint64
	for _, id := range ids {
		sum += l.BalanceOf(id)
	}
	assert.Equal(t, uint64(600), sum)
	assert.Equal(t, sum, l.IssuedSupply())
}

func TestRestoreSnapshot(t *testing.T) {
	l, _, _ := newLedger()
	ctx := context.Background()
	alice := models.NewIdentity()
	require.NoError(t, l.Mint(ctx, alice, 42))

	payload, err := json.Marshal(l.SnapshotEntry().State)
	require.NoError(t, err)

	restored, _, _ := newLedger()
	require.NoError(t, restored.RestoreSnapshot(payload))
	assert.Equal(t, uint64(42), restored.BalanceOf(alice))
	assert.Equal(t, uint64(42), restored.IssuedSupply())

	bad := []byte(`{"balances":{"` + alice.String() + `":1},"issued_supply":2}`)
	assert.Error(t, restored.RestoreSnapshot(bad))
	assert.Equal(t, uint64(42), restored.BalanceOf(alice))
}
