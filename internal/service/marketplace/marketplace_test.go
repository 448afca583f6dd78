package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notifierStub struct {
	mu    sync.Mutex
	got   []models.Notification
	fails bool
}

func (n *notifierStub) Notify(_ context.Context, note models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, note)
	if n.fails {
		return errors.New("broker unavailable")
	}
	return nil
}

func post(t *testing.T, m *Marketplace, owner string, maxRiders uint32, driverCreated bool) *models.Ride {
	t.Helper()
	ride, err := m.PostRide(context.Background(), models.NewRide{
		Owner:           owner,
		Origin:          "Almaty Central",
		Destination:     "Airport",
		MaxRiders:       maxRiders,
		IsDriverCreated: driverCreated,
	})
	require.NoError(t, err)
	return ride
}

func TestPostRide(t *testing.T) {
	m := New(nil, logger.Nop())

	ride := post(t, m, "alice", 2, false)
	assert.True(t, strings.HasPrefix(ride.ID, "ride_"))
	assert.Equal(t, []string{"alice"}, ride.Riders.Sorted())
	assert.Equal(t, types.RideOpen, ride.Status)
	assert.False(t, ride.IsDriver)
	assert.Nil(t, ride.DriverID)

	driven := post(t, m, "dave", 3, true)
	require.NotNil(t, driven.DriverID)
	assert.Equal(t, "dave", *driven.DriverID)
	assert.True(t, driven.IsDriver)

	_, err := m.PostRide(context.Background(), models.NewRide{Owner: "alice", MaxRiders: 0})
	assert.ErrorIs(t, err, types.ErrInvalidCapacity)
	assert.Len(t, m.ListRides(), 2)
}

func TestJoinScenario(t *testing.T) {
	ctx := context.Background()
	notifier := &notifierStub{}
	m := New(nil, logger.Nop(), notifier)

	ride := post(t, m, "alice", 2, false)

	msg, err := m.RequestToJoin(ctx, ride.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, "Request sent to ride owner.", msg)

	got, err := m.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, got.Riders.Sorted())
	assert.Equal(t, []string{"User bob requested to join your ride."}, m.Notifications("alice"))

	_, err = m.RequestToJoin(ctx, ride.ID, "carol")
	require.ErrorIs(t, err, types.ErrRideFull)
	assert.Equal(t, "ride is full", err.Error())

	require.Len(t, notifier.got, 1)
	assert.Equal(t, "alice", notifier.got[0].UserID)
}

func TestRequestToJoinRejections(t *testing.T) {
	ctx := context.Background()
	m := New(nil, logger.Nop())
	ride := post(t, m, "alice", 3, false)

	_, err := m.RequestToJoin(ctx, "ride_missing", "bob")
	assert.ErrorIs(t, err, types.ErrRideNotFound)

	_, err = m.RequestToJoin(ctx, ride.ID, "alice")
	assert.ErrorIs(t, err, types.ErrAlreadyMember)

	_, err = m.RequestToJoin(ctx, ride.ID, "bob")
	require.NoError(t, err)
	_, err = m.RequestToJoin(ctx, ride.ID, "bob")
	assert.ErrorIs(t, err, types.ErrAlreadyMember)

	got, err := m.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Riders.Len())
	assert.Len(t, m.Notifications("alice"), 1)
}

func TestRequestToJoinNotOpen(t *testing.T) {
	ctx := context.Background()
	m := New(nil, logger.Nop())
	ride := post(t, m, "alice", 3, false)

	closed := m.Snapshot()
	closed.Rides[ride.ID].Status = types.RideInProgress
	m.Restore(closed)

	_, err := m.RequestToJoin(ctx, ride.ID, "bob")
	assert.ErrorIs(t, err, types.ErrRideNotOpenForRiders)

	_, err = m.DriverJoin(ctx, ride.ID, "dave")
	assert.ErrorIs(t, err, types.ErrRideNotOpenForDrivers)
}

func TestAcceptRider(t *testing.T) {
	ctx := context.Background()
	m := New(nil, logger.Nop())
	ride := post(t, m, "alice", 2, false)

	_, err := m.AcceptRider(ctx, ride.ID, "mallory", "bob")
	assert.ErrorIs(t, err, types.ErrNotOwnerAccept)

	msg, err := m.AcceptRider(ctx, ride.ID, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "User added to the ride.", msg)
	assert.Equal(t, []string{"Your request to join the ride has been accepted."}, m.Notifications("bob"))

	_, err = m.AcceptRider(ctx, ride.ID, "alice", "carol")
	assert.ErrorIs(t, err, types.ErrRideAlreadyFull)

	got, err := m.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, uint32(got.Riders.Len()), got.MaxRiders)
	assert.Empty(t, m.Notifications("carol"))
}

func TestDriverJoin(t *testing.T) {
	ctx := context.Background()
	m := New(nil, logger.Nop())
	ride := post(t, m, "alice", 3, false)
	_, err := m.RequestToJoin(ctx, ride.ID, "bob")
	require.NoError(t, err)

	msg, err := m.DriverJoin(ctx, ride.ID, "dave")
	require.NoError(t, err)
	assert.Equal(t, "Successfully joined as driver.", msg)

	got, err := m.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.True(t, got.HasDriver("dave"))
	assert.True(t, got.IsDriver)
	assert.False(t, got.Riders.Has("dave"))

	assert.Equal(t, []string{
		"User bob requested to join your ride.",
		"Driver dave has joined your ride.",
	}, m.Notifications("alice"))
	assert.Equal(t, []string{"A driver has joined your ride."}, m.Notifications("bob"))

	_, err = m.DriverJoin(ctx, ride.ID, "erin")
	assert.ErrorIs(t, err, types.ErrDriverAssigned)
}

func TestDeleteAndCancelRide(t *testing.T) {
	ctx := context.Background()
	m := New(nil, logger.Nop())
	ride := post(t, m, "alice", 3, false)
	_, err := m.RequestToJoin(ctx, ride.ID, "bob")
	require.NoError(t, err)

	_, err = m.DeleteRide(ctx, ride.ID, "bob")
	assert.ErrorIs(t, err, types.ErrNotOwnerDelete)

	msg, err := m.DeleteRide(ctx, ride.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Ride deleted successfully.", msg)
	assert.Empty(t, m.ListRides())
	assert.Equal(t, []string{"A ride you joined has been deleted."}, m.Notifications("bob"))
	assert.Contains(t, m.Notifications("alice"), "A ride you joined has been deleted.")

	_, err = m.DeleteRide(ctx, ride.ID, "alice")
	assert.ErrorIs(t, err, types.ErrRideNotFound)

	other := post(t, m, "carol", 2, false)
	msg, err = m.CancelRide(ctx, other.ID, "carol")
	require.NoError(t, err)
	assert.Equal(t, "Ride deleted successfully.", msg)
	_, err = m.GetRide(ctx, other.ID)
	assert.ErrorIs(t, err, types.ErrRideNotFound)
}

func TestSearchRides(t *testing.T) {
	m := New(nil, logger.Nop())
	ctx := context.Background()

	for _, in := range []models.NewRide{
		{Owner: "a", Origin: "Almaty Central", Destination: "Airport", MaxRiders: 2},
		{Owner: "b", Origin: "Astana", Destination: "Almaty", MaxRiders: 2},
		{Owner: "c", Origin: "Shymkent", Destination: "Airport Terminal 2", MaxRiders: 2},
	} {
		_, err := m.PostRide(ctx, in)
		require.NoError(t, err)
	}

	origin := "almaty"
	assert.Len(t, m.SearchRides(models.RideFilter{Origin: &origin}), 1)

	dest := "AIRPORT"
	assert.Len(t, m.SearchRides(models.RideFilter{Destination: &dest}), 2)

	open := types.RideOpen
	assert.Len(t, m.SearchRides(models.RideFilter{Status: &open}), 3)

	done := types.RideCompleted
	assert.Empty(t, m.SearchRides(models.RideFilter{Status: &done}))
	assert.Len(t, m.SearchRides(models.RideFilter{}), 3)
}

func TestReadsReturnCopies(t *testing.T) {
	m := New(nil, logger.Nop())
	ride := post(t, m, "alice", 2, false)

	ride.Riders.Add("intruder")
	list := m.ListRides()
	list[0].Riders.Add("intruder")

	got, err := m.GetRide(context.Background(), ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Riders.Len())
}

func TestCountRidesByDriver(t *testing.T) {
	ctx := context.Background()
	m := New(nil, logger.Nop())

	for range 3 {
		r := post(t, m, "alice", 2, false)
		_, err := m.DriverJoin(ctx, r.ID, "dave")
		require.NoError(t, err)
	}
	post(t, m, "dave", 2, true)
	post(t, m, "erin", 2, true)

	assert.Equal(t, uint64(4), m.CountRidesByDriver("dave"))
	assert.Equal(t, uint64(1), m.CountRidesByDriver("erin"))
	assert.Zero(t, m.CountRidesByDriver("nobody"))
}

func TestNotifierFailureKeepsLog(t *testing.T) {
	notifier := &notifierStub{fails: true}
	m := New(nil, logger.Nop(), notifier)
	ride := post(t, m, "alice", 2, false)

	_, err := m.RequestToJoin(context.Background(), ride.ID, "bob")
	require.NoError(t, err)
	assert.Len(t, m.Notifications("alice"), 1)
	assert.Len(t, notifier.got, 1)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := New(nil, logger.Nop())
	ride := post(t, m, "alice", 3, false)
	_, err := m.RequestToJoin(ctx, ride.ID, "bob")
	require.NoError(t, err)

	entry := m.SnapshotEntry()
	assert.Equal(t, types.SectionMarketplace, entry.Section)
	assert.Equal(t, uint64(2), entry.Revision)

	payload, err := json.Marshal(entry.State)
	require.NoError(t, err)

	restored := New(nil, logger.Nop())
	require.NoError(t, restored.RestoreSnapshot(payload))

	got, err := restored.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, got.Riders.Sorted())
	assert.Equal(t, []string{"User bob requested to join your ride."}, restored.Notifications("alice"))
}

func TestConcurrentJoinsRespectCapacity(t *testing.T) {
	ctx := context.Background()
	m := New(nil, logger.Nop())
	ride := post(t, m, "alice", 5, false)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = m.RequestToJoin(ctx, ride.ID, "rider-"+string(rune('A'+n)))
		}(i)
	}
	wg.Wait()

	got, err := m.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Riders.Len())
	assert.Len(t, m.Notifications("alice"), 4)
}

type saverStub struct {
	err       error
	revisions []uint64
	last      models.MarketplaceState
}

func (s *saverStub) Save(_ context.Context, section types.SnapshotSection, revision uint64, state any) error {
	if s.err != nil {
		return s.err
	}
	if section == types.SectionMarketplace {
		s.revisions = append(s.revisions, revision)
		s.last = state.(models.MarketplaceState)
	}
	return nil
}

func TestEveryMutationIsSaved(t *testing.T) {
	ctx := context.Background()
	saver := &saverStub{}
	m := New(saver, logger.Nop())

	ride := post(t, m, "owner", 3, false)
	_, err := m.RequestToJoin(ctx, ride.ID, "rider")
	require.NoError(t, err)
	_, err = m.DriverJoin(ctx, ride.ID, "driver")
	require.NoError(t, err)
	_, err = m.DeleteRide(ctx, ride.ID, "owner")
	require.NoError(t, err)

	assert.Equal(t, []uint64{1, 2, 3, 4}, saver.revisions)
	assert.Empty(t, saver.last.Rides)
	assert.Len(t, saver.last.Notifications, 5)
	assert.Equal(t, uint64(4), m.SnapshotEntry().Revision)
}

func TestRejectedMutationIsNotSaved(t *testing.T) {
	saver := &saverStub{}
	m := New(saver, logger.Nop())

	ride := post(t, m, "owner", 1, false)
	_, err := m.RequestToJoin(context.Background(), ride.ID, "rider")
	require.ErrorIs(t, err, types.ErrRideFull)

	assert.Equal(t, []uint64{1}, saver.revisions)
}

func TestSaveFailureSkipsNotifiers(t *testing.T) {
	ctx := context.Background()
	saver := &saverStub{}
	notifier := &notifierStub{}
	m := New(saver, logger.Nop(), notifier)

	ride := post(t, m, "owner", 3, false)
	saver.err = errors.New("disk full")

	_, err := m.RequestToJoin(ctx, ride.ID, "rider")
	require.ErrorIs(t, err, types.ErrSnapshotFailed)
	_, err = m.DeleteRide(ctx, ride.ID, "owner")
	require.ErrorIs(t, err, types.ErrSnapshotFailed)

	assert.Empty(t, notifier.got)
	assert.Empty(t, m.Notifications("owner"))
	assert.Equal(t, uint64(1), m.SnapshotEntry().Revision)

	got, err := m.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Riders.Len())
}
