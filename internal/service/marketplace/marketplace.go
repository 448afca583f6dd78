package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/Temutjin2k/rideshare-ledger/pkg/ids"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
	"github.com/Temutjin2k/rideshare-ledger/pkg/metrics"
)

const (
	msgJoinRequested = "Request sent to ride owner."
	msgRiderAdded    = "User added to the ride."
	msgDriverJoined  = "Successfully joined as driver."
	msgRideDeleted   = "Ride deleted successfully."

	noteJoinRequest   = "User %s requested to join your ride."
	noteAccepted      = "Your request to join the ride has been accepted."
	noteDriverToOwner = "Driver %s has joined your ride."
	noteDriverToRider = "A driver has joined your ride."
	noteRideDeleted   = "A ride you joined has been deleted."
)

// Marketplace owns rides and the notification log. Both share one lock.
type Marketplace struct {
	mu       sync.RWMutex
	rides    map[string]*models.Ride
	notes    notificationLog
	revision uint64

	saver     SnapshotSaver
	notifiers []Notifier
	log       logger.Logger
	now       func() time.Time
	newID     func() string
}

// New creates an empty marketplace. saver may be nil.
func New(saver SnapshotSaver, log logger.Logger, notifiers ...Notifier) *Marketplace {
	return &Marketplace{
		rides:     make(map[string]*models.Ride),
		saver:     saver,
		notifiers: notifiers,
		log:       log,
		now:       time.Now,
		newID:     ids.NewRideID,
	}
}

// PostRide creates an open ride with the owner as its only rider.
func (m *Marketplace) PostRide(ctx context.Context, in models.NewRide) (*models.Ride, error) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionRidePosted, UserID: in.Owner})

	if in.MaxRiders < 1 {
		metrics.RecordRideOperation("post_ride", types.ErrInvalidCapacity)
		return nil, wrap.Error(ctx, types.ErrInvalidCapacity)
	}

	ride := &models.Ride{
		ID:          m.newID(),
		Riders:      models.NewRiderSet(in.Owner),
		Origin:      in.Origin,
		Destination: in.Destination,
		Owner:       in.Owner,
		IsDriver:    in.IsDriverCreated,
		Status:      types.RideOpen,
		MaxRiders:   in.MaxRiders,
		CreatedAt:   m.now().UTC(),
	}
	if in.IsDriverCreated {
		owner := in.Owner
		ride.DriverID = &owner
	}

	m.mu.Lock()
	m.rides[ride.ID] = ride
	if err := m.persistLocked(ctx); err != nil {
		delete(m.rides, ride.ID)
		m.mu.Unlock()
		metrics.RecordRideOperation("post_ride", err)
		return nil, wrap.Error(ctx, err)
	}
	out := ride.Clone()
	m.refreshGaugeLocked()
	m.mu.Unlock()

	metrics.RecordRideOperation("post_ride", nil)
	m.log.Info(wrap.WithRideID(ctx, ride.ID), "ride posted", "max_riders", ride.MaxRiders, "driver_created", in.IsDriverCreated)

	return out, nil
}

// GetRide returns a copy of one ride.
func (m *Marketplace) GetRide(ctx context.Context, rideID string) (*models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ride, ok := m.rides[rideID]
	if !ok {
		return nil, wrap.Error(wrap.WithRideID(ctx, rideID), types.ErrRideNotFound)
	}
	return ride.Clone(), nil
}

// ListRides returns every ride, oldest first.
func (m *Marketplace) ListRides() []*models.Ride {
	return m.SearchRides(models.RideFilter{})
}

// SearchRides matches origin and destination as case-insensitive substrings
// and status exactly. Nil filter fields match everything.
func (m *Marketplace) SearchRides(f models.RideFilter) []*models.Ride {
	var origin, destination string
	if f.Origin != nil {
		origin = strings.ToLower(*f.Origin)
	}
	if f.Destination != nil {
		destination = strings.ToLower(*f.Destination)
	}

	m.mu.RLock()
	out := make([]*models.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		if f.Origin != nil && !strings.Contains(strings.ToLower(r.Origin), origin) {
			continue
		}
		if f.Destination != nil && !strings.Contains(strings.ToLower(r.Destination), destination) {
			continue
		}
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		out = append(out, r.Clone())
	}
	m.mu.RUnlock()

	sortRides(out)
	return out
}

func sortRides(rides []*models.Ride) {
	slices.SortFunc(rides, func(a, b *models.Ride) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// RequestToJoin adds the requester to an open ride that has room and tells the owner.
func (m *Marketplace) RequestToJoin(ctx context.Context, rideID, requester string) (string, error) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionJoinRequested, UserID: requester, RideID: rideID})

	pending, err := m.mutate(ctx, rideID, func(ride *models.Ride) ([]models.Notification, error) {
		if ride.Status != types.RideOpen {
			return nil, types.ErrRideNotOpenForRiders
		}
		if ride.Riders.Has(requester) {
			return nil, types.ErrAlreadyMember
		}
		if ride.IsFull() {
			return nil, types.ErrRideFull
		}

		ride.Riders.Add(requester)
		return []models.Notification{m.note(ride.Owner, fmt.Sprintf(noteJoinRequest, requester))}, nil
	})
	metrics.RecordRideOperation("request_to_join", err)
	if err != nil {
		return "", err
	}

	m.dispatch(ctx, pending)
	m.log.Info(ctx, "join requested")

	return msgJoinRequested, nil
}

// AcceptRider lets the owner add userID while there is room.
// No pending request is required.
func (m *Marketplace) AcceptRider(ctx context.Context, rideID, ownerClaim, userID string) (string, error) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionRiderAccepted, UserID: ownerClaim, RideID: rideID})

	pending, err := m.mutate(ctx, rideID, func(ride *models.Ride) ([]models.Notification, error) {
		if ride.Owner != ownerClaim {
			return nil, types.ErrNotOwnerAccept
		}
		if ride.IsFull() {
			return nil, types.ErrRideAlreadyFull
		}

		ride.Riders.Add(userID)
		return []models.Notification{m.note(userID, noteAccepted)}, nil
	})
	metrics.RecordRideOperation("accept_rider", err)
	if err != nil {
		return "", err
	}

	m.dispatch(ctx, pending)
	m.log.Info(ctx, "rider accepted", "rider", userID)

	return msgRiderAdded, nil
}

// DriverJoin assigns a driver to an open ride without one.
func (m *Marketplace) DriverJoin(ctx context.Context, rideID, driverID string) (string, error) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionDriverJoined, UserID: driverID, RideID: rideID})

	pending, err := m.mutate(ctx, rideID, func(ride *models.Ride) ([]models.Notification, error) {
		if ride.Status != types.RideOpen {
			return nil, types.ErrRideNotOpenForDrivers
		}
		if ride.DriverID != nil {
			return nil, types.ErrDriverAssigned
		}

		driver := driverID
		ride.DriverID = &driver
		ride.IsDriver = true

		notes := []models.Notification{m.note(ride.Owner, fmt.Sprintf(noteDriverToOwner, driverID))}
		for _, rider := range ride.Riders.Sorted() {
			if rider != ride.Owner {
				notes = append(notes, m.note(rider, noteDriverToRider))
			}
		}
		return notes, nil
	})
	metrics.RecordRideOperation("driver_join", err)
	if err != nil {
		return "", err
	}

	m.dispatch(ctx, pending)
	m.log.Info(ctx, "driver joined")

	return msgDriverJoined, nil
}

// DeleteRide removes the ride and tells every rider.
func (m *Marketplace) DeleteRide(ctx context.Context, rideID, ownerClaim string) (string, error) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionRideDeleted, UserID: ownerClaim, RideID: rideID})

	m.mu.Lock()
	ride, ok := m.rides[rideID]
	if !ok {
		m.mu.Unlock()
		metrics.RecordRideOperation("delete_ride", types.ErrRideNotFound)
		return "", wrap.Error(ctx, types.ErrRideNotFound)
	}
	if ride.Owner != ownerClaim {
		m.mu.Unlock()
		metrics.RecordRideOperation("delete_ride", types.ErrNotOwnerDelete)
		return "", wrap.Error(ctx, types.ErrNotOwnerDelete)
	}

	delete(m.rides, rideID)

	var pending []models.Notification
	for _, rider := range ride.Riders.Sorted() {
		pending = append(pending, m.note(rider, noteRideDeleted))
	}
	mark := m.notes.len()
	m.appendLocked(pending)
	if err := m.persistLocked(ctx); err != nil {
		m.rides[rideID] = ride
		m.notes.truncate(mark)
		m.mu.Unlock()
		metrics.RecordRideOperation("delete_ride", err)
		return "", wrap.Error(ctx, err)
	}
	m.refreshGaugeLocked()
	m.mu.Unlock()

	metrics.NotificationsTotal.Add(float64(len(pending)))
	metrics.RecordRideOperation("delete_ride", nil)
	m.dispatch(ctx, pending)
	m.log.Info(ctx, "ride deleted", "riders_notified", len(pending))

	return msgRideDeleted, nil
}

// CancelRide removes the ride exactly like DeleteRide. No cancelled record is kept.
func (m *Marketplace) CancelRide(ctx context.Context, rideID, ownerClaim string) (string, error) {
	return m.DeleteRide(ctx, rideID, ownerClaim)
}

// Notifications returns every message queued for userID in insertion order.
func (m *Marketplace) Notifications(userID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.notes.forUser(userID)
}

// CountRidesByDriver counts rides currently assigned to driverID, whatever their status.
func (m *Marketplace) CountRidesByDriver(driverID string) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n uint64
	for _, r := range m.rides {
		if r.HasDriver(driverID) {
			n++
		}
	}
	return n
}

// mutate runs fn on the ride under the write lock, appends the returned
// notifications to the log and saves the section. Nothing changes when fn or the save fails.
func (m *Marketplace) mutate(ctx context.Context, rideID string, fn func(*models.Ride) ([]models.Notification, error)) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ride, ok := m.rides[rideID]
	if !ok {
		return nil, wrap.Error(ctx, types.ErrRideNotFound)
	}

	before := ride.Clone()
	pending, err := fn(ride)
	if err != nil {
		m.rides[rideID] = before
		return nil, wrap.Error(ctx, err)
	}

	mark := m.notes.len()
	m.appendLocked(pending)
	if err := m.persistLocked(ctx); err != nil {
		m.rides[rideID] = before
		m.notes.truncate(mark)
		return nil, wrap.Error(ctx, err)
	}

	metrics.NotificationsTotal.Add(float64(len(pending)))
	return pending, nil
}

func (m *Marketplace) appendLocked(pending []models.Notification) {
	for _, n := range pending {
		m.notes.append(n)
	}
}

// persistLocked saves rides and notifications under a new revision. mu must be held.
func (m *Marketplace) persistLocked(ctx context.Context) error {
	m.revision++
	if m.saver == nil {
		return nil
	}

	if err := m.saver.Save(ctx, types.SectionMarketplace, m.revision, m.snapshotLocked()); err != nil {
		m.revision--
		if errors.Is(err, types.ErrSnapshotFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", types.ErrSnapshotFailed, err)
	}
	return nil
}

func (m *Marketplace) note(userID, message string) models.Notification {
	return models.Notification{UserID: userID, Message: message, CreatedAt: m.now().UTC()}
}

// dispatch hands notifications to the notifiers. Must be called without the lock.
func (m *Marketplace) dispatch(ctx context.Context, pending []models.Notification) {
	for _, n := range pending {
		for _, notifier := range m.notifiers {
			if err := notifier.Notify(ctx, n); err != nil {
				m.log.Warn(wrap.ErrorCtx(wrap.WithAction(ctx, types.ActionNotificationFailed), err), "notification delivery failed", "recipient", n.UserID, "error", err.Error())
			}
		}
	}
}

func (m *Marketplace) refreshGaugeLocked() {
	var open int
	for _, r := range m.rides {
		if r.Status == types.RideOpen {
			open++
		}
	}
	metrics.OpenRidesGauge.Set(float64(open))
}

// Snapshot returns a deep copy of rides and notifications.
func (m *Marketplace) Snapshot() models.MarketplaceState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snapshotLocked()
}

func (m *Marketplace) snapshotLocked() models.MarketplaceState {
	rides := make(map[string]*models.Ride, len(m.rides))
	for id, r := range m.rides {
		rides[id] = r.Clone()
	}
	return models.MarketplaceState{Rides: rides, Notifications: m.notes.snapshot()}
}

// Restore replaces rides and notifications. Meant to be called before serving traffic.
func (m *Marketplace) Restore(state models.MarketplaceState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rides = make(map[string]*models.Ride, len(state.Rides))
	for id, r := range state.Rides {
		if r == nil {
			continue
		}
		c := r.Clone()
		c.ID = id
		m.rides[id] = c
	}
	m.notes = notificationLog{entries: slices.Clone(state.Notifications)}
	m.refreshGaugeLocked()
}

func (m *Marketplace) Section() types.SnapshotSection {
	return types.SectionMarketplace
}

func (m *Marketplace) SnapshotEntry() models.SnapshotEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return models.SnapshotEntry{
		Section:  types.SectionMarketplace,
		Revision: m.revision,
		State:    m.snapshotLocked(),
	}
}

func (m *Marketplace) RestoreSnapshot(payload []byte) error {
	var state models.MarketplaceState
	if err := json.Unmarshal(payload, &state); err != nil {
		return fmt.Errorf("decode marketplace snapshot: %w", err)
	}

	m.Restore(state)
	return nil
}
