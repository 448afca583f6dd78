package models

import (
	"encoding/json"
	"maps"
	"slices"
	"time"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
)

type Ride struct {
	ID          string           `json:"ride_id"`
	Riders      RiderSet         `json:"riders"`
	Origin      string           `json:"origin"`
	Destination string           `json:"destination"`
	Owner       string           `json:"owner"`
	IsDriver    bool             `json:"is_driver"`
	DriverID    *string          `json:"driver_id,omitempty"`
	Status      types.RideStatus `json:"status"`
	MaxRiders   uint32           `json:"max_riders"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Clone returns a deep copy, safe to hand out of the marketplace lock.
func (r *Ride) Clone() *Ride {
	c := *r
	c.Riders = r.Riders.Clone()
	if r.DriverID != nil {
		d := *r.DriverID
		c.DriverID = &d
	}
	return &c
}

// IsFull reports whether riders (owner included) reached capacity.
func (r *Ride) IsFull() bool {
	return uint32(r.Riders.Len()) >= r.MaxRiders
}

func (r *Ride) HasDriver(driverID string) bool {
	return r.DriverID != nil && *r.DriverID == driverID
}

// RiderSet is a set of identity strings. It encodes as a sorted JSON array.
type RiderSet map[string]struct{}

func NewRiderSet(ids ...string) RiderSet {
	s := make(RiderSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s RiderSet) Add(id string) {
	s[id] = struct{}{}
}

func (s RiderSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s RiderSet) Len() int {
	return len(s)
}

func (s RiderSet) Clone() RiderSet {
	if s == nil {
		return RiderSet{}
	}
	return maps.Clone(s)
}

// Sorted returns the members in lexical order.
func (s RiderSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

func (s RiderSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *RiderSet) UnmarshalJSON(b []byte) error {
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = NewRiderSet(ids...)
	return nil
}

// NewRide is the input of post_ride.
type NewRide struct {
	Owner           string
	Origin          string
	Destination     string
	MaxRiders       uint32
	IsDriverCreated bool
}

// RideFilter is the search criteria; nil fields match everything.
type RideFilter struct {
	Origin      *string
	Destination *string
	Status      *types.RideStatus
}
