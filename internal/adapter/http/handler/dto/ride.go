package dto

import (
	"net/url"
	"strings"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/Temutjin2k/rideshare-ledger/pkg/validator"
)

const maxPlaceLength = 255

type PostRideRequest struct {
	Origin          string  `json:"origin"`
	Destination     string  `json:"destination"`
	MaxRiders       *uint32 `json:"max_riders"`
	IsDriverCreated bool    `json:"is_driver_created"`
}

// для создания поездки
func (r *PostRideRequest) Validate(v *validator.Validator) {
	v.Check(strings.TrimSpace(r.Origin) != "", "origin", "must be provided")
	v.Check(len(r.Origin) <= maxPlaceLength, "origin", "must not be more than 255 characters long")

	v.Check(strings.TrimSpace(r.Destination) != "", "destination", "must be provided")
	v.Check(len(r.Destination) <= maxPlaceLength, "destination", "must not be more than 255 characters long")

	v.Check(r.MaxRiders != nil, "max_riders", "must be provided")
	if r.MaxRiders != nil {
		v.Check(*r.MaxRiders >= 1, "max_riders", "must be at least 1")
	}
}

func (r *PostRideRequest) ToModel(owner string) models.NewRide {
	var maxRiders uint32
	if r.MaxRiders != nil {
		maxRiders = *r.MaxRiders
	}

	return models.NewRide{
		Owner:           owner,
		Origin:          r.Origin,
		Destination:     r.Destination,
		MaxRiders:       maxRiders,
		IsDriverCreated: r.IsDriverCreated,
	}
}

type AcceptRiderRequest struct {
	UserID string `json:"user_id"`
}

func (r *AcceptRiderRequest) Validate(v *validator.Validator) {
	ValidateIdentity(v, "user_id", r.UserID)
}

// SearchRidesQuery parses the origin, destination and status query parameters.
// An absent parameter matches every ride.
func SearchRidesQuery(v *validator.Validator, q url.Values) models.RideFilter {
	var f models.RideFilter

	if q.Has("origin") {
		origin := q.Get("origin")
		v.Check(len(origin) <= maxPlaceLength, "origin", "must not be more than 255 characters long")
		f.Origin = &origin
	}
	if q.Has("destination") {
		destination := q.Get("destination")
		v.Check(len(destination) <= maxPlaceLength, "destination", "must not be more than 255 characters long")
		f.Destination = &destination
	}
	if q.Has("status") {
		status, err := types.ParseRideStatus(q.Get("status"))
		v.Check(err == nil, "status", "must be one of OPEN, IN_PROGRESS, COMPLETED, CANCELLED")
		if err == nil {
			f.Status = &status
		}
	}

	return f
}

type RideResponse struct {
	Ride *models.Ride `json:"ride"`
}

type RidesResponse struct {
	Rides []*models.Ride `json:"rides"`
}

type NotificationsResponse struct {
	UserID        string   `json:"user_id"`
	Notifications []string `json:"notifications"`
}
