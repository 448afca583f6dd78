package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/rideshare-ledger/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/Temutjin2k/rideshare-ledger/pkg/ids"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
	"github.com/Temutjin2k/rideshare-ledger/pkg/validator"
)

type RideService interface {
	PostRide(ctx context.Context, in models.NewRide) (*models.Ride, error)
	GetRide(ctx context.Context, rideID string) (*models.Ride, error)
	ListRides() []*models.Ride
	SearchRides(f models.RideFilter) []*models.Ride
	RequestToJoin(ctx context.Context, rideID, requester string) (string, error)
	AcceptRider(ctx context.Context, rideID, ownerClaim, userID string) (string, error)
	DriverJoin(ctx context.Context, rideID, driverID string) (string, error)
	DeleteRide(ctx context.Context, rideID, ownerClaim string) (string, error)
	CancelRide(ctx context.Context, rideID, ownerClaim string) (string, error)
	Notifications(userID string) []string
}

type Ride struct {
	service RideService
	l       logger.Logger
}

func NewRide(service RideService, l logger.Logger) *Ride {
	return &Ride{
		service: service,
		l:       l,
	}
}

// PostRide godoc
// @Summary      Post a ride
// @Description  Creates an open ride owned by the caller. The caller is its first rider.
// @Tags         rides
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PostRideRequest true "Ride details"
// @Success      201 {object} dto.RideResponse
// @Failure      401 {object} map[string]interface{}
// @Failure      422 {object} map[string]interface{}
// @Router       /rides [post]
func (h *Ride) PostRide(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "post_ride")

	var req dto.PostRideRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	caller := models.CallerFromContext(ctx)
	ride, err := h.service.PostRide(ctx, req.ToModel(caller.String()))
	if err != nil {
		serviceErrorResponse(ctx, w, h.l, "failed to post ride", err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", "/rides/"+ride.ID)

	if err := writeJSON(w, http.StatusCreated, envelope{"ride": ride}, headers); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(wrap.WithRideID(ctx, ride.ID), "ride posted")
}

// ListRides godoc
// @Summary      List rides
// @Description  Returns every ride, oldest first.
// @Tags         rides
// @Produce      json
// @Success      200 {object} dto.RidesResponse
// @Router       /rides [get]
func (h *Ride) ListRides(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_rides")

	if err := writeJSON(w, http.StatusOK, envelope{"rides": h.service.ListRides()}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// SearchRides godoc
// @Summary      Search rides
// @Description  Case-insensitive substring match on origin and destination, exact match on status. Omitted filters match everything.
// @Tags         rides
// @Produce      json
// @Param        origin      query string false "Origin substring"
// @Param        destination query string false "Destination substring"
// @Param        status      query string false "OPEN, IN_PROGRESS, COMPLETED or CANCELLED"
// @Success      200 {object} dto.RidesResponse
// @Failure      422 {object} map[string]interface{}
// @Router       /rides/search [get]
func (h *Ride) SearchRides(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "search_rides")

	v := validator.New()
	filter := dto.SearchRidesQuery(v, r.URL.Query())
	if !v.Valid() {
		h.l.Warn(ctx, "invalid search query")
		failedValidationResponse(w, v.Errors)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"rides": h.service.SearchRides(filter)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// GetRide godoc
// @Summary      Get a ride
// @Tags         rides
// @Produce      json
// @Param        ride_id path string true "Ride ID"
// @Success      200 {object} dto.RideResponse
// @Failure      404 {object} map[string]interface{}
// @Router       /rides/{ride_id} [get]
func (h *Ride) GetRide(w http.ResponseWriter, r *http.Request) {
	rideID := r.PathValue("ride_id")
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "get_ride", RideID: rideID})

	if err := ids.Validate(rideID, ids.PrefixRide); err != nil {
		h.l.Warn(ctx, "malformed ride id", "error", err.Error())
		errorResponse(w, http.StatusNotFound, types.ErrRideNotFound.Error())
		return
	}

	ride, err := h.service.GetRide(ctx, rideID)
	if err != nil {
		serviceErrorResponse(ctx, w, h.l, "failed to get ride", err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"ride": ride}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// RequestToJoin godoc
// @Summary      Join a ride
// @Description  Adds the caller to an open ride with free seats and notifies the owner.
// @Tags         rides
// @Produce      json
// @Security     BearerAuth
// @Param        ride_id path string true "Ride ID"
// @Success      200 {object} dto.MessageResponse
// @Failure      401 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Failure      409 {object} map[string]interface{}
// @Router       /rides/{ride_id}/join [post]
func (h *Ride) RequestToJoin(w http.ResponseWriter, r *http.Request) {
	rideID := r.PathValue("ride_id")
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "request_to_join", RideID: rideID})

	msg, err := h.service.RequestToJoin(ctx, rideID, models.CallerFromContext(ctx).String())
	h.respondMessage(ctx, w, msg, err, "failed to join ride")
}

// AcceptRider godoc
// @Summary      Accept a rider
// @Description  The ride owner adds a user to the ride.
// @Tags         rides
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        ride_id path string true "Ride ID"
// @Param        request body dto.AcceptRiderRequest true "User to accept"
// @Success      200 {object} dto.MessageResponse
// @Failure      401 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Failure      409 {object} map[string]interface{}
// @Router       /rides/{ride_id}/accept [post]
func (h *Ride) AcceptRider(w http.ResponseWriter, r *http.Request) {
	rideID := r.PathValue("ride_id")
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "accept_rider", RideID: rideID})

	var req dto.AcceptRiderRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	msg, err := h.service.AcceptRider(ctx, rideID, models.CallerFromContext(ctx).String(), req.UserID)
	h.respondMessage(ctx, w, msg, err, "failed to accept rider")
}

// DriverJoin godoc
// @Summary      Join as driver
// @Description  Assigns the caller as the driver of an open ride and notifies its riders.
// @Tags         rides
// @Produce      json
// @Security     BearerAuth
// @Param        ride_id path string true "Ride ID"
// @Success      200 {object} dto.MessageResponse
// @Failure      401 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Failure      409 {object} map[string]interface{}
// @Router       /rides/{ride_id}/driver [post]
func (h *Ride) DriverJoin(w http.ResponseWriter, r *http.Request) {
	rideID := r.PathValue("ride_id")
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "driver_join", RideID: rideID})

	msg, err := h.service.DriverJoin(ctx, rideID, models.CallerFromContext(ctx).String())
	h.respondMessage(ctx, w, msg, err, "failed to join ride as driver")
}

// DeleteRide godoc
// @Summary      Delete a ride
// @Description  The ride owner removes the ride; every rider is notified. owner_id, when given, must be the caller.
// @Tags         rides
// @Produce      json
// @Security     BearerAuth
// @Param        ride_id  path  string true  "Ride ID"
// @Param        owner_id query string false "Owner identity"
// @Success      200 {object} dto.MessageResponse
// @Failure      401 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Router       /rides/{ride_id} [delete]
func (h *Ride) DeleteRide(w http.ResponseWriter, r *http.Request) {
	rideID := r.PathValue("ride_id")
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "delete_ride", RideID: rideID})

	caller := models.CallerFromContext(ctx).String()
	if owner := r.URL.Query().Get("owner_id"); owner != "" && owner != caller {
		h.l.Warn(ctx, "owner_id does not match the caller", "owner_id", owner)
		errorResponse(w, GetCode(types.ErrNotOwnerDelete), types.ErrNotOwnerDelete.Error())
		return
	}

	msg, err := h.service.DeleteRide(ctx, rideID, caller)
	h.respondMessage(ctx, w, msg, err, "failed to delete ride")
}

// CancelRide godoc
// @Summary      Cancel a ride
// @Description  Same as deleting the ride: no cancelled record is kept.
// @Tags         rides
// @Produce      json
// @Security     BearerAuth
// @Param        ride_id path string true "Ride ID"
// @Success      200 {object} dto.MessageResponse
// @Failure      401 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Router       /rides/{ride_id}/cancel [post]
func (h *Ride) CancelRide(w http.ResponseWriter, r *http.Request) {
	rideID := r.PathValue("ride_id")
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "cancel_ride", RideID: rideID})

	msg, err := h.service.CancelRide(ctx, rideID, models.CallerFromContext(ctx).String())
	h.respondMessage(ctx, w, msg, err, "failed to cancel ride")
}

// GetNotifications godoc
// @Summary      Get notifications
// @Description  Every message queued for the user, in insertion order. Reading does not clear them.
// @Tags         notifications
// @Produce      json
// @Param        user_id path string true "Identity"
// @Success      200 {object} dto.NotificationsResponse
// @Router       /notifications/{user_id} [get]
func (h *Ride) GetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_notifications")
	userID := r.PathValue("user_id")

	response := envelope{
		"user_id":       userID,
		"notifications": h.service.Notifications(userID),
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

func (h *Ride) respondMessage(ctx context.Context, w http.ResponseWriter, msg string, err error, failMsg string) {
	if err != nil {
		serviceErrorResponse(ctx, w, h.l, failMsg, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"message": msg}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, msg)
}
