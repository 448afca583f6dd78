package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/rideshare-ledger/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
	"github.com/Temutjin2k/rideshare-ledger/pkg/validator"
)

type LedgerService interface {
	BuyTokens(ctx context.Context, caller models.Identity, amount uint64) (string, error)
	PayForRide(ctx context.Context, caller, driver models.Identity, amount uint64) (string, error)
	BalanceOf(id models.Identity) uint64
}

type Ledger struct {
	service LedgerService
	l       logger.Logger
}

func NewLedger(service LedgerService, l logger.Logger) *Ledger {
	return &Ledger{
		service: service,
		l:       l,
	}
}

// BuyTokens godoc
// @Summary      Buy tokens
// @Description  Mints tokens to the caller's wallet. Fails when the total supply would be exceeded.
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BuyTokensRequest true "Amount to mint"
// @Success      200 {object} dto.MessageResponse
// @Failure      401 {object} map[string]interface{}
// @Failure      409 {object} map[string]interface{}
// @Failure      422 {object} map[string]interface{}
// @Router       /tokens/buy [post]
func (h *Ledger) BuyTokens(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "buy_tokens")

	var req dto.BuyTokensRequest
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

	msg, err := h.service.BuyTokens(ctx, models.CallerFromContext(ctx), *req.Amount)
	if err != nil {
		serviceErrorResponse(ctx, w, h.l, "failed to buy tokens", err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"message": msg}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "tokens bought", "amount", *req.Amount)
}

// PayForRide godoc
// @Summary      Pay a driver
// @Description  Transfers tokens from the caller to the driver.
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PayForRideRequest true "Driver and amount"
// @Success      200 {object} dto.MessageResponse
// @Failure      401 {object} map[string]interface{}
// @Failure      409 {object} map[string]interface{}
// @Failure      422 {object} map[string]interface{}
// @Router       /tokens/pay [post]
func (h *Ledger) PayForRide(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "pay_for_ride")

	var req dto.PayForRideRequest
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

	msg, err := h.service.PayForRide(ctx, models.CallerFromContext(ctx), req.Driver(), *req.Amount)
	if err != nil {
		serviceErrorResponse(ctx, w, h.l, "failed to pay for ride", err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"message": msg}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "ride paid", "driver_id", req.DriverID, "amount", *req.Amount)
}

// GetBalance godoc
// @Summary      Get balance
// @Description  Returns the token balance of any identity. Unknown identities have a zero balance.
// @Tags         ledger
// @Produce      json
// @Param        user_id path string true "Identity"
// @Success      200 {object} dto.BalanceResponse
// @Failure      400 {object} map[string]interface{}
// @Router       /balances/{user_id} [get]
func (h *Ledger) GetBalance(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_balance")

	userID := r.PathValue("user_id")
	id, err := models.ParseIdentity(userID)
	if err != nil {
		h.l.Warn(ctx, "invalid identity format", "user_id", userID)
		badRequestResponse(w, "invalid identity format")
		return
	}

	response := envelope{
		"user_id": id.String(),
		"balance": h.service.BalanceOf(id),
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
