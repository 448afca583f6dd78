package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
)

type RewardService interface {
	CheckDriverRewards(ctx context.Context, driverID string) (*models.RewardResult, error)
}

type Reward struct {
	service RewardService
	l       logger.Logger
}

func NewReward(service RewardService, l logger.Logger) *Reward {
	return &Reward{
		service: service,
		l:       l,
	}
}

// CheckDriverRewards godoc
// @Summary      Check driver rewards
// @Description  Pays one token per ride for every full batch of 10 rides not rewarded yet.
// @Tags         rewards
// @Produce      json
// @Security     BearerAuth
// @Param        driver_id path string true "Driver identity"
// @Success      200 {object} models.RewardResult
// @Failure      401 {object} map[string]interface{}
// @Failure      409 {object} map[string]interface{}
// @Failure      422 {object} map[string]interface{}
// @Router       /drivers/{driver_id}/rewards [post]
func (h *Reward) CheckDriverRewards(w http.ResponseWriter, r *http.Request) {
	driverID := r.PathValue("driver_id")
	ctx := wrap.WithAction(r.Context(), "check_driver_rewards")

	result, err := h.service.CheckDriverRewards(ctx, driverID)
	if err != nil {
		serviceErrorResponse(ctx, w, h.l, "failed to check driver rewards", err)
		return
	}

	response := envelope{
		"driver_id":       result.DriverID,
		"completed_rides": result.CompletedRides,
		"rewarded":        result.Rewarded,
		"rides_remaining": result.RidesRemaining,
		"message":         result.Message,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
