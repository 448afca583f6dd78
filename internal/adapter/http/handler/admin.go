package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
)

type SnapshotService interface {
	SaveSnapshot(ctx context.Context) error
	ListSnapshots(ctx context.Context) ([]models.SnapshotInfo, error)
}

type Admin struct {
	service SnapshotService
	l       logger.Logger
}

func NewAdmin(service SnapshotService, l logger.Logger) *Admin {
	return &Admin{
		service: service,
		l:       l,
	}
}

// SaveSnapshot godoc
// @Summary      Persist all sections
// @Description  Writes the ledger, marketplace and driver_stats sections in one batch.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]interface{}
// @Failure      401 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Failure      500 {object} map[string]interface{}
// @Router       /admin/snapshot [post]
func (h *Admin) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "admin_save_snapshot")

	start := time.Now()
	if err := h.service.SaveSnapshot(ctx); err != nil {
		serviceErrorResponse(ctx, w, h.l, "failed to save snapshot", err)
		return
	}

	infos, err := h.service.ListSnapshots(ctx)
	if err != nil {
		serviceErrorResponse(ctx, w, h.l, "failed to list snapshots", err)
		return
	}

	response := envelope{
		"message":     "Snapshot saved.",
		"sections":    infos,
		"duration_ms": time.Since(start).Milliseconds(),
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "snapshot saved on demand", "sections", len(infos))
}

// ListSnapshots godoc
// @Summary      Describe stored sections
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]interface{}
// @Failure      401 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Router       /admin/snapshot [get]
func (h *Admin) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "admin_list_snapshots")

	infos, err := h.service.ListSnapshots(ctx)
	if err != nil {
		serviceErrorResponse(ctx, w, h.l, "failed to list snapshots", err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"sections": infos}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
