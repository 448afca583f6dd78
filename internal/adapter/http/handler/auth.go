package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
)

type TokenIssuer interface {
	Issue(ctx context.Context, caller models.Identity) (*models.AccessToken, error)
}

type Auth struct {
	auth TokenIssuer
	l    logger.Logger
}

func NewAuth(service TokenIssuer, l logger.Logger) *Auth {
	return &Auth{
		auth: service,
		l:    l,
	}
}

// IssueToken godoc
// @Summary      Issue an access token
// @Description  Authenticated callers get a fresh token for their identity. Anonymous callers get a new identity.
// @Tags         auth
// @Produce      json
// @Success      201 {object} models.AccessToken
// @Failure      401 {object} map[string]interface{}
// @Router       /auth/token [post]
func (h *Auth) IssueToken(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "issue_token")

	token, err := h.auth.Issue(ctx, models.CallerFromContext(ctx))
	if err != nil {
		serviceErrorResponse(ctx, w, h.l, "failed to issue token", err)
		return
	}

	response := envelope{
		"access_token": token.Token,
		"expires_at":   token.ExpiresAt,
		"user_id":      token.UserID,
	}

	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}
