package middleware

import (
	"context"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
)

type (
	TokenValidator interface {
		Validate(ctx context.Context, token string) (models.Identity, error)
	}

	Middleware struct {
		auth   TokenValidator
		admins map[models.Identity]struct{}
		log    logger.Logger
	}
)

// NewMiddleware builds the middleware. Only the listed admins pass RequireAdmin.
func NewMiddleware(auth TokenValidator, log logger.Logger, admins ...models.Identity) *Middleware {
	set := make(map[models.Identity]struct{}, len(admins))
	for _, id := range admins {
		set[id] = struct{}{}
	}

	return &Middleware{
		auth:   auth,
		admins: set,
		log:    log,
	}
}
