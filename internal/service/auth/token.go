package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenService struct {
	AccessTTL time.Duration
	secret    []byte
	log       logger.Logger
	now       func() time.Time
}

func NewTokenService(secret string, accessTTL time.Duration, log logger.Logger) *TokenService {
	return &TokenService{
		AccessTTL: accessTTL,
		secret:    []byte(secret),
		log:       log,
		now:       time.Now,
	}
}

// Issue signs an access token for the caller. Anonymous callers get a brand new identity.
func (s *TokenService) Issue(ctx context.Context, caller models.Identity) (*models.AccessToken, error) {
	ctx = wrap.WithAction(ctx, types.ActionTokenIssued)

	subject := caller
	if subject.IsAnonymous() {
		subject = models.NewIdentity()
	}

	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.AccessTTL)

	claims := models.CustomClaims{
		Type: types.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("sign token: %w", err))
	}

	s.log.Info(wrap.WithUserID(ctx, subject.String()), "access token issued", "expires_at", expiresAt)

	return &models.AccessToken{
		Token:     signed,
		ExpiresAt: expiresAt,
		UserID:    subject.String(),
	}, nil
}

// Validate parses the token and returns the identity in its subject.
func (s *TokenService) Validate(ctx context.Context, token string) (models.Identity, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	claims := &models.CustomClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Anonymous, wrap.Error(ctx, types.ErrTokenExpired)
		}
		return models.Anonymous, wrap.Error(ctx, fmt.Errorf("%w: %w", types.ErrInvalidToken, err))
	}
	if !parsed.Valid || claims.Type != types.TokenTypeAccess {
		return models.Anonymous, wrap.Error(ctx, types.ErrInvalidToken)
	}

	id, err := models.ParseIdentity(claims.Subject)
	if err != nil || id.IsAnonymous() {
		return models.Anonymous, wrap.Error(ctx, fmt.Errorf("%w: bad subject", types.ErrInvalidToken))
	}

	return id, nil
}
