package dto

import (
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/pkg/validator"
)

type BuyTokensRequest struct {
	Amount *uint64 `json:"amount"`
}

// Validate only requires the amount. Zero is a valid no-op mint.
func (r *BuyTokensRequest) Validate(v *validator.Validator) {
	v.Check(r.Amount != nil, "amount", "must be provided")
}

type PayForRideRequest struct {
	DriverID string  `json:"driver_id"`
	Amount   *uint64 `json:"amount"`
}

func (r *PayForRideRequest) Validate(v *validator.Validator) {
	ValidateIdentity(v, "driver_id", r.DriverID)

	v.Check(r.Amount != nil, "amount", "must be provided")
}

// Driver is only meaningful after Validate passed.
func (r *PayForRideRequest) Driver() models.Identity {
	id, _ := models.ParseIdentity(r.DriverID)
	return id
}

type BalanceResponse struct {
	UserID  string `json:"user_id"`
	Balance uint64 `json:"balance"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ValidateIdentity checks that value is a canonical, non anonymous identity.
func ValidateIdentity(v *validator.Validator, key, value string) {
	v.Check(value != "", key, "must be provided")
	if value == "" {
		return
	}

	id, err := models.ParseIdentity(value)
	v.Check(err == nil, key, "must be a valid lowercase UUID")
	if err == nil {
		v.Check(!id.IsAnonymous(), key, "must not be the anonymous identity")
	}
}
