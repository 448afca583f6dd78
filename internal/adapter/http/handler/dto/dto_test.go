package dto

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/Temutjin2k/rideshare-ledger/pkg/validator"
)

func ptr[T any](v T) *T { return &v }

func TestPostRideRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     PostRideRequest
		wantErr []string
	}{
		{
			name: "valid",
			req:  PostRideRequest{Origin: "A", Destination: "B", MaxRiders: ptr[uint32](2)},
		},
		{
			name:    "missing everything",
			req:     PostRideRequest{},
			wantErr: []string{"origin", "destination", "max_riders"},
		},
		{
			name:    "zero capacity",
			req:     PostRideRequest{Origin: "A", Destination: "B", MaxRiders: ptr[uint32](0)},
			wantErr: []string{"max_riders"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			tt.req.Validate(v)

			assert.Len(t, v.Errors, len(tt.wantErr))
			for _, key := range tt.wantErr {
				assert.Contains(t, v.Errors, key)
			}
		})
	}
}

func TestPayForRideRequest_Validate(t *testing.T) {
	driver := models.NewIdentity()

	v := validator.New()
	req := PayForRideRequest{DriverID: driver.String(), Amount: ptr[uint64](5)}
	req.Validate(v)
	require.True(t, v.Valid())
	assert.Equal(t, driver, req.Driver())

	v = validator.New()
	req = PayForRideRequest{DriverID: models.Anonymous.String(), Amount: ptr[uint64](0)}
	req.Validate(v)
	assert.Contains(t, v.Errors, "driver_id")
	assert.NotContains(t, v.Errors, "amount", "zero is a valid amount")

	v = validator.New()
	req = PayForRideRequest{DriverID: "ABC"}
	req.Validate(v)
	assert.Equal(t, "must be a valid lowercase UUID", v.Errors["driver_id"])
	assert.Equal(t, "must be provided", v.Errors["amount"])
}

func TestBuyTokensRequest_Validate(t *testing.T) {
	v := validator.New()
	(&BuyTokensRequest{Amount: ptr[uint64](0)}).Validate(v)
	assert.True(t, v.Valid())

	v = validator.New()
	(&BuyTokensRequest{}).Validate(v)
	assert.Equal(t, "must be provided", v.Errors["amount"])
}

func TestSearchRidesQuery(t *testing.T) {
	v := validator.New()
	f := SearchRidesQuery(v, url.Values{"origin": {"down"}, "status": {"open"}})
	require.True(t, v.Valid())
	require.NotNil(t, f.Origin)
	assert.Equal(t, "down", *f.Origin)
	assert.Nil(t, f.Destination)
	require.NotNil(t, f.Status)
	assert.Equal(t, types.RideOpen, *f.Status)

	v = validator.New()
	SearchRidesQuery(v, url.Values{"status": {"flying"}})
	assert.Contains(t, v.Errors, "status")
}
