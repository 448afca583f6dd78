package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
)

func TestGetCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{types.ErrRideNotFound, http.StatusNotFound},
		{fmt.Errorf("op: %w", types.ErrRideNotFound), http.StatusNotFound},
		{types.ErrNotOwnerDelete, http.StatusForbidden},
		{types.ErrNotOwnerAccept, http.StatusForbidden},
		{types.ErrAnonymousCaller, http.StatusUnauthorized},
		{types.ErrInvalidCapacity, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: you have 3 RDT", types.ErrInsufficientBalance), http.StatusConflict},
		{types.ErrSupplyExceeded, http.StatusConflict},
		{types.ErrRideFull, http.StatusConflict},
		{types.ErrDriverAssigned, http.StatusConflict},
		{fmt.Errorf("%w: %w", types.ErrSnapshotFailed, errors.New("disk full")), http.StatusInternalServerError},
		{errors.New("something else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, GetCode(tt.err))
		})
	}
}
