package types

import (
	"fmt"
	"strings"
)

// Enum для статуса поездки
type RideStatus string

func (s RideStatus) String() string {
	return string(s)
}

// Only Open is assigned today. The rest are declared for the lifecycle
// Open -> InProgress -> Completed, with Cancelled from Open/InProgress.
const (
	RideOpen       RideStatus = "OPEN"
	RideInProgress RideStatus = "IN_PROGRESS"
	RideCompleted  RideStatus = "COMPLETED"
	RideCancelled  RideStatus = "CANCELLED"
)

func (s RideStatus) Valid() bool {
	switch s {
	case RideOpen, RideInProgress, RideCompleted, RideCancelled:
		return true
	default:
		return false
	}
}

// ParseRideStatus accepts OPEN, open, InProgress, in_progress and friends.
func ParseRideStatus(s string) (RideStatus, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	switch norm {
	case "INPROGRESS":
		norm = string(RideInProgress)
	case "CANCELED":
		norm = string(RideCancelled)
	}

	status := RideStatus(norm)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRideStatus, s)
	}
	return status, nil
}
