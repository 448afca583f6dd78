package types

import "errors"

// Ledger
var (
	ErrAnonymousCaller     = errors.New("anonymous principal is not allowed")
	ErrSupplyExceeded      = errors.New("exceeds total supply")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidIdentity     = errors.New("invalid identity")
)

// Marketplace
var (
	ErrRideNotFound          = errors.New("ride not found")
	ErrRideNotOpenForRiders  = errors.New("ride is not open for new riders")
	ErrRideNotOpenForDrivers = errors.New("ride is not open for drivers")
	ErrAlreadyMember         = errors.New("you are already part of this ride")
	ErrRideFull              = errors.New("ride is full")
	ErrRideAlreadyFull       = errors.New("ride is already full")
	ErrDriverAssigned        = errors.New("ride already has a driver")
	ErrNotOwnerAccept        = errors.New("only the ride owner can accept requests")
	ErrNotOwnerDelete        = errors.New("only the ride owner can delete the ride")
	ErrInvalidCapacity       = errors.New("max riders must be at least 1")
	ErrInvalidRideStatus     = errors.New("invalid ride status")
)

// Persistence
var (
	ErrSnapshotFailed   = errors.New("failed to persist snapshot")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")
	ErrUnknownSection   = errors.New("unknown snapshot section")
)

// Auth
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("admin access required")
)
