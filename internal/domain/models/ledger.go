package models

import (
	"time"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
)

// LedgerState is the persisted form of the token ledger.
type LedgerState struct {
	Balances     map[Identity]uint64 `json:"balances"`
	IssuedSupply uint64              `json:"issued_supply"`
}

// LedgerEvent is published after every successful ledger mutation.
type LedgerEvent struct {
	Type         types.LedgerEvent `json:"type"`
	From         string            `json:"from,omitempty"`
	To           string            `json:"to"`
	Amount       uint64            `json:"amount"`
	IssuedSupply uint64            `json:"issued_supply"`
	OccurredAt   time.Time         `json:"occurred_at"`
}

// MarketplaceState is the persisted form of rides and the notification log.
type MarketplaceState struct {
	Rides         map[string]*Ride `json:"rides"`
	Notifications []Notification   `json:"notifications"`
}
