package models

import (
	"encoding/json"
	"time"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
)

// SnapshotEntry is the in-memory state of one section at a given revision.
// Revisions grow with every mutation of the owning component.
type SnapshotEntry struct {
	Section  types.SnapshotSection
	Revision uint64
	State    any
}

// SnapshotEnvelope is what the stores keep for a section.
type SnapshotEnvelope struct {
	Section  types.SnapshotSection `json:"section"`
	Version  int                   `json:"version"`
	Checksum string                `json:"checksum"`
	SavedAt  time.Time             `json:"saved_at"`
	Payload  json.RawMessage       `json:"payload"`
}

// SnapshotInfo describes a stored section without decoding it.
type SnapshotInfo struct {
	Section   types.SnapshotSection `json:"section"`
	Bytes     int64                 `json:"bytes"`
	UpdatedAt time.Time             `json:"updated_at"`
}
