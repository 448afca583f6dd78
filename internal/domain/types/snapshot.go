package types

// SnapshotSection names one independently persisted part of the state.
type SnapshotSection string

func (s SnapshotSection) String() string {
	return string(s)
}

const (
	SectionLedger      SnapshotSection = "ledger"
	SectionMarketplace SnapshotSection = "marketplace"
	SectionDriverStats SnapshotSection = "driver_stats"
)

// Sections lists every section in restore order.
var Sections = []SnapshotSection{SectionLedger, SectionMarketplace, SectionDriverStats}

func (s SnapshotSection) Valid() bool {
	switch s {
	case SectionLedger, SectionMarketplace, SectionDriverStats:
		return true
	default:
		return false
	}
}
