package models

// DriverStats is the reward bookkeeping for one driver.
type DriverStats struct {
	CompletedRides uint64 `json:"completed_rides"`
	// LastRewardAt is the highest multiple of the batch size already paid.
	LastRewardAt uint64 `json:"last_reward_at"`
}

// RewardResult describes one reward check.
type RewardResult struct {
	DriverID       string `json:"driver_id"`
	CompletedRides uint64 `json:"completed_rides"`
	Rewarded       uint64 `json:"rewarded"`
	RidesRemaining uint64 `json:"rides_remaining"`
	Message        string `json:"message"`
}
