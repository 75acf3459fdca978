package usecase

import "time"

const (
	// BalanceCacheTTL bounds how long a computed balance vector may be
	// served before recomputation; mutations invalidate it earlier.
	BalanceCacheTTL = 5 * time.Minute

	// SuggestLockTTL is the per-group lock duration for settlement
	// generation. It only matters if a holder crashes mid-run.
	SuggestLockTTL = 30 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// balanceCacheKey returns the cache key for a group's balance vector.
func balanceCacheKey(groupID string) string {
	return "balances:" + groupID
}
