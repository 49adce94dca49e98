package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// CalcCacheTTL is how long a job's calculation result stays cached
	// before it is recomputed. Any ledger mutation invalidates it early.
	CalcCacheTTL = 5 * time.Minute
)

// CalcCacheKey is the cache key for a job's default-schema calculation.
// Writers (the HTTP layer) and invalidators (ledger mutations) must agree
// on this key.
func CalcCacheKey(jobID string) string {
	return "calc:job:" + jobID
}
