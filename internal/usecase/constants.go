package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a transfer transaction
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are remembered
	IdempotencyKeyTTL = 24 * time.Hour

	// Limits for history listing
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Transfer outcomes reported to metrics.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
	ResultReplayed = "replayed"
)
