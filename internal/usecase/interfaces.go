package usecase

import (
	"context"
	"time"

	"github.com/iho/gotransfer/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	// GetByIDsForUpdate locks the accounts for the lifetime of tx and returns them
	// in ascending id order. Unknown ids are omitted from the result.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []int64) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, account *domain.Account) error
}

// HistoryRepository defines data access for transfer history.
// A nil tx reads outside of any transaction.
type HistoryRepository interface {
	// AmountWithdrawnOn sums WITHDRAW entries of the account created in [dayStart, dayEnd).
	AmountWithdrawnOn(ctx context.Context, tx Transaction, accountID int64, dayStart, dayEnd time.Time) (int64, error)
	Append(ctx context.Context, tx Transaction, entry *domain.HistoryEntry) error
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.HistoryEntry, error)
}

// Transaction represents a storage transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// IdempotencyStore remembers the outcome of keyed transfer requests.
type IdempotencyStore interface {
	// Reserve stores value under key unless the key is already known, in which
	// case it returns false and the value currently stored.
	Reserve(ctx context.Context, key, value string, ttl time.Duration) (bool, string, error)
	// Complete overwrites the value of key with the final outcome.
	Complete(ctx context.Context, key, value string, ttl time.Duration) error
	// Release forgets key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// TransferMetrics observes transfer outcomes.
type TransferMetrics interface {
	ObserveTransfer(result string, kind domain.ErrorKind, amount int64, duration time.Duration)
	IncRetries()
}
