package usecase

import (
	"context"
	"fmt"

	"github.com/iho/gotransfer/internal/domain"
)

// TransferValidator decides whether an account may send an amount.
// It never mutates the account or the history.
type TransferValidator struct {
	historyRepo HistoryRepository
	clock       Clock
}

// NewTransferValidator creates a new TransferValidator.
func NewTransferValidator(historyRepo HistoryRepository, clock Clock) *TransferValidator {
	return &TransferValidator{
		historyRepo: historyRepo,
		clock:       clock,
	}
}

// Validate checks, in order, the balance, the per-day limit and the
// per-transaction limit. The first violated rule is returned.
func (v *TransferValidator) Validate(ctx context.Context, tx Transaction, account *domain.Account, amount int64) error {
	if !account.CanDebit(amount) {
		return domain.ErrInsufficientBalance
	}

	dayStart, dayEnd := domain.DayBounds(v.clock.Now())

	withdrawn, err := v.historyRepo.AmountWithdrawnOn(ctx, tx, account.ID, dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("failed to load today's withdrawals for account %d: %w", account.ID, err)
	}

	// The per-day limit is the maximum cumulative total, boundary included.
	if withdrawn+amount > account.PerDayTransferLimit {
		return domain.ErrExceedsPerDayLimit
	}

	if amount > account.PerTransactionLimit {
		return domain.ErrExceedsPerTransactionLimit
	}

	return nil
}
