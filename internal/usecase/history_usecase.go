package usecase

import (
	"context"

	"github.com/iho/gotransfer/internal/domain"
)

// HistoryUseCase serves read-only views of accounts and their history.
type HistoryUseCase struct {
	accountRepo AccountRepository
	historyRepo HistoryRepository
	clock       Clock
}

// NewHistoryUseCase creates a new HistoryUseCase.
func NewHistoryUseCase(accountRepo AccountRepository, historyRepo HistoryRepository, clock Clock) *HistoryUseCase {
	return &HistoryUseCase{
		accountRepo: accountRepo,
		historyRepo: historyRepo,
		clock:       clock,
	}
}

// ListHistoryInput represents input for listing history entries.
type ListHistoryInput struct {
	AccountID int64
	Limit     int
	Offset    int
}

// ListHistory lists history entries of an account, newest first.
func (uc *HistoryUseCase) ListHistory(ctx context.Context, input ListHistoryInput) ([]*domain.HistoryEntry, error) {
	if input.Limit <= 0 {
		input.Limit = DefaultHistoryLimit
	}

	if input.Limit > MaxHistoryLimit {
		input.Limit = MaxHistoryLimit
	}

	if input.Offset < 0 {
		input.Offset = 0
	}

	return uc.historyRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}

// AccountSummary is an account snapshot with today's withdrawal usage.
type AccountSummary struct {
	Account        *domain.Account
	WithdrawnToday int64
	RemainingToday int64
}

// GetAccountSummary returns the account and how much it may still send today.
// The figures are a snapshot and are not a reservation.
func (uc *HistoryUseCase) GetAccountSummary(ctx context.Context, accountID int64) (*AccountSummary, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	dayStart, dayEnd := domain.DayBounds(uc.clock.Now())

	withdrawn, err := uc.historyRepo.AmountWithdrawnOn(ctx, nil, accountID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	return &AccountSummary{
		Account:        account,
		WithdrawnToday: withdrawn,
		RemainingToday: max(account.PerDayTransferLimit-withdrawn, 0),
	}, nil
}
