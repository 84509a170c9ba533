package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/gotransfer/internal/domain"
	"github.com/iho/gotransfer/internal/usecase"
)

// HistoryRepository implements usecase.HistoryRepository.
type HistoryRepository struct {
	store *Store
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(store *Store) *HistoryRepository {
	return &HistoryRepository{store: store}
}

// AmountWithdrawnOn sums committed WITHDRAW entries in [dayStart, dayEnd) plus
// the ones staged on tx.
func (r *HistoryRepository) AmountWithdrawnOn(ctx context.Context, tx usecase.Transaction, accountID int64, dayStart, dayEnd time.Time) (int64, error) {
	var staged []domain.HistoryEntry
	if tx != nil {
		memTx, err := asTx(tx)
		if err != nil {
			return 0, err
		}
		staged = memTx.entries
	}

	r.store.mu.RLock()
	total := sumWithdrawn(r.store.history, accountID, dayStart, dayEnd)
	r.store.mu.RUnlock()

	return total + sumWithdrawn(staged, accountID, dayStart, dayEnd), nil
}

// Append stages a history entry on tx.
func (r *HistoryRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.HistoryEntry) error {
	memTx, err := asTx(tx)
	if err != nil {
		return err
	}

	if !entry.Kind.IsValid() {
		return fmt.Errorf("invalid history kind %q", entry.Kind)
	}

	memTx.entries = append(memTx.entries, *entry)

	return nil
}

// ListByAccount lists committed entries of an account, newest first.
func (r *HistoryRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.HistoryEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var entries []*domain.HistoryEntry
	skipped := 0

	for i := len(r.store.history) - 1; i >= 0 && len(entries) < limit; i-- {
		e := r.store.history[i]
		if e.AccountID != accountID {
			continue
		}

		if skipped < offset {
			skipped++
			continue
		}

		entries = append(entries, &e)
	}

	return entries, nil
}

func sumWithdrawn(entries []domain.HistoryEntry, accountID int64, dayStart, dayEnd time.Time) int64 {
	var total int64
	for _, e := range entries {
		if e.AccountID != accountID || e.Kind != domain.HistoryKindWithdraw {
			continue
		}
		if e.CreatedAt.Before(dayStart) || !e.CreatedAt.Before(dayEnd) {
			continue
		}
		total += e.Amount
	}
	return total
}
