package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/gotransfer/internal/domain"
	"github.com/iho/gotransfer/internal/infrastructure/postgres/generated"
	"github.com/iho/gotransfer/internal/usecase"
)

// HistoryRepository implements usecase.HistoryRepository.
type HistoryRepository struct {
	queries *generated.Queries
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db generated.DBTX) *HistoryRepository {
	return &HistoryRepository{
		queries: generated.New(db),
	}
}

// queriesFor runs on tx when given, otherwise on the pool.
func (r *HistoryRepository) queriesFor(tx usecase.Transaction) (*generated.Queries, error) {
	if tx == nil {
		return r.queries, nil
	}

	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return nil, err
	}

	return r.queries.WithTx(pgxTx), nil
}

// AmountWithdrawnOn sums WITHDRAW entries of the account created in [dayStart, dayEnd).
func (r *HistoryRepository) AmountWithdrawnOn(ctx context.Context, tx usecase.Transaction, accountID int64, dayStart, dayEnd time.Time) (int64, error) {
	q, err := r.queriesFor(tx)
	if err != nil {
		return 0, err
	}

	return q.SumWithdrawnBetween(ctx, generated.SumWithdrawnBetweenParams{
		AccountID: accountID,
		DayStart:  dayStart,
		DayEnd:    dayEnd,
	})
}

// Append inserts a history entry within tx.
func (r *HistoryRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.HistoryEntry) error {
	if !entry.Kind.IsValid() {
		return fmt.Errorf("invalid history kind %q", entry.Kind)
	}

	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	return r.queries.WithTx(pgxTx).CreateHistoryEntry(ctx, generated.CreateHistoryEntryParams{
		ID:           entry.ID,
		TransferID:   entry.TransferID,
		AccountID:    entry.AccountID,
		Kind:         string(entry.Kind),
		Amount:       entry.Amount,
		BalanceAfter: entry.BalanceAfter,
		CreatedAt:    entry.CreatedAt,
	})
}

// ListByAccount lists entries of an account, newest first.
func (r *HistoryRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.HistoryEntry, error) {
	rows, err := r.queries.ListHistoryByAccount(ctx, generated.ListHistoryByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		kind, err := domain.ParseHistoryKind(row.Kind)
		if err != nil {
			return nil, err
		}

		entries = append(entries, &domain.HistoryEntry{
			ID:           row.ID,
			TransferID:   row.TransferID,
			AccountID:    row.AccountID,
			Kind:         kind,
			Amount:       row.Amount,
			BalanceAfter: row.BalanceAfter,
			CreatedAt:    row.CreatedAt,
		})
	}

	return entries, nil
}
