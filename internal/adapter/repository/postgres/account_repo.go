package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/gotransfer/internal/domain"
	"github.com/iho/gotransfer/internal/infrastructure/postgres/generated"
	"github.com/iho/gotransfer/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{
		queries: generated.New(db),
	}
}

// Create creates a new account. A zero ID is assigned from the sequence; an
// explicit ID moves the sequence past it so later assigned ids do not collide.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	explicitID := account.ID != 0

	if account.CreatedAt.IsZero() {
		now := time.Now().UTC()
		account.CreatedAt = now
		account.UpdatedAt = now
	}

	row, err := r.queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:                  account.ID,
		Balance:             account.Balance,
		PerDayTransferLimit: account.PerDayTransferLimit,
		PerTransactionLimit: account.PerTransactionLimit,
		Version:             account.Version,
		CreatedAt:           account.CreatedAt,
		UpdatedAt:           account.UpdatedAt,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrAccountExists
		}
		return err
	}

	account.ID = row.ID

	if explicitID {
		if err := r.queries.SyncAccountIDSequence(ctx); err != nil {
			return fmt.Errorf("failed to advance account id sequence: %w", err)
		}
	}

	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByIDsForUpdate retrieves multiple accounts by IDs with FOR UPDATE locks,
// acquired in ascending id order.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []int64) ([]*domain.Account, error) {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	rows, err := r.queries.WithTx(pgxTx).GetAccountsByIDsForUpdate(ctx, sorted)
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

// UpdateBalance persists the balance and version of an account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	affected, err := r.queries.WithTx(pgxTx).UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
		ID:        account.ID,
		Balance:   account.Balance,
		Version:   account.Version,
		UpdatedAt: account.UpdatedAt,
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:                  row.ID,
		Balance:             row.Balance,
		PerDayTransferLimit: row.PerDayTransferLimit,
		PerTransactionLimit: row.PerTransactionLimit,
		Version:             row.Version,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}
