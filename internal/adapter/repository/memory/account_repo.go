package memory

import (
	"context"
	"slices"
	"time"

	"github.com/iho/gotransfer/internal/domain"
	"github.com/iho/gotransfer/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create stores a new account. A zero ID is replaced by the next free one.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if account.ID == 0 {
		r.store.nextID++
		account.ID = r.store.nextID
	}

	if _, ok := r.store.accounts[account.ID]; ok {
		return domain.ErrAccountExists
	}

	if account.ID > r.store.nextID {
		r.store.nextID = account.ID
	}

	if account.CreatedAt.IsZero() {
		now := time.Now().UTC()
		account.CreatedAt = now
		account.UpdatedAt = now
	}

	r.store.accounts[account.ID] = *account

	return nil
}

// GetByID retrieves a committed snapshot of an account.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	acc, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return &acc, nil
}

// GetByIDsForUpdate locks the accounts in ascending id order and returns copies
// the caller may mutate freely.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []int64) ([]*domain.Account, error) {
	memTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if err := memTx.lock(ctx, ids); err != nil {
		return nil, err
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	accounts := make([]*domain.Account, 0, len(sorted))
	for _, id := range sorted {
		if _, locked := memTx.held[id]; !locked {
			continue
		}

		acc, ok := memTx.account(id)
		if !ok {
			continue
		}

		accounts = append(accounts, &acc)
	}

	return accounts, nil
}

// UpdateBalance stages the new balance of a locked account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	memTx, err := asTx(tx)
	if err != nil {
		return err
	}

	if _, ok := memTx.held[account.ID]; !ok {
		return ErrNotLocked
	}

	memTx.balances[account.ID] = *account

	return nil
}
