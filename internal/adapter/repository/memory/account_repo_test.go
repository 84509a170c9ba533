package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gotransfer/internal/domain"
)

func TestAccountRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(NewStore())

	first := &domain.Account{Balance: 10}
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, int64(1), first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	explicit := &domain.Account{ID: 10}
	require.NoError(t, repo.Create(ctx, explicit))

	next := &domain.Account{}
	require.NoError(t, repo.Create(ctx, next))
	assert.Equal(t, int64(11), next.ID)

	assert.ErrorIs(t, repo.Create(ctx, &domain.Account{ID: 10}), domain.ErrAccountExists)
}

func TestAccountRepository_GetByIDReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(NewStore())
	require.NoError(t, repo.Create(ctx, &domain.Account{ID: 1, Balance: 100}))

	acc, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	acc.Balance = 0

	again, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), again.Balance)

	_, err = repo.GetByID(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountRepository_GetByIDsForUpdateOrdersAndSkipsUnknown(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewAccountRepository(store)
	require.NoError(t, repo.Create(ctx, &domain.Account{ID: 7}))
	require.NoError(t, repo.Create(ctx, &domain.Account{ID: 3}))

	tx, err := NewTxManager(store).Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	accounts, err := repo.GetByIDsForUpdate(ctx, tx, []int64{7, 99, 3})
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, int64(3), accounts[0].ID)
	assert.Equal(t, int64(7), accounts[1].ID)
}
