package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/iho/gotransfer/internal/domain"
)

var inputValidator = validator.New(validator.WithRequiredStructEnabled())

// AccountUseCase provisions and reads accounts.
type AccountUseCase struct {
	accountRepo AccountRepository
	clock       Clock
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, clock Clock) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		clock:       clock,
	}
}

// CreateAccountInput represents input for creating an account.
// A zero ID lets the store assign one.
type CreateAccountInput struct {
	ID                  int64 `validate:"gte=0"`
	Balance             int64 `validate:"gte=0"`
	PerDayTransferLimit int64 `validate:"gte=0"`
	PerTransactionLimit int64 `validate:"gte=0"`
}

// CreateAccount creates a new account.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := inputValidator.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidAccount, verrs[0].Field())
		}
		return nil, err
	}

	now := uc.clock.Now()

	account := &domain.Account{
		ID:                  input.ID,
		Balance:             input.Balance,
		PerDayTransferLimit: input.PerDayTransferLimit,
		PerTransactionLimit: input.PerTransactionLimit,
		Version:             0,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}
