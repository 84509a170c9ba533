package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/iho/gotransfer/internal/domain"
	"github.com/iho/gotransfer/internal/infrastructure/clock"
	"github.com/iho/gotransfer/internal/usecase"
	"github.com/iho/gotransfer/internal/usecase/mocks"
)

var testNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func TestTransferValidator_Validate(t *testing.T) {
	dayStart, dayEnd := domain.DayBounds(testNow)

	tests := []struct {
		name        string
		account     domain.Account
		amount      int64
		withdrawn   int64
		queriesDay  bool
		expectError error
	}{
		{
			name:        "within all limits",
			account:     domain.Account{ID: 1, Balance: 1000, PerDayTransferLimit: 10000, PerTransactionLimit: 1000},
			amount:      1000,
			withdrawn:   0,
			queriesDay:  true,
			expectError: nil,
		},
		{
			name:        "insufficient balance is checked before history",
			account:     domain.Account{ID: 1, Balance: 1000, PerDayTransferLimit: 10000, PerTransactionLimit: 1000},
			amount:      2000,
			queriesDay:  false,
			expectError: domain.ErrInsufficientBalance,
		},
		{
			name:        "daily limit already used",
			account:     domain.Account{ID: 1, Balance: 1000, PerDayTransferLimit: 10000, PerTransactionLimit: 1000},
			amount:      1000,
			withdrawn:   10000,
			queriesDay:  true,
			expectError: domain.ErrExceedsPerDayLimit,
		},
		{
			name:        "daily limit reached exactly is allowed",
			account:     domain.Account{ID: 1, Balance: 1000, PerDayTransferLimit: 10000, PerTransactionLimit: 1000},
			amount:      1000,
			withdrawn:   9000,
			queriesDay:  true,
			expectError: nil,
		},
		{
			name:        "daily limit exceeded by one",
			account:     domain.Account{ID: 1, Balance: 1000, PerDayTransferLimit: 10000, PerTransactionLimit: 1000},
			amount:      1000,
			withdrawn:   9001,
			queriesDay:  true,
			expectError: domain.ErrExceedsPerDayLimit,
		},
		{
			name:        "per transaction limit",
			account:     domain.Account{ID: 1, Balance: 10000, PerDayTransferLimit: 100000, PerTransactionLimit: 500},
			amount:      600,
			withdrawn:   0,
			queriesDay:  true,
			expectError: domain.ErrExceedsPerTransactionLimit,
		},
		{
			name:        "daily limit wins over per transaction limit",
			account:     domain.Account{ID: 1, Balance: 10000, PerDayTransferLimit: 1000, PerTransactionLimit: 500},
			amount:      2000,
			withdrawn:   0,
			queriesDay:  true,
			expectError: domain.ErrExceedsPerDayLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			historyRepo := mocks.NewMockHistoryRepository(ctrl)
			if tt.queriesDay {
				historyRepo.EXPECT().
					AmountWithdrawnOn(gomock.Any(), nil, tt.account.ID, dayStart, dayEnd).
					Return(tt.withdrawn, nil)
			}

			v := usecase.NewTransferValidator(historyRepo, clock.NewFixed(testNow))
			account := tt.account

			err := v.Validate(context.Background(), nil, &account, tt.amount)

			if tt.expectError == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Fatalf("expected error %v, got %v", tt.expectError, err)
			}
			if account != tt.account {
				t.Fatalf("validator mutated the account: %+v", account)
			}
		})
	}
}

func TestTransferValidator_HistoryFailureIsNotARejection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storeErr := errors.New("connection refused")
	historyRepo := mocks.NewMockHistoryRepository(ctrl)
	historyRepo.EXPECT().
		AmountWithdrawnOn(gomock.Any(), gomock.Any(), int64(1), gomock.Any(), gomock.Any()).
		Return(int64(0), storeErr)

	v := usecase.NewTransferValidator(historyRepo, clock.NewFixed(testNow))
	err := v.Validate(context.Background(), nil, &domain.Account{ID: 1, Balance: 100, PerDayTransferLimit: 100, PerTransactionLimit: 100}, 10)

	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if domain.IsRejection(err) {
		t.Fatalf("store failure must not be reported as a rejection")
	}
}
