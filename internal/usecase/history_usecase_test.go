package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/iho/gotransfer/internal/domain"
	"github.com/iho/gotransfer/internal/infrastructure/clock"
	"github.com/iho/gotransfer/internal/usecase"
	"github.com/iho/gotransfer/internal/usecase/mocks"
)

func TestHistoryUseCase_ListHistory(t *testing.T) {
	tests := []struct {
		name       string
		input      usecase.ListHistoryInput
		wantLimit  int
		wantOffset int
	}{
		{name: "default limit", input: usecase.ListHistoryInput{AccountID: 1}, wantLimit: usecase.DefaultHistoryLimit},
		{name: "capped limit", input: usecase.ListHistoryInput{AccountID: 1, Limit: 1000}, wantLimit: usecase.MaxHistoryLimit},
		{name: "negative offset", input: usecase.ListHistoryInput{AccountID: 1, Limit: 5, Offset: -3}, wantLimit: 5},
		{name: "passes through", input: usecase.ListHistoryInput{AccountID: 1, Limit: 10, Offset: 20}, wantLimit: 10, wantOffset: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			historyRepo := mocks.NewMockHistoryRepository(ctrl)
			accountRepo := mocks.NewMockAccountRepository(ctrl)

			historyRepo.EXPECT().
				ListByAccount(gomock.Any(), int64(1), tt.wantLimit, tt.wantOffset).
				Return([]*domain.HistoryEntry{{ID: "h-1"}}, nil)

			uc := usecase.NewHistoryUseCase(accountRepo, historyRepo, clock.NewFixed(testNow))
			entries, err := uc.ListHistory(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
		})
	}
}

func TestHistoryUseCase_GetAccountSummary(t *testing.T) {
	dayStart, dayEnd := domain.DayBounds(testNow)

	tests := []struct {
		name          string
		withdrawn     int64
		wantRemaining int64
	}{
		{name: "partially used", withdrawn: 400, wantRemaining: 600},
		{name: "fully used", withdrawn: 1000, wantRemaining: 0},
		{name: "over used after limit change", withdrawn: 1500, wantRemaining: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			historyRepo := mocks.NewMockHistoryRepository(ctrl)
			accountRepo := mocks.NewMockAccountRepository(ctrl)

			accountRepo.EXPECT().GetByID(gomock.Any(), int64(3)).
				Return(&domain.Account{ID: 3, Balance: 5000, PerDayTransferLimit: 1000}, nil)
			historyRepo.EXPECT().AmountWithdrawnOn(gomock.Any(), nil, int64(3), dayStart, dayEnd).
				Return(tt.withdrawn, nil)

			uc := usecase.NewHistoryUseCase(accountRepo, historyRepo, clock.NewFixed(testNow))
			summary, err := uc.GetAccountSummary(context.Background(), 3)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if summary.WithdrawnToday != tt.withdrawn || summary.RemainingToday != tt.wantRemaining {
				t.Fatalf("unexpected summary: withdrawn=%d remaining=%d", summary.WithdrawnToday, summary.RemainingToday)
			}
		})
	}
}

func TestHistoryUseCase_GetAccountSummaryNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	historyRepo := mocks.NewMockHistoryRepository(ctrl)
	accountRepo := mocks.NewMockAccountRepository(ctrl)

	accountRepo.EXPECT().GetByID(gomock.Any(), int64(3)).Return(nil, domain.ErrAccountNotFound)

	_, err := usecase.NewHistoryUseCase(accountRepo, historyRepo, clock.NewFixed(testNow)).GetAccountSummary(context.Background(), 3)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
