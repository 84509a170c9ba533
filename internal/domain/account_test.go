package domain

import (
	"testing"
	"time"
)

func TestAccount_CanDebit(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		amount  int64
		want    bool
	}{
		{name: "debit less than balance", balance: 100, amount: 50, want: true},
		{name: "debit exact balance", balance: 100, amount: 100, want: true},
		{name: "debit more than balance", balance: 100, amount: 150, want: false},
		{name: "empty account", balance: 0, amount: 1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Balance: tt.balance}

			if got := acc.CanDebit(tt.amount); got != tt.want {
				t.Errorf("CanDebit(%d) with balance %d = %v, want %v", tt.amount, tt.balance, got, tt.want)
			}
		})
	}
}

func TestAccount_Debit(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	acc := &Account{Balance: 100, Version: 3}
	acc.Debit(30, now)

	if acc.Balance != 70 {
		t.Errorf("expected balance 70, got %d", acc.Balance)
	}
	if acc.Version != 4 {
		t.Errorf("expected version 4, got %d", acc.Version)
	}
	if !acc.UpdatedAt.Equal(now) {
		t.Errorf("expected updated at %s, got %s", now, acc.UpdatedAt)
	}
}

func TestAccount_Credit(t *testing.T) {
	acc := &Account{Balance: 100}
	acc.Credit(30, time.Now())

	if acc.Balance != 130 {
		t.Errorf("expected balance 130, got %d", acc.Balance)
	}
	if acc.Version != 1 {
		t.Errorf("expected version 1, got %d", acc.Version)
	}
}
