package domain

import "time"

// Account represents a funded account that can send and receive transfers.
// Amounts are integer minor units.
type Account struct {
	ID                  int64
	Balance             int64
	PerDayTransferLimit int64
	PerTransactionLimit int64
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CanDebit reports whether amount can leave the account without overdrawing it.
func (a *Account) CanDebit(amount int64) bool {
	return amount <= a.Balance
}

// Debit decreases the balance by amount. Callers validate first.
func (a *Account) Debit(amount int64, at time.Time) {
	a.Balance -= amount
	a.Version++
	a.UpdatedAt = at
}

// Credit increases the balance by amount.
func (a *Account) Credit(amount int64, at time.Time) {
	a.Balance += amount
	a.Version++
	a.UpdatedAt = at
}
