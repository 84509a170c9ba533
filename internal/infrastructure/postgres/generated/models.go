package generated

import (
	"time"
)

type Account struct {
	ID                  int64     `json:"id"`
	Balance             int64     `json:"balance"`
	PerDayTransferLimit int64     `json:"per_day_transfer_limit"`
	PerTransactionLimit int64     `json:"per_transaction_limit"`
	Version             int64     `json:"version"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type TransferHistory struct {
	ID           string    `json:"id"`
	TransferID   string    `json:"transfer_id"`
	AccountID    int64     `json:"account_id"`
	Kind         string    `json:"kind"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}
