package domain

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
)

var requestValidator = validator.New(validator.WithRequiredStructEnabled())

// TransferRequest asks to move Amount from one account to another.
type TransferRequest struct {
	FromAccountID  int64 `validate:"gt=0"`
	ToAccountID    int64 `validate:"gt=0,nefield=FromAccountID"`
	Amount         int64 `validate:"gt=0"`
	IdempotencyKey string
}

// Validate checks the caller contract. It does not touch any store.
func (r *TransferRequest) Validate() error {
	err := requestValidator.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	// Report the first violation, in field declaration order.
	fe := verrs[0]
	switch fe.Field() {
	case "Amount":
		return ErrInvalidAmount
	case "ToAccountID":
		if fe.Tag() == "nefield" {
			return ErrSameAccount
		}
		return ErrInvalidAccountID
	case "FromAccountID":
		return ErrInvalidAccountID
	}

	return err
}

// Transfer is a completed money movement between two accounts.
type Transfer struct {
	CreatedAt     time.Time
	ID            string
	FromAccountID int64
	ToAccountID   int64
	Amount        int64
}

// TransferResult is returned by a successful transfer.
type TransferResult struct {
	Transfer   Transfer
	Withdrawal HistoryEntry
	Deposit    HistoryEntry
	// Replayed is set when the result was served from the idempotency store.
	Replayed bool
}
