package domain

import "errors"

// ErrorKind identifies why a transfer was rejected.
type ErrorKind string

const (
	KindAccountNotFound            ErrorKind = "ACCOUNT_NOT_FOUND"
	KindInsufficientBalance        ErrorKind = "INSUFFICIENT_BALANCE"
	KindExceedsPerTransactionLimit ErrorKind = "EXCEEDS_PER_TRANSACTION_LIMIT"
	KindExceedsPerDayLimit         ErrorKind = "EXCEEDS_PER_DAY_LIMIT"

	// Request contract violations
	KindInvalidAmount    ErrorKind = "INVALID_AMOUNT"
	KindInvalidAccountID ErrorKind = "INVALID_ACCOUNT_ID"
	KindSameAccount      ErrorKind = "SAME_ACCOUNT"

	KindTransferInProgress     ErrorKind = "TRANSFER_IN_PROGRESS"
	KindIdempotencyKeyMismatch ErrorKind = "IDEMPOTENCY_KEY_MISMATCH"
)

// TransferError is a definitive rejection of a transfer request.
// Two TransferErrors match under errors.Is when their kinds are equal.
type TransferError struct {
	Kind    ErrorKind
	Message string
}

func (e *TransferError) Error() string {
	return e.Message
}

// Is reports whether target is a TransferError of the same kind.
func (e *TransferError) Is(target error) bool {
	var t *TransferError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newTransferError(kind ErrorKind, msg string) *TransferError {
	return &TransferError{Kind: kind, Message: msg}
}

var (
	// Account errors
	ErrAccountNotFound = newTransferError(KindAccountNotFound, "account not found")

	// Validation rejections
	ErrInsufficientBalance        = newTransferError(KindInsufficientBalance, "insufficient balance for transfer amount")
	ErrExceedsPerTransactionLimit = newTransferError(KindExceedsPerTransactionLimit, "cannot exceed withdrawal amount at once")
	ErrExceedsPerDayLimit         = newTransferError(KindExceedsPerDayLimit, "cannot exceed withdrawal amount per day")

	// Request errors
	ErrInvalidAmount    = newTransferError(KindInvalidAmount, "amount must be positive")
	ErrInvalidAccountID = newTransferError(KindInvalidAccountID, "account id must be positive")
	ErrSameAccount      = newTransferError(KindSameAccount, "cannot transfer to same account")

	ErrTransferInProgress     = newTransferError(KindTransferInProgress, "transfer with this idempotency key is in progress")
	ErrIdempotencyKeyMismatch = newTransferError(KindIdempotencyKeyMismatch, "idempotency key was used for a different transfer")
)

// Provisioning errors. These are not transfer rejections.
var (
	ErrAccountExists  = errors.New("account already exists")
	ErrInvalidAccount = errors.New("invalid account")
)

// KindOf returns the rejection kind carried by err, or "" when err is not a rejection.
func KindOf(err error) ErrorKind {
	var te *TransferError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// IsRejection reports whether err is a business rejection rather than an infrastructure failure.
func IsRejection(err error) bool {
	return KindOf(err) != ""
}

// RejectionFromKind maps a stored kind back to its sentinel error.
func RejectionFromKind(kind ErrorKind) (*TransferError, bool) {
	for _, e := range []*TransferError{
		ErrAccountNotFound,
		ErrInsufficientBalance,
		ErrExceedsPerTransactionLimit,
		ErrExceedsPerDayLimit,
		ErrInvalidAmount,
		ErrInvalidAccountID,
		ErrSameAccount,
		ErrTransferInProgress,
		ErrIdempotencyKeyMismatch,
	} {
		if e.Kind == kind {
			return e, true
		}
	}
	return nil, false
}
