package domain

import (
	"fmt"
	"time"
)

// HistoryKind tells which side of a transfer a history entry records.
type HistoryKind string

const (
	HistoryKindWithdraw HistoryKind = "WITHDRAW"
	HistoryKindDeposit  HistoryKind = "DEPOSIT"
)

// IsValid checks if the kind is known.
func (k HistoryKind) IsValid() bool {
	return k == HistoryKindWithdraw || k == HistoryKindDeposit
}

// ParseHistoryKind parses a stored kind.
func ParseHistoryKind(s string) (HistoryKind, error) {
	k := HistoryKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("unknown history kind %q", s)
	}
	return k, nil
}

// HistoryEntry is an immutable record of one leg of a transfer.
// Amount is always positive; Kind carries the direction.
type HistoryEntry struct {
	CreatedAt    time.Time
	ID           string
	TransferID   string
	Kind         HistoryKind
	AccountID    int64
	Amount       int64
	BalanceAfter int64
}

// DayBounds returns the calendar day containing t, in t's location, as [start, end).
func DayBounds(t time.Time) (start, end time.Time) {
	y, m, d := t.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 0, 1)
	return start, end
}
