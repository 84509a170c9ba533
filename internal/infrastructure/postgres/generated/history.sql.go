package generated

import (
	"context"
	"time"
)

const createHistoryEntry = `-- name: CreateHistoryEntry :exec
INSERT INTO transfer_history (id, transfer_id, account_id, kind, amount, balance_after, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type CreateHistoryEntryParams struct {
	ID           string    `json:"id"`
	TransferID   string    `json:"transfer_id"`
	AccountID    int64     `json:"account_id"`
	Kind         string    `json:"kind"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

func (q *Queries) CreateHistoryEntry(ctx context.Context, arg CreateHistoryEntryParams) error {
	_, err := q.db.Exec(ctx, createHistoryEntry,
		arg.ID,
		arg.TransferID,
		arg.AccountID,
		arg.Kind,
		arg.Amount,
		arg.BalanceAfter,
		arg.CreatedAt,
	)
	return err
}

const listHistoryByAccount = `-- name: ListHistoryByAccount :many
SELECT id, transfer_id, account_id, kind, amount, balance_after, created_at FROM transfer_history
WHERE account_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

type ListHistoryByAccountParams struct {
	AccountID int64 `json:"account_id"`
	Limit     int32 `json:"limit"`
	Offset    int32 `json:"offset"`
}

func (q *Queries) ListHistoryByAccount(ctx context.Context, arg ListHistoryByAccountParams) ([]TransferHistory, error) {
	rows, err := q.db.Query(ctx, listHistoryByAccount, arg.AccountID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransferHistory
	for rows.Next() {
		var i TransferHistory
		if err := rows.Scan(
			&i.ID,
			&i.TransferID,
			&i.AccountID,
			&i.Kind,
			&i.Amount,
			&i.BalanceAfter,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumWithdrawnBetween = `-- name: SumWithdrawnBetween :one
SELECT COALESCE(SUM(amount), 0)::bigint AS total FROM transfer_history
WHERE account_id = $1
  AND kind = 'WITHDRAW'
  AND created_at >= $2
  AND created_at < $3
`

type SumWithdrawnBetweenParams struct {
	AccountID int64     `json:"account_id"`
	DayStart  time.Time `json:"day_start"`
	DayEnd    time.Time `json:"day_end"`
}

func (q *Queries) SumWithdrawnBetween(ctx context.Context, arg SumWithdrawnBetweenParams) (int64, error) {
	row := q.db.QueryRow(ctx, sumWithdrawnBetween, arg.AccountID, arg.DayStart, arg.DayEnd)
	var total int64
	err := row.Scan(&total)
	return total, err
}
