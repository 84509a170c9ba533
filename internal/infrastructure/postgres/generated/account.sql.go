package generated

import (
	"context"
	"time"
)

const createAccount = `-- name: CreateAccount :one
INSERT INTO accounts (id, balance, per_day_transfer_limit, per_transaction_limit, version, created_at, updated_at)
VALUES (COALESCE(NULLIF($1::bigint, 0), nextval('accounts_id_seq')), $2, $3, $4, $5, $6, $7)
RETURNING id, balance, per_day_transfer_limit, per_transaction_limit, version, created_at, updated_at
`

type CreateAccountParams struct {
	ID                  int64     `json:"id"`
	Balance             int64     `json:"balance"`
	PerDayTransferLimit int64     `json:"per_day_transfer_limit"`
	PerTransactionLimit int64     `json:"per_transaction_limit"`
	Version             int64     `json:"version"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	row := q.db.QueryRow(ctx, createAccount,
		arg.ID,
		arg.Balance,
		arg.PerDayTransferLimit,
		arg.PerTransactionLimit,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Balance,
		&i.PerDayTransferLimit,
		&i.PerTransactionLimit,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const syncAccountIDSequence = `-- name: SyncAccountIDSequence :exec
SELECT setval('accounts_id_seq', GREATEST(MAX(id), (SELECT last_value FROM accounts_id_seq))) FROM accounts
`

func (q *Queries) SyncAccountIDSequence(ctx context.Context) error {
	_, err := q.db.Exec(ctx, syncAccountIDSequence)
	return err
}

const getAccountByID = `-- name: GetAccountByID :one
SELECT id, balance, per_day_transfer_limit, per_transaction_limit, version, created_at, updated_at FROM accounts WHERE id = $1
`

func (q *Queries) GetAccountByID(ctx context.Context, id int64) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByID, id)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Balance,
		&i.PerDayTransferLimit,
		&i.PerTransactionLimit,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountsByIDsForUpdate = `-- name: GetAccountsByIDsForUpdate :many
SELECT id, balance, per_day_transfer_limit, per_transaction_limit, version, created_at, updated_at FROM accounts
WHERE id = ANY($1::bigint[])
ORDER BY id
FOR UPDATE
`

func (q *Queries) GetAccountsByIDsForUpdate(ctx context.Context, dollar_1 []int64) ([]Account, error) {
	rows, err := q.db.Query(ctx, getAccountsByIDsForUpdate, dollar_1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.Balance,
			&i.PerDayTransferLimit,
			&i.PerTransactionLimit,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const updateAccountBalance = `-- name: UpdateAccountBalance :execrows
UPDATE accounts SET balance = $2, version = $3, updated_at = $4 WHERE id = $1
`

type UpdateAccountBalanceParams struct {
	ID        int64     `json:"id"`
	Balance   int64     `json:"balance"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) UpdateAccountBalance(ctx context.Context, arg UpdateAccountBalanceParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateAccountBalance,
		arg.ID,
		arg.Balance,
		arg.Version,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
