package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/iho/gotransfer/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/gotransfer/internal/adapter/repository/postgres"
	"github.com/iho/gotransfer/internal/domain"
	"github.com/iho/gotransfer/internal/infrastructure/postgres"
	"github.com/iho/gotransfer/internal/infrastructure/postgres/generated"
	"github.com/iho/gotransfer/internal/usecase"
)

// Stack is a transfer use case wired to one storage backend.
type Stack struct {
	Accounts  usecase.AccountRepository
	History   usecase.HistoryRepository
	TxManager usecase.TransactionManager
	Transfers *usecase.TransferUseCase
}

func newStack(accounts usecase.AccountRepository, history usecase.HistoryRepository, txManager usecase.TransactionManager, clk usecase.Clock, opts ...usecase.TransferOption) *Stack {
	validator := usecase.NewTransferValidator(history, clk)

	return &Stack{
		Accounts:  accounts,
		History:   history,
		TxManager: txManager,
		Transfers: usecase.NewTransferUseCase(txManager, accounts, history, validator, postgresRepo.NewULIDGenerator(clk), clk, opts...),
	}
}

// NewMemoryStack wires the use case to a fresh in-memory store.
func NewMemoryStack(clk usecase.Clock, opts ...usecase.TransferOption) *Stack {
	store := memory.NewStore()

	return newStack(
		memory.NewAccountRepository(store),
		memory.NewHistoryRepository(store),
		memory.NewTxManager(store),
		clk,
		opts...,
	)
}

// CreateAccount provisions an account or fails the test.
func (s *Stack) CreateAccount(ctx context.Context, t *testing.T, balance, perDayLimit, perTransactionLimit int64) *domain.Account {
	t.Helper()

	account := &domain.Account{
		Balance:             balance,
		PerDayTransferLimit: perDayLimit,
		PerTransactionLimit: perTransactionLimit,
	}
	if err := s.Accounts.Create(ctx, account); err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}

	return account
}

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// NewTestDB connects to TEST_DATABASE_URL and applies the schema.
// The test is skipped when the variable is unset.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	if err := postgres.NewMigrator(dbURL, zerolog.Nop()).Up(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{DatabaseURL: dbURL, MaxConns: 20})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `TRUNCATE TABLE transfer_history, accounts RESTART IDENTITY CASCADE`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// Stack wires the use case to the postgres adapters with the default retrier.
func (db *TestDB) Stack(clk usecase.Clock, opts ...usecase.TransferOption) *Stack {
	opts = append([]usecase.TransferOption{usecase.WithRetrier(postgresRepo.NewRetrier(postgresRepo.WithMaxRetries(10)))}, opts...)

	return newStack(
		postgresRepo.NewAccountRepository(db.Pool),
		postgresRepo.NewHistoryRepository(db.Pool),
		postgresRepo.NewTxManager(db.Pool),
		clk,
		opts...,
	)
}
