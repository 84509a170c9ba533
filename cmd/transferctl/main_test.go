package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/gotransfer/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/gotransfer/internal/adapter/repository/postgres"
	"github.com/iho/gotransfer/internal/domain"
	"github.com/iho/gotransfer/internal/infrastructure/clock"
	"github.com/iho/gotransfer/internal/infrastructure/config"
	"github.com/iho/gotransfer/internal/infrastructure/metrics"
	"github.com/iho/gotransfer/internal/usecase"
)

var testNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

type fakeMigrator struct {
	ups, downs int
}

func (m *fakeMigrator) Up() error {
	m.ups++
	return nil
}

func (m *fakeMigrator) Down() error {
	m.downs++
	return nil
}

func (m *fakeMigrator) Version() (uint, bool, error) {
	return uint(m.ups - m.downs), false, nil
}

func memoryOpener(t *testing.T, migrator *fakeMigrator, accounts ...domain.Account) backendOpener {
	t.Helper()

	store := memory.NewStore()
	accountRepo := memory.NewAccountRepository(store)
	historyRepo := memory.NewHistoryRepository(store)
	for i := range accounts {
		if err := accountRepo.Create(context.Background(), &accounts[i]); err != nil {
			t.Fatalf("failed to seed account: %v", err)
		}
	}

	return func(_ context.Context, _ *config.Config, logger zerolog.Logger) (*backend, error) {
		clk := clock.NewFixed(testNow)
		registry := prometheus.NewRegistry()
		validator := usecase.NewTransferValidator(historyRepo, clk)

		transfers := usecase.NewTransferUseCase(memory.NewTxManager(store), accountRepo, historyRepo, validator,
			postgresRepo.NewULIDGenerator(clk), clk,
			usecase.WithMetrics(metrics.New(registry)),
			usecase.WithLogger(logger),
		)

		b := &backend{
			accounts:  usecase.NewAccountUseCase(accountRepo, clk),
			transfers: transfers,
			history:   usecase.NewHistoryUseCase(accountRepo, historyRepo, clk),
			gatherer:  registry,
		}
		if migrator != nil {
			b.migrator = migrator
		}
		return b, nil
	}
}

func run(t *testing.T, open backendOpener, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AMOUNT_EXPONENT", "2")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	a := newApp(open)
	defer a.Close()

	cmd := a.newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestTransferCommand(t *testing.T) {
	open := memoryOpener(t, nil,
		domain.Account{ID: 1, Balance: 100000, PerDayTransferLimit: 1000000, PerTransactionLimit: 100000},
		domain.Account{ID: 2},
	)

	out, err := run(t, open, "transfer", "--from", "1", "--to", "2", "--amount", "12.50")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "completed: 12.50 from account 1 to account 2") {
		t.Fatalf("unexpected output: %q", out)
	}

	out, err = run(t, open, "account", "show", "--account", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "987.50") || !strings.Contains(out, "Withdrawn today") {
		t.Fatalf("unexpected summary: %q", out)
	}

	out, err = run(t, open, "history", "--account", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "DEPOSIT") || !strings.Contains(out, "12.50") {
		t.Fatalf("unexpected history: %q", out)
	}
}

func TestTransferCommandRejection(t *testing.T) {
	open := memoryOpener(t, nil,
		domain.Account{ID: 1, Balance: 1000, PerDayTransferLimit: 100000, PerTransactionLimit: 500},
		domain.Account{ID: 2},
	)

	_, err := run(t, open, "transfer", "--from", "1", "--to", "2", "--amount", "6.00")
	if !errors.Is(err, domain.ErrExceedsPerTransactionLimit) {
		t.Fatalf("expected per-transaction rejection, got %v", err)
	}
	if !strings.Contains(err.Error(), string(domain.KindExceedsPerTransactionLimit)) {
		t.Fatalf("expected kind in error message, got %q", err.Error())
	}
}

func TestBackendClosedAfterFailedCommand(t *testing.T) {
	inner := memoryOpener(t, nil, domain.Account{ID: 1}, domain.Account{ID: 2})

	closed := 0
	open := func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*backend, error) {
		b, err := inner(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		b.close = func() { closed++ }
		return b, nil
	}

	if _, err := run(t, open, "transfer", "--from", "1", "--to", "2", "--amount", "5"); err == nil {
		t.Fatalf("expected the transfer to be rejected")
	}
	if closed != 1 {
		t.Fatalf("expected backend to be closed once, got %d", closed)
	}
}

func TestTransferCommandInvalidAmount(t *testing.T) {
	open := memoryOpener(t, nil)

	for _, amount := range []string{"abc", "0", "1.005", "-3"} {
		if _, err := run(t, open, "transfer", "--from", "1", "--to", "2", "--amount", amount); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("amount %q: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestAccountCreateCommand(t *testing.T) {
	open := memoryOpener(t, nil)

	out, err := run(t, open, "account", "create", "--balance", "10", "--per-day-limit", "100.00", "--per-transaction-limit", "0")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "account 1 created") {
		t.Fatalf("unexpected output: %q", out)
	}

	out, err = run(t, open, "account", "show", "--account", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "10.00") || !strings.Contains(out, "100.00") {
		t.Fatalf("unexpected summary: %q", out)
	}
}

func TestMigrateCommands(t *testing.T) {
	m := &fakeMigrator{}
	open := memoryOpener(t, m)

	if _, err := run(t, open, "migrate", "up"); err != nil {
		t.Fatalf("migrate up failed: %v", err)
	}
	if _, err := run(t, open, "migrate", "up"); err != nil {
		t.Fatalf("migrate up failed: %v", err)
	}
	if _, err := run(t, open, "migrate", "down"); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}

	out, err := run(t, open, "migrate", "version")
	if err != nil {
		t.Fatalf("migrate version failed: %v", err)
	}
	if !strings.Contains(out, "version 1") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestMigrateWithoutMigrator(t *testing.T) {
	if _, err := run(t, memoryOpener(t, nil), "migrate", "up"); err == nil {
		t.Fatalf("expected error when backend has no migrator")
	}
}

func TestParseNonNegative(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{"0.00", 0, false},
		{"", 0, true},
		{"1.5", 150, false},
		{"-1", 0, true},
	}

	for _, tt := range tests {
		got, err := parseNonNegative(tt.input, 2)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseNonNegative(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("parseNonNegative(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
