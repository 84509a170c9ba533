package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/gotransfer/internal/domain"
	"github.com/iho/gotransfer/internal/infrastructure/config"
	"github.com/iho/gotransfer/internal/infrastructure/logger"
	"github.com/iho/gotransfer/internal/usecase"
)

type app struct {
	open        backendOpener
	cfg         *config.Config
	logger      zerolog.Logger
	backend     *backend
	timeout     time.Duration
	pushgateway string
}

func newApp(open backendOpener) *app {
	return &app{open: open}
}

// Close releases the backend opened by the last command. Cobra skips post-run
// hooks when a command fails, so callers close after Execute returns.
func (a *app) Close() {
	if a.backend != nil {
		a.backend.Close()
		a.backend = nil
	}
}

func (a *app) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "transferctl",
		Short:         "Operate the funds-transfer core",
		Long:          `Runs transfers, inspects account history and manages the database schema.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsBackend(cmd) {
				return nil
			}
			return a.connect(cmd)
		},
	}

	rootCmd.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "Overall command timeout")
	rootCmd.PersistentFlags().StringVar(&a.pushgateway, "pushgateway", "", "Prometheus Pushgateway URL for transfer metrics")

	rootCmd.AddCommand(
		a.newTransferCmd(),
		a.newHistoryCmd(),
		a.newAccountCmd(),
		a.newMigrateCmd(),
	)

	return rootCmd
}

func skipsBackend(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "help" || c.Name() == "completion" {
			return true
		}
	}
	return false
}

func (a *app) connect(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg
	a.logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cmd.ErrOrStderr()})

	ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
	defer cancel()

	b, err := a.open(ctx, cfg, a.logger)
	if err != nil {
		return err
	}
	a.backend = b

	return nil
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

func (a *app) newTransferCmd() *cobra.Command {
	var (
		from, to       int64
		amount         string
		idempotencyKey string
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move funds between two accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			minor, err := domain.ParseAmount(amount, a.cfg.AmountExponent)
			if err != nil {
				return err
			}

			ctx, cancel := a.context(cmd)
			defer cancel()

			result, err := a.backend.transfers.Transfer(ctx, domain.TransferRequest{
				FromAccountID:  from,
				ToAccountID:    to,
				Amount:         minor,
				IdempotencyKey: idempotencyKey,
			})
			a.pushMetrics()

			if err != nil {
				if kind := domain.KindOf(err); kind != "" {
					return fmt.Errorf("transfer rejected (%s): %w", kind, err)
				}
				return err
			}

			status := "completed"
			if result.Replayed {
				status = "replayed"
			}

			fmt.Fprintf(cmd.OutOrStdout(), "transfer %s %s: %s from account %d to account %d\n",
				result.Transfer.ID, status, domain.FormatAmount(minor, a.cfg.AmountExponent), from, to)

			return nil
		},
	}

	cmd.Flags().Int64Var(&from, "from", 0, "Source account ID")
	cmd.Flags().Int64Var(&to, "to", 0, "Destination account ID")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in major units, e.g. 12.50")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Replay-safe request key")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func (a *app) newHistoryCmd() *cobra.Command {
	var (
		accountID     int64
		limit, offset int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the transfer history of an account, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			entries, err := a.backend.history.ListHistory(ctx, usecase.ListHistoryInput{
				AccountID: accountID,
				Limit:     limit,
				Offset:    offset,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tKIND\tAMOUNT\tBALANCE\tTRANSFER")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt.Format(time.RFC3339),
					e.Kind,
					domain.FormatAmount(e.Amount, a.cfg.AmountExponent),
					domain.FormatAmount(e.BalanceAfter, a.cfg.AmountExponent),
					e.TransferID,
				)
			}

			return w.Flush()
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "Account ID")
	cmd.Flags().IntVar(&limit, "limit", usecase.DefaultHistoryLimit, "Maximum number of entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of entries to skip")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func (a *app) newAccountCmd() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var (
		id                        int64
		balance, perDay, perTrans string
	)

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Provision an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := usecase.CreateAccountInput{ID: id}

			for _, f := range []struct {
				value string
				dst   *int64
			}{
				{balance, &input.Balance},
				{perDay, &input.PerDayTransferLimit},
				{perTrans, &input.PerTransactionLimit},
			} {
				v, err := parseNonNegative(f.value, a.cfg.AmountExponent)
				if err != nil {
					return err
				}
				*f.dst = v
			}

			ctx, cancel := a.context(cmd)
			defer cancel()

			account, err := a.backend.accounts.CreateAccount(ctx, input)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "account %d created\n", account.ID)
			return nil
		},
	}

	createCmd.Flags().Int64Var(&id, "id", 0, "Account ID (assigned when omitted)")
	createCmd.Flags().StringVar(&balance, "balance", "0", "Opening balance in major units")
	createCmd.Flags().StringVar(&perDay, "per-day-limit", "0", "Daily withdrawal limit in major units")
	createCmd.Flags().StringVar(&perTrans, "per-transaction-limit", "0", "Single withdrawal limit in major units")

	var showID int64

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show an account with today's remaining withdrawal allowance",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			summary, err := a.backend.history.GetAccountSummary(ctx, showID)
			if err != nil {
				return err
			}

			exp := a.cfg.AmountExponent
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ID\t%d\n", summary.Account.ID)
			fmt.Fprintf(w, "Balance\t%s\n", domain.FormatAmount(summary.Account.Balance, exp))
			fmt.Fprintf(w, "Per-day limit\t%s\n", domain.FormatAmount(summary.Account.PerDayTransferLimit, exp))
			fmt.Fprintf(w, "Per-transaction limit\t%s\n", domain.FormatAmount(summary.Account.PerTransactionLimit, exp))
			fmt.Fprintf(w, "Withdrawn today\t%s\n", domain.FormatAmount(summary.WithdrawnToday, exp))
			fmt.Fprintf(w, "Remaining today\t%s\n", domain.FormatAmount(summary.RemainingToday, exp))

			return w.Flush()
		},
	}

	showCmd.Flags().Int64Var(&showID, "account", 0, "Account ID")
	_ = showCmd.MarkFlagRequired("account")

	accountCmd.AddCommand(createCmd, showCmd)

	return accountCmd
}

func (a *app) newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.backend.requireMigrator()
			if err != nil {
				return err
			}
			return m.Up()
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.backend.requireMigrator()
			if err != nil {
				return err
			}
			return m.Down()
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.backend.requireMigrator()
			if err != nil {
				return err
			}

			version, dirty, err := m.Version()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", version, dirty)
			return nil
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd, versionCmd)

	return migrateCmd
}

func (a *app) pushMetrics() {
	if a.pushgateway == "" || a.backend.gatherer == nil {
		return
	}

	if err := push.New(a.pushgateway, "transferctl").Gatherer(a.backend.gatherer).Push(); err != nil {
		a.logger.Warn().Err(err).Str("pushgateway", a.pushgateway).Msg("failed to push metrics")
	}
}

// parseNonNegative is domain.ParseAmount that also accepts zero.
func parseNonNegative(s string, exponent int32) (int64, error) {
	if d, err := decimal.NewFromString(s); err == nil && d.IsZero() {
		return 0, nil
	}

	return domain.ParseAmount(s, exponent)
}
