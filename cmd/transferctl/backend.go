package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	postgresRepo "github.com/iho/gotransfer/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gotransfer/internal/adapter/repository/redis"
	"github.com/iho/gotransfer/internal/infrastructure/clock"
	"github.com/iho/gotransfer/internal/infrastructure/config"
	"github.com/iho/gotransfer/internal/infrastructure/metrics"
	"github.com/iho/gotransfer/internal/infrastructure/postgres"
	"github.com/iho/gotransfer/internal/infrastructure/redis"
	"github.com/iho/gotransfer/internal/usecase"
)

type schemaMigrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
}

// backend is everything a command needs, wired to concrete adapters.
type backend struct {
	accounts  *usecase.AccountUseCase
	transfers *usecase.TransferUseCase
	history   *usecase.HistoryUseCase
	migrator  schemaMigrator
	gatherer  prometheus.Gatherer
	close     func()
}

type backendOpener func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*backend, error)

func openPostgresBackend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*backend, error) {
	clk, err := clock.NewSystem(cfg.TransferTimezone)
	if err != nil {
		return nil, err
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug().Msg("connected to postgres")

	closers := []func(){pool.Close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	registry := prometheus.NewRegistry()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	historyRepo := postgresRepo.NewHistoryRepository(pool)
	idGen := postgresRepo.NewULIDGenerator(clk)
	retrier := postgresRepo.NewRetrier(
		postgresRepo.WithMaxRetries(cfg.MaxRetries),
		postgresRepo.WithRetrierLogger(logger),
	)

	opts := []usecase.TransferOption{
		usecase.WithRetrier(retrier),
		usecase.WithMetrics(metrics.New(registry)),
		usecase.WithLogger(logger),
	}

	// Connect to Redis when idempotency keys are enabled
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			closeAll()
			return nil, err
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		logger.Debug().Msg("connected to redis")

		opts = append(opts, usecase.WithIdempotencyStore(redisRepo.NewIdempotencyStore(redisClient), cfg.IdempotencyTTL))
	}

	// Initialize use cases
	validator := usecase.NewTransferValidator(historyRepo, clk)

	return &backend{
		accounts:  usecase.NewAccountUseCase(accountRepo, clk),
		transfers: usecase.NewTransferUseCase(txManager, accountRepo, historyRepo, validator, idGen, clk, opts...),
		history:   usecase.NewHistoryUseCase(accountRepo, historyRepo, clk),
		migrator:  postgres.NewMigrator(cfg.DatabaseURL, logger),
		gatherer:  registry,
		close:     closeAll,
	}, nil
}

func (b *backend) Close() {
	if b.close != nil {
		b.close()
	}
}

func (b *backend) requireMigrator() (schemaMigrator, error) {
	if b.migrator == nil {
		return nil, fmt.Errorf("schema migrations are not supported by this backend")
	}
	return b.migrator, nil
}
