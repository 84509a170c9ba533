package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gotransfer/internal/domain"
)

// TransferUseCase moves funds between two accounts.
type TransferUseCase struct {
	txManager      TransactionManager
	accountRepo    AccountRepository
	historyRepo    HistoryRepository
	validator      *TransferValidator
	idGen          IDGenerator
	clock          Clock
	retrier        Retrier
	idempotency    IdempotencyStore
	idempotencyTTL time.Duration
	metrics        TransferMetrics
	logger         zerolog.Logger
}

// TransferOption configures optional collaborators of a TransferUseCase.
type TransferOption func(*TransferUseCase)

// WithRetrier retries the whole transaction on transient storage conflicts.
func WithRetrier(r Retrier) TransferOption {
	return func(uc *TransferUseCase) {
		uc.retrier = r
	}
}

// WithIdempotencyStore enables replay of keyed requests.
func WithIdempotencyStore(store IdempotencyStore, ttl time.Duration) TransferOption {
	return func(uc *TransferUseCase) {
		uc.idempotency = store
		uc.idempotencyTTL = ttl
	}
}

// WithMetrics records transfer outcomes.
func WithMetrics(m TransferMetrics) TransferOption {
	return func(uc *TransferUseCase) {
		uc.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) TransferOption {
	return func(uc *TransferUseCase) {
		uc.logger = logger
	}
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	historyRepo HistoryRepository,
	validator *TransferValidator,
	idGen IDGenerator,
	clock Clock,
	opts ...TransferOption,
) *TransferUseCase {
	uc := &TransferUseCase{
		txManager:      txManager,
		accountRepo:    accountRepo,
		historyRepo:    historyRepo,
		validator:      validator,
		idGen:          idGen,
		clock:          clock,
		retrier:        onceRetrier{},
		idempotencyTTL: IdempotencyKeyTTL,
		logger:         zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Transfer moves req.Amount from req.FromAccountID to req.ToAccountID.
// Rejections are returned as *domain.TransferError; nothing is written when
// any check fails.
func (uc *TransferUseCase) Transfer(ctx context.Context, req domain.TransferRequest) (*domain.TransferResult, error) {
	start := time.Now()

	logger := uc.logger.With().
		Int64("from_account_id", req.FromAccountID).
		Int64("to_account_id", req.ToAccountID).
		Int64("amount", req.Amount).
		Logger()

	result, err := uc.transfer(ctx, req)

	switch {
	case err == nil && result.Replayed:
		uc.observe(ResultReplayed, "", req.Amount, start)
		logger.Info().Str("transfer_id", result.Transfer.ID).Msg("transfer replayed")
	case err == nil:
		uc.observe(ResultSuccess, "", req.Amount, start)
		logger.Info().Str("transfer_id", result.Transfer.ID).Msg("transfer completed")
	case domain.IsRejection(err):
		kind := domain.KindOf(err)
		uc.observe(ResultRejected, kind, req.Amount, start)
		logger.Info().Str("reason", string(kind)).Msg("transfer rejected")
	default:
		uc.observe(ResultFailed, "", req.Amount, start)
		logger.Error().Err(err).Msg("transfer failed")
	}

	return result, err
}

func (uc *TransferUseCase) transfer(ctx context.Context, req domain.TransferRequest) (*domain.TransferResult, error) {
	// 0. Validate the request before touching any store
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.IdempotencyKey == "" || uc.idempotency == nil {
		return uc.executeWithRetry(ctx, req)
	}

	// 1. Reserve the idempotency key
	reserved, stored, err := uc.idempotency.Reserve(ctx, req.IdempotencyKey, outcomeValue(req, outcomePending), uc.idempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}

	if !reserved {
		return replayOutcome(req, stored)
	}

	result, err := uc.executeWithRetry(ctx, req)
	uc.recordOutcome(ctx, req, result, err)

	return result, err
}

func (uc *TransferUseCase) executeWithRetry(ctx context.Context, req domain.TransferRequest) (*domain.TransferResult, error) {
	var (
		result   *domain.TransferResult
		attempts int
	)

	err := uc.retrier.Retry(ctx, func() error {
		attempts++
		if attempts > 1 && uc.metrics != nil {
			uc.metrics.IncRetries()
		}

		var err error
		result, err = uc.execute(ctx, req)

		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (uc *TransferUseCase) execute(ctx context.Context, req domain.TransferRequest) (*domain.TransferResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	// 1. Sort account IDs (DEADLOCK PREVENTION)
	accountIDs := []int64{req.FromAccountID, req.ToAccountID}
	slices.Sort(accountIDs)

	// 2. Begin transaction
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// 3. Lock both accounts in ascending order
	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}

	accountMap := uc.buildAccountMap(accounts)

	fromAccount := accountMap[req.FromAccountID]
	if fromAccount == nil {
		return nil, domain.ErrAccountNotFound
	}

	toAccount := accountMap[req.ToAccountID]
	if toAccount == nil {
		return nil, domain.ErrAccountNotFound
	}

	// 4. Validate the source while its lock is held
	if err := uc.validator.Validate(ctx, tx, fromAccount, req.Amount); err != nil {
		return nil, err
	}

	// 5. Move the funds
	now := uc.clock.Now()

	fromAccount.Debit(req.Amount, now)
	toAccount.Credit(req.Amount, now)

	if err := uc.accountRepo.UpdateBalance(ctx, tx, fromAccount); err != nil {
		return nil, fmt.Errorf("failed to update source balance: %w", err)
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, toAccount); err != nil {
		return nil, fmt.Errorf("failed to update destination balance: %w", err)
	}

	// 6. Record both legs
	transfer := domain.Transfer{
		ID:            uc.idGen.Generate(),
		FromAccountID: fromAccount.ID,
		ToAccountID:   toAccount.ID,
		Amount:        req.Amount,
		CreatedAt:     now,
	}

	withdrawal := uc.newEntry(transfer, fromAccount, domain.HistoryKindWithdraw)
	if err := uc.historyRepo.Append(ctx, tx, &withdrawal); err != nil {
		return nil, fmt.Errorf("failed to append withdrawal: %w", err)
	}

	deposit := uc.newEntry(transfer, toAccount, domain.HistoryKindDeposit)
	if err := uc.historyRepo.Append(ctx, tx, &deposit); err != nil {
		return nil, fmt.Errorf("failed to append deposit: %w", err)
	}

	// 7. Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	return &domain.TransferResult{
		Transfer:   transfer,
		Withdrawal: withdrawal,
		Deposit:    deposit,
	}, nil
}

func (uc *TransferUseCase) newEntry(transfer domain.Transfer, account *domain.Account, kind domain.HistoryKind) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:           uc.idGen.Generate(),
		TransferID:   transfer.ID,
		AccountID:    account.ID,
		Amount:       transfer.Amount,
		Kind:         kind,
		BalanceAfter: account.Balance,
		CreatedAt:    transfer.CreatedAt,
	}
}

func (uc *TransferUseCase) buildAccountMap(accounts []*domain.Account) map[int64]*domain.Account {
	m := make(map[int64]*domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.ID] = a
	}

	return m
}

func (uc *TransferUseCase) observe(result string, kind domain.ErrorKind, amount int64, start time.Time) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.ObserveTransfer(result, kind, amount, time.Since(start))
}

// Stored idempotency values have the form "<from>:<to>:<amount>|<outcome>",
// so a key reused for another transfer is detected.
const (
	outcomePending   = "pending"
	outcomeCompleted = "completed:"
	outcomeRejected  = "rejected:"
)

func requestFingerprint(req domain.TransferRequest) string {
	return fmt.Sprintf("%d:%d:%d", req.FromAccountID, req.ToAccountID, req.Amount)
}

func outcomeValue(req domain.TransferRequest, outcome string) string {
	return requestFingerprint(req) + "|" + outcome
}

func (uc *TransferUseCase) recordOutcome(ctx context.Context, req domain.TransferRequest, result *domain.TransferResult, err error) {
	key := req.IdempotencyKey

	var storeErr error

	switch {
	case err == nil:
		storeErr = uc.idempotency.Complete(ctx, key, outcomeValue(req, outcomeCompleted+result.Transfer.ID), uc.idempotencyTTL)
	case domain.IsRejection(err):
		storeErr = uc.idempotency.Complete(ctx, key, outcomeValue(req, outcomeRejected+string(domain.KindOf(err))), uc.idempotencyTTL)
	default:
		// Infrastructure failures leave nothing behind, so the key may be retried.
		storeErr = uc.idempotency.Release(ctx, key)
	}

	if storeErr != nil {
		uc.logger.Error().Err(storeErr).Str("idempotency_key", key).Msg("failed to record idempotency outcome")
	}
}

func replayOutcome(req domain.TransferRequest, stored string) (*domain.TransferResult, error) {
	fingerprint, outcome, ok := strings.Cut(stored, "|")
	if !ok {
		return nil, errors.New("unrecognized idempotency value: " + stored)
	}

	if fingerprint != requestFingerprint(req) {
		return nil, domain.ErrIdempotencyKeyMismatch
	}

	switch {
	case outcome == outcomePending:
		return nil, domain.ErrTransferInProgress
	case strings.HasPrefix(outcome, outcomeCompleted):
		return &domain.TransferResult{
			Transfer: domain.Transfer{
				ID:            strings.TrimPrefix(outcome, outcomeCompleted),
				FromAccountID: req.FromAccountID,
				ToAccountID:   req.ToAccountID,
				Amount:        req.Amount,
			},
			Replayed: true,
		}, nil
	case strings.HasPrefix(outcome, outcomeRejected):
		kind := domain.ErrorKind(strings.TrimPrefix(outcome, outcomeRejected))
		if rejection, ok := domain.RejectionFromKind(kind); ok {
			return nil, rejection
		}
	}

	return nil, errors.New("unrecognized idempotency outcome: " + outcome)
}

// onceRetrier runs the operation a single time.
type onceRetrier struct{}

func (onceRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}
