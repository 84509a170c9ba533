// Package memory provides process-local implementations of the storage ports.
// Accounts are locked individually for the lifetime of a transaction and writes
// are staged on the transaction until Commit, so a failed transfer leaves no trace.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/iho/gotransfer/internal/domain"
	"github.com/iho/gotransfer/internal/usecase"
)

var (
	ErrTxClosed  = errors.New("transaction already closed")
	ErrNotLocked = errors.New("account is not locked by this transaction")
	ErrForeignTx = errors.New("transaction does not belong to the memory store")
)

// Store holds committed accounts and history.
type Store struct {
	mu       sync.RWMutex
	nextID   int64
	accounts map[int64]domain.Account
	history  []domain.HistoryEntry
	locks    map[int64]chan struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[int64]domain.Account),
		locks:    make(map[int64]chan struct{}),
	}
}

// accountLock returns the lock of an existing account.
func (s *Store) accountLock(id int64) (chan struct{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return nil, false
	}

	l, ok := s.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[id] = l
	}

	return l, true
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Tx{
		store:    m.store,
		held:     make(map[int64]chan struct{}),
		balances: make(map[int64]domain.Account),
	}, nil
}

// Tx is a unit of work over the Store. It must be used by a single goroutine.
type Tx struct {
	store    *Store
	held     map[int64]chan struct{}
	balances map[int64]domain.Account
	entries  []domain.HistoryEntry
	closed   bool
}

// lock acquires the locks of ids in ascending order, skipping ids already held
// and ids of unknown accounts.
func (t *Tx) lock(ctx context.Context, ids []int64) error {
	if t.closed {
		return ErrTxClosed
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	for _, id := range sorted {
		if _, ok := t.held[id]; ok {
			continue
		}

		l, ok := t.store.accountLock(id)
		if !ok {
			continue
		}

		select {
		case l <- struct{}{}:
			t.held[id] = l
		case <-ctx.Done():
			return fmt.Errorf("waiting for account %d: %w", id, ctx.Err())
		}
	}

	return nil
}

// account returns the view of an account inside this transaction.
func (t *Tx) account(id int64) (domain.Account, bool) {
	if acc, ok := t.balances[id]; ok {
		return acc, true
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	acc, ok := t.store.accounts[id]
	return acc, ok
}

func (t *Tx) release() {
	for id, l := range t.held {
		<-l
		delete(t.held, id)
	}
	t.closed = true
}

// Commit applies staged balances and history entries, then releases the locks.
func (t *Tx) Commit(ctx context.Context) error {
	if t.closed {
		return ErrTxClosed
	}

	t.store.mu.Lock()
	for id, acc := range t.balances {
		t.store.accounts[id] = acc
	}
	t.store.history = append(t.store.history, t.entries...)
	t.store.mu.Unlock()

	t.release()

	return nil
}

// Rollback discards staged writes and releases the locks. It is a no-op on a
// closed transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.closed {
		return nil
	}

	t.balances = nil
	t.entries = nil
	t.release()

	return nil
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	memTx, ok := tx.(*Tx)
	if !ok || memTx == nil {
		return nil, ErrForeignTx
	}
	if memTx.closed {
		return nil, ErrTxClosed
	}
	return memTx, nil
}
