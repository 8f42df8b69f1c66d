package repository

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"simple-bank/internal/domain"
	"simple-bank/internal/errors"
)

// MemoryAccountRepository is an in-memory domain.AccountRepository. It keeps
// the same contract as the Postgres repository: GetAccountForUpdate acquires
// an exclusive per-account lock held until the enclosing WithTransaction
// returns, and nothing a transaction writes is visible to other callers until
// it commits.
type MemoryAccountRepository struct {
	mu       sync.Mutex // guards accounts and locks tables
	accounts map[uuid.UUID]*domain.Account
	locks    map[uuid.UUID]*sync.Mutex
	logger   *slog.Logger
}

func NewMemoryAccountRepository(logger *slog.Logger) *MemoryAccountRepository {
	return &MemoryAccountRepository{
		accounts: make(map[uuid.UUID]*domain.Account),
		locks:    make(map[uuid.UUID]*sync.Mutex),
		logger:   logger,
	}
}

func (r *MemoryAccountRepository) CreateAccount(account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.ID]; exists {
		r.logger.Error("Account id collision on create", "account_id", account.ID)
		return errors.ErrDuplicateAccount
	}

	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	stored := *account
	r.accounts[account.ID] = &stored
	r.logger.Info("Account created", "account_id", account.ID, "name", account.Name)
	return nil
}

// GetAccount returns a copy of the current record, or (nil, nil) when absent.
func (r *MemoryAccountRepository) GetAccount(id uuid.UUID) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *account
	return &cp, nil
}

// GetAccountForUpdate is only meaningful inside WithTransaction; called
// outside one it degrades to a plain read.
func (r *MemoryAccountRepository) GetAccountForUpdate(id uuid.UUID) (*domain.Account, error) {
	return r.GetAccount(id)
}

// UpdateAccountBalance outside a transaction applies immediately. The ledger
// service always mutates through WithTransaction; this path exists so the
// type satisfies the full contract.
func (r *MemoryAccountRepository) UpdateAccountBalance(id uuid.UUID, newBalance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return errors.ErrAccountNotFound
	}
	account.Balance = newBalance
	account.UpdatedAt = time.Now()
	return nil
}

// lockFor returns the mutex for an account id, creating it on first use.
// Lock entries are never removed; accounts are never deleted.
func (r *MemoryAccountRepository) lockFor(id uuid.UUID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	return l
}

// WithTransaction gives fn a transaction view over the shared store. Reads
// taken with GetAccountForUpdate hold their account lock for the rest of the
// transaction; writes stay private to the view until commit, which publishes
// them under the store mutex as one unit. An error from fn discards the
// writes. Lock ordering is the caller's job, as with row locks.
func (r *MemoryAccountRepository) WithTransaction(fn func(repo domain.AccountRepository) error) error {
	tx := &memoryTx{
		store:    r,
		working:  make(map[uuid.UUID]*domain.Account),
		heldIDs:  nil,
		released: false,
	}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}

	tx.commit()
	return nil
}

// memoryTx is a transaction view over a MemoryAccountRepository. Not safe for
// concurrent use by multiple goroutines, matching *sql.Tx.
type memoryTx struct {
	store    *MemoryAccountRepository
	working  map[uuid.UUID]*domain.Account // private copies of locked rows
	heldIDs  []uuid.UUID
	released bool
}

func (tx *memoryTx) CreateAccount(account *domain.Account) error {
	return tx.store.CreateAccount(account)
}

func (tx *memoryTx) GetAccount(id uuid.UUID) (*domain.Account, error) {
	if cp, ok := tx.working[id]; ok {
		out := *cp
		return &out, nil
	}
	return tx.store.GetAccount(id)
}

func (tx *memoryTx) GetAccountForUpdate(id uuid.UUID) (*domain.Account, error) {
	if cp, ok := tx.working[id]; ok {
		// Lock already held by this transaction; re-locking would self-deadlock.
		out := *cp
		return &out, nil
	}

	tx.store.lockFor(id).Lock()
	tx.heldIDs = append(tx.heldIDs, id)

	current, err := tx.store.GetAccount(id)
	if err != nil || current == nil {
		return current, err
	}

	tx.working[id] = current
	cp := *current
	return &cp, nil
}

func (tx *memoryTx) UpdateAccountBalance(id uuid.UUID, newBalance decimal.Decimal) error {
	cp, ok := tx.working[id]
	if !ok {
		return errors.NewAppError(errors.InternalError, "account not locked for update")
	}
	cp.Balance = newBalance
	cp.UpdatedAt = time.Now()
	return nil
}

func (tx *memoryTx) WithTransaction(fn func(repo domain.AccountRepository) error) error {
	return errors.ErrCannotBeginTransaction
}

// commit publishes the working copies back into the shared map in one
// critical section, then releases the account locks.
func (tx *memoryTx) commit() {
	tx.store.mu.Lock()
	for id, cp := range tx.working {
		stored := *cp
		tx.store.accounts[id] = &stored
	}
	tx.store.mu.Unlock()
	tx.release()
}

func (tx *memoryTx) release() {
	if tx.released {
		return
	}
	tx.released = true
	for i := len(tx.heldIDs) - 1; i >= 0; i-- {
		tx.store.lockFor(tx.heldIDs[i]).Unlock()
	}
	tx.heldIDs = nil
}
