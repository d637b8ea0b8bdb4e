package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/finadem/core-banking/internal/domain"
	"github.com/shopspring/decimal"
)

// fakeAccountRepo keeps accounts in a map. The per-repo mutex makes the
// individual calls safe; atomicity across calls comes from fakeTxRunner
// holding its lock for the whole callback, mirroring how row locks keep
// a posting isolated in the real store.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]domain.Account

	failCreate error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]domain.Account)}
}

func (r *fakeAccountRepo) seed(account domain.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.IBAN] = account
}

func (r *fakeAccountRepo) balance(iban string) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[iban].Balance
}

func (r *fakeAccountRepo) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreate != nil {
		return domain.Account{}, r.failCreate
	}
	if _, ok := r.accounts[account.IBAN]; ok {
		return domain.Account{}, domain.ErrDuplicateAccount
	}

	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	r.accounts[account.IBAN] = account
	return account, nil
}

func (r *fakeAccountRepo) GetByIBAN(_ context.Context, iban string) (domain.Account, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[iban]
	return account, ok, nil
}

func (r *fakeAccountRepo) GetByIBANForUpdate(_ context.Context, _ *sql.Tx, iban string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[iban]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return account, nil
}

func (r *fakeAccountRepo) ApplyBalanceDelta(_ context.Context, _ *sql.Tx, iban string, delta decimal.Decimal) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[iban]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	next := account.Balance.Add(delta).Round(2)
	if next.IsNegative() {
		return domain.Account{}, domain.ErrNegativeBalance
	}

	account.Balance = next
	account.UpdatedAt = time.Now()
	r.accounts[iban] = account
	return account, nil
}

func (r *fakeAccountRepo) ExistsByCustomerID(_ context.Context, customerID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, account := range r.accounts {
		if account.CustomerID == customerID {
			return true, nil
		}
	}
	return false, nil
}

// fakeTransactionRepo is an in-memory append-only ledger.
type fakeTransactionRepo struct {
	mu      sync.Mutex
	entries []domain.Transaction
	nextID  int64

	failAppend error
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{}
}

func (r *fakeTransactionRepo) all() []domain.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Transaction(nil), r.entries...)
}

func (r *fakeTransactionRepo) Append(_ context.Context, _ *sql.Tx, transaction domain.Transaction) (domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failAppend != nil {
		return domain.Transaction{}, r.failAppend
	}

	r.nextID++
	transaction.ID = r.nextID
	if transaction.Timestamp.IsZero() {
		transaction.Timestamp = time.Now()
	}
	r.entries = append(r.entries, transaction)
	return transaction, nil
}

func (r *fakeTransactionRepo) RecentByAccount(_ context.Context, iban string, limit int) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []domain.Transaction
	for i := len(r.entries) - 1; i >= 0 && len(matched) < limit; i-- {
		if r.entries[i].CustomerAccount == iban {
			matched = append(matched, r.entries[i])
		}
	}
	if len(matched) == 0 {
		return nil, domain.ErrNoRecords
	}
	return matched, nil
}

func (r *fakeTransactionRepo) BetweenByAccount(_ context.Context, iban string, start, end time.Time) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []domain.Transaction
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if entry.CustomerAccount != iban {
			continue
		}
		if entry.Timestamp.Before(start) || entry.Timestamp.After(end) {
			continue
		}
		matched = append(matched, entry)
	}
	if len(matched) == 0 {
		return nil, domain.ErrNoRecords
	}
	return matched, nil
}

// fakeTxRunner serializes callbacks with one mutex. An error from fn is
// returned as-is; the fakes have no rollback, so tests that exercise
// failure paths must fail before any write, exactly as the engine
// promises for business-rule violations.
type fakeTxRunner struct {
	mu sync.Mutex
}

func (r *fakeTxRunner) WithinTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(nil)
}

// fakeConverter applies a fixed rate table keyed by "FROM:TO".
type fakeConverter struct {
	rates map[string]decimal.Decimal
	err   error
}

func (c *fakeConverter) Convert(_ context.Context, amount decimal.Decimal, fromCurrency, toCurrency string) (domain.Money, error) {
	if c.err != nil {
		return domain.Money{}, c.err
	}

	rate, ok := c.rates[fromCurrency+":"+toCurrency]
	if !ok {
		return domain.Money{}, fmt.Errorf("%w: no rate for %s to %s", domain.ErrRateUnavailable, fromCurrency, toCurrency)
	}
	return domain.NewMoney(amount.Mul(rate), toCurrency).Rounded(), nil
}

// fakePublisher records everything published.
type fakePublisher struct {
	mu        sync.Mutex
	published []domain.Transaction
}

func (p *fakePublisher) PublishTransaction(_ context.Context, transaction domain.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, transaction)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}
