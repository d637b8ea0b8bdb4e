package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/finadem/core-banking/internal/domain"
	"github.com/finadem/core-banking/internal/logger"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const uniqueViolationCode = "23505"

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `customer_id, iban, holder_name, tax_id, balance, currency, status, created_at, updated_at`

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	const query = `
INSERT INTO accounts (
	customer_id,
	iban,
	holder_name,
	tax_id,
	balance,
	currency,
	status
) VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at, updated_at`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		account.CustomerID,
		account.IBAN,
		account.HolderName,
		account.TaxID,
		account.Balance,
		account.Currency,
		account.Status,
	).Scan(&account.CreatedAt, &account.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.Account{}, domain.ErrDuplicateAccount
		}
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) GetByIBAN(ctx context.Context, iban string) (domain.Account, bool, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE iban = $1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, iban))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, fmt.Errorf("get account by iban: %w", err)
	}

	return account, true, nil
}

// GetByIBANForUpdate locks the account row for the remainder of the
// surrounding transaction. Callers locking more than one row must do so
// in lexicographic IBAN order.
func (r *AccountRepository) GetByIBANForUpdate(ctx context.Context, tx *sql.Tx, iban string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE iban = $1 FOR UPDATE`

	account, err := scanAccount(tx.QueryRowContext(ctx, query, iban))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("get account for update: %w", err)
	}

	return account, nil
}

// ApplyBalanceDelta re-reads the balance under the row lock, applies
// the delta and writes the result back. The negative check here is a
// defensive invariant; the engine validates sufficient funds before
// calling with a negative delta.
func (r *AccountRepository) ApplyBalanceDelta(ctx context.Context, tx *sql.Tx, iban string, delta decimal.Decimal) (domain.Account, error) {
	var current decimal.Decimal
	if err := tx.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE iban = $1 FOR UPDATE`, iban).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("read balance for update: %w", err)
	}

	next := current.Add(delta).Round(2)
	if next.IsNegative() {
		logger.Error("account repository balance delta would go negative", domain.ErrNegativeBalance, logger.Fields{
			"iban":  iban,
			"delta": delta.String(),
		})
		return domain.Account{}, domain.ErrNegativeBalance
	}

	query := `
UPDATE accounts
SET balance = $2, updated_at = NOW()
WHERE iban = $1
RETURNING ` + accountColumns

	account, err := scanAccount(tx.QueryRowContext(ctx, query, iban, next))
	if err != nil {
		return domain.Account{}, fmt.Errorf("apply balance delta: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) ExistsByCustomerID(ctx context.Context, customerID int64) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM accounts WHERE customer_id = $1`, customerID).Scan(&count); err != nil {
		return false, fmt.Errorf("check customer id: %w", err)
	}

	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.CustomerID,
		&account.IBAN,
		&account.HolderName,
		&account.TaxID,
		&account.Balance,
		&account.Currency,
		&account.Status,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	return account, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}
	return false
}
