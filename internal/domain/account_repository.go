package domain

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// AccountRepository owns account records. ApplyBalanceDelta is the only
// sanctioned balance mutation path and must run inside the transaction
// handle supplied by the caller, after the row has been locked.
type AccountRepository interface {
	// Create persists a new account. IBAN and customer id must already be
	// assigned on the draft. Returns ErrDuplicateAccount when the IBAN is
	// taken.
	Create(ctx context.Context, account Account) (Account, error)

	// GetByIBAN returns the account and whether it exists. A miss is not
	// an error; the caller decides the semantics.
	GetByIBAN(ctx context.Context, iban string) (Account, bool, error)

	// GetByIBANForUpdate reads the account under a row lock held until the
	// surrounding transaction ends. Returns ErrAccountNotFound on a miss.
	GetByIBANForUpdate(ctx context.Context, tx *sql.Tx, iban string) (Account, error)

	// ApplyBalanceDelta adds delta to the locked row's balance. Returns
	// ErrNegativeBalance when the result would drop below zero; the check
	// and the write are atomic with respect to other deltas on the row.
	ApplyBalanceDelta(ctx context.Context, tx *sql.Tx, iban string, delta decimal.Decimal) (Account, error)

	// ExistsByCustomerID reports whether a customer id is already taken.
	ExistsByCustomerID(ctx context.Context, customerID int64) (bool, error)
}
