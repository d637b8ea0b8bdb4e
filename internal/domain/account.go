package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusActive          AccountStatus = "ACTIVE"
	AccountStatusActiveKYCNotDue AccountStatus = "ACTIVE_KYC_NOT_COMPLETED"
	AccountStatusInactive        AccountStatus = "INACTIVE"
	AccountStatusFlagged         AccountStatus = "FLAGGED"
	AccountStatusSuspended       AccountStatus = "SUSPENDED"
	AccountStatusClosed          AccountStatus = "CLOSED"
)

// Account is a customer balance record. Balance is always expressed in
// the account's stored currency and must never be negative after a
// committed operation.
type Account struct {
	CustomerID int64
	IBAN       string
	HolderName string
	TaxID      string
	Balance    decimal.Decimal
	Currency   string
	Status     AccountStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
