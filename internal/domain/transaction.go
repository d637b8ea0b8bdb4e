package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeCredit     TransactionType = "CREDIT"
	TransactionTypeDebit      TransactionType = "DEBIT"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeCredit, TransactionTypeDebit:
		return true
	}
	return false
}

// TransferLeg reports whether the type names a fund-transfer movement
// relative to the customer account.
func (t TransactionType) TransferLeg() bool {
	return t == TransactionTypeCredit || t == TransactionTypeDebit
}

// Mirror returns the opposite movement for the counterparty leg of an
// internal transfer.
func (t TransactionType) Mirror() TransactionType {
	if t == TransactionTypeCredit {
		return TransactionTypeDebit
	}
	return TransactionTypeCredit
}

type TransactionSource string

const (
	TransactionSourceBankCounter  TransactionSource = "BANK_COUNTER"
	TransactionSourceATM          TransactionSource = "ATM"
	TransactionSourceFundTransfer TransactionSource = "FUND_TRANSFER"
)

func (s TransactionSource) Valid() bool {
	switch s {
	case TransactionSourceBankCounter, TransactionSourceATM, TransactionSourceFundTransfer:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// Transaction is one immutable ledger entry. It is appended in the same
// database transaction as the balance change it records and is never
// updated afterwards.
type Transaction struct {
	ID                 int64
	Reference          string
	CustomerAccount    string
	TransactingAccount string
	BIC                string
	Amount             decimal.Decimal
	Currency           string
	Type               TransactionType
	Source             TransactionSource
	Status             TransactionStatus
	Remarks            string
	Timestamp          time.Time
}
