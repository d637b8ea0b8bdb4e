package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// FundTransferRequest models a transfer from the perspective of one
// named customer account: CREDIT moves money toward it, DEBIT away
// from it. The transacting account is the counterparty and may belong
// to another bank.
type FundTransferRequest struct {
	TransactingAccountNumber string          `json:"transactingAccountNumber"`
	CustomerAccountNumber    string          `json:"customerAccountNumber"`
	Amount                   decimal.Decimal `json:"amount"`
	CurrencyType             string          `json:"currencyType"`
	TransactionType          string          `json:"transactionType"`
	TransactionRemarks       string          `json:"transactionRemarks"`
}

func (r FundTransferRequest) Validate() error {
	var errs []string

	if !isIBANShaped(strings.TrimSpace(r.CustomerAccountNumber)) {
		errs = append(errs, "customerAccountNumber is not a valid account identifier")
	}
	if !isIBANShaped(strings.TrimSpace(r.TransactingAccountNumber)) {
		errs = append(errs, "transactingAccountNumber is not a valid account identifier")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}
	if !isAcceptedCurrency(r.CurrencyType) {
		errs = append(errs, "currencyType must be one of USD, EUR, GBP")
	}
	if strings.TrimSpace(r.TransactionType) == "" {
		errs = append(errs, "transactionType is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type FundTransferResponse struct {
	Entries []TransactionResponse `json:"entries"`
}
