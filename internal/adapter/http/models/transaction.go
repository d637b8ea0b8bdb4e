package models

import (
	"errors"
	"strings"

	"github.com/finadem/core-banking/internal/domain"
	"github.com/shopspring/decimal"
)

type TransactionRequest struct {
	TransactingAccountNumber string          `json:"transactingAccountNumber"`
	CustomerAccountNumber    string          `json:"customerAccountNumber"`
	Amount                   decimal.Decimal `json:"amount"`
	CurrencyType             string          `json:"currencyType"`
	TransactionType          string          `json:"transactionType"`
	TransactionSource        string          `json:"transactionSource"`
	TransactionRemarks       string          `json:"transactionRemarks"`
}

func (r TransactionRequest) Validate() error {
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

	transactionType := domain.TransactionType(strings.ToUpper(strings.TrimSpace(r.TransactionType)))
	if transactionType != domain.TransactionTypeDeposit && transactionType != domain.TransactionTypeWithdrawal {
		errs = append(errs, "transactionType must be DEPOSIT or WITHDRAWAL")
	}
	if !domain.TransactionSource(strings.ToUpper(strings.TrimSpace(r.TransactionSource))).Valid() {
		errs = append(errs, "transactionSource must be one of BANK_COUNTER, ATM, FUND_TRANSFER")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type TransactionResponse struct {
	TransactionID      int64  `json:"transactionId"`
	Reference          string `json:"reference"`
	CustomerAccount    string `json:"customerAccount"`
	TransactingAccount string `json:"transactingAccount"`
	BIC                string `json:"bic,omitempty"`
	Amount             string `json:"amount"`
	Currency           string `json:"currency"`
	Type               string `json:"type"`
	Source             string `json:"source"`
	Status             string `json:"status"`
	Remarks            string `json:"remarks,omitempty"`
	Timestamp          string `json:"timestamp"`
	BalanceAfter       string `json:"balanceAfter,omitempty"`
}

func isIBANShaped(value string) bool {
	if len(value) < 15 || len(value) > 34 {
		return false
	}
	for i, ch := range value {
		switch {
		case i < 2 && (ch < 'A' || ch > 'Z'):
			return false
		case i >= 2 && i < 4 && (ch < '0' || ch > '9'):
			return false
		case (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9'):
			return false
		}
	}
	return true
}

func isAcceptedCurrency(code string) bool {
	return domain.ValidCurrency(code)
}
