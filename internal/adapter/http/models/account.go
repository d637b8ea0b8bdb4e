package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type AccountDataRequest struct {
	AccountHolderName string           `json:"accountHolderName"`
	TaxID             string           `json:"taxId"`
	IBAN              string           `json:"iban"`
	InitialBalance    *decimal.Decimal `json:"initialBalance"`
	Currency          string           `json:"currency"`
	Status            string           `json:"status"`
}

func (r AccountDataRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.AccountHolderName) == "" {
		errs = append(errs, "accountHolderName is required")
	}
	if iban := strings.TrimSpace(r.IBAN); iban != "" && !isIBANShaped(iban) {
		errs = append(errs, "iban is not a valid account identifier")
	}
	if currency := strings.TrimSpace(r.Currency); currency != "" && !isAcceptedCurrency(currency) {
		errs = append(errs, "currency must be one of USD, EUR, GBP")
	}
	if r.InitialBalance != nil && r.InitialBalance.LessThan(decimal.Zero) {
		errs = append(errs, "initialBalance cannot be negative")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type AccountResponse struct {
	CustomerID        int64  `json:"customerId"`
	IBAN              string `json:"iban"`
	AccountHolderName string `json:"accountHolderName"`
	Balance           string `json:"balance"`
	Currency          string `json:"currency"`
	Status            string `json:"status"`
	CreatedAt         string `json:"createdAt"`
	UpdatedAt         string `json:"updatedAt"`
}
