package domain

import "github.com/shopspring/decimal"

// Money pairs an exact decimal amount with the currency it is
// denominated in. Amounts are rounded to two decimal places before
// persistence.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Rounded returns the same amount rounded to cents.
func (m Money) Rounded() Money {
	return Money{Amount: m.Amount.Round(2), Currency: m.Currency}
}

func (m Money) IsPositive() bool {
	return m.Amount.GreaterThan(decimal.Zero)
}
