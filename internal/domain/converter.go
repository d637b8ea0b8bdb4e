package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// CurrencyConverter converts an amount between currencies using an
// external rate source. Implementations return ErrRateUnavailable when
// no rate can be obtained.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, fromCurrency, toCurrency string) (Money, error)
}
