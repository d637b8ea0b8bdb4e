package domain

import "strings"

var acceptedCurrencies = map[string]struct{}{
	"USD": {},
	"EUR": {},
	"GBP": {},
}

// ValidCurrency reports whether the code is one of the currencies the
// bank accepts on incoming requests.
func ValidCurrency(code string) bool {
	_, ok := acceptedCurrencies[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}
