package config

import (
	"slices"
	"strings"
)

// Currency describes how amounts are printed.
type Currency struct {
	Code      string
	Prefix    string
	Decimals  int32
	Thousands string
	Point     string
}

// DefaultCurrencies maps ISO codes to display settings.
var DefaultCurrencies = map[string]Currency{
	"IDR": {Code: "IDR", Prefix: "Rp", Decimals: 0, Thousands: ",", Point: "."},
	"USD": {Code: "USD", Prefix: "$", Decimals: 2, Thousands: ",", Point: "."},
	"EUR": {Code: "EUR", Prefix: "€", Decimals: 2, Thousands: ".", Point: ","},
	"GBP": {Code: "GBP", Prefix: "£", Decimals: 2, Thousands: ",", Point: "."},
	"JPY": {Code: "JPY", Prefix: "¥", Decimals: 0, Thousands: ",", Point: "."},
	"SGD": {Code: "SGD", Prefix: "S$", Decimals: 2, Thousands: ",", Point: "."},
}

// CurrencyCodes returns the known currency codes in sorted order.
func CurrencyCodes() []string {
	codes := make([]string, 0, len(DefaultCurrencies))
	for code := range DefaultCurrencies {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// LookupCurrency finds a currency by code, case-insensitively.
func LookupCurrency(code string) (Currency, bool) {
	c, ok := DefaultCurrencies[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// ResolveCurrency returns the configured currency with the prefix
// override applied. Unknown codes fall back to IDR.
func (c Config) ResolveCurrency() Currency {
	cur, ok := LookupCurrency(c.General.Currency)
	if !ok {
		cur = DefaultCurrencies["IDR"]
	}
	if c.General.CurrencyPrefix != "" {
		cur.Prefix = c.General.CurrencyPrefix
	}
	return cur
}
