package report

import (
	"fmt"
	"sort"
)

// Currency describes a display currency.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

var currencies = map[string]Currency{
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro"},
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar"},
	"GBP": {Code: "GBP", Symbol: "£", Name: "British Pound"},
	"BRL": {Code: "BRL", Symbol: "R$", Name: "Brazilian Real"},
}

// LookupCurrency returns the currency for a code. Unknown codes fall
// back to EUR so display never breaks on stale persisted settings.
func LookupCurrency(code string) Currency {
	if c, ok := currencies[code]; ok {
		return c
	}
	return currencies["EUR"]
}

// KnownCurrency reports whether code is a supported display currency.
func KnownCurrency(code string) bool {
	_, ok := currencies[code]
	return ok
}

// Currencies returns all supported currencies sorted by code.
func Currencies() []Currency {
	out := make([]Currency, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// FormatAmount renders an amount with the currency symbol and two
// decimal places.
func FormatAmount(c Currency, amount float64) string {
	return fmt.Sprintf("%s%.2f", c.Symbol, amount)
}
