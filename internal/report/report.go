// Package report renders settlement results as human-readable text.
package report

import (
	"fmt"
	"math"
	"strings"

	"fairshare/internal/settle"
)

// ShareText builds the plain-text settlement summary for a result, in
// the given display currency.
func ShareText(result settle.Result, currencyCode string) string {
	c := LookupCurrency(currencyCode)

	var b strings.Builder
	b.WriteString("FairShare Summary\n\n")
	fmt.Fprintf(&b, "Total: %s\n", FormatAmount(c, result.TotalSpent))
	fmt.Fprintf(&b, "Per person: %s\n", FormatAmount(c, result.FairShare))

	if len(result.Debts) == 0 {
		b.WriteString("\nAll settled up!\n")
		return b.String()
	}

	b.WriteString("\nSettlement Plan:\n")
	for _, d := range result.Debts {
		fmt.Fprintf(&b, "- %s → %s: %s\n", d.From, d.To, FormatAmount(c, d.Amount))
	}
	return b.String()
}

// BalanceLines renders one line per participant balance, for logs and
// file exports.
func BalanceLines(result settle.Result, currencyCode string) []string {
	c := LookupCurrency(currencyCode)

	lines := make([]string, 0, len(result.Balances))
	for _, bal := range result.Balances {
		if math.Abs(bal.Balance) < settle.Epsilon {
			lines = append(lines, fmt.Sprintf("%s: paid %s, Settled",
				bal.Name, FormatAmount(c, bal.Paid)))
			continue
		}
		sign := ""
		if bal.Balance > 0 {
			sign = "+"
		}
		lines = append(lines, fmt.Sprintf("%s: paid %s, balance %s%.2f",
			bal.Name, FormatAmount(c, bal.Paid), sign, bal.Balance))
	}
	return lines
}
