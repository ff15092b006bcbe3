// Package renderer turns the derived holdings views into markdown, the
// presentation format of the CLI host.
package renderer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/etnz/holdings"
	"github.com/etnz/holdings/quote"
)

// money formats an amount in the display currency.
func money(v decimal.Decimal, currency string) string {
	return holdings.M(v, currency).String()
}

// PositionsMarkdown renders the per-security rollups, with a live price
// overlay for identifiers present in quotes.
func PositionsMarkdown(rollups []holdings.SecurityRollup, quotes map[string]quote.Quote, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Positions\n\n")
	if len(rollups) == 0 {
		fmt.Fprintln(&b, "No securities in the ledger.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Security | Name | Quantity | Fees | Dividends | Taxes | Price | Change |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|---:|")
	for _, r := range rollups {
		price, change := "", ""
		if q, ok := quotes[r.SecurityID]; ok {
			price = fmt.Sprintf("%.2f", q.Price)
			change = fmt.Sprintf("%+.2f (%+.2f%%)", q.Change, q.ChangePercent)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			r.SecurityID,
			r.Name,
			r.Quantity.String(),
			money(r.Fees, currency),
			money(r.Dividends, currency),
			money(r.Taxes, currency),
			price,
			change,
		)
	}
	return b.String()
}

// TransactionsMarkdown renders one security's transaction history with its
// running cumulative quantity.
func TransactionsMarkdown(securityID string, entries []holdings.TransactionEntry, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transactions of %s\n\n", securityID)
	if len(entries) == 0 {
		fmt.Fprintln(&b, "No transactions for this security.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Date | Action | Quantity | Price | Fee | Cumulative |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|")
	for _, e := range entries {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			e.Label,
			e.Action,
			e.Quantity.String(),
			e.Price.String(),
			money(e.Fee, currency),
			e.Cumulative.String(),
		)
	}
	return b.String()
}

// DividendsMarkdown renders one security's dividend groups and grand
// totals.
func DividendsMarkdown(securityID string, h holdings.DividendHistory, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Dividends of %s\n\n", securityID)
	if len(h.Groups) == 0 {
		fmt.Fprintln(&b, "No dividends for this security.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Date | Dividend | Tax | Net |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|")
	for _, g := range h.Groups {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			g.Label,
			money(g.Dividend, currency),
			money(g.Tax, currency),
			money(g.Net, currency),
		)
	}
	fmt.Fprintf(&b, "| **Total** | %s | %s | %s |\n",
		money(h.TotalDividend, currency),
		money(h.TotalTax, currency),
		money(h.TotalNet, currency),
	)
	return b.String()
}

// DepositsMarkdown renders the continuous monthly deposit timeline. Months
// without deposits are present with a zero total, so the timeline has no
// gaps.
func DepositsMarkdown(buckets []holdings.DepositBucket, account holdings.AccountRollup, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Deposits\n\n")
	fmt.Fprintf(&b, "Total deposits: %s, benefits: %s, capital-gains tax: %s\n\n",
		money(account.Deposits, currency),
		money(account.Benefits, currency),
		money(account.CapitalGainsTax, currency),
	)
	if len(buckets) == 0 {
		fmt.Fprintln(&b, "No deposits in the ledger.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Month | Total | Deposits |")
	fmt.Fprintln(&b, "|:---|---:|:---|")
	for _, bucket := range buckets {
		details := make([]string, 0, len(bucket.Entries))
		for _, e := range bucket.Entries {
			details = append(details, fmt.Sprintf("%s %s", e.Label, money(e.Amount, currency)))
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n",
			bucket.Label(),
			money(bucket.Total, currency),
			strings.Join(details, ", "),
		)
	}
	return b.String()
}

// HistoryMarkdown renders a daily close series.
func HistoryMarkdown(securityID string, points []quote.Point) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# History of %s\n\n", securityID)
	if len(points) == 0 {
		fmt.Fprintln(&b, "No history available.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Date | Close | Volume |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	for _, p := range points {
		fmt.Fprintf(&b, "| %s | %.2f | %d |\n", p.Date, p.Close, p.Volume)
	}
	return b.String()
}
