package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/etnz/holdings"
	"github.com/etnz/holdings/quote"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPositionsMarkdown(t *testing.T) {
	rollups := []holdings.SecurityRollup{
		{SecurityID: "US123", Name: "ACME Corp", Quantity: dec("8"), Fees: dec("2"), Dividends: dec("210"), Taxes: dec("15")},
		{SecurityID: "DE456", Name: "Other AG", Quantity: dec("2")},
	}
	quotes := map[string]quote.Quote{
		"US123": {SecurityID: "US123", Price: 123.45, Change: -1.2, ChangePercent: -0.96},
	}

	md := PositionsMarkdown(rollups, quotes, "USD")

	for _, want := range []string{
		"# Positions",
		"| US123 | ACME Corp | 8 |",
		"$210.00",
		"123.45",
		"-1.20 (-0.96%)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}
	// No quote for DE456: the overlay cells stay empty, the row remains.
	if !strings.Contains(md, "| DE456 | Other AG | 2 |") {
		t.Errorf("DE456 row missing in:\n%s", md)
	}
}

func TestPositionsMarkdownEmpty(t *testing.T) {
	md := PositionsMarkdown(nil, nil, "USD")
	if !strings.Contains(md, "No securities") {
		t.Errorf("empty view should say so:\n%s", md)
	}
}

func TestTransactionsMarkdown(t *testing.T) {
	entries := []holdings.TransactionEntry{
		{Label: "01/01/2023", Action: holdings.ActionBuy, Quantity: dec("10"), Price: dec("5"), Fee: dec("1.5"), Cumulative: dec("10")},
		{Label: "02/01/2023", Action: holdings.ActionSell, Quantity: dec("-3"), Price: dec("6"), Fee: dec("0.5"), Cumulative: dec("7")},
	}
	md := TransactionsMarkdown("US123", entries, "USD")

	for _, want := range []string{
		"# Transactions of US123",
		"| 01/01/2023 | buy | 10 |",
		"| 02/01/2023 | sell | -3 |",
		"| 7 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}
}

func TestDividendsMarkdown(t *testing.T) {
	h := holdings.DividendHistory{
		Groups: []holdings.DividendGroup{
			{Label: "10/03/2023", Dividend: dec("100"), Tax: dec("15"), Net: dec("85")},
		},
		TotalDividend: dec("100"), TotalTax: dec("15"), TotalNet: dec("85"),
	}
	md := DividendsMarkdown("US123", h, "EUR")

	for _, want := range []string{
		"# Dividends of US123",
		"10/03/2023",
		"**Total**",
		"€85.00",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}
}

func TestDepositsMarkdown(t *testing.T) {
	buckets := []holdings.DepositBucket{
		{Year: 2023, Month: time.January, Total: dec("150"), Entries: []holdings.DepositEntry{
			{Label: "15/01/2023", Amount: dec("100")},
			{Label: "25/01/2023", Amount: dec("50")},
		}},
		{Year: 2023, Month: time.February}, // gap month, still rendered
	}
	account := holdings.AccountRollup{Deposits: dec("150"), Benefits: dec("200"), CapitalGainsTax: dec("80")}

	md := DepositsMarkdown(buckets, account, "USD")

	for _, want := range []string{
		"# Deposits",
		"Total deposits: $150.00, benefits: $200.00, capital-gains tax: $80.00",
		"| 2023-01 | $150.00 | 15/01/2023 $100.00, 25/01/2023 $50.00 |",
		"| 2023-02 | $0.00 |  |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}
}

func TestHistoryMarkdown(t *testing.T) {
	points := []quote.Point{
		{Date: holdings.NewDate(2023, time.November, 1), Close: 100.5, Volume: 1000},
	}
	md := HistoryMarkdown("US123", points)

	for _, want := range []string{
		"# History of US123",
		"| 2023-11-01 | 100.50 | 1000 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}
	if !strings.Contains(HistoryMarkdown("US123", nil), "No history") {
		t.Error("empty history should say so")
	}
}
