package holdings

import (
	"testing"

	"github.com/shopspring/decimal"
)

// row is a test shorthand for building records.
func row(date, action, id, name, qty, price, fee, local string) Record {
	return Record{
		Date: date, Action: action, SecurityID: id, SecurityName: name,
		Quantity: qty, Price: price, Fee: fee, LocalAmount: local,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAggregateQuantities(t *testing.T) {
	records := []Record{
		row("01/01/2023", "buy", "US123", "ACME Corp US123", "10", "5.0", "1.5", ""),
		row("02/01/2023", "sell", "US123", "ACME Corp US123", "-3", "6.0", "0.5", ""),
		row("03/01/2023", "benefit credit", "US123", "ACME Corp US123", "1", "", "", ""),
		row("01/01/2023", "buy", "DE456", "Other AG DE456", "2", "10", "0", ""),
	}
	s := NewAggregator(Pseudo{}).Aggregate(records)

	r := s.Rollup("US123")
	if r == nil {
		t.Fatal("US123 not aggregated")
	}
	// Sells subtract by absolute value, whatever sign the export used.
	if !r.Quantity.Equal(dec("8")) {
		t.Errorf("Quantity = %s, want 8", r.Quantity)
	}
	if !r.Fees.Equal(dec("2")) {
		t.Errorf("Fees = %s, want 2", r.Fees)
	}
	if r.Name != "ACME Corp US123" {
		t.Errorf("Name = %q", r.Name)
	}

	if ids := s.SecurityIDs(); len(ids) != 2 || ids[0] != "US123" || ids[1] != "DE456" {
		t.Errorf("SecurityIDs = %v, want first-seen order", ids)
	}
}

func TestAggregateIgnoresUnknownActions(t *testing.T) {
	records := []Record{
		row("01/01/2023", "buy", "US123", "ACME", "10", "", "", ""),
		row("02/01/2023", "rebalance", "US123", "ACME", "99", "", "", ""),
		row("", "", "US123", "ACME", "99", "", "", ""),
	}
	s := NewAggregator(Pseudo{}).Aggregate(records)
	if r := s.Rollup("US123"); !r.Quantity.Equal(dec("10")) {
		t.Errorf("Quantity = %s, want 10 (unknown actions ignored)", r.Quantity)
	}
}

func TestAggregateDirtyNumbersDegradeToZero(t *testing.T) {
	records := []Record{
		row("01/01/2023", "buy", "US123", "ACME", "n/a", "", "bad", ""),
		row("02/01/2023", "buy", "US123", "ACME", "5", "", "1", ""),
	}
	s := NewAggregator(Pseudo{}).Aggregate(records)
	r := s.Rollup("US123")
	if !r.Quantity.Equal(dec("5")) || !r.Fees.Equal(dec("1")) {
		t.Errorf("dirty cells must degrade to zero, got qty=%s fees=%s", r.Quantity, r.Fees)
	}
}

func TestAccountRollup(t *testing.T) {
	records := []Record{
		row("05/01/2023", "cash transfer", "66666", "Cash", "", "", "", "1000"),
		row("05/02/2023", "cash transfer", "66666", "Cash", "", "", "", "-500"), // abs
		row("10/01/2023", "benefit credit", "99999", "Other", "", "", "", "200"),
		row("11/01/2023", "dividend deposit", "99999", "Other", "", "", "", "50"),
		// Capital-gains tax is stored negated, the rollup re-inverts it.
		row("12/01/2023", "tax withdrawal", "77777", "Tax", "", "", "", "-80"),
	}
	s := NewAggregator(Pseudo{}).Aggregate(records)

	if !s.Account.Deposits.Equal(dec("1500")) {
		t.Errorf("Deposits = %s, want 1500", s.Account.Deposits)
	}
	if !s.Account.Benefits.Equal(dec("250")) {
		t.Errorf("Benefits = %s, want 250", s.Account.Benefits)
	}
	if !s.Account.CapitalGainsTax.Equal(dec("80")) {
		t.Errorf("CapitalGainsTax = %s, want 80 (sign inverted)", s.Account.CapitalGainsTax)
	}

	// Pseudo identifiers never become security rollups.
	for _, id := range []string{"66666", "77777", "99999"} {
		if s.Rollup(id) != nil {
			t.Errorf("pseudo id %s leaked into securities", id)
		}
	}
}

func TestAggregateCustomPseudo(t *testing.T) {
	records := []Record{
		row("05/01/2023", "cash transfer", "CASH", "", "", "", "", "100"),
		row("05/01/2023", "cash transfer", "66666", "", "", "", "", "999"), // not reserved anymore
	}
	s := NewAggregator(Pseudo{Cash: "CASH"}).Aggregate(records)
	if !s.Account.Deposits.Equal(dec("100")) {
		t.Errorf("Deposits = %s, want 100", s.Account.Deposits)
	}
}

func TestDepositBuckets(t *testing.T) {
	records := []Record{
		row("15/01/2023", "cash transfer", "66666", "", "", "", "", "100"),
		row("20/04/2023", "cash transfer", "66666", "", "", "", "", "300"),
		row("25/01/2023", "cash transfer", "66666", "", "", "", "", "50"),
		// Unknown date: counted in the account total, absent from the timeline.
		row("garbage", "cash transfer", "66666", "", "", "", "", "40"),
	}
	s := NewAggregator(Pseudo{}).Aggregate(records)

	if !s.Account.Deposits.Equal(dec("490")) {
		t.Errorf("Deposits = %s, want 490", s.Account.Deposits)
	}

	// Continuous months from first to last deposit, empty ones included.
	if len(s.Deposits) != 4 {
		t.Fatalf("buckets = %d, want 4 (Jan..Apr)", len(s.Deposits))
	}
	if got := s.Deposits[0].Label(); got != "2023-01" {
		t.Errorf("first bucket = %q", got)
	}
	if got := s.Deposits[3].Label(); got != "2023-04" {
		t.Errorf("last bucket = %q", got)
	}
	if !s.Deposits[0].Total.Equal(dec("150")) {
		t.Errorf("January total = %s, want 150", s.Deposits[0].Total)
	}
	if len(s.Deposits[0].Entries) != 2 {
		t.Errorf("January entries = %d, want 2", len(s.Deposits[0].Entries))
	}
	if !s.Deposits[1].Total.IsZero() || !s.Deposits[2].Total.IsZero() {
		t.Error("empty months must appear with a zero total")
	}
	if !s.Deposits[3].Total.Equal(dec("300")) {
		t.Errorf("April total = %s, want 300", s.Deposits[3].Total)
	}
}

func TestActive(t *testing.T) {
	records := []Record{
		row("01/01/2023", "buy", "US123", "ACME", "10", "", "", ""),
		row("02/01/2023", "sell", "US123", "ACME", "10", "", "", ""),
		row("01/01/2023", "buy", "DE456", "Other", "2", "", "", ""),
	}
	s := NewAggregator(Pseudo{}).Aggregate(records)

	active := s.Active()
	if len(active) != 1 || active[0].SecurityID != "DE456" {
		t.Errorf("Active = %+v, want only DE456", active)
	}
	// The full set is untouched: Active is a post-filter.
	if len(s.Securities) != 2 {
		t.Errorf("Securities mutated, len = %d", len(s.Securities))
	}
}

func TestTransactions(t *testing.T) {
	records := []Record{
		// Deliberately out of order.
		row("03/01/2023", "benefit credit", "US123", "ACME", "1", "", "", ""),
		row("01/01/2023", "buy", "US123", "ACME", "10", "5.0", "1.5", ""),
		row("02/01/2023", "sell", "US123", "ACME", "3", "6.0", "0.5", ""),
		row("01/01/2023", "buy", "DE456", "Other", "7", "", "", ""),
		row("04/01/2023", "dividend deposit", "US123", "ACME US123", "", "", "", "12"),
	}
	s := NewAggregator(Pseudo{}).Aggregate(records)

	entries := s.Transactions("US123")
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3 (dividends excluded)", len(entries))
	}
	wantCum := []string{"10", "7", "8"}
	for i, want := range wantCum {
		if !entries[i].Cumulative.Equal(dec(want)) {
			t.Errorf("Cumulative[%d] = %s, want %s", i, entries[i].Cumulative, want)
		}
	}
	if entries[0].Label != "01/01/2023" {
		t.Errorf("Label[0] = %q", entries[0].Label)
	}
	if !entries[1].Quantity.Equal(dec("-3")) {
		t.Errorf("sell Quantity = %s, want -3", entries[1].Quantity)
	}
	if entries[2].Action != ActionBenefit {
		t.Errorf("Action[2] = %v", entries[2].Action)
	}
}

func TestTransactionsUnknownDateSortsFirst(t *testing.T) {
	records := []Record{
		row("02/01/2023", "buy", "US123", "ACME", "5", "", "", ""),
		row("garbage", "buy", "US123", "ACME", "1", "", "", ""),
	}
	s := NewAggregator(Pseudo{}).Aggregate(records)
	entries := s.Transactions("US123")
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if !entries[0].Date.IsZero() || entries[0].Label != "" {
		t.Errorf("unknown-dated row must sort first with an empty label, got %+v", entries[0])
	}
	if !entries[1].Cumulative.Equal(dec("6")) {
		t.Errorf("Cumulative = %s, want 6", entries[1].Cumulative)
	}
}

func TestDividends(t *testing.T) {
	records := []Record{
		row("10/03/2023", "dividend deposit", "", "ACME Corp US123", "", "", "", "100"),
		row("10/03/2023", "tax withdrawal", "", "ACME Corp US123", "", "", "", "-15"),
		row("10/06/2023", "dividend deposit", "", "ACME Corp US123", "", "", "", "110"),
		row("01/01/2023", "buy", "US123", "ACME Corp US123", "10", "", "", ""),
	}
	s := NewAggregator(Pseudo{}).Aggregate(records)

	h := s.Dividends("US123")
	if len(h.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(h.Groups))
	}
	g := h.Groups[0]
	if g.Label != "10/03/2023" {
		t.Errorf("Label = %q", g.Label)
	}
	if !g.Dividend.Equal(dec("100")) || !g.Tax.Equal(dec("15")) || !g.Net.Equal(dec("85")) {
		t.Errorf("group = %+v", g)
	}
	if !h.TotalDividend.Equal(dec("210")) || !h.TotalTax.Equal(dec("15")) || !h.TotalNet.Equal(dec("195")) {
		t.Errorf("totals = %+v", h)
	}

	// The name join also feeds the per-security rollup.
	r := s.Rollup("US123")
	if !r.Dividends.Equal(dec("210")) || !r.Taxes.Equal(dec("15")) {
		t.Errorf("rollup dividends/taxes = %s/%s", r.Dividends, r.Taxes)
	}
}

func TestDividendsSubstringJoinOverlap(t *testing.T) {
	// "AB" is a substring of "ABC": the name join deliberately matches both,
	// mirroring the source data it was built against.
	records := []Record{
		row("01/01/2023", "buy", "AB", "First AB", "1", "", "", ""),
		row("01/01/2023", "buy", "ABC", "Second ABC", "1", "", "", ""),
		row("10/03/2023", "dividend deposit", "", "Second ABC", "", "", "", "100"),
	}
	s := NewAggregator(Pseudo{}).Aggregate(records)

	if d := s.Rollup("AB").Dividends; !d.Equal(dec("100")) {
		t.Errorf("AB dividends = %s, want 100 (substring overlap)", d)
	}
	if d := s.Rollup("ABC").Dividends; !d.Equal(dec("100")) {
		t.Errorf("ABC dividends = %s, want 100", d)
	}
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	records := []Record{
		row("01/01/2023", "buy", "US123", "ACME", "10", "", "", ""),
	}
	before := records[0]
	NewAggregator(Pseudo{}).Aggregate(records)
	if records[0] != before {
		t.Error("input records mutated")
	}
}
