package holdings

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Aggregator folds an unordered transaction stream into consistent
// per-security and per-account rollups. It never mutates the input rows:
// every derived view is a fresh computed structure, recomputed from scratch
// on every call.
type Aggregator struct {
	pseudo Pseudo
	log    zerolog.Logger
}

// NewAggregator returns an aggregator using the given reserved identifiers.
// Zero-value fields of pseudo fall back to DefaultPseudo.
func NewAggregator(pseudo Pseudo) *Aggregator {
	return &Aggregator{pseudo: pseudo.orDefault(), log: zerolog.Nop()}
}

// WithLogger sets the logger used for per-row diagnostics.
func (a *Aggregator) WithLogger(log zerolog.Logger) *Aggregator {
	a.log = log
	return a
}

// SecurityRollup is the aggregate of one distinct security identifier.
//
// Quantity is the signed sum of all buy/benefit (+) and sell (-) quantities
// in arrival order. Fees, Dividends and Taxes always accumulate as absolute
// values regardless of the sign recorded in the source row.
type SecurityRollup struct {
	SecurityID string
	Name       string
	Quantity   decimal.Decimal
	Fees       decimal.Decimal
	Dividends  decimal.Decimal
	Taxes      decimal.Decimal
}

// AccountRollup holds account-wide totals summed across all securities.
type AccountRollup struct {
	// Deposits is the total of cash transfers in.
	Deposits decimal.Decimal
	// Benefits is the total of benefit and other credits.
	Benefits decimal.Decimal
	// CapitalGainsTax is the effective capital-gains tax. The source rows
	// record the negation of it, so the sign is inverted on accumulation.
	CapitalGainsTax decimal.Decimal
}

// DepositEntry is one dated cash transfer contributing to a bucket.
type DepositEntry struct {
	Label  string
	Amount decimal.Decimal
}

// DepositBucket is the deposit total of one calendar month. Buckets are
// generated for every month from the earliest to the latest observed deposit
// inclusive, so a continuous timeline can be rendered.
type DepositBucket struct {
	Year    int
	Month   time.Month
	Total   decimal.Decimal
	Entries []DepositEntry
}

// Label returns the bucket's display key, e.g. "2024-03".
func (b DepositBucket) Label() string {
	return NewDate(b.Year, b.Month, 1).Format("2006-01")
}

// TransactionEntry is one row of a per-security transaction history.
// Quantity carries the signed contribution of the row and Cumulative the
// prefix sum of all signed quantities up to and including it.
type TransactionEntry struct {
	Date       Date
	Label      string
	Action     Action
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Fee        decimal.Decimal
	Cumulative decimal.Decimal
}

// DividendGroup aggregates the dividend deposits and tax withdrawals sharing
// one formatted date label.
type DividendGroup struct {
	Label    string
	Dividend decimal.Decimal
	Tax      decimal.Decimal
	Net      decimal.Decimal
}

// DividendHistory is the per-security dividend view plus its grand totals.
type DividendHistory struct {
	Groups        []DividendGroup
	TotalDividend decimal.Decimal
	TotalTax      decimal.Decimal
	TotalNet      decimal.Decimal
}

// Summary is the result of one aggregation pass. It is a disposable view
// object: recompute it whenever the underlying row set changes.
type Summary struct {
	Securities []SecurityRollup
	Account    AccountRollup
	Deposits   []DepositBucket

	pseudo  Pseudo
	records []Record
}

// Aggregate computes a Summary from the given rows.
//
// Rows with unrecognized action tags are ignored. Per-field parse problems
// degrade to zero or the unknown date and never abort a row.
func (a *Aggregator) Aggregate(records []Record) *Summary {
	s := &Summary{pseudo: a.pseudo, records: records}

	index := make(map[string]int) // securityId -> position in s.Securities
	rollup := func(id, name string) *SecurityRollup {
		i, ok := index[id]
		if !ok {
			i = len(s.Securities)
			index[id] = i
			s.Securities = append(s.Securities, SecurityRollup{SecurityID: id, Name: name})
		}
		r := &s.Securities[i]
		if r.Name == "" {
			r.Name = name
		}
		return r
	}

	ignored := 0
	for _, rec := range records {
		switch rec.Kind() {
		case ActionBuy, ActionBenefit:
			if a.pseudo.IsPseudo(rec.SecurityID) {
				// A benefit credit on the reserved "other" line is cash,
				// not shares.
				if rec.SecurityID == a.pseudo.Other {
					s.Account.Benefits = s.Account.Benefits.Add(ParseAmount(rec.LocalAmount).Abs())
				}
				continue
			}
			r := rollup(rec.SecurityID, rec.SecurityName)
			r.Quantity = r.Quantity.Add(ParseAmount(rec.Quantity).Abs())
			r.Fees = r.Fees.Add(ParseAmount(rec.Fee).Abs())
		case ActionSell:
			if a.pseudo.IsPseudo(rec.SecurityID) {
				continue
			}
			r := rollup(rec.SecurityID, rec.SecurityName)
			r.Quantity = r.Quantity.Sub(ParseAmount(rec.Quantity).Abs())
			r.Fees = r.Fees.Add(ParseAmount(rec.Fee).Abs())
		case ActionDividend:
			if rec.SecurityID == a.pseudo.Other {
				s.Account.Benefits = s.Account.Benefits.Add(ParseAmount(rec.LocalAmount).Abs())
			}
		case ActionTax:
			if rec.SecurityID == a.pseudo.CapitalGainsTax {
				// The stored field is the negation of the effective tax.
				s.Account.CapitalGainsTax = s.Account.CapitalGainsTax.Sub(ParseAmount(rec.LocalAmount))
			}
		case ActionTransfer:
			if rec.SecurityID == a.pseudo.Cash {
				s.Account.Deposits = s.Account.Deposits.Add(ParseAmount(rec.LocalAmount).Abs())
			}
		default:
			ignored++
		}
	}
	if ignored > 0 {
		a.log.Debug().Int("rows", ignored).Msg("ignored rows with unrecognized action tags")
	}

	// Dividend and tax rollups join on the security name, because dividend
	// rows do not carry a clean identifier. Substring containment is
	// intentionally preserved from the source data even though one ticker's
	// name may embed another's.
	for i := range s.Securities {
		r := &s.Securities[i]
		for _, rec := range records {
			if !strings.Contains(rec.SecurityName, r.SecurityID) {
				continue
			}
			switch rec.Kind() {
			case ActionDividend:
				r.Dividends = r.Dividends.Add(ParseAmount(rec.LocalAmount).Abs())
			case ActionTax:
				r.Taxes = r.Taxes.Add(ParseAmount(rec.LocalAmount).Abs())
			}
		}
	}

	s.Deposits = a.depositBuckets(records)
	return s
}

// depositBuckets builds the continuous monthly deposit series.
func (a *Aggregator) depositBuckets(records []Record) []DepositBucket {
	type deposit struct {
		on     Date
		amount decimal.Decimal
	}
	var deposits []deposit
	for _, rec := range records {
		if rec.Kind() != ActionTransfer || rec.SecurityID != a.pseudo.Cash {
			continue
		}
		on := rec.When()
		if on.IsZero() {
			// No calendar position for an unknown date; the amount still
			// counts in the account rollup, only the timeline skips it.
			a.log.Debug().Str("date", rec.Date).Msg("deposit with unparseable date left out of the timeline")
			continue
		}
		deposits = append(deposits, deposit{on: on, amount: ParseAmount(rec.LocalAmount).Abs()})
	}
	if len(deposits) == 0 {
		return nil
	}

	first, last := deposits[0].on, deposits[0].on
	for _, d := range deposits[1:] {
		if d.on.Before(first) {
			first = d.on
		}
		if d.on.After(last) {
			last = d.on
		}
	}

	var buckets []DepositBucket
	index := make(map[string]int)
	for m := first.StartOfMonth(); !m.After(last); m = m.AddMonth(1) {
		index[m.Format("2006-01")] = len(buckets)
		buckets = append(buckets, DepositBucket{Year: m.Year(), Month: m.Month()})
	}
	for _, d := range deposits {
		b := &buckets[index[d.on.Format("2006-01")]]
		b.Total = b.Total.Add(d.amount)
		b.Entries = append(b.Entries, DepositEntry{Label: d.on.Label(), Amount: d.amount})
	}
	return buckets
}

// SecurityIDs returns the distinct security identifiers of the summary, in
// first-seen order.
func (s *Summary) SecurityIDs() []string {
	ids := make([]string, 0, len(s.Securities))
	for _, r := range s.Securities {
		ids = append(ids, r.SecurityID)
	}
	return ids
}

// Rollup returns the rollup for one security identifier, or nil if unknown.
func (s *Summary) Rollup(id string) *SecurityRollup {
	for i := range s.Securities {
		if s.Securities[i].SecurityID == id {
			return &s.Securities[i]
		}
	}
	return nil
}

// Active returns the rollups whose signed quantity is non-zero. It is a
// post-filter: the underlying rollups are shared, not copied or mutated.
func (s *Summary) Active() []SecurityRollup {
	active := make([]SecurityRollup, 0, len(s.Securities))
	for _, r := range s.Securities {
		if !r.Quantity.IsZero() {
			active = append(active, r)
		}
	}
	return active
}

// Transactions returns the transaction history of one security: rows whose
// securityId exactly equals id and whose action is buy, sell or benefit,
// sorted by parsed date ascending (unknown dates first), with a running
// cumulative signed quantity.
func (s *Summary) Transactions(id string) []TransactionEntry {
	var entries []TransactionEntry
	for _, rec := range s.records {
		if rec.SecurityID != id {
			continue
		}
		kind := rec.Kind()
		if kind != ActionBuy && kind != ActionSell && kind != ActionBenefit {
			continue
		}
		qty := ParseAmount(rec.Quantity).Abs()
		if kind == ActionSell {
			qty = qty.Neg()
		}
		on := rec.When()
		entries = append(entries, TransactionEntry{
			Date:     on,
			Label:    on.Label(),
			Action:   kind,
			Quantity: qty,
			Price:    ParseAmount(rec.Price),
			Fee:      ParseAmount(rec.Fee).Abs(),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	// The cumulative column is a prefix sum over the sorted set.
	running := decimal.Zero
	for i := range entries {
		running = running.Add(entries[i].Quantity)
		entries[i].Cumulative = running
	}
	return entries
}

// Dividends returns the dividend history of one security: rows whose
// securityName contains id as a substring and whose action is a dividend
// deposit or tax withdrawal, grouped by formatted date label.
func (s *Summary) Dividends(id string) DividendHistory {
	type keyed struct {
		on    Date
		group DividendGroup
	}
	var groups []keyed
	index := make(map[string]int)
	for _, rec := range s.records {
		if !strings.Contains(rec.SecurityName, id) {
			continue
		}
		kind := rec.Kind()
		if kind != ActionDividend && kind != ActionTax {
			continue
		}
		on := rec.When()
		label := on.Label()
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, keyed{on: on, group: DividendGroup{Label: label}})
		}
		amount := ParseAmount(rec.LocalAmount).Abs()
		if kind == ActionDividend {
			groups[i].group.Dividend = groups[i].group.Dividend.Add(amount)
		} else {
			groups[i].group.Tax = groups[i].group.Tax.Add(amount)
		}
	}
	slices.SortStableFunc(groups, func(a, b keyed) int { return a.on.Compare(b.on) })

	h := DividendHistory{Groups: make([]DividendGroup, 0, len(groups))}
	for _, k := range groups {
		g := k.group
		g.Net = g.Dividend.Sub(g.Tax)
		h.Groups = append(h.Groups, g)
		h.TotalDividend = h.TotalDividend.Add(g.Dividend)
		h.TotalTax = h.TotalTax.Add(g.Tax)
		h.TotalNet = h.TotalNet.Add(g.Net)
	}
	return h
}
