package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"golang.org/x/text/language"

	"github.com/etnz/holdings"
	"github.com/etnz/holdings/quote"
	"github.com/etnz/holdings/renderer"
	"github.com/etnz/holdings/table"
)

type positionsCmd struct {
	active bool
	quotes bool
	filter string
	sortBy string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display per-security positions and rollups" }
func (*positionsCmd) Usage() string {
	return `hld positions [-active] [-quotes]

  Aggregates the ledger spreadsheet into per-security rollups: signed
  quantity held, cumulative fees, dividends and taxes.

  With -active, securities whose position is zero are hidden.
  With -quotes, live prices are fetched (through the quote cache, batched
  under the provider quota) and overlaid on the table.

  -filter narrows rows with column substring matches ("name=apple"),
  -sort orders by a column key ("quantity", or "-quantity" for
  descending). Columns: id, name, quantity, fees, dividends, taxes.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.active, "active", false, "Only securities with a non-zero position.")
	f.BoolVar(&c.quotes, "quotes", false, "Overlay live prices from the quote provider.")
	f.StringVar(&c.filter, "filter", "", "Column filter, as key=substring.")
	f.StringVar(&c.sortBy, "sort", "", "Sort column key, prefix with - for descending.")
}

// positionColumns describes the positions table for the query engine.
func positionColumns() []table.Column[holdings.SecurityRollup] {
	return []table.Column[holdings.SecurityRollup]{
		{Key: "id", Title: "ID", Sortable: true, Filterable: true,
			Value: func(r holdings.SecurityRollup) string { return r.SecurityID }},
		{Key: "name", Title: "Name", Sortable: true, Filterable: true,
			Value: func(r holdings.SecurityRollup) string { return r.Name }},
		{Key: "quantity", Title: "Quantity", Sortable: true, Filterable: false,
			Value: func(r holdings.SecurityRollup) string { return r.Quantity.String() }},
		{Key: "fees", Title: "Fees", Sortable: true, Filterable: false,
			Value: func(r holdings.SecurityRollup) string { return r.Fees.String() }},
		{Key: "dividends", Title: "Dividends", Sortable: true, Filterable: false,
			Value: func(r holdings.SecurityRollup) string { return r.Dividends.String() }},
		{Key: "taxes", Title: "Taxes", Sortable: true, Filterable: false,
			Value: func(r holdings.SecurityRollup) string { return r.Taxes.String() }},
	}
}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	summary, err := LoadSummary(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	rollups := summary.Securities
	if c.active {
		rollups = summary.Active()
	}

	if c.filter != "" || c.sortBy != "" {
		filters := map[string]string{}
		if key, val, ok := strings.Cut(c.filter, "="); ok {
			filters[key] = val
		}
		var sortKey *table.Sort
		if c.sortBy != "" {
			dir := table.Ascending
			key := c.sortBy
			if strings.HasPrefix(key, "-") {
				dir, key = table.Descending, key[1:]
			}
			sortKey = &table.Sort{Key: key, Direction: dir}
		}
		locale, err := language.Parse(cfg.Locale)
		if err != nil {
			locale = language.English
		}
		engine := table.NewEngine[holdings.SecurityRollup](locale)
		rollups = engine.Query(rollups, positionColumns(), filters, sortKey)
	}

	var quotes map[string]quote.Quote
	if c.quotes {
		ids := make([]string, 0, len(rollups))
		for _, r := range rollups {
			ids = append(ids, r.SecurityID)
		}
		quotes, err = NewCache(cfg).QuoteBatch(ctx, ids)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: quote batch interrupted: %v\n", err)
		}
	}

	printMarkdown(renderer.PositionsMarkdown(rollups, quotes, cfg.Currency))
	return subcommands.ExitSuccess
}
