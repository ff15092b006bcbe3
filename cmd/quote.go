package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/holdings/quote"
	"github.com/etnz/holdings/renderer"
)

type quoteCmd struct{}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "display the live price and recent history of a security" }
func (*quoteCmd) Usage() string {
	return `hld quote <security-id>

  Fetches the latest quote and the daily close history for the given
  security, through the two-tier cache. Price and history are fetched
  independently: one can succeed while the other fails.
`
}
func (*quoteCmd) SetFlags(*flag.FlagSet) {}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expecting exactly one security id")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)

	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	d := NewCache(cfg).Detail(ctx, id)

	if d.QuoteErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: no live quote for %s: %s\n", id, reason(d.QuoteErr))
	} else {
		fmt.Printf("%s: %.4f (%+.4f, %+.2f%%)\n", id, d.Quote.Price, d.Quote.Change, d.Quote.ChangePercent)
	}

	if d.HistoryErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: no history for %s: %s\n", id, reason(d.HistoryErr))
	} else {
		printMarkdown(renderer.HistoryMarkdown(id, d.History))
	}

	if d.QuoteErr != nil && d.HistoryErr != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// reason turns a provider error into a one-line user message.
func reason(err error) string {
	if errors.Is(err, quote.ErrRateLimited) {
		return "provider quota exhausted, retry in a minute"
	}
	return err.Error()
}
