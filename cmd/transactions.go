package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/holdings/renderer"
)

type transactionsCmd struct{}

func (*transactionsCmd) Name() string { return "transactions" }
func (*transactionsCmd) Synopsis() string {
	return "display the trade history of a security with running position"
}
func (*transactionsCmd) Usage() string {
	return `hld transactions <security-id>

  Lists buys, sells and benefit credits for the given security in
  chronological order, with the cumulative quantity after each trade.
`
}
func (*transactionsCmd) SetFlags(*flag.FlagSet) {}

func (c *transactionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	summary, err := LoadSummary(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if summary.Rollup(id) == nil {
		fmt.Fprintf(os.Stderr, "Error: unknown security %q\n", id)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.TransactionsMarkdown(id, summary.Transactions(id), cfg.Currency))
	return subcommands.ExitSuccess
}
