package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/holdings/renderer"
)

type depositsCmd struct{}

func (*depositsCmd) Name() string     { return "deposits" }
func (*depositsCmd) Synopsis() string { return "display cash deposits month by month" }
func (*depositsCmd) Usage() string {
	return `hld deposits

  Buckets cash transfers into a continuous monthly timeline, from the
  first deposit to the last, and shows the account totals: deposits,
  benefit credits and capital-gains tax paid.
`
}
func (*depositsCmd) SetFlags(*flag.FlagSet) {}

func (c *depositsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	printMarkdown(renderer.DepositsMarkdown(summary.Deposits, summary.Account, cfg.Currency))
	return subcommands.ExitSuccess
}
