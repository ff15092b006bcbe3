package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/holdings/renderer"
)

type dividendsCmd struct{}

func (*dividendsCmd) Name() string     { return "dividends" }
func (*dividendsCmd) Synopsis() string { return "display dividend payments net of withholding tax" }
func (*dividendsCmd) Usage() string {
	return `hld dividends <security-id>

  Groups dividend deposits and tax withdrawals by payment date label and
  shows the net amount received, with grand totals.
`
}
func (*dividendsCmd) SetFlags(*flag.FlagSet) {}

func (c *dividendsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	printMarkdown(renderer.DividendsMarkdown(id, summary.Dividends(id), cfg.Currency))
	return subcommands.ExitSuccess
}
