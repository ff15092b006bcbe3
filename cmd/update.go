package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type updateCmd struct{}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "warm the quote cache for all held securities" }
func (*updateCmd) Usage() string {
	return `hld update

  Fetches a quote for every security with a non-zero position, batched
  under the provider quota, and stores the results in the persistent
  cache. Later views run without touching the network.
`
}
func (*updateCmd) SetFlags(*flag.FlagSet) {}

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	active := summary.Active()
	ids := make([]string, 0, len(active))
	for _, r := range active {
		ids = append(ids, r.SecurityID)
	}
	if len(ids) == 0 {
		fmt.Println("No active securities, nothing to update.")
		return subcommands.ExitSuccess
	}

	quotes, err := NewCache(cfg).QuoteBatch(ctx, ids)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Updated %d of %d securities.\n", len(quotes), len(ids))
	for _, id := range ids {
		if _, ok := quotes[id]; !ok {
			fmt.Fprintf(os.Stderr, "Warning: no quote for %s\n", id)
		}
	}
	return subcommands.ExitSuccess
}
