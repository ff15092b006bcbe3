// Package cmd implements the CLI application over the holdings core.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/etnz/holdings"
	"github.com/etnz/holdings/quote"
	"github.com/etnz/holdings/spreadsheet"
)

// Register the subcommands.
// A main package calls Register() and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&positionsCmd{}, "views")
	c.Register(&transactionsCmd{}, "views")
	c.Register(&dividendsCmd{}, "views")
	c.Register(&depositsCmd{}, "views")

	c.Register(&quoteCmd{}, "quotes")
	c.Register(&updateCmd{}, "quotes")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerFile = flag.String("ledger", "ledger.xlsx", "Path to the brokerage transactions spreadsheet")
var configFile = flag.String("config", "holdings.yaml", "Path to the configuration file")
var verbose = flag.Bool("v", false, "Enable debug logging")

// Logger returns the application logger, honoring -v.
func Logger() zerolog.Logger {
	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// LoadConfig reads the app configuration, falling back to defaults when the
// file is absent.
func LoadConfig() (holdings.Config, error) {
	return holdings.LoadConfig(*configFile)
}

// LoadSummary decodes the ledger spreadsheet and aggregates it.
func LoadSummary(cfg holdings.Config) (*holdings.Summary, error) {
	records, err := spreadsheet.ReadFile(*ledgerFile)
	if err != nil {
		return nil, fmt.Errorf("cannot load ledger %q: %w", *ledgerFile, err)
	}
	agg := holdings.NewAggregator(cfg.Pseudo).WithLogger(Logger())
	return agg.Aggregate(records), nil
}

// NewCache builds the two-tier quote cache from the configuration.
func NewCache(cfg holdings.Config) *quote.Cache {
	log := Logger()
	client := quote.NewClient(cfg.Provider).WithLogger(log)
	transient := quote.NewMemStore()
	persistent := quote.NewFileStore(cfg.Cache.Dir).WithLogger(log)
	return quote.New(client, transient, persistent, cfg.Cache).WithLogger(log)
}

// printMarkdown renders markdown to the terminal, falling back to the raw
// text when the renderer cannot be built.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Println(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}
