package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/irtax/date"
	"github.com/etnz/irtax/renderer"
	"github.com/google/subcommands"
)

type holdingsCmd struct {
	asOf   string
	owner  string
	values string
	json   bool
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "open lots on a date" }
func (*holdingsCmd) Usage() string {
	return `irtax holdings [-asof <date>] [-o <owner>] [-values <file>]

  Lists the open lots of every asset with their cost basis, after the deemed
  disposals due by the evaluation date.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asOf, "asof", "", "Evaluation date. Defaults to today.")
	f.StringVar(&c.owner, "o", "", "Owner. Required when the ledger has several owners.")
	f.StringVar(&c.values, "values", "", "Valuations file (JSONL)")
	f.BoolVar(&c.json, "json", false, "Print the holdings as JSON")
}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	asOf, err := parseDate(c.asOf, date.Today())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -asof: %v\n", err)
		return subcommands.ExitUsageError
	}
	values, err := loadValuations(c.values)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	calc, err := newCalculator(asOf.Year())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	holdings, issues, err := calc.Holdings(ledger, c.owner, asOf, values)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, is := range issues {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", renderer.Issue(is))
	}
	if c.json {
		return printJSON(holdings)
	}
	printMarkdown(renderer.HoldingsMarkdown(asOf, holdings))
	return subcommands.ExitSuccess
}
