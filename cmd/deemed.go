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

type deemedCmd struct {
	asOf   string
	years  int
	owner  string
	values string
	json   bool
}

func (*deemedCmd) Name() string     { return "deemed" }
func (*deemedCmd) Synopsis() string { return "deemed disposals applied, pending and upcoming" }
func (*deemedCmd) Usage() string {
	return `irtax deemed [-asof <date>] [-years <n>] [-o <owner>] [-values <file>]

  Lists the eight-year deemed disposals of Exit Tax funds: those applied up to
  the evaluation date, those waiting for a market value, and the upcoming ones.
`
}

func (c *deemedCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asOf, "asof", "", "Evaluation date. Defaults to today.")
	f.IntVar(&c.years, "years", 0, "Only list upcoming disposals within that many years (0 for all)")
	f.StringVar(&c.owner, "o", "", "Owner. Required when the ledger has several owners.")
	f.StringVar(&c.values, "values", "", "Valuations file (JSONL)")
	f.BoolVar(&c.json, "json", false, "Print the schedule as JSON")
}

func (c *deemedCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	s, err := calc.DeemedSchedule(ledger, c.owner, asOf, c.years, values)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		return printJSON(s)
	}
	printMarkdown(renderer.DeemedMarkdown(s))
	return subcommands.ExitSuccess
}
