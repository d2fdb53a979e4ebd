package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/irtax"
	"github.com/etnz/irtax/date"
	"github.com/etnz/irtax/renderer"
	"github.com/google/subcommands"
)

type whatifCmd struct {
	asset   string
	qty     string
	price   string
	fees    string
	date    string
	owner   string
	carried string
	values  string
	json    bool
}

func (*whatifCmd) Name() string     { return "whatif" }
func (*whatifCmd) Synopsis() string { return "tax cost of a hypothetical sale" }
func (*whatifCmd) Usage() string {
	return `irtax whatif -a <asset> -q <quantity> -p <price> [-fees <fees>] [-d <date>] [-o <owner>]

  Matches a sale that is not in the ledger and shows the additional tax it
  would cost in its regime for the year of the sale. The ledger is not modified.
`
}

func (c *whatifCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "a", "", "Asset identifier (ISIN)")
	f.StringVar(&c.qty, "q", "", "Quantity to sell")
	f.StringVar(&c.price, "p", "", "Unit price")
	f.StringVar(&c.fees, "fees", "", "Total fees of the sale")
	f.StringVar(&c.date, "d", "", "Date of the sale. Defaults to today.")
	f.StringVar(&c.owner, "o", "", "Owner selling")
	f.StringVar(&c.carried, "cf", "", "CGT losses carried forward from previous years")
	f.StringVar(&c.values, "values", "", "Valuations file (JSONL) for deemed disposals")
	f.BoolVar(&c.json, "json", false, "Print the result as JSON")
}

func (c *whatifCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.asset == "" || c.qty == "" || c.price == "" {
		fmt.Fprintln(os.Stderr, "Error: -a, -q and -p are required")
		return subcommands.ExitUsageError
	}
	on, err := parseDate(c.date, date.Today())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -d: %v\n", err)
		return subcommands.ExitUsageError
	}
	qty, err := parseDecimal(c.qty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -q: %v\n", err)
		return subcommands.ExitUsageError
	}
	price, err := parseDecimal(c.price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -p: %v\n", err)
		return subcommands.ExitUsageError
	}
	fees, err := parseDecimal(c.fees)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -fees: %v\n", err)
		return subcommands.ExitUsageError
	}
	carried, err := parseDecimal(c.carried)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -cf: %v\n", err)
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
	calc, err := newCalculator(on.Year())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	cur := calc.Rates.Currency
	res, err := calc.WhatIf(ledger, irtax.WhatIfRequest{
		Owner:                c.owner,
		Asset:                c.asset,
		Quantity:             irtax.Q(qty),
		Price:                irtax.M(price, cur),
		Fees:                 irtax.M(fees, cur),
		Date:                 on,
		LossesCarriedForward: carried,
		Valuations:           values,
	})
	var insufficient *irtax.InsufficientLotsError
	if errors.As(err, &insufficient) {
		fmt.Fprintf(os.Stderr, "Error: only %s of %s can be sold on %s\n", insufficient.Available, insufficient.Asset, insufficient.Date)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		return printJSON(res)
	}
	printMarkdown(renderer.WhatIfMarkdown(res))
	return subcommands.ExitSuccess
}
