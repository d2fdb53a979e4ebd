package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/irtax"
	"github.com/etnz/irtax/date"
	"github.com/etnz/irtax/renderer"
	"github.com/google/subcommands"
)

type reportCmd struct {
	year      int
	owner     string
	household bool
	carried   string
	asOf      string
	values    string
	upcoming  int
	json      bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "compute the tax liability of a tax year" }
func (*reportCmd) Usage() string {
	return `irtax report [-y <year>] [-o <owner> | -household] [-cf <losses>] [-asof <date>] [-values <file>] [-json]

  Computes CGT, Exit Tax, DIRT and dividend totals for a tax year, with the
  payment deadlines and the return form fields. Problems with individual
  records are listed as issues at the end of the report.

Usage Examples:
# Report on last year.
$ irtax report -y 2024

# Report for one owner of a joint ledger, with losses brought forward.
$ irtax report -y 2024 -o alice -cf 350
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", date.Today().Year()-1, "Tax year")
	f.StringVar(&c.owner, "o", "", "Owner to report on. Required when the ledger has several owners.")
	f.BoolVar(&c.household, "household", false, "Report on every owner of the ledger")
	f.StringVar(&c.carried, "cf", "", "CGT losses carried forward from previous years")
	f.StringVar(&c.asOf, "asof", "", "Evaluation date of deemed disposals. Defaults to the end of the tax year.")
	f.StringVar(&c.values, "values", "", "Valuations file (JSONL) for deemed disposals")
	f.IntVar(&c.upcoming, "upcoming", 0, "List upcoming deemed disposals within that many years (0 for all)")
	f.BoolVar(&c.json, "json", false, "Print the report as JSON")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	asOf, err := parseDate(c.asOf, date.Date{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -asof: %v\n", err)
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
	calc, err := newCalculator(c.year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	req := irtax.Request{
		Owner:                c.owner,
		TaxYear:              c.year,
		AsOf:                 asOf,
		LossesCarriedForward: carried,
		Valuations:           values,
		UpcomingYears:        c.upcoming,
	}
	var reports []*irtax.Report
	if c.household {
		reports, err = calc.CalculateHousehold(ctx, ledger, req)
	} else {
		var r *irtax.Report
		r, err = calc.Calculate(ledger, req)
		reports = append(reports, r)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		if c.household {
			return printJSON(reports)
		}
		return printJSON(reports[0])
	}
	for _, r := range reports {
		printMarkdown(renderer.ReportMarkdown(r))
	}
	return subcommands.ExitSuccess
}
