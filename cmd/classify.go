package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/irtax"
	"github.com/etnz/irtax/date"
	"github.com/google/subcommands"
)

type classifyCmd struct {
	ledger bool
}

func (*classifyCmd) Name() string     { return "classify" }
func (*classifyCmd) Synopsis() string { return "tax regime of asset identifiers" }
func (*classifyCmd) Usage() string {
	return `irtax classify [-ledger] [<isin>...]

  Prints the tax regime of each identifier: EXIT_TAX for EU domiciled funds,
  STANDARD_CGT otherwise. With -ledger, classifies every asset of the ledger.

Usage Examples:
$ irtax classify IE00B4L5Y983 US0378331005
`
}

func (c *classifyCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.ledger, "ledger", false, "Classify the assets of the ledger")
}

func (c *classifyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ids := f.Args()
	if c.ledger {
		ledger, err := DecodeLedger()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		ids = append(ids, ledger.Assets()...)
	}
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no identifier to classify")
		return subcommands.ExitUsageError
	}
	cfg, log, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	calc, err := cfg.Calculator(date.Today().Year(), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if !classify(os.Stdout, calc.Classifier, ids) {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// classify prints one line per identifier. It returns false if any could
// not be classified.
func classify(w io.Writer, c *irtax.Classifier, ids []string) bool {
	ok := true
	for _, id := range ids {
		regime, err := c.Resolve(id)
		if err != nil {
			fmt.Fprintf(w, "%s\t%v\n", id, err)
			ok = false
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", id, regime)
	}
	return ok
}
