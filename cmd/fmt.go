package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/irtax"
	"github.com/google/subcommands"
)

type fmtCmd struct {
	check bool
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the ledger file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `irtax fmt [-check]

  Validates and formats the ledger file. This command reads all records,
  reports the invalid ones, sorts them by date, and writes them back in a
  canonical JSONL format. Invalid records are kept as they are.

Usage Examples:
# Writes to the default ledger file.
$ irtax fmt

# Only reports the invalid records.
$ irtax fmt -check
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.check, "check", false, "Do not write the ledger, fail if any record is invalid")
}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	invalid := validateRecords(os.Stderr, ledger)
	if c.check {
		if invalid > 0 {
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	if err := EncodeLedger(ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving formatted ledger %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Formatted %d records in %q.\n", ledger.Len(), *ledgerFile)
	return subcommands.ExitSuccess
}

// validateRecords prints a warning for each invalid record and returns their count.
func validateRecords(w io.Writer, ledger *irtax.Ledger) int {
	invalid := 0
	for _, rec := range ledger.Records() {
		if err := rec.Validate(); err != nil {
			fmt.Fprintf(w, "Warning: %s %s: %v\n", rec.When(), rec.What(), err)
			invalid++
		}
	}
	return invalid
}
