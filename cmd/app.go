// Package cmd implements the irtax command line application.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/etnz/irtax"
	"github.com/etnz/irtax/config"
	"github.com/etnz/irtax/date"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerFile = flag.String("ledger-file", "ledger.jsonl", "Path to the ledger file (JSONL format)")
var configFile = flag.String("config", "", "Path to the configuration file. Defaults to irtax.yaml in the current or user config directory.")

// Commands lists the subcommands, by group.
var Commands = []struct {
	Group   string
	Command subcommands.Command
}{
	{"tax", &reportCmd{}},
	{"tax", &whatifCmd{}},
	{"tax", &deemedCmd{}},
	{"tax", &holdingsCmd{}},
	{"ledger", &classifyCmd{}},
	{"ledger", &fmtCmd{}},
	{"help", &topicCmd{}},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd.Command, cmd.Group)
	}
}

// loadConfig loads the configuration and the logger.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, cfg.Logger(os.Stderr), nil
}

// newCalculator creates the calculator of a tax year from the configuration.
func newCalculator(year int) (*irtax.Calculator, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Calculator(year, log)
}

// DecodeLedger decodes the ledger file.
func DecodeLedger() (*irtax.Ledger, error) {
	f, err := os.Open(*ledgerFile)
	if err != nil {
		return nil, fmt.Errorf("could not open ledger file %q: %w", *ledgerFile, err)
	}
	defer f.Close()
	ledger, err := irtax.DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode ledger file %q: %w", *ledgerFile, err)
	}
	return ledger, nil
}

// EncodeLedger encodes the ledger to the application's ledger file.
func EncodeLedger(ledger *irtax.Ledger) error {
	f, err := os.OpenFile(*ledgerFile, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("error opening ledger file %q for writing: %w", *ledgerFile, err)
	}
	defer f.Close()

	return irtax.EncodeLedger(f, ledger)
}

// parseDate parses a date flag, def is used for the empty string.
func parseDate(s string, def date.Date) (date.Date, error) {
	if s == "" {
		return def, nil
	}
	return date.Parse(s)
}

// parseDecimal parses a decimal flag, the empty string is zero.
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
