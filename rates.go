package irtax

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultExitTaxPrefixes lists the fund domicile codes taxed under Exit Tax.
var DefaultExitTaxPrefixes = []string{"IE", "LU", "DE", "FR", "NL", "AT", "BE", "IT", "ES", "PT"}

// RateTable holds the rates and constants of one tax year.
type RateTable struct {
	Currency            string          `json:"currency"`
	CGTRate             decimal.Decimal `json:"cgt_rate"`
	ExitTaxRate         decimal.Decimal `json:"exit_tax_rate"`
	DIRTRate            decimal.Decimal `json:"dirt_rate"`
	AnnualExemption     decimal.Decimal `json:"annual_exemption"`
	DeemedDisposalYears int             `json:"deemed_disposal_years"`
	BedAndBreakfastDays int             `json:"bed_and_breakfast_days"`
	ExitTaxPrefixes     []string        `json:"exit_tax_prefixes"`
}

// IrishRates returns the built-in Irish rate table for a tax year.
//
// Exit Tax is 41% up to 2025 and 38% from 2026.
func IrishRates(year int) RateTable {
	exitTax := decimal.RequireFromString("0.41")
	if year >= 2026 {
		exitTax = decimal.RequireFromString("0.38")
	}
	return RateTable{
		Currency:            "EUR",
		CGTRate:             decimal.RequireFromString("0.33"),
		ExitTaxRate:         exitTax,
		DIRTRate:            decimal.RequireFromString("0.33"),
		AnnualExemption:     decimal.NewFromInt(1270),
		DeemedDisposalYears: 8,
		BedAndBreakfastDays: 28,
		ExitTaxPrefixes:     append([]string(nil), DefaultExitTaxPrefixes...),
	}
}

// Exemption returns the annual CGT exemption as Money.
func (r RateTable) Exemption() Money { return M(r.AnnualExemption, r.Currency) }

// Zero returns zero in the table currency.
func (r RateTable) Zero() Money { return M(0, r.Currency) }

// Validate returns every problem of the table joined, each wrapping ErrInvalidRateTable.
func (r RateTable) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidRateTable, fmt.Sprintf(format, args...)))
	}
	if r.Currency == "" {
		invalid("missing currency")
	}
	for _, rate := range []struct {
		name  string
		value decimal.Decimal
	}{{"cgt_rate", r.CGTRate}, {"exit_tax_rate", r.ExitTaxRate}, {"dirt_rate", r.DIRTRate}} {
		if rate.value.IsNegative() || rate.value.GreaterThan(decimal.NewFromInt(1)) {
			invalid("%s %s is not within [0,1]", rate.name, rate.value)
		}
	}
	if r.CGTRate.IsZero() && r.ExitTaxRate.IsZero() && r.DIRTRate.IsZero() {
		invalid("all rates are zero")
	}
	if r.AnnualExemption.IsNegative() {
		invalid("negative annual exemption %s", r.AnnualExemption)
	}
	if r.DeemedDisposalYears <= 0 {
		invalid("deemed_disposal_years must be positive, got %d", r.DeemedDisposalYears)
	}
	if r.BedAndBreakfastDays < 0 {
		invalid("bed_and_breakfast_days must not be negative, got %d", r.BedAndBreakfastDays)
	}
	return errors.Join(errs...)
}
