package irtax

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestIrishRates(t *testing.T) {
	testCases := []struct {
		year    int
		exitTax string
	}{
		{2020, "0.41"},
		{2025, "0.41"},
		{2026, "0.38"},
	}
	for _, tc := range testCases {
		r := IrishRates(tc.year)
		if !r.ExitTaxRate.Equal(decimal.RequireFromString(tc.exitTax)) {
			t.Errorf("IrishRates(%d).ExitTaxRate = %s, want %s", tc.year, r.ExitTaxRate, tc.exitTax)
		}
		if err := r.Validate(); err != nil {
			t.Errorf("IrishRates(%d).Validate() = %v", tc.year, err)
		}
	}

	// The prefixes are a copy.
	r := IrishRates(2024)
	r.ExitTaxPrefixes[0] = "XX"
	if DefaultExitTaxPrefixes[0] != "IE" {
		t.Errorf("IrishRates shares its prefixes with DefaultExitTaxPrefixes")
	}
}

func TestRateTable_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*RateTable)
		want   []string
	}{
		{"missing currency", func(r *RateTable) { r.Currency = "" }, []string{"missing currency"}},
		{"rate above one", func(r *RateTable) { r.CGTRate = decimal.NewFromInt(33) }, []string{"cgt_rate"}},
		{"all zero", func(r *RateTable) {
			r.CGTRate, r.ExitTaxRate, r.DIRTRate = decimal.Zero, decimal.Zero, decimal.Zero
		}, []string{"all rates are zero"}},
		{"several problems", func(r *RateTable) {
			r.AnnualExemption = decimal.NewFromInt(-1)
			r.DeemedDisposalYears = 0
			r.BedAndBreakfastDays = -1
		}, []string{"annual exemption", "deemed_disposal_years", "bed_and_breakfast_days"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := IrishRates(2024)
			tc.modify(&r)
			err := r.Validate()
			if !errors.Is(err, ErrInvalidRateTable) {
				t.Fatalf("Validate() = %v, want ErrInvalidRateTable", err)
			}
			for _, w := range tc.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("Validate() = %q, want it to mention %q", err, w)
				}
			}
		})
	}
}
