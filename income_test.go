package irtax

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func interest(on string, gross, withheld float64) IncomeEvent {
	return NewIncome("", CmdInterest, day(on), EUR(gross), EUR(withheld), "IE")
}

func TestAggregateDIRT(t *testing.T) {
	events := []IncomeEvent{
		interest("2024-03-01", 100, 0),
		interest("2024-03-20", 50, 16.5),
		interest("2024-06-30", 200, 0),
		interest("2023-12-31", 1000, 0),
		NewIncome("", CmdDividend, day("2024-03-01"), EUR(999), EUR(0), "US"),
	}
	got := AggregateDIRT(events, 2024, IrishRates(2024))

	if !got.GrossInterest.Equal(EUR(350)) {
		t.Errorf("GrossInterest = %s, want 350", got.GrossInterest.Decimal())
	}
	if !got.Computed.Equal(EUR(115.50)) {
		t.Errorf("Computed = %s, want 115.50", got.Computed.Decimal())
	}
	if !got.TaxDue.Equal(EUR(99)) {
		t.Errorf("TaxDue = %s, want 99", got.TaxDue.Decimal())
	}
	if got.Due != day("2025-10-31") {
		t.Errorf("Due = %s, want 2025-10-31", got.Due)
	}
	want := []MonthlyIncome{
		{Month: "2024-03", Gross: EUR(150), Withheld: EUR(16.5)},
		{Month: "2024-06", Gross: EUR(200), Withheld: EUR(0)},
	}
	if diff := cmp.Diff(want, got.Monthly, cmpOpts); diff != "" {
		t.Errorf("monthly mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateDIRT_FullyWithheld(t *testing.T) {
	got := AggregateDIRT([]IncomeEvent{interest("2024-05-01", 100, 40)}, 2024, IrishRates(2024))
	if !got.TaxDue.IsZero() {
		t.Errorf("TaxDue = %s, want 0 when more than the computed DIRT was withheld", got.TaxDue.Decimal())
	}
}

func TestAggregateDividends(t *testing.T) {
	events := []IncomeEvent{
		NewIncome("", CmdDividend, day("2024-02-01"), EUR(100), EUR(15), "US"),
		NewIncome("", CmdDividend, day("2024-05-01"), EUR(50), EUR(12.5), "IE"),
		NewIncome("", CmdDistribution, day("2024-09-01"), EUR(30), EUR(0), "LU"),
		interest("2024-03-01", 100, 0),
	}
	got := AggregateDividends(events, 2024, IrishRates(2024))

	checks := []struct {
		name string
		got  Money
		want float64
	}{
		{"Dividends", got.Dividends, 150},
		{"Distributions", got.Distributions, 30},
		{"Withholding", got.Withholding, 27.5},
		{"ForeignGross", got.ForeignGross, 130},
		{"ForeignWithholding", got.ForeignWithholding, 15},
		{"Gains", got.Gains, 180},
		{"TaxDue", got.TaxDue, 0},
	}
	for _, c := range checks {
		if !c.got.Equal(EUR(c.want)) {
			t.Errorf("%s = %s, want %v", c.name, c.got.Decimal(), c.want)
		}
	}
	var countries []string
	for _, c := range got.ByCountry {
		countries = append(countries, c.Country)
	}
	if diff := cmp.Diff([]string{"IE", "LU", "US"}, countries); diff != "" {
		t.Errorf("countries mismatch (-want +got):\n%s", diff)
	}
}

func TestIncomeEvent_Validate(t *testing.T) {
	testCases := []struct {
		name  string
		event IncomeEvent
		ok    bool
	}{
		{"valid", interest("2024-01-01", 10, 3.3), true},
		{"negative gross", interest("2024-01-01", -10, 0), false},
		{"withholding above gross", interest("2024-01-01", 10, 11), false},
		{"missing date", IncomeEvent{Type: CmdInterest, Gross: EUR(1)}, false},
		{"not an income", NewIncome("", CmdBuy, day("2024-01-01"), EUR(1), EUR(0), ""), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.event.Validate()
			if tc.ok {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var invalid *InvalidTransactionError
			if !errors.As(err, &invalid) {
				t.Errorf("Validate() = %v, want an InvalidTransactionError", err)
			}
		})
	}
}
