package irtax

import (
	"slices"

	"github.com/etnz/irtax/date"
)

// PaymentDeadline is an amount of tax due on a date.
type PaymentDeadline struct {
	Tax    string    `json:"tax"` // cgt, exit_tax or dirt
	Period string    `json:"period,omitempty"`
	Due    date.Date `json:"due_date"`
	Amount Money     `json:"amount"`
}

// Summary is the consolidated liability of a report.
type Summary struct {
	TotalTaxDue      Money             `json:"total_tax_due"`
	PaymentDeadlines []PaymentDeadline `json:"payment_deadlines"`
}

// Report is the tax liability of one owner for one tax year.
type Report struct {
	Owner      string         `json:"owner,omitempty"`
	TaxYear    int            `json:"tax_year"`
	AsOf       date.Date      `json:"as_of"`
	Currency   string         `json:"currency"`
	CGT        CGTTotals      `json:"cgt"`
	ExitTax    ExitTaxTotals  `json:"exit_tax"`
	DIRT       DIRTTotals     `json:"dirt"`
	Dividends  DividendTotals `json:"dividends"`
	Summary    Summary        `json:"summary"`
	FormFields []FormField    `json:"form_fields"`
	Disposals  []Disposal     `json:"disposals"`
	Issues     []Issue        `json:"issues"`
}

// summarize fills the report summary from the regime blocks. Deadlines with
// nothing to pay are left out.
func (r *Report) summarize(zero Money) {
	r.Summary = Summary{TotalTaxDue: zero, PaymentDeadlines: []PaymentDeadline{}}
	add := func(tax, period string, due date.Date, amount Money) {
		r.Summary.TotalTaxDue = r.Summary.TotalTaxDue.Add(amount)
		if amount.IsPositive() {
			r.Summary.PaymentDeadlines = append(r.Summary.PaymentDeadlines, PaymentDeadline{Tax: tax, Period: period, Due: due, Amount: amount})
		}
	}
	for _, p := range r.CGT.PaymentPeriods {
		add("cgt", p.Period, p.Due, p.TaxDue)
	}
	add("exit_tax", "", r.ExitTax.Due, r.ExitTax.TaxDue)
	add("dirt", "", r.DIRT.Due, r.DIRT.TaxDue)
	slices.SortStableFunc(r.Summary.PaymentDeadlines, func(a, b PaymentDeadline) int { return a.Due.Compare(b.Due) })
}

// TaxDue returns the tax due in the report for a regime.
func (r *Report) TaxDue(regime Regime) Money {
	if regime == ExitTax {
		return r.ExitTax.TaxDue
	}
	return r.CGT.TaxDue
}
