package irtax

import (
	"time"

	"github.com/etnz/irtax/date"
)

// RegimeTotals is the common shape of every block of a report.
type RegimeTotals struct {
	Gains         Money `json:"gains"`
	Losses        Money `json:"losses"` // Losses is positive.
	Net           Money `json:"net"`
	ExemptionUsed Money `json:"exemption_used"`
	Taxable       Money `json:"taxable"`
	TaxDue        Money `json:"tax_due"`
}

// gainSums accumulates disposals rounded one by one to the minor unit.
type gainSums struct {
	gains, losses, proceeds, cost Money
	deemedGains                   Money
}

func sumDisposals(disposals []Disposal, regime Regime, period date.Range, zero Money) gainSums {
	s := gainSums{gains: zero, losses: zero, proceeds: zero, cost: zero, deemedGains: zero}
	for _, d := range disposals {
		if d.Regime != regime || !period.Contains(d.Date) {
			continue
		}
		gain := d.Gain.Round()
		if gain.IsNegative() {
			s.losses = s.losses.Sub(gain)
		} else {
			s.gains = s.gains.Add(gain)
			if d.Deemed {
				s.deemedGains = s.deemedGains.Add(gain)
			}
		}
		s.proceeds = s.proceeds.Add(d.Proceeds.Round())
		s.cost = s.cost.Add(d.Cost.Round())
	}
	return s
}

// PaymentPeriod is one of the two CGT payment periods of a tax year.
type PaymentPeriod struct {
	Period string    `json:"period"`
	From   date.Date `json:"from"`
	To     date.Date `json:"to"`
	Due    date.Date `json:"due_date"`
	Gains  Money     `json:"gains"`
	Losses Money     `json:"losses"`
	TaxDue Money     `json:"tax_due"`
}

// CGTTotals is the Capital Gains Tax block of a report.
type CGTTotals struct {
	RegimeTotals
	Consideration        Money           `json:"consideration"`
	AllowableCosts       Money           `json:"allowable_costs"`
	LossesCarriedForward Money           `json:"losses_carried_forward"`
	LossesUsed           Money           `json:"losses_used"`
	LossesToCarryForward Money           `json:"losses_to_carry_forward"`
	PaymentPeriods       []PaymentPeriod `json:"payment_periods"`
}

// cgtLiability applies the carried forward losses, then the annual exemption,
// to a net gain.
func cgtLiability(net, carried Money, rates RateTable) (lossesUsed, exemptionUsed, taxable, tax Money) {
	zero := rates.Zero()
	if !net.IsPositive() {
		return zero, zero, zero, zero
	}
	lossesUsed = carried.Min(net)
	remaining := net.Sub(lossesUsed)
	exemptionUsed = rates.Exemption().Min(remaining)
	taxable = remaining.Sub(exemptionUsed)
	tax = taxable.MulRate(rates.CGTRate).Round()
	return lossesUsed, exemptionUsed, taxable, tax
}

// AggregateCGT computes the CGT liability of a tax year from the disposals
// and the losses carried forward from previous years.
//
// The initial period (1 January to 30 November) pays the tax computed on
// its own disposals, capped at the year total, by 15 December. The later
// period (December) pays the remainder by 31 January of the following year.
func AggregateCGT(disposals []Disposal, year int, carried Money, rates RateTable) CGTTotals {
	zero := rates.Zero()
	carried = zero.Add(carried)
	s := sumDisposals(disposals, StandardCGT, date.Year(year), zero)

	net := s.gains.Sub(s.losses)
	lossesUsed, exemptionUsed, taxable, tax := cgtLiability(net, carried, rates)
	t := CGTTotals{
		RegimeTotals: RegimeTotals{
			Gains:         s.gains,
			Losses:        s.losses,
			Net:           net,
			ExemptionUsed: exemptionUsed,
			Taxable:       taxable,
			TaxDue:        tax,
		},
		Consideration:        s.proceeds,
		AllowableCosts:       s.cost,
		LossesCarriedForward: carried,
		LossesUsed:           lossesUsed,
		LossesToCarryForward: carried.Sub(lossesUsed).Add(net.Neg().Floor()),
	}

	initial := date.Range{From: date.New(year, time.January, 1), To: date.New(year, time.November, 30)}
	later := date.Range{From: date.New(year, time.December, 1), To: date.New(year, time.December, 31)}
	si := sumDisposals(disposals, StandardCGT, initial, zero)
	sl := sumDisposals(disposals, StandardCGT, later, zero)
	_, _, _, initialTax := cgtLiability(si.gains.Sub(si.losses), carried, rates)
	initialTax = initialTax.Min(tax)
	t.PaymentPeriods = []PaymentPeriod{
		{Period: "jan_nov", From: initial.From, To: initial.To, Due: date.New(year, time.December, 15), Gains: si.gains, Losses: si.losses, TaxDue: initialTax},
		{Period: "dec", From: later.From, To: later.To, Due: date.New(year+1, time.January, 31), Gains: sl.gains, Losses: sl.losses, TaxDue: tax.Sub(initialTax)},
	}
	return t
}

// ExitTaxTotals is the Exit Tax block of a report.
type ExitTaxTotals struct {
	RegimeTotals
	DeemedDisposalGains Money              `json:"deemed_disposal_gains"`
	LossesVoided        Money              `json:"losses_voided"`
	Due                 date.Date          `json:"due_date"`
	Upcoming            []UpcomingDisposal `json:"upcoming_deemed_disposals"`
	Pending             []PendingValuation `json:"pending_valuations"`
}

// AggregateExitTax computes the Exit Tax liability of a tax year. Losses only
// offset Exit Tax gains of the same year, what is left is void.
func AggregateExitTax(disposals []Disposal, year int, rates RateTable) ExitTaxTotals {
	zero := rates.Zero()
	s := sumDisposals(disposals, ExitTax, date.Year(year), zero)
	net := s.gains.Sub(s.losses)
	taxable := net.Floor()
	return ExitTaxTotals{
		RegimeTotals: RegimeTotals{
			Gains:         s.gains,
			Losses:        s.losses,
			Net:           net,
			ExemptionUsed: zero,
			Taxable:       taxable,
			TaxDue:        taxable.MulRate(rates.ExitTaxRate).Round(),
		},
		DeemedDisposalGains: s.deemedGains,
		LossesVoided:        net.Neg().Floor(),
		Due:                 date.New(year, time.December, 15),
		Upcoming:            []UpcomingDisposal{},
		Pending:             []PendingValuation{},
	}
}
