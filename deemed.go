package irtax

import (
	"slices"

	"github.com/etnz/irtax/date"
	"github.com/shopspring/decimal"
)

// LotKey identifies the lots of an asset acquired on a date. A zero Acquired
// date stands for every lot of the asset.
type LotKey struct {
	Asset    string
	Acquired date.Date
}

// Valuations holds market unit values supplied by the caller for deemed
// disposals. The engine never sources prices.
type Valuations map[LotKey]decimal.Decimal

// Set records the unit value of the lots of asset acquired on a date. Use a
// zero date to set a value for every lot of the asset.
func (v Valuations) Set(asset string, acquired date.Date, unit decimal.Decimal) {
	v[LotKey{Asset: asset, Acquired: acquired}] = unit
}

// Lookup returns the unit value of the asset lot acquired on a date, falling
// back to the asset-wide value.
func (v Valuations) Lookup(asset string, acquired date.Date) (decimal.Decimal, bool) {
	if unit, ok := v[LotKey{Asset: asset, Acquired: acquired}]; ok {
		return unit, true
	}
	unit, ok := v[LotKey{Asset: asset}]
	return unit, ok
}

// PendingValuation is a deemed disposal that is due but could not be computed
// for lack of a market value.
type PendingValuation struct {
	Asset    string    `json:"asset"`
	Acquired date.Date `json:"acquired"`
	Due      date.Date `json:"deemed_disposal_date"`
	Quantity Quantity  `json:"quantity"`
	Cost     Money     `json:"cost_basis"`
}

// UpcomingDisposal is a deemed disposal not yet due.
type UpcomingDisposal struct {
	Asset         string    `json:"asset"`
	Acquired      date.Date `json:"acquired"`
	Due           date.Date `json:"deemed_disposal_date"`
	Quantity      Quantity  `json:"quantity"`
	Cost          Money     `json:"cost_basis"`
	EstimatedGain *Money    `json:"estimated_gain,omitempty"`
	EstimatedTax  *Money    `json:"estimated_tax,omitempty"`
}

// DeemedScheduler applies the eight-year deemed disposal rule to Exit Tax lots.
//
// A lot held for Years years is disposed of at its market value on its
// deemed date. Its cost becomes that value and its clock restarts on the
// deemed date, so the next cycle comes Years years later.
type DeemedScheduler struct {
	Years      int
	Valuations Valuations
}

// Due returns the deemed disposal date of a lot.
func (s DeemedScheduler) Due(l Lot) date.Date { return l.Acquired.AddYears(s.Years) }

// Apply disposes of every open lot of b whose deemed date is on or before
// asOf. Lots without a market value are reported as pending instead.
//
// Apply does not modify b, and applying it to its own result with the same
// date yields the same Book.
func (s DeemedScheduler) Apply(b Book, asOf date.Date) Book {
	if b.Regime != ExitTax {
		return b
	}
	out := b
	out.Disposals = slices.Clone(b.Disposals)
	out.Pending = slices.Clone(b.Pending)
	out.Issues = slices.Clone(b.Issues)
	out.Open = s.apply(&out, slices.Clone(lots(b.Open)), asOf, true)
	return out
}

// apply disposes of the lots due before bound, or on bound when inclusive,
// earliest deemed date first. Deemed disposals and pending valuations are
// recorded in b. open is modified in place.
func (s DeemedScheduler) apply(b *Book, open lots, bound date.Date, inclusive bool) lots {
	if s.Years <= 0 {
		return open
	}
	for {
		next := -1
		for i, l := range open {
			if l.Pending {
				continue
			}
			due := s.Due(l)
			if due.After(bound) || (!inclusive && due == bound) {
				continue
			}
			if next < 0 || due.Before(s.Due(open[next])) {
				next = i
			}
		}
		if next < 0 {
			return open
		}

		l := open[next]
		due := s.Due(l)
		unit, ok := s.Valuations.Lookup(b.Asset, l.Acquired)
		if !ok {
			open[next].Pending = true
			b.Pending = append(b.Pending, PendingValuation{Asset: b.Asset, Acquired: l.Acquired, Due: due, Quantity: l.Quantity, Cost: l.Cost})
			b.issue(due, &MissingValuationError{Asset: b.Asset, Acquired: l.Acquired, Due: due, Quantity: l.Quantity})
			continue
		}

		value := M(unit, l.Cost.cur).Mul(l.Quantity)
		portion := Portion{Rule: Deemed, Acquired: l.Acquired, Quantity: l.Quantity, Cost: l.Cost}
		b.Disposals = append(b.Disposals, newDisposal(b.Owner, b.Asset, b.Regime, due, value, []Portion{portion}))
		open[next].Acquired = due
		open[next].Cost = value
	}
}

// Upcoming lists the deemed disposals of b due after asOf, earliest first.
// When years is positive only those due within years years of asOf are listed.
func (s DeemedScheduler) Upcoming(b Book, asOf date.Date, years int) []UpcomingDisposal {
	if b.Regime != ExitTax {
		return nil
	}
	var list []UpcomingDisposal
	for _, l := range b.Open {
		due := s.Due(l)
		if !due.After(asOf) || (years > 0 && due.After(asOf.AddYears(years))) {
			continue
		}
		list = append(list, UpcomingDisposal{Asset: b.Asset, Acquired: l.Acquired, Due: due, Quantity: l.Quantity, Cost: l.Cost})
	}
	slices.SortStableFunc(list, func(a, b UpcomingDisposal) int { return a.Due.Compare(b.Due) })
	return list
}
