package irtax

import (
	"slices"

	"github.com/etnz/irtax/date"
)

// Holding is the open position of an owner in one asset.
type Holding struct {
	Owner    string     `json:"owner,omitempty"`
	Asset    string     `json:"asset"`
	Regime   Regime     `json:"regime"`
	Quantity Quantity   `json:"quantity"`
	Cost     Money      `json:"cost_basis"`
	Lots     []Lot      `json:"lots"`
	NextDue  *date.Date `json:"next_deemed_disposal,omitempty"`
}

// Holdings lists the open lots of an owner on a date, after the deemed
// disposals due by then. Assets fully sold are left out.
func (c *Calculator) Holdings(ledger *Ledger, owner string, asOf date.Date, values Valuations) ([]Holding, []Issue, error) {
	if err := c.Rates.Validate(); err != nil {
		return nil, nil, err
	}
	snapshot, err := c.snapshot(ledger, owner)
	if err != nil {
		return nil, nil, err
	}
	r := c.match(snapshot, asOf, values)
	scheduler := NewMatcher(c.Rates, values).Scheduler

	var holdings []Holding
	for _, b := range r.books {
		if len(b.Open) == 0 {
			continue
		}
		h := Holding{Owner: b.Owner, Asset: b.Asset, Regime: b.Regime, Quantity: b.Held(), Cost: c.Rates.Zero(), Lots: b.Open}
		for _, l := range b.Open {
			h.Cost = h.Cost.Add(l.Cost)
			if b.Regime == ExitTax && !l.Pending {
				if due := scheduler.Due(l); h.NextDue == nil || due.Before(*h.NextDue) {
					h.NextDue = &due
				}
			}
		}
		holdings = append(holdings, h)
	}
	return holdings, pastIssues(r.issues, asOf), nil
}

// DeemedSchedule is the state of the deemed disposals of an owner on a date.
type DeemedSchedule struct {
	AsOf     date.Date          `json:"as_of"`
	Applied  []Disposal         `json:"applied"`
	Pending  []PendingValuation `json:"pending_valuations"`
	Upcoming []UpcomingDisposal `json:"upcoming"`
	Issues   []Issue            `json:"issues"`
}

// DeemedSchedule lists the deemed disposals applied up to asOf, the ones
// waiting for a valuation, and the upcoming ones within years years (all
// when years is 0).
func (c *Calculator) DeemedSchedule(ledger *Ledger, owner string, asOf date.Date, years int, values Valuations) (*DeemedSchedule, error) {
	if err := c.Rates.Validate(); err != nil {
		return nil, err
	}
	snapshot, err := c.snapshot(ledger, owner)
	if err != nil {
		return nil, err
	}
	r := c.match(snapshot, asOf, values)
	scheduler := NewMatcher(c.Rates, values).Scheduler

	s := &DeemedSchedule{AsOf: asOf, Applied: []Disposal{}, Pending: []PendingValuation{}, Upcoming: []UpcomingDisposal{}}
	for _, b := range r.books {
		for _, d := range b.Disposals {
			if d.Deemed {
				s.Applied = append(s.Applied, d)
			}
		}
		s.Pending = append(s.Pending, b.Pending...)
		s.Upcoming = append(s.Upcoming, scheduler.Upcoming(b, asOf, years)...)
	}
	slices.SortStableFunc(s.Applied, func(a, b Disposal) int { return a.Date.Compare(b.Date) })
	slices.SortStableFunc(s.Pending, func(a, b PendingValuation) int { return a.Due.Compare(b.Due) })
	slices.SortStableFunc(s.Upcoming, func(a, b UpcomingDisposal) int { return a.Due.Compare(b.Due) })
	c.estimate(s.Upcoming, values)
	s.Issues = pastIssues(r.issues, asOf)
	return s, nil
}

// pastIssues drops the issues of records after asOf.
func pastIssues(issues []Issue, asOf date.Date) []Issue {
	out := []Issue{}
	for _, is := range issues {
		if !is.Date.After(asOf) {
			out = append(out, is)
		}
	}
	return out
}
