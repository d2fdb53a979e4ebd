package irtax

import (
	"github.com/etnz/irtax/date"
)

// MatchRule records which statutory rule supplied a consumed lot portion.
type MatchRule string

const (
	SameDay         MatchRule = "SAME_DAY"
	BedAndBreakfast MatchRule = "BED_AND_BREAKFAST"
	FIFO            MatchRule = "FIFO"
	Deemed          MatchRule = "DEEMED"
)

// Portion is the part of a lot consumed by a disposal.
type Portion struct {
	Rule     MatchRule `json:"rule"`
	Acquired date.Date `json:"acquired"`
	Quantity Quantity  `json:"quantity"`
	Cost     Money     `json:"cost"`
}

// Disposal is the realized (or deemed) disposal of a quantity of an asset.
type Disposal struct {
	Owner    string    `json:"owner,omitempty"`
	Asset    string    `json:"asset"`
	Regime   Regime    `json:"regime"`
	Date     date.Date `json:"date"`
	Quantity Quantity  `json:"quantity"`
	Proceeds Money     `json:"proceeds"`
	Cost     Money     `json:"cost_basis"`
	Gain     Money     `json:"gain"` // Gain is exact, negative for a loss.
	Deemed   bool      `json:"deemed"`
	Portions []Portion `json:"portions"`
}

func newDisposal(owner, asset string, regime Regime, on date.Date, proceeds Money, portions []Portion) Disposal {
	d := Disposal{Owner: owner, Asset: asset, Regime: regime, Date: on, Quantity: Q(0), Proceeds: proceeds, Portions: portions}
	for _, p := range portions {
		d.Quantity = d.Quantity.Add(p.Quantity)
		d.Cost = d.Cost.Add(p.Cost)
		d.Deemed = d.Deemed || p.Rule == Deemed
	}
	d.Gain = d.Proceeds.Sub(d.Cost)
	return d
}

// Rules returns the distinct rules that supplied the disposal, in order of use.
func (d Disposal) Rules() []MatchRule {
	var rules []MatchRule
	for _, p := range d.Portions {
		if len(rules) == 0 || rules[len(rules)-1] != p.Rule {
			rules = append(rules, p.Rule)
		}
	}
	return rules
}

// Book is the outcome of matching the transactions of one owner and one asset.
type Book struct {
	Owner     string
	Asset     string
	Regime    Regime
	Disposals []Disposal
	Open      []Lot // Open lots acquired on or before the evaluation date.
	Pending   []PendingValuation
	Issues    []Issue
}

// Held returns the total open quantity.
func (b Book) Held() Quantity { return lots(b.Open).sum(func(Lot) bool { return true }) }

func (b *Book) issue(on date.Date, err error) {
	b.Issues = append(b.Issues, Issue{Owner: b.Owner, Asset: b.Asset, Date: on, Err: err})
}

// Matcher is the lot matching engine.
type Matcher struct {
	// BedAndBreakfastDays is the look-ahead window of the bed and breakfast rule.
	BedAndBreakfastDays int
	// Scheduler applies Exit Tax deemed disposals between sales.
	Scheduler DeemedScheduler
}

// NewMatcher creates a Matcher from a rate table and the caller's market values.
func NewMatcher(rates RateTable, values Valuations) Matcher {
	return Matcher{
		BedAndBreakfastDays: rates.BedAndBreakfastDays,
		Scheduler:           DeemedScheduler{Years: rates.DeemedDisposalYears, Valuations: values},
	}
}

// Match matches the sales of one owner and one asset against its buys.
//
// txs must be the complete, chronologically sorted list of valid transactions
// of that partition: bed and breakfast matching looks at buys after the sale.
// Sales after asOf are ignored, and so are buys after asOf plus the bed and
// breakfast window.
//
// A sale needing more than the eligible open quantity is reported as an
// InsufficientLotsError issue and consumes nothing.
func (m Matcher) Match(owner, asset string, regime Regime, txs []Transaction, asOf date.Date) Book {
	b := Book{Owner: owner, Asset: asset, Regime: regime}
	switch regime {
	case ExitTax:
		m.matchExitTax(&b, txs, asOf)
	default:
		m.matchCGT(&b, txs, asOf)
	}
	return b
}

// matchCGT applies the same day rule, then the bed and breakfast rule, then FIFO.
func (m Matcher) matchCGT(b *Book, txs []Transaction, asOf date.Date) {
	horizon := asOf.Add(m.BedAndBreakfastDays)
	var open lots
	for i, tx := range txs {
		if tx.Kind == CmdBuy && !tx.Date.After(horizon) {
			open = append(open, newLot(i, tx))
		}
	}

	for _, tx := range txs {
		if tx.Kind != CmdSell || tx.Date.After(asOf) {
			continue
		}
		day := tx.Date
		window := day.Add(m.BedAndBreakfastDays)
		rules := []struct {
			rule     MatchRule
			eligible func(Lot) bool
		}{
			{SameDay, func(l Lot) bool { return l.Original == day }},
			{BedAndBreakfast, func(l Lot) bool { return l.Original.After(day) && !l.Original.After(window) }},
			{FIFO, func(l Lot) bool { return l.Original.Before(day) }},
		}

		available := open.sum(func(l Lot) bool { return !l.Original.After(window) })
		if available.LessThan(tx.Quantity) {
			b.issue(day, &InsufficientLotsError{Asset: b.Asset, Date: day, Requested: tx.Quantity, Available: available})
			continue
		}

		var portions []Portion
		need := tx.Quantity
		for _, r := range rules {
			var ps []Portion
			ps, open, need = open.take(need, r.rule, r.eligible)
			portions = append(portions, ps...)
		}
		b.Disposals = append(b.Disposals, newDisposal(b.Owner, b.Asset, b.Regime, day, tx.Proceeds(), portions))
	}

	for _, l := range open {
		if !l.Original.After(asOf) {
			b.Open = append(b.Open, l)
		}
	}
}

// matchExitTax applies strict FIFO, with deemed disposals interleaved: a
// deemed disposal due strictly before a transaction happens first.
func (m Matcher) matchExitTax(b *Book, txs []Transaction, asOf date.Date) {
	all := func(Lot) bool { return true }
	var open lots
	for i, tx := range txs {
		if tx.Date.After(asOf) {
			break
		}
		open = m.Scheduler.apply(b, open, tx.Date, false)

		switch tx.Kind {
		case CmdBuy:
			open = append(open, newLot(i, tx))
		case CmdSell:
			available := open.sum(all)
			if available.LessThan(tx.Quantity) {
				b.issue(tx.Date, &InsufficientLotsError{Asset: b.Asset, Date: tx.Date, Requested: tx.Quantity, Available: available})
				continue
			}
			var portions []Portion
			portions, open, _ = open.take(tx.Quantity, FIFO, all)
			b.Disposals = append(b.Disposals, newDisposal(b.Owner, b.Asset, b.Regime, tx.Date, tx.Proceeds(), portions))
		}
	}
	b.Open = m.Scheduler.apply(b, open, asOf, true)
}
