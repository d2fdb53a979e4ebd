package irtax

import "github.com/etnz/irtax/date"

// Lot is an open position created by one buy.
type Lot struct {
	Seq      int       `json:"-"`        // insertion order, breaks ties between equal dates
	Original date.Date `json:"original"` // date of the buy, position in FIFO order
	Acquired date.Date `json:"acquired"` // start of the deemed disposal clock
	Quantity Quantity  `json:"quantity"`
	Cost     Money     `json:"cost_basis"` // Total remaining cost, fees included.
	Pending  bool      `json:"pending_valuation,omitempty"`
}

func newLot(seq int, tx Transaction) Lot {
	return Lot{Seq: seq, Original: tx.Date, Acquired: tx.Date, Quantity: tx.Quantity, Cost: tx.Cost()}
}

// UnitCost returns the cost of one unit of the lot.
func (l Lot) UnitCost() Money { return l.Cost.Div(l.Quantity) }

// split returns the part of l covering q and the part that remains.
// q must not exceed l.Quantity. The costs of both parts add up to l.Cost exactly.
func (l Lot) split(q Quantity) (taken, rest Lot) {
	if !q.LessThan(l.Quantity) {
		rest = l
		rest.Quantity, rest.Cost = Q(0), Money{cur: l.Cost.cur}
		return l, rest
	}
	cost := l.Cost.Mul(q).Div(l.Quantity)
	taken, rest = l, l
	taken.Quantity, taken.Cost = q, cost
	rest.Quantity, rest.Cost = l.Quantity.Sub(q), l.Cost.Sub(cost)
	return taken, rest
}

// lots is kept in FIFO order: by original acquisition date, then by Seq.
type lots []Lot

// sum returns the quantity held in the eligible lots.
func (ls lots) sum(eligible func(Lot) bool) Quantity {
	total := Q(0)
	for _, l := range ls {
		if eligible(l) {
			total = total.Add(l.Quantity)
		}
	}
	return total
}

// take consumes up to q units from the eligible lots, in order.
//
// It returns the consumed portions tagged with rule, a new collection
// without the consumed quantity, and the quantity that could not be served.
// ls is not modified.
func (ls lots) take(q Quantity, rule MatchRule, eligible func(Lot) bool) ([]Portion, lots, Quantity) {
	var portions []Portion
	rest := make(lots, 0, len(ls))
	for _, l := range ls {
		if !q.IsPositive() || !eligible(l) {
			rest = append(rest, l)
			continue
		}
		taken, remaining := l.split(q.Min(l.Quantity))
		portions = append(portions, Portion{Rule: rule, Acquired: taken.Acquired, Quantity: taken.Quantity, Cost: taken.Cost})
		q = q.Sub(taken.Quantity)
		if remaining.Quantity.IsPositive() {
			rest = append(rest, remaining)
		}
	}
	return portions, rest, q
}
