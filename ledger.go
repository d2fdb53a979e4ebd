package irtax

import (
	"slices"
	"sort"
)

// Ledger represents a list of records.
//
// In a Ledger records are always in chronological order, records on the same
// day keep their insertion order.
type Ledger struct {
	records []Record
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{records: make([]Record, 0)}
}

// Append adds records to the ledger.
func (l *Ledger) Append(recs ...Record) {
	l.records = append(l.records, recs...)
	l.stableSort() // Ensure the ledger remains sorted after appending
}

// Len returns the number of records.
func (l *Ledger) Len() int { return len(l.records) }

// Records returns a copy of all records.
func (l *Ledger) Records() []Record { return slices.Clone(l.records) }

// Transactions returns the buy and sell transactions in chronological order.
func (l *Ledger) Transactions() []Transaction {
	var txs []Transaction
	for _, r := range l.records {
		if tx, ok := r.(Transaction); ok {
			txs = append(txs, tx)
		}
	}
	return txs
}

// Income returns the income events in chronological order.
func (l *Ledger) Income() []IncomeEvent {
	var evs []IncomeEvent
	for _, r := range l.records {
		if e, ok := r.(IncomeEvent); ok {
			evs = append(evs, e)
		}
	}
	return evs
}

// Owners returns the sorted list of distinct owners.
func (l *Ledger) Owners() []string {
	seen := make(map[string]struct{})
	for _, r := range l.records {
		seen[r.Who()] = struct{}{}
	}
	owners := make([]string, 0, len(seen))
	for o := range seen {
		owners = append(owners, o)
	}
	slices.Sort(owners)
	return owners
}

// Assets returns the sorted list of distinct assets traded.
func (l *Ledger) Assets() []string {
	seen := make(map[string]struct{})
	for _, tx := range l.Transactions() {
		seen[tx.Asset] = struct{}{}
	}
	assets := make([]string, 0, len(seen))
	for a := range seen {
		assets = append(assets, a)
	}
	slices.Sort(assets)
	return assets
}

// Clone returns a snapshot of the ledger. Records are values so the snapshot
// is not affected by later appends to l.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{records: slices.Clone(l.records)}
}

// ForOwner returns a snapshot of the records of one owner.
func (l *Ledger) ForOwner(owner string) *Ledger {
	sub := NewLedger()
	for _, r := range l.records {
		if r.Who() == owner {
			sub.records = append(sub.records, r)
		}
	}
	return sub
}

// stableSort sorts the ledger by record date. The sort is stable, meaning
// records on the same day maintain their original relative order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.records, func(i, j int) bool {
		return l.records[i].When().Before(l.records[j].When())
	})
}
