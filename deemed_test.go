package irtax

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func matchExit(values Valuations, asOf string, txs ...Transaction) Book {
	return NewMatcher(IrishRates(2024), values).Match("", IWDA, ExitTax, txs, day(asOf))
}

func TestDeemed_MissingValuation(t *testing.T) {
	b := matchExit(nil, "2024-06-01", buy(IWDA, "2016-05-01", 10, 50))

	if len(b.Disposals) != 0 {
		t.Errorf("got %d disposals, want none without a market value", len(b.Disposals))
	}
	want := []PendingValuation{{Asset: IWDA, Acquired: day("2016-05-01"), Due: day("2024-05-01"), Quantity: Q(10), Cost: EUR(500)}}
	if diff := cmp.Diff(want, b.Pending, cmpOpts); diff != "" {
		t.Errorf("pending mismatch (-want +got):\n%s", diff)
	}
	var missing *MissingValuationError
	if len(b.Issues) != 1 || !errors.As(b.Issues[0], &missing) {
		t.Fatalf("issues = %v, want one MissingValuationError", b.Issues)
	}
	if missing.Due != day("2024-05-01") {
		t.Errorf("MissingValuationError.Due = %s, want 2024-05-01", missing.Due)
	}
	// The lot is kept as it was.
	if len(b.Open) != 1 || b.Open[0].Acquired != day("2016-05-01") || !b.Open[0].Pending {
		t.Errorf("open = %+v, want the original lot flagged pending", b.Open)
	}
}

func TestDeemed_Disposal(t *testing.T) {
	values := Valuations{}
	values.Set(IWDA, day("2016-05-01"), decimal.NewFromInt(80))
	b := matchExit(values, "2024-06-01", buy(IWDA, "2016-05-01", 10, 50))

	want := []Disposal{{
		Asset:    IWDA,
		Regime:   ExitTax,
		Date:     day("2024-05-01"),
		Quantity: Q(10),
		Proceeds: EUR(800),
		Cost:     EUR(500),
		Gain:     EUR(300),
		Deemed:   true,
		Portions: []Portion{{Rule: Deemed, Acquired: day("2016-05-01"), Quantity: Q(10), Cost: EUR(500)}},
	}}
	if diff := cmp.Diff(want, b.Disposals, cmpOpts); diff != "" {
		t.Errorf("disposals mismatch (-want +got):\n%s", diff)
	}
	// cost and clock reset, FIFO position kept.
	wantOpen := []Lot{{Seq: 0, Original: day("2016-05-01"), Acquired: day("2024-05-01"), Quantity: Q(10), Cost: EUR(800)}}
	if diff := cmp.Diff(wantOpen, b.Open, cmpOpts); diff != "" {
		t.Errorf("open lots mismatch (-want +got):\n%s", diff)
	}
}

func TestDeemed_Compounds(t *testing.T) {
	values := Valuations{}
	values.Set(IWDA, day("2016-05-01"), decimal.NewFromInt(80))
	values.Set(IWDA, day("2024-05-01"), decimal.NewFromInt(100))
	b := matchExit(values, "2033-01-01", buy(IWDA, "2016-05-01", 10, 50))

	if len(b.Disposals) != 2 {
		t.Fatalf("got %d disposals, want 2", len(b.Disposals))
	}
	second := b.Disposals[1]
	if second.Date != day("2032-05-01") || !second.Cost.Equal(EUR(800)) || !second.Gain.Equal(EUR(200)) {
		t.Errorf("second cycle = %s cost %s gain %s, want 2032-05-01 cost 800 gain 200", second.Date, second.Cost.Decimal(), second.Gain.Decimal())
	}
}

func TestDeemed_AssetWideValue(t *testing.T) {
	values := Valuations{}
	values[LotKey{Asset: IWDA}] = decimal.NewFromInt(60)
	b := matchExit(values, "2024-12-31",
		buy(IWDA, "2016-05-01", 10, 50),
		buy(IWDA, "2016-09-01", 5, 40),
	)
	if len(b.Disposals) != 2 || len(b.Pending) != 0 {
		t.Fatalf("got %d disposals and %d pending, want 2 and 0", len(b.Disposals), len(b.Pending))
	}
	if !b.Disposals[1].Gain.Equal(EUR(100)) {
		t.Errorf("gain = %s, want 100", b.Disposals[1].Gain.Decimal())
	}
}

func TestDeemed_InterleavedWithSales(t *testing.T) {
	values := Valuations{LotKey{Asset: IWDA}: decimal.NewFromInt(20)}
	testCases := []struct {
		name  string
		sale  string
		gains []float64
	}{
		// deemed on 2018-01-01 first, the sale then uses the reset cost.
		{"sale after the deemed date", "2018-06-01", []float64{100, 50}},
		// the sale comes first, nothing left to deem.
		{"sale on the deemed date", "2018-01-01", []float64{150}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := matchExit(values, "2018-12-31",
				buy(IWDA, "2010-01-01", 10, 10),
				sell(IWDA, tc.sale, 10, 25),
			)
			var gains []float64
			for _, d := range b.Disposals {
				gains = append(gains, d.Gain.Decimal().InexactFloat64())
			}
			if diff := cmp.Diff(tc.gains, gains); diff != "" {
				t.Errorf("gains mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeemed_Idempotent(t *testing.T) {
	values := Valuations{}
	values.Set(IWDA, day("2016-05-01"), decimal.NewFromInt(80))
	s := NewMatcher(IrishRates(2024), values).Scheduler
	txs := []Transaction{
		buy(IWDA, "2016-05-01", 10, 50),
		buy(IWDA, "2016-07-01", 10, 55), // no value: pending
	}
	// matched before anything is due
	b := matchExit(values, "2020-01-01", txs...)
	if len(b.Disposals) != 0 {
		t.Fatalf("got %d disposals before the deemed date", len(b.Disposals))
	}

	once := s.Apply(b, day("2024-08-01"))
	twice := s.Apply(once, day("2024-08-01"))
	if len(once.Disposals) != 1 || len(once.Pending) != 1 {
		t.Fatalf("first Apply: %d disposals and %d pending, want 1 and 1", len(once.Disposals), len(once.Pending))
	}
	if diff := cmp.Diff(once, twice, cmpOpts); diff != "" {
		t.Errorf("second Apply changed the book (-once +twice):\n%s", diff)
	}
	if len(b.Disposals) != 0 || b.Open[0].Acquired != day("2016-05-01") {
		t.Errorf("Apply modified its input")
	}

	// Applying on the engine output is a no-op as well.
	matched := matchExit(values, "2024-08-01", txs...)
	if diff := cmp.Diff(matched, s.Apply(matched, day("2024-08-01")), cmpOpts); diff != "" {
		t.Errorf("Apply on matched book changed it (-matched +applied):\n%s", diff)
	}
}

func TestDeemed_Upcoming(t *testing.T) {
	s := NewMatcher(IrishRates(2024), nil).Scheduler
	b := matchExit(nil, "2024-12-31",
		buy(IWDA, "2018-02-01", 5, 40),
		buy(IWDA, "2020-03-01", 10, 50),
	)
	all := s.Upcoming(b, day("2024-12-31"), 0)
	want := []UpcomingDisposal{
		{Asset: IWDA, Acquired: day("2018-02-01"), Due: day("2026-02-01"), Quantity: Q(5), Cost: EUR(200)},
		{Asset: IWDA, Acquired: day("2020-03-01"), Due: day("2028-03-01"), Quantity: Q(10), Cost: EUR(500)},
	}
	if diff := cmp.Diff(want, all, cmpOpts); diff != "" {
		t.Errorf("upcoming mismatch (-want +got):\n%s", diff)
	}
	if got := s.Upcoming(b, day("2024-12-31"), 3); len(got) != 1 {
		t.Errorf("Upcoming within 3 years = %d entries, want 1", len(got))
	}
	cgt := matchCGT("2024-12-31", buy(AAPL, "2010-01-01", 1, 1))
	if got := s.Upcoming(cgt, day("2024-12-31"), 0); got != nil {
		t.Errorf("CGT assets have no deemed disposal, got %v", got)
	}
}

func TestDeemed_LeapDay(t *testing.T) {
	s := DeemedScheduler{Years: 8}
	l := Lot{Acquired: day("2016-02-29")}
	if got := s.Due(l); got != day("2024-02-29") {
		t.Errorf("Due = %s, want 2024-02-29", got)
	}
	l = Lot{Acquired: day("2020-02-29")}
	if got := (DeemedScheduler{Years: 1}).Due(l); got != day("2021-02-28") {
		t.Errorf("Due = %s, want 2021-02-28", got)
	}
}
