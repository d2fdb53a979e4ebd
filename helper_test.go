package irtax

import (
	"github.com/etnz/irtax/date"
	"github.com/google/go-cmp/cmp"
)

// Identifiers with a valid check digit.
const (
	AAPL    = "US0378331005" // Standard CGT
	MSFT    = "US5949181045" // Standard CGT
	IWDA    = "IE00B4L5Y983" // Exit Tax, Irish domiciled ETF
	VWRL    = "IE00BK5BQT80" // Exit Tax
	LUFUND  = "LU0274208692" // Exit Tax
	SIEMENS = "DE0007664039" // Exit Tax by prefix
)

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// day is a short alias for date.MustParse.
func day(s string) date.Date { return date.MustParse(s) }

func buy(asset, on string, qty, price float64) Transaction {
	return NewBuy("", asset, day(on), Q(qty), EUR(price), EUR(0))
}

func sell(asset, on string, qty, price float64) Transaction {
	return NewSell("", asset, day(on), Q(qty), EUR(price), EUR(0))
}

// ledgerOf creates a ledger from records.
func ledgerOf(recs ...Record) *Ledger {
	l := NewLedger()
	l.Append(recs...)
	return l
}

// cmpOpts compares the value types of the package by value.
var cmpOpts = cmp.Options{
	cmp.Comparer(func(a, b Money) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b Quantity) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b date.Date) bool { return a == b }),
}
