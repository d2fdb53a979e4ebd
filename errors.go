package irtax

import (
	"errors"
	"fmt"

	"github.com/etnz/irtax/date"
)

// Structural errors abort a calculation.
var (
	ErrInvalidTaxYear   = errors.New("invalid tax year")
	ErrInvalidRateTable = errors.New("invalid rate table")
	ErrInvalidRequest   = errors.New("invalid request")
)

// InsufficientLotsError reports a sale of more units than the eligible open
// lots hold. No lot is consumed for that sale.
type InsufficientLotsError struct {
	Asset     string
	Date      date.Date
	Requested Quantity
	Available Quantity
}

func (e *InsufficientLotsError) Error() string {
	return fmt.Sprintf("insufficient lots for %s on %s: requested %s, available %s", e.Asset, e.Date, e.Requested, e.Available)
}

// UnclassifiableAssetError reports an identifier that is not a valid ISIN
// while the classifier is not lenient.
type UnclassifiableAssetError struct {
	Asset  string
	Reason error
}

func (e *UnclassifiableAssetError) Error() string {
	return fmt.Sprintf("cannot classify asset %q: %v", e.Asset, e.Reason)
}

func (e *UnclassifiableAssetError) Unwrap() error { return e.Reason }

// MissingValuationError reports a deemed disposal that is due but cannot be
// computed because no market value was supplied for the lot.
type MissingValuationError struct {
	Asset    string
	Acquired date.Date
	Due      date.Date
	Quantity Quantity
}

func (e *MissingValuationError) Error() string {
	return fmt.Sprintf("deemed disposal of %s %s acquired %s due %s: missing market value", e.Quantity, e.Asset, e.Acquired, e.Due)
}

// InvalidTransactionError reports a ledger record that cannot be processed.
type InvalidTransactionError struct {
	Asset  string
	Date   date.Date
	Reason string
}

func (e *InvalidTransactionError) Error() string {
	if e.Asset == "" {
		return fmt.Sprintf("invalid record on %s: %s", e.Date, e.Reason)
	}
	return fmt.Sprintf("invalid transaction %s on %s: %s", e.Asset, e.Date, e.Reason)
}

// Issue is a non fatal problem attached to one record of the calculation.
type Issue struct {
	Owner string
	Asset string
	Date  date.Date
	Err   error
}

func (i Issue) Error() string { return i.Err.Error() }
func (i Issue) Unwrap() error { return i.Err }

// Kind is a stable short name for the error class of the issue.
func (i Issue) Kind() string {
	var (
		insufficient *InsufficientLotsError
		unclassified *UnclassifiableAssetError
		missing      *MissingValuationError
		invalid      *InvalidTransactionError
	)
	switch {
	case errors.As(i.Err, &insufficient):
		return "insufficient_lots"
	case errors.As(i.Err, &unclassified):
		return "unclassifiable_asset"
	case errors.As(i.Err, &missing):
		return "missing_valuation"
	case errors.As(i.Err, &invalid):
		return "invalid_transaction"
	}
	return "error"
}

func (i Issue) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", i.Kind())
	w.Optional("owner", i.Owner)
	w.Optional("asset", i.Asset)
	if !i.Date.IsZero() {
		w.Append("date", i.Date)
	}
	w.Append("message", i.Err.Error())
	return w.MarshalJSON()
}
