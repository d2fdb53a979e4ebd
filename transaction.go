package irtax

import (
	"encoding/json"
	"fmt"

	"github.com/etnz/irtax/date"
	"github.com/shopspring/decimal"
)

// CommandType is a typed string for identifying ledger records.
type CommandType string

// Command types used for identifying ledger records.
const (
	CmdBuy          CommandType = "buy"
	CmdSell         CommandType = "sell"
	CmdInterest     CommandType = "interest"
	CmdDividend     CommandType = "dividend"
	CmdDistribution CommandType = "distribution"
)

// Record is a line of the ledger: either a Transaction or an IncomeEvent.
type Record interface {
	What() CommandType // What returns the command type of the record (e.g., "buy", "interest").
	When() date.Date   // When returns the date on which the record occurred.
	Who() string       // Who returns the owner of the record.
	Validate() error
}

// UnknownRecord is a ledger line with a command outside the known set. It
// is kept as written so that formatting the ledger does not lose it, and it
// never validates.
type UnknownRecord struct {
	Command CommandType `json:"command"`
	Date    date.Date   `json:"date"`
	Owner   string      `json:"owner"`
	Asset   string      `json:"asset"`
	raw     json.RawMessage
}

func (u UnknownRecord) What() CommandType { return u.Command }
func (u UnknownRecord) When() date.Date   { return u.Date }
func (u UnknownRecord) Who() string       { return u.Owner }

// Validate always returns an *InvalidTransactionError.
func (u UnknownRecord) Validate() error {
	return &InvalidTransactionError{Asset: u.Asset, Date: u.Date, Reason: fmt.Sprintf("unknown ledger command %q", u.Command)}
}

// MarshalJSON writes the line as it was read.
func (u UnknownRecord) MarshalJSON() ([]byte, error) {
	if len(u.raw) == 0 {
		var w jsonObjectWriter
		w.Append("command", u.Command)
		w.Optional("date", u.Date)
		w.Optional("owner", u.Owner)
		w.Optional("asset", u.Asset)
		return w.MarshalJSON()
	}
	return u.raw, nil
}

// Transaction is a buy or a sell of an asset.
type Transaction struct {
	Owner    string
	Asset    string
	Kind     CommandType
	Date     date.Date
	Quantity Quantity
	Price    Money // Price is the unit price.
	Fees     Money
	Memo     string
}

// NewBuy creates a new buy Transaction.
func NewBuy(owner, asset string, day date.Date, quantity Quantity, price, fees Money) Transaction {
	return Transaction{Owner: owner, Asset: asset, Kind: CmdBuy, Date: day, Quantity: quantity, Price: price, Fees: fees}
}

// NewSell creates a new sell Transaction.
func NewSell(owner, asset string, day date.Date, quantity Quantity, price, fees Money) Transaction {
	return Transaction{Owner: owner, Asset: asset, Kind: CmdSell, Date: day, Quantity: quantity, Price: price, Fees: fees}
}

func (t Transaction) What() CommandType { return t.Kind }
func (t Transaction) When() date.Date   { return t.Date }
func (t Transaction) Who() string       { return t.Owner }

// Consideration is the unit price times the quantity.
func (t Transaction) Consideration() Money { return t.Price.Mul(t.Quantity) }

// Cost is the total cost of a buy, fees included.
func (t Transaction) Cost() Money { return t.Consideration().Add(t.Fees) }

// Proceeds is the net amount of a sell, fees deducted.
func (t Transaction) Proceeds() Money { return t.Consideration().Sub(t.Fees) }

// Validate returns an *InvalidTransactionError if t cannot be processed.
func (t Transaction) Validate() error {
	invalid := func(format string, args ...any) error {
		return &InvalidTransactionError{Asset: t.Asset, Date: t.Date, Reason: fmt.Sprintf(format, args...)}
	}
	switch {
	case t.Kind != CmdBuy && t.Kind != CmdSell:
		return invalid("unknown kind %q", t.Kind)
	case t.Date.IsZero():
		return invalid("missing date")
	case t.Asset == "":
		return invalid("missing asset")
	case !t.Quantity.IsPositive():
		return invalid("quantity must be positive, got %s", t.Quantity)
	case t.Price.IsNegative():
		return invalid("price must not be negative, got %s", t.Price)
	case t.Fees.IsNegative():
		return invalid("fees must not be negative, got %s", t.Fees)
	}
	return nil
}

// MarshalJSON writes t as a ledger line. Prices are written with all their digits.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", t.Kind)
	w.Append("date", t.Date)
	w.Optional("owner", t.Owner)
	w.Append("asset", t.Asset)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price.value)
	if !t.Fees.IsZero() {
		w.Append("fees", t.Fees.value)
	}
	w.Optional("currency", t.Price.cur)
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Transaction.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		Command  CommandType     `json:"command"`
		Date     date.Date       `json:"date"`
		Owner    string          `json:"owner"`
		Asset    string          `json:"asset"`
		Quantity Quantity        `json:"quantity"`
		Price    decimal.Decimal `json:"price"`
		Fees     decimal.Decimal `json:"fees"`
		Currency string          `json:"currency"`
		Memo     string          `json:"memo"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*t = Transaction{
		Owner:    temp.Owner,
		Asset:    temp.Asset,
		Kind:     temp.Command,
		Date:     temp.Date,
		Quantity: temp.Quantity,
		Price:    M(temp.Price, temp.Currency),
		Fees:     M(temp.Fees, temp.Currency),
		Memo:     temp.Memo,
	}
	return nil
}
