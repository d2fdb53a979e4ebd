package irtax

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/etnz/irtax/date"
	"github.com/shopspring/decimal"
)

// IncomeEvent is an interest payment, a dividend or a fund distribution.
type IncomeEvent struct {
	Owner       string
	Type        CommandType
	Date        date.Date
	Asset       string // Asset optionally names the paying security or account.
	Gross       Money
	Withholding Money
	Country     string // Country is the source country code, if known.
	Memo        string
}

// NewIncome creates a new IncomeEvent.
func NewIncome(owner string, kind CommandType, day date.Date, gross, withholding Money, country string) IncomeEvent {
	return IncomeEvent{Owner: owner, Type: kind, Date: day, Gross: gross, Withholding: withholding, Country: country}
}

func (e IncomeEvent) What() CommandType { return e.Type }
func (e IncomeEvent) When() date.Date   { return e.Date }
func (e IncomeEvent) Who() string       { return e.Owner }

// Validate returns an *InvalidTransactionError if e cannot be processed.
func (e IncomeEvent) Validate() error {
	invalid := func(format string, args ...any) error {
		return &InvalidTransactionError{Asset: e.Asset, Date: e.Date, Reason: fmt.Sprintf(format, args...)}
	}
	switch {
	case e.Type != CmdInterest && e.Type != CmdDividend && e.Type != CmdDistribution:
		return invalid("unknown income type %q", e.Type)
	case e.Date.IsZero():
		return invalid("missing date")
	case e.Gross.IsNegative():
		return invalid("gross amount must not be negative, got %s", e.Gross)
	case e.Withholding.IsNegative():
		return invalid("withholding must not be negative, got %s", e.Withholding)
	case e.Withholding.GreaterThan(e.Gross):
		return invalid("withholding %s exceeds gross amount %s", e.Withholding, e.Gross)
	}
	return nil
}

func (e IncomeEvent) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", e.Type)
	w.Append("date", e.Date)
	w.Optional("owner", e.Owner)
	w.Optional("asset", e.Asset)
	w.Append("amount", e.Gross.value)
	if !e.Withholding.IsZero() {
		w.Append("withholding", e.Withholding.value)
	}
	w.Optional("country", e.Country)
	w.Optional("currency", e.Gross.cur)
	w.Optional("memo", e.Memo)
	return w.MarshalJSON()
}

func (e *IncomeEvent) UnmarshalJSON(data []byte) error {
	var temp struct {
		Command     CommandType     `json:"command"`
		Date        date.Date       `json:"date"`
		Owner       string          `json:"owner"`
		Asset       string          `json:"asset"`
		Amount      decimal.Decimal `json:"amount"`
		Withholding decimal.Decimal `json:"withholding"`
		Country     string          `json:"country"`
		Currency    string          `json:"currency"`
		Memo        string          `json:"memo"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*e = IncomeEvent{
		Owner:       temp.Owner,
		Type:        temp.Command,
		Date:        temp.Date,
		Asset:       temp.Asset,
		Gross:       M(temp.Amount, temp.Currency),
		Withholding: M(temp.Withholding, temp.Currency),
		Country:     strings.ToUpper(temp.Country),
		Memo:        temp.Memo,
	}
	return nil
}

// MonthlyIncome is the income received in one calendar month.
type MonthlyIncome struct {
	Month    string `json:"month"` // 2024-03
	Gross    Money  `json:"gross"`
	Withheld Money  `json:"withheld"`
}

// DIRTTotals is the Deposit Interest Retention Tax block of a report.
type DIRTTotals struct {
	RegimeTotals
	GrossInterest Money           `json:"gross_interest"`
	Computed      Money           `json:"dirt_computed"`
	Withheld      Money           `json:"withheld"`
	Monthly       []MonthlyIncome `json:"monthly"`
	Due           date.Date       `json:"due_date"`
}

// AggregateDIRT reduces the interest events of a tax year.
//
// DIRT due is the gross interest times the rate, less what was withheld at
// source, floored at zero.
func AggregateDIRT(events []IncomeEvent, year int, rates RateTable) DIRTTotals {
	period := date.Year(year)
	t := DIRTTotals{
		GrossInterest: rates.Zero(),
		Withheld:      rates.Zero(),
		Monthly:       []MonthlyIncome{},
		Due:           date.New(year+1, time.October, 31),
	}
	var months [13]*MonthlyIncome
	for _, e := range events {
		if e.Type != CmdInterest || !period.Contains(e.Date) {
			continue
		}
		t.GrossInterest = t.GrossInterest.Add(e.Gross)
		t.Withheld = t.Withheld.Add(e.Withholding)
		m := months[e.Date.Month()]
		if m == nil {
			m = &MonthlyIncome{Month: e.Date.Format("2006-01"), Gross: rates.Zero(), Withheld: rates.Zero()}
			months[e.Date.Month()] = m
		}
		m.Gross = m.Gross.Add(e.Gross)
		m.Withheld = m.Withheld.Add(e.Withholding)
	}
	for _, m := range months {
		if m != nil {
			t.Monthly = append(t.Monthly, *m)
		}
	}
	t.GrossInterest = t.GrossInterest.Round()
	t.Withheld = t.Withheld.Round()
	t.Computed = t.GrossInterest.MulRate(rates.DIRTRate).Round()
	t.RegimeTotals = RegimeTotals{
		Gains:         t.GrossInterest,
		Losses:        rates.Zero(),
		Net:           t.GrossInterest,
		ExemptionUsed: rates.Zero(),
		Taxable:       t.GrossInterest,
		TaxDue:        t.Computed.Sub(t.Withheld).Floor(),
	}
	return t
}

// CountryIncome is the dividend income from one source country.
type CountryIncome struct {
	Country     string `json:"country"`
	Gross       Money  `json:"gross"`
	Withholding Money  `json:"withholding"`
}

// DividendTotals is the dividends and distributions block of a report. No
// tax is computed, withholding is tracked as a credit.
type DividendTotals struct {
	RegimeTotals
	Dividends          Money           `json:"dividends"`
	Distributions      Money           `json:"distributions"`
	Withholding        Money           `json:"withholding"`
	ForeignGross       Money           `json:"foreign_gross"`
	ForeignWithholding Money           `json:"foreign_withholding"`
	ByCountry          []CountryIncome `json:"by_country"`
}

// AggregateDividends reduces the dividend and distribution events of a tax year.
func AggregateDividends(events []IncomeEvent, year int, rates RateTable) DividendTotals {
	period := date.Year(year)
	t := DividendTotals{
		Dividends:          rates.Zero(),
		Distributions:      rates.Zero(),
		Withholding:        rates.Zero(),
		ForeignGross:       rates.Zero(),
		ForeignWithholding: rates.Zero(),
		ByCountry:          []CountryIncome{},
	}
	byCountry := make(map[string]*CountryIncome)
	for _, e := range events {
		if (e.Type != CmdDividend && e.Type != CmdDistribution) || !period.Contains(e.Date) {
			continue
		}
		if e.Type == CmdDividend {
			t.Dividends = t.Dividends.Add(e.Gross)
		} else {
			t.Distributions = t.Distributions.Add(e.Gross)
		}
		t.Withholding = t.Withholding.Add(e.Withholding)
		if e.Country != "" && e.Country != "IE" {
			t.ForeignGross = t.ForeignGross.Add(e.Gross)
			t.ForeignWithholding = t.ForeignWithholding.Add(e.Withholding)
		}
		c := byCountry[e.Country]
		if c == nil {
			c = &CountryIncome{Country: e.Country, Gross: rates.Zero(), Withholding: rates.Zero()}
			byCountry[e.Country] = c
		}
		c.Gross = c.Gross.Add(e.Gross)
		c.Withholding = c.Withholding.Add(e.Withholding)
	}
	for _, c := range byCountry {
		t.ByCountry = append(t.ByCountry, CountryIncome{Country: c.Country, Gross: c.Gross.Round(), Withholding: c.Withholding.Round()})
	}
	slices.SortFunc(t.ByCountry, func(a, b CountryIncome) int { return strings.Compare(a.Country, b.Country) })

	gross := t.Dividends.Add(t.Distributions).Round()
	t.RegimeTotals = RegimeTotals{
		Gains:         gross,
		Losses:        rates.Zero(),
		Net:           gross,
		ExemptionUsed: rates.Zero(),
		Taxable:       gross,
		TaxDue:        rates.Zero(),
	}
	return t
}
