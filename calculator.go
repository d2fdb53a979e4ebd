package irtax

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/irtax/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// minTaxYear is the first year Irish CGT was charged.
const minTaxYear = 1975

// Request describes one calculation.
type Request struct {
	Owner   string
	TaxYear int
	// AsOf is the evaluation date of deemed disposals and holdings. It
	// defaults to the last day of the tax year.
	AsOf                 date.Date
	LossesCarriedForward decimal.Decimal
	// Valuations are the market values of the lots past their deemed disposal date.
	Valuations Valuations
	// UpcomingYears limits the listing of upcoming deemed disposals, 0 lists all.
	UpcomingYears int
}

// asOf validates the request and returns its evaluation date.
func (r Request) asOf() (date.Date, error) {
	if r.TaxYear < minTaxYear || r.TaxYear > 9999 {
		return date.Date{}, fmt.Errorf("%w: %d", ErrInvalidTaxYear, r.TaxYear)
	}
	year := date.Year(r.TaxYear)
	if r.AsOf.IsZero() {
		return year.To, nil
	}
	if !year.Contains(r.AsOf) {
		return date.Date{}, fmt.Errorf("%w: evaluation date %s is not within tax year %d", ErrInvalidTaxYear, r.AsOf, r.TaxYear)
	}
	return r.AsOf, nil
}

// Calculator computes tax reports from a ledger.
//
// A Calculator holds no state between calls and is safe for concurrent use.
type Calculator struct {
	Rates      RateTable
	Classifier *Classifier
	FormFields []FieldMapping
	log        zerolog.Logger
}

// NewCalculator creates a Calculator for one rate table.
func NewCalculator(rates RateTable, log zerolog.Logger) *Calculator {
	return &Calculator{
		Rates:      rates,
		Classifier: NewClassifier(rates.ExitTaxPrefixes),
		FormFields: IrishFormFields,
		log:        log.With().Str("component", "calculator").Logger(),
	}
}

// snapshot returns the records of the owner. The empty owner is only
// accepted for a ledger with a single owner.
func (c *Calculator) snapshot(ledger *Ledger, owner string) (*Ledger, error) {
	if owner == "" {
		if owners := ledger.Owners(); len(owners) > 1 {
			return nil, fmt.Errorf("%w: the ledger has several owners (%s), select one", ErrInvalidRequest, strings.Join(owners, ", "))
		}
		return ledger.Clone(), nil
	}
	return ledger.ForOwner(owner), nil
}

// run is the matched state of one owner.
type run struct {
	books  []Book
	income []IncomeEvent
	issues []Issue
}

func (r run) disposals(period date.Range) []Disposal {
	var ds []Disposal
	for _, b := range r.books {
		for _, d := range b.Disposals {
			if period.Contains(d.Date) {
				ds = append(ds, d)
			}
		}
	}
	slices.SortStableFunc(ds, func(a, b Disposal) int { return a.Date.Compare(b.Date) })
	return ds
}

// match validates the records of a snapshot, classifies the assets and runs
// the matching engine on every asset.
func (c *Calculator) match(snapshot *Ledger, asOf date.Date, values Valuations) run {
	var out run
	byAsset := make(map[string][]Transaction)
	for _, rec := range snapshot.Records() {
		if err := c.check(rec); err != nil {
			out.issues = append(out.issues, Issue{Owner: rec.Who(), Asset: recordAsset(rec), Date: rec.When(), Err: err})
			continue
		}
		switch rec := rec.(type) {
		case Transaction:
			byAsset[rec.Asset] = append(byAsset[rec.Asset], rec)
		case IncomeEvent:
			out.income = append(out.income, rec)
		}
	}

	assets := make([]string, 0, len(byAsset))
	for a := range byAsset {
		assets = append(assets, a)
	}
	slices.Sort(assets)

	matcher := NewMatcher(c.Rates, values)
	for _, asset := range assets {
		txs := byAsset[asset]
		owner := txs[0].Owner
		regime, err := c.Classifier.Resolve(asset)
		if err != nil {
			out.issues = append(out.issues, Issue{Owner: owner, Asset: asset, Date: txs[0].Date, Err: err})
			continue
		}
		book := matcher.Match(owner, asset, regime, txs, asOf)
		c.log.Debug().
			Str("owner", owner).
			Str("asset", asset).
			Str("regime", string(regime)).
			Int("disposals", len(book.Disposals)).
			Int("open_lots", len(book.Open)).
			Msg("matched")
		out.books = append(out.books, book)
		out.issues = append(out.issues, book.Issues...)
	}
	return out
}

func recordAsset(rec Record) string {
	switch rec := rec.(type) {
	case Transaction:
		return rec.Asset
	case IncomeEvent:
		return rec.Asset
	case UnknownRecord:
		return rec.Asset
	}
	return ""
}

// check validates a record and the currency of its amounts. The empty
// currency stands for the reporting currency.
func (c *Calculator) check(rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	var amounts []Money
	var asset string
	switch rec := rec.(type) {
	case Transaction:
		amounts, asset = []Money{rec.Price, rec.Fees}, rec.Asset
	case IncomeEvent:
		amounts, asset = []Money{rec.Gross, rec.Withholding}, rec.Asset
	}
	for _, m := range amounts {
		if cur := m.Currency(); cur != "" && cur != c.Rates.Currency {
			return &InvalidTransactionError{Asset: asset, Date: rec.When(), Reason: fmt.Sprintf("currency %s is not the reporting currency %s", cur, c.Rates.Currency)}
		}
	}
	return nil
}

// estimate fills the estimated gain and tax of upcoming deemed disposals
// when a market value is known for the lot.
func (c *Calculator) estimate(list []UpcomingDisposal, values Valuations) {
	for i, u := range list {
		unit, ok := values.Lookup(u.Asset, u.Acquired)
		if !ok {
			continue
		}
		gain := M(unit, c.Rates.Currency).Mul(u.Quantity).Sub(u.Cost).Round()
		tax := gain.Floor().MulRate(c.Rates.ExitTaxRate).Round()
		list[i].EstimatedGain, list[i].EstimatedTax = &gain, &tax
	}
}

// Calculate computes the report of one owner for one tax year.
//
// Problems with individual records are returned as issues in the report.
// An error is only returned for an invalid request or rate table.
func (c *Calculator) Calculate(ledger *Ledger, req Request) (*Report, error) {
	if err := c.Rates.Validate(); err != nil {
		return nil, err
	}
	asOf, err := req.asOf()
	if err != nil {
		return nil, err
	}
	if req.LossesCarriedForward.IsNegative() {
		return nil, fmt.Errorf("%w: negative losses carried forward %s", ErrInvalidRequest, req.LossesCarriedForward)
	}
	snapshot, err := c.snapshot(ledger, req.Owner)
	if err != nil {
		return nil, err
	}

	year := req.TaxYear
	r := c.match(snapshot, asOf, req.Valuations)
	disposals := r.disposals(date.Year(year))

	report := &Report{
		Owner:     req.Owner,
		TaxYear:   year,
		AsOf:      asOf,
		Currency:  c.Rates.Currency,
		CGT:       AggregateCGT(disposals, year, M(req.LossesCarriedForward, c.Rates.Currency), c.Rates),
		ExitTax:   AggregateExitTax(disposals, year, c.Rates),
		DIRT:      AggregateDIRT(r.income, year, c.Rates),
		Dividends: AggregateDividends(r.income, year, c.Rates),
		Disposals: disposals,
	}
	if report.Disposals == nil {
		report.Disposals = []Disposal{}
	}

	scheduler := NewMatcher(c.Rates, req.Valuations).Scheduler
	for _, b := range r.books {
		report.ExitTax.Upcoming = append(report.ExitTax.Upcoming, scheduler.Upcoming(b, asOf, req.UpcomingYears)...)
		report.ExitTax.Pending = append(report.ExitTax.Pending, b.Pending...)
	}
	slices.SortStableFunc(report.ExitTax.Upcoming, func(a, b UpcomingDisposal) int { return a.Due.Compare(b.Due) })
	c.estimate(report.ExitTax.Upcoming, req.Valuations)

	report.Issues = pastIssues(r.issues, asOf)
	for _, is := range report.Issues {
		c.log.Warn().Str("owner", is.Owner).Str("asset", is.Asset).Str("kind", is.Kind()).Msg(is.Error())
	}

	report.summarize(c.Rates.Zero())
	if err := report.mapFormFields(c.FormFields); err != nil {
		return nil, err
	}
	c.log.Info().
		Str("owner", req.Owner).
		Int("year", year).
		Int("disposals", len(report.Disposals)).
		Int("issues", len(report.Issues)).
		Str("total_tax_due", report.Summary.TotalTaxDue.String()).
		Msg("report computed")
	return report, nil
}

// CalculateHousehold computes one report per owner of the ledger, in
// parallel, each on its own snapshot. req.Owner is ignored.
func (c *Calculator) CalculateHousehold(ctx context.Context, ledger *Ledger, req Request) ([]*Report, error) {
	owners := ledger.Owners()
	reports := make([]*Report, len(owners))
	g, ctx := errgroup.WithContext(ctx)
	for i, owner := range owners {
		i, owner := i, owner // per-iteration copies (go directive < 1.22)
		snapshot := ledger.ForOwner(owner)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := req
			r.Owner = owner
			report, err := c.Calculate(snapshot, r)
			if err != nil {
				return fmt.Errorf("owner %q: %w", owner, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
