package irtax

import (
	"errors"

	"github.com/etnz/irtax/date"
	"github.com/shopspring/decimal"
)

// WhatIfRequest describes a hypothetical sale.
type WhatIfRequest struct {
	Owner    string
	Asset    string
	Quantity Quantity
	Price    Money
	Fees     Money
	// Date of the sale, today if zero.
	Date                 date.Date
	LossesCarriedForward decimal.Decimal
	Valuations           Valuations
}

// WhatIfResult is the effect of a hypothetical sale on the tax of its year.
type WhatIfResult struct {
	Regime         Regime   `json:"regime"`
	Disposal       Disposal `json:"disposal"`
	TaxWithout     Money    `json:"tax_without"`
	TaxWith        Money    `json:"tax_with"`
	IncrementalTax Money    `json:"incremental_tax"`
}

// WhatIf computes the disposal a hypothetical sale would produce and the
// extra tax it would cost in its regime for the year of the sale.
//
// The ledger is not modified: the sale is matched against a snapshot. A sale
// of more than what is held returns the *InsufficientLotsError.
func (c *Calculator) WhatIf(ledger *Ledger, req WhatIfRequest) (*WhatIfResult, error) {
	on := req.Date
	if on.IsZero() {
		on = date.Today()
	}
	sale := NewSell(req.Owner, req.Asset, on, req.Quantity, req.Price, req.Fees)
	if err := c.check(sale); err != nil {
		return nil, err
	}
	regime, err := c.Classifier.Resolve(req.Asset)
	if err != nil {
		return nil, err
	}

	calc := Request{Owner: req.Owner, TaxYear: on.Year(), LossesCarriedForward: req.LossesCarriedForward, Valuations: req.Valuations}
	without, err := c.Calculate(ledger, calc)
	if err != nil {
		return nil, err
	}
	hypothetical := ledger.Clone()
	hypothetical.Append(sale)
	with, err := c.Calculate(hypothetical, calc)
	if err != nil {
		return nil, err
	}

	// The sale is the last one of its day: it produced a disposal only if
	// the day has one more than without it.
	sales := func(r *Report) []Disposal {
		var ds []Disposal
		for _, d := range r.Disposals {
			if d.Asset == req.Asset && d.Date == on && !d.Deemed {
				ds = append(ds, d)
			}
		}
		return ds
	}
	if before, after := sales(without), sales(with); len(after) > len(before) {
		return &WhatIfResult{
			Regime:         regime,
			Disposal:       after[len(after)-1],
			TaxWithout:     without.TaxDue(regime),
			TaxWith:        with.TaxDue(regime),
			IncrementalTax: with.TaxDue(regime).Sub(without.TaxDue(regime)),
		}, nil
	}
	for i := len(with.Issues) - 1; i >= 0; i-- {
		var insufficient *InsufficientLotsError
		if errors.As(with.Issues[i].Err, &insufficient) && insufficient.Asset == req.Asset && insufficient.Date == on {
			return nil, insufficient
		}
	}
	return nil, &InsufficientLotsError{Asset: req.Asset, Date: on, Requested: req.Quantity, Available: Q(0)}
}
