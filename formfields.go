package irtax

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// FieldMapping declares where a return form field reads its value from in
// the JSON representation of a Report.
type FieldMapping struct {
	Form  string
	Panel string
	Field string
	Label string
	Path  string // JSONPath into the report, e.g. "$.cgt.tax_due"
}

// IrishFormFields maps report totals to the Form 11 and Form 12 panels.
var IrishFormFields = []FieldMapping{
	{"form11", "D", "deposit_interest_gross", "Gross deposit interest", "$.dirt.gross_interest"},
	{"form11", "D", "dirt_deducted", "DIRT deducted", "$.dirt.withheld"},
	{"form11", "E", "cgt_consideration", "Consideration on disposals", "$.cgt.consideration"},
	{"form11", "E", "cgt_allowable_costs", "Allowable costs", "$.cgt.allowable_costs"},
	{"form11", "E", "cgt_net_gain", "Net chargeable gain", "$.cgt.net"},
	{"form11", "E", "cgt_losses_carried_forward", "Losses carried forward used", "$.cgt.losses_used"},
	{"form11", "E", "cgt_personal_exemption", "Personal exemption", "$.cgt.exemption_used"},
	{"form11", "E", "cgt_taxable", "Taxable gain", "$.cgt.taxable"},
	{"form11", "E", "cgt_due", "CGT due", "$.cgt.tax_due"},
	{"form11", "E", "exit_tax_gains", "Gains on EU funds", "$.exit_tax.taxable"},
	{"form11", "E", "exit_tax_due", "Exit Tax due", "$.exit_tax.tax_due"},
	{"form11", "F", "foreign_dividends_gross", "Foreign dividends", "$.dividends.foreign_gross"},
	{"form11", "F", "foreign_tax_credit", "Foreign tax withheld", "$.dividends.foreign_withholding"},
	{"form12", "other_irish_income", "deposit_interest", "Deposit interest", "$.dirt.gross_interest"},
	{"form12", "other_irish_income", "dirt_deducted", "DIRT deducted", "$.dirt.withheld"},
}

// FormField is one return form field with its value.
type FormField struct {
	Form  string `json:"form"`
	Panel string `json:"panel"`
	Field string `json:"field"`
	Label string `json:"label"`
	Value Money  `json:"value"`
}

// mapFormFields evaluates the mappings against the JSON form of r.
func (r *Report) mapFormFields(mappings []FieldMapping) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("cannot encode report: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("cannot decode report: %w", err)
	}

	fields := make([]FormField, 0, len(mappings))
	for _, m := range mappings {
		v, err := jsonpath.Get(m.Path, doc)
		if err != nil {
			return fmt.Errorf("form field %s.%s: %w", m.Form, m.Field, err)
		}
		n, ok := v.(json.Number)
		if !ok {
			return fmt.Errorf("form field %s.%s: %s is not a number", m.Form, m.Field, m.Path)
		}
		value, err := decimal.NewFromString(n.String())
		if err != nil {
			return fmt.Errorf("form field %s.%s: %w", m.Form, m.Field, err)
		}
		fields = append(fields, FormField{Form: m.Form, Panel: m.Panel, Field: m.Field, Label: m.Label, Value: M(value, r.Currency)})
	}
	r.FormFields = fields
	return nil
}
