package renderer

import (
	"strings"

	"github.com/etnz/irtax"
)

func regimeName(r irtax.Regime) string {
	if r == irtax.ExitTax {
		return "Exit Tax"
	}
	return "CGT"
}

// rules lists the matching rules of a disposal.
func rules(d irtax.Disposal) string {
	var names []string
	for _, r := range d.Rules() {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

var taxNames = map[string]string{"cgt": "CGT", "exit_tax": "Exit Tax", "dirt": "DIRT"}

// deadline names a payment deadline, with its period if any.
func deadline(d irtax.PaymentDeadline) string {
	name := taxNames[d.Tax]
	if d.Period != "" {
		name += " (" + strings.ReplaceAll(d.Period, "_", "-") + ")"
	}
	return name
}

// nonzero keeps the form fields with a value.
func nonzero(fields []irtax.FormField) []irtax.FormField {
	var out []irtax.FormField
	for _, f := range fields {
		if !f.Value.IsZero() {
			out = append(out, f)
		}
	}
	return out
}
