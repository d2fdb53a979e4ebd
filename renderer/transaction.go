package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/irtax"
)

// Disposal renders a disposal to a string.
func Disposal(d irtax.Disposal) string {
	var rules []string
	for _, r := range d.Rules() {
		rules = append(rules, strings.ToLower(strings.ReplaceAll(string(r), "_", " ")))
	}
	if d.Deemed {
		return fmt.Sprintf("Deemed disposal of %s %s at %s, gain %s", d.Quantity, d.Asset, d.Proceeds, d.Gain.Round().SignedString())
	}
	return fmt.Sprintf("Sold %s %s for %s, gain %s (%s)", d.Quantity, d.Asset, d.Proceeds, d.Gain.Round().SignedString(), strings.Join(rules, ", "))
}

// Issue renders an issue to a string.
func Issue(is irtax.Issue) string {
	var b strings.Builder
	if !is.Date.IsZero() {
		fmt.Fprintf(&b, "%s ", is.Date)
	}
	if is.Owner != "" {
		fmt.Fprintf(&b, "(%s) ", is.Owner)
	}
	fmt.Fprintf(&b, "`%s`: %s", is.Kind(), is.Error())
	return b.String()
}
