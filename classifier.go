package irtax

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Regime is the tax regime an asset falls under.
type Regime string

const (
	StandardCGT Regime = "STANDARD_CGT"
	ExitTax     Regime = "EXIT_TAX"
)

// ParseRegime parses a regime name, case insensitive.
func ParseRegime(s string) (Regime, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(StandardCGT), "CGT":
		return StandardCGT, nil
	case string(ExitTax):
		return ExitTax, nil
	default:
		return "", fmt.Errorf("unknown regime: %q", s)
	}
}

// Classifier maps an asset identifier to its Regime.
type Classifier struct {
	// Prefixes are the domicile codes taxed under Exit Tax.
	Prefixes []string
	// Overrides force the regime of individual assets.
	Overrides map[string]Regime
	// Lenient falls back to STANDARD_CGT for identifiers that are not ISINs.
	Lenient bool
}

// NewClassifier creates a Classifier for the given Exit Tax domicile codes.
func NewClassifier(prefixes []string) *Classifier {
	return &Classifier{Prefixes: prefixes, Overrides: make(map[string]Regime)}
}

// Classify returns the regime of id. It never fails: anything not explicitly
// Exit Tax is Standard CGT.
func (c *Classifier) Classify(id string) Regime {
	id = normalizeID(id)
	if r, ok := c.Overrides[id]; ok {
		return r
	}
	for _, p := range c.Prefixes {
		if p != "" && strings.HasPrefix(id, strings.ToUpper(p)) {
			return ExitTax
		}
	}
	return StandardCGT
}

// Resolve is like Classify but reports identifiers that are not valid ISINs
// as UnclassifiableAssetError, unless they are overridden or c is lenient.
func (c *Classifier) Resolve(id string) (Regime, error) {
	if r, ok := c.Overrides[normalizeID(id)]; ok {
		return r, nil
	}
	if err := ValidateISIN(normalizeID(id)); err != nil {
		if c.Lenient {
			return StandardCGT, nil
		}
		return StandardCGT, &UnclassifiableAssetError{Asset: id, Reason: err}
	}
	return c.Classify(id), nil
}

func normalizeID(id string) string { return strings.ToUpper(strings.TrimSpace(id)) }

// isinRegex checks for the basic structure: 2 letters, 9 alphanumeric, 1 digit.
var isinRegex = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// ValidateISIN checks if a string is a validly formatted ISIN.
// It returns nil if valid, or a descriptive error if invalid.
func ValidateISIN(isin string) error {
	if len(isin) != 12 {
		return fmt.Errorf("invalid length: must be 12 characters, got %d", len(isin))
	}
	if !isinRegex.MatchString(isin) {
		return fmt.Errorf("invalid format: must be 2 uppercase letters, 9 alphanumeric chars, and 1 digit")
	}

	// Letters count as two digits (A=10 ... Z=35).
	var digits strings.Builder
	for _, char := range isin[:11] {
		if char >= 'A' && char <= 'Z' {
			digits.WriteString(strconv.Itoa(int(char - 'A' + 10)))
		} else {
			digits.WriteRune(char)
		}
	}

	// Luhn, doubling from the rightmost digit.
	sum := 0
	double := true
	s := digits.String()
	for i := len(s) - 1; i >= 0; i-- {
		digit := int(s[i] - '0')
		if double {
			digit *= 2
		}
		sum += digit/10 + digit%10
		double = !double
	}

	expected := (10 - sum%10) % 10
	if actual := int(isin[11] - '0'); expected != actual {
		return fmt.Errorf("invalid check digit: expected %d, got %d", expected, actual)
	}
	return nil
}
