package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/irtax"
	"github.com/etnz/irtax/date"
	"github.com/shopspring/decimal"
)

// valuation is a line of a valuations file. A missing date sets the value
// of every lot of the asset.
type valuation struct {
	Asset string          `json:"asset"`
	Date  date.Date       `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// decodeValuations reads market values, one JSON object per line.
func decodeValuations(r io.Reader) (irtax.Valuations, error) {
	values := irtax.Valuations{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		var v valuation
		if err := json.Unmarshal(scanner.Bytes(), &v); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if v.Asset == "" {
			return nil, fmt.Errorf("line %d: missing asset", line)
		}
		if v.Price.IsNegative() {
			return nil, fmt.Errorf("line %d: negative price %s", line, v.Price)
		}
		values.Set(v.Asset, v.Date, v.Price)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading valuations: %w", err)
	}
	return values, nil
}

// loadValuations reads a valuations file, the empty path is no valuation.
func loadValuations(path string) (irtax.Valuations, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open valuations file %q: %w", path, err)
	}
	defer f.Close()
	values, err := decodeValuations(f)
	if err != nil {
		return nil, fmt.Errorf("valuations file %q: %w", path, err)
	}
	return values, nil
}
