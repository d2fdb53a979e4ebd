package irtax

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DecodeLedger decodes records from a stream of JSONL data from an io.Reader,
// decodes each line into the appropriate record struct, and returns a sorted Ledger.
//
// Records are not validated here: invalid records, including unknown
// commands, are reported as issues by the calculation. Only malformed lines
// are errors.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)

	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Command CommandType `json:"command"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("line %d: could not identify command in %q: %w", line, string(lineBytes), err)
		}

		var rec Record
		switch identifier.Command {
		case CmdBuy, CmdSell:
			var tx Transaction
			if err := json.Unmarshal(lineBytes, &tx); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			rec = tx
		case CmdInterest, CmdDividend, CmdDistribution:
			var e IncomeEvent
			if err := json.Unmarshal(lineBytes, &e); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			rec = e
		default:
			u := UnknownRecord{raw: slices.Clone(lineBytes)}
			if err := json.Unmarshal(lineBytes, &u); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			rec = u
		}
		ledger.records = append(ledger.records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}

	// Perform a stable sort on the ledger based on the record date.
	ledger.stableSort()

	return ledger, nil
}

// EncodeRecord marshals a single record to JSON and writes it to the
// writer, followed by a newline, in JSONL format.
func EncodeRecord(w io.Writer, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", rec.What(), err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// EncodeLedger persists the ledger to an io.Writer in JSONL format, in
// chronological order. Records on the same day keep their relative order.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	ledger.stableSort()
	for _, rec := range ledger.records {
		if err := EncodeRecord(w, rec); err != nil {
			return err
		}
	}
	return nil
}
