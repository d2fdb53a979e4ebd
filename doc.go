// Package irtax computes the annual Irish tax liability on investment
// activity from a ledger of buy and sell transactions and income events.
//
// The engine is a pure function of its inputs:
//   - the Classifier tags each asset with its regime, Standard CGT or Exit Tax;
//   - the matching engine turns the sales of one owner and one asset into
//     disposals using the statutory order (same day, bed and breakfast, FIFO)
//     for CGT, and strict FIFO for Exit Tax funds;
//   - the DeemedScheduler forces an Exit Tax disposal every eight years on the
//     lots still held, resetting their cost and clock;
//   - the aggregators reduce disposals and income events into per-regime totals
//     for one tax year, with CGT payment periods and Form 11/12 fields.
//
// Records that cannot be processed (an oversold asset, a missing valuation,
// an invalid transaction) are reported as Issues next to the totals; only a
// malformed request or rate table aborts a calculation.
//
// This package serves as the foundational logic for the `irtax` command-line
// tool.
package irtax
