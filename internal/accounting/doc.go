// Package accounting implements the portfolio accounting engine.
//
// Every function in this package is a pure function of a ledger snapshot
// ([]model.Transaction) and of external price/dividend data passed in by the
// caller. Inputs are never mutated and no state is kept between calls, so the
// functions are safe to call concurrently for different owners.
//
// Two cost-basis semantics coexist on purpose:
//   - Consolidate and Realize use the all-time weighted average of every buy
//     in the ledger. A single constant cost is applied to every sell of a
//     ticker.
//   - BuildDailySeries and Reconstruct replay the ledger chronologically and
//     remove cost on a sell at the running average at the moment of the sale.
//
// Unifying them would silently change historical numbers, so they are kept
// separate and must not be mixed.
package accounting
