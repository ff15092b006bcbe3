// Package holdings turns a raw ledger of brokerage transactions into derived
// views: per-security positions, dividend and tax rollups, and a continuous
// monthly deposit timeline.
//
// The package owns the messy middle of the problem: a row source (typically
// the spreadsheet adapter in the spreadsheet subpackage) hands over flat
// records of named string fields, and the aggregator classifies, parses and
// folds them without ever rejecting a row. Dirty numeric cells degrade to
// zero, unparseable dates degrade to an "unknown" sentinel that sorts first,
// and unrecognized action tags are ignored.
//
// Two sibling packages complete the system:
//   - table implements a generic, locale-aware sort/filter engine for the
//     derived views,
//   - quote caches live prices and daily histories from an external,
//     rate-limited quote provider.
//
// All processing is local to one session: a Summary is a disposable view
// object, recomputed from scratch whenever the underlying row set changes.
package holdings
